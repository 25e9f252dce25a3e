// Package verification drives the OTP verification modal: send a code to a
// contact, collect it in per-digit cells and verify it, while the caller's
// own session is held aside and restored afterwards.
package verification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"planportal/internal/model"
	"planportal/internal/session"
)

// DefaultCountdown is the wait before a code can be resent.
const DefaultCountdown = 60 * time.Second

// State is a modal state.
type State string

const (
	StateIdle      State = "idle"
	StateSending   State = "sending"
	StateOTP       State = "otp"
	StateNoContact State = "no_contact"
	StateError     State = "error"
	StateVerified  State = "verified"
	StateClosed    State = "closed"
)

var (
	ErrWrongState     = errors.New("not allowed in the current state")
	ErrResendTooSoon  = errors.New("resend is not available yet")
	ErrInvalidChannel = errors.New("unsupported channel")
)

// Authenticator sends and verifies codes. A successful VerifyOTP may replace
// the current session in the store; the flow restores it.
type Authenticator interface {
	SendOTP(ctx context.Context, channel model.OTPChannel, contact string) error
	VerifyOTP(ctx context.Context, channel model.OTPChannel, contact, code string) (model.Identity, error)
}

// Config wires a Flow.
type Config struct {
	Channel model.OTPChannel
	Contact string
	Store   session.Store
	Auth    Authenticator
	// OnVerified runs after the held session has been restored.
	OnVerified func(ctx context.Context, id model.Identity) error
	Countdown  time.Duration
	Now        func() time.Time
}

// Flow is one verification modal. It is driven by a single event loop and
// is not safe for concurrent use.
type Flow struct {
	cfg   Config
	state State
	hold  *session.Hold

	cells     []string
	focus     int
	sentAt    time.Time
	submitted bool
	err       error
	identity  model.Identity
}

// New returns a Flow in the idle state.
func New(cfg Config) (*Flow, error) {
	if !cfg.Channel.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidChannel, cfg.Channel)
	}
	if cfg.Countdown <= 0 {
		cfg.Countdown = DefaultCountdown
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Flow{
		cfg:   cfg,
		state: StateIdle,
		cells: make([]string, cfg.Channel.CodeLength()),
	}, nil
}

func (f *Flow) State() State              { return f.state }
func (f *Flow) Err() error                { return f.err }
func (f *Flow) Focus() int                { return f.focus }
func (f *Flow) Identity() model.Identity  { return f.identity }
func (f *Flow) CodeLength() int           { return len(f.cells) }
func (f *Flow) Cells() []string           { return append([]string(nil), f.cells...) }
func (f *Flow) Code() string              { return strings.Join(f.cells, "") }
func (f *Flow) Channel() model.OTPChannel { return f.cfg.Channel }
func (f *Flow) Held() bool                { return f.hold != nil && f.hold.Held() }

// Open starts the flow: a blank contact ends in no_contact, otherwise the
// current session is captured and a code is sent.
func (f *Flow) Open(ctx context.Context) error {
	if f.state != StateIdle {
		return ErrWrongState
	}
	if strings.TrimSpace(f.cfg.Contact) == "" {
		f.state = StateNoContact
		return nil
	}
	f.hold = session.Acquire(f.cfg.Store)
	return f.send(ctx)
}

// Retry resends after a failed send.
func (f *Flow) Retry(ctx context.Context) error {
	if f.state != StateError {
		return ErrWrongState
	}
	return f.send(ctx)
}

// Remaining is the time left before Resend is allowed.
func (f *Flow) Remaining() time.Duration {
	if f.state != StateOTP {
		return 0
	}
	left := f.sentAt.Add(f.cfg.Countdown).Sub(f.cfg.Now())
	if left < 0 {
		return 0
	}
	return left
}

// Resend issues a new code once the countdown has elapsed.
func (f *Flow) Resend(ctx context.Context) error {
	if f.state != StateOTP {
		return ErrWrongState
	}
	if f.Remaining() > 0 {
		return ErrResendTooSoon
	}
	return f.send(ctx)
}

func (f *Flow) send(ctx context.Context) error {
	f.state = StateSending
	f.err = nil
	if err := f.cfg.Auth.SendOTP(ctx, f.cfg.Channel, f.cfg.Contact); err != nil {
		f.state = StateError
		f.err = err
		return err
	}
	f.state = StateOTP
	f.sentAt = f.cfg.Now()
	f.clearCells()
	return nil
}

func (f *Flow) clearCells() {
	for i := range f.cells {
		f.cells[i] = ""
	}
	f.focus = 0
	f.submitted = false
}

func isDigit(s string) bool {
	return len(s) == 1 && s[0] >= '0' && s[0] <= '9'
}

// Input sets cell i to digit and advances focus. Non-digits are ignored.
// Filling the last empty cell submits the code.
func (f *Flow) Input(ctx context.Context, i int, digit string) error {
	if f.state != StateOTP {
		return ErrWrongState
	}
	if i < 0 || i >= len(f.cells) || !isDigit(digit) {
		return nil
	}
	f.cells[i] = digit
	if i < len(f.cells)-1 {
		f.focus = i + 1
	}
	return f.maybeSubmit(ctx)
}

// Paste distributes the digits of s over the cells from the first one,
// ignoring other characters and anything past the code length.
func (f *Flow) Paste(ctx context.Context, s string) error {
	if f.state != StateOTP {
		return ErrWrongState
	}
	n := 0
	for _, r := range s {
		if n == len(f.cells) {
			break
		}
		if r >= '0' && r <= '9' {
			f.cells[n] = string(r)
			n++
		}
	}
	if n == 0 {
		return nil
	}
	f.focus = min(n, len(f.cells)-1)
	return f.maybeSubmit(ctx)
}

// Backspace clears cell i, or moves focus back when it is already empty.
func (f *Flow) Backspace(i int) {
	if f.state != StateOTP || i < 0 || i >= len(f.cells) {
		return
	}
	if f.cells[i] != "" {
		f.cells[i] = ""
		f.focus = i
		return
	}
	if i > 0 {
		f.focus = i - 1
	}
}

func (f *Flow) complete() bool {
	for _, c := range f.cells {
		if c == "" {
			return false
		}
	}
	return true
}

func (f *Flow) maybeSubmit(ctx context.Context) error {
	if f.submitted || !f.complete() {
		return nil
	}
	f.submitted = true

	id, err := f.cfg.Auth.VerifyOTP(ctx, f.cfg.Channel, f.cfg.Contact, f.Code())
	if err != nil {
		f.err = err
		f.clearCells()
		return err
	}
	if err := f.hold.Release(ctx); err != nil {
		f.state = StateError
		f.err = err
		return err
	}
	f.identity = id
	f.state = StateVerified
	f.err = nil
	if f.cfg.OnVerified != nil {
		return f.cfg.OnVerified(ctx, id)
	}
	return nil
}

// Close tears the modal down, restoring the held session if verification
// did not already do so. It is safe to call more than once.
func (f *Flow) Close(ctx context.Context) error {
	var err error
	if f.hold != nil {
		err = f.hold.Release(ctx)
	}
	f.state = StateClosed
	return err
}
