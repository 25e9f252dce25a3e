package validation

import "errors"

var ErrDeclarationNotAccepted = errors.New("please read the declaration to the end and accept it")

// Declaration tracks the legal declaration block at the end of a
// registration form. Acceptance is only possible once the text has been
// scrolled to the bottom.
type Declaration struct {
	ScrolledToBottom bool `json:"scrolled_to_bottom"`
	Accepted         bool `json:"accepted"`
}

// Scroll records a scroll position of the declaration text box.
func (d *Declaration) Scroll(scrollTop, clientHeight, scrollHeight int) {
	if scrollTop+clientHeight >= scrollHeight-1 {
		d.ScrolledToBottom = true
	}
}

// CanAccept reports whether the acceptance checkbox is enabled.
func (d Declaration) CanAccept() bool { return d.ScrolledToBottom }

// Accept sets the checkbox. It is a no-op while the checkbox is disabled.
func (d *Declaration) Accept(checked bool) bool {
	if d.CanAccept() {
		d.Accepted = checked
	}
	return d.Accepted
}

// Err blocks submission unless the declaration was read and accepted.
func (d Declaration) Err() error {
	if !d.ScrolledToBottom || !d.Accepted {
		return ErrDeclarationNotAccepted
	}
	return nil
}
