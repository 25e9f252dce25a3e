// Package portalclient is a Go client for the portal API. It keeps the
// signed-in session in a session.Store and refreshes it on 401.
package portalclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"planportal/internal/model"
	"planportal/internal/session"
	"planportal/internal/validation"
)

var ErrSignedOut = errors.New("not signed in")

// FieldError is one field message of a 422 response.
type FieldError = validation.FieldError

// APIError is a non-2xx response in the API's error envelope.
type APIError struct {
	Status    int
	Code      string
	Message   string
	RequestID string
	Section   string
	Fields    []FieldError
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d %s)", e.Message, e.Status, e.Code)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == status
}

type errorEnvelope struct {
	RequestID string `json:"request_id"`
	Error     struct {
		Code    string       `json:"code"`
		Message string       `json:"message"`
		Section string       `json:"section,omitempty"`
		Fields  []FieldError `json:"fields,omitempty"`
	} `json:"error"`
}

// Client talks to the API under BaseURL (for example http://localhost:8080/api).
type Client struct {
	BaseURL string
	HTTP    *http.Client
	store   session.Store
}

var _ session.Store = (*Client)(nil)

type Option func(*Client)

// WithHTTPClient replaces the default traced client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.HTTP = h }
}

// WithStore keeps the session in s instead of memory.
func WithStore(s session.Store) Option {
	return func(c *Client) { c.store = s }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		store: &session.MemoryStore{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Current() (session.Pair, bool) { return c.store.Current() }

func (c *Client) Set(ctx context.Context, p session.Pair) error { return c.store.Set(ctx, p) }

func pairOf(s *model.Session) session.Pair {
	return session.Pair{AccessToken: s.AccessToken, RefreshToken: s.RefreshToken, ExpiresAt: s.ExpiresAt}
}

type request struct {
	method string
	path   string
	body   io.Reader
	ctype  string
	auth   bool
	token  string
}

func jsonBody(v any) (io.Reader, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(b), nil
}

func (c *Client) send(ctx context.Context, r request) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, r.method, c.BaseURL+r.path, r.body)
	if err != nil {
		return nil, err
	}
	if r.ctype != "" {
		req.Header.Set("Content-Type", r.ctype)
	}
	req.Header.Set("Accept", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	return c.HTTP.Do(req)
}

func decodeError(resp *http.Response) error {
	var env errorEnvelope
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	ae := &APIError{Status: resp.StatusCode, Code: http.StatusText(resp.StatusCode), Message: strings.TrimSpace(string(b))}
	if json.Unmarshal(b, &env) == nil && env.Error.Message != "" {
		ae.Code = env.Error.Code
		ae.Message = env.Error.Message
		ae.RequestID = env.RequestID
		ae.Section = env.Error.Section
		ae.Fields = env.Error.Fields
	}
	return ae
}

// call sends a JSON request and decodes a JSON response into out. Authed
// requests are retried once after a refresh when the access token is rejected.
func (c *Client) call(ctx context.Context, method, path string, in, out any, authed bool) error {
	build := func() (request, error) {
		body, err := jsonBody(in)
		if err != nil {
			return request{}, err
		}
		r := request{method: method, path: path, body: body, auth: authed}
		if in != nil {
			r.ctype = "application/json"
		}
		return r, nil
	}
	return c.exec(ctx, build, out)
}

func (c *Client) exec(ctx context.Context, build func() (request, error), out any) error {
	r, err := build()
	if err != nil {
		return err
	}
	if r.auth {
		p, ok := c.store.Current()
		if !ok {
			return ErrSignedOut
		}
		r.token = p.AccessToken
	}

	resp, err := c.send(ctx, r)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusUnauthorized && r.auth {
		resp.Body.Close()
		if err := c.refresh(ctx); err != nil {
			return err
		}
		if r, err = build(); err != nil {
			return err
		}
		p, _ := c.store.Current()
		r.token = p.AccessToken
		if resp, err = c.send(ctx, r); err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	switch o := out.(type) {
	case nil:
		return nil
	case *[]byte:
		*o, err = io.ReadAll(resp.Body)
		return err
	default:
		return json.NewDecoder(resp.Body).Decode(out)
	}
}

// refresh rotates the stored pair. A rejected refresh token signs out locally.
func (c *Client) refresh(ctx context.Context) error {
	p, ok := c.store.Current()
	if !ok || p.RefreshToken == "" {
		return ErrSignedOut
	}
	s, err := c.refreshPair(ctx, p.RefreshToken)
	if err != nil {
		if IsStatus(err, http.StatusUnauthorized) {
			_ = c.store.Set(ctx, session.Pair{})
			return ErrSignedOut
		}
		return err
	}
	return c.store.Set(ctx, pairOf(s))
}

func (c *Client) refreshPair(ctx context.Context, refreshToken string) (*model.Session, error) {
	var s model.Session
	if err := c.call(ctx, http.MethodPost, "/auth/refresh", map[string]string{"refresh_token": refreshToken}, &s, false); err != nil {
		return nil, err
	}
	return &s, nil
}

// upload posts a multipart form with one file part.
func (c *Client) upload(ctx context.Context, method, path string, fields map[string]string, fileField, filename string, content []byte, out any) error {
	build := func() (request, error) {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		for k, v := range fields {
			if err := w.WriteField(k, v); err != nil {
				return request{}, err
			}
		}
		part, err := w.CreateFormFile(fileField, filename)
		if err != nil {
			return request{}, err
		}
		if _, err := part.Write(content); err != nil {
			return request{}, err
		}
		if err := w.Close(); err != nil {
			return request{}, err
		}
		return request{method: method, path: path, body: &buf, ctype: w.FormDataContentType(), auth: true}, nil
	}
	return c.exec(ctx, build, out)
}

func pathEscape(s string) string { return url.PathEscape(s) }
