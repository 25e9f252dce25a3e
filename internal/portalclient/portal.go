package portalclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"planportal/internal/letterhead"
	"planportal/internal/model"
	"planportal/internal/validation"
)

// ProjectList is a page of applications.
type ProjectList struct {
	Items []model.Project `json:"data"`
	Total int             `json:"total"`
}

// Dashboard is the per-status summary of the user's applications.
type Dashboard struct {
	Counts map[model.ProjectStatus]int `json:"counts"`
	Total  int                         `json:"total"`
	Recent []model.Project             `json:"recent"`
}

// DocumentStatus reports whether a stored document URL still resolves.
type DocumentStatus struct {
	Purpose model.DocumentPurpose `json:"purpose"`
	URL     string                `json:"url"`
	Exists  bool                  `json:"exists"`
	Error   string                `json:"error,omitempty"`
}

func (c *Client) Profile(ctx context.Context) (*model.User, error) {
	var u model.User
	if err := c.call(ctx, http.MethodGet, "/profile", nil, &u, true); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateProfile(ctx context.Context, values validation.Values) (*model.User, error) {
	var u model.User
	if err := c.call(ctx, http.MethodPut, "/profile", values, &u, true); err != nil {
		return nil, err
	}
	return &u, nil
}

// ReplaceDocument uploads content as the user's document for purpose.
func (c *Client) ReplaceDocument(ctx context.Context, purpose model.DocumentPurpose, filename string, content []byte) (*model.StoredFile, error) {
	var f model.StoredFile
	if err := c.upload(ctx, http.MethodPut, "/profile/documents/"+pathEscape(string(purpose)), nil, "file", filename, content, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (c *Client) CheckDocuments(ctx context.Context) ([]DocumentStatus, error) {
	var out struct {
		Data []DocumentStatus `json:"data"`
	}
	if err := c.call(ctx, http.MethodGet, "/profile/documents/check", nil, &out, true); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Upload stores a file without attaching it to the profile.
func (c *Client) Upload(ctx context.Context, purpose model.DocumentPurpose, filename string, content []byte) (*model.StoredFile, error) {
	var f model.StoredFile
	fields := map[string]string{"purpose": string(purpose)}
	if err := c.upload(ctx, http.MethodPost, "/files", fields, "file", filename, content, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// FileResolves HEAD-checks a public file URL through the API.
func (c *Client) FileResolves(ctx context.Context, fileURL string) (bool, error) {
	var out struct {
		Exists bool `json:"exists"`
	}
	if err := c.call(ctx, http.MethodPost, "/files/check", map[string]string{"url": fileURL}, &out, true); err != nil {
		return false, err
	}
	return out.Exists, nil
}

func (c *Client) Draft(ctx context.Context, form validation.FormKey) (*model.Draft, error) {
	var d model.Draft
	if err := c.call(ctx, http.MethodGet, "/drafts/"+pathEscape(string(form)), nil, &d, true); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *Client) SaveDraft(ctx context.Context, form validation.FormKey, values validation.Values) (*model.Draft, error) {
	var d model.Draft
	if err := c.call(ctx, http.MethodPut, "/drafts/"+pathEscape(string(form)), values, &d, true); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *Client) DeleteDraft(ctx context.Context, form validation.FormKey) error {
	return c.call(ctx, http.MethodDelete, "/drafts/"+pathEscape(string(form)), nil, nil, true)
}

func (c *Client) Projects(ctx context.Context, status model.ProjectStatus, limit, offset int) (*ProjectList, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", string(status))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	path := "/projects"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out ProjectList
	if err := c.call(ctx, http.MethodGet, path, nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProject(ctx context.Context, title string, info json.RawMessage) (*model.Project, error) {
	var p model.Project
	in := map[string]any{"title": title, "project_info": info}
	if err := c.call(ctx, http.MethodPost, "/projects", in, &p, true); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) Project(ctx context.Context, id string) (*model.Project, error) {
	var p model.Project
	if err := c.call(ctx, http.MethodGet, "/projects/"+pathEscape(id), nil, &p, true); err != nil {
		return nil, err
	}
	return &p, nil
}

// PatchProject merges the present documents of patch into the project.
func (c *Client) PatchProject(ctx context.Context, id string, patch model.ProjectPatch) (*model.Project, error) {
	var p model.Project
	if err := c.call(ctx, http.MethodPut, "/projects/"+pathEscape(id), patch, &p, true); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) Dashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	if err := c.call(ctx, http.MethodGet, "/dashboard", nil, &d, true); err != nil {
		return nil, err
	}
	return &d, nil
}

// LoginIDTaken reports whether a login id is already registered.
func (c *Client) LoginIDTaken(ctx context.Context, loginID string) (bool, error) {
	err := c.call(ctx, http.MethodPost, "/get-user-email", map[string]string{"user_id": loginID}, nil, false)
	switch {
	case err == nil:
		return true, nil
	case IsStatus(err, http.StatusNotFound):
		return false, nil
	default:
		return false, err
	}
}

// SetUserRole upserts the role and merges md into the user's metadata.
func (c *Client) SetUserRole(ctx context.Context, userID string, role model.Role, md model.Metadata) (*model.User, error) {
	var u model.User
	in := map[string]any{"user_id": userID, "role": role, "metadata": md}
	if err := c.call(ctx, http.MethodPost, "/set-user-role", in, &u, true); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUserPassword sets the password and metadata of a new account.
func (c *Client) UpdateUserPassword(ctx context.Context, userID, password string, md model.Metadata) (*model.User, error) {
	var u model.User
	in := map[string]any{"userId": userID, "password": password, "metadata": md}
	if err := c.call(ctx, http.MethodPost, "/functions/update-user-password", in, &u, true); err != nil {
		return nil, err
	}
	return &u, nil
}

// Letterhead renders a letterhead PDF and returns its bytes.
func (c *Client) Letterhead(ctx context.Context, content letterhead.Content) ([]byte, error) {
	var pdf []byte
	if err := c.call(ctx, http.MethodPost, "/letterhead", content, &pdf, true); err != nil {
		return nil, fmt.Errorf("letterhead: %w", err)
	}
	return pdf, nil
}
