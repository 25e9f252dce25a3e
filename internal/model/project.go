package model

import (
	"encoding/json"
	"time"
)

// ProjectStatus is the lifecycle state of a building-plan application.
type ProjectStatus string

const (
	StatusDraft                ProjectStatus = "draft"
	StatusSubmitted            ProjectStatus = "submitted"
	StatusUnderReview          ProjectStatus = "under_review"
	StatusApproved             ProjectStatus = "approved"
	StatusRejected             ProjectStatus = "rejected"
	StatusResubmissionRequired ProjectStatus = "resubmission_required"
)

// ProjectStatuses lists every status in dashboard order.
var ProjectStatuses = []ProjectStatus{
	StatusDraft, StatusSubmitted, StatusUnderReview,
	StatusResubmissionRequired, StatusApproved, StatusRejected,
}

// Valid reports whether s is a known status.
func (s ProjectStatus) Valid() bool {
	for _, v := range ProjectStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Project is an application record. ProjectInfo and SavePlotDetails are
// opaque JSON documents owned by the client.
type Project struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Title           string          `json:"title"`
	Status          ProjectStatus   `json:"status"`
	ProjectInfo     json.RawMessage `json:"project_info,omitempty"`
	SavePlotDetails json.RawMessage `json:"save_plot_details,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ProjectPatch is a partial update; absent documents are left untouched and
// present ones are merged key by key into the stored document.
type ProjectPatch struct {
	UserID          string          `json:"user_id"`
	ProjectInfo     json.RawMessage `json:"project_info,omitempty"`
	SavePlotDetails json.RawMessage `json:"save_plot_details,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p ProjectPatch) Empty() bool {
	return len(p.ProjectInfo) == 0 && len(p.SavePlotDetails) == 0
}
