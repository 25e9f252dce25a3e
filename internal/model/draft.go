package model

import "time"

// Draft is an unsubmitted snapshot of a form's values, kept for recovery.
type Draft struct {
	UserID    string            `json:"user_id"`
	FormKey   string            `json:"form_key"`
	Values    map[string]string `json:"values"`
	UpdatedAt time.Time         `json:"updated_at"`
}
