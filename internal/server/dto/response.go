package dto

import "github.com/maruel/ksid"

// --- Common Responses ---

// OkResponse is a simple success response.
type OkResponse struct {
	Ok bool `json:"ok"`
}

// --- Auth Responses ---

// AuthResponse is a response from logging in.
type AuthResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

// UserResponse describes an admin account.
type UserResponse struct {
	ID      ksid.ID `json:"id"`
	Email   string  `json:"email"`
	Name    string  `json:"name"`
	Created string  `json:"created"`
}

// LogoutResponse is a response from logging out.
type LogoutResponse = OkResponse

// ListSessionsResponse lists the current user's active sessions.
type ListSessionsResponse struct {
	Sessions []SessionResponse `json:"sessions"`
}

// SessionResponse describes one active session.
type SessionResponse struct {
	ID          ksid.ID `json:"id"`
	DeviceInfo  string  `json:"device_info,omitempty"`
	IPAddress   string  `json:"ip_address,omitempty"`
	CountryCode string  `json:"country_code,omitempty"`
	Created     string  `json:"created"`
	LastUsed    string  `json:"last_used"`
	IsCurrent   bool    `json:"is_current"`
}

// RevokeSessionResponse is a response from revoking a session.
type RevokeSessionResponse = OkResponse

// RevokeAllSessionsResponse reports how many sessions were revoked.
type RevokeAllSessionsResponse struct {
	RevokedCount int `json:"revoked_count"`
}

// --- Form Responses ---

// FormResponse is the full configuration of one form.
type FormResponse struct {
	ID           ksid.ID             `json:"id"`
	Slug         string              `json:"slug"`
	Name         string              `json:"name"`
	DatabaseID   string              `json:"database_id"`
	Mode         string              `json:"mode"`
	Fields       []FormFieldPayload  `json:"fields"`
	Filters      []FormFilterPayload `json:"filters,omitempty"`
	Sorts        []FormSortPayload   `json:"sorts,omitempty"`
	SubmitLabel  string              `json:"submit_label,omitempty"`
	Confirmation string              `json:"confirmation,omitempty"`
	Published    bool                `json:"published"`
	Notify       bool                `json:"notify"`
	Created      string              `json:"created"`
	Modified     string              `json:"modified"`
}

// ListFormsResponse lists all forms.
type ListFormsResponse struct {
	Forms []FormSummary `json:"forms"`
}

// FormSummary is a brief representation of a form for list responses.
type FormSummary struct {
	ID        ksid.ID `json:"id"`
	Slug      string  `json:"slug"`
	Name      string  `json:"name"`
	Mode      string  `json:"mode"`
	Published bool    `json:"published"`
	Modified  string  `json:"modified"`
}

// DeleteFormResponse is a response from deleting a form.
type DeleteFormResponse = OkResponse

// ListFormSubmissionsResponse lists a form's submission log.
type ListFormSubmissionsResponse struct {
	Submissions []SubmissionResponse `json:"submissions"`
}

// SubmissionResponse is one entry in the submission log.
type SubmissionResponse struct {
	ID          ksid.ID `json:"id"`
	PageID      string  `json:"page_id"`
	ClientIP    string  `json:"client_ip,omitempty"`
	CountryCode string  `json:"country_code,omitempty"`
	Created     string  `json:"created"`
}

// --- Database Responses ---

// GetDatabaseResponse describes a Notion database schema for the form builder.
type GetDatabaseResponse struct {
	ID         string             `json:"id"`
	Title      string             `json:"title"`
	Properties []DatabaseProperty `json:"properties"`
}

// DatabaseProperty is one property in a database schema.
type DatabaseProperty struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	ReadOnly bool     `json:"read_only"`
	Options  []string `json:"options,omitempty"`
}

// --- Manifest Responses ---

// ExportManifestResponse carries the YAML manifest of all forms.
type ExportManifestResponse struct {
	Manifest string `json:"manifest"`
}

// ImportManifestResponse reports the outcome of a manifest import.
type ImportManifestResponse struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// --- Push Responses ---

// SubscribePushResponse is a response from registering a push subscription.
type SubscribePushResponse struct {
	ID ksid.ID `json:"id"`
}

// UnsubscribePushResponse is a response from removing a push subscription.
type UnsubscribePushResponse = OkResponse

// GetVAPIDKeyResponse carries the VAPID public key browsers subscribe with.
type GetVAPIDKeyResponse struct {
	PublicKey string `json:"public_key"`
}

// --- Health Responses ---

// HealthResponse is a health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// --- Public form Responses ---

// RenderFormResponse is the public model of a published form.
type RenderFormResponse struct {
	Slug         string                  `json:"slug"`
	Name         string                  `json:"name"`
	Mode         string                  `json:"mode"`
	SubmitLabel  string                  `json:"submit_label,omitempty"`
	Confirmation string                  `json:"confirmation,omitempty"`
	Fields       []RenderedFieldResponse `json:"fields"`
}

// RenderedFieldResponse is one field on the rendered form.
type RenderedFieldResponse struct {
	PropertyID  string   `json:"property_id"`
	Type        string   `json:"type"`
	Label       string   `json:"label"`
	Placeholder string   `json:"placeholder,omitempty"`
	HelpText    string   `json:"help_text,omitempty"`
	Required    bool     `json:"required,omitempty"`
	Editable    bool     `json:"editable"`
	Options     []string `json:"options,omitempty"`
	Default     any      `json:"default,omitempty"`
}

// SubmitFormResponse is a response from a successful submission.
type SubmitFormResponse struct {
	PageID       string `json:"page_id"`
	Confirmation string `json:"confirmation,omitempty"`
}

// ListRowsResponse lists the rows a list-mode form exposes.
type ListRowsResponse struct {
	Rows []RowResponse `json:"rows"`
}

// RowResponse is one decoded database row.
type RowResponse struct {
	PageID string         `json:"page_id"`
	Values map[string]any `json:"values"`
}

// UpdateRowResponse is a response from editing a row.
type UpdateRowResponse struct {
	PageID string `json:"page_id"`
}
