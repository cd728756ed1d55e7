package dto

import "github.com/maruel/ksid"

// --- Auth ---

// LoginRequest is a request to log in.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate validates the login request fields.
func (r *LoginRequest) Validate() error {
	if r.Email == "" {
		return MissingField("email")
	}
	if r.Password == "" {
		return MissingField("password")
	}
	return nil
}

// LogoutRequest is a request to revoke the current session.
type LogoutRequest struct{}

// Validate is a no-op for LogoutRequest.
func (r *LogoutRequest) Validate() error {
	return nil
}

// GetMeRequest is a request to get current user info.
type GetMeRequest struct{}

// Validate is a no-op for GetMeRequest.
func (r *GetMeRequest) Validate() error {
	return nil
}

// ListSessionsRequest is a request to list the current user's active sessions.
type ListSessionsRequest struct{}

// Validate is a no-op for ListSessionsRequest.
func (r *ListSessionsRequest) Validate() error {
	return nil
}

// RevokeSessionRequest is a request to revoke a specific session.
type RevokeSessionRequest struct {
	SessionID ksid.ID `path:"sessionID"`
}

// Validate validates the revoke session request fields.
func (r *RevokeSessionRequest) Validate() error {
	if r.SessionID.IsZero() {
		return MissingField("sessionID")
	}
	return nil
}

// RevokeAllSessionsRequest is a request to revoke all other sessions.
type RevokeAllSessionsRequest struct{}

// Validate is a no-op for RevokeAllSessionsRequest.
func (r *RevokeAllSessionsRequest) Validate() error {
	return nil
}

// --- Forms ---

// FormFieldPayload configures one field on a form.
type FormFieldPayload struct {
	PropertyID   string                 `json:"property_id"`
	PropertyType string                 `json:"property_type"`
	Label        string                 `json:"label,omitempty"`
	Placeholder  string                 `json:"placeholder,omitempty"`
	HelpText     string                 `json:"help_text,omitempty"`
	Required     bool                   `json:"required,omitempty"`
	Editable     *bool                  `json:"editable,omitempty"`
	Visible      *bool                  `json:"visible,omitempty"`
	ShowInList   *bool                  `json:"show_in_list,omitempty"`
	Default      *FormDefaultPayload    `json:"default,omitempty"`
	Validation   *FormValidationPayload `json:"validation,omitempty"`
}

// FormDefaultPayload pre-fills a field at render time.
type FormDefaultPayload struct {
	Kind       string `json:"kind"`
	Value      any    `json:"value,omitempty"`
	Function   string `json:"function,omitempty"`
	Expression string `json:"expression,omitempty"`
}

// FormValidationPayload constrains submitted values for one field.
type FormValidationPayload struct {
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Pattern string   `json:"pattern,omitempty"`
	Message string   `json:"message,omitempty"`
}

// FormFilterPayload narrows the rows a list-mode form shows.
type FormFilterPayload struct {
	PropertyID   string `json:"property_id"`
	PropertyType string `json:"property_type"`
	Operator     string `json:"operator"`
	Value        any    `json:"value,omitempty"`
}

// FormSortPayload orders list-mode rows.
type FormSortPayload struct {
	Property  string `json:"property,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Direction string `json:"direction"`
}

// ListFormsRequest is a request to list all forms.
type ListFormsRequest struct{}

// Validate is a no-op for ListFormsRequest.
func (r *ListFormsRequest) Validate() error {
	return nil
}

// GetFormRequest is a request to get a form configuration.
type GetFormRequest struct {
	FormID ksid.ID `path:"formID"`
}

// Validate validates the get form request fields.
func (r *GetFormRequest) Validate() error {
	if r.FormID.IsZero() {
		return MissingField("formID")
	}
	return nil
}

// CreateFormRequest is a request to create a form.
type CreateFormRequest struct {
	Slug         string              `json:"slug"`
	Name         string              `json:"name"`
	DatabaseID   string              `json:"database_id"`
	Mode         string              `json:"mode"`
	Fields       []FormFieldPayload  `json:"fields"`
	Filters      []FormFilterPayload `json:"filters,omitempty"`
	Sorts        []FormSortPayload   `json:"sorts,omitempty"`
	SubmitLabel  string              `json:"submit_label,omitempty"`
	Confirmation string              `json:"confirmation,omitempty"`
	Notify       bool                `json:"notify,omitempty"`
}

// Validate validates the create form request fields. Structural rules on
// fields, filters, and sorts are enforced by the forms package on conversion.
func (r *CreateFormRequest) Validate() error {
	if r.Slug == "" {
		return MissingField("slug")
	}
	if r.Name == "" {
		return MissingField("name")
	}
	if r.DatabaseID == "" {
		return MissingField("database_id")
	}
	if r.Mode == "" {
		return MissingField("mode")
	}
	if len(r.Fields) == 0 {
		return MissingField("fields")
	}
	return nil
}

// UpdateFormRequest is a request to update a form.
type UpdateFormRequest struct {
	FormID       ksid.ID             `path:"formID"`
	Slug         string              `json:"slug"`
	Name         string              `json:"name"`
	DatabaseID   string              `json:"database_id"`
	Mode         string              `json:"mode"`
	Fields       []FormFieldPayload  `json:"fields"`
	Filters      []FormFilterPayload `json:"filters,omitempty"`
	Sorts        []FormSortPayload   `json:"sorts,omitempty"`
	SubmitLabel  string              `json:"submit_label,omitempty"`
	Confirmation string              `json:"confirmation,omitempty"`
	Notify       bool                `json:"notify,omitempty"`
}

// Validate validates the update form request fields.
func (r *UpdateFormRequest) Validate() error {
	if r.FormID.IsZero() {
		return MissingField("formID")
	}
	if r.Slug == "" {
		return MissingField("slug")
	}
	if r.Name == "" {
		return MissingField("name")
	}
	if r.DatabaseID == "" {
		return MissingField("database_id")
	}
	if r.Mode == "" {
		return MissingField("mode")
	}
	if len(r.Fields) == 0 {
		return MissingField("fields")
	}
	return nil
}

// DeleteFormRequest is a request to delete a form.
type DeleteFormRequest struct {
	FormID ksid.ID `path:"formID"`
}

// Validate validates the delete form request fields.
func (r *DeleteFormRequest) Validate() error {
	if r.FormID.IsZero() {
		return MissingField("formID")
	}
	return nil
}

// PublishFormRequest is a request to publish or unpublish a form.
type PublishFormRequest struct {
	FormID    ksid.ID `path:"formID"`
	Published bool    `json:"published"`
}

// Validate validates the publish form request fields.
func (r *PublishFormRequest) Validate() error {
	if r.FormID.IsZero() {
		return MissingField("formID")
	}
	return nil
}

// ListFormSubmissionsRequest is a request to list a form's submission log.
type ListFormSubmissionsRequest struct {
	FormID ksid.ID `path:"formID"`
}

// Validate validates the list submissions request fields.
func (r *ListFormSubmissionsRequest) Validate() error {
	if r.FormID.IsZero() {
		return MissingField("formID")
	}
	return nil
}

// --- Databases ---

// GetDatabaseRequest is a request to browse a Notion database schema.
type GetDatabaseRequest struct {
	DatabaseID string `path:"databaseID"`
}

// Validate validates the get database request fields.
func (r *GetDatabaseRequest) Validate() error {
	if r.DatabaseID == "" {
		return MissingField("databaseID")
	}
	return nil
}

// --- Manifest ---

// ExportManifestRequest is a request to export all forms as YAML.
type ExportManifestRequest struct{}

// Validate is a no-op for ExportManifestRequest.
func (r *ExportManifestRequest) Validate() error {
	return nil
}

// ImportManifestRequest is a request to import forms from a YAML manifest.
type ImportManifestRequest struct {
	Manifest string `json:"manifest"`
}

// Validate validates the import manifest request fields.
func (r *ImportManifestRequest) Validate() error {
	if r.Manifest == "" {
		return MissingField("manifest")
	}
	return nil
}

// --- Push ---

// PushKeys holds the client encryption keys of a browser push subscription.
type PushKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// SubscribePushRequest registers a browser push subscription. The shape
// mirrors the PushSubscription object the Push API hands to the browser.
type SubscribePushRequest struct {
	Endpoint string   `json:"endpoint"`
	Keys     PushKeys `json:"keys"`
}

// Validate validates the subscribe push request fields.
func (r *SubscribePushRequest) Validate() error {
	if r.Endpoint == "" {
		return MissingField("endpoint")
	}
	if r.Keys.P256dh == "" {
		return MissingField("keys.p256dh")
	}
	if r.Keys.Auth == "" {
		return MissingField("keys.auth")
	}
	return nil
}

// UnsubscribePushRequest removes a push subscription.
type UnsubscribePushRequest struct {
	SubscriptionID ksid.ID `path:"subID"`
}

// Validate validates the unsubscribe push request fields.
func (r *UnsubscribePushRequest) Validate() error {
	if r.SubscriptionID.IsZero() {
		return MissingField("subID")
	}
	return nil
}

// GetVAPIDKeyRequest fetches the server's VAPID public key.
type GetVAPIDKeyRequest struct{}

// Validate is a no-op for GetVAPIDKeyRequest.
func (r *GetVAPIDKeyRequest) Validate() error {
	return nil
}

// --- Health ---

// HealthRequest is a health check request.
type HealthRequest struct{}

// Validate is a no-op for HealthRequest.
func (r *HealthRequest) Validate() error {
	return nil
}

// --- Public form endpoints ---

// RenderFormRequest fetches the public model of a published form.
type RenderFormRequest struct {
	Slug string `path:"slug"`
}

// Validate validates the render form request fields.
func (r *RenderFormRequest) Validate() error {
	if r.Slug == "" {
		return MissingField("slug")
	}
	return nil
}

// SubmitFormRequest submits values to a create-mode form.
type SubmitFormRequest struct {
	Slug   string         `path:"slug"`
	Values map[string]any `json:"values"`
}

// Validate validates the submit form request fields.
func (r *SubmitFormRequest) Validate() error {
	if r.Slug == "" {
		return MissingField("slug")
	}
	if len(r.Values) == 0 {
		return MissingField("values")
	}
	return nil
}

// ListRowsRequest lists the rows a published list-mode form exposes.
type ListRowsRequest struct {
	Slug string `path:"slug"`
}

// Validate validates the list rows request fields.
func (r *ListRowsRequest) Validate() error {
	if r.Slug == "" {
		return MissingField("slug")
	}
	return nil
}

// UpdateRowRequest edits one row through a published list-mode form.
type UpdateRowRequest struct {
	Slug   string         `path:"slug"`
	PageID string         `path:"pageID"`
	Values map[string]any `json:"values"`
}

// Validate validates the update row request fields.
func (r *UpdateRowRequest) Validate() error {
	if r.Slug == "" {
		return MissingField("slug")
	}
	if r.PageID == "" {
		return MissingField("pageID")
	}
	if len(r.Values) == 0 {
		return MissingField("values")
	}
	return nil
}
