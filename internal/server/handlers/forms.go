// Handles form configuration CRUD and publishing.

package handlers

import (
	"context"
	"errors"

	"github.com/realsalbednarz/notion-form-sub000/internal/forms"
	"github.com/realsalbednarz/notion-form-sub000/internal/identity"
	"github.com/realsalbednarz/notion-form-sub000/internal/server/dto"
)

// FormsHandler handles form configuration requests.
type FormsHandler struct {
	svc *Services
}

// NewFormsHandler creates a new forms handler.
func NewFormsHandler(svc *Services) *FormsHandler {
	return &FormsHandler{svc: svc}
}

// ListForms returns summaries of all configured forms.
func (h *FormsHandler) ListForms(ctx context.Context, _ *identity.User, _ *dto.ListFormsRequest) (*dto.ListFormsResponse, error) {
	summaries := make([]dto.FormSummary, 0, h.svc.Form.Len())
	for form := range h.svc.Form.All() {
		summaries = append(summaries, formToSummary(form))
	}
	return &dto.ListFormsResponse{Forms: summaries}, nil
}

// GetForm returns the full configuration of one form.
func (h *FormsHandler) GetForm(ctx context.Context, _ *identity.User, req *dto.GetFormRequest) (*dto.FormResponse, error) {
	form, err := h.svc.Form.Get(req.FormID)
	if err != nil {
		return nil, dto.FormNotFound()
	}
	return formToResponse(form), nil
}

// CreateForm creates a new form. Forms start unpublished.
func (h *FormsHandler) CreateForm(ctx context.Context, _ *identity.User, req *dto.CreateFormRequest) (*dto.FormResponse, error) {
	form := &forms.FormConfig{
		Slug:         req.Slug,
		Name:         req.Name,
		DatabaseID:   req.DatabaseID,
		Mode:         forms.FormMode(req.Mode),
		Fields:       fieldsToDomain(req.Fields),
		Filters:      filtersToDomain(req.Filters),
		Sorts:        sortsToDomain(req.Sorts),
		SubmitLabel:  req.SubmitLabel,
		Confirmation: req.Confirmation,
		Notify:       req.Notify,
	}
	created, err := h.svc.Form.Create(form)
	if err != nil {
		return nil, mapFormError(err)
	}
	return formToResponse(created), nil
}

// UpdateForm replaces a form's configuration.
func (h *FormsHandler) UpdateForm(ctx context.Context, _ *identity.User, req *dto.UpdateFormRequest) (*dto.FormResponse, error) {
	updated, err := h.svc.Form.Modify(req.FormID, func(form *forms.FormConfig) error {
		form.Slug = req.Slug
		form.Name = req.Name
		form.DatabaseID = req.DatabaseID
		form.Mode = forms.FormMode(req.Mode)
		form.Fields = fieldsToDomain(req.Fields)
		form.Filters = filtersToDomain(req.Filters)
		form.Sorts = sortsToDomain(req.Sorts)
		form.SubmitLabel = req.SubmitLabel
		form.Confirmation = req.Confirmation
		form.Notify = req.Notify
		return nil
	})
	if err != nil {
		return nil, mapFormError(err)
	}
	return formToResponse(updated), nil
}

// DeleteForm removes a form. Its submission log is kept for auditing.
func (h *FormsHandler) DeleteForm(ctx context.Context, _ *identity.User, req *dto.DeleteFormRequest) (*dto.DeleteFormResponse, error) {
	if err := h.svc.Form.Delete(req.FormID); err != nil {
		return nil, mapFormError(err)
	}
	return &dto.DeleteFormResponse{Ok: true}, nil
}

// PublishForm flips a form's published flag, making its public URL live or dead.
func (h *FormsHandler) PublishForm(ctx context.Context, _ *identity.User, req *dto.PublishFormRequest) (*dto.FormResponse, error) {
	updated, err := h.svc.Form.Modify(req.FormID, func(form *forms.FormConfig) error {
		form.Published = req.Published
		return nil
	})
	if err != nil {
		return nil, mapFormError(err)
	}
	return formToResponse(updated), nil
}

// ListSubmissions returns a form's submission log, most recent last.
func (h *FormsHandler) ListSubmissions(ctx context.Context, _ *identity.User, req *dto.ListFormSubmissionsRequest) (*dto.ListFormSubmissionsResponse, error) {
	if _, err := h.svc.Form.Get(req.FormID); err != nil {
		return nil, dto.FormNotFound()
	}

	subs := make([]dto.SubmissionResponse, 0, 16)
	for sub := range h.svc.Submission.ByForm(req.FormID) {
		subs = append(subs, dto.SubmissionResponse{
			ID:          sub.ID,
			PageID:      sub.PageID,
			ClientIP:    sub.ClientIP,
			CountryCode: sub.CountryCode,
			Created:     timeToString(sub.Created),
		})
	}
	return &dto.ListFormSubmissionsResponse{Submissions: subs}, nil
}

// mapFormError translates form service errors to API errors.
func mapFormError(err error) error {
	switch {
	case errors.Is(err, forms.ErrFormNotFound):
		return dto.FormNotFound()
	case errors.Is(err, forms.ErrSlugTaken):
		return dto.Conflict("Slug already in use")
	case errors.Is(err, forms.ErrFormQuotaExceeded):
		return dto.QuotaExceeded("Form quota exceeded")
	default:
		return dto.BadRequest(err.Error())
	}
}
