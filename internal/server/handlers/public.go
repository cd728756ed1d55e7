// Public form endpoints. These serve anonymous visitors, so every lookup
// treats unpublished forms the same as missing ones.

package handlers

import (
	"context"
	"errors"

	"github.com/realsalbednarz/notion-form-sub000/internal/forms"
	"github.com/realsalbednarz/notion-form-sub000/internal/server/dto"
	"github.com/realsalbednarz/notion-form-sub000/internal/server/reqctx"
)

// PublicHandler serves the unauthenticated form surface under /f/.
type PublicHandler struct {
	svc      *Services
	cfg      *Config
	notifier *Notifier
}

// NewPublicHandler creates a new public form handler.
func NewPublicHandler(svc *Services, cfg *Config) *PublicHandler {
	return &PublicHandler{svc: svc, cfg: cfg, notifier: NewNotifier(svc.Push, cfg.WebPush)}
}

// publishedForm resolves a slug to a form that visitors may see.
func (h *PublicHandler) publishedForm(slug string) (*forms.FormConfig, error) {
	form, err := h.svc.Form.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, forms.ErrFormNotFound) {
			return nil, dto.FormNotFound()
		}
		return nil, dto.InternalWithError("Failed to look up form", err)
	}
	if !form.Published {
		return nil, dto.FormNotFound()
	}
	return form, nil
}

// RenderForm returns the field descriptors a client needs to draw the form.
func (h *PublicHandler) RenderForm(ctx context.Context, req *dto.RenderFormRequest) (*dto.RenderFormResponse, error) {
	form, err := h.publishedForm(req.Slug)
	if err != nil {
		return nil, err
	}
	if h.svc.Notion == nil {
		return nil, dto.Upstream(errNotionNotConfigured)
	}
	rendered, err := h.svc.Notion.Render(ctx, form, "")
	if err != nil {
		return nil, dto.Upstream(err)
	}
	return renderedToResponse(rendered), nil
}

// SubmitForm creates a page from a visitor's values and records the
// submission for auditing. Notifications fire asynchronously.
func (h *PublicHandler) SubmitForm(ctx context.Context, req *dto.SubmitFormRequest) (*dto.SubmitFormResponse, error) {
	form, err := h.publishedForm(req.Slug)
	if err != nil {
		return nil, err
	}
	if h.svc.Notion == nil {
		return nil, dto.Upstream(errNotionNotConfigured)
	}
	page, err := h.svc.Notion.Submit(ctx, form, req.Values)
	if err != nil {
		return nil, mapSubmitError(err)
	}
	if _, err := h.svc.Submission.Record(form.ID, page.ID, reqctx.ClientIP(ctx), reqctx.CountryCode(ctx)); err != nil {
		return nil, dto.InternalWithError("Failed to record submission", err)
	}
	if form.Notify {
		h.notifier.FormSubmitted(form.Name, form.Slug, page.ID)
	}
	return &dto.SubmitFormResponse{PageID: page.ID, Confirmation: form.Confirmation}, nil
}

// ListRows returns the visible rows of a list-mode form.
func (h *PublicHandler) ListRows(ctx context.Context, req *dto.ListRowsRequest) (*dto.ListRowsResponse, error) {
	form, err := h.publishedForm(req.Slug)
	if err != nil {
		return nil, err
	}
	if h.svc.Notion == nil {
		return nil, dto.Upstream(errNotionNotConfigured)
	}
	rows, err := h.svc.Notion.List(ctx, form)
	if err != nil {
		if errors.Is(err, forms.ErrWrongMode) {
			return nil, dto.FormNotFound()
		}
		return nil, dto.Upstream(err)
	}
	if max := h.cfg.Quotas.MaxRowsPerQuery; max > 0 && len(rows) > max {
		rows = rows[:max]
	}
	return &dto.ListRowsResponse{Rows: rowsToResponse(rows)}, nil
}

// UpdateRow edits a row through a list-mode form's editable fields.
func (h *PublicHandler) UpdateRow(ctx context.Context, req *dto.UpdateRowRequest) (*dto.UpdateRowResponse, error) {
	form, err := h.publishedForm(req.Slug)
	if err != nil {
		return nil, err
	}
	if h.svc.Notion == nil {
		return nil, dto.Upstream(errNotionNotConfigured)
	}
	page, err := h.svc.Notion.Update(ctx, form, req.PageID, req.Values)
	if err != nil {
		return nil, mapSubmitError(err)
	}
	if _, err := h.svc.Submission.Record(form.ID, page.ID, reqctx.ClientIP(ctx), reqctx.CountryCode(ctx)); err != nil {
		return nil, dto.InternalWithError("Failed to record submission", err)
	}
	if form.Notify {
		h.notifier.FormSubmitted(form.Name, form.Slug, page.ID)
	}
	return &dto.UpdateRowResponse{PageID: page.ID}, nil
}

// mapSubmitError translates write failures into API errors. Validation
// failures carry per-field messages in the details map.
func mapSubmitError(err error) error {
	var verr *forms.ValidationError
	if errors.As(err, &verr) {
		apiErr := dto.BadRequest("Validation failed")
		for field, msg := range verr.Fields {
			apiErr = apiErr.WithDetail(field, msg)
		}
		return apiErr
	}
	if errors.Is(err, forms.ErrWrongMode) {
		return dto.FormNotFound()
	}
	return dto.Upstream(err)
}

var errNotionNotConfigured = errors.New("notion token is not configured")
