// Imports and exports form configurations as YAML manifests.

package handlers

import (
	"context"
	"errors"

	"github.com/realsalbednarz/notion-form-sub000/internal/forms"
	"github.com/realsalbednarz/notion-form-sub000/internal/identity"
	"github.com/realsalbednarz/notion-form-sub000/internal/server/dto"
)

// ManifestHandler serves manifest import and export.
type ManifestHandler struct {
	svc *Services
}

// NewManifestHandler creates a new manifest handler.
func NewManifestHandler(svc *Services) *ManifestHandler {
	return &ManifestHandler{svc: svc}
}

// ExportManifest serializes every form to a YAML manifest. The manifest can
// be versioned alongside other infrastructure and re-imported elsewhere.
func (h *ManifestHandler) ExportManifest(ctx context.Context, _ *identity.User, _ *dto.ExportManifestRequest) (*dto.ExportManifestResponse, error) {
	configs := make([]*forms.FormConfig, 0, h.svc.Form.Len())
	for form := range h.svc.Form.All() {
		configs = append(configs, form)
	}
	data, err := forms.ExportManifest(configs)
	if err != nil {
		return nil, dto.InternalWithError("Failed to export manifest", err)
	}
	return &dto.ExportManifestResponse{Manifest: string(data)}, nil
}

// ImportManifest applies a YAML manifest: forms are matched by slug, existing
// ones updated in place and new ones created. Forms absent from the manifest
// are left untouched.
func (h *ManifestHandler) ImportManifest(ctx context.Context, _ *identity.User, req *dto.ImportManifestRequest) (*dto.ImportManifestResponse, error) {
	manifest, err := forms.ParseManifestBytes([]byte(req.Manifest))
	if err != nil {
		return nil, dto.BadRequest("Invalid manifest: " + err.Error())
	}

	resp := &dto.ImportManifestResponse{}
	for _, incoming := range manifest.Forms {
		existing, err := h.svc.Form.GetBySlug(incoming.Slug)
		if err != nil {
			if !errors.Is(err, forms.ErrFormNotFound) {
				return nil, dto.InternalWithError("Failed to look up form", err)
			}
			if _, err := h.svc.Form.Create(incoming.Clone()); err != nil {
				return nil, mapFormError(err)
			}
			resp.Created++
			continue
		}

		if _, err := h.svc.Form.Modify(existing.ID, func(form *forms.FormConfig) error {
			form.Name = incoming.Name
			form.DatabaseID = incoming.DatabaseID
			form.Mode = incoming.Mode
			form.Fields = incoming.Fields
			form.Filters = incoming.Filters
			form.Sorts = incoming.Sorts
			form.SubmitLabel = incoming.SubmitLabel
			form.Confirmation = incoming.Confirmation
			form.Published = incoming.Published
			form.Notify = incoming.Notify
			return nil
		}); err != nil {
			return nil, mapFormError(err)
		}
		resp.Updated++
	}
	return resp, nil
}
