// Browses Notion database schemas for the form builder.

package handlers

import (
	"context"
	"slices"
	"strings"

	"github.com/realsalbednarz/notion-form-sub000/internal/identity"
	"github.com/realsalbednarz/notion-form-sub000/internal/notion"
	"github.com/realsalbednarz/notion-form-sub000/internal/server/dto"
)

// DatabaseHandler serves database schema lookups.
type DatabaseHandler struct {
	svc *Services
}

// NewDatabaseHandler creates a new database handler.
func NewDatabaseHandler(svc *Services) *DatabaseHandler {
	return &DatabaseHandler{svc: svc}
}

// GetDatabase fetches a database schema so the form builder can offer
// property pickers with live names, types, and select options.
func (h *DatabaseHandler) GetDatabase(ctx context.Context, _ *identity.User, req *dto.GetDatabaseRequest) (*dto.GetDatabaseResponse, error) {
	if h.svc.Client == nil {
		return nil, dto.BadRequest("Notion token is not configured")
	}

	db, err := h.svc.Client.GetDatabase(ctx, req.DatabaseID)
	if err != nil {
		return nil, dto.Upstream(err)
	}

	resp := &dto.GetDatabaseResponse{
		ID:         db.ID,
		Title:      plainText(db.Title),
		Properties: make([]dto.DatabaseProperty, 0, len(db.Properties)),
	}
	for name, prop := range db.Properties {
		resp.Properties = append(resp.Properties, dto.DatabaseProperty{
			ID:       prop.ID,
			Name:     name,
			Type:     string(prop.Type),
			ReadOnly: prop.Type.ReadOnly(),
			Options:  propertyOptionNames(&prop),
		})
	}
	slices.SortFunc(resp.Properties, func(a, b dto.DatabaseProperty) int {
		return strings.Compare(a.Name, b.Name)
	})
	return resp, nil
}

// plainText flattens rich text to its plain content.
func plainText(rt []notion.RichText) string {
	s := ""
	for _, t := range rt {
		s += t.PlainText
	}
	return s
}

// propertyOptionNames returns the option names of select-like properties.
func propertyOptionNames(prop *notion.DBProperty) []string {
	var opts []notion.SelectOption
	switch {
	case prop.Select != nil:
		opts = prop.Select.Options
	case prop.MultiSelect != nil:
		opts = prop.MultiSelect.Options
	case prop.Status != nil:
		opts = prop.Status.Options
	default:
		return nil
	}
	names := make([]string, len(opts))
	for i, o := range opts {
		names[i] = o.Name
	}
	return names
}
