// Converts between dto payloads and domain types.

package handlers

import (
	"time"

	"github.com/realsalbednarz/notion-form-sub000/internal/forms"
	"github.com/realsalbednarz/notion-form-sub000/internal/identity"
	"github.com/realsalbednarz/notion-form-sub000/internal/notion"
	"github.com/realsalbednarz/notion-form-sub000/internal/server/dto"
	"github.com/realsalbednarz/notion-form-sub000/internal/storage"
)

func userToResponse(user *identity.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:      user.ID,
		Email:   user.Email,
		Name:    user.Name,
		Created: user.Created.UTC().Format(time.RFC3339),
	}
}

func timeToString(t storage.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.AsTime().Format(time.RFC3339)
}

func fieldsToDomain(payloads []dto.FormFieldPayload) []forms.FieldDefinition {
	fields := make([]forms.FieldDefinition, len(payloads))
	for i, p := range payloads {
		fields[i] = forms.FieldDefinition{
			PropertyID:   p.PropertyID,
			PropertyType: notion.PropertyType(p.PropertyType),
			Label:        p.Label,
			Placeholder:  p.Placeholder,
			HelpText:     p.HelpText,
			Required:     p.Required,
			Editable:     p.Editable,
			Visible:      p.Visible,
			ShowInList:   p.ShowInList,
		}
		if p.Default != nil {
			fields[i].Default = &forms.DefaultValue{
				Kind:       p.Default.Kind,
				Value:      p.Default.Value,
				Function:   p.Default.Function,
				Expression: p.Default.Expression,
			}
		}
		if p.Validation != nil {
			fields[i].Validation = &forms.Validation{
				Min:     p.Validation.Min,
				Max:     p.Validation.Max,
				Pattern: p.Validation.Pattern,
				Message: p.Validation.Message,
			}
		}
	}
	return fields
}

func fieldsToPayload(fields []forms.FieldDefinition) []dto.FormFieldPayload {
	payloads := make([]dto.FormFieldPayload, len(fields))
	for i, f := range fields {
		payloads[i] = dto.FormFieldPayload{
			PropertyID:   f.PropertyID,
			PropertyType: string(f.PropertyType),
			Label:        f.Label,
			Placeholder:  f.Placeholder,
			HelpText:     f.HelpText,
			Required:     f.Required,
			Editable:     f.Editable,
			Visible:      f.Visible,
			ShowInList:   f.ShowInList,
		}
		if f.Default != nil {
			payloads[i].Default = &dto.FormDefaultPayload{
				Kind:       f.Default.Kind,
				Value:      f.Default.Value,
				Function:   f.Default.Function,
				Expression: f.Default.Expression,
			}
		}
		if f.Validation != nil {
			payloads[i].Validation = &dto.FormValidationPayload{
				Min:     f.Validation.Min,
				Max:     f.Validation.Max,
				Pattern: f.Validation.Pattern,
				Message: f.Validation.Message,
			}
		}
	}
	return payloads
}

func filtersToDomain(payloads []dto.FormFilterPayload) []notion.FilterRule {
	if len(payloads) == 0 {
		return nil
	}
	rules := make([]notion.FilterRule, len(payloads))
	for i, p := range payloads {
		rules[i] = notion.FilterRule{
			PropertyID:   p.PropertyID,
			PropertyType: notion.PropertyType(p.PropertyType),
			Operator:     notion.FilterOperator(p.Operator),
			Value:        p.Value,
		}
	}
	return rules
}

func filtersToPayload(rules []notion.FilterRule) []dto.FormFilterPayload {
	if len(rules) == 0 {
		return nil
	}
	payloads := make([]dto.FormFilterPayload, len(rules))
	for i, r := range rules {
		payloads[i] = dto.FormFilterPayload{
			PropertyID:   r.PropertyID,
			PropertyType: string(r.PropertyType),
			Operator:     string(r.Operator),
			Value:        r.Value,
		}
	}
	return payloads
}

func sortsToDomain(payloads []dto.FormSortPayload) []forms.SortRule {
	if len(payloads) == 0 {
		return nil
	}
	rules := make([]forms.SortRule, len(payloads))
	for i, p := range payloads {
		rules[i] = forms.SortRule{
			Property:  p.Property,
			Timestamp: p.Timestamp,
			Direction: p.Direction,
		}
	}
	return rules
}

func sortsToPayload(rules []forms.SortRule) []dto.FormSortPayload {
	if len(rules) == 0 {
		return nil
	}
	payloads := make([]dto.FormSortPayload, len(rules))
	for i, r := range rules {
		payloads[i] = dto.FormSortPayload{
			Property:  r.Property,
			Timestamp: r.Timestamp,
			Direction: r.Direction,
		}
	}
	return payloads
}

func formToResponse(form *forms.FormConfig) *dto.FormResponse {
	return &dto.FormResponse{
		ID:           form.ID,
		Slug:         form.Slug,
		Name:         form.Name,
		DatabaseID:   form.DatabaseID,
		Mode:         string(form.Mode),
		Fields:       fieldsToPayload(form.Fields),
		Filters:      filtersToPayload(form.Filters),
		Sorts:        sortsToPayload(form.Sorts),
		SubmitLabel:  form.SubmitLabel,
		Confirmation: form.Confirmation,
		Published:    form.Published,
		Notify:       form.Notify,
		Created:      timeToString(form.Created),
		Modified:     timeToString(form.Modified),
	}
}

func formToSummary(form *forms.FormConfig) dto.FormSummary {
	return dto.FormSummary{
		ID:        form.ID,
		Slug:      form.Slug,
		Name:      form.Name,
		Mode:      string(form.Mode),
		Published: form.Published,
		Modified:  timeToString(form.Modified),
	}
}

func renderedToResponse(rf *forms.RenderedForm) *dto.RenderFormResponse {
	resp := &dto.RenderFormResponse{
		Slug:         rf.Slug,
		Name:         rf.Name,
		Mode:         string(rf.Mode),
		SubmitLabel:  rf.SubmitLabel,
		Confirmation: rf.Confirmation,
		Fields:       make([]dto.RenderedFieldResponse, len(rf.Fields)),
	}
	for i, f := range rf.Fields {
		resp.Fields[i] = dto.RenderedFieldResponse{
			PropertyID:  f.PropertyID,
			Type:        f.Type,
			Label:       f.Label,
			Placeholder: f.Placeholder,
			HelpText:    f.HelpText,
			Required:    f.Required,
			Editable:    f.Editable,
			Options:     f.Options,
			Default:     f.Default,
		}
	}
	return resp
}

func rowsToResponse(rows []forms.Row) []dto.RowResponse {
	out := make([]dto.RowResponse, len(rows))
	for i, row := range rows {
		values := make(map[string]any, len(row.Values))
		for k, v := range row.Values {
			values[k] = v
		}
		out[i] = dto.RowResponse{PageID: row.PageID, Values: values}
	}
	return out
}
