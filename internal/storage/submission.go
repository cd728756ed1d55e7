// Handles the append-only audit log of public form submissions.

package storage

import (
	"errors"
	"iter"
	"time"

	"github.com/maruel/ksid"

	"github.com/realsalbednarz/notion-form-sub000/internal/jsonldb"
)

// Submission records one accepted public form submission.
type Submission struct {
	ID          ksid.ID `json:"id" jsonschema:"description=Unique submission identifier"`
	FormID      ksid.ID `json:"form_id" jsonschema:"description=Form that received the submission"`
	PageID      string  `json:"page_id" jsonschema:"description=Notion page created or updated"`
	ClientIP    string  `json:"client_ip,omitempty" jsonschema:"description=Client IP address"`
	CountryCode string  `json:"country_code,omitempty" jsonschema:"description=ISO 3166-1 alpha-2 country code"`
	Created     Time    `json:"created" jsonschema:"description=Submission timestamp"`
}

// Clone returns a deep copy of the submission.
func (s *Submission) Clone() *Submission {
	c := *s
	return &c
}

// GetID returns the submission's ID.
func (s *Submission) GetID() ksid.ID {
	return s.ID
}

// SubmissionService stores the submission audit log.
type SubmissionService struct {
	table    *jsonldb.Table[*Submission]
	byFormID *jsonldb.Index[ksid.ID, *Submission]
}

// NewSubmissionService creates a new submission service.
func NewSubmissionService(tablePath string) (*SubmissionService, error) {
	table, err := jsonldb.NewTable[*Submission](tablePath)
	if err != nil {
		return nil, err
	}
	byFormID := jsonldb.NewIndex(table, func(s *Submission) ksid.ID { return s.FormID })
	return &SubmissionService{table: table, byFormID: byFormID}, nil
}

// Record appends a submission to the log.
func (s *SubmissionService) Record(formID ksid.ID, pageID, clientIP, countryCode string) (*Submission, error) {
	if formID.IsZero() {
		return nil, errSubmissionFormIDRequired
	}
	if pageID == "" {
		return nil, errSubmissionPageIDRequired
	}
	sub := &Submission{
		ID:          ksid.NewID(),
		FormID:      formID,
		PageID:      pageID,
		ClientIP:    clientIP,
		CountryCode: countryCode,
		Created:     Now(),
	}
	if err := s.table.Append(sub); err != nil {
		return nil, err
	}
	return sub.Clone(), nil
}

// ByForm returns an iterator over all submissions for a form.
func (s *SubmissionService) ByForm(formID ksid.ID) iter.Seq[*Submission] {
	return s.byFormID.Iter(formID)
}

// CountSince returns the number of submissions for a form since the cutoff.
func (s *SubmissionService) CountSince(formID ksid.ID, since time.Duration) int {
	cutoff := ToTime(time.Now().Add(-since))
	count := 0
	for sub := range s.byFormID.Iter(formID) {
		if sub.Created.After(cutoff) {
			count++
		}
	}
	return count
}

// Len returns the total number of recorded submissions.
func (s *SubmissionService) Len() int {
	return s.table.Len()
}

var (
	errSubmissionFormIDRequired = errors.New("submission form_id is required")
	errSubmissionPageIDRequired = errors.New("submission page_id is required")
)
