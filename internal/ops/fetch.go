package ops

import (
	"github.com/ablekit/relay/internal/errors"
	"github.com/ablekit/relay/internal/report"
	"github.com/ablekit/relay/internal/store"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	ID string // required
}

// FetchOutput contains the result of the Fetch operation.
type FetchOutput struct {
	Report *report.HandoffReport `json:"report"`
}

// Fetch retrieves a stored handoff report by id. Reports are immutable, so
// repeated fetches of the same id always return identical content.
func (e *Engine) Fetch(input FetchInput) (*FetchOutput, error) {
	if input.ID == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	r, err := e.reports.Get(input.ID)
	if err != nil {
		return nil, err
	}
	return &FetchOutput{Report: r}, nil
}

// ListInput contains parameters for the List operation.
type ListInput struct {
	Limit int // 0 means the default limit
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items []report.ReportSummary `json:"items"`
	Limit int                    `json:"limit"`
}

// List returns summaries of recent reports, most recent first.
func (e *Engine) List(input ListInput) (*ListOutput, error) {
	limit := store.ClampLimit(input.Limit)
	items, err := e.reports.ListRecent(limit)
	if err != nil {
		return nil, err
	}
	return &ListOutput{Items: items, Limit: limit}, nil
}
