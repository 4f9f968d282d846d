package ops

import "github.com/ablekit/relay/internal/errors"

// Purger is implemented by stores that support retention enforcement.
type Purger interface {
	PurgeOlderThan(days int) (int, error)
}

// PurgeInput contains parameters for the Purge operation.
type PurgeInput struct {
	OlderThanDays int // required, must be positive
}

// PurgeOutput contains the result of the Purge operation.
type PurgeOutput struct {
	Purged int `json:"purged"`
}

// Purge removes reports older than the retention window. Only available when
// the configured store supports purging (the sqlite store does; the in-memory
// store evicts by cap instead).
func (e *Engine) Purge(input PurgeInput) (*PurgeOutput, error) {
	if input.OlderThanDays <= 0 {
		return nil, errors.NewInvalidRequest("older_than_days must be positive")
	}
	p, ok := e.reports.(Purger)
	if !ok {
		return nil, errors.NewInvalidRequest("configured store does not support purge")
	}
	purged, err := p.PurgeOlderThan(input.OlderThanDays)
	if err != nil {
		return nil, err
	}
	return &PurgeOutput{Purged: purged}, nil
}
