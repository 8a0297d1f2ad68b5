package ingest

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Options bound one sync run
type Options struct {
	MaxMatches int           `validate:"min=1"`
	BatchSize  int           `validate:"min=1,max=200"`
	BatchDelay time.Duration `validate:"gte=0"`
}

// DefaultOptions mirrors the SYNC_* config defaults
func DefaultOptions() Options {
	return Options{
		MaxMatches: 20,
		BatchSize:  20,
		BatchDelay: 2 * time.Second,
	}
}

var validate = validator.New()

// Validate checks the option bounds
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("invalid sync options: %w", err)
	}
	return nil
}
