package summarizer

import (
	"fmt"

	apperrors "github.com/yanqian/text-summarizer/pkg/errors"
)

// GenerationParameters controls decoding for a single inference call.
type GenerationParameters struct {
	MaxLength int  `json:"maxLength" yaml:"maxLength"`
	MinLength int  `json:"minLength" yaml:"minLength"`
	NumBeams  int  `json:"numBeams" yaml:"numBeams"`
	DoSample  bool `json:"doSample" yaml:"doSample"`
}

// DefaultParameters returns the decoding settings used when a request carries none.
func DefaultParameters() GenerationParameters {
	return GenerationParameters{MaxLength: 130, MinLength: 30, NumBeams: 4}
}

// Validate enforces the parameter invariants.
func (p GenerationParameters) Validate() error {
	switch {
	case p.MaxLength <= 0:
		return invalidParams("maxLength must be positive, got %d", p.MaxLength)
	case p.MinLength < 0:
		return invalidParams("minLength cannot be negative, got %d", p.MinLength)
	case p.MinLength > p.MaxLength:
		return invalidParams("minLength (%d) cannot exceed maxLength (%d)", p.MinLength, p.MaxLength)
	case p.NumBeams < 1:
		return invalidParams("numBeams must be at least 1, got %d", p.NumBeams)
	}
	return nil
}

func invalidParams(format string, args ...any) error {
	return apperrors.Wrap(apperrors.CodeInvalidParameters, fmt.Sprintf(format, args...), nil)
}
