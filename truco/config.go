package truco

import "errors"

const (
	TargetShort = 15
	TargetLong  = 30
)

var (
	ErrInvalidMode   = errors.New("invalid mode, must be 1v1, 2v2 or 3v3")
	ErrInvalidTarget = errors.New("invalid target score, must be positive")
)

// Config carries everything a match needs before players are seated.
type Config struct {
	// Code is the externally visible match identifier. Empty is
	// allowed; the hosting layer usually assigns one.
	Code string

	Mode        Mode
	TargetScore int

	// Seed fixes the shuffle sequence. Zero means time-seeded.
	Seed int64
}

func (c Config) validate() error {
	if !c.Mode.valid() {
		return ErrInvalidMode
	}
	if c.TargetScore <= 0 {
		return ErrInvalidTarget
	}
	return nil
}
