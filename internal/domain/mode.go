package domain

import "github.com/pkg/errors"

// Mode selects which report blocks a run prints.
type Mode string

const (
	ModeSimple    Mode = "simple"
	ModeDetailed  Mode = "detailed"
	ModeHoldings  Mode = "holdings"
	ModePositions Mode = "positions"
	ModeFunds     Mode = "funds"
)

// ParseMode validates a configured default display mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeSimple, ModeDetailed, ModeHoldings, ModePositions, ModeFunds:
		return m, nil
	}
	return "", errors.Errorf("unknown display mode %q", s)
}
