package ruleset

import (
	"fmt"

	"go.uber.org/zap"
)

// Guard reacts to runtime references into the catalog that have no
// definition. Strict guards panic; others log at Error and let the caller
// degrade to a no-op.
type Guard struct {
	Logger *zap.Logger
	Strict bool
}

// NewGuard returns a Guard logging to logger.
//
// Precondition: logger must be non-nil.
func NewGuard(logger *zap.Logger, strict bool) Guard {
	if logger == nil {
		panic("ruleset.NewGuard: precondition violated: logger must be non-nil")
	}
	return Guard{Logger: logger, Strict: strict}
}

// Corrupt reports a catalog corruption.
//
// Postcondition: panics with an error wrapping ErrCorrupt when g.Strict.
func (g Guard) Corrupt(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if g.Strict {
		panic(fmt.Errorf("%w: %s", ErrCorrupt, msg))
	}
	if g.Logger != nil {
		g.Logger.Error("catalog corruption", zap.String("detail", msg))
	}
}
