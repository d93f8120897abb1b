package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger to provide audited combat rolls.
// Every roll is logged at debug level with its inputs and result.
//
// Roller satisfies Source, so it can be handed to anything that rolls.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	if src == nil || logger == nil {
		panic("dice.NewLoggedRoller: src and logger must be non-nil")
	}
	return &Roller{src: src, logger: logger}
}

// Intn delegates to the wrapped Source and logs the result.
//
// Precondition: n > 0.
func (r *Roller) Intn(n int) int {
	v := r.src.Intn(n)
	r.logger.Debug("dice roll",
		zap.Int("n", n),
		zap.Int("result", v),
	)
	return v
}

// Float64 delegates to the wrapped Source and logs the result.
func (r *Roller) Float64() float64 {
	v := r.src.Float64()
	r.logger.Debug("dice draw", zap.Float64("result", v))
	return v
}
