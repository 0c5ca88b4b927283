package dice

import (
	"slices"

	"go.uber.org/zap"
)

// Roll evaluates expr against src, drawing Count dice in order.
//
// Postcondition: len(result.Dice) is expr.KeepHighest when set, else
// expr.Count; expr.Min() <= result.Total() <= expr.Max().
func Roll(expr Expression, src Source) RollResult {
	rolled := make([]int, expr.Count)
	for i := range rolled {
		rolled[i] = src.Intn(expr.Sides) + 1
	}
	if expr.KeepHighest > 0 {
		slices.SortFunc(rolled, func(a, b int) int { return b - a })
		rolled = rolled[:expr.KeepHighest]
	}
	return RollResult{Expression: expr.Raw, Dice: rolled, Modifier: expr.Modifier}
}

// RollExpr parses and rolls expr in one call.
func RollExpr(expr string, src Source) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return Roll(e, src), nil
}

// Roller rolls expressions and logs every result at debug level, tagged with
// whatever fields the caller supplies (seed, monster, hook).
type Roller struct {
	logger *zap.Logger
}

// NewLoggedRoller returns a Roller writing to logger; nil discards the logs.
func NewLoggedRoller(logger *zap.Logger) *Roller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Roller{logger: logger}
}

// Roll evaluates expr against src and logs the outcome with fields.
func (r *Roller) Roll(expr Expression, src Source, fields ...zap.Field) RollResult {
	result := Roll(expr, src)
	if ce := r.logger.Check(zap.DebugLevel, "dice roll"); ce != nil {
		ce.Write(append(fields,
			zap.String("expression", result.Expression),
			zap.Ints("dice", result.Dice),
			zap.Int("modifier", result.Modifier),
			zap.Int("total", result.Total()),
		)...)
	}
	return result
}
