package dice

import (
	"fmt"

	"go.uber.org/zap"
)

// FlatCheckDie is the die every flat check rolls.
const FlatCheckDie = 20

// Bounds on a single Roll. Callers include sandboxed add-on scripts, so the
// face slice a roll allocates must stay small.
const (
	MaxDice  = 100
	MaxSides = 1000
)

// Roll rolls count dice with sides faces using src.
//
// Precondition: 1 <= count <= MaxDice, 2 <= sides <= MaxSides, src non-nil.
// Postcondition: len(result.Dice) == count and every face is in [1, sides].
func Roll(count, sides int, src Source) (RollResult, error) {
	if count < 1 || count > MaxDice {
		return RollResult{}, fmt.Errorf("dice: invalid die count %d: must be in [1, %d]", count, MaxDice)
	}
	if sides < 2 || sides > MaxSides {
		return RollResult{}, fmt.Errorf("dice: invalid die sides %d: must be in [2, %d]", sides, MaxSides)
	}
	faces := make([]int, count)
	for i := range faces {
		faces[i] = src.Intn(sides) + 1
	}
	return RollResult{Expression: fmt.Sprintf("%dd%d", count, sides), Dice: faces}, nil
}

// Roller wraps a Source and logger to provide logged dice rolling.
// All rolls are logged at debug level with expression, dice values, and total.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Roll rolls count dice with sides faces and logs the result.
func (r *Roller) Roll(count, sides int) (RollResult, error) {
	result, err := Roll(count, sides, r.src)
	if err != nil {
		return RollResult{}, err
	}
	r.logger.Debug("dice roll",
		zap.String("expression", result.Expression),
		zap.Ints("dice", result.Dice),
		zap.Int("total", result.Total()),
	)
	return result, nil
}

// FlatCheck rolls the single d20 of a flat check.
//
// Postcondition: result.Total() is in [1, 20].
func (r *Roller) FlatCheck() RollResult {
	result, err := r.Roll(1, FlatCheckDie)
	if err != nil {
		// unreachable: 1d20 is always valid
		panic(err)
	}
	return result
}
