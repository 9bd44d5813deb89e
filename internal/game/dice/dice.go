// Package dice provides the randomness abstraction and roll-result types
// for flat checks.
package dice

import (
	"fmt"
	"strings"
)

// RollResult holds the audit trail for one roll.
//
// Postcondition: Total() == sum(Dice).
type RollResult struct {
	Expression string // e.g. "1d20"
	Dice       []int  // individual die faces
}

// Total returns the sum of all die faces.
func (r RollResult) Total() int {
	total := 0
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String returns a human-readable audit string in the format:
//
//	"1d20 → [14] = 14"
//
// Precondition: r.Expression is non-empty.
func (r RollResult) String() string {
	if r.Expression == "" {
		panic("dice: RollResult.String() precondition violated: Expression must be non-empty")
	}
	faces := make([]string, len(r.Dice))
	for i, d := range r.Dice {
		faces[i] = fmt.Sprint(d)
	}
	return fmt.Sprintf("%s → [%s] = %d", r.Expression, strings.Join(faces, " "), r.Total())
}

// Source is the randomness provider for dice rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}
