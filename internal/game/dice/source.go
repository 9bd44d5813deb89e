package dice

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
)

// cryptoSource implements Source using crypto/rand.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
//
// Postcondition: Every value returned by Intn is in [0, n).
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Intn returns a cryptographically secure random int in [0, n).
//
// Precondition: n > 0. Panics with "dice: Intn called with n <= 0" if n <= 0.
func (c *cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	val, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}

// fixedSource replays die faces in order, cycling when exhausted.
type fixedSource struct {
	mu    sync.Mutex
	faces []int
	next  int
}

// NewFixedSource returns a Source whose rolls produce faces in order.
// Faces larger than the die are clamped to its highest face.
//
// Precondition: len(faces) > 0 and every face >= 1. Panics otherwise.
func NewFixedSource(faces ...int) Source {
	if len(faces) == 0 {
		panic("dice: NewFixedSource requires at least one face")
	}
	for _, f := range faces {
		if f < 1 {
			panic(fmt.Sprintf("dice: NewFixedSource face %d: must be >= 1", f))
		}
	}
	return &fixedSource{faces: append([]int(nil), faces...)}
}

func (f *fixedSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	face := f.faces[f.next%len(f.faces)]
	f.next++
	return min(face, n) - 1
}
