package room

import (
	"math/rand"
	"time"
)

// Generator produces room codes and player ids.
type Generator interface {
	RoomCode() string
	PlayerID() string
}

const (
	codeLetters = "abcdefghijklmnopqrstuvwxyz"
	idLetters   = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	codeLen = 4
	idLen   = 8
)

// randomGenerator is not safe for concurrent use; the Manager only calls it under its lock.
type randomGenerator struct {
	r *rand.Rand
}

func NewRandomGenerator(seed int64) Generator {
	return &randomGenerator{r: rand.New(rand.NewSource(seed))}
}

func newDefaultGenerator() Generator {
	return NewRandomGenerator(time.Now().UnixNano())
}

func (g *randomGenerator) RoomCode() string { return g.pick(codeLetters, codeLen) }
func (g *randomGenerator) PlayerID() string { return g.pick(idLetters, idLen) }

func (g *randomGenerator) pick(letters string, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[g.r.Intn(len(letters))]
	}
	return string(b)
}
