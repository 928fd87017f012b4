// Package id issues run identifiers.
package id

import (
	cryptoRand "crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator hands out ULIDs that sort by creation time. IDs minted within
// the same millisecond stay strictly increasing.
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

// NewGenerator returns a Generator reading entropy from r. A nil r uses
// crypto/rand.
func NewGenerator(r io.Reader) *Generator {
	if r == nil {
		r = cryptoRand.Reader
	}
	return &Generator{
		entropy: ulid.Monotonic(r, 0),
		now:     time.Now,
	}
}

// New returns the next identifier.
func (g *Generator) New() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(g.now().UTC()), g.entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

var defaultGenerator = NewGenerator(nil)

// New returns a run identifier from the process-wide generator.
func New() string {
	s, err := defaultGenerator.New()
	if err != nil {
		// Only reachable when the clock runs backwards inside one
		// millisecond and the monotonic entropy overflows.
		panic(err)
	}
	return s
}

// Time extracts the creation time encoded in s.
func Time(s string) (time.Time, error) {
	id, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(id.Time()).UTC(), nil
}
