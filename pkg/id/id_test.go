package id

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsSortable(t *testing.T) {
	t.Parallel()

	prev := New()
	for i := 0; i < 100; i++ {
		next := New()
		assert.Len(t, next, 26)
		assert.Less(t, prev, next)
		prev = next
	}
}

func TestGeneratorFixedClock(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	g := NewGenerator(bytes.NewReader(bytes.Repeat([]byte{7}, 64)))
	g.now = func() time.Time { return at }

	a, err := g.New()
	require.NoError(t, err)
	b, err := g.New()
	require.NoError(t, err)
	assert.Less(t, a, b)

	got, err := Time(a)
	require.NoError(t, err)
	assert.True(t, got.Equal(at))
}

func TestTimeRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := Time("not-a-ulid")
	assert.Error(t, err)
}
