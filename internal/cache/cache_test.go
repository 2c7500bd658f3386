package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lineKey struct {
	pathID int64
	lineno int
}

// counter returns a create func that hands out increasing ids and counts calls.
func counter() (func() (int64, error), *int) {
	calls := 0
	return func() (int64, error) {
		calls++
		return int64(100 + calls), nil
	}, &calls
}

func testResolveOrCreate(t *testing.T, c Cache[lineKey]) {
	t.Helper()
	create, calls := counter()

	id1, err := c.ResolveOrCreate(lineKey{1, 10}, create)
	require.NoError(t, err)
	id2, err := c.ResolveOrCreate(lineKey{1, 10}, create)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
	assert.Equal(t, 1, *calls, "a hit must not call create")

	id3, err := c.ResolveOrCreate(lineKey{1, 11}, create)
	require.NoError(t, err)
	assert.NotEqual(t, id1, id3)
	assert.Equal(t, 2, *calls)

	st := c.Stats()
	assert.Equal(t, uint64(1), st.Hits)
	assert.Equal(t, uint64(2), st.Misses)
}

func testErrorNotCached(t *testing.T, c Cache[lineKey]) {
	t.Helper()
	boom := errors.New("boom")
	_, err := c.ResolveOrCreate(lineKey{2, 1}, func() (int64, error) { return 0, boom })
	require.ErrorIs(t, err, boom)

	create, calls := counter()
	id, err := c.ResolveOrCreate(lineKey{2, 1}, create)
	require.NoError(t, err)
	assert.Equal(t, int64(101), id)
	assert.Equal(t, 1, *calls, "a failed create must be retried on the next lookup")
}

func TestMap_ResolveOrCreate(t *testing.T) {
	t.Parallel()
	c := NewMap[lineKey]()
	defer c.Close()
	testResolveOrCreate(t, c)
	assert.Equal(t, 2, c.Stats().Size)
}

func TestMap_ErrorNotCached(t *testing.T) {
	t.Parallel()
	c := NewMap[lineKey]()
	defer c.Close()
	testErrorNotCached(t, c)
}

func TestBounded_ResolveOrCreate(t *testing.T) {
	t.Parallel()
	c, err := NewBounded[lineKey](1024)
	require.NoError(t, err)
	defer c.Close()
	testResolveOrCreate(t, c)
}

func TestBounded_ErrorNotCached(t *testing.T) {
	t.Parallel()
	c, err := NewBounded[lineKey](1024)
	require.NoError(t, err)
	defer c.Close()
	testErrorNotCached(t, c)
}

func TestBounded_RejectsZeroCapacity(t *testing.T) {
	t.Parallel()
	_, err := NewBounded[lineKey](0)
	require.Error(t, err)
}

func TestNew_PicksImplementation(t *testing.T) {
	t.Parallel()
	c, err := New[string](0)
	require.NoError(t, err)
	assert.IsType(t, &Map[string]{}, c)
	c.Close()

	c, err = New[string](16)
	require.NoError(t, err)
	assert.IsType(t, &Bounded[string]{}, c)
	c.Close()
}
