package slug

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryChecker struct {
	taken map[Kind]map[string]int64
	calls int
	err   error
}

func newMemoryChecker() *memoryChecker {
	return &memoryChecker{taken: map[Kind]map[string]int64{}}
}

func (m *memoryChecker) add(kind Kind, slug string, id int64) {
	if m.taken[kind] == nil {
		m.taken[kind] = map[string]int64{}
	}
	m.taken[kind][slug] = id
}

func (m *memoryChecker) SlugExists(_ context.Context, kind Kind, slug string, excludeID *int64) (bool, error) {
	m.calls++
	if m.err != nil {
		return false, m.err
	}
	id, ok := m.taken[kind][slug]
	if !ok {
		return false, nil
	}
	if excludeID != nil && *excludeID == id {
		return false, nil
	}
	return true, nil
}

func TestResolver_Resolve_NoCollision(t *testing.T) {
	r := NewResolver(newMemoryChecker())

	got, err := r.Resolve(context.Background(), "Juan Pérez", KindPerson, nil)

	require.NoError(t, err)
	assert.Equal(t, "juan-perez", got)
}

func TestResolver_Resolve_SuffixesCollisions(t *testing.T) {
	checker := newMemoryChecker()
	r := NewResolver(checker)
	ctx := context.Background()

	checker.add(KindPerson, "juan-perez", 1)

	second, err := r.Resolve(ctx, "Juan Pérez", KindPerson, nil)
	require.NoError(t, err)
	assert.Equal(t, "juan-perez-1", second)
	checker.add(KindPerson, second, 2)

	third, err := r.Resolve(ctx, "Juan Perez", KindPerson, nil)
	require.NoError(t, err)
	assert.Equal(t, "juan-perez-2", third)
}

func TestResolver_Resolve_KindsAreIndependent(t *testing.T) {
	checker := newMemoryChecker()
	checker.add(KindMovie, "drama", 1)
	r := NewResolver(checker)

	got, err := r.Resolve(context.Background(), "Drama", KindGenre, nil)

	require.NoError(t, err)
	assert.Equal(t, "drama", got)
}

func TestResolver_Resolve_ExcludesOwnRecord(t *testing.T) {
	checker := newMemoryChecker()
	checker.add(KindMovie, "nueve-reinas", 5)
	r := NewResolver(checker)

	id := int64(5)
	got, err := r.Resolve(context.Background(), "Nueve Reinas", KindMovie, &id)

	require.NoError(t, err)
	assert.Equal(t, "nueve-reinas", got)

	other := int64(6)
	got, err = r.Resolve(context.Background(), "Nueve Reinas", KindMovie, &other)
	require.NoError(t, err)
	assert.Equal(t, "nueve-reinas-1", got)
}

func TestResolver_Resolve_FallbackNeverBareCounter(t *testing.T) {
	checker := newMemoryChecker()
	r := NewResolver(checker)
	ctx := context.Background()

	first, err := r.Resolve(ctx, ")(", KindMovie, nil)
	require.NoError(t, err)
	assert.Equal(t, "title-10f", first)
	checker.add(KindMovie, first, 1)

	second, err := r.Resolve(ctx, ")(", KindMovie, nil)
	require.NoError(t, err)
	assert.Equal(t, "title-10f-1", second)
	assert.NotRegexp(t, `^-`, second)
}

func TestResolver_Resolve_PropagatesCheckerError(t *testing.T) {
	checker := newMemoryChecker()
	checker.err = errors.New("connection refused")
	r := NewResolver(checker)

	_, err := r.Resolve(context.Background(), "Drama", KindGenre, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, checker.err)
}

func TestResolver_Resolve_UnknownKind(t *testing.T) {
	checker := newMemoryChecker()
	r := NewResolver(checker)

	_, err := r.Resolve(context.Background(), "Drama", Kind("festival"), nil)

	require.Error(t, err)
	assert.Zero(t, checker.calls)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("production-company")
	require.NoError(t, err)
	assert.Equal(t, KindProductionCompany, k)

	_, err = ParseKind("theme")
	assert.Error(t, err)
}
