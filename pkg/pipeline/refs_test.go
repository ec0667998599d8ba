package pipeline

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixturelab/platformseed/pkg/apperrors"
)

func TestRefResolver_RegisterResolve(t *testing.T) {
	r := NewRefResolver[int, int64]()
	r.Register(0, 101)
	r.Register(1, 102)

	got, err := r.Resolve(0)
	require.NoError(t, err)
	assert.Equal(t, int64(101), got)
	assert.Equal(t, 2, r.Len())
}

func TestRefResolver_UnresolvedFailsLoudly(t *testing.T) {
	r := NewRefResolver[int, int64]()
	r.Register(0, 101)

	_, err := r.Resolve(7)
	require.ErrorIs(t, err, apperrors.ErrUnresolvedRef)
	assert.Contains(t, err.Error(), "7")
}

func TestRefResolver_StringIDs(t *testing.T) {
	r := NewRefResolver[int, string]()
	r.Register(3, "pcat_01ABC")

	got, err := r.Resolve(3)
	require.NoError(t, err)
	assert.Equal(t, "pcat_01ABC", got)
}

func TestRefResolver_MissingFrom(t *testing.T) {
	r := NewRefResolver[int, int64]()
	r.Register(1, 11)
	r.Register(3, 33)

	missing := r.MissingFrom([]int{1, 2, 3, 4})
	assert.Equal(t, []int{2, 4}, missing)
	assert.Empty(t, r.MissingFrom([]int{1, 3}))
}

func TestRefResolver_ConcurrentRegister(t *testing.T) {
	r := NewRefResolver[int, int]()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Register(i, i*10)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 100, r.Len())
	got, err := r.Resolve(42)
	require.NoError(t, err)
	assert.Equal(t, 420, got)
}
