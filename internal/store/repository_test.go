package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemRepositoryGetSetDelete(t *testing.T) {
	r := NewMemRepository[string]()

	_, ok := r.Get("a")
	require.False(t, ok)

	r.Set("a", "hello")
	v, ok := r.Get("a")
	require.True(t, ok)
	require.Equal(t, "hello", v)

	r.Delete("a")
	_, ok = r.Get("a")
	require.False(t, ok)
}

func TestMemRepositoryPopIsOneShot(t *testing.T) {
	r := NewMemRepository[int]()
	r.Set("nonce", 42)

	v, ok := r.Pop("nonce")
	require.True(t, ok)
	require.Equal(t, 42, v)

	_, ok = r.Pop("nonce")
	require.False(t, ok, "a second pop of the same key must miss")
}

func TestMemRepositoryPopConcurrentExactlyOneWinner(t *testing.T) {
	r := NewMemRepository[int]()
	r.Set("nonce", 1)

	const n = 64
	var wg sync.WaitGroup
	hits := make([]bool, n)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_, ok := r.Pop("nonce")
			hits[i] = ok
		}(i)
	}
	wg.Wait()

	count := 0
	for _, h := range hits {
		if h {
			count++
		}
	}
	require.Equal(t, 1, count, "exactly one concurrent Pop must observe the value")
}

func TestMemRepositoryKeys(t *testing.T) {
	r := NewMemRepository[int]()
	r.Set("a", 1)
	r.Set("b", 2)

	keys := r.Keys()
	require.ElementsMatch(t, []string{"a", "b"}, keys)
}
