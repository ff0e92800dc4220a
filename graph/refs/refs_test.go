package refs

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInternIdempotent(t *testing.T) {
	tb := NewTable()
	a := tb.Intern("http://example.org/alice")
	b := tb.Intern("http://example.org/bob")
	require.NotEqual(t, a, b)
	require.Equal(t, a, tb.Intern("http://example.org/alice"))
	require.True(t, a.Valid())
	require.Equal(t, 2, tb.Len())

	id, err := tb.Resolve(b)
	require.NoError(t, err)
	require.Equal(t, "http://example.org/bob", id)

	h, ok := tb.Lookup("http://example.org/alice")
	require.True(t, ok)
	require.Equal(t, a, h)
	_, ok = tb.Lookup("http://example.org/carol")
	require.False(t, ok)
}

func TestResolveUnknown(t *testing.T) {
	tb := NewTable()
	_, err := tb.Resolve(1)
	require.True(t, errors.Is(err, ErrUnknownHandle))
	var herr *HandleError
	require.True(t, errors.As(err, &herr))
	require.Equal(t, Handle(1), herr.Handle)

	_, err = tb.Resolve(0)
	require.True(t, errors.Is(err, ErrUnknownHandle))
}

func TestReset(t *testing.T) {
	tb := NewTable()
	h := tb.Intern("_:b0")
	require.True(t, IsBlank("_:b0"))
	tb.Reset()
	require.Equal(t, 0, tb.Len())
	_, err := tb.Resolve(h)
	require.Error(t, err)
	require.Equal(t, Handle(1), tb.Intern("x"))
}

func TestConcurrentIntern(t *testing.T) {
	tb := NewTable()
	var wg sync.WaitGroup
	res := make([]Handle, 8)
	for i := range res {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res[i] = tb.Intern("same")
		}(i)
	}
	wg.Wait()
	for _, h := range res {
		require.Equal(t, res[0], h)
	}
	require.Equal(t, 1, tb.Len())
}

func TestNamesReplay(t *testing.T) {
	tb := NewTable()
	a, b := tb.Intern("ex:a"), tb.Intern("_:b")
	require.True(t, IsBlank("_:b"))

	tb2 := NewTable()
	for _, n := range tb.Names() {
		tb2.Intern(n)
	}
	h, ok := tb2.Lookup("ex:a")
	require.True(t, ok)
	require.Equal(t, a, h)
	h, ok = tb2.Lookup("_:b")
	require.True(t, ok)
	require.Equal(t, b, h)
}
