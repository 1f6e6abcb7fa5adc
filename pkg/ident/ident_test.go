package ident

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mimirgraph/pgraph/pkg/pgerr"
)

func TestNew(t *testing.T) {
	t.Run("accepts valid identifiers", func(t *testing.T) {
		id, err := New("Person_1-x")
		require.NoError(t, err)
		assert.Equal(t, "Person_1-x", id.String())
	})

	t.Run("rejects empty string", func(t *testing.T) {
		_, err := New("")
		require.Error(t, err)
		kind, ok := pgerr.KindOf(err)
		require.True(t, ok)
		assert.Equal(t, pgerr.Validation, kind)
	})

	t.Run("rejects identifiers over MaxLen", func(t *testing.T) {
		long := make([]byte, MaxLen+1)
		for i := range long {
			long[i] = 'a'
		}
		_, err := New(string(long))
		require.Error(t, err)
	})

	t.Run("accepts an identifier exactly MaxLen long", func(t *testing.T) {
		long := make([]byte, MaxLen)
		for i := range long {
			long[i] = 'a'
		}
		_, err := New(string(long))
		require.NoError(t, err)
	})

	t.Run("rejects disallowed characters", func(t *testing.T) {
		_, err := New("has space")
		require.Error(t, err)

		_, err = New("has/slash")
		require.Error(t, err)
	})
}

func TestIdentifierOrdering(t *testing.T) {
	a, _ := New("alpha")
	b, _ := New("beta")

	assert.True(t, a.Compare(b) < 0)
	assert.True(t, b.Compare(a) > 0)
	assert.Equal(t, 0, a.Compare(a))
	assert.True(t, a.Equal(a))
	assert.False(t, a.Equal(b))
}

func TestIdentifierZeroValue(t *testing.T) {
	var z Identifier
	assert.True(t, z.IsZero())

	id, _ := New("x")
	assert.False(t, id.IsZero())
}

func TestIdentifierTextRoundTrip(t *testing.T) {
	id := NewUnchecked("already-valid")
	b, err := id.MarshalText()
	require.NoError(t, err)

	var out Identifier
	require.NoError(t, out.UnmarshalText(b))
	assert.True(t, id.Equal(out))
}
