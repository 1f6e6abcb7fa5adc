package pgerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsSetKind(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validationf("bad: %s", "x"), Validation},
		{"unsupported", Unsupportedf("nope"), Unsupported},
		{"not_indexed", NotIndexedf("name"), NotIndexed},
		{"out_of_range", OutOfRangef("overflow"), OutOfRange},
		{"io", Iof(errors.New("disk"), "write failed"), Io},
		{"serialization", Serializationf(errors.New("eof"), "decode failed"), Serialization},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			kind, ok := KindOf(tc.err)
			require.True(t, ok)
			assert.Equal(t, tc.want, kind)
		})
	}
}

func TestErrorUnwrapsCause(t *testing.T) {
	cause := errors.New("root cause")
	err := Iof(cause, "wrapped")
	assert.ErrorIs(t, err, cause)
}

func TestIsMatchesByKindOnly(t *testing.T) {
	a := Validationf("first problem")
	b := Validationf("second, unrelated problem")
	assert.True(t, errors.Is(a, b), "Is must match same-kind errors regardless of message")

	c := Unsupportedf("different kind")
	assert.False(t, errors.Is(a, c))
}

func TestKindOfReturnsFalseForPlainError(t *testing.T) {
	_, ok := KindOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "validation", Validation.String())
	assert.Equal(t, "not_indexed", NotIndexed.String())
}
