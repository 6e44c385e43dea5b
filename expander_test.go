package pack

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpanderOverlappingCopy(t *testing.T) {
	var x Expander
	out, err := x.Expand(nil, Literal('a'))
	require.NoError(t, err)
	out, err = x.Expand(out, Literal('b'))
	require.NoError(t, err)
	out, err = x.Expand(out, Copy(5, 2))
	require.NoError(t, err)
	assert.Equal(t, "abababa", string(out))
}

func TestExpanderErrors(t *testing.T) {
	tests := []struct {
		name  string
		x     Expander
		setup []Element
		e     Element
		want  error
	}{
		{"beyond window size", Expander{MaxDistance: 4}, []Element{Literal('a')}, Copy(3, 5), ErrInvalidDistance},
		{"before any output", Expander{}, nil, Copy(3, 1), ErrInvalidDistance},
		{"beyond output so far", Expander{}, []Element{Literal('a'), Literal('b')}, Copy(3, 3), ErrInvalidDistance},
		{"zero distance", Expander{}, []Element{Literal('a')}, Copy(3, 0), ErrInvalidDistance},
		{"too long", Expander{MaxLength: 10}, []Element{Literal('a')}, Copy(11, 1), ErrInvalidLength},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := tt.x
			var out []byte
			for _, e := range tt.setup {
				var err error
				out, err = x.Expand(out, e)
				require.NoError(t, err)
			}
			got, err := x.Expand(out, tt.e)
			assert.True(t, errors.Is(err, tt.want), "got %v, want %v", err, tt.want)
			assert.Equal(t, out, got)
		})
	}
}

func TestExpanderWindowSlides(t *testing.T) {
	x := Expander{MaxDistance: 3}
	var out []byte
	for _, b := range []byte("abcd") {
		out, _ = x.Expand(out, Literal(b))
	}
	out, err := x.Expand(out, Copy(3, 3))
	require.NoError(t, err)
	assert.Equal(t, "abcdbcd", string(out))
}

func TestTextEncoder(t *testing.T) {
	var m Matcher
	elems := m.FindMatches(nil, []byte("abcabcabcd"))
	got := TextEncoder{}.Encode(nil, elems)
	assert.Equal(t, "abc<6,3>d", string(got))
}
