package booking

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/Domenick1991/harborhop/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type existingReferences map[string]bool

func (e existingReferences) ReferenceExists(_ context.Context, reference string) (bool, error) {
	return e[reference], nil
}

func fill(b byte, n int) []byte {
	return bytes.Repeat([]byte{b}, n)
}

func TestReferenceGenerator_Format(t *testing.T) {
	g := NewReferenceGenerator("HH", existingReferences{})

	for i := 0; i < 50; i++ {
		ref, err := g.Generate(context.Background())
		require.NoError(t, err)
		assert.Regexp(t, `^HH-[A-Z0-9]{8}$`, ref)
	}
}

func TestReferenceGenerator_SkipsExisting(t *testing.T) {
	existing := existingReferences{"HH-AAAAAAAA": true}
	g := NewReferenceGenerator("HH", existing)
	g.source = bytes.NewReader(append(fill(0, 16), fill(1, 16)...))

	ref, err := g.Generate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "HH-BBBBBBBB", ref)
}

func TestReferenceGenerator_UniqueAgainstFixedSet(t *testing.T) {
	existing := existingReferences{}
	g := NewReferenceGenerator("HH", existing)

	for i := 0; i < 500; i++ {
		ref, err := g.Generate(context.Background())
		require.NoError(t, err)
		require.False(t, existing[ref], "duplicate %s", ref)
		existing[ref] = true
	}
}

func TestReferenceGenerator_RejectsBiasedBytes(t *testing.T) {
	g := NewReferenceGenerator("HH", nil)
	src := append(fill(255, 8), 36, 35, 0, 1, 2, 3, 4, 5)
	g.source = bytes.NewReader(append(src, fill(0, 16)...))

	ref, err := g.Generate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "HH-A9ABCDEF", ref)
}

func TestReferenceGenerator_Exhausted(t *testing.T) {
	g := NewReferenceGenerator("HH", existingReferences{"HH-AAAAAAAA": true})
	g.source = bytes.NewReader(fill(0, 16*defaultReferenceAttempts))

	_, err := g.Generate(context.Background())

	assert.True(t, errors.Is(err, domain.ErrReferenceExhausted))
}
