package booking

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/Domenick1991/harborhop/internal/domain"
)

const (
	referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	referenceLength   = 8

	// largest multiple of len(referenceAlphabet) that fits in a byte
	referenceByteLimit = 252

	defaultReferenceAttempts = 10
)

type ReferenceChecker interface {
	ReferenceExists(ctx context.Context, reference string) (bool, error)
}

// ReferenceGenerator issues booking references of the form PREFIX-XXXXXXXX,
// re-checking each candidate against storage.
type ReferenceGenerator struct {
	prefix   string
	attempts int
	source   io.Reader
	checker  ReferenceChecker
}

func NewReferenceGenerator(prefix string, checker ReferenceChecker) *ReferenceGenerator {
	return &ReferenceGenerator{
		prefix:   prefix,
		attempts: defaultReferenceAttempts,
		source:   rand.Reader,
		checker:  checker,
	}
}

func (g *ReferenceGenerator) Generate(ctx context.Context) (string, error) {
	for i := 0; i < g.attempts; i++ {
		candidate, err := g.candidate()
		if err != nil {
			return "", err
		}
		if g.checker == nil {
			return candidate, nil
		}
		exists, err := g.checker.ReferenceExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check reference %s: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", domain.ErrReferenceExhausted
}

func (g *ReferenceGenerator) candidate() (string, error) {
	out := make([]byte, 0, referenceLength)
	buf := make([]byte, referenceLength*2)
	for len(out) < referenceLength {
		if _, err := io.ReadFull(g.source, buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if b >= referenceByteLimit {
				continue
			}
			out = append(out, referenceAlphabet[int(b)%len(referenceAlphabet)])
			if len(out) == referenceLength {
				break
			}
		}
	}
	return g.prefix + "-" + string(out), nil
}
