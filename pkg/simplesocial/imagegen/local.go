package imagegen

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
)

// LocalProvider is the last-resort tier: a pseudo-random pick from a fixed
// set of locally hosted fallback images. It fails only when the set is
// empty.
type LocalProvider struct {
	baseURL string
	images  []string
}

// NewLocalProvider creates the tier-3 provider serving images relative to
// baseURL.
func NewLocalProvider(baseURL string, images []string) *LocalProvider {
	return &LocalProvider{baseURL: strings.TrimRight(baseURL, "/"), images: images}
}

func (p *LocalProvider) Name() string { return "local" }

func (p *LocalProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if len(p.images) == 0 {
		return "", fmt.Errorf("no fallback images configured")
	}
	return p.baseURL + "/" + p.images[rand.IntN(len(p.images))], nil
}
