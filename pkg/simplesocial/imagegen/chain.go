// Package imagegen attaches generated images to posts through an ordered
// chain of provider strategies. The chain tries each enabled provider in
// order and short-circuits on the first success; it fails only when every
// provider fails, carrying the last failure's cause.
package imagegen

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tendant/simple-social/pkg/simplesocial"
)

// Provider is one tier of the fallback chain.
type Provider interface {
	// Name identifies the provider in logs and on the post record.
	Name() string
	// Generate returns an image URL for the prompt.
	Generate(ctx context.Context, prompt string) (string, error)
}

// Chain implements simplesocial.ImageGenerator over an ordered provider
// list.
type Chain struct {
	providers []Provider
}

// NewChain creates a chain that tries providers in the given order.
func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

// Generate returns the first successful provider's URL and name.
func (c *Chain) Generate(ctx context.Context, prompt string) (string, string, error) {
	var lastErr error
	for _, provider := range c.providers {
		url, err := provider.Generate(ctx, prompt)
		if err != nil {
			slog.Warn("Image provider failed", "provider", provider.Name(), "error", err)
			lastErr = err
			continue
		}
		return url, provider.Name(), nil
	}

	if lastErr == nil {
		return "", "", fmt.Errorf("%w: no image providers enabled", simplesocial.ErrUpstream)
	}
	return "", "", fmt.Errorf("%w: all image providers failed: %v", simplesocial.ErrUpstream, lastErr)
}
