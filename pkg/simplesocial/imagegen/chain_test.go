package imagegen

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-social/pkg/simplesocial"
)

type fakeProvider struct {
	name  string
	url   string
	err   error
	calls int
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Generate(ctx context.Context, prompt string) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return p.url, nil
}

func TestChainFirstSuccessWins(t *testing.T) {
	first := &fakeProvider{name: "first", url: "https://a.example.com/1.png"}
	second := &fakeProvider{name: "second", url: "https://b.example.com/2.png"}
	chain := NewChain(first, second)

	url, provider, err := chain.Generate(context.Background(), "a prompt")
	require.NoError(t, err)
	assert.Equal(t, "https://a.example.com/1.png", url)
	assert.Equal(t, "first", provider)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls)
}

func TestChainFallsThroughFailures(t *testing.T) {
	first := &fakeProvider{name: "first", err: fmt.Errorf("unreachable")}
	second := &fakeProvider{name: "second", err: fmt.Errorf("rate limited")}
	third := &fakeProvider{name: "third", url: "https://c.example.com/3.png"}
	chain := NewChain(first, second, third)

	url, provider, err := chain.Generate(context.Background(), "a prompt")
	require.NoError(t, err)
	assert.Equal(t, "https://c.example.com/3.png", url)
	assert.Equal(t, "third", provider)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}

func TestChainAllFail(t *testing.T) {
	first := &fakeProvider{name: "first", err: fmt.Errorf("unreachable")}
	second := &fakeProvider{name: "second", err: fmt.Errorf("rate limited")}
	chain := NewChain(first, second)

	_, _, err := chain.Generate(context.Background(), "a prompt")
	require.Error(t, err)
	assert.ErrorIs(t, err, simplesocial.ErrUpstream)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestChainEmpty(t *testing.T) {
	_, _, err := NewChain().Generate(context.Background(), "a prompt")
	require.Error(t, err)
	assert.ErrorIs(t, err, simplesocial.ErrUpstream)
}

func TestChainLocalOnlyNeverFails(t *testing.T) {
	chain := NewChain(NewLocalProvider("http://localhost:8080/static/fallback", []string{
		"fallback-1.png", "fallback-2.png",
	}))

	for i := 0; i < 20; i++ {
		url, provider, err := chain.Generate(context.Background(), "any prompt")
		require.NoError(t, err)
		assert.Equal(t, "local", provider)
		assert.Contains(t, []string{
			"http://localhost:8080/static/fallback/fallback-1.png",
			"http://localhost:8080/static/fallback/fallback-2.png",
		}, url)
	}
}
