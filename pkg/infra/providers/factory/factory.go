package factory

import (
	"fmt"

	"github.com/ToxicGuard/ChatGuard/pkg/infra/providers"
	"github.com/ToxicGuard/ChatGuard/pkg/infra/providers/anthropic"
	"github.com/ToxicGuard/ChatGuard/pkg/infra/providers/groq"
)

const (
	ProviderGroq      = "groq"
	ProviderAnthropic = "anthropic"
)

type ProviderLocator interface {
	Get(provider string) (providers.Client, error)
}

type providerLocator struct{}

func NewProviderLocator() ProviderLocator {
	return &providerLocator{}
}

func (f *providerLocator) Get(provider string) (providers.Client, error) {
	switch provider {
	case ProviderGroq:
		return groq.NewGroqClient(), nil
	case ProviderAnthropic:
		return anthropic.NewAnthropicClient(), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}
