package llmsvc

import (
	"context"
	"fmt"

	"github.com/trezcool/darslik/core"
	"github.com/trezcool/darslik/core/generation"
	"github.com/trezcool/darslik/core/llm"
	"github.com/trezcool/darslik/core/provider"
)

// Default endpoints of the OpenAI-compatible vendors.
const (
	GroqBaseURL     = "https://api.groq.com/openai/v1"
	DeepSeekBaseURL = "https://api.deepseek.com/v1"
)

type constructor func(ctx context.Context, conn provider.Connection) (llm.Client, error)

// constructors has one entry per provider.Vendor.
var constructors = map[provider.Vendor]constructor{
	provider.VendorOpenAI: func(_ context.Context, conn provider.Connection) (llm.Client, error) {
		return newOpenAIClient(conn.APIKey, conn.BaseURL, conn.ModelID(), schemaModeNative)
	},
	provider.VendorGroq: func(_ context.Context, conn provider.Connection) (llm.Client, error) {
		return newOpenAIClient(conn.APIKey, orDefault(conn.BaseURL, GroqBaseURL), conn.ModelID(), schemaModePrompt)
	},
	provider.VendorDeepSeek: func(_ context.Context, conn provider.Connection) (llm.Client, error) {
		return newOpenAIClient(conn.APIKey, orDefault(conn.BaseURL, DeepSeekBaseURL), conn.ModelID(), schemaModePrompt)
	},
	provider.VendorCustom: func(_ context.Context, conn provider.Connection) (llm.Client, error) {
		if conn.BaseURL == "" {
			return nil, fmt.Errorf("base URL is required for custom providers")
		}
		return newOpenAIClient(conn.APIKey, conn.BaseURL, conn.ModelID(), schemaModePrompt)
	},
	provider.VendorAnthropic: func(_ context.Context, conn provider.Connection) (llm.Client, error) {
		return newAnthropicClient(conn.APIKey, conn.BaseURL, conn.ModelID())
	},
	provider.VendorGoogle: func(ctx context.Context, conn provider.Connection) (llm.Client, error) {
		return newGeminiClient(ctx, conn.APIKey, conn.BaseURL, conn.ModelID())
	},
}

// Factory builds logged llm.Clients from provider connections.
type Factory struct {
	logger core.Logger
}

var _ generation.ClientFactory = (*Factory)(nil)

func NewFactory(logger core.Logger) *Factory {
	return &Factory{logger: logger}
}

func (f *Factory) NewClient(ctx context.Context, conn provider.Connection) (llm.Client, error) {
	newClient, ok := constructors[conn.Vendor]
	if !ok {
		return nil, &llm.ErrUnsupportedVendor{Vendor: string(conn.Vendor)}
	}
	client, err := newClient(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("initializing %s client: %w", conn.Vendor, err)
	}
	return WithLogging(client, string(conn.Vendor), f.logger), nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
