package llmsvc

import (
	"context"
	"time"

	"github.com/trezcool/darslik/core"
	"github.com/trezcool/darslik/core/llm"
)

// LoggingClient logs every call it forwards. Prompts and credentials are not logged.
type LoggingClient struct {
	inner  llm.Client
	vendor string
	logger core.Logger
}

var _ llm.Client = (*LoggingClient)(nil)

func WithLogging(c llm.Client, vendor string, logger core.Logger) llm.Client {
	return &LoggingClient{inner: c, vendor: vendor, logger: logger}
}

func (l *LoggingClient) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)

	fields := map[string]interface{}{
		"vendor":     l.vendor,
		"model":      l.inner.ModelID(),
		"purpose":    llm.PurposeFrom(ctx),
		"structured": req.Schema != nil,
		"latency_ms": time.Since(start).Milliseconds(),
	}
	if resp != nil {
		fields["input_tokens"] = resp.Usage.InputTokens
		fields["output_tokens"] = resp.Usage.OutputTokens
		fields["stop_reason"] = resp.StopReason
	}
	if err != nil {
		l.logger.Warn("llm: generation failed", err, fields)
	} else {
		l.logger.Debug("llm: generation", fields)
	}
	return resp, err
}

func (l *LoggingClient) ModelID() string {
	return l.inner.ModelID()
}
