package llm

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/draftsmith/internal/logging"
	"github.com/ppiankov/draftsmith/internal/metrics"
)

type instrumented struct {
	Provider
	logger *zap.Logger
}

// Instrument wraps p so each Generate call is counted, timed and logged
func Instrument(p Provider, logger *zap.Logger) Provider {
	return &instrumented{
		Provider: p,
		logger:   logging.Component(logger, "llm").With(zap.String("provider", p.Name())),
	}
}

func (i *instrumented) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := i.Provider.Generate(ctx, req)
	elapsed := time.Since(start)
	metrics.LLMDuration.WithLabelValues(i.Name()).Observe(elapsed.Seconds())

	switch {
	case err != nil:
		metrics.LLMRequests.WithLabelValues(i.Name(), metrics.ResultError).Inc()
		i.logger.Warn("generation failed", zap.Error(err), zap.Duration("elapsed", elapsed))
	case resp == nil || resp.Text == "":
		metrics.LLMRequests.WithLabelValues(i.Name(), metrics.ResultEmpty).Inc()
		i.logger.Warn("empty generation", zap.Duration("elapsed", elapsed))
	default:
		metrics.LLMRequests.WithLabelValues(i.Name(), metrics.ResultOK).Inc()
		i.logger.Debug("generation complete",
			zap.String("model", resp.Model),
			zap.Int("tokens", resp.TokensUsed),
			zap.Duration("elapsed", elapsed))
	}
	return resp, err
}
