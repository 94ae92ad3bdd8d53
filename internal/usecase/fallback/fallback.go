// Package fallback drives ordered lists of endpoint-shape candidates.
package fallback

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/chroma-explorer/internal/domain"
	"github.com/kailas-cloud/chroma-explorer/internal/logger"
	"github.com/kailas-cloud/chroma-explorer/internal/metrics"
	"github.com/kailas-cloud/chroma-explorer/internal/tracing"
)

// Strategy is one named way of carrying out an operation.
type Strategy[T any] struct {
	Name string
	Run  func(ctx context.Context) (T, error)
}

// Run tries strategies one at a time in order and returns the first success.
// When every strategy fails, or ctx is done before the next attempt, it returns an
// *domain.OperationError carrying message, every attempt made, and the last cause.
func Run[T any](ctx context.Context, op, message string, strategies []Strategy[T]) (T, error) {
	var zero T
	log := logger.FromContext(ctx)
	attempts := make([]domain.Attempt, 0, len(strategies))
	var last error

	for _, s := range strategies {
		if err := ctx.Err(); err != nil {
			last = err
			break
		}

		actx, span := tracing.StartAttemptSpan(ctx, op, s.Name)
		v, err := s.Run(actx)
		tracing.RecordError(span, err)
		span.End()
		if err == nil {
			metrics.FallbackAttemptsTotal.WithLabelValues(op, s.Name, "ok").Inc()
			if len(attempts) > 0 {
				log.Debug("fallback succeeded",
					zap.String("operation", op),
					zap.String("strategy", s.Name),
					zap.Int("failed_attempts", len(attempts)),
				)
			}
			return v, nil
		}

		metrics.FallbackAttemptsTotal.WithLabelValues(op, s.Name, "error").Inc()
		log.Info("fallback attempt failed",
			zap.String("operation", op),
			zap.String("strategy", s.Name),
			zap.Error(err),
		)
		attempts = append(attempts, domain.Attempt{Name: s.Name, Err: err})
		last = err
	}

	if last == nil {
		last = errors.New("no strategies")
	}
	metrics.FallbackExhaustedTotal.WithLabelValues(op).Inc()

	opErr := &domain.OperationError{Op: op, Message: message, Attempts: attempts, Err: last}
	log.Warn("operation failed",
		zap.String("operation", op),
		zap.Int("attempts", len(attempts)),
		zap.String("detail", opErr.Detail()),
	)
	return zero, opErr
}

// Candidate names a strategy by its target, e.g. "v1 name".
func Candidate(shape, subject string) string {
	return fmt.Sprintf("%s %s", shape, subject)
}
