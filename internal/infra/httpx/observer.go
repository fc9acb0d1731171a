package httpx

import (
	"go.uber.org/zap"

	"shopify-reconciler/internal/logging"
)

// LogAttempts reports every attempt: successes at debug, transient failures
// that will be retried as warnings, terminal failures as warnings too since
// the caller decides whether they are item errors.
func LogAttempts(logger logging.LoggerService) AttemptObserver {
	return func(a Attempt) {
		if logger == nil {
			return
		}
		fields := []zap.Field{
			zap.String("target", a.Target),
			zap.String("method", a.Method),
			zap.Int("attempt", a.Number),
			zap.Int("status", a.Status),
			zap.Duration("elapsed", a.Elapsed),
		}
		switch {
		case a.Err == nil:
			logger.LogDebug("remote call ok", fields...)
		case a.Transient && !a.Final:
			logger.LogWarning("remote call failed, retrying", append(fields, zap.Error(a.Err))...)
		case a.Transient:
			logger.LogWarning("remote call failed, retries exhausted", append(fields, zap.Error(a.Err))...)
		default:
			logger.LogWarning("remote call failed", append(fields, zap.Error(a.Err), zap.Bool("terminal", true))...)
		}
	}
}
