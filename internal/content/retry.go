package content

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/alfredjeanlab/ticketforge/internal/model"
)

// initialBackoff is the wait before the second attempt; it doubles for
// each attempt after that.
var initialBackoff = 500 * time.Millisecond

// Retrying wraps a Provider with bounded retries and a per-attempt
// timeout.
type Retrying struct {
	next     Provider
	attempts int
	timeout  time.Duration
	logger   *slog.Logger
}

// WithRetry returns p wrapped so that every call is attempted up to
// attempts times, each bounded by timeout (zero means no per-attempt
// limit). ErrNoField and client-side API errors are not retried.
func WithRetry(p Provider, attempts int, timeout time.Duration, logger *slog.Logger) *Retrying {
	if attempts < 1 {
		attempts = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retrying{next: p, attempts: attempts, timeout: timeout, logger: logger}
}

func (r *Retrying) GenerateDescription(ctx context.Context, req Request) (string, error) {
	return retry(ctx, r, "generate_description", func(ctx context.Context) (string, error) {
		return r.next.GenerateDescription(ctx, req)
	})
}

func (r *Retrying) GenerateSummary(ctx context.Context, text string, t model.TicketType) (string, error) {
	return retry(ctx, r, "generate_summary", func(ctx context.Context) (string, error) {
		return r.next.GenerateSummary(ctx, text, t)
	})
}

func (r *Retrying) ExtractEstimatedEffort(ctx context.Context, text string) (int, error) {
	return retry(ctx, r, "extract_effort", func(ctx context.Context) (int, error) {
		return r.next.ExtractEstimatedEffort(ctx, text)
	})
}

func (r *Retrying) ExtractTechnicalNotes(ctx context.Context, text string) (string, error) {
	return retry(ctx, r, "extract_technical_notes", func(ctx context.Context) (string, error) {
		return r.next.ExtractTechnicalNotes(ctx, text)
	})
}

func (r *Retrying) ExtractAcceptanceCriteria(ctx context.Context, text string) ([]string, error) {
	return retry(ctx, r, "extract_acceptance_criteria", func(ctx context.Context) ([]string, error) {
		return r.next.ExtractAcceptanceCriteria(ctx, text)
	})
}

func (r *Retrying) ExtractReproductionSteps(ctx context.Context, text string) ([]string, error) {
	return retry(ctx, r, "extract_reproduction_steps", func(ctx context.Context) ([]string, error) {
		return r.next.ExtractReproductionSteps(ctx, text)
	})
}

func retry[T any](ctx context.Context, r *Retrying, op string, fn func(context.Context) (T, error)) (T, error) {
	var (
		zero    T
		lastErr error
	)
	for attempt := 0; attempt < r.attempts; attempt++ {
		if attempt > 0 {
			backoff := initialBackoff << (attempt - 1)
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}

		out, err := attemptOnce(ctx, r.timeout, fn)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !isTransient(err) || ctx.Err() != nil {
			return zero, err
		}
		if attempt+1 == r.attempts {
			break
		}
		r.logger.Warn("content provider call failed, retrying",
			"op", op,
			"attempt", attempt+1,
			"err", err,
		)
	}
	return zero, lastErr
}

func attemptOnce[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(ctx)
}

// isTransient reports whether err is worth another attempt.
func isTransient(err error) bool {
	if errors.Is(err, ErrNoField) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	return true
}
