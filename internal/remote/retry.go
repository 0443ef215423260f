// internal/remote/retry.go
package remote

import (
	"context"
	"errors"
	"time"
)

// retryingSource decorates a TemplateSource with linear-backoff retries on
// temporary transport failures. Retry policy lives here, at the wiring
// layer, so the synchronizer itself stays retry-free.
type retryingSource struct {
	inner   TemplateSource
	retries int           // additional attempts after the first
	backoff time.Duration // wait is backoff * attempt number (linear)
}

// NewRetryingSource wraps src so that temporary transport errors are
// retried up to retries extra times with linear backoff. Permanent errors
// (4xx, malformed payloads) are returned immediately.
func NewRetryingSource(src TemplateSource, retries int, backoff time.Duration) TemplateSource {
	if retries < 0 {
		retries = 0
	}
	return &retryingSource{inner: src, retries: retries, backoff: backoff}
}

func (r *retryingSource) FetchTemplates(ctx context.Context, userID string) ([]RemoteTemplate, error) {
	var lastErr error
	for attempt := 0; attempt <= r.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, &TransportError{Err: ctx.Err()}
			case <-time.After(time.Duration(attempt) * r.backoff):
			}
		}

		templates, err := r.inner.FetchTemplates(ctx, userID)
		if err == nil {
			return templates, nil
		}
		lastErr = err

		var te *TransportError
		if !errors.As(err, &te) || !te.Temporary {
			return nil, err
		}
	}
	return nil, lastErr
}
