// internal/remote/source.go
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Default timeout for template fetches. Program generation answers can be
// slow; a hung connection must still surface as a transport error rather
// than blocking the sync forever.
const DefaultFetchTimeout = 30 * time.Second

// RemoteTemplate is the wire shape of one program template as returned by
// the generation backend. IDs are server-assigned and stable across fetches.
type RemoteTemplate struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	MuscleFocus  string           `json:"muscleFocus,omitempty"`
	DayOfWeek    *int             `json:"dayOfWeek,omitempty"`
	DurationMins *int             `json:"durationMinutes,omitempty"`
	WarmUp       string           `json:"warmUp,omitempty"`
	Exercises    []RemoteExercise `json:"exercises"`
}

// RemoteExercise is one exercise entry inside a RemoteTemplate.
type RemoteExercise struct {
	ID                string   `json:"id"`
	ExerciseKey       string   `json:"exerciseKey"`
	Name              string   `json:"name"`
	OrderIndex        int      `json:"orderIndex"`
	Sets              int      `json:"sets"`
	Reps              string   `json:"reps"`
	WeightKg          *float64 `json:"weight,omitempty"`
	RequiredEquipment []string `json:"requiredEquipment"`
	Muscles           []string `json:"muscles"`
	Notes             string   `json:"notes,omitempty"`
}

// TemplateSource fetches the authoritative template list for a user.
// The contract is "return the list or fail": an empty (but successful)
// answer means the backend has not finished generating yet, never "delete
// everything" — that distinction is handled by the synchronizer.
type TemplateSource interface {
	FetchTemplates(ctx context.Context, userID string) ([]RemoteTemplate, error)
}

// TransportError wraps any failure to obtain a well-formed answer from the
// template backend: connection errors, timeouts, non-2xx statuses.
type TransportError struct {
	// Temporary marks connection-class failures (refused, reset, timed out)
	// that a caller may reasonably retry with backoff.
	Temporary bool
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("template source: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// httpSource implements TemplateSource against the generation backend's
// REST API.
type httpSource struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// NewHTTPSource creates a TemplateSource talking to baseURL. authToken may
// be empty for unauthenticated deployments (local dev).
func NewHTTPSource(baseURL, authToken string, timeout time.Duration) TemplateSource {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &httpSource{
		baseURL:   baseURL,
		authToken: authToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchTemplates retrieves the template list for a user.
func (s *httpSource) FetchTemplates(ctx context.Context, userID string) ([]RemoteTemplate, error) {
	endpoint := fmt.Sprintf("%s/v1/users/%s/templates", s.baseURL, url.PathEscape(userID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if s.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.authToken)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		// Connection failures and client timeouts are the retryable class.
		return nil, &TransportError{Temporary: true, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{
			Temporary: resp.StatusCode >= 500,
			Err:       fmt.Errorf("unexpected status %d from %s", resp.StatusCode, endpoint),
		}
	}

	var payload struct {
		Templates []RemoteTemplate `json:"templates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &TransportError{Err: fmt.Errorf("decoding response: %w", err)}
	}

	return payload.Templates, nil
}
