package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPSource_FetchTemplates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/users/user-1/templates" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token-1" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"templates":[
			{"id":"t1","name":"Push Day","dayOfWeek":1,"exercises":[
				{"id":"e1","exerciseKey":"bench","name":"Bench Press","orderIndex":0,"sets":3,"reps":"8-12","weight":80,"requiredEquipment":["Barbell","Bench"],"muscles":["Chest"]}
			]}
		]}`))
	}))
	defer server.Close()

	src := NewHTTPSource(server.URL, "token-1", 5*time.Second)
	templates, err := src.FetchTemplates(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("FetchTemplates: %v", err)
	}
	if len(templates) != 1 || templates[0].ID != "t1" {
		t.Fatalf("unexpected templates %+v", templates)
	}
	ex := templates[0].Exercises[0]
	if ex.ExerciseKey != "bench" || ex.WeightKg == nil || *ex.WeightKg != 80 {
		t.Errorf("unexpected exercise decode %+v", ex)
	}
}

func TestHTTPSource_EmptyListIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"templates":[]}`))
	}))
	defer server.Close()

	src := NewHTTPSource(server.URL, "", 5*time.Second)
	templates, err := src.FetchTemplates(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("FetchTemplates: %v", err)
	}
	if len(templates) != 0 {
		t.Fatalf("expected empty list, got %+v", templates)
	}
}

func TestHTTPSource_StatusErrors(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		wantTemporary bool
	}{
		{"server error is temporary", http.StatusInternalServerError, true},
		{"client error is permanent", http.StatusNotFound, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			src := NewHTTPSource(server.URL, "", 5*time.Second)
			_, err := src.FetchTemplates(context.Background(), "user-1")

			var te *TransportError
			if !errors.As(err, &te) {
				t.Fatalf("expected TransportError, got %v", err)
			}
			if te.Temporary != tt.wantTemporary {
				t.Errorf("Temporary = %v, want %v", te.Temporary, tt.wantTemporary)
			}
		})
	}
}

func TestHTTPSource_ConnectionFailureIsTemporary(t *testing.T) {
	// Point at a closed server.
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	src := NewHTTPSource(server.URL, "", 2*time.Second)
	_, err := src.FetchTemplates(context.Background(), "user-1")

	var te *TransportError
	if !errors.As(err, &te) || !te.Temporary {
		t.Fatalf("expected temporary TransportError, got %v", err)
	}
}

// flakySource fails with the given error a fixed number of times, then
// returns a canned answer.
type flakySource struct {
	failures int
	err      error
	calls    int
}

func (f *flakySource) FetchTemplates(_ context.Context, _ string) ([]RemoteTemplate, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}
	return []RemoteTemplate{{ID: "t1", Name: "Push Day"}}, nil
}

func TestRetryingSource_RetriesTemporaryFailures(t *testing.T) {
	inner := &flakySource{failures: 2, err: &TransportError{Temporary: true, Err: errors.New("refused")}}
	src := NewRetryingSource(inner, 2, time.Millisecond)

	templates, err := src.FetchTemplates(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if inner.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", inner.calls)
	}
	if len(templates) != 1 {
		t.Errorf("unexpected templates %+v", templates)
	}
}

func TestRetryingSource_GivesUpAfterBudget(t *testing.T) {
	inner := &flakySource{failures: 10, err: &TransportError{Temporary: true, Err: errors.New("refused")}}
	src := NewRetryingSource(inner, 2, time.Millisecond)

	_, err := src.FetchTemplates(context.Background(), "user-1")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError after exhausting retries, got %v", err)
	}
	if inner.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", inner.calls)
	}
}

func TestRetryingSource_DoesNotRetryPermanentFailures(t *testing.T) {
	inner := &flakySource{failures: 10, err: &TransportError{Temporary: false, Err: errors.New("bad request")}}
	src := NewRetryingSource(inner, 2, time.Millisecond)

	if _, err := src.FetchTemplates(context.Background(), "user-1"); err == nil {
		t.Fatal("expected error")
	}
	if inner.calls != 1 {
		t.Errorf("permanent failure must not be retried, got %d attempts", inner.calls)
	}
}

func TestRetryingSource_HonorsContextCancellation(t *testing.T) {
	inner := &flakySource{failures: 10, err: &TransportError{Temporary: true, Err: errors.New("refused")}}
	src := NewRetryingSource(inner, 5, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.FetchTemplates(ctx, "user-1")
	if err == nil {
		t.Fatal("expected error after cancellation")
	}
	if inner.calls != 1 {
		t.Errorf("expected a single attempt before the backoff wait, got %d", inner.calls)
	}
}
