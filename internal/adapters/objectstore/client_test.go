package objectstore_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"

	"hotel_booking/internal/adapters/objectstore"
)

func TestClient_Put_RetriesThenSuccess(t *testing.T) {
	var hits int32
	var gotBody, gotAuth, gotType string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1, 2:
			// two transient failures
			w.WriteHeader(503)
		default:
			b, _ := io.ReadAll(r.Body)
			gotBody, gotAuth, gotType = string(b), r.Header.Get("Authorization"), r.Header.Get("Content-Type")
			if r.Method != http.MethodPut || r.URL.Path != "/hotels/a.png" {
				w.WriteHeader(400)
				return
			}
			w.WriteHeader(200)
		}
	}))
	defer ts.Close()

	cl, err := objectstore.New(ts.URL, "https://cdn.example.com/public", "secret", 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url, err := cl.Put(ctx, "hotels/a.png", "image/png", []byte("png-bytes"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if url != "https://cdn.example.com/public/hotels/a.png" {
		t.Fatalf("unexpected url: %s", url)
	}
	if atomic.LoadInt32(&hits) != 3 {
		t.Fatalf("expected 3 calls due to retries, got %d", hits)
	}
	if gotBody != "png-bytes" || gotAuth != "Bearer secret" || gotType != "image/png" {
		t.Fatalf("unexpected request: body=%q auth=%q type=%q", gotBody, gotAuth, gotType)
	}
}

func TestClient_Put_4xxIsNotRetried(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Error(w, "bucket not found", http.StatusNotFound)
	}))
	defer ts.Close()

	cl, err := objectstore.New(ts.URL, "", "", 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	_, err = cl.Put(context.Background(), "hotels/b.jpg", "image/jpeg", []byte("x"))
	if !errors.Is(err, objectstore.ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("expected a single call, got %d", hits)
	}
}

func TestClient_Put_BreakerOpens(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(500)
	}))
	defer ts.Close()

	cl, err := objectstore.New(ts.URL, "", "", 100, objectstore.WithMaxAttempts(1))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := cl.Put(ctx, "hotels/c.png", "image/png", nil); err == nil {
			t.Fatalf("expected failure on attempt %d", i)
		}
	}

	_, err = cl.Put(ctx, "hotels/c.png", "image/png", nil)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open breaker, got %v", err)
	}
	if atomic.LoadInt32(&hits) != 3 {
		t.Fatalf("open breaker must not reach the server, got %d calls", hits)
	}
}

func TestNew_RequiresURL(t *testing.T) {
	if _, err := objectstore.New("", "", "", 0); err == nil {
		t.Fatalf("expected error for empty URL")
	}
}
