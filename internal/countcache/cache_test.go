package countcache

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestGetCachesWithinTTL(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	calls := 0
	cache := New(func(context.Context) (int, error) {
		calls++
		return 42, nil
	}, 60*time.Second, nil, WithClock(clock.now))

	if got := cache.Get(context.Background()); got != 42 {
		t.Fatalf("first Get = %d, want 42", got)
	}
	clock.advance(10 * time.Second)
	if got := cache.Get(context.Background()); got != 42 {
		t.Fatalf("second Get = %d, want 42", got)
	}
	if calls != 1 {
		t.Fatalf("fetch called %d times within TTL, want 1", calls)
	}
}

func TestGetRefreshesAfterExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	calls := 0
	cache := New(func(context.Context) (int, error) {
		calls++
		return 40 + calls, nil
	}, 60*time.Second, nil, WithClock(clock.now))

	if got := cache.Get(context.Background()); got != 41 {
		t.Fatalf("first Get = %d", got)
	}
	clock.advance(61 * time.Second)
	if got := cache.Get(context.Background()); got != 42 {
		t.Fatalf("Get after expiry = %d, want refreshed 42", got)
	}
	if calls != 2 {
		t.Fatalf("fetch called %d times, want 2", calls)
	}
}

func TestGetServesStaleOnFetchFailure(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	fail := false
	cache := New(func(context.Context) (int, error) {
		if fail {
			return 0, errors.New("sheets unavailable")
		}
		return 42, nil
	}, 60*time.Second, nil, WithClock(clock.now))

	if got := cache.Get(context.Background()); got != 42 {
		t.Fatalf("first Get = %d", got)
	}
	fail = true
	clock.advance(5 * time.Minute)
	if got := cache.Get(context.Background()); got != 42 {
		t.Fatalf("Get with failing fetch = %d, want stale 42", got)
	}
}

func TestGetReturnsZeroWhenNothingCached(t *testing.T) {
	cache := New(func(context.Context) (int, error) {
		return 0, errors.New("down")
	}, 60*time.Second, nil)

	if got := cache.Get(context.Background()); got != 0 {
		t.Fatalf("Get with no cache and failing fetch = %d, want 0", got)
	}
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"count": 17}`))
	}))
	defer srv.Close()

	fetch := HTTPSource(srv.URL, srv.Client())
	got, err := fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got != 17 {
		t.Fatalf("count = %d, want 17", got)
	}
}

func TestHTTPSourceBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	fetch := HTTPSource(srv.URL, srv.Client())
	if _, err := fetch(context.Background()); err == nil {
		t.Fatal("expected error on non-200 status")
	}
}
