package postal

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"instalabel/internal/config"
)

func testClient(baseURL string) *Client {
	return NewClient(config.Config{
		PostalAPIBaseURL: baseURL,
		PostalRateLimit:  1000,
		PostalTimeoutMs:  2000,
	})
}

func TestResolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pincode/560001" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`[{"Status":"Success","PostOffice":[{"Name":"Bangalore GPO","District":"Bengaluru","State":"Karnataka"}]}]`))
	}))
	defer srv.Close()

	district, err := testClient(srv.URL).Resolve(context.Background(), "560001")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if district != "Bengaluru" {
		t.Fatalf("district = %q", district)
	}
}

func TestResolveNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"Status":"Error","Message":"No records found","PostOffice":null}]`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Resolve(context.Background(), "999999")
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("err = %v, want ErrNoMatch", err)
	}
}

func TestResolveRejectsBadPincode(t *testing.T) {
	c := testClient("http://unused.invalid")
	for _, code := range []string{"", "1234", "12345678", "56000a"} {
		if _, err := c.Resolve(context.Background(), code); err == nil {
			t.Errorf("pincode %q accepted", code)
		}
	}
}

func TestResolveRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[{"Status":"Success","PostOffice":[{"District":"Mumbai"}]}]`))
	}))
	defer srv.Close()

	district, err := testClient(srv.URL).Resolve(context.Background(), "400001")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if district != "Mumbai" || calls.Load() != 3 {
		t.Fatalf("district = %q after %d calls", district, calls.Load())
	}
}

func TestResolveDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL).Resolve(context.Background(), "400001"); err == nil {
		t.Fatal("404 must fail")
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}

func TestRateLimiterSpacesRequests(t *testing.T) {
	limiter := NewRateLimiter(100)
	start := time.Now()
	for i := 0; i < 4; i++ {
		limiter.WaitTurn()
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Fatalf("four turns at 100 rps finished in %v, want at least 30ms", elapsed)
	}
}
