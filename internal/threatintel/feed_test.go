package threatintel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"trustmon/pkg/models"
)

func newFeedServer(t *testing.T, handler http.HandlerFunc) (*FeedChecker, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewFeedChecker(FeedConfig{Name: "testfeed", URL: srv.URL, APIKey: "secret"})
	if err != nil {
		t.Fatalf("new feed checker: %v", err)
	}
	return c, srv
}

func TestFeedCheckerMaliciousResponse(t *testing.T) {
	c, _ := newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lookup" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("host"); got != "evil.example" {
			t.Errorf("unexpected host param: %s", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected auth header: %s", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"malicious","category":"c2","confidence":88}`))
	})

	res, err := c.Check(context.Background(), "evil.example")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res == nil || !res.IsThreat {
		t.Fatalf("expected threat verdict, got %+v", res)
	}
	if res.Severity != models.SeverityHigh {
		t.Fatalf("expected high severity for malicious, got %s", res.Severity)
	}
	if res.Categories[0] != models.CategoryC2 || res.Confidence != 88 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Sources[0] != "testfeed" {
		t.Fatalf("unexpected source: %v", res.Sources)
	}
}

func TestFeedCheckerSuspiciousDefaultsCategoryAndConfidence(t *testing.T) {
	c, _ := newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"suspicious"}`))
	})

	res, err := c.Check(context.Background(), "odd.example")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.Severity != models.SeverityMedium {
		t.Fatalf("expected medium severity, got %s", res.Severity)
	}
	if res.Categories[0] != models.CategorySuspicious || res.Confidence != 50 {
		t.Fatalf("expected defaults, got %+v", res)
	}
}

func TestFeedCheckerUnknownHostIsNoOpinion(t *testing.T) {
	c, _ := newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	res, err := c.Check(context.Background(), "unknown.example")
	if err != nil {
		t.Fatalf("404 must not be an error, got %v", err)
	}
	if res != nil {
		t.Fatalf("expected no opinion, got %+v", res)
	}
}

func TestFeedCheckerCleanStatusIsNoOpinion(t *testing.T) {
	c, _ := newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"clean"}`))
	})

	res, err := c.Check(context.Background(), "fine.example")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res != nil {
		t.Fatalf("expected no opinion for clean status, got %+v", res)
	}
}

func TestFeedCheckerServerErrorPropagates(t *testing.T) {
	c, _ := newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	if _, err := c.Check(context.Background(), "evil.example"); err == nil {
		t.Fatalf("expected error for server failure")
	}
}

func TestNewFeedCheckerRejectsEmptyURL(t *testing.T) {
	if _, err := NewFeedChecker(FeedConfig{Name: "bad"}); err == nil {
		t.Fatalf("expected error for empty URL")
	}
}
