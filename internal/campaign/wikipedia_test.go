package campaign

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWikipediaSummary(t *testing.T) {
	var gotPath, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"type":"standard","title":"Financial technology","extract":" Fintech is technology used in finance. "}`))
	}))
	defer srv.Close()

	c := NewWikipediaClient(WithWikipediaBaseURL(srv.URL+"/"), WithHTTPClient(srv.Client()))
	got, err := c.Summary(context.Background(), "Financial technology")
	if err != nil {
		t.Fatalf("Summary error: %v", err)
	}
	if got != "Fintech is technology used in finance." {
		t.Errorf("unexpected extract %q", got)
	}
	if gotPath != "/page/summary/Financial_technology" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotUA != userAgent {
		t.Errorf("unexpected user agent %q", gotUA)
	}
}

func TestWikipediaSummary_NotFoundAndDisambiguation(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"404", http.StatusNotFound, `{}`},
		{"disambiguation", http.StatusOK, `{"type":"disambiguation","extract":"may refer to"}`},
		{"empty extract", http.StatusOK, `{"type":"standard"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewWikipediaClient(WithWikipediaBaseURL(srv.URL))
			got, err := c.Summary(context.Background(), "E-commerce")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != "No Wikipedia information found for E-commerce" {
				t.Errorf("unexpected text %q", got)
			}
		})
	}
}

func TestWikipediaSummary_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"server error", http.StatusInternalServerError, `oops`, "unexpected status 500"},
		{"invalid json", http.StatusOK, `not json`, "invalid JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewWikipediaClient(WithWikipediaBaseURL(srv.URL))
			_, err := c.Summary(context.Background(), "Digital marketing")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
