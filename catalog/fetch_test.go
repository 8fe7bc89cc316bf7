package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ghc.json":
			_, _ = w.Write([]byte(jsonCatalog))
		case "/ghc.yaml":
			_, _ = w.Write([]byte(yamlCatalog))
		case "/latest":
			w.Header().Set("Content-Type", "application/yaml")
			_, _ = w.Write([]byte(yamlCatalog))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	for _, path := range []string{"/ghc.json", "/ghc.yaml", "/latest"} {
		t.Run(path, func(t *testing.T) {
			c, err := Fetch(context.Background(), srv.URL+path)
			if err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
			if c.Len() != 3 {
				t.Errorf("Len() = %d, want 3", c.Len())
			}
		})
	}
}

func TestFetchWithFormat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(yamlCatalog))
	}))
	defer srv.Close()

	if _, err := Fetch(context.Background(), srv.URL+"/db"); err == nil {
		t.Error("YAML served without a hint should fail to parse as JSON")
	}
	c, err := Fetch(context.Background(), srv.URL+"/db", WithFormat(FormatYAML))
	if err != nil {
		t.Fatalf("Fetch() with WithFormat error = %v", err)
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
}

func TestFetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/slow.json":
			select {
			case <-time.After(2 * time.Second):
			case <-r.Context().Done():
			}
		case "/huge.json":
			_, _ = w.Write([]byte(strings.Repeat(" ", MaxDocumentSize+1)))
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	tests := []struct {
		name    string
		url     string
		opts    []FetchOption
		wantMsg string
	}{
		{"status", srv.URL + "/db.json", nil, "HTTP 500"},
		{"timeout", srv.URL + "/slow.json", []FetchOption{WithTimeout(50 * time.Millisecond)}, "failed to fetch"},
		{"too large", srv.URL + "/huge.json", nil, "exceeds"},
		{"scheme", "file:///etc/ghc.json", nil, "scheme"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Fetch(context.Background(), tt.url, tt.opts...)
			if err == nil {
				t.Fatal("Fetch() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestFetchCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(jsonCatalog))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Fetch(ctx, srv.URL+"/ghc.json"); err == nil {
		t.Error("Fetch() with a canceled context should fail")
	}
}

func TestFetchWithHTTPClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(jsonCatalog))
	}))
	defer srv.Close()

	c, err := Fetch(context.Background(), srv.URL+"/ghc.json", WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
}
