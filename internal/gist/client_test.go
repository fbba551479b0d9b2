package gist

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{
		BaseURL: srv.URL,
		Logger:  log.New(io.Discard, "", 0),
		Now:     func() time.Time { return time.Date(2025, 3, 5, 9, 30, 0, 0, time.UTC) },
	})
}

func TestCreate(t *testing.T) {
	var got struct {
		Description string `json:"description"`
		Public      bool   `json:"public"`
		Files       map[string]struct {
			Content string `json:"content"`
		} `json:"files"`
	}
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/gists" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if h := r.Header.Get("Authorization"); h != "Bearer tok" {
			t.Errorf("Authorization = %q", h)
		}
		if h := r.Header.Get("Accept"); h != acceptHeader {
			t.Errorf("Accept = %q", h)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"g1"}`))
	})

	id, err := c.Create(context.Background(), "tok", []byte(`{"version":"5.0"}`))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id != "g1" {
		t.Errorf("id = %q, want g1", id)
	}
	if got.Public {
		t.Error("gist should be private")
	}
	if !strings.Contains(got.Description, "2025/3/5 09:30:00") {
		t.Errorf("description = %q", got.Description)
	}
	if f, ok := got.Files[DefaultFilename]; !ok || f.Content != `{"version":"5.0"}` {
		t.Errorf("files = %+v", got.Files)
	}
}

func TestUpdate(t *testing.T) {
	called := false
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		if r.Method != http.MethodPatch || r.URL.Path != "/gists/g1" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"id":"g1"}`))
	})
	if err := c.Update(context.Background(), "tok", "g1", []byte("{}")); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !called {
		t.Error("server not called")
	}
	if err := c.Update(context.Background(), "tok", "", nil); !errors.Is(err, ErrMissingID) {
		t.Errorf("empty id: err = %v", err)
	}
}

func TestGet(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if h := r.Header.Get("Authorization"); h != "" {
			t.Errorf("anonymous get sent Authorization %q", h)
		}
		switch r.URL.Path {
		case "/gists/g1":
			_, _ = w.Write([]byte(`{"id":"g1","files":{"dailyfocus-data.json":{"content":"payload"}}}`))
		case "/gists/other":
			_, _ = w.Write([]byte(`{"id":"other","files":{"notes.md":{"content":"x"}}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	data, err := c.Get(context.Background(), "", "g1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("content = %q", data)
	}

	if _, err := c.Get(context.Background(), "", "other"); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("missing file: err = %v", err)
	}

	_, err = c.Get(context.Background(), "", "nope")
	var he *HTTPError
	if !errors.As(err, &he) || he.Status != http.StatusNotFound || he.Message != "gist not found" {
		t.Errorf("404: err = %v", err)
	}
	if !IsNotFound(err) {
		t.Error("IsNotFound = false")
	}
}

func TestGetTruncatedFollowsRawURL(t *testing.T) {
	var srvURL string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/gists/big":
			_, _ = w.Write([]byte(`{"files":{"dailyfocus-data.json":{"content":"par","truncated":true,"raw_url":"` + srvURL + `/raw/big"}}}`))
		case "/raw/big":
			_, _ = w.Write([]byte("full content"))
		}
	})
	srvURL = c.baseURL

	data, err := c.Get(context.Background(), "tok", "big")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(data) != "full content" {
		t.Errorf("content = %q", data)
	}
}

func TestHTTPErrorMessage(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"api message", http.StatusUnprocessableEntity, `{"message":"Validation Failed"}`, "Validation Failed"},
		{"unauthorized", http.StatusUnauthorized, ``, "invalid token"},
		{"not found", http.StatusNotFound, `not json`, "gist not found"},
		{"server error", http.StatusBadGateway, ``, "upload failed (502)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.Create(context.Background(), "tok", []byte("{}"))
			var he *HTTPError
			if !errors.As(err, &he) {
				t.Fatalf("err = %v, want *HTTPError", err)
			}
			if he.Status != tt.status || he.Message != tt.message {
				t.Errorf("got %d %q, want %d %q", he.Status, he.Message, tt.status, tt.message)
			}
		})
	}
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New(Config{BaseURL: url, Logger: log.New(io.Discard, "", 0)})
	_, err := c.Get(context.Background(), "", "g1")
	var ne *NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("err = %v, want *NetworkError", err)
	}
	if ne.Op != "download" {
		t.Errorf("Op = %q", ne.Op)
	}
}
