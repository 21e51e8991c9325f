package gitsync

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(ClientConfig{
		Token:   "tok",
		Owner:   "acme",
		Repo:    "bank",
		BaseURL: srv.URL,
	})
}

func TestReadDecodesContent(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/acme/bank/contents/data/problems.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("ref") != "main" {
			t.Errorf("missing ref, got %q", r.URL.Query().Get("ref"))
		}
		// The API line-wraps the base64 payload.
		_ = json.NewEncoder(w).Encode(map[string]string{
			"content": base64.StdEncoding.EncodeToString([]byte(`[{"id":1}]`))[:8] + "\n" +
				base64.StdEncoding.EncodeToString([]byte(`[{"id":1}]`))[8:],
			"sha": "abc123",
		})
	}))

	got, err := c.Read(context.Background(), "data/problems.json")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got != `[{"id":1}]` {
		t.Fatalf("decoded %q", got)
	}
}

func TestReadNotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	}))
	if _, err := c.Read(context.Background(), "missing.json"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestWriteSendsShaForExistingFile(t *testing.T) {
	var put map[string]string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(map[string]string{"content": "", "sha": "oldsha"})
		case http.MethodPut:
			if err := json.NewDecoder(r.Body).Decode(&put); err != nil {
				t.Errorf("bad put body: %v", err)
			}
			w.WriteHeader(http.StatusOK)
		}
	}))

	if err := c.Write(context.Background(), "data/problems.json", "[]", "sync"); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if put["sha"] != "oldsha" {
		t.Fatalf("expected existing sha in update, got %q", put["sha"])
	}
	if put["branch"] != "main" || put["message"] != "sync" {
		t.Fatalf("unexpected payload: %+v", put)
	}
	if decoded, _ := base64.StdEncoding.DecodeString(put["content"]); string(decoded) != "[]" {
		t.Fatalf("content not base64-encoded: %q", put["content"])
	}
}

func TestWriteCreatesWhenMissing(t *testing.T) {
	var put map[string]string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			http.NotFound(w, r)
		case http.MethodPut:
			_ = json.NewDecoder(r.Body).Decode(&put)
			w.WriteHeader(http.StatusCreated)
		}
	}))

	if err := c.Write(context.Background(), "data/problems.json", "[]", "first sync"); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, ok := put["sha"]; ok {
		t.Fatal("create must not carry a sha")
	}
}

func TestWriteRequiresToken(t *testing.T) {
	c := NewClient(ClientConfig{Owner: "acme", Repo: "bank"})
	if err := c.Write(context.Background(), "x", "y", "z"); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
}

func TestDisabledClient(t *testing.T) {
	c := NewClient(ClientConfig{})
	if _, err := c.Read(context.Background(), "x"); !errors.Is(err, ErrNotEnabled) {
		t.Fatalf("expected ErrNotEnabled, got %v", err)
	}
}
