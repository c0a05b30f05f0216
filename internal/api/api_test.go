package api

import (
	"context"
	"encoding/json"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/starford/tagscan/internal/apperr"
	"github.com/starford/tagscan/internal/inline"
	"github.com/starford/tagscan/internal/tagservice"
	"github.com/starford/tagscan/internal/testutil"
)

type brokenScanner struct{}

func (brokenScanner) Scan(context.Context, string) (iter.Seq2[string, error], error) {
	return nil, apperr.ErrScannerUnavailable
}

// testEnv builds a vault with one note and a router over it.
func testEnv(t *testing.T, authToken string, sc inline.Scanner) http.Handler {
	t.Helper()
	root := testutil.Vault(t, map[string]string{
		"note.md":   "---\ntags: [work, \"idea \"]\n---\nSee #work/urgent for details\n",
		"scalar.md": "---\ntags: broken\n---\n",
	})
	svc := tagservice.New(root,
		tagservice.WithScanner(sc),
		tagservice.WithLogger(slog.New(slog.NewJSONHandler(io.Discard, nil))),
	)
	return NewRouter(svc, authToken != "", authToken, nil, false)
}

func decodeTags(t *testing.T, w *httptest.ResponseRecorder) TagListResponse {
	t.Helper()
	var resp TagListResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func TestListTags_FrontmatterOnly(t *testing.T) {
	router := testEnv(t, "", inline.Builtin{Ext: ".md"})

	req := httptest.NewRequest(http.MethodGet, "/tags", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	resp := decodeTags(t, w)
	if !reflect.DeepEqual(resp.Tags, []string{"idea", "work"}) || resp.Count != 2 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestListTags_WithInline(t *testing.T) {
	router := testEnv(t, "", inline.Builtin{Ext: ".md"})

	req := httptest.NewRequest(http.MethodGet, "/tags?inline=true", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decodeTags(t, w)
	if !reflect.DeepEqual(resp.Tags, []string{"idea", "work", "work/urgent"}) {
		t.Errorf("tags = %v", resp.Tags)
	}
}

func TestListTags_BadInlineParam(t *testing.T) {
	router := testEnv(t, "", inline.Builtin{Ext: ".md"})

	req := httptest.NewRequest(http.MethodGet, "/tags?inline=maybe", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestListTags_ScannerUnavailable(t *testing.T) {
	router := testEnv(t, "", brokenScanner{})

	req := httptest.NewRequest(http.MethodGet, "/tags?inline=1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestAuth(t *testing.T) {
	router := testEnv(t, "secret", inline.Builtin{Ext: ".md"})

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"wrong scheme", "Basic secret", http.StatusUnauthorized},
		{"valid", "Bearer secret", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/tags", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Errorf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestAuthDisabled(t *testing.T) {
	mw := AuthMiddleware(false, "")
	called := false
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if !called || w.Code != http.StatusNoContent {
		t.Errorf("disabled auth should pass through, code = %d", w.Code)
	}
}

func TestEventsRouteMounted(t *testing.T) {
	root := testutil.Vault(t, nil)
	svc := tagservice.New(root)
	sse := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	router := NewRouter(svc, false, "", sse, false)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events", nil))
	if w.Code != http.StatusTeapot {
		t.Errorf("status = %d, want sse handler response", w.Code)
	}
}

func TestErrorBody(t *testing.T) {
	w := httptest.NewRecorder()
	writeJSON(w, http.StatusBadRequest, errorBody("bad"))
	var body errResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Error != "bad" {
		t.Errorf("error = %q", body.Error)
	}
}
