package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

type cannedResponse struct {
	code int
	body string
}

// fakeService stands in for the remote availability service and records
// what it was asked.
type fakeService struct {
	mu        sync.Mutex
	responses map[string]cannedResponse
	before    map[string]func()
	calls     map[string]int
	lastBody  []byte
	lastQuery url.Values
	lastHdr   http.Header
}

func newFakeService(t *testing.T) (*fakeService, *httptest.Server) {
	t.Helper()

	f := &fakeService{
		responses: map[string]cannedResponse{
			http.MethodGet:    {http.StatusOK, `[]`},
			http.MethodPost:   {http.StatusOK, `{"ok":true}`},
			http.MethodDelete: {http.StatusOK, `{"ok":true}`},
		},
		calls:  map[string]int{},
		before: map[string]func(){},
	}

	r := chi.NewRouter()
	r.Get("/api/availability", f.serve)
	r.Post("/api/availability", f.serve)
	r.Delete("/api/availability", f.serve)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeService) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.calls[r.Method]++
	f.lastBody = body
	f.lastQuery = r.URL.Query()
	f.lastHdr = r.Header.Clone()
	resp := f.responses[r.Method]
	hook := f.before[r.Method]
	f.mu.Unlock()

	if hook != nil {
		hook()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.code)
	io.WriteString(w, resp.body)
}

func (f *fakeService) respond(method string, code int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[method] = cannedResponse{code, body}
}

// beforeResponse runs fn while the request for method is in flight, after
// the body was read and before anything is written back.
func (f *fakeService) beforeResponse(method string, fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.before[method] = fn
}

func (f *fakeService) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeService) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeService) body() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastBody
}

func (f *fakeService) query() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastQuery
}

func (f *fakeService) header() http.Header {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastHdr
}
