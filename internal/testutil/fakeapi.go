// Package testutil provides an in-memory curator backend for tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/mmcdole/curator/internal/domain"
)

// FakeAPI mimics the curator REST API: ids are integers, an empty status
// filter lists pending torrents, and only pending torrents can change state.
type FakeAPI struct {
	Server *httptest.Server

	mu           sync.Mutex
	torrents     map[string]*domain.Torrent
	order        []string
	health       string
	listFailures int
	failIDs      map[string]string
	rawList      string
	requests     map[string]int
	posts        []string
}

// NewFakeAPI starts a fake backend that is closed when the test ends
func NewFakeAPI(t *testing.T, seed ...domain.Torrent) *FakeAPI {
	t.Helper()

	f := &FakeAPI{
		torrents: make(map[string]*domain.Torrent),
		health:   "ok",
		failIDs:  make(map[string]string),
		requests: make(map[string]int),
	}
	for _, torrent := range seed {
		f.Add(torrent)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/torrents", f.handleList)
	mux.HandleFunc("POST /api/torrents/{id}/{action}", f.handleAction)
	mux.HandleFunc("GET /api/health", f.handleHealth)

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the base URL of the fake backend
func (f *FakeAPI) URL() string {
	return f.Server.URL
}

// Add stages a torrent; a missing status means pending
func (f *FakeAPI) Add(t domain.Torrent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.Status == "" {
		t.Status = domain.StatusPending
	}
	if _, ok := f.torrents[t.ID]; !ok {
		f.order = append(f.order, t.ID)
	}
	f.torrents[t.ID] = &t
}

// Status returns the backend's current status for id
func (f *FakeAPI) Status(id string) domain.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.torrents[id]; ok {
		return t.Status
	}
	return ""
}

// SetHealth changes the status reported by /api/health
func (f *FakeAPI) SetHealth(status string) {
	f.mu.Lock()
	f.health = status
	f.mu.Unlock()
}

// FailLists makes the next n list requests answer 500
func (f *FakeAPI) FailLists(n int) {
	f.mu.Lock()
	f.listFailures = n
	f.mu.Unlock()
}

// FailAction makes every approve/reject of id answer 500 with message
func (f *FakeAPI) FailAction(id, message string) {
	f.mu.Lock()
	f.failIDs[id] = message
	f.mu.Unlock()
}

// ServeRawList makes list requests answer 200 with body verbatim
func (f *FakeAPI) ServeRawList(body string) {
	f.mu.Lock()
	f.rawList = body
	f.mu.Unlock()
}

// Requests returns how many requests hit key ("list:pending", "health", "approve", "reject")
func (f *FakeAPI) Requests(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[key]
}

// ListRequests returns the total number of list requests
func (f *FakeAPI) ListRequests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range append([]domain.Status{""}, domain.AllStatuses...) {
		n += f.requests["list:"+string(s)]
	}
	return n
}

// Posts returns "action:id" for every POST in arrival order
func (f *FakeAPI) Posts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.posts...)
}

type fakeTorrent struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Size        int64  `json:"size"`
	MatchReason string `json:"match_reason"`
	Status      string `json:"status"`
	Link        string `json:"link"`
}

func (f *FakeAPI) handleList(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	raw := r.URL.Query().Get("status")
	f.requests["list:"+raw]++

	if f.listFailures > 0 {
		f.listFailures--
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "database is locked"})
		return
	}
	if f.rawList != "" {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, f.rawList)
		return
	}

	status := domain.Status(raw)
	if status == "" {
		status = domain.StatusPending
	}

	out := make([]fakeTorrent, 0)
	for _, id := range f.order {
		t := f.torrents[id]
		if t.Status != status {
			continue
		}
		n, _ := strconv.Atoi(t.ID)
		out = append(out, fakeTorrent{
			ID:          n,
			Title:       t.Title,
			Size:        t.Size,
			MatchReason: t.MatchReason,
			Status:      string(t.Status),
			Link:        t.Link,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"torrents": out, "count": len(out)})
}

func (f *FakeAPI) handleAction(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := r.PathValue("id")
	action := domain.Action(r.PathValue("action"))
	f.requests[string(action)]++
	f.posts = append(f.posts, string(action)+":"+id)

	if action != domain.ActionApprove && action != domain.ActionReject {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Unknown action"})
		return
	}
	if msg, ok := f.failIDs[id]; ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": msg})
		return
	}

	t, ok := f.torrents[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Torrent not found"})
		return
	}
	if t.Status != domain.StatusPending {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Torrent already " + string(t.Status)})
		return
	}

	t.Status = action.Target()
	n, _ := strconv.Atoi(id)
	writeJSON(w, http.StatusOK, map[string]any{"id": n, "status": t.Status, "title": t.Title})
}

func (f *FakeAPI) handleHealth(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests["health"]++
	writeJSON(w, http.StatusOK, map[string]string{"status": f.health})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// Torrent builds a pending torrent fixture
func Torrent(id, title string, size int64) domain.Torrent {
	return domain.Torrent{
		ID:          id,
		Title:       title,
		Size:        size,
		MatchReason: "show match: " + title,
		Status:      domain.StatusPending,
	}
}
