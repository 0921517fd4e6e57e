package nav

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/millennium-tools/banav/internal/services/nav/assets"
	"github.com/millennium-tools/banav/internal/services/nav/timeline"
)

func testMux(cache imageResolver, aggregator timelineBuilder) *http.ServeMux {
	mux := http.NewServeMux()
	registerRoutes(mux, newHandlers(cache, aggregator, log.New(io.Discard, "", 0)))
	return mux
}

func TestHandleTimeline(t *testing.T) {
	start := time.Date(2024, time.January, 12, 0, 0, 0, 0, time.Local)
	builder := &fakeBuilder{events: []timeline.Event{{
		Name:        "Shiroko 的生日",
		Description: "砂狼 白子",
		Start:       start.UnixMilli(),
		End:         start.UnixMilli() + 86399999,
		Server:      timeline.ServerAll,
	}}}
	mux := testMux(&fakeResolver{registry: assets.NewHandleRegistry()}, builder)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/timeline", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var items []struct {
		Name string `json:"name"`
		When string `json:"when"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&items); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}
	if items[0].Name != "Shiroko 的生日" {
		t.Fatalf("name = %q", items[0].Name)
	}
	if want := "01/12 00:00 ~ 01/12 23:59"; items[0].When != want {
		t.Fatalf("when = %q, want %q", items[0].When, want)
	}
}

func TestHandleTimelineBuildFailure(t *testing.T) {
	builder := &fakeBuilder{err: errors.New("feed down")}
	mux := testMux(&fakeResolver{registry: assets.NewHandleRegistry()}, builder)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/timeline", nil))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadGateway)
	}
}

func TestHandleImageExactMatch(t *testing.T) {
	registry := assets.NewHandleRegistry()
	handle := registry.Replace("Hoshino", []byte("png"))
	resolver := &fakeResolver{
		result:   assets.Result{Handle: handle, Message: assets.MessageCacheHit},
		ok:       true,
		registry: registry,
	}
	mux := testMux(resolver, &fakeBuilder{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/image?name=Hoshino", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var body struct {
		Message string `json:"message"`
		URL     string `json:"url"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Message != assets.MessageCacheHit {
		t.Fatalf("message = %q, want %q", body.Message, assets.MessageCacheHit)
	}
	if !strings.HasPrefix(body.URL, "/api/blob/") {
		t.Fatalf("url = %q, want /api/blob/ prefix", body.URL)
	}
}

func TestHandleImageFuzzyMatch(t *testing.T) {
	resolver := &fakeResolver{
		result:   assets.Result{Candidates: []string{"Hoshino", "Hoshino (Bunny)"}},
		ok:       true,
		registry: assets.NewHandleRegistry(),
	}
	mux := testMux(resolver, &fakeBuilder{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/image?name=Hoshi", nil))

	if rec.Code != http.StatusMultipleChoices {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusMultipleChoices)
	}
	var body struct {
		Candidates []string `json:"candidates"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Candidates) != 2 {
		t.Fatalf("candidates = %v, want 2 entries", body.Candidates)
	}
}

func TestHandleImageSilentFailureMapsToNotFound(t *testing.T) {
	resolver := &fakeResolver{ok: false, registry: assets.NewHandleRegistry()}
	mux := testMux(resolver, &fakeBuilder{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/image?name=Hoshino", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandleImageMissingName(t *testing.T) {
	mux := testMux(&fakeResolver{registry: assets.NewHandleRegistry()}, &fakeBuilder{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/image", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleBlobServesPayload(t *testing.T) {
	registry := assets.NewHandleRegistry()
	handle := registry.Replace("Hoshino", []byte("payload-bytes"))
	mux := testMux(&fakeResolver{registry: registry}, &fakeBuilder{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, handle.URI(), nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "payload-bytes" {
		t.Fatalf("body = %q, want %q", rec.Body.String(), "payload-bytes")
	}
}

func TestHandleBlobReleasedHandleIsGone(t *testing.T) {
	registry := assets.NewHandleRegistry()
	handle := registry.Replace("Hoshino", []byte("payload-bytes"))
	uri := handle.URI()
	handle.Release()
	mux := testMux(&fakeResolver{registry: registry}, &fakeBuilder{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, uri, nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandleHealthz(t *testing.T) {
	mux := testMux(&fakeResolver{registry: assets.NewHandleRegistry()}, &fakeBuilder{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}
