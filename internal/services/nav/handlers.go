package nav

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/millennium-tools/banav/internal/platform/dates"
	"github.com/millennium-tools/banav/internal/services/nav/assets"
	"github.com/millennium-tools/banav/internal/services/nav/timeline"
)

// imageResolver defines the cache operations used by image handlers.
type imageResolver interface {
	Lookup(ctx context.Context, name string) (assets.Result, bool)
	Handles() *assets.HandleRegistry
}

// timelineBuilder defines the aggregation operation used by timeline handlers.
type timelineBuilder interface {
	Build(ctx context.Context) ([]timeline.Event, error)
}

type handlers struct {
	cache      imageResolver
	aggregator timelineBuilder
	logger     *log.Logger
}

func newHandlers(cache imageResolver, aggregator timelineBuilder, logger *log.Logger) handlers {
	if logger == nil {
		logger = log.Default()
	}
	return handlers{cache: cache, aggregator: aggregator, logger: logger}
}

// timelineItem is one serialized timeline event plus its display range.
type timelineItem struct {
	timeline.Event
	When string `json:"when"`
}

func (h handlers) handleTimeline(w http.ResponseWriter, r *http.Request) {
	events, err := h.aggregator.Build(r.Context())
	if err != nil {
		h.logger.Printf("nav: build timeline: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "timeline unavailable"})
		return
	}

	items := make([]timelineItem, 0, len(events))
	for _, event := range events {
		items = append(items, timelineItem{
			Event: event,
			When:  dates.TimeRangeString(time.UnixMilli(event.Start), time.UnixMilli(event.End)),
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func (h handlers) handleImage(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing name"})
		return
	}

	result, ok := h.cache.Lookup(r.Context(), name)
	if !ok {
		// The cache reports failures by absence of a result, not an error.
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "image unavailable"})
		return
	}

	if result.Candidates != nil {
		writeJSON(w, http.StatusMultipleChoices, map[string][]string{"candidates": result.Candidates})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": result.Message,
		"url":     result.Handle.URI(),
	})
}

func (h handlers) handleBlob(w http.ResponseWriter, r *http.Request) {
	handle, ok := h.cache.Handles().Resolve(r.PathValue("token"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	payload := handle.Bytes()
	w.Header().Set("Content-Type", http.DetectContentType(payload))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(payload)
}

func (h handlers) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
