package nav

import "net/http"

func registerRoutes(mux *http.ServeMux, h handlers) {
	mux.HandleFunc(http.MethodGet+" /api/timeline", h.handleTimeline)
	mux.HandleFunc(http.MethodGet+" /api/image", h.handleImage)
	mux.HandleFunc(http.MethodGet+" /api/blob/{token}", h.handleBlob)
	mux.HandleFunc(http.MethodGet+" /healthz", h.handleHealthz)
}
