package handlers

import (
	"net/http"

	"github.com/nikhilbhutani/voicebridge/internal/history"
)

type HistoryHandler struct {
	store *history.Store
}

func NewHistoryHandler(store *history.Store) *HistoryHandler {
	return &HistoryHandler{store: store}
}

// List returns entries newest first. ?filter= is one of all, text, speech,
// enhanced or standard.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := history.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries := h.store.List(filter)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"filter":  filter,
		"entries": entries,
		"count":   len(entries),
	})
}

func (h *HistoryHandler) Clear(w http.ResponseWriter, r *http.Request) {
	n := h.store.Clear()
	writeJSON(w, http.StatusOK, map[string]int{"cleared": n})
}
