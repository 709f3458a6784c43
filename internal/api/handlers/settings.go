package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nikhilbhutani/voicebridge/internal/config"
	"github.com/nikhilbhutani/voicebridge/internal/language"
	"github.com/nikhilbhutani/voicebridge/internal/multimodal/tts"
)

// PremiumCredentials is satisfied by *tts.AzureTTS.
type PremiumCredentials interface {
	SetCredentials(key, region string) error
	Configured() bool
	Region() string
}

type SettingsHandler struct {
	premium PremiumCredentials
	envFile string
}

// NewSettingsHandler persists updates to envFile; empty disables persistence.
func NewSettingsHandler(premium PremiumCredentials, envFile string) *SettingsHandler {
	return &SettingsHandler{premium: premium, envFile: envFile}
}

type SettingsResponse struct {
	PremiumConfigured bool   `json:"premium_configured"`
	Region            string `json:"region,omitempty"`
	Persisted         *bool  `json:"persisted,omitempty"`
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SettingsResponse{
		PremiumConfigured: h.premium.Configured(),
		Region:            h.premium.Region(),
	})
}

type UpdateSettingsRequest struct {
	APIKey string `json:"api_key"`
	Region string `json:"region"`
}

// Update swaps the premium credentials in place and writes them to the env
// file. A write failure is reported but does not undo the runtime change.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.APIKey = strings.TrimSpace(req.APIKey)
	req.Region = strings.TrimSpace(req.Region)
	if req.APIKey == "" || req.Region == "" {
		writeError(w, http.StatusBadRequest, "api_key and region required")
		return
	}

	if err := tts.ValidateRegion(req.Region); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.premium.SetCredentials(req.APIKey, req.Region); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	slog.Info("premium speech credentials updated", "region", req.Region)

	persisted := false
	if h.envFile != "" {
		if err := config.SaveSpeechCredentials(h.envFile, req.APIKey, req.Region); err != nil {
			slog.Warn("failed to persist speech credentials", "path", h.envFile, "error", err)
		} else {
			persisted = true
		}
	}

	writeJSON(w, http.StatusOK, SettingsResponse{
		PremiumConfigured: h.premium.Configured(),
		Region:            h.premium.Region(),
		Persisted:         &persisted,
	})
}

func Languages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"default":   language.Default,
		"languages": language.All(),
	})
}
