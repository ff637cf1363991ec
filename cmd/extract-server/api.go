package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"socialpulse-backend/services/extractor"
)

func writeJson(w http.ResponseWriter, status int, body any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		slog.Warn("failed to encode response body", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJson(w, status, map[string]string{"error": message})
}

// RegisterApi mounts the JSON endpoints. history may be nil, in which
// case the batch archive endpoints report an empty archive.
func RegisterApi(mux *http.ServeMux, service *extractor.Service, history *extractor.History) {
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		writeJson(w, http.StatusOK, map[string]any{
			"message": "Social Media Engagement API",
			"version": "1.0",
			"endpoints": map[string]string{
				"/health":         "Check API health",
				"/extract":        "Extract engagement metrics from social media links (POST)",
				"/extract-single": "Extract engagement metrics from a single link (POST)",
				"/platforms":      "Get supported platforms",
				"/batches":        "List archived batches",
			},
		})
	})

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJson(w, http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": "social-media-api",
		})
	})

	mux.HandleFunc("GET /platforms", func(w http.ResponseWriter, r *http.Request) {
		writeJson(w, http.StatusOK, map[string]any{
			"supported_platforms": []string{
				"X/Twitter",
				"YouTube",
				"TikTok",
				"Stockbit",
				"Instagram",
				"LinkedIn",
			},
			"limits": service.SupportedPlatforms(),
		})
	})

	mux.HandleFunc("POST /extract", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Links []string `json:"links"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "No JSON data provided")
			return
		}
		if len(body.Links) == 0 {
			writeError(w, http.StatusBadRequest, "No links provided")
			return
		}

		slog.InfoContext(r.Context(), "processing batch", "links", len(body.Links))
		result, err := service.ProcessBatch(r.Context(), body.Links)
		if errors.Is(err, extractor.ErrEmptyBatch) {
			writeError(w, http.StatusBadRequest, "No valid links provided")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Internal server error: "+err.Error())
			return
		}
		writeJson(w, http.StatusOK, result)
	})

	mux.HandleFunc("POST /extract-single", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Url string `json:"url"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "No JSON data provided")
			return
		}
		if strings.TrimSpace(body.Url) == "" {
			writeError(w, http.StatusBadRequest, "No URL provided")
			return
		}

		rec, err := service.ProcessOne(r.Context(), body.Url)
		if errors.Is(err, extractor.ErrEmptyBatch) {
			writeError(w, http.StatusBadRequest, "No URL provided")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Internal server error: "+err.Error())
			return
		}
		writeJson(w, http.StatusOK, map[string]any{"result": rec})
	})

	mux.HandleFunc("GET /batches", func(w http.ResponseWriter, r *http.Request) {
		if history == nil {
			writeJson(w, http.StatusOK, map[string]any{"batches": []any{}})
			return
		}
		batches, err := history.RecentBatches(r.Context(), 50)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Internal server error: "+err.Error())
			return
		}
		writeJson(w, http.StatusOK, map[string]any{"batches": batches})
	})

	mux.HandleFunc("GET /batches/{id}", func(w http.ResponseWriter, r *http.Request) {
		if history == nil {
			writeError(w, http.StatusNotFound, "Batch not found")
			return
		}
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid batch id")
			return
		}
		records, err := history.BatchRecords(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Internal server error: "+err.Error())
			return
		}
		if len(records) == 0 {
			writeError(w, http.StatusNotFound, "Batch not found")
			return
		}
		writeJson(w, http.StatusOK, map[string]any{"results": records})
	})
}
