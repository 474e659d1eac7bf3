package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/catops/cat-content-bot/internal/analyzer"
	"github.com/catops/cat-content-bot/internal/gemini"
	"github.com/catops/cat-content-bot/internal/posting"
	"github.com/catops/cat-content-bot/internal/store"
	"github.com/sirupsen/logrus"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.Errorf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

type analyzeRequest struct {
	FilePath         string `json:"file_path"`
	OriginalFilename string `json:"original_filename"`
}

func analyzeHandler(svc *analyzer.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req analyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.FilePath == "" {
			writeError(w, http.StatusBadRequest, "file_path is required")
			return
		}

		analysis, err := svc.AnalyzeMedia(r.Context(), req.FilePath, req.OriginalFilename)
		if err != nil {
			var parseErr *analyzer.ParseError
			var modelErr *gemini.ModelError
			switch {
			case errors.As(err, &parseErr), errors.As(err, &modelErr):
				writeError(w, http.StatusBadGateway, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, err.Error())
			}
			return
		}

		writeJSON(w, http.StatusOK, analysis)
	}
}

type postRequest struct {
	AnalysisID int64    `json:"analysis_id"`
	Platforms  []string `json:"platforms"`
}

func postHandler(db *store.Store, orchestrator *posting.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req postRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		analysis, err := db.LoadAnalysis(r.Context(), req.AnalysisID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if analysis == nil {
			writeError(w, http.StatusNotFound, "analysis not found")
			return
		}

		platforms := req.Platforms
		if len(platforms) == 0 {
			platforms = orchestrator.Platforms()
		}

		results := orchestrator.Post(r.Context(), analysis, platforms)
		writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
	}
}

type scheduleRequest struct {
	AnalysisID    int64    `json:"analysis_id"`
	Platforms     []string `json:"platforms"`
	ScheduledTime string   `json:"scheduled_time"`
}

func scheduleHandler(db *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req scheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if len(req.Platforms) == 0 {
			writeError(w, http.StatusBadRequest, "no platforms selected")
			return
		}

		at, err := time.Parse(time.RFC3339, req.ScheduledTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "scheduled_time must be RFC3339")
			return
		}

		analysis, err := db.LoadAnalysis(r.Context(), req.AnalysisID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if analysis == nil {
			writeError(w, http.StatusNotFound, "analysis not found")
			return
		}

		recordIDs := make([]int64, 0, len(req.Platforms))
		for _, platform := range req.Platforms {
			id, err := db.SchedulePost(r.Context(), analysis.ID, platform, at)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			recordIDs = append(recordIDs, id)
		}

		logrus.Infof("Scheduled analysis %d for %v at %s", analysis.ID, req.Platforms, at)
		writeJSON(w, http.StatusAccepted, map[string]interface{}{
			"message":    "post scheduled",
			"record_ids": recordIDs,
		})
	}
}

func historyHandler(db *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var analysisID int64
		if raw := r.URL.Query().Get("analysis_id"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				writeError(w, http.StatusBadRequest, "analysis_id must be an integer")
				return
			}
			analysisID = id
		}

		records, err := db.History(r.Context(), analysisID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{"history": records})
	}
}
