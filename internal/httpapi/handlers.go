package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MimeLyc/subtitle-vocab-miner/internal/apperror"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/config"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/jobs"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/library"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/persistence"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/service"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/subtitle"
	"github.com/MimeLyc/subtitle-vocab-miner/pkg/log"
)

type queueResponse struct {
	Items  []*jobs.QueueItem   `json:"items"`
	Status service.QueueStatus `json:"status"`
}

func (s *Server) handleListQueue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, queueResponse{
		Items:  s.queue.Items(),
		Status: s.runs.Status(),
	})
}

type addQueueItemRequest struct {
	AnimeFolder    string  `json:"anime_folder"`
	SubtitleFolder string  `json:"subtitle_folder"`
	DisplayName    string  `json:"display_name"`
	SubtitleOffset float64 `json:"subtitle_offset"`
}

func (s *Server) handleAddQueueItem(w http.ResponseWriter, r *http.Request) {
	var req addQueueItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	item, err := s.queue.Add(jobs.AddRequest{
		AnimeFolder:    req.AnimeFolder,
		SubtitleFolder: req.SubtitleFolder,
		DisplayName:    req.DisplayName,
		SubtitleOffset: subtitle.Seconds(req.SubtitleOffset),
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleClearQueue(w http.ResponseWriter, r *http.Request) {
	removed := s.queue.Clear()
	writeJSON(w, http.StatusOK, map[string]any{
		"removed": removed,
	})
}

func (s *Server) handleRemoveQueueItem(w http.ResponseWriter, r *http.Request) {
	if err := s.queue.Remove(chi.URLParam(r, "id")); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRequeueItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.queue.Requeue(chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleRunQueue(w http.ResponseWriter, r *http.Request) {
	if err := s.runs.Start(r.Context()); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"started": true,
	})
}

func (s *Server) handleCancelQueue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"cancelled": s.runs.Cancel(),
	})
}

type statsResponse struct {
	Overall            persistence.OverallStats       `json:"overall"`
	AvgCardsPerSession float64                        `json:"avg_cards_per_session"`
	KnownWords         int                            `json:"known_words"`
	Recent             []persistence.MiningSession    `json:"recent"`
	Difficulty         []persistence.SeriesDifficulty `json:"difficulty"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		writeError(w, http.StatusNotImplemented, "statistics are not configured")
		return
	}
	ctx := r.Context()
	overall, err := s.stats.OverallStats(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	known, err := s.stats.KnownWordCount(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	recent, err := s.stats.RecentSessions(ctx, queryInt(r, "recent", 10))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	difficulty, err := s.stats.DifficultyRanking(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		Overall:            overall,
		AvgCardsPerSession: overall.AvgCardsPerSession(),
		KnownWords:         known,
		Recent:             recent,
		Difficulty:         difficulty,
	})
}

func (s *Server) handleSeriesStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		writeError(w, http.StatusNotImplemented, "statistics are not configured")
		return
	}
	series, err := s.stats.SeriesStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, series)
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		writeError(w, http.StatusNotImplemented, "statistics are not configured")
		return
	}
	cards, err := s.stats.ListCards(r.Context(), queryInt(r, "limit", 100))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleLibrary(w http.ResponseWriter, r *http.Request) {
	root := strings.TrimSpace(r.URL.Query().Get("root"))
	if root == "" {
		writeError(w, http.StatusBadRequest, "root is required")
		return
	}
	if r.URL.Query().Get("refresh") == "true" {
		s.scanner.Invalidate()
	}
	series, err := s.scanner.Scan(r.Context(), root)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, series)
}

type pairsResponse struct {
	Pairs    []library.FilePair `json:"pairs"`
	Unpaired library.Unpaired   `json:"unpaired"`
}

func (s *Server) handlePairs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	videoDir := strings.TrimSpace(query.Get("video_dir"))
	subtitleDir := strings.TrimSpace(query.Get("subtitle_dir"))
	if videoDir == "" {
		writeError(w, http.StatusBadRequest, "video_dir is required")
		return
	}
	if subtitleDir == "" {
		subtitleDir = videoDir
	}
	strategy := library.Strategy(query.Get("strategy"))
	if strategy == "" {
		strategy = library.StrategyEpisode
	}
	if strategy != library.StrategyEpisode && strategy != library.StrategyName {
		writeError(w, http.StatusBadRequest, "strategy must be name or episode")
		return
	}

	pairs, unpaired, err := library.FindPairs(videoDir, subtitleDir, strategy)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, pairsResponse{Pairs: pairs, Unpaired: unpaired})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	if s.settings == nil {
		writeError(w, http.StatusNotImplemented, "settings store is not configured")
		return
	}
	settings, err := s.settings.GetRuntimeSettings()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	if s.settings == nil {
		writeError(w, http.StatusNotImplemented, "settings store is not configured")
		return
	}
	var req config.RuntimeSettings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	saved, err := s.settings.UpdateRuntimeSettings(req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if s.apply != nil {
		if err := s.apply(saved); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, saved)
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

// writeAppError maps domain errors to status codes.
func writeAppError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, jobs.ErrItemNotFound):
		status = http.StatusNotFound
	case errors.Is(err, jobs.ErrItemBusy), errors.Is(err, service.ErrRunInProgress):
		status = http.StatusConflict
	case apperror.Is(err, apperror.ErrValidation):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		log.Error("Request failed: %v", err)
	}
	writeError(w, status, err.Error())
}
