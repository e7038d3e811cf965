package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/interest-protocol/memez-fun/internal/models"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

type ChainStatus interface {
	ChainIdentifier(ctx context.Context) (string, error)
	LatestCheckpointSequenceNumber(ctx context.Context) (uint64, error)
}

type EventStore interface {
	GetCursor(ctx context.Context) (*models.Cursor, error)
	ListEvents(ctx context.Context, eventType string, limit int) ([]*models.Event, error)
	CountEvents(ctx context.Context) (int64, error)
}

type Handler struct {
	Chain  ChainStatus
	Events EventStore
	Log    *zap.Logger
}

type statusResponse struct {
	ChainID          string         `json:"chainId"`
	LatestCheckpoint uint64         `json:"latestCheckpoint,string"`
	IndexedEvents    int64          `json:"indexedEvents"`
	Cursor           *models.Cursor `json:"cursor"`
}

type eventsResponse struct {
	Events []*models.Event `json:"events"`
}

func NewHandler(chain ChainStatus, events EventStore, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Chain: chain, Events: events, Log: log}
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	chainID, err := h.Chain.ChainIdentifier(ctx)
	if err != nil {
		h.Log.Error("chain identifier failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "fullnode unavailable")
		return
	}
	latest, err := h.Chain.LatestCheckpointSequenceNumber(ctx)
	if err != nil {
		h.Log.Error("latest checkpoint failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "fullnode unavailable")
		return
	}
	count, err := h.Events.CountEvents(ctx)
	if err != nil {
		h.Log.Error("count events failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "count events failed")
		return
	}
	cursor, err := h.Events.GetCursor(ctx)
	if err != nil {
		h.Log.Error("get cursor failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "get cursor failed")
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		ChainID:          chainID,
		LatestCheckpoint: latest,
		IndexedEvents:    count,
		Cursor:           cursor,
	})
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	limit := defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxLimit {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	events, err := h.Events.ListEvents(r.Context(), r.URL.Query().Get("type"), limit)
	if err != nil {
		h.Log.Error("list events failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list events failed")
		return
	}
	if events == nil {
		events = []*models.Event{}
	}
	writeJSON(w, http.StatusOK, eventsResponse{Events: events})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
