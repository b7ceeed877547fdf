package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"bitbotScope/internal/model"
	"bitbotScope/internal/storage"
)

const maxLimit = 1000

// Server serves read-only views of the ingestion cache.
type Server struct {
	reader storage.Reader
	logger *zap.Logger
}

func NewServer(reader storage.Reader, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{reader: reader, logger: logger}
}

// Router returns the HTTP routes of the query API.
func (s *Server) Router() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	router.HandleFunc("/assets", s.handleAssets).Methods(http.MethodGet)
	router.HandleFunc("/bitbots", s.handleBitbots).Methods(http.MethodGet)
	router.HandleFunc("/bitbots/{name}", s.handleBitbot).Methods(http.MethodGet)
	return router
}

type statusResponse struct {
	Cursor       int `json:"cursor"`
	Assets       int `json:"assets"`
	Transactions int `json:"transactions"`
	Bitbots      int `json:"bitbots"`
}

type listResponse[T any] struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Items  []T `json:"items"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cursor, err := s.reader.Cursor(ctx)
	if err != nil {
		s.internalError(w, "read cursor", err)
		return
	}
	assets, err := s.reader.AssetIDs(ctx)
	if err != nil {
		s.internalError(w, "read assets", err)
		return
	}
	txs, err := s.reader.ProcessedTxs(ctx)
	if err != nil {
		s.internalError(w, "read transactions", err)
		return
	}
	bots, err := s.reader.Bitbots(ctx)
	if err != nil {
		s.internalError(w, "read bitbots", err)
		return
	}
	respondJSON(w, statusResponse{
		Cursor:       cursor,
		Assets:       len(assets),
		Transactions: len(txs),
		Bitbots:      len(bots),
	})
}

func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	offset, limit, ok := parsePaging(w, r)
	if !ok {
		return
	}
	assets, err := s.reader.AssetIDs(r.Context())
	if err != nil {
		s.internalError(w, "read assets", err)
		return
	}
	respondJSON(w, listResponse[string]{Total: len(assets), Offset: offset, Items: window(assets, offset, limit)})
}

func (s *Server) handleBitbots(w http.ResponseWriter, r *http.Request) {
	offset, limit, ok := parsePaging(w, r)
	if !ok {
		return
	}
	bots, err := s.reader.Bitbots(r.Context())
	if err != nil {
		s.internalError(w, "read bitbots", err)
		return
	}
	respondJSON(w, listResponse[model.Bitbot]{Total: len(bots), Offset: offset, Items: window(bots, offset, limit)})
}

// handleBitbot returns the first cached record with the requested name.
func (s *Server) handleBitbot(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	bots, err := s.reader.Bitbots(r.Context())
	if err != nil {
		s.internalError(w, "read bitbots", err)
		return
	}
	for _, bot := range bots {
		if bot.Name == name {
			respondJSON(w, bot)
			return
		}
	}
	respondError(w, "bitbot not found", http.StatusNotFound)
}

func (s *Server) internalError(w http.ResponseWriter, msg string, err error) {
	s.logger.Error(msg, zap.Error(err))
	respondError(w, "internal error", http.StatusInternalServerError)
}

func parsePaging(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		respondError(w, "invalid offset", http.StatusBadRequest)
		return 0, 0, false
	}
	limit, err := queryInt(r, "limit", 100)
	if err != nil || limit <= 0 {
		respondError(w, "invalid limit", http.StatusBadRequest)
		return 0, 0, false
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return offset, limit, true
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func window[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": message,
	})
}
