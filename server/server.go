package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Raoof128/HEM/api"
	"github.com/Raoof128/HEM/audit"
	"github.com/Raoof128/HEM/config"
	"github.com/Raoof128/HEM/crypto"
	"github.com/Raoof128/HEM/engine"
	"github.com/Raoof128/HEM/keystore"
)

// Server wires the engine, key store and audit log into the HTTP API. It
// implements httpserver.RouteRegistrar and carries no state of its own; all
// key material lives in the store.
type Server struct {
	cfg    *config.Config
	log    *slog.Logger
	keys   *keystore.Store
	engine *engine.Engine
	audit  *audit.Logger
}

// New creates the API server around an existing store, engine and audit log.
func New(cfg *config.Config, log *slog.Logger, keys *keystore.Store, eng *engine.Engine, auditLog *audit.Logger) *Server {
	return &Server{
		cfg:    cfg,
		log:    log,
		keys:   keys,
		engine: eng,
		audit:  auditLog,
	}
}

// RegisterRoutes registers all API routes with the router.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/", s.handleServiceInfo)
	r.Get("/health", s.handleHealth)

	r.Post("/keys/generate", s.handleGenerateKeys)
	r.Get("/keys/public", s.handlePublicKey)

	r.Post("/encrypt", s.handleEncrypt)
	r.Post("/decrypt", s.handleDecrypt)

	r.Post("/compute/add", s.handlePairOp("add", s.engine.Add))
	r.Post("/compute/mul", s.handlePairOp("mul", s.engine.Mul))
	r.Post("/compute/dot", s.handlePairOp("dot", s.engine.Dot))
	r.Post("/compute/polynomial", s.handlePolynomial)
	r.Post("/compute/mean", s.handleMean)
	r.Post("/compute/linear", s.handleLinear)
}

// statusForError maps engine and store errors onto HTTP status codes. Key
// lookups map to 404, every validation failure to 400, anything unknown
// to 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, keystore.ErrUnknownKey),
		errors.Is(err, keystore.ErrNoActiveKey):
		return http.StatusNotFound
	case errors.Is(err, crypto.ErrEmptyInput),
		errors.Is(err, crypto.ErrNonFiniteValue),
		errors.Is(err, crypto.ErrKeyMismatch),
		errors.Is(err, crypto.ErrCorruptToken),
		errors.Is(err, engine.ErrShapeMismatch),
		errors.Is(err, engine.ErrEmptyCoefficients):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeRequest parses the JSON request body into dst. On failure it writes
// a 400 response and returns false.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeErrorStatus(w, http.StatusBadRequest, fmt.Errorf("parse request: %w", err))
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("Failed to encode response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.writeErrorStatus(w, statusForError(err), err)
}

func (s *Server) writeErrorStatus(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, api.ErrorResponse{Error: err.Error()})
}
