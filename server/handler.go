package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Raoof128/HEM/api"
	"github.com/Raoof128/HEM/audit"
	"github.com/Raoof128/HEM/crypto"
	"github.com/Raoof128/HEM/metrics"
)

func (s *Server) handleServiceInfo(w http.ResponseWriter, r *http.Request) {
	info := api.ServiceInfoResponse{Service: s.cfg.ServiceName}
	if ctx, err := s.keys.Active(); err == nil {
		id := ctx.ID().String()
		info.KeyID = &id
	}
	s.writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}

func (s *Server) handleGenerateKeys(w http.ResponseWriter, r *http.Request) {
	ctx, err := s.keys.Generate()
	if err != nil {
		s.audit.Record(r.Context(), audit.EventKeysGenerated+audit.ErrorSuffix,
			map[string]string{"error": err.Error()})
		s.writeError(w, err)
		return
	}

	metrics.KeysGenerated.Inc()
	s.audit.Record(r.Context(), audit.EventKeysGenerated,
		map[string]string{"key_id": ctx.ID().String()})
	s.log.Info("Generated key context", "keyID", ctx.ID().String())

	s.writeJSON(w, http.StatusOK, api.KeyResponse{
		KeyID:     ctx.ID().String(),
		PublicKey: ctx.PublicDescriptor(),
	})
}

func (s *Server) handlePublicKey(w http.ResponseWriter, r *http.Request) {
	ctx, err := s.keys.Active()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.KeyResponse{
		KeyID:     ctx.ID().String(),
		PublicKey: ctx.PublicDescriptor(),
	})
}

func (s *Server) handleEncrypt(w http.ResponseWriter, r *http.Request) {
	var req api.EncryptRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	start := time.Now()
	token, err := s.engine.Encrypt(req.Values)
	metrics.ObserveOp("encrypt", err, time.Since(start))
	if err != nil {
		s.audit.Record(r.Context(), audit.EventEncrypt+audit.ErrorSuffix,
			map[string]string{"error": err.Error()})
		s.writeError(w, err)
		return
	}

	s.audit.Record(r.Context(), audit.EventEncrypt, tokenMetadata(token))
	s.writeJSON(w, http.StatusOK, api.CiphertextResponse{Ciphertext: token.String()})
}

func (s *Server) handleDecrypt(w http.ResponseWriter, r *http.Request) {
	var req api.DecryptRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	if !s.cfg.EnableSimulatedDecrypt {
		s.audit.Record(r.Context(), audit.EventDecryptDenied, nil)
		s.writeErrorStatus(w, http.StatusForbidden, errors.New("simulated decrypt is disabled"))
		return
	}

	start := time.Now()
	values, err := s.revealToken(req.Ciphertext)
	metrics.ObserveOp("decrypt", err, time.Since(start))
	if err != nil {
		s.audit.Record(r.Context(), audit.EventDecrypt+audit.ErrorSuffix,
			map[string]string{"error": err.Error()})
		s.writeError(w, err)
		return
	}

	s.audit.Record(r.Context(), audit.EventDecrypt,
		map[string]string{"shape": strconv.Itoa(len(values))})
	s.writeJSON(w, http.StatusOK, api.DecryptResponse{Values: values})
}

func (s *Server) revealToken(raw string) ([]float64, error) {
	token, err := crypto.ParseToken(raw)
	if err != nil {
		return nil, err
	}
	return s.engine.Reveal(token)
}

// handlePairOp builds the handler for the two-operand compute endpoints.
func (s *Server) handlePairOp(op string, fn func(a, b *crypto.Token) (*crypto.Token, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.PairRequest
		if !s.decodeRequest(w, r, &req) {
			return
		}

		start := time.Now()
		token, err := s.computePair(req, fn)
		s.finishCompute(r.Context(), w, op, token, err, time.Since(start))
	}
}

func (s *Server) computePair(req api.PairRequest, fn func(a, b *crypto.Token) (*crypto.Token, error)) (*crypto.Token, error) {
	a, err := crypto.ParseToken(req.A)
	if err != nil {
		return nil, err
	}
	b, err := crypto.ParseToken(req.B)
	if err != nil {
		return nil, err
	}
	return fn(a, b)
}

func (s *Server) handlePolynomial(w http.ResponseWriter, r *http.Request) {
	var req api.PolynomialRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	start := time.Now()
	token, err := s.runOnToken(req.Ciphertext, func(t *crypto.Token) (*crypto.Token, error) {
		return s.engine.Polynomial(t, req.Coefficients)
	})
	s.finishCompute(r.Context(), w, "polynomial", token, err, time.Since(start))
}

func (s *Server) handleMean(w http.ResponseWriter, r *http.Request) {
	var req api.MeanRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	start := time.Now()
	token, err := s.runOnToken(req.Ciphertext, s.engine.Mean)
	s.finishCompute(r.Context(), w, "mean", token, err, time.Since(start))
}

func (s *Server) handleLinear(w http.ResponseWriter, r *http.Request) {
	var req api.LinearRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	start := time.Now()
	token, err := s.runOnToken(req.Ciphertext, func(t *crypto.Token) (*crypto.Token, error) {
		return s.engine.Linear(t, req.Weights, req.Bias)
	})
	s.finishCompute(r.Context(), w, "linear", token, err, time.Since(start))
}

func (s *Server) runOnToken(raw string, fn func(*crypto.Token) (*crypto.Token, error)) (*crypto.Token, error) {
	token, err := crypto.ParseToken(raw)
	if err != nil {
		return nil, err
	}
	return fn(token)
}

// finishCompute records metrics and audit for a compute operation and writes
// the response.
func (s *Server) finishCompute(ctx context.Context, w http.ResponseWriter, op string, token *crypto.Token, err error, elapsed time.Duration) {
	metrics.ObserveOp(op, err, elapsed)
	event := audit.ComputePrefix + op
	if err != nil {
		s.audit.Record(ctx, event+audit.ErrorSuffix, map[string]string{"error": err.Error()})
		s.writeError(w, err)
		return
	}
	s.audit.Record(ctx, event, tokenMetadata(token))
	s.writeJSON(w, http.StatusOK, api.CiphertextResponse{Ciphertext: token.String()})
}

func tokenMetadata(t *crypto.Token) map[string]string {
	return map[string]string{
		"key_id": t.KeyID().String(),
		"shape":  strconv.Itoa(t.Shape()),
	}
}
