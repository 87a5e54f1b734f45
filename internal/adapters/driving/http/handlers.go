package http

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/custodia-labs/docquery-core/internal/core/domain"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// HealthResponse reports service and provider state
// @Description Service health with provider and index detail
type HealthResponse struct {
	Status        string                  `json:"status" example:"ok"`
	Providers     []domain.ProviderStatus `json:"providers"`
	IndexSize     int                     `json:"index_size"`
	IndexDocument string                  `json:"index_document,omitempty"`
}

// TokenRequest exchanges the static API credential for a service token
// @Description Token exchange request
type TokenRequest struct {
	APIToken string `json:"api_token"`
}

// TokenResponse carries an issued service token
// @Description Token exchange response
type TokenResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type" example:"Bearer"`
	ExpiresIn int    `json:"expires_in" example:"3600"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns service health, provider cooldown state, and index size
// @Tags         Health
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok"}
	if s.gateway != nil {
		resp.Providers = s.gateway.Status()
	}
	if s.index != nil {
		resp.IndexSize = s.index.Size()
		resp.IndexDocument = s.index.DocumentHash()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Returns the readiness status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Auth endpoints

// handleToken godoc
// @Summary      Exchange API credential for a service token
// @Description  Validates the static API token and issues a short-lived JWT
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request  body      TokenRequest  true  "API credential"
// @Success      200      {object}  TokenResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      401      {object}  ErrorResponse  "Invalid credential"
// @Router       /auth/token [post]
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if s.apiToken == "" {
		writeError(w, http.StatusNotFound, "token exchange disabled")
		return
	}

	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.APIToken), []byte(s.apiToken)) != 1 {
		writeError(w, http.StatusUnauthorized, "invalid credential")
		return
	}

	const ttl = time.Hour
	now := time.Now()
	token, err := s.auth.GenerateToken(&domain.TokenClaims{
		ClientID:  "api-client",
		Scope:     domain.ScopeRun,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token generation failed")
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int(ttl.Seconds()),
	})
}

// Run endpoint

// handleRun godoc
// @Summary      Answer questions about a document
// @Description  Downloads the document, indexes it, and answers every question in order
// @Tags         Query
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      domain.RunRequest  true  "Document URL and questions"
// @Success      200      {object}  domain.RunResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request"
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Failure      500      {object}  ErrorResponse  "Processing failed"
// @Router       /run [post]
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req domain.RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.runService.Run(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "documents url and questions are required")
		case errors.Is(err, domain.ErrUnsupportedFormat):
			writeError(w, http.StatusUnprocessableEntity, "unsupported document format")
		default:
			writeError(w, http.StatusInternalServerError, "failed to process document")
		}
		return
	}

	writeJSON(w, http.StatusOK, domain.RunResponse{Answers: result.Answers})
}

// handleProviders godoc
// @Summary      Provider status
// @Description  Reports the configured providers and their cooldown state
// @Tags         Query
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.ProviderStatus
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Router       /providers [get]
func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	if s.gateway == nil {
		writeJSON(w, http.StatusOK, []domain.ProviderStatus{})
		return
	}
	writeJSON(w, http.StatusOK, s.gateway.Status())
}

// Response helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
