package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/lox/potgame/internal/pot"
	"github.com/lox/potgame/internal/session"
)

// HelloMessage is the greeting served at / and /hello
const HelloMessage = "Hello, to the backend!"

const maxActionBody = 4 << 10

// Message is the body of the greeting endpoints
type Message struct {
	Message string `json:"message"`
}

// ErrorResponse is returned for rejected or malformed requests
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ActionRequest is the body of POST /api/actions
type ActionRequest struct {
	Action string `json:"action"`
	Name   string `json:"name,omitempty"`
	Index  *int   `json:"index,omitempty"`
	Bet    int    `json:"bet,omitempty"`
}

// SaveErrorHeader is set when an action was applied but could not be saved.
const SaveErrorHeader = "X-Potgame-Save-Error"

func (s *Server) handleHello(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, Message{Message: HelloMessage})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.session.State())
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var req ActionRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxActionBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "malformed_request", Message: err.Error()})
		return
	}
	kind, err := session.ParseIntentKind(req.Action)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "unknown_action", Message: err.Error()})
		return
	}

	in := session.Intent{Kind: kind, Name: req.Name, Bet: req.Bet}
	if kind == session.IntentRemovePlayer {
		if req.Index == nil {
			s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "malformed_request", Message: "remove_player needs an index"})
			return
		}
		in.Index = *req.Index
	}

	state, err := s.session.Dispatch(r.Context(), in)
	var saveErr *session.SaveError
	var rejection *pot.Error
	switch {
	case err == nil:
	case errors.As(err, &saveErr):
		s.logger.Error().Err(err).Str("action", req.Action).Msg("Action applied but not saved")
		w.Header().Set(SaveErrorHeader, err.Error())
	case errors.As(err, &rejection):
		s.logger.Debug().Str("action", req.Action).Str("reason", pot.Code(err)).Msg("Action rejected")
		s.writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: pot.Code(err), Message: err.Error()})
		return
	default:
		s.logger.Error().Err(err).Str("action", req.Action).Msg("Action failed")
		s.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal", Message: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to write response")
	}
}
