// Package api exposes the relay over HTTP. Handlers are thin: decode,
// delegate to the services, map errors to status codes. All domain rules
// live below this package.
package api

import (
	"batepapo/domain"
	"batepapo/errors"
	"batepapo/services"
	"batepapo/validation"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/samber/lo"
)

// IdentityHeader carries the caller's participant name on message and
// heartbeat endpoints. Identity is a bare header: authentication is out of
// scope for this system.
const IdentityHeader = "User"

type Server struct {
	registry services.IRegistryService
	router   services.IRouterService
	log      *slog.Logger
}

func NewServer(registry services.IRegistryService, router services.IRouterService, log *slog.Logger) *Server {
	return &Server{registry: registry, router: router, log: log}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /participants", s.handleJoin)
	mux.HandleFunc("GET /participants", s.handleListParticipants)
	mux.HandleFunc("POST /messages", s.handleSend)
	mux.HandleFunc("GET /messages", s.handleFetch)
	mux.HandleFunc("POST /status", s.handleHeartbeat)
	return mux
}

type participantJSON struct {
	Name       string `json:"name"`
	LastStatus int64  `json:"lastStatus"`
}

type messageJSON struct {
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
	Time string `json:"time"`
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req validation.JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.NewValidationError([]string{"request body must be valid JSON"}))
		return
	}
	if err := s.registry.Join(req); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleListParticipants(w http.ResponseWriter, r *http.Request) {
	participants, err := s.registry.List()
	if err != nil {
		s.writeError(w, err)
		return
	}
	body := lo.Map(participants, func(p domain.Participant, _ int) participantJSON {
		return participantJSON{Name: p.Name, LastStatus: p.LastStatus.UnixMilli()}
	})
	if body == nil {
		body = []participantJSON{}
	}
	s.writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	from := r.Header.Get(IdentityHeader)

	var req validation.SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.NewValidationError([]string{"request body must be valid JSON"}))
		return
	}
	if err := s.router.Send(from, req); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	reader := r.Header.Get(IdentityHeader)

	query, violations := validation.ParseFetchQuery(r.URL.Query().Get("limit"))
	if violations != nil {
		s.writeError(w, errors.NewValidationError(violations))
		return
	}

	messages, err := s.router.Fetch(reader, query.Limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	body := lo.Map(messages, func(m domain.Message, _ int) messageJSON {
		return messageJSON{
			From: m.From,
			To:   m.To,
			Text: m.Text,
			Type: string(m.Type),
			// Display form only; ordering never relies on this string.
			Time: m.At.Format("15:04:05"),
		}
	})
	if body == nil {
		body = []messageJSON{}
	}
	s.writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	name := r.Header.Get(IdentityHeader)
	if err := s.registry.Heartbeat(name); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("response encoding failed", "error", err)
	}
}

// writeError maps the error taxonomy to its status code. Validation
// failures carry the full ordered violation list as a JSON array; every
// other failure is a plain error string.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "error", err)
	}

	var validationErr *errors.ValidationError
	if stderrors.As(err, &validationErr) {
		s.writeJSON(w, status, validationErr.Violations)
		return
	}
	http.Error(w, err.Error(), status)
}
