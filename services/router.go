package services

import (
	"batepapo/domain"
	"batepapo/errors"
	"batepapo/repositories"
	"batepapo/validation"
	stderrors "errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IRouterService interface {
	Send(from string, req validation.SendRequest) error
	Fetch(reader string, limit *int) ([]domain.Message, error)
	EmitStatus(from, text string) error
}

// RouterService validates, stamps, and persists outgoing messages, and
// decides per-reader visibility on fetch.
type RouterService struct {
	participants repositories.IParticipantRepository
	messages     repositories.IMessageRepository
	clock        domain.Clock
	log          *slog.Logger
}

func NewRouterService(
	participants repositories.IParticipantRepository,
	messages repositories.IMessageRepository,
	clock domain.Clock,
	log *slog.Logger,
) *RouterService {
	return &RouterService{
		participants: participants,
		messages:     messages,
		clock:        clock,
		log:          log,
	}
}

// Send appends a message from a live participant.
//
// The status type is reserved for system events and is rejected by the
// schema here. Store failures surface to the caller untouched, no retry.
func (s *RouterService) Send(from string, req validation.SendRequest) error {
	// 1. Schema first: fail fast before touching the store.
	if violations := validation.Check(req); violations != nil {
		return errors.NewValidationError(violations)
	}

	// 2. Only live participants may send.
	if _, err := s.participants.Get(from); err != nil {
		if stderrors.Is(err, errors.ErrParticipantNotFound) {
			return errors.ErrUnknownSender
		}
		return err
	}

	// 3. Stamp and append.
	message := domain.Message{
		ID:   uuid.New(),
		From: from,
		To:   req.To,
		Text: req.Text,
		Type: domain.MessageType(req.Type),
		At:   s.clock.Now(),
	}
	if err := s.messages.Append(message); err != nil {
		return err
	}
	s.log.Debug("message routed", "from", from, "to", req.To, "type", req.Type)
	return nil
}

// Fetch returns the messages visible to reader, oldest first. A limit keeps
// only the most recent matches, truncating from the oldest end.
func (s *RouterService) Fetch(reader string, limit *int) ([]domain.Message, error) {
	all, err := s.messages.List()
	if err != nil {
		return nil, err
	}
	visible := lo.Filter(all, func(m domain.Message, _ int) bool {
		return m.VisibleTo(reader)
	})
	if limit != nil && len(visible) > *limit {
		visible = visible[len(visible)-*limit:]
	}
	return visible, nil
}

// EmitStatus appends a system-generated status message, bypassing the
// sender-liveness check: the departing participant is already gone when
// its departure notice is written.
func (s *RouterService) EmitStatus(from, text string) error {
	return s.messages.Append(domain.Message{
		ID:   uuid.New(),
		From: from,
		To:   domain.Broadcast,
		Text: text,
		Type: domain.TypeStatus,
		At:   s.clock.Now(),
	})
}
