package services

import (
	"batepapo/domain"
	"batepapo/errors"
	"batepapo/repositories"
	"batepapo/validation"
	"log/slog"
)

type IRegistryService interface {
	Join(req validation.JoinRequest) error
	Heartbeat(name string) error
	List() ([]domain.Participant, error)
	Evict(name string) error
}

// RegistryService owns participant identity: join, heartbeat, eviction.
type RegistryService struct {
	participants repositories.IParticipantRepository
	router       IRouterService
	clock        domain.Clock
	log          *slog.Logger
}

func NewRegistryService(
	participants repositories.IParticipantRepository,
	router IRouterService,
	clock domain.Clock,
	log *slog.Logger,
) *RegistryService {
	return &RegistryService{
		participants: participants,
		router:       router,
		clock:        clock,
		log:          log,
	}
}

// Join registers a new participant and broadcasts the join notice.
func (s *RegistryService) Join(req validation.JoinRequest) error {
	// 1. Schema first: no store mutation on malformed input.
	if violations := validation.Check(req); violations != nil {
		return errors.NewValidationError(violations)
	}

	// 2. Conditional insert; the repository rejects duplicates atomically.
	participant := domain.Participant{
		Name:       req.Name,
		LastStatus: s.clock.Now(),
	}
	if _, err := s.participants.Create(participant); err != nil {
		return err
	}

	// 3. Broadcast the join notice.
	if err := s.router.EmitStatus(req.Name, domain.JoinedRoomText); err != nil {
		return err
	}
	s.log.Info("participant joined", "name", req.Name)
	return nil
}

// Heartbeat refreshes the participant's LastStatus. The name comes from the
// caller's identity header, never from a request body.
func (s *RegistryService) Heartbeat(name string) error {
	if name == "" {
		return errors.ErrMissingIdentity
	}
	return s.participants.Touch(name, s.clock.Now())
}

func (s *RegistryService) List() ([]domain.Participant, error) {
	return s.participants.List()
}

// Evict removes the participant record. Reaper-only: the caller is
// responsible for emitting the departure notice through the router.
func (s *RegistryService) Evict(name string) error {
	return s.participants.Delete(name)
}
