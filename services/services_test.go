package services

import (
	"batepapo/repositories"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

// fakeClock makes presence decisions deterministic in tests.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type fixture struct {
	registry *RegistryService
	router   *RouterService
	clock    *fakeClock
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	req := require.New(t)

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	participants, err := repositories.NewParticipantRepository(db)
	req.NoError(err)
	t.Cleanup(func() { _ = participants.Close() })

	messages, err := repositories.NewMessageRepository(db)
	req.NoError(err)
	t.Cleanup(func() { _ = messages.Close() })

	clock := newFakeClock()
	log := slog.Default()
	router := NewRouterService(participants, messages, clock, log)
	registry := NewRegistryService(participants, router, clock, log)
	return fixture{registry: registry, router: router, clock: clock}
}
