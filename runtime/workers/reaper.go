package workers

import (
	"batepapo/domain"
	"batepapo/services"
	"context"
	"log/slog"
	"time"

	"github.com/samber/lo"
)

// ReaperWorker periodically evicts participants whose last heartbeat is
// older than the staleness threshold and broadcasts their departure.
// Stateless between sweeps; all state lives in the store.
type ReaperWorker struct {
	registry  services.IRegistryService
	router    services.IRouterService
	clock     domain.Clock
	period    time.Duration
	threshold time.Duration
	log       *slog.Logger
}

func NewReaperWorker(
	registry services.IRegistryService,
	router services.IRouterService,
	clock domain.Clock,
	period time.Duration,
	threshold time.Duration,
	log *slog.Logger,
) *ReaperWorker {
	return &ReaperWorker{
		registry:  registry,
		router:    router,
		clock:     clock,
		period:    period,
		threshold: threshold,
		log:       log,
	}
}

func (w *ReaperWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping reaper")
			return ctx.Err()
		case <-ticker.C:
			w.Sweep()
		}
	}
}

// Sweep snapshots the participant set and evicts every stale entry.
// Each eviction is an independent unit of work: a failure for one
// participant is logged and never aborts the rest of the sweep.
func (w *ReaperWorker) Sweep() {
	participants, err := w.registry.List()
	if err != nil {
		w.log.Error("Sweep aborted, cannot list participants", "error", err)
		return
	}

	now := w.clock.Now()
	stale := lo.Filter(participants, func(p domain.Participant, _ int) bool {
		return p.Stale(now, w.threshold)
	})

	for _, participant := range stale {
		w.evict(participant)
	}
	if len(stale) > 0 {
		w.log.Info("Sweep evicted stale participants", "count", len(stale))
	}
}

// evict emits the departure notice first, then deletes the record.
// If the delete fails after the notice was written, the next sweep simply
// re-observes the participant: at-least-once notice, best effort.
func (w *ReaperWorker) evict(participant domain.Participant) {
	if err := w.router.EmitStatus(participant.Name, domain.LeftRoomText); err != nil {
		w.log.Error("Failed to emit departure notice", "name", participant.Name, "error", err)
		return
	}
	if err := w.registry.Evict(participant.Name); err != nil {
		w.log.Error("Failed to evict participant", "name", participant.Name, "error", err)
	}
}
