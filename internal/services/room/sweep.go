package room

import (
	"context"
	"log/slog"

	"github.com/benmooo/ll-xq/internal/model"
)

// SweepResult reports what a sweep changed
type SweepResult struct {
	MarkedOffline int
	Destroyed     []model.RoomID
}

// Sweep marks silent players offline and destroys rooms whose players have
// all been offline and idle for longer than the destroy delay. Each room is
// examined under its own lock, so a sweep never interleaves with a live
// operation on the same room. Destroying a room closes its topic, which ends
// every subscription to it.
func (m *Manager) Sweep(ctx context.Context) SweepResult {
	now := m.clock.Now()
	var result SweepResult

	for _, r := range m.allRooms() {
		r.mu.Lock()
		if r.deleted {
			r.mu.Unlock()
			continue
		}

		for _, p := range r.players {
			if p.online && now.Sub(p.lastActiveAt) > m.cfg.PresenceTimeout {
				p.online = false
				result.MarkedOffline++
				m.logger.Info("player timed out",
					slog.String("room_id", string(r.id)),
					slog.String("player_id", string(p.id)),
					slog.Duration("idle", now.Sub(p.lastActiveAt)))
			}
		}

		if r.idle(now, m.cfg.DestroyDelay) {
			r.deleted = true
			result.Destroyed = append(result.Destroyed, r.id)
		}
		r.mu.Unlock()
	}

	if len(result.Destroyed) > 0 {
		m.mu.Lock()
		for _, id := range result.Destroyed {
			delete(m.rooms, id)
		}
		remaining := len(m.rooms)
		m.mu.Unlock()

		for _, id := range result.Destroyed {
			m.bus.CloseTopic(Topic(id))
			m.logger.Info("room destroyed", slog.String("room_id", string(id)))
		}
		m.logger.Info("sweep destroyed rooms",
			slog.Int("destroyed", len(result.Destroyed)),
			slog.Int("remaining", remaining))
	}

	return result
}

// Run sweeps every SweepInterval until ctx is cancelled
func (m *Manager) Run(ctx context.Context) {
	ticker := m.clock.NewTicker(m.cfg.SweepInterval)
	defer ticker.Stop()

	m.logger.Info("room sweeper started",
		slog.Duration("interval", m.cfg.SweepInterval),
		slog.Duration("presence_timeout", m.cfg.PresenceTimeout),
		slog.Duration("destroy_delay", m.cfg.DestroyDelay))

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("room sweeper stopped")
			return
		case <-ticker.C():
			m.Sweep(ctx)
		}
	}
}
