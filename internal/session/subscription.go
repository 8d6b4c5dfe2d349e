package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/benmooo/ll-xq/internal/model"
	"github.com/benmooo/ll-xq/internal/services/room"
)

var (
	// ErrRoomClosed ends a subscription whose room was destroyed
	ErrRoomClosed = errors.New("room closed")
	// ErrSlowConsumer ends a subscription whose event queue overflowed
	ErrSlowConsumer = errors.New("subscriber fell behind")
)

// Subscription is a live feed of a room's events for one player.
// Events is never closed; select on Done to learn when the feed ends.
type Subscription struct {
	RoomID   model.RoomID
	PlayerID model.PlayerID

	events chan model.RoomEvent
	done   chan struct{}

	overflow     chan struct{}
	overflowOnce sync.Once
	closing      chan struct{}
	closeOnce    sync.Once

	mu  sync.Mutex
	err error
}

// Events returns the queue of delivered events
func (s *Subscription) Events() <-chan model.RoomEvent {
	return s.events
}

// Done is closed once the subscription has ended and the player has been
// marked offline
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Err reports why the subscription ended: nil after Close, the context's
// error on cancellation, ErrRoomClosed or ErrSlowConsumer. It is nil while
// the subscription is live.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close ends the subscription and waits for cleanup. Safe to call more than once.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() { close(s.closing) })
	<-s.done
}

// deliver runs on the publisher's goroutine and never blocks
func (s *Subscription) deliver(e model.RoomEvent) {
	select {
	case s.events <- e:
	default:
		s.overflowOnce.Do(func() { close(s.overflow) })
	}
}

// Subscribe starts a live feed of roomID's events for playerID and marks the
// player online. The feed ends when ctx is cancelled, Close is called, the
// room is destroyed or the subscriber falls behind. The player goes offline
// once their last open feed has ended.
func (h *Handler) Subscribe(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) (*Subscription, error) {
	sub := &Subscription{
		RoomID:   roomID,
		PlayerID: playerID,
		events:   make(chan model.RoomEvent, h.buffer),
		done:     make(chan struct{}),
		overflow: make(chan struct{}),
		closing:  make(chan struct{}),
	}

	// Register before validating so a room destroyed afterwards still ends the feed
	busSub := h.bus.Subscribe(room.Topic(roomID), sub.deliver)
	if err := h.rooms.MarkOnline(ctx, roomID, playerID); err != nil {
		busSub.Unsubscribe()
		return nil, err
	}

	h.logger.Info("subscription started",
		slog.String("room_id", string(roomID)),
		slog.String("player_id", string(playerID)))

	go func() {
		var err error
		select {
		case <-ctx.Done():
			err = ctx.Err()
		case <-sub.closing:
		case <-sub.overflow:
			err = ErrSlowConsumer
		case <-busSub.Done():
			err = ErrRoomClosed
		}

		busSub.Unsubscribe()
		if !errors.Is(err, ErrRoomClosed) {
			if offErr := h.rooms.MarkOffline(context.WithoutCancel(ctx), roomID, playerID); offErr != nil {
				h.logger.Debug("mark offline after subscription",
					slog.String("room_id", string(roomID)),
					slog.String("error", offErr.Error()))
			}
		}

		attrs := []any{
			slog.String("room_id", string(roomID)),
			slog.String("player_id", string(playerID)),
		}
		if err != nil {
			attrs = append(attrs, slog.String("reason", err.Error()))
		}
		if errors.Is(err, ErrSlowConsumer) {
			h.logger.Warn("subscription dropped", attrs...)
		} else {
			h.logger.Info("subscription ended", attrs...)
		}

		sub.mu.Lock()
		sub.err = err
		sub.mu.Unlock()
		close(sub.done)
	}()

	return sub, nil
}
