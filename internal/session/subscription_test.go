package session

import (
	"context"
	"time"

	"github.com/benmooo/ll-xq/internal/model"
	"github.com/benmooo/ll-xq/internal/services/room"
)

func (s *HandlerSuite) waitDone(sub *Subscription) {
	select {
	case <-sub.Done():
	case <-time.After(time.Second):
		s.FailNow("subscription did not end")
	}
}

func (s *HandlerSuite) next(sub *Subscription) model.RoomEvent {
	select {
	case e := <-sub.Events():
		return e
	case <-time.After(time.Second):
		s.FailNow("no event delivered")
		return nil
	}
}

func (s *HandlerSuite) online(id model.RoomID, side model.Side) bool {
	r, err := s.rooms.GetRoom(s.ctx, id)
	s.Require().NoError(err)
	for _, p := range r.Players {
		if p.Side == side {
			return p.Online
		}
	}
	s.FailNow("no player seated on " + string(side))
	return false
}

func (s *HandlerSuite) TestSubscribeDeliversEventsInOrder() {
	id := s.createRoom()
	alice := s.join(id, "Alice")

	sub, err := s.handler.Subscribe(s.ctx, id, alice.ID)
	s.Require().NoError(err)
	defer sub.Close()

	s.join(id, "Bob")

	s.Equal(model.EventJoinSuccess, s.next(sub).EventType())
	s.Equal(model.EventGameStart, s.next(sub).EventType())

	s.Require().True(s.handler.Move(s.ctx, id, alice.ID, "h2", "e2").Success)
	moved, ok := s.next(sub).(model.MoveMade)
	s.Require().True(ok)
	s.Equal("e2", moved.To)
}

func (s *HandlerSuite) TestSubscribeValidatesRoomAndPlayer() {
	id := s.createRoom()
	s.join(id, "Alice")

	_, err := s.handler.Subscribe(s.ctx, "missing", "p")
	s.ErrorIs(err, model.ErrRoomNotFound)

	_, err = s.handler.Subscribe(s.ctx, id, "stranger")
	s.ErrorIs(err, model.ErrPlayerNotFound)
	s.Zero(s.bus.SubscriberCount(room.Topic(id)))
}

func (s *HandlerSuite) TestCloseMarksPlayerOffline() {
	id := s.createRoom()
	alice := s.join(id, "Alice")
	s.Require().NoError(s.rooms.MarkOffline(s.ctx, id, alice.ID))

	sub, err := s.handler.Subscribe(s.ctx, id, alice.ID)
	s.Require().NoError(err)
	s.True(s.online(id, model.SideRed))

	sub.Close()
	sub.Close()

	s.NoError(sub.Err())
	s.False(s.online(id, model.SideRed))
	s.Zero(s.bus.SubscriberCount(room.Topic(id)))
}

func (s *HandlerSuite) TestOverlappingSubscriptionsKeepPlayerOnline() {
	id := s.createRoom()
	alice := s.join(id, "Alice")

	stale, err := s.handler.Subscribe(s.ctx, id, alice.ID)
	s.Require().NoError(err)
	fresh, err := s.handler.Subscribe(s.ctx, id, alice.ID)
	s.Require().NoError(err)

	stale.Close()
	s.waitDone(stale)
	s.True(s.online(id, model.SideRed))

	fresh.Close()
	s.waitDone(fresh)
	s.False(s.online(id, model.SideRed))
}

func (s *HandlerSuite) TestCancelledContextEndsSubscription() {
	id := s.createRoom()
	alice := s.join(id, "Alice")

	ctx, cancel := context.WithCancel(s.ctx)
	sub, err := s.handler.Subscribe(ctx, id, alice.ID)
	s.Require().NoError(err)

	cancel()
	s.waitDone(sub)

	s.ErrorIs(sub.Err(), context.Canceled)
	s.False(s.online(id, model.SideRed))
}

func (s *HandlerSuite) TestDestroyedRoomEndsSubscription() {
	id := s.createRoom()
	alice := s.join(id, "Alice")

	sub, err := s.handler.Subscribe(s.ctx, id, alice.ID)
	s.Require().NoError(err)

	// the player must look abandoned for the sweep to reclaim the room
	s.Require().NoError(s.rooms.MarkOffline(s.ctx, id, alice.ID))
	s.clock.Advance(121 * time.Second)
	s.Equal([]model.RoomID{id}, s.rooms.Sweep(s.ctx).Destroyed)

	s.waitDone(sub)
	s.ErrorIs(sub.Err(), ErrRoomClosed)
}

func (s *HandlerSuite) TestSlowConsumerIsDropped() {
	id := s.createRoom()
	alice := s.join(id, "Alice")

	sub, err := s.handler.Subscribe(s.ctx, id, alice.ID)
	s.Require().NoError(err)

	// the handler was built with a queue of four events
	for i := 0; i < 5; i++ {
		s.bus.Publish(room.Topic(id), model.JoinError{Reason: "noise"})
	}

	s.waitDone(sub)
	s.ErrorIs(sub.Err(), ErrSlowConsumer)
	s.False(s.online(id, model.SideRed))
	s.Len(sub.Events(), 4)
}
