package room

import (
	"context"
	"time"

	"github.com/benmooo/ll-xq/internal/model"
	"github.com/benmooo/ll-xq/internal/testutil"
)

func (s *ManagerSuite) TestSweepMarksSilentPlayersOffline() {
	id, alice, _ := s.seatTwo()

	// exactly at the timeout the player is still online
	s.clock.Advance(60 * time.Second)
	s.Equal(0, s.manager.Sweep(s.ctx).MarkedOffline)

	s.Require().NoError(s.manager.Ping(s.ctx, id, alice.ID))
	s.clock.Advance(time.Second)

	result := s.manager.Sweep(s.ctx)
	s.Equal(1, result.MarkedOffline)
	s.Empty(result.Destroyed)

	room, err := s.manager.GetRoom(s.ctx, id)
	s.Require().NoError(err)
	s.True(room.Players[0].Online)
	s.False(room.Players[1].Online)
}

func (s *ManagerSuite) TestSweepDestroysAbandonedRoom() {
	id, _, _ := s.seatTwo()
	sub := s.bus.Subscribe(Topic(id), func(model.RoomEvent) {})

	s.clock.Advance(61 * time.Second)
	result := s.manager.Sweep(s.ctx)
	s.Equal(2, result.MarkedOffline)
	s.Empty(result.Destroyed)

	room, err := s.manager.GetRoom(s.ctx, id)
	s.Require().NoError(err)
	s.Len(room.Players, 2)

	s.clock.Advance(60 * time.Second)
	result = s.manager.Sweep(s.ctx)
	s.Equal([]model.RoomID{id}, result.Destroyed)

	_, err = s.manager.GetRoom(s.ctx, id)
	s.ErrorIs(err, model.ErrRoomNotFound)
	_, err = s.manager.JoinRoom(s.ctx, id, "Carol", "")
	s.ErrorIs(err, model.ErrRoomNotFound)

	select {
	case <-sub.Done():
	default:
		s.Fail("destroying a room should end its subscriptions")
	}
	s.Zero(s.bus.SubscriberCount(Topic(id)))
}

func (s *ManagerSuite) TestSweepKeepsRoomWithOnlinePlayer() {
	id, alice, bob := s.seatTwo()
	s.Require().NoError(s.manager.MarkOffline(s.ctx, id, bob.ID))

	for i := 0; i < 10; i++ {
		s.clock.Advance(30 * time.Second)
		s.Require().NoError(s.manager.Ping(s.ctx, id, alice.ID))
		s.Empty(s.manager.Sweep(s.ctx).Destroyed)
	}

	room, err := s.manager.GetRoom(s.ctx, id)
	s.Require().NoError(err)
	s.Len(room.Players, 2)
}

func (s *ManagerSuite) TestSweepKeepsRecentlyActiveOfflinePlayer() {
	id, alice, bob := s.seatTwo()
	s.Require().NoError(s.manager.MarkOffline(s.ctx, id, alice.ID))
	s.Require().NoError(s.manager.MarkOffline(s.ctx, id, bob.ID))

	s.clock.Advance(100 * time.Second)
	s.Require().NoError(s.manager.Ping(s.ctx, id, bob.ID))
	s.Require().NoError(s.manager.MarkOffline(s.ctx, id, bob.ID))

	// Alice has been idle past the delay but Bob has not
	s.clock.Advance(30 * time.Second)
	s.Empty(s.manager.Sweep(s.ctx).Destroyed)

	s.clock.Advance(91 * time.Second)
	s.Equal([]model.RoomID{id}, s.manager.Sweep(s.ctx).Destroyed)
}

func (s *ManagerSuite) TestSweepDestroysEmptyRoom() {
	id := s.createRoom()

	s.clock.Advance(120 * time.Second)
	s.Empty(s.manager.Sweep(s.ctx).Destroyed)

	s.clock.Advance(time.Second)
	s.Equal([]model.RoomID{id}, s.manager.Sweep(s.ctx).Destroyed)
	s.Empty(s.manager.ListRooms(s.ctx))
}

func (s *ManagerSuite) TestSweepLogsDestroyedRooms() {
	logger, logs := testutil.CaptureLogger()
	s.manager = NewManager(s.nextEngine, s.bus, s.archive, s.clock, s.ids, DefaultConfig(), logger)

	s.ids.Queue("room-quiet")
	s.createRoom()
	s.clock.Advance(121 * time.Second)
	s.manager.Sweep(s.ctx)

	s.Contains(logs.String(), "room destroyed")
	s.Contains(logs.String(), "room-quiet")
}

func (s *ManagerSuite) TestRunSweepsOnTicker() {
	id := s.createRoom()

	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.manager.Run(ctx)
	}()

	// keep advancing until the background sweep has removed the room
	s.Eventually(func() bool {
		s.clock.Advance(10 * time.Second)
		_, err := s.manager.GetRoom(s.ctx, id)
		return err != nil
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		s.Fail("Run should return once its context is cancelled")
	}
}
