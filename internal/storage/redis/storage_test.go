package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/benmooo/ll-xq/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
	now     time.Time
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.ResultTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
	s.now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) result(id string, endedAt time.Time) *model.GameResult {
	return &model.GameResult{
		RoomID: model.RoomID(id),
		Players: []model.SeatedPlayer{
			{Name: "Alice", Side: model.SideRed},
			{Name: "Bob", Side: model.SideBlack},
		},
		Winner:   model.WinnerDraw,
		Reason:   model.ReasonDraw,
		FinalFEN: "fen",
		Moves:    120,
		EndedAt:  endedAt,
	}
}

func (s *StorageSuite) TestSaveAndGetResult() {
	err := s.storage.SaveResult(s.ctx, s.result("room-1", s.now))
	s.Require().NoError(err)

	got, err := s.storage.GetResult(s.ctx, "room-1")
	s.Require().NoError(err)
	s.Equal(model.RoomID("room-1"), got.RoomID)
	s.Equal(model.WinnerDraw, got.Winner)
	s.Equal(120, got.Moves)
	s.True(s.now.Equal(got.EndedAt))
}

func (s *StorageSuite) TestGetResultNotFound() {
	_, err := s.storage.GetResult(s.ctx, "missing")
	s.ErrorIs(err, model.ErrResultNotFound)
}

func (s *StorageSuite) TestResultHasTTL() {
	s.Require().NoError(s.storage.SaveResult(s.ctx, s.result("room-1", s.now)))

	ttl := s.mini.TTL(resultKey("room-1"))
	s.Equal(time.Hour, ttl)
}

func (s *StorageSuite) TestListResultsNewestFirst() {
	s.Require().NoError(s.storage.SaveResult(s.ctx, s.result("old", s.now)))
	s.Require().NoError(s.storage.SaveResult(s.ctx, s.result("new", s.now.Add(time.Hour))))
	s.Require().NoError(s.storage.SaveResult(s.ctx, s.result("mid", s.now.Add(time.Minute))))

	all, err := s.storage.ListResults(s.ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal(model.RoomID("new"), all[0].RoomID)
	s.Equal(model.RoomID("mid"), all[1].RoomID)
	s.Equal(model.RoomID("old"), all[2].RoomID)

	limited, err := s.storage.ListResults(s.ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(limited, 1)
	s.Equal(model.RoomID("new"), limited[0].RoomID)
}

func (s *StorageSuite) TestListResultsEmpty() {
	all, err := s.storage.ListResults(s.ctx, 10)
	s.Require().NoError(err)
	s.Empty(all)
}

func (s *StorageSuite) TestListResultsPrunesExpired() {
	s.Require().NoError(s.storage.SaveResult(s.ctx, s.result("room-1", s.now)))
	s.mini.FastForward(2 * time.Hour)
	s.Require().NoError(s.storage.SaveResult(s.ctx, s.result("room-2", s.now.Add(3*time.Hour))))

	all, err := s.storage.ListResults(s.ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(all, 1)
	s.Equal(model.RoomID("room-2"), all[0].RoomID)

	members, err := s.mini.ZMembers(resultsIndexKey())
	s.Require().NoError(err)
	s.Equal([]string{"room-2"}, members)
}
