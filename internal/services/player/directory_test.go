package player

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/example/gamehub/internal/dependencies/mocks"
	"github.com/example/gamehub/internal/model"
	"github.com/example/gamehub/internal/storage/memory"
	"github.com/example/gamehub/internal/testutil"
)

type DirectorySuite struct {
	suite.Suite
	storage   *memory.Storage
	clock     *mocks.MockClock
	directory *Directory
	ctx       context.Context
}

func TestDirectorySuite(t *testing.T) {
	suite.Run(t, new(DirectorySuite))
}

func (s *DirectorySuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.directory = New(s.storage, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *DirectorySuite) TestCreateSucceeds() {
	player, err := s.directory.Create(s.ctx, "alice", "hunter2")
	s.Require().NoError(err)

	s.NotEmpty(player.ID)
	s.Equal("alice", player.Username)
	s.Equal(1, player.Level)
	s.NotEqual("hunter2", player.PasswordHash)
	s.Equal(s.clock.Now(), player.CreatedAt)
}

func (s *DirectorySuite) TestCreateRejectsDuplicateUsername() {
	first, err := s.directory.Create(s.ctx, "alice", "hunter2")
	s.Require().NoError(err)

	_, err = s.directory.Create(s.ctx, "alice", "different")
	s.ErrorIs(err, model.ErrUsernameTaken)

	// Original record is untouched
	retrieved, err := s.directory.GetByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(first.ID, retrieved.ID)
	s.Equal(first.PasswordHash, retrieved.PasswordHash)
}

func (s *DirectorySuite) TestCreateRejectsInvalidUsername() {
	_, err := s.directory.Create(s.ctx, "", "hunter2")
	s.ErrorIs(err, model.ErrInvalidUsername)

	long := make([]byte, model.MaxUsernameLength+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = s.directory.Create(s.ctx, string(long), "hunter2")
	s.ErrorIs(err, model.ErrInvalidUsername)
}

func (s *DirectorySuite) TestGetByIDNotFound() {
	_, err := s.directory.GetByID(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *DirectorySuite) TestUpdatePersistsProgression() {
	player, _ := s.directory.Create(s.ctx, "alice", "hunter2")

	player.GainExperience(150)
	player.AddCurrency(42)
	err := s.directory.Update(s.ctx, player)
	s.Require().NoError(err)

	retrieved, _ := s.directory.GetByID(s.ctx, player.ID)
	s.Equal(2, retrieved.Level)
	s.Equal(50, retrieved.Experience)
	s.Equal(42, retrieved.Currency)
}

func (s *DirectorySuite) TestUpdateUnknownPlayerFails() {
	err := s.directory.Update(s.ctx, &model.Player{ID: "ghost", Username: "ghost"})
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *DirectorySuite) TestTouchStampsLastLogin() {
	player, _ := s.directory.Create(s.ctx, "alice", "hunter2")

	s.clock.Advance(time.Hour)
	err := s.directory.Touch(s.ctx, player.ID)
	s.Require().NoError(err)

	retrieved, _ := s.directory.GetByID(s.ctx, player.ID)
	s.Equal(s.clock.Now(), retrieved.LastLoginAt)
}

func (s *DirectorySuite) TestValidateCredentials() {
	_, err := s.directory.Create(s.ctx, "alice", "hunter2")
	s.Require().NoError(err)

	ok, err := s.directory.ValidateCredentials(s.ctx, "alice", "hunter2")
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.directory.ValidateCredentials(s.ctx, "alice", "wrong")
	s.Require().NoError(err)
	s.False(ok)

	ok, err = s.directory.ValidateCredentials(s.ctx, "nobody", "hunter2")
	s.Require().NoError(err)
	s.False(ok)
}
