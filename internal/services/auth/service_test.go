package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/example/gamehub/internal/dependencies/mocks"
	"github.com/example/gamehub/internal/dependencies/random"
	"github.com/example/gamehub/internal/model"
	"github.com/example/gamehub/internal/services/player"
	"github.com/example/gamehub/internal/storage/memory"
	"github.com/example/gamehub/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	logger := testutil.NopLogger()
	directory := player.New(memory.New(), s.clock, logger)
	s.service = New(directory, s.clock, random.New(), DefaultConfig(), logger)
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestRegisterIssuesToken() {
	token, err := s.service.Register(s.ctx, "alice", "hunter2")
	s.Require().NoError(err)

	s.NotEmpty(token.Value)
	s.Equal("alice", token.Player.Username)
	s.Equal(token.Player.ID, token.PlayerID)
}

func (s *ServiceSuite) TestRegisterDuplicateUsernameFails() {
	_, err := s.service.Register(s.ctx, "alice", "hunter2")
	s.Require().NoError(err)

	_, err = s.service.Register(s.ctx, "alice", "other")
	s.ErrorIs(err, model.ErrUsernameTaken)
}

func (s *ServiceSuite) TestLoginSucceeds() {
	_, err := s.service.Register(s.ctx, "alice", "hunter2")
	s.Require().NoError(err)

	s.clock.Advance(time.Hour)
	token, err := s.service.Login(s.ctx, "alice", "hunter2")
	s.Require().NoError(err)
	s.Equal(s.clock.Now(), token.Player.LastLoginAt)
}

func (s *ServiceSuite) TestConcurrentLoginsSameAccount() {
	_, err := s.service.Register(s.ctx, "alice", "hunter2")
	s.Require().NoError(err)

	const logins = 8
	tokens := make([]*Token, logins)
	var wg sync.WaitGroup
	for i := 0; i < logins; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			token, err := s.service.Login(s.ctx, "alice", "hunter2")
			s.NoError(err)
			tokens[i] = token
		}(i)
	}
	wg.Wait()

	for _, token := range tokens {
		s.Require().NotNil(token)
		_, err := s.service.Validate(token.Value)
		s.NoError(err)
	}
}

func (s *ServiceSuite) TestLoginRejectsBadPassword() {
	_, _ = s.service.Register(s.ctx, "alice", "hunter2")

	_, err := s.service.Login(s.ctx, "alice", "wrong")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginRejectsUnknownUser() {
	_, err := s.service.Login(s.ctx, "nobody", "hunter2")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestValidateAcceptsLiveToken() {
	issued, _ := s.service.Register(s.ctx, "alice", "hunter2")

	token, err := s.service.Validate(issued.Value)
	s.Require().NoError(err)
	s.Equal(issued.PlayerID, token.PlayerID)
}

func (s *ServiceSuite) TestValidateRejectsExpiredToken() {
	issued, _ := s.service.Register(s.ctx, "alice", "hunter2")

	s.clock.Advance(25 * time.Hour)
	_, err := s.service.Validate(issued.Value)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestValidateRejectsUnknownToken() {
	_, err := s.service.Validate("tok_bogus")
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestLogoutInvalidatesToken() {
	issued, _ := s.service.Register(s.ctx, "alice", "hunter2")

	s.service.Logout(issued.Value)

	_, err := s.service.Validate(issued.Value)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestCleanExpiredTokens() {
	old, _ := s.service.Register(s.ctx, "alice", "hunter2")
	s.clock.Advance(25 * time.Hour)
	fresh, _ := s.service.Register(s.ctx, "bob", "hunter2")

	s.service.CleanExpiredTokens()

	_, err := s.service.Validate(old.Value)
	s.ErrorIs(err, ErrInvalidToken)
	_, err = s.service.Validate(fresh.Value)
	s.NoError(err)
}
