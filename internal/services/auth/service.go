package auth

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/example/gamehub/internal/dependencies/clock"
	"github.com/example/gamehub/internal/dependencies/random"
	"github.com/example/gamehub/internal/model"
	"github.com/example/gamehub/internal/services/player"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// Token value generation
const (
	tokenLength   = 32
	tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// Token is an authenticated session token with its bound player
type Token struct {
	Value     string
	PlayerID  model.PlayerID
	Player    model.Player
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Config holds configuration for the auth service
type Config struct {
	TokenDuration time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		TokenDuration: 24 * time.Hour,
	}
}

// Service issues and validates session tokens on top of the player
// directory. Tokens live in memory; a restart logs everyone out, which is
// acceptable for connection-scoped sessions.
type Service struct {
	directory *player.Directory
	clock     clock.Clock
	random    random.Random
	logger    *slog.Logger

	mu     sync.RWMutex
	tokens map[string]*Token

	tokenDuration time.Duration
}

// New creates a new auth service
func New(directory *player.Directory, clock clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) *Service {
	if cfg.TokenDuration == 0 {
		cfg.TokenDuration = DefaultConfig().TokenDuration
	}
	return &Service{
		directory:     directory,
		clock:         clock,
		random:        rnd,
		logger:        logger.With(slog.String("component", "auth")),
		tokens:        make(map[string]*Token),
		tokenDuration: cfg.TokenDuration,
	}
}

// Register creates a player account and issues a token
func (s *Service) Register(ctx context.Context, username, password string) (*Token, error) {
	p, err := s.directory.Create(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return s.issue(p), nil
}

// Login validates credentials, stamps the login time, and issues a token
func (s *Service) Login(ctx context.Context, username, password string) (*Token, error) {
	ok, err := s.directory.ValidateCredentials(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	p, err := s.directory.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if err := s.directory.Touch(ctx, p.ID); err != nil {
		return nil, err
	}
	p, err = s.directory.GetByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("player logged in", slog.String("player_id", string(p.ID)))
	return s.issue(p), nil
}

// Validate checks a token and returns its session if still valid
func (s *Service) Validate(value string) (*Token, error) {
	s.mu.RLock()
	token, ok := s.tokens[value]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrInvalidToken
	}

	if s.clock.Now().After(token.ExpiresAt) {
		s.mu.Lock()
		delete(s.tokens, value)
		s.mu.Unlock()
		return nil, ErrInvalidToken
	}

	return token, nil
}

// Logout invalidates a token
func (s *Service) Logout(value string) {
	s.mu.Lock()
	delete(s.tokens, value)
	s.mu.Unlock()
}

// GetPlayer returns the player bound to a token
func (s *Service) GetPlayer(value string) (*model.Player, error) {
	token, err := s.Validate(value)
	if err != nil {
		return nil, err
	}
	return &token.Player, nil
}

// CleanExpiredTokens removes expired tokens (call periodically)
func (s *Service) CleanExpiredTokens() {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	for value, token := range s.tokens {
		if now.After(token.ExpiresAt) {
			delete(s.tokens, value)
		}
	}
}

func (s *Service) issue(p *model.Player) *Token {
	now := s.clock.Now()

	token := &Token{
		Value:     "tok_" + s.random.String(tokenLength, tokenAlphabet),
		PlayerID:  p.ID,
		Player:    *p,
		CreatedAt: now,
		ExpiresAt: now.Add(s.tokenDuration),
	}

	s.mu.Lock()
	s.tokens[token.Value] = token
	s.mu.Unlock()

	return token
}
