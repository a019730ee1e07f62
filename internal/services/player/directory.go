package player

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/example/gamehub/internal/dependencies/clock"
	"github.com/example/gamehub/internal/model"
	"github.com/example/gamehub/internal/storage"
)

// Directory is the keyed store of player identity records: lookup, creation
// with username uniqueness, and credential validation.
type Directory struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new player directory
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Directory {
	return &Directory{
		storage: storage,
		clock:   clock,
		logger:  logger.With(slog.String("component", "player_directory")),
	}
}

// GetByID retrieves a player by id
func (d *Directory) GetByID(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return d.storage.GetPlayer(ctx, id)
}

// GetByUsername retrieves a player by username
func (d *Directory) GetByUsername(ctx context.Context, username string) (*model.Player, error) {
	return d.storage.GetPlayerByUsername(ctx, username)
}

// Create registers a new player with a hashed credential. The existence
// check here is a fast path; the storage layer's username index, written in
// the same critical section as the record, is the source of truth.
func (d *Directory) Create(ctx context.Context, username, password string) (*model.Player, error) {
	if username == "" || len(username) > model.MaxUsernameLength {
		return nil, model.ErrInvalidUsername
	}

	_, err := d.storage.GetPlayerByUsername(ctx, username)
	if err == nil {
		return nil, model.ErrUsernameTaken
	}
	if !errors.Is(err, model.ErrPlayerNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := d.clock.Now()
	player := &model.Player{
		ID:           model.PlayerID(generateID("p_")),
		Username:     username,
		PasswordHash: string(hash),
		Level:        1,
		CreatedAt:    now,
		LastLoginAt:  now,
	}

	if err := d.storage.SavePlayer(ctx, player); err != nil {
		d.logger.Error("failed to save player",
			slog.String("player_id", string(player.ID)),
			slog.String("error", err.Error()))
		return nil, err
	}

	d.logger.Info("player created",
		slog.String("player_id", string(player.ID)),
		slog.String("username", username))
	return player, nil
}

// Update replaces the stored player record (last write wins)
func (d *Directory) Update(ctx context.Context, player *model.Player) error {
	if _, err := d.storage.GetPlayer(ctx, player.ID); err != nil {
		return err
	}
	return d.storage.SavePlayer(ctx, player)
}

// Touch stamps the player's last-login time. Called on every login.
func (d *Directory) Touch(ctx context.Context, id model.PlayerID) error {
	player, err := d.storage.GetPlayer(ctx, id)
	if err != nil {
		return err
	}
	player.LastLoginAt = d.clock.Now()
	return d.storage.SavePlayer(ctx, player)
}

// ValidateCredentials checks a username/password pair against the stored
// hash. A missing player reports false, not an error; storage failures
// propagate.
func (d *Directory) ValidateCredentials(ctx context.Context, username, password string) (bool, error) {
	player, err := d.storage.GetPlayerByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return false, nil
		}
		return false, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(player.PasswordHash), []byte(password)); err != nil {
		return false, nil
	}
	return true, nil
}

// generateID generates a random ID with a prefix
func generateID(prefix string) string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return prefix + base64.RawURLEncoding.EncodeToString(b)
}
