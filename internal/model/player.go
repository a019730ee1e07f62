package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// MaxUsernameLength is the longest allowed username
const MaxUsernameLength = 50

// Player is an account record: identity plus progression state.
// PasswordHash is a bcrypt hash; the plaintext never leaves the auth layer.
type Player struct {
	ID           PlayerID
	Username     string // login username (immutable, unique)
	PasswordHash string
	Level        int
	Experience   int
	Currency     int
	CreatedAt    time.Time
	LastLoginAt  time.Time
}

// GainExperience adds experience, leveling up every ExperiencePerLevel points
func (p *Player) GainExperience(amount int) {
	if amount <= 0 {
		return
	}
	p.Experience += amount
	for p.Experience >= p.Level*ExperiencePerLevel {
		p.Experience -= p.Level * ExperiencePerLevel
		p.Level++
	}
}

// AddCurrency adjusts the player's currency, clamping at zero
func (p *Player) AddCurrency(amount int) {
	p.Currency += amount
	if p.Currency < 0 {
		p.Currency = 0
	}
}

// Clone returns an independent copy of the player record
func (p *Player) Clone() *Player {
	cp := *p
	return &cp
}

// ExperiencePerLevel is the per-level experience multiplier
const ExperiencePerLevel = 100
