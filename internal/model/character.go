package model

// CharacterID uniquely identifies a character within a room
type CharacterID string

// Vector3 is a 3D coordinate triple
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Transform holds a character's spatial state
type Transform struct {
	Position Vector3 `json:"position"`
	Rotation Vector3 `json:"rotation"`
	Scale    Vector3 `json:"scale"`
}

// DefaultTransform returns a transform at the origin with unit scale
func DefaultTransform() Transform {
	return Transform{
		Scale: Vector3{X: 1, Y: 1, Z: 1},
	}
}

// Stats holds a character's combat attributes.
// Health and Mana are only mutated through the clamping methods on
// PlayerCharacter so they can never leave their [0, max] ranges.
type Stats struct {
	Level     int `json:"level"`
	Health    int `json:"health"`
	MaxHealth int `json:"max_health"`
	Mana      int `json:"mana"`
	MaxMana   int `json:"max_mana"`
	Attack    int `json:"attack"`
	Defense   int `json:"defense"`
}

// PlayerCharacter is a player's in-room avatar. It exists only while the
// player occupies a room; it is built on join and discarded on leave.
type PlayerCharacter struct {
	ID        CharacterID `json:"id"`
	PlayerID  PlayerID    `json:"player_id"`
	Name      string      `json:"name"`
	Transform Transform   `json:"transform"`
	Stats     Stats       `json:"stats"`
}

// NewPlayerCharacter builds a character for a player entering a room,
// with stats scaled from the player's level.
func NewPlayerCharacter(playerID PlayerID, name string, level int) *PlayerCharacter {
	if level < 1 {
		level = 1
	}
	maxHealth := 100 + (level-1)*10
	maxMana := 50 + (level-1)*5
	return &PlayerCharacter{
		ID:        CharacterID(playerID),
		PlayerID:  playerID,
		Name:      name,
		Transform: DefaultTransform(),
		Stats: Stats{
			Level:     level,
			Health:    maxHealth,
			MaxHealth: maxHealth,
			Mana:      maxMana,
			MaxMana:   maxMana,
			Attack:    10 + (level-1)*2,
			Defense:   5 + (level - 1),
		},
	}
}

// TakeDamage reduces health by the given amount after defense, clamping at
// zero. Returns true if the character is still alive.
func (c *PlayerCharacter) TakeDamage(amount int) bool {
	if amount < 0 {
		amount = 0
	}
	effective := amount - c.Stats.Defense
	if effective < 0 {
		effective = 0
	}
	c.Stats.Health -= effective
	if c.Stats.Health < 0 {
		c.Stats.Health = 0
	}
	return c.Stats.Health > 0
}

// Heal restores health up to MaxHealth
func (c *PlayerCharacter) Heal(amount int) {
	if amount <= 0 {
		return
	}
	c.Stats.Health += amount
	if c.Stats.Health > c.Stats.MaxHealth {
		c.Stats.Health = c.Stats.MaxHealth
	}
}

// SpendMana deducts mana if available, returning false if insufficient
func (c *PlayerCharacter) SpendMana(amount int) bool {
	if amount < 0 {
		return false
	}
	if c.Stats.Mana < amount {
		return false
	}
	c.Stats.Mana -= amount
	return true
}

// RestoreMana restores mana up to MaxMana
func (c *PlayerCharacter) RestoreMana(amount int) {
	if amount <= 0 {
		return
	}
	c.Stats.Mana += amount
	if c.Stats.Mana > c.Stats.MaxMana {
		c.Stats.Mana = c.Stats.MaxMana
	}
}

// MoveTo sets the character's position
func (c *PlayerCharacter) MoveTo(pos Vector3) {
	c.Transform.Position = pos
}

// Rotate sets the character's rotation
func (c *PlayerCharacter) Rotate(rot Vector3) {
	c.Transform.Rotation = rot
}

// Clone returns a deep copy, so callers cannot alias live room state
func (c *PlayerCharacter) Clone() *PlayerCharacter {
	clone := *c
	return &clone
}
