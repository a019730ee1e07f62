package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPlayerCharacterScalesWithLevel(t *testing.T) {
	c := NewPlayerCharacter("p1", "hero", 5)

	assert.Equal(t, 140, c.Stats.MaxHealth)
	assert.Equal(t, 70, c.Stats.MaxMana)
	assert.Equal(t, 18, c.Stats.Attack)
	assert.Equal(t, 9, c.Stats.Defense)
	assert.Equal(t, c.Stats.MaxHealth, c.Stats.Health)
	assert.Equal(t, c.Stats.MaxMana, c.Stats.Mana)
}

func TestNewPlayerCharacterCoercesLevel(t *testing.T) {
	c := NewPlayerCharacter("p1", "hero", 0)
	assert.Equal(t, 1, c.Stats.Level)
	assert.Equal(t, 100, c.Stats.MaxHealth)
}

func TestTakeDamageMitigatedByDefense(t *testing.T) {
	c := NewPlayerCharacter("p1", "hero", 1) // 100 HP, 5 defense

	alive := c.TakeDamage(25)
	assert.True(t, alive)
	assert.Equal(t, 80, c.Stats.Health)

	// Damage below defense is absorbed entirely
	c.TakeDamage(3)
	assert.Equal(t, 80, c.Stats.Health)
}

func TestTakeDamageClampsAtZero(t *testing.T) {
	c := NewPlayerCharacter("p1", "hero", 1)

	alive := c.TakeDamage(1000)
	assert.False(t, alive)
	assert.Equal(t, 0, c.Stats.Health)

	// Already dead, stays at zero
	assert.False(t, c.TakeDamage(10))
	assert.Equal(t, 0, c.Stats.Health)
}

func TestHealClampsAtMax(t *testing.T) {
	c := NewPlayerCharacter("p1", "hero", 1)
	c.TakeDamage(25)

	c.Heal(1000)
	assert.Equal(t, c.Stats.MaxHealth, c.Stats.Health)

	c.Heal(-5)
	assert.Equal(t, c.Stats.MaxHealth, c.Stats.Health)
}

func TestSpendManaRequiresBalance(t *testing.T) {
	c := NewPlayerCharacter("p1", "hero", 1) // 50 mana

	assert.True(t, c.SpendMana(30))
	assert.Equal(t, 20, c.Stats.Mana)

	assert.False(t, c.SpendMana(21))
	assert.Equal(t, 20, c.Stats.Mana)

	assert.False(t, c.SpendMana(-1))
}

func TestRestoreManaClampsAtMax(t *testing.T) {
	c := NewPlayerCharacter("p1", "hero", 1)
	c.SpendMana(40)

	c.RestoreMana(1000)
	assert.Equal(t, c.Stats.MaxMana, c.Stats.Mana)
}

func TestCloneIsIndependent(t *testing.T) {
	c := NewPlayerCharacter("p1", "hero", 1)
	clone := c.Clone()

	clone.Name = "impostor"
	clone.TakeDamage(50)

	assert.Equal(t, "hero", c.Name)
	assert.Equal(t, c.Stats.MaxHealth, c.Stats.Health)
}
