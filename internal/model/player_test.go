package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGainExperienceLevelsUp(t *testing.T) {
	p := &Player{Level: 1}

	p.GainExperience(250)
	// 100 to reach level 2, 200 to reach level 3
	assert.Equal(t, 2, p.Level)
	assert.Equal(t, 150, p.Experience)

	p.GainExperience(0)
	assert.Equal(t, 2, p.Level)
}

func TestAddCurrencyClampsAtZero(t *testing.T) {
	p := &Player{Currency: 10}

	p.AddCurrency(-25)
	assert.Equal(t, 0, p.Currency)

	p.AddCurrency(5)
	assert.Equal(t, 5, p.Currency)
}
