package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/engine"
	model "github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/models"
)

func TestLevelOf(t *testing.T) {
	tests := []struct {
		xp   int
		want int
	}{
		{-10, 1},
		{0, 1},
		{1, 1},
		{99, 1},
		{100, 2},
		{250, 2},
		{399, 2},
		{400, 3},
		{520, 3},
		{899, 3},
		{900, 4},
		{10000, 11},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, engine.LevelOf(tt.xp), "xp=%d", tt.xp)
	}
}

// Le niveau ne descend jamais quand l'XP monte
func TestLevelOfMonotonic(t *testing.T) {
	prev := engine.LevelOf(0)
	for xp := 1; xp <= 5000; xp++ {
		lvl := engine.LevelOf(xp)
		assert.GreaterOrEqual(t, lvl, prev, "xp=%d", xp)
		prev = lvl
	}
}

func TestReactionAward(t *testing.T) {
	tests := []struct {
		reaction string
		want     int
	}{
		{"genius", 10},
		{"game_changer", 15},
		{"like", 5},
		{"collab", 5},
		{"achievement", 5},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, engine.ReactionAward(model.ReactionType(tt.reaction)), "reaction=%s", tt.reaction)
	}
}
