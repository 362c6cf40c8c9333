package model

import (
	"database/sql"
	"time"
)

type Challenge struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Category      string         `json:"category"` // DAILY, WEEKLY, COMMUNITY...
	Difficulty    string         `json:"difficulty"`
	Points        int            `json:"points"`
	Participants  int            `json:"participants"`
	Completions   int            `json:"completions"`
	Likes         int            `json:"likes"`
	Badge         sql.NullString `json:"badge,omitempty"`
	StartDate     sql.NullTime   `json:"startDate,omitempty"`
	EndDate       sql.NullTime   `json:"endDate,omitempty"`
	Status        string         `json:"status"`
	UserCompleted sql.NullBool   `json:"userCompleted,omitempty"`
	UserLiked     sql.NullBool   `json:"userLiked,omitempty"`
	Tags          []string       `json:"tags,omitempty"`
	IsOfficial    bool           `json:"isOfficial"`
	CreatedBy     sql.NullString `json:"createdBy,omitempty"`
	UpdatedBy     sql.NullString `json:"updatedBy,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     sql.NullTime   `json:"deletedAt,omitempty"`
}

// ChallengeCompletion représente la complétion d'un challenge par un utilisateur
type ChallengeCompletion struct {
	ID          string    `json:"id"`
	ChallengeID string    `json:"challengeId"`
	UserID      string    `json:"userId"`
	CompletedAt time.Time `json:"completedAt"`
}
