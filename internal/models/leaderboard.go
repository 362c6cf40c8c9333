package model

import (
	"database/sql"
)

type LeaderboardEntry struct {
	UserID   string         `json:"userId"`
	UserName string         `json:"userName"`
	Avatar   sql.NullString `json:"avatar,omitempty"`
	Rank     int            `json:"rank"`
	Xp       int            `json:"xp"`
	Level    int            `json:"level"`
}

type UserRank struct {
	UserID     string  `json:"userId"`
	Rank       int     `json:"rank"`
	Xp         int     `json:"xp"`
	TotalUsers int     `json:"totalUsers"`
	Percentile float64 `json:"percentile"` // Top X%
}
