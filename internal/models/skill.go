package model

import "time"

// Skill représente une compétence du catalogue global
type Skill struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Category   string    `json:"category,omitempty"`
	Popularity int       `json:"popularity"`
	CreatedAt  time.Time `json:"createdAt"`
}
