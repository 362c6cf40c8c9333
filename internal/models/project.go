package model

import (
	"database/sql"
	"time"
)

// Project représente un projet publié par un utilisateur
type Project struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	OwnerID     string         `json:"ownerId"`
	Owner       *UserCreator   `json:"owner,omitempty"`
	RepoURL     sql.NullString `json:"repoUrl,omitempty"`
	DemoURL     sql.NullString `json:"demoUrl,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Status      string         `json:"status"` // draft, published, archived
	Likes       int            `json:"likes"`
	Comments    int            `json:"comments"`
	UserLiked   sql.NullBool   `json:"userLiked,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   sql.NullTime   `json:"deletedAt,omitempty"`
}

// Idea représente une idée partagée par un utilisateur (projet non encore réalisé)
type Idea struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	OwnerID     string       `json:"ownerId"`
	Owner       *UserCreator `json:"owner,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	Likes       int          `json:"likes"`
	Comments    int          `json:"comments"`
	UserLiked   sql.NullBool `json:"userLiked,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	DeletedAt   sql.NullTime `json:"deletedAt,omitempty"`
}
