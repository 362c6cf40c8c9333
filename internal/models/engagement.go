package model

import "time"

// EntityType représente les types d'entités qui peuvent recevoir des engagements
type EntityType string

const (
	EntityTypeProject   EntityType = "project"
	EntityTypeIdea      EntityType = "idea"
	EntityTypeChallenge EntityType = "challenge"
	EntityTypeComment   EntityType = "comment"
)

// ReactionType représente les réactions disponibles sur un contenu
type ReactionType string

const (
	ReactionLike        ReactionType = "like"
	ReactionGenius      ReactionType = "genius"
	ReactionCollab      ReactionType = "collab"
	ReactionGameChanger ReactionType = "game_changer"
	ReactionAchievement ReactionType = "achievement"
)

// Like représente un like d'un utilisateur sur une entité
type Like struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId"`
	EntityType EntityType `json:"entityType"`
	EntityID   string     `json:"entityId"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// LikeInfo contient les informations de like pour une entité donnée
type LikeInfo struct {
	TotalLikes int  `json:"totalLikes"`
	UserLiked  bool `json:"userLiked"`
}

// ReactionCount représente le nombre de réactions d'un type donné sur une entité
type ReactionCount struct {
	Type  ReactionType `json:"type"`
	Count int          `json:"count"`
}

// Comment représente un commentaire sur une entité
type Comment struct {
	ID         string       `json:"id"`
	EntityType EntityType   `json:"entityType"`
	EntityID   string       `json:"entityId"`
	AuthorID   string       `json:"authorId"`
	Author     *UserCreator `json:"author,omitempty"`
	Body       string       `json:"body"`
	CreatedAt  time.Time    `json:"createdAt"`
}
