package model

import (
	"time"
)

// DateFields contient les champs d'audit standard pour toutes les entités
type DateFields struct {
	CreatedBy *string   `json:"createdBy,omitempty"`
	UpdatedBy *string   `json:"updatedBy,omitempty"`
	DeletedAt time.Time `json:"deletedAt,omitempty"`
	DeletedBy *string   `json:"deletedBy,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

type UserProfile struct {
	ID        string      `json:"id,omitempty"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Avatar    string      `json:"avatar,omitempty"`
	Bio       string      `json:"bio,omitempty"`
	Field     string      `json:"field,omitempty"`    // Domaine principal (IA, robotique, web...)
	Provider  string      `json:"provider,omitempty"` // email, google, apple
	Xp        int         `json:"xp"`
	Level     int         `json:"level"`
	Followers int         `json:"followers"`
	Following int         `json:"following"`
	IsAdmin   bool        `json:"isAdmin"`
	JoinDate  time.Time   `json:"joinDate,omitempty"`
	Skills    []UserSkill `json:"skills,omitempty"`
	DateFields
}

// UserSkill représente une compétence attachée à un profil, avec ses endorsements
type UserSkill struct {
	SkillID      string   `json:"skillId"`
	Name         string   `json:"name"`
	Category     string   `json:"category,omitempty"`
	Level        int      `json:"level"` // 1 à 5
	Endorsements int      `json:"endorsements"`
	EndorsedBy   []string `json:"endorsedBy,omitempty"`
}

// UserCreator contient les informations de l'utilisateur créateur d'une entité
type UserCreator struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}
