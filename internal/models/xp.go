package model

import "time"

// XpSourceType représente l'origine d'une transaction XP
type XpSourceType string

const (
	XpSourceProject     XpSourceType = "project"
	XpSourceIdea        XpSourceType = "idea"
	XpSourceChallenge   XpSourceType = "challenge"
	XpSourceReaction    XpSourceType = "reaction"
	XpSourceComment     XpSourceType = "comment"
	XpSourceEndorsement XpSourceType = "endorsement"
	XpSourceAdmin       XpSourceType = "admin"
)

// XpTransaction est une entrée immuable du journal XP.
// Les corrections sont de nouvelles entrées à montant négatif, jamais des éditions.
type XpTransaction struct {
	ID         string       `json:"id"`
	UserID     string       `json:"userId"`
	Amount     int          `json:"amount"`
	Reason     string       `json:"reason"`
	SourceType XpSourceType `json:"sourceType"`
	SourceID   *string      `json:"sourceId,omitempty"`
	OldTotal   int          `json:"oldTotal"`
	NewTotal   int          `json:"newTotal"`
	LevelUp    bool         `json:"levelUp"`
	CreatedAt  time.Time    `json:"createdAt"`
}

// XpAward résume l'effet d'une attribution d'XP sur le solde d'un utilisateur
type XpAward struct {
	OldTotal int  `json:"oldTotal"`
	NewTotal int  `json:"newTotal"`
	OldLevel int  `json:"oldLevel"`
	NewLevel int  `json:"newLevel"`
	LevelUp  bool `json:"levelUp"`
}
