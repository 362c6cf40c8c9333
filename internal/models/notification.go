package model

import "time"

// NotificationEvent est l'événement émis par le moteur de cohérence vers le
// collaborateur de livraison. La livraison elle-même est hors du périmètre :
// le moteur ne sait pas si (ni comment) l'événement atteint l'utilisateur.
type NotificationEvent struct {
	Type      string    `json:"type"` // like, reaction, comment, follow, endorsement, level_up, xp_award
	ActorID   string    `json:"actorId"`
	AuthorID  string    `json:"authorId"`
	Amount    int       `json:"amount,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	SourceID  string    `json:"sourceId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
