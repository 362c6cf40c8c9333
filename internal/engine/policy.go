package engine

import model "github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/models"

// Barème d'attribution d'XP. Ce sont des données de politique produit,
// pas de l'algorithmique : les modifier ne change rien aux invariants.
const (
	XpLike           = 5
	XpComment        = 5
	XpProjectCreated = 20
	XpIdeaCreated    = 10

	xpReactionGenius      = 10
	xpReactionGameChanger = 15
	xpReactionDefault     = 5
)

// ReactionAward retourne le montant d'XP attribué à l'auteur pour une réaction
func ReactionAward(t model.ReactionType) int {
	switch t {
	case model.ReactionGenius:
		return xpReactionGenius
	case model.ReactionGameChanger:
		return xpReactionGameChanger
	default:
		return xpReactionDefault
	}
}

// ValidReaction vérifie qu'un type de réaction fait partie des réactions connues
func ValidReaction(t model.ReactionType) bool {
	switch t {
	case model.ReactionLike, model.ReactionGenius, model.ReactionCollab,
		model.ReactionGameChanger, model.ReactionAchievement:
		return true
	}
	return false
}

// sourceForEntity associe un type d'entité à la source de transaction XP
func sourceForEntity(t model.EntityType) model.XpSourceType {
	switch t {
	case model.EntityTypeProject:
		return model.XpSourceProject
	case model.EntityTypeIdea:
		return model.XpSourceIdea
	case model.EntityTypeChallenge:
		return model.XpSourceChallenge
	default:
		return model.XpSourceComment
	}
}
