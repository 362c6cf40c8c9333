package handler

import (
	"errors"
	"net/http"

	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/engine"
	model "github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/models"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/utils"
)

// Engine est le coordinateur de cohérence partagé par tous les handlers.
// Il est injecté une fois au démarrage via Init.
var Engine *engine.Coordinator

func Init(e *engine.Coordinator) {
	Engine = e
}

func HealthCheck(w http.ResponseWriter, r *http.Request) {
	utils.Message(w, "ok")
}

// engineError traduit les erreurs du moteur en statuts HTTP
func engineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrUserNotFound),
		errors.Is(err, engine.ErrContentNotFound),
		errors.Is(err, engine.ErrSkillNotFound):
		utils.Error(w, http.StatusNotFound, err.Error(), err)
	case errors.Is(err, engine.ErrSelfFollow),
		errors.Is(err, engine.ErrSelfEndorsement),
		errors.Is(err, engine.ErrInvalidAmount),
		errors.Is(err, engine.ErrInvalidReaction),
		errors.Is(err, engine.ErrInvalidSkillRef),
		errors.Is(err, engine.ErrInvalidSkillLevel):
		utils.Error(w, http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, engine.ErrConsistencyTimeout):
		utils.Error(w, http.StatusConflict, "opération en conflit, réessayez", err)
	default:
		utils.Error(w, http.StatusInternalServerError, "erreur interne", err)
	}
}

// parseEntityType valide le type d'entité des routes d'engagement
func parseEntityType(raw string) (model.EntityType, bool) {
	t := model.EntityType(raw)
	switch t {
	case model.EntityTypeProject, model.EntityTypeIdea, model.EntityTypeChallenge, model.EntityTypeComment:
		return t, true
	}
	return "", false
}
