package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/database"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/middleware"
	model "github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/models"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/utils"
)

// LikeEntity ajoute un like sur une entité et crédite son auteur via le moteur
func LikeEntity(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "authentification requise", err)
		return
	}

	vars := mux.Vars(r)
	entityType, ok := parseEntityType(vars["entityType"])
	if !ok {
		utils.ErrorSimple(w, http.StatusBadRequest, "type d'entité invalide")
		return
	}

	res, err := Engine.Like(r.Context(), user.ID, entityType, vars["entityId"])
	if err != nil {
		engineError(w, err)
		return
	}

	utils.Success(w, res)
}

// UnlikeEntity retire un like. Idempotent : l'XP déjà attribué reste acquis
func UnlikeEntity(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "authentification requise", err)
		return
	}

	vars := mux.Vars(r)
	entityType, ok := parseEntityType(vars["entityType"])
	if !ok {
		utils.ErrorSimple(w, http.StatusBadRequest, "type d'entité invalide")
		return
	}

	if err := Engine.Unlike(r.Context(), user.ID, entityType, vars["entityId"]); err != nil {
		engineError(w, err)
		return
	}

	utils.Message(w, "like retiré")
}

// GetLikeStatus récupère le total de likes et le statut de l'utilisateur courant
func GetLikeStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	entityType, ok := parseEntityType(vars["entityType"])
	if !ok {
		utils.ErrorSimple(w, http.StatusBadRequest, "type d'entité invalide")
		return
	}
	entityID := vars["entityId"]

	// L'utilisateur est optionnel sur cette route
	user, _ := middleware.GetUserFromContext(r)

	ctx := r.Context()
	var info model.LikeInfo
	err := database.DB.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE user_id = NULLIF($3, '')::uuid) > 0
		FROM likes
		WHERE entity_type = $1 AND entity_id = $2`,
		entityType, entityID, user.ID,
	).Scan(&info.TotalLikes, &info.UserLiked)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de récupérer les likes", err)
		return
	}

	utils.Success(w, info)
}
