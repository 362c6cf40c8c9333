package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/middleware"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/utils"
)

// FollowUser crée la relation de suivi entre l'utilisateur courant et la cible
func FollowUser(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "authentification requise", err)
		return
	}

	targetID := mux.Vars(r)["id"]
	res, err := Engine.Follow(r.Context(), user.ID, targetID)
	if err != nil {
		engineError(w, err)
		return
	}

	utils.Success(w, res)
}

// UnfollowUser retire la relation de suivi
func UnfollowUser(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "authentification requise", err)
		return
	}

	targetID := mux.Vars(r)["id"]
	if err := Engine.Unfollow(r.Context(), user.ID, targetID); err != nil {
		engineError(w, err)
		return
	}

	utils.Message(w, "suivi retiré")
}
