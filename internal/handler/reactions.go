package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/database"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/middleware"
	model "github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/models"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/utils"
)

type ReactionRequest struct {
	Type model.ReactionType `json:"type"`
}

// React ajoute une réaction typée sur une entité. Le barème d'XP dépend du
// type de réaction, la déduplication se fait par (acteur, entité, type).
func React(w http.ResponseWriter, r *http.Request) {
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

	var req ReactionRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, "corps JSON invalide", err)
		return
	}

	res, err := Engine.React(r.Context(), user.ID, entityType, vars["entityId"], req.Type)
	if err != nil {
		engineError(w, err)
		return
	}

	utils.Success(w, res)
}

// Unreact retire une réaction
func Unreact(w http.ResponseWriter, r *http.Request) {
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

	reaction := model.ReactionType(r.URL.Query().Get("type"))
	if err := Engine.Unreact(r.Context(), user.ID, entityType, vars["entityId"], reaction); err != nil {
		engineError(w, err)
		return
	}

	utils.Message(w, "réaction retirée")
}

// GetReactions agrège les réactions d'une entité par type
func GetReactions(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	entityType, ok := parseEntityType(vars["entityType"])
	if !ok {
		utils.ErrorSimple(w, http.StatusBadRequest, "type d'entité invalide")
		return
	}

	rows, err := database.DB.Query(r.Context(), `
		SELECT reaction_type, COUNT(*)
		FROM reactions
		WHERE entity_type = $1 AND entity_id = $2
		GROUP BY reaction_type
		ORDER BY COUNT(*) DESC`,
		entityType, vars["entityId"])
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de récupérer les réactions", err)
		return
	}
	defer rows.Close()

	counts := []model.ReactionCount{}
	for rows.Next() {
		var c model.ReactionCount
		if err := rows.Scan(&c.Type, &c.Count); err != nil {
			utils.Error(w, http.StatusInternalServerError, "lecture des réactions impossible", err)
			return
		}
		counts = append(counts, c)
	}

	utils.Success(w, counts)
}
