package handler

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/database"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/middleware"
	model "github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/models"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/scanner"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/utils"
)

type CommentRequest struct {
	Body string `json:"body"`
}

// CreateComment enregistre un commentaire et crédite l'auteur du contenu.
// Insertion et attribution d'XP passent par la même unité de travail.
func CreateComment(w http.ResponseWriter, r *http.Request) {
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

	var req CommentRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, "corps JSON invalide", err)
		return
	}
	req.Body = strings.TrimSpace(req.Body)
	if req.Body == "" {
		utils.ErrorSimple(w, http.StatusBadRequest, "commentaire vide")
		return
	}

	comment, award, err := Engine.Comment(r.Context(), user.ID, entityType, vars["entityId"], req.Body)
	if err != nil {
		engineError(w, err)
		return
	}

	utils.JSON(w, http.StatusCreated, utils.APIResponse{Success: true, Data: map[string]interface{}{
		"comment": comment,
		"award":   award,
	}})
}

// GetComments liste les commentaires d'une entité, du plus récent au plus ancien
func GetComments(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	entityType, ok := parseEntityType(vars["entityType"])
	if !ok {
		utils.ErrorSimple(w, http.StatusBadRequest, "type d'entité invalide")
		return
	}

	limit := utils.QueryInt(r, "limit", 50)
	offset := utils.QueryInt(r, "offset", 0)
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := database.DB.Query(r.Context(), `
		SELECT c.id, c.entity_type, c.entity_id, c.author_id, c.body, c.created_at,
			u.name, u.avatar
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.entity_type = $1 AND c.entity_id = $2
		ORDER BY c.created_at DESC
		LIMIT $3 OFFSET $4`,
		entityType, vars["entityId"], limit, offset)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de récupérer les commentaires", err)
		return
	}
	defer rows.Close()

	comments := []*model.Comment{}
	for rows.Next() {
		c, err := scanner.ScanComment(rows)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "lecture des commentaires impossible", err)
			return
		}
		comments = append(comments, c)
	}

	utils.Success(w, comments)
}
