package handler

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/database"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/engine"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/middleware"
	model "github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/models"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/scanner"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/utils"
)

type IdeaRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
}

const ideaColumns = `i.id, i.title, i.description, i.owner_id, i.tags,
	(SELECT COUNT(*) FROM likes WHERE entity_type = 'idea' AND entity_id = i.id),
	(SELECT COUNT(*) FROM comments WHERE entity_type = 'idea' AND entity_id = i.id),
	i.created_at, i.updated_at`

// CreateIdea partage une idée et crédite son auteur
func CreateIdea(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "authentification requise", err)
		return
	}

	var req IdeaRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, "corps JSON invalide", err)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		utils.ErrorSimple(w, http.StatusBadRequest, "titre requis")
		return
	}
	if req.Tags == nil {
		req.Tags = []string{}
	}

	ctx := r.Context()
	var ideaID string
	err = database.DB.QueryRow(ctx, `
		INSERT INTO ideas (title, description, owner_id, tags)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		req.Title, req.Description, user.ID, pq.Array(req.Tags),
	).Scan(&ideaID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "création de l'idée impossible", err)
		return
	}

	award, err := Engine.AwardXp(ctx, user.ID, engine.XpIdeaCreated, "Idée partagée", model.XpSourceIdea, &ideaID)
	if err != nil {
		engineError(w, err)
		return
	}

	idea, err := scanner.ScanIdea(database.DB.QueryRow(ctx,
		`SELECT `+ideaColumns+` FROM ideas i WHERE i.id = $1`, ideaID))
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "relecture de l'idée impossible", err)
		return
	}

	utils.JSON(w, http.StatusCreated, utils.APIResponse{Success: true, Data: map[string]interface{}{
		"idea":  idea,
		"award": award,
	}})
}

// GetIdeas liste les idées, les plus récentes d'abord
func GetIdeas(w http.ResponseWriter, r *http.Request) {
	limit := utils.QueryInt(r, "limit", 20)
	offset := utils.QueryInt(r, "offset", 0)
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := database.DB.Query(r.Context(), `
		SELECT `+ideaColumns+`
		FROM ideas i
		WHERE i.deleted_at IS NULL
		ORDER BY i.created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de lister les idées", err)
		return
	}
	defer rows.Close()

	ideas := []*model.Idea{}
	for rows.Next() {
		i, err := scanner.ScanIdea(rows)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "lecture des idées impossible", err)
			return
		}
		ideas = append(ideas, i)
	}

	utils.Success(w, ideas)
}

// GetIdea retourne une idée par son id
func GetIdea(w http.ResponseWriter, r *http.Request) {
	ideaID := mux.Vars(r)["id"]

	idea, err := scanner.ScanIdea(database.DB.QueryRow(r.Context(),
		`SELECT `+ideaColumns+` FROM ideas i WHERE i.id = $1 AND i.deleted_at IS NULL`, ideaID))
	if err != nil {
		if err == pgx.ErrNoRows {
			utils.ErrorSimple(w, http.StatusNotFound, "idée introuvable")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "lecture de l'idée impossible", err)
		return
	}

	utils.Success(w, idea)
}
