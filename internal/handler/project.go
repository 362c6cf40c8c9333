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

type ProjectRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	RepoURL     string   `json:"repoUrl,omitempty"`
	DemoURL     string   `json:"demoUrl,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Status      string   `json:"status,omitempty"`
}

const projectColumns = `p.id, p.title, p.description, p.owner_id,
	p.repo_url, p.demo_url, p.tags, p.status,
	(SELECT COUNT(*) FROM likes WHERE entity_type = 'project' AND entity_id = p.id),
	(SELECT COUNT(*) FROM comments WHERE entity_type = 'project' AND entity_id = p.id),
	p.created_at, p.updated_at`

// CreateProject publie un projet et crédite son propriétaire
func CreateProject(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "authentification requise", err)
		return
	}

	var req ProjectRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, "corps JSON invalide", err)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		utils.ErrorSimple(w, http.StatusBadRequest, "titre requis")
		return
	}
	if req.Status == "" {
		req.Status = "published"
	}
	if req.Tags == nil {
		req.Tags = []string{}
	}

	ctx := r.Context()
	var projectID string
	err = database.DB.QueryRow(ctx, `
		INSERT INTO projects (title, description, owner_id, repo_url, demo_url, tags, status)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7)
		RETURNING id`,
		req.Title, req.Description, user.ID, req.RepoURL, req.DemoURL, pq.Array(req.Tags), req.Status,
	).Scan(&projectID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "création du projet impossible", err)
		return
	}

	// La publication rapporte de l'XP au propriétaire, via le moteur
	award, err := Engine.AwardXp(ctx, user.ID, engine.XpProjectCreated, "Projet publié", model.XpSourceProject, &projectID)
	if err != nil {
		engineError(w, err)
		return
	}

	project, err := scanner.ScanProject(database.DB.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects p WHERE p.id = $1`, projectID))
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "relecture du projet impossible", err)
		return
	}

	utils.JSON(w, http.StatusCreated, utils.APIResponse{Success: true, Data: map[string]interface{}{
		"project": project,
		"award":   award,
	}})
}

// GetProjects liste les projets publiés, les plus récents d'abord
func GetProjects(w http.ResponseWriter, r *http.Request) {
	limit := utils.QueryInt(r, "limit", 20)
	offset := utils.QueryInt(r, "offset", 0)
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	ctx := r.Context()
	args := []interface{}{limit, offset}
	filter := ""
	if owner := r.URL.Query().Get("owner"); owner != "" {
		filter = " AND p.owner_id = $3"
		args = append(args, owner)
	}

	rows, err := database.DB.Query(ctx, `
		SELECT `+projectColumns+`
		FROM projects p
		WHERE p.deleted_at IS NULL AND p.status = 'published'`+filter+`
		ORDER BY p.created_at DESC
		LIMIT $1 OFFSET $2`, args...)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de lister les projets", err)
		return
	}
	defer rows.Close()

	projects := []*model.Project{}
	for rows.Next() {
		p, err := scanner.ScanProject(rows)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "lecture des projets impossible", err)
			return
		}
		projects = append(projects, p)
	}

	utils.Success(w, projects)
}

// GetProject retourne un projet par son id, avec son propriétaire
func GetProject(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["id"]
	ctx := r.Context()

	project, err := scanner.ScanProject(database.DB.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects p WHERE p.id = $1 AND p.deleted_at IS NULL`, projectID))
	if err != nil {
		if err == pgx.ErrNoRows {
			utils.ErrorSimple(w, http.StatusNotFound, "projet introuvable")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "lecture du projet impossible", err)
		return
	}

	var owner model.UserCreator
	var avatar *string
	err = database.DB.QueryRow(ctx,
		`SELECT id, name, COALESCE(avatar, '') FROM users WHERE id = $1`, project.OwnerID,
	).Scan(&owner.ID, &owner.Name, &avatar)
	if err == nil {
		if avatar != nil {
			owner.Avatar = *avatar
		}
		project.Owner = &owner
	}

	utils.Success(w, project)
}

// DeleteProject soft delete un projet (propriétaire ou admin)
func DeleteProject(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "authentification requise", err)
		return
	}

	projectID := mux.Vars(r)["id"]
	ctx := r.Context()

	var ownerID string
	if err := database.DB.QueryRow(ctx,
		`SELECT owner_id FROM projects WHERE id = $1 AND deleted_at IS NULL`, projectID,
	).Scan(&ownerID); err != nil {
		utils.ErrorSimple(w, http.StatusNotFound, "projet introuvable")
		return
	}
	if ownerID != user.ID && !user.IsAdmin {
		utils.ErrorSimple(w, http.StatusForbidden, "seul le propriétaire peut supprimer ce projet")
		return
	}

	_, err = database.DB.Exec(ctx,
		`UPDATE projects SET deleted_at = NOW() WHERE id = $1`, projectID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "suppression impossible", err)
		return
	}

	utils.Message(w, "projet supprimé")
}
