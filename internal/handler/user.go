package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"

	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/database"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/engine"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/middleware"
	model "github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/models"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/scanner"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/utils"
)

// GetUsers liste les profils, triés par XP décroissant
func GetUsers(w http.ResponseWriter, r *http.Request) {
	limit := utils.QueryInt(r, "limit", 50)
	offset := utils.QueryInt(r, "offset", 0)
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	ctx := r.Context()
	rows, err := database.DB.Query(ctx, `
		SELECT `+profileColumns+`
		FROM users
		WHERE deleted_at IS NULL
		ORDER BY xp DESC, created_at ASC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de lister les utilisateurs", err)
		return
	}
	defer rows.Close()

	users := []*model.UserProfile{}
	for rows.Next() {
		u, err := scanner.ScanUserProfile(rows)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "lecture du profil impossible", err)
			return
		}
		users = append(users, u)
	}

	utils.Success(w, users)
}

// GetUser retourne un profil complet : compteurs de graphe et compétences inclus
func GetUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]
	ctx := r.Context()

	user, err := scanner.ScanUserProfile(database.DB.QueryRow(ctx, `
		SELECT `+profileColumns+`
		FROM users
		WHERE id = $1 AND deleted_at IS NULL`, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			utils.ErrorSimple(w, http.StatusNotFound, "utilisateur introuvable")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "lecture du profil impossible", err)
		return
	}

	// Compteurs dérivés de la table d'arêtes : jamais stockés sur le profil
	err = database.DB.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM follows WHERE followed_id = $1),
			(SELECT COUNT(*) FROM follows WHERE follower_id = $1)`,
		userID,
	).Scan(&user.Followers, &user.Following)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "lecture du graphe impossible", err)
		return
	}

	user.Skills, err = loadUserSkills(ctx, userID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "lecture des compétences impossible", err)
		return
	}

	utils.Success(w, user)
}

// loadUserSkills charge les compétences d'un profil avec leurs endorsements
func loadUserSkills(ctx context.Context, userID string) ([]model.UserSkill, error) {
	rows, err := database.DB.Query(ctx, `
		SELECT s.id, s.name, COALESCE(s.category, ''), us.level,
			COUNT(e.endorser_id),
			COALESCE(ARRAY_AGG(e.endorser_id::text) FILTER (WHERE e.endorser_id IS NOT NULL), '{}')
		FROM user_skills us
		JOIN skills s ON s.id = us.skill_id
		LEFT JOIN skill_endorsements e ON e.owner_id = us.user_id AND e.skill_id = us.skill_id
		WHERE us.user_id = $1
		GROUP BY s.id, s.name, s.category, us.level, us.created_at
		ORDER BY us.created_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	skills := []model.UserSkill{}
	for rows.Next() {
		var sk model.UserSkill
		if err := rows.Scan(&sk.SkillID, &sk.Name, &sk.Category, &sk.Level, &sk.Endorsements, &sk.EndorsedBy); err != nil {
			return nil, err
		}
		skills = append(skills, sk)
	}
	return skills, rows.Err()
}

// UpdateUser met à jour les champs éditables du profil (jamais xp ni level :
// seul le moteur de cohérence écrit le solde)
func UpdateUser(w http.ResponseWriter, r *http.Request) {
	current, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "authentification requise", err)
		return
	}

	userID := mux.Vars(r)["id"]
	if current.ID != userID && !current.IsAdmin {
		utils.ErrorSimple(w, http.StatusForbidden, "modification du profil d'un autre utilisateur interdite")
		return
	}

	var req struct {
		Name   *string `json:"name"`
		Avatar *string `json:"avatar"`
		Bio    *string `json:"bio"`
		Field  *string `json:"field"`
	}
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, "corps JSON invalide", err)
		return
	}

	ctx := r.Context()
	tag, err := database.DB.Exec(ctx, `
		UPDATE users SET
			name = COALESCE($2, name),
			avatar = COALESCE($3, avatar),
			bio = COALESCE($4, bio),
			field = COALESCE($5, field),
			updated_by = $6,
			updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`,
		userID, req.Name, req.Avatar, req.Bio, req.Field, current.ID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "mise à jour impossible", err)
		return
	}
	if tag.RowsAffected() == 0 {
		utils.ErrorSimple(w, http.StatusNotFound, "utilisateur introuvable")
		return
	}

	user, err := scanner.ScanUserProfile(database.DB.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM users WHERE id = $1`, userID))
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "relecture du profil impossible", err)
		return
	}

	utils.Success(w, user)
}

// DeleteUser soft delete un utilisateur
func DeleteUser(w http.ResponseWriter, r *http.Request) {
	current, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "authentification requise", err)
		return
	}

	userID := mux.Vars(r)["id"]
	if current.ID != userID && !current.IsAdmin {
		utils.ErrorSimple(w, http.StatusForbidden, "suppression du profil d'un autre utilisateur interdite")
		return
	}

	tag, err := database.DB.Exec(r.Context(), `
		UPDATE users SET deleted_at = NOW(), deleted_by = $2
		WHERE id = $1 AND deleted_at IS NULL`,
		userID, current.ID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "suppression impossible", err)
		return
	}
	if tag.RowsAffected() == 0 {
		utils.ErrorSimple(w, http.StatusNotFound, "utilisateur introuvable")
		return
	}

	utils.Message(w, "utilisateur supprimé")
}

// GetFollowers liste les suiveurs d'un utilisateur
func GetFollowers(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]
	page := engine.Page{
		Limit:  utils.QueryInt(r, "limit", 50),
		Offset: utils.QueryInt(r, "offset", 0),
	}

	followers, err := Engine.Followers(r.Context(), userID, page)
	if err != nil {
		engineError(w, err)
		return
	}
	utils.Success(w, followers)
}

// GetFollowing liste les utilisateurs suivis par un utilisateur
func GetFollowing(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]
	page := engine.Page{
		Limit:  utils.QueryInt(r, "limit", 50),
		Offset: utils.QueryInt(r, "offset", 0),
	}

	following, err := Engine.Following(r.Context(), userID, page)
	if err != nil {
		engineError(w, err)
		return
	}
	utils.Success(w, following)
}
