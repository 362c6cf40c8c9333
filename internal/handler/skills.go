package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/database"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/engine"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/middleware"
	model "github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/models"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/utils"
)

type AddSkillRequest struct {
	SkillID  string `json:"skillId,omitempty"`
	Name     string `json:"name,omitempty"`
	Category string `json:"category,omitempty"`
	Level    int    `json:"level"`
}

// AddSkill attache une compétence au profil de l'utilisateur courant.
// Soit skillId (entrée existante du catalogue), soit name/category (création).
func AddSkill(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "authentification requise", err)
		return
	}

	var req AddSkillRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, "corps JSON invalide", err)
		return
	}

	skill, err := Engine.AddSkill(r.Context(), user.ID, engine.SkillRef{
		SkillID:  req.SkillID,
		Name:     req.Name,
		Category: req.Category,
	}, req.Level)
	if err != nil {
		engineError(w, err)
		return
	}

	utils.JSON(w, http.StatusCreated, utils.APIResponse{Success: true, Data: skill})
}

// EndorseSkill endorse une compétence du profil d'un autre utilisateur.
// Pas d'XP : seul le compteur de popularité de la compétence monte.
func EndorseSkill(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "authentification requise", err)
		return
	}

	vars := mux.Vars(r)
	res, err := Engine.EndorseSkill(r.Context(), user.ID, vars["id"], vars["skillId"])
	if err != nil {
		engineError(w, err)
		return
	}

	utils.Success(w, res)
}

// GetSkills liste le catalogue de compétences, les plus populaires d'abord
func GetSkills(w http.ResponseWriter, r *http.Request) {
	limit := utils.QueryInt(r, "limit", 100)
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := database.DB.Query(r.Context(), `
		SELECT id, name, COALESCE(category, ''), popularity, created_at
		FROM skills
		ORDER BY popularity DESC, name ASC
		LIMIT $1`, limit)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de lister les compétences", err)
		return
	}
	defer rows.Close()

	skills := []model.Skill{}
	for rows.Next() {
		var s model.Skill
		if err := rows.Scan(&s.ID, &s.Name, &s.Category, &s.Popularity, &s.CreatedAt); err != nil {
			utils.Error(w, http.StatusInternalServerError, "lecture du catalogue impossible", err)
			return
		}
		skills = append(skills, s)
	}

	utils.Success(w, skills)
}
