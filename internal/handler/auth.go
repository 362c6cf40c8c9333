package handler

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/database"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/scanner"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/utils"
)

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Field    string `json:"field,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

const profileColumns = `id, name, email, avatar, bio, field, provider,
	xp, level, is_admin, join_date, created_at, updated_at`

// Signup crée un compte et ouvre directement une session
func Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, "corps JSON invalide", err)
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || len(req.Password) < 8 {
		utils.ErrorSimple(w, http.StatusBadRequest, "nom, email et mot de passe (8 caractères min) requis")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de hacher le mot de passe", err)
		return
	}

	ctx := r.Context()
	var userID string
	err = database.DB.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, field)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		ON CONFLICT (email) DO NOTHING
		RETURNING id`,
		req.Name, req.Email, string(hash), req.Field,
	).Scan(&userID)
	if err != nil {
		utils.ErrorSimple(w, http.StatusConflict, "un compte existe déjà avec cet email")
		return
	}

	token, err := utils.CreateSession(ctx, userID, r.RemoteAddr, r.UserAgent())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de créer la session", err)
		return
	}

	user, err := scanner.ScanUserProfile(database.DB.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM users WHERE id = $1`, userID))
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de relire le profil", err)
		return
	}

	utils.JSON(w, http.StatusCreated, utils.APIResponse{Success: true, Data: map[string]interface{}{
		"user":  user,
		"token": token,
	}})
}

// Login vérifie les identifiants et ouvre une session
func Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, "corps JSON invalide", err)
		return
	}

	ctx := r.Context()
	var userID, hash string
	err := database.DB.QueryRow(ctx, `
		SELECT id, COALESCE(password_hash, '')
		FROM users
		WHERE email = $1 AND deleted_at IS NULL`,
		strings.ToLower(strings.TrimSpace(req.Email)),
	).Scan(&userID, &hash)
	if err != nil {
		utils.ErrorSimple(w, http.StatusUnauthorized, "identifiants invalides")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		utils.ErrorSimple(w, http.StatusUnauthorized, "identifiants invalides")
		return
	}

	token, err := utils.CreateSession(ctx, userID, r.RemoteAddr, r.UserAgent())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de créer la session", err)
		return
	}

	user, err := scanner.ScanUserProfile(database.DB.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM users WHERE id = $1`, userID))
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de relire le profil", err)
		return
	}

	utils.Success(w, map[string]interface{}{
		"user":  user,
		"token": token,
	})
}

// Logout invalide la session courante
func Logout(w http.ResponseWriter, r *http.Request) {
	token := utils.GetToken(r)
	if token == "" {
		utils.ErrorSimple(w, http.StatusBadRequest, "token manquant")
		return
	}

	if err := utils.InvalidateSession(r.Context(), token); err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de fermer la session", err)
		return
	}

	utils.Message(w, "session fermée")
}
