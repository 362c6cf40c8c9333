package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/database"
	model "github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/models"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/scanner"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/utils"
)

// Context keys
type contextKey string

const (
	userContextKey  = contextKey("user")
	tokenContextKey = contextKey("token")
)

// AuthMiddleware valide le token et injecte l'utilisateur dans le contexte
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := utils.GetToken(r)
		if token == "" {
			utils.ErrorSimple(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		user, err := validateTokenAndGetUser(r.Context(), token)
		if err != nil {
			utils.ErrorSimple(w, http.StatusUnauthorized, fmt.Sprintf("invalid token: %v", err))
			return
		}

		// Injecter l'utilisateur et le token dans le contexte
		ctx := context.WithValue(r.Context(), userContextKey, *user)
		ctx = context.WithValue(ctx, tokenContextKey, token)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth injecte l'utilisateur si un token valide est présent, sans bloquer
func OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := utils.GetToken(r)
		if token != "" {
			if user, err := validateTokenAndGetUser(r.Context(), token); err == nil {
				ctx := context.WithValue(r.Context(), userContextKey, *user)
				ctx = context.WithValue(ctx, tokenContextKey, token)
				r = r.WithContext(ctx)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// validateTokenAndGetUser valide le token et retourne l'utilisateur associé
func validateTokenAndGetUser(ctx context.Context, token string) (*model.UserProfile, error) {
	query := `
	SELECT
		u.id, u.name, u.email, u.avatar, u.bio, u.field, u.provider,
		u.xp, u.level, u.is_admin, u.join_date, u.created_at, u.updated_at
	FROM users u
	JOIN sessions s ON u.id = s.user_id
	WHERE s.token = $1
		AND s.is_active = true
		AND s.expires_at > NOW()
		AND u.deleted_at IS NULL
		AND s.deleted_at IS NULL`

	user, err := scanner.ScanUserProfile(database.DB.QueryRow(ctx, query, token))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("token not found or expired")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return user, nil
}

// GetUserFromContext récupère l'utilisateur depuis le contexte de la requête
func GetUserFromContext(r *http.Request) (model.UserProfile, error) {
	user, ok := r.Context().Value(userContextKey).(model.UserProfile)
	if !ok {
		return model.UserProfile{}, fmt.Errorf("user not found in context")
	}
	return user, nil
}

// GetTokenFromContext récupère le token depuis le contexte de la requête
func GetTokenFromContext(r *http.Request) (string, error) {
	token, ok := r.Context().Value(tokenContextKey).(string)
	if !ok || token == "" {
		return "", fmt.Errorf("token not found in context")
	}
	return token, nil
}

// GetUserIDFromContext récupère l'ID de l'utilisateur depuis le contexte (helper)
func GetUserIDFromContext(r *http.Request) (string, error) {
	user, err := GetUserFromContext(r)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// RequireAdmin vérifie que l'utilisateur du contexte est administrateur
func RequireAdmin(r *http.Request) (model.UserProfile, error) {
	user, err := GetUserFromContext(r)
	if err != nil {
		return model.UserProfile{}, err
	}
	if !user.IsAdmin {
		return model.UserProfile{}, fmt.Errorf("admin privileges required")
	}
	return user, nil
}
