package utils

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/database"
)

const sessionDuration = 30 * 24 * time.Hour

// GetToken extrait le token de session du header Authorization (Bearer)
func GetToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return auth
}

// CreateSession crée une session pour l'utilisateur et retourne le token
func CreateSession(ctx context.Context, userID, ip, userAgent string) (string, error) {
	token := uuid.NewString()
	_, err := database.DB.Exec(ctx, `
		INSERT INTO sessions (user_id, token, ip_address, user_agent, expires_at)
		VALUES ($1, $2, $3, $4, $5)`,
		userID, token, ip, userAgent, time.Now().Add(sessionDuration))
	if err != nil {
		return "", err
	}
	return token, nil
}

// InvalidateSession désactive la session associée au token
func InvalidateSession(ctx context.Context, token string) error {
	_, err := database.DB.Exec(ctx, `
		UPDATE sessions SET is_active = FALSE, deleted_at = NOW()
		WHERE token = $1`, token)
	return err
}
