package handler

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/database"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/middleware"
	model "github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/models"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/scanner"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/utils"
)

type ChallengeRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category,omitempty"`
	Difficulty  string   `json:"difficulty,omitempty"`
	Points      int      `json:"points"`
	Badge       string   `json:"badge,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

const challengeColumns = `c.id, c.title, c.description, c.category, c.difficulty,
	c.points, c.badge, c.start_date, c.end_date, c.status, c.tags, c.is_official, c.created_by,
	(SELECT COUNT(DISTINCT user_id) FROM challenge_completions WHERE challenge_id = c.id),
	(SELECT COUNT(*) FROM challenge_completions WHERE challenge_id = c.id),
	(SELECT COUNT(*) FROM likes WHERE entity_type = 'challenge' AND entity_id = c.id),
	c.created_at, c.updated_at`

// CreateChallenge crée un challenge. Les challenges créés par un admin sont
// officiels et sans auteur créditable : leurs likes ne rapportent d'XP à personne.
func CreateChallenge(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "authentification requise", err)
		return
	}

	var req ChallengeRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, "corps JSON invalide", err)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || req.Points < 0 {
		utils.ErrorSimple(w, http.StatusBadRequest, "titre requis et points positifs")
		return
	}
	if req.Category == "" {
		req.Category = "COMMUNITY"
	}
	if req.Difficulty == "" {
		req.Difficulty = "medium"
	}
	if req.Tags == nil {
		req.Tags = []string{}
	}

	ctx := r.Context()
	var challengeID string
	err = database.DB.QueryRow(ctx, `
		INSERT INTO challenges (title, description, category, difficulty, points, badge, tags, is_official, created_by)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9)
		RETURNING id`,
		req.Title, req.Description, req.Category, req.Difficulty, req.Points,
		req.Badge, pq.Array(req.Tags), user.IsAdmin, user.ID,
	).Scan(&challengeID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "création du challenge impossible", err)
		return
	}

	challenge, err := scanner.ScanChallenge(database.DB.QueryRow(ctx,
		`SELECT `+challengeColumns+` FROM challenges c WHERE c.id = $1`, challengeID))
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "relecture du challenge impossible", err)
		return
	}

	utils.JSON(w, http.StatusCreated, utils.APIResponse{Success: true, Data: challenge})
}

// GetChallenges liste les challenges actifs
func GetChallenges(w http.ResponseWriter, r *http.Request) {
	limit := utils.QueryInt(r, "limit", 20)
	offset := utils.QueryInt(r, "offset", 0)
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := database.DB.Query(r.Context(), `
		SELECT `+challengeColumns+`
		FROM challenges c
		WHERE c.deleted_at IS NULL AND c.status = 'active'
		ORDER BY c.created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de lister les challenges", err)
		return
	}
	defer rows.Close()

	challenges := []*model.Challenge{}
	for rows.Next() {
		c, err := scanner.ScanChallenge(rows)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "lecture des challenges impossible", err)
			return
		}
		challenges = append(challenges, c)
	}

	utils.Success(w, challenges)
}

// GetChallengeById retourne un challenge par son id
func GetChallengeById(w http.ResponseWriter, r *http.Request) {
	challengeID := mux.Vars(r)["id"]

	challenge, err := scanner.ScanChallenge(database.DB.QueryRow(r.Context(),
		`SELECT `+challengeColumns+` FROM challenges c WHERE c.id = $1 AND c.deleted_at IS NULL`, challengeID))
	if err != nil {
		if err == pgx.ErrNoRows {
			utils.ErrorSimple(w, http.StatusNotFound, "challenge introuvable")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "lecture du challenge impossible", err)
		return
	}

	utils.Success(w, challenge)
}

// CompleteChallenge enregistre la complétion et crédite l'utilisateur des
// points du challenge. Une complétion déjà enregistrée ne paie pas deux fois.
func CompleteChallenge(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "authentification requise", err)
		return
	}

	challengeID := mux.Vars(r)["id"]
	ctx := r.Context()

	var title string
	var points int
	err = database.DB.QueryRow(ctx, `
		SELECT title, points FROM challenges
		WHERE id = $1 AND deleted_at IS NULL AND status = 'active'`,
		challengeID,
	).Scan(&title, &points)
	if err != nil {
		utils.ErrorSimple(w, http.StatusNotFound, "challenge introuvable ou inactif")
		return
	}

	// Déduplication par clé primaire (challenge, utilisateur)
	tag, err := database.DB.Exec(ctx, `
		INSERT INTO challenge_completions (challenge_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`,
		challengeID, user.ID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "enregistrement de la complétion impossible", err)
		return
	}
	if tag.RowsAffected() == 0 {
		utils.Success(w, map[string]interface{}{"already": true})
		return
	}

	var award *model.XpAward
	if points > 0 {
		award, err = Engine.AwardXp(ctx, user.ID, points, "Challenge complété : "+title, model.XpSourceChallenge, &challengeID)
		if err != nil {
			engineError(w, err)
			return
		}
	}

	utils.Success(w, map[string]interface{}{
		"already": false,
		"award":   award,
	})
}
