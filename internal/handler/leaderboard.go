package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/database"
	model "github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/models"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/scanner"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/utils"
)

// GetLeaderboard retourne le classement global par XP
func GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := utils.QueryInt(r, "limit", 20)
	offset := utils.QueryInt(r, "offset", 0)
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := database.DB.Query(r.Context(), `
		SELECT id, name, avatar, xp, level,
			RANK() OVER (ORDER BY xp DESC)
		FROM users
		WHERE deleted_at IS NULL
		ORDER BY xp DESC, created_at ASC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de récupérer le classement", err)
		return
	}
	defer rows.Close()

	entries := []*model.LeaderboardEntry{}
	for rows.Next() {
		e, err := scanner.ScanLeaderboardEntry(rows)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "lecture du classement impossible", err)
			return
		}
		entries = append(entries, e)
	}

	utils.Success(w, entries)
}

// GetUserRank retourne le rang et le percentile d'un utilisateur
func GetUserRank(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	var rank model.UserRank
	err := database.DB.QueryRow(r.Context(), `
		SELECT r.id, r.rank, r.xp, r.total
		FROM (
			SELECT id, xp,
				RANK() OVER (ORDER BY xp DESC) AS rank,
				COUNT(*) OVER () AS total
			FROM users
			WHERE deleted_at IS NULL
		) r
		WHERE r.id = $1`, userID,
	).Scan(&rank.UserID, &rank.Rank, &rank.Xp, &rank.TotalUsers)
	if err != nil {
		utils.ErrorSimple(w, http.StatusNotFound, "utilisateur introuvable")
		return
	}

	if rank.TotalUsers > 0 {
		rank.Percentile = float64(rank.Rank) / float64(rank.TotalUsers) * 100
	}

	utils.Success(w, rank)
}
