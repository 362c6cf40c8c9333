package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/engine"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/middleware"
	model "github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/models"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/utils"
)

type AwardXpRequest struct {
	Amount   int     `json:"amount"`
	Reason   string  `json:"reason"`
	SourceID *string `json:"sourceId,omitempty"`
}

// AwardXp attribue un delta d'XP arbitraire (réservé aux administrateurs).
// Les montants négatifs sont des corrections : nouvelles entrées du journal,
// jamais des éditions.
func AwardXp(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.RequireAdmin(r); err != nil {
		utils.Error(w, http.StatusForbidden, "réservé aux administrateurs", err)
		return
	}

	userID := mux.Vars(r)["id"]

	var req AwardXpRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, "corps JSON invalide", err)
		return
	}

	award, err := Engine.AwardXp(r.Context(), userID, req.Amount, req.Reason, model.XpSourceAdmin, req.SourceID)
	if err != nil {
		engineError(w, err)
		return
	}

	utils.Success(w, award)
}

// GetXpHistory lit le journal XP d'un utilisateur, paginé par curseur.
// Filtres optionnels from/to (RFC 3339) sur la date de création.
func GetXpHistory(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]

	q := engine.HistoryQuery{
		Limit:  utils.QueryInt(r, "limit", 20),
		Cursor: r.URL.Query().Get("cursor"),
	}

	if raw := r.URL.Query().Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.ErrorSimple(w, http.StatusBadRequest, "paramètre from invalide (RFC 3339 attendu)")
			return
		}
		q.From = &t
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.ErrorSimple(w, http.StatusBadRequest, "paramètre to invalide (RFC 3339 attendu)")
			return
		}
		q.To = &t
	}

	page, err := Engine.XpHistory(r.Context(), userID, q)
	if err != nil {
		engineError(w, err)
		return
	}

	utils.Success(w, page)
}
