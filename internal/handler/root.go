package handler

import (
	"net/http"

	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/utils"
)

// RootHandler affiche toutes les routes disponibles de l'API
func RootHandler(w http.ResponseWriter, r *http.Request) {
	routes := map[string]interface{}{
		"name":    "TechSphere API",
		"version": "1.0.0",
		"status":  "running",
		"routes": map[string]interface{}{
			"auth": []map[string]string{
				{"method": "POST", "path": "/auth/signup", "description": "Inscription utilisateur"},
				{"method": "POST", "path": "/auth/login", "description": "Connexion utilisateur"},
				{"method": "POST", "path": "/auth/logout", "description": "Déconnexion utilisateur"},
			},
			"users": []map[string]string{
				{"method": "GET", "path": "/users", "description": "Lister les profils (triés par XP)"},
				{"method": "GET", "path": "/users/{id}", "description": "Profil complet (graphe et compétences inclus)"},
				{"method": "PUT", "path": "/users/{id}", "description": "Mettre à jour un profil"},
				{"method": "DELETE", "path": "/users/{id}", "description": "Supprimer un profil (soft delete)"},
				{"method": "POST", "path": "/users/{id}/follow", "description": "Suivre un utilisateur"},
				{"method": "DELETE", "path": "/users/{id}/follow", "description": "Ne plus suivre un utilisateur"},
				{"method": "GET", "path": "/users/{id}/followers", "description": "Suiveurs d'un utilisateur"},
				{"method": "GET", "path": "/users/{id}/following", "description": "Utilisateurs suivis"},
				{"method": "POST", "path": "/users/me/skills", "description": "Ajouter une compétence à son profil"},
				{"method": "POST", "path": "/users/{id}/skills/{skillId}/endorse", "description": "Endorser une compétence"},
				{"method": "GET", "path": "/users/{id}/xp/history", "description": "Journal XP (curseur, filtres de dates)"},
				{"method": "POST", "path": "/users/{id}/xp/award", "description": "Attribution d'XP (admin)"},
			},
			"content": []map[string]string{
				{"method": "GET", "path": "/projects", "description": "Lister les projets"},
				{"method": "POST", "path": "/projects", "description": "Publier un projet (+XP)"},
				{"method": "GET", "path": "/projects/{id}", "description": "Projet par id"},
				{"method": "DELETE", "path": "/projects/{id}", "description": "Supprimer un projet"},
				{"method": "GET", "path": "/ideas", "description": "Lister les idées"},
				{"method": "POST", "path": "/ideas", "description": "Partager une idée (+XP)"},
				{"method": "GET", "path": "/ideas/{id}", "description": "Idée par id"},
				{"method": "GET", "path": "/challenges", "description": "Lister les challenges actifs"},
				{"method": "POST", "path": "/challenges", "description": "Créer un challenge"},
				{"method": "GET", "path": "/challenges/{id}", "description": "Challenge par id"},
				{"method": "POST", "path": "/challenges/{id}/complete", "description": "Compléter un challenge (+points)"},
			},
			"engagement": []map[string]string{
				{"method": "POST", "path": "/likes/{entityType}/{entityId}", "description": "Liker une entité"},
				{"method": "DELETE", "path": "/likes/{entityType}/{entityId}", "description": "Retirer un like"},
				{"method": "GET", "path": "/likes/{entityType}/{entityId}", "description": "Statut des likes"},
				{"method": "POST", "path": "/reactions/{entityType}/{entityId}", "description": "Réagir à une entité"},
				{"method": "DELETE", "path": "/reactions/{entityType}/{entityId}", "description": "Retirer une réaction"},
				{"method": "GET", "path": "/reactions/{entityType}/{entityId}", "description": "Réactions par type"},
				{"method": "POST", "path": "/comments/{entityType}/{entityId}", "description": "Commenter une entité (+XP pour l'auteur)"},
				{"method": "GET", "path": "/comments/{entityType}/{entityId}", "description": "Commentaires d'une entité"},
			},
			"skills": []map[string]string{
				{"method": "GET", "path": "/skills", "description": "Catalogue de compétences"},
			},
			"leaderboard": []map[string]string{
				{"method": "GET", "path": "/leaderboard", "description": "Classement global par XP"},
				{"method": "GET", "path": "/leaderboard/users/{userId}", "description": "Rang et percentile d'un utilisateur"},
			},
		},
	}

	utils.Success(w, routes)
}
