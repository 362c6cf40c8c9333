package api

import (
	"net/http"

	"github.com/fatih/color"
	"github.com/gorilla/mux"

	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/handler"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/middleware"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/utils"
)

func SetupRouter() http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.OptionalAuth)

	authenticatedRoutes := r.PathPrefix("/").Subrouter()
	authenticatedRoutes.Use(middleware.AuthMiddleware)
	authenticatedRoutes.Use(middleware.LoggerMiddleware)

	// Root - API documentation
	r.HandleFunc("/", handler.RootHandler).Methods(http.MethodGet)

	// Auth
	r.HandleFunc("/auth/signup", handler.Signup).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", handler.Login).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/auth/logout", handler.Logout).Methods(http.MethodPost)

	// Users
	r.HandleFunc("/users", handler.GetUsers).Methods(http.MethodGet)
	r.HandleFunc("/users/{id}", handler.GetUser).Methods(http.MethodGet)
	authenticatedRoutes.HandleFunc("/users/{id}", handler.UpdateUser).Methods(http.MethodPut, http.MethodPatch)
	authenticatedRoutes.HandleFunc("/users/{id}", handler.DeleteUser).Methods(http.MethodDelete)

	// Social graph
	authenticatedRoutes.HandleFunc("/users/{id}/follow", handler.FollowUser).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/users/{id}/follow", handler.UnfollowUser).Methods(http.MethodDelete)
	r.HandleFunc("/users/{id}/followers", handler.GetFollowers).Methods(http.MethodGet)
	r.HandleFunc("/users/{id}/following", handler.GetFollowing).Methods(http.MethodGet)

	// Skills
	r.HandleFunc("/skills", handler.GetSkills).Methods(http.MethodGet)
	authenticatedRoutes.HandleFunc("/users/me/skills", handler.AddSkill).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/users/{id}/skills/{skillId}/endorse", handler.EndorseSkill).Methods(http.MethodPost)

	// XP
	r.HandleFunc("/users/{id}/xp/history", handler.GetXpHistory).Methods(http.MethodGet)
	authenticatedRoutes.HandleFunc("/users/{id}/xp/award", handler.AwardXp).Methods(http.MethodPost)

	// Projects
	r.HandleFunc("/projects", handler.GetProjects).Methods(http.MethodGet)
	r.HandleFunc("/projects/{id}", handler.GetProject).Methods(http.MethodGet)
	authenticatedRoutes.HandleFunc("/projects", handler.CreateProject).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/projects/{id}", handler.DeleteProject).Methods(http.MethodDelete)

	// Ideas
	r.HandleFunc("/ideas", handler.GetIdeas).Methods(http.MethodGet)
	r.HandleFunc("/ideas/{id}", handler.GetIdea).Methods(http.MethodGet)
	authenticatedRoutes.HandleFunc("/ideas", handler.CreateIdea).Methods(http.MethodPost)

	// Challenges
	r.HandleFunc("/challenges", handler.GetChallenges).Methods(http.MethodGet)
	r.HandleFunc("/challenges/{id}", handler.GetChallengeById).Methods(http.MethodGet)
	authenticatedRoutes.HandleFunc("/challenges", handler.CreateChallenge).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/challenges/{id}/complete", handler.CompleteChallenge).Methods(http.MethodPost)

	// Engagement (générique par type d'entité)
	authenticatedRoutes.HandleFunc("/likes/{entityType}/{entityId}", handler.LikeEntity).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/likes/{entityType}/{entityId}", handler.UnlikeEntity).Methods(http.MethodDelete)
	r.HandleFunc("/likes/{entityType}/{entityId}", handler.GetLikeStatus).Methods(http.MethodGet)
	authenticatedRoutes.HandleFunc("/reactions/{entityType}/{entityId}", handler.React).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/reactions/{entityType}/{entityId}", handler.Unreact).Methods(http.MethodDelete)
	r.HandleFunc("/reactions/{entityType}/{entityId}", handler.GetReactions).Methods(http.MethodGet)
	authenticatedRoutes.HandleFunc("/comments/{entityType}/{entityId}", handler.CreateComment).Methods(http.MethodPost)
	r.HandleFunc("/comments/{entityType}/{entityId}", handler.GetComments).Methods(http.MethodGet)

	// Leaderboard
	r.HandleFunc("/leaderboard", handler.GetLeaderboard).Methods(http.MethodGet)
	r.HandleFunc("/leaderboard/users/{userId}", handler.GetUserRank).Methods(http.MethodGet)

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.LogError("404 Not Found: %s %s", r.Method, r.URL.Path)
		color.Yellow("[404] %s %s (route non trouvée)", r.Method, r.URL.Path)
		http.Error(w, "Route not found", http.StatusNotFound)
	})

	return r
}
