package utils

import (
	"encoding/json"
	"net/http"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// Success retourne une réponse 200 avec les données
func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, APIResponse{Success: true, Data: data})
}

// Error retourne une réponse d'erreur avec le détail loggé côté serveur
func Error(w http.ResponseWriter, status int, msg string, err error) {
	if err != nil {
		LogError("[%d] %s: %v", status, msg, err)
	} else {
		LogError("[%d] %s", status, msg)
	}
	JSON(w, status, APIResponse{Success: false, Error: msg})
}

// ErrorSimple retourne une réponse d'erreur sans erreur sous-jacente
func ErrorSimple(w http.ResponseWriter, status int, msg string) {
	Error(w, status, msg, nil)
}

// Message retourne une réponse 200 avec un simple message
func Message(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusOK, APIResponse{Success: true, Message: msg})
}
