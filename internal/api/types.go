package api

import "github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/model"

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by a successful login
type LoginResponse struct {
	Token string        `json:"token"`
	User  model.Profile `json:"user"`
}

// Quiz is a quiz the logged-in user can host
type Quiz struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	QuestionCount int    `json:"questionCount"`
}

// CreateSessionRequest is the request body for opening a session
type CreateSessionRequest struct {
	QuizID string `json:"quizId"`
}

// SessionResponse carries the pin issued for a new session
type SessionResponse struct {
	Pin string `json:"pin"`
}

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status string `json:"status"`
}
