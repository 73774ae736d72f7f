package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type ChatRequest struct {
	UserId   string `json:"user_id" validate:"required"`
	Username string `json:"username" validate:"required"`
	Message  string `json:"message" validate:"required"`
	History  string `json:"history"`
}

type GraphRequest struct {
	UserId     string `json:"user_id" validate:"required"`
	Message    string `json:"message" validate:"required"`
	Difficulty int    `json:"difficulty"`
}

// SummaryRequest is also the body of the combined summary + graph endpoint.
type SummaryRequest struct {
	UserId     string `json:"user_id" validate:"required"`
	Message    string `json:"message" validate:"required"`
	Difficulty int    `json:"difficulty"`
}

type QuizRequest struct {
	UserId        string `json:"user_id" validate:"required"`
	Username      string `json:"username" validate:"required"`
	NoOfQuestions int    `json:"no_of_questions" validate:"required,min=1,max=50"`
	Topic         string `json:"topic"`
}

type ResearchRequest struct {
	UserId   string `json:"user_id" validate:"required"`
	Username string `json:"username" validate:"required"`
	Query    string `json:"query" validate:"required"`
}

type QuerySourceResponse struct {
	Source     string  `json:"source"`
	Page       int     `json:"page"`
	ChunkIndex int     `json:"chunk_index"`
	Distance   float32 `json:"distance"`
}

type QueryResponse struct {
	Id          uuid.UUID             `json:"id"`
	UserId      string                `json:"user_id"`
	Kind        string                `json:"kind"`
	Message     string                `json:"message"`
	Response    string                `json:"response"`
	Sources     []QuerySourceResponse `json:"sources,omitempty"`
	DateCreated time.Time             `json:"date_created"`
}

type SummaryGraphContent struct {
	Summary       string `json:"summary"`
	GraphNotation string `json:"graph_notation"`
}

type SummaryGraphResponse struct {
	UserId      string              `json:"user_id"`
	Message     string              `json:"message"`
	Response    SummaryGraphContent `json:"response"`
	DateCreated time.Time           `json:"date_created"`
}

type QuizResponse struct {
	UserId      string          `json:"user_id"`
	Response    json.RawMessage `json:"response"`
	DateCreated time.Time       `json:"date_created"`
}

type ResearchResponse struct {
	Response json.RawMessage `json:"response"`
}
