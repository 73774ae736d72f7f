package entity

import (
	"time"

	"github.com/google/uuid"
)

// QueryKind is what produced a stored response.
type QueryKind string

const (
	QueryKindChat         QueryKind = "chat"
	QueryKindGraph        QueryKind = "graph"
	QueryKindSummary      QueryKind = "summary"
	QueryKindSummaryGraph QueryKind = "summary_graph"
)

// QuerySource is a retrieved chunk that fed an answer.
type QuerySource struct {
	Source     string  `json:"source"`
	Page       int     `json:"page"`
	ChunkIndex int     `json:"chunk_index"`
	Distance   float32 `json:"distance"`
}

type Query struct {
	Id        uuid.UUID
	UserId    string
	Kind      QueryKind
	Message   string
	Response  string
	Sources   []QuerySource
	CreatedAt time.Time
}
