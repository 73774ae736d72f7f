package service

import (
	"context"

	"github.com/PinsaraPerera/intellihack-backend/internal/dto"
	"github.com/PinsaraPerera/intellihack-backend/internal/pkg/logger"
	"github.com/PinsaraPerera/intellihack-backend/pkg/vectorstore"
)

// SessionCache is the session-facing side of the vector store loader.
type SessionCache interface {
	ClearSession(ctx context.Context, sessionID string) (bool, error)
	State(ctx context.Context, sessionID string) (vectorstore.SessionState, error)
}

type ISessionService interface {
	Clear(ctx context.Context, sessionId string) (*dto.ClearSessionResponse, error)
	State(ctx context.Context, sessionId string) (*dto.SessionStateResponse, error)
}

type sessionService struct {
	cache  SessionCache
	logger logger.ILogger
}

func NewSessionService(cache SessionCache, logger logger.ILogger) ISessionService {
	return &sessionService{cache: cache, logger: logger}
}

func (s *sessionService) Clear(ctx context.Context, sessionId string) (*dto.ClearSessionResponse, error) {
	cleared, err := s.cache.ClearSession(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("SESSION", "Session cache cleared", map[string]interface{}{
		"session_id": sessionId,
		"cleared":    cleared,
	})
	return &dto.ClearSessionResponse{SessionId: sessionId, Cleared: cleared}, nil
}

func (s *sessionService) State(ctx context.Context, sessionId string) (*dto.SessionStateResponse, error) {
	state, err := s.cache.State(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	return &dto.SessionStateResponse{SessionId: sessionId, State: string(state)}, nil
}
