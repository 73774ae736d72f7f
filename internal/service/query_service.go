// FILE: internal/service/query_service.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/PinsaraPerera/intellihack-backend/internal/dto"
	"github.com/PinsaraPerera/intellihack-backend/internal/entity"
	"github.com/PinsaraPerera/intellihack-backend/internal/pkg/logger"
	"github.com/PinsaraPerera/intellihack-backend/internal/pkg/serverutils"
	"github.com/PinsaraPerera/intellihack-backend/internal/repository/specification"
	"github.com/PinsaraPerera/intellihack-backend/internal/repository/unitofwork"
	"github.com/PinsaraPerera/intellihack-backend/pkg/agent"
	"github.com/PinsaraPerera/intellihack-backend/pkg/generator"
	"github.com/PinsaraPerera/intellihack-backend/pkg/vectorstore"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// VectorStoreLoader resolves the vector store for a session.
type VectorStoreLoader interface {
	Load(ctx context.Context, sessionID, userIdentity string) (*vectorstore.VectorStore, error)
}

// ContentGenerator produces answers and study artifacts.
type ContentGenerator interface {
	Answer(ctx context.Context, retrieved, question, history string) (string, error)
	Graph(ctx context.Context, scenario string, difficulty generator.Difficulty) (string, error)
	Summary(ctx context.Context, content string, difficulty generator.Difficulty) (string, error)
}

type AgentClient interface {
	Quiz(ctx context.Context, req agent.QuizRequest) (json.RawMessage, error)
	Research(ctx context.Context, req agent.ResearchRequest) (json.RawMessage, error)
}

type IQueryService interface {
	Chat(ctx context.Context, sessionId string, req *dto.ChatRequest) (*dto.QueryResponse, error)
	Graph(ctx context.Context, req *dto.GraphRequest) (*dto.QueryResponse, error)
	Summary(ctx context.Context, req *dto.SummaryRequest) (*dto.QueryResponse, error)
	SummaryGraph(ctx context.Context, req *dto.SummaryRequest) (*dto.SummaryGraphResponse, error)
	History(ctx context.Context, userId string, limit int) ([]*dto.QueryResponse, error)
	Quiz(ctx context.Context, req *dto.QuizRequest) (*dto.QuizResponse, error)
	Research(ctx context.Context, req *dto.ResearchRequest) (*dto.ResearchResponse, error)
}

type queryService struct {
	uowFactory unitofwork.RepositoryFactory
	loader     VectorStoreLoader
	generator  ContentGenerator
	agent      AgentClient
	logger     logger.ILogger
}

func NewQueryService(
	uowFactory unitofwork.RepositoryFactory,
	loader VectorStoreLoader,
	generator ContentGenerator,
	agent AgentClient,
	logger logger.ILogger,
) IQueryService {
	return &queryService{
		uowFactory: uowFactory,
		loader:     loader,
		generator:  generator,
		agent:      agent,
		logger:     logger,
	}
}

func (s *queryService) Chat(ctx context.Context, sessionId string, req *dto.ChatRequest) (*dto.QueryResponse, error) {
	vs, err := s.loader.Load(ctx, sessionId, req.Username)
	if err != nil {
		return nil, err
	}

	docs, err := vectorstore.RetrieveDocuments(ctx, vs, req.Message, vectorstore.DefaultTopK, vectorstore.DefaultKeep)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}

	answer, err := s.generator.Answer(ctx, vectorstore.JoinContext(docs), req.Message, req.History)
	if err != nil {
		return nil, err
	}

	sources := make([]entity.QuerySource, len(docs))
	for i, d := range docs {
		sources[i] = entity.QuerySource{
			Source:     d.Source,
			Page:       d.Page,
			ChunkIndex: d.ChunkIndex,
			Distance:   d.Distance,
		}
	}

	return s.save(ctx, &entity.Query{
		UserId:   req.UserId,
		Kind:     entity.QueryKindChat,
		Message:  req.Message,
		Response: answer,
		Sources:  sources,
	})
}

func (s *queryService) Graph(ctx context.Context, req *dto.GraphRequest) (*dto.QueryResponse, error) {
	notation, err := s.generator.Graph(ctx, req.Message, generator.Difficulty(req.Difficulty))
	if err != nil {
		return nil, err
	}
	return s.save(ctx, &entity.Query{
		UserId:   req.UserId,
		Kind:     entity.QueryKindGraph,
		Message:  req.Message,
		Response: notation,
	})
}

func (s *queryService) Summary(ctx context.Context, req *dto.SummaryRequest) (*dto.QueryResponse, error) {
	summary, err := s.generator.Summary(ctx, req.Message, generator.Difficulty(req.Difficulty))
	if err != nil {
		return nil, err
	}
	return s.save(ctx, &entity.Query{
		UserId:   req.UserId,
		Kind:     entity.QueryKindSummary,
		Message:  req.Message,
		Response: summary,
	})
}

// SummaryGraph runs both generators concurrently and stores them as a single record.
func (s *queryService) SummaryGraph(ctx context.Context, req *dto.SummaryRequest) (*dto.SummaryGraphResponse, error) {
	difficulty := generator.Difficulty(req.Difficulty)

	var summary, notation string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = s.generator.Summary(gctx, req.Message, difficulty)
		return err
	})
	g.Go(func() error {
		var err error
		notation, err = s.generator.Graph(gctx, req.Message, difficulty)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	saved, err := s.save(ctx, &entity.Query{
		UserId:   req.UserId,
		Kind:     entity.QueryKindSummaryGraph,
		Message:  req.Message,
		Response: summary + notation,
	})
	if err != nil {
		return nil, err
	}

	return &dto.SummaryGraphResponse{
		UserId:  req.UserId,
		Message: req.Message,
		Response: dto.SummaryGraphContent{
			Summary:       summary,
			GraphNotation: notation,
		},
		DateCreated: saved.DateCreated,
	}, nil
}

// History returns the user's latest queries in chronological order.
func (s *queryService) History(ctx context.Context, userId string, limit int) ([]*dto.QueryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	queries, err := uow.QueryRepository().FindAll(ctx,
		specification.ByUserID{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit},
	)
	if err != nil {
		return nil, err
	}
	if len(queries) == 0 {
		return nil, fmt.Errorf("%w: history for user with id %s", serverutils.ErrNotFound, userId)
	}

	res := make([]*dto.QueryResponse, len(queries))
	for i, q := range queries {
		res[len(queries)-1-i] = toQueryResponse(q)
	}
	return res, nil
}

func (s *queryService) Quiz(ctx context.Context, req *dto.QuizRequest) (*dto.QuizResponse, error) {
	out, err := s.agent.Quiz(ctx, agent.QuizRequest{
		UserID:        req.UserId,
		Username:      req.Username,
		NoOfQuestions: req.NoOfQuestions,
		Topic:         req.Topic,
	})
	if err != nil {
		return nil, err
	}
	return &dto.QuizResponse{
		UserId:      req.UserId,
		Response:    out,
		DateCreated: time.Now().UTC(),
	}, nil
}

func (s *queryService) Research(ctx context.Context, req *dto.ResearchRequest) (*dto.ResearchResponse, error) {
	out, err := s.agent.Research(ctx, agent.ResearchRequest{
		UserID:   req.UserId,
		Username: req.Username,
		Query:    req.Query,
	})
	if err != nil {
		return nil, err
	}
	return &dto.ResearchResponse{Response: out}, nil
}

func (s *queryService) save(ctx context.Context, q *entity.Query) (*dto.QueryResponse, error) {
	q.Id = uuid.New()
	q.CreatedAt = time.Now().UTC()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.QueryRepository().Create(ctx, q); err != nil {
		s.logger.Error("QUERY", "Failed to persist query", map[string]interface{}{
			"user_id": q.UserId,
			"kind":    string(q.Kind),
			"error":   err.Error(),
		})
		return nil, err
	}
	return toQueryResponse(q), nil
}

func toQueryResponse(q *entity.Query) *dto.QueryResponse {
	var sources []dto.QuerySourceResponse
	for _, src := range q.Sources {
		sources = append(sources, dto.QuerySourceResponse{
			Source:     src.Source,
			Page:       src.Page,
			ChunkIndex: src.ChunkIndex,
			Distance:   src.Distance,
		})
	}
	return &dto.QueryResponse{
		Id:          q.Id,
		UserId:      q.UserId,
		Kind:        string(q.Kind),
		Message:     q.Message,
		Response:    q.Response,
		Sources:     sources,
		DateCreated: q.CreatedAt,
	}
}
