package service

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/PinsaraPerera/intellihack-backend/internal/entity"
	"github.com/PinsaraPerera/intellihack-backend/internal/repository/contract"
	"github.com/PinsaraPerera/intellihack-backend/internal/repository/specification"
	"github.com/PinsaraPerera/intellihack-backend/internal/repository/unitofwork"
	"github.com/PinsaraPerera/intellihack-backend/pkg/agent"
	"github.com/PinsaraPerera/intellihack-backend/pkg/events"
	"github.com/PinsaraPerera/intellihack-backend/pkg/generator"
	"github.com/PinsaraPerera/intellihack-backend/pkg/ingest"
	"github.com/PinsaraPerera/intellihack-backend/pkg/vectorstore"
)

// memoryQueryRepository understands the specifications the services use.
type memoryQueryRepository struct {
	mu      sync.Mutex
	queries []*entity.Query
	err     error
}

func (r *memoryQueryRepository) Create(_ context.Context, q *entity.Query) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.queries = append(r.queries, q)
	return nil
}

func (r *memoryQueryRepository) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.Query, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}

	out := make([]*entity.Query, 0, len(r.queries))
	limit := 0
	desc := false
	for _, q := range r.queries {
		keep := true
		for _, s := range specs {
			switch v := s.(type) {
			case specification.ByUserID:
				keep = keep && q.UserId == v.UserID
			case specification.ByKind:
				keep = keep && string(q.Kind) == v.Kind
			}
		}
		if keep {
			out = append(out, q)
		}
	}
	for _, s := range specs {
		switch v := s.(type) {
		case specification.Pagination:
			limit = v.Limit
		case specification.OrderBy:
			desc = v.Desc
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryQueryRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	found, err := r.FindAll(ctx, specs...)
	return int64(len(found)), err
}

func (r *memoryQueryRepository) DeleteAllByUserId(_ context.Context, userId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.queries[:0]
	for _, q := range r.queries {
		if q.UserId != userId {
			kept = append(kept, q)
		}
	}
	r.queries = kept
	return nil
}

type fakeUnitOfWork struct {
	repo *memoryQueryRepository
}

func (u *fakeUnitOfWork) Begin(context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error { return nil }
func (u *fakeUnitOfWork) Rollback() error { return nil }

func (u *fakeUnitOfWork) QueryRepository() contract.QueryRepository { return u.repo }

type fakeRepositoryFactory struct {
	repo *memoryQueryRepository
}

func (f *fakeRepositoryFactory) NewUnitOfWork(context.Context) unitofwork.UnitOfWork {
	return &fakeUnitOfWork{repo: f.repo}
}

// fixedEmbedder maps every text to the same vector, so every document ties.
type fixedEmbedder struct{}

func (fixedEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func (fixedEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	return []float32{1, 0}, nil
}

type fakeLoader struct {
	vs        *vectorstore.VectorStore
	err       error
	sessionID string
	userIdent string
}

func (l *fakeLoader) Load(_ context.Context, sessionID, userIdentity string) (*vectorstore.VectorStore, error) {
	l.sessionID = sessionID
	l.userIdent = userIdentity
	return l.vs, l.err
}

type fakeGenerator struct {
	mu        sync.Mutex
	retrieved string
	history   string
	err       error
}

func (g *fakeGenerator) Answer(_ context.Context, retrieved, question, history string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.retrieved = retrieved
	g.history = history
	return "answer to " + question, g.err
}

func (g *fakeGenerator) Graph(_ context.Context, scenario string, d generator.Difficulty) (string, error) {
	return "graph(" + d.String() + "):" + scenario, g.err
}

func (g *fakeGenerator) Summary(_ context.Context, content string, d generator.Difficulty) (string, error) {
	return "summary(" + d.String() + "):" + content, g.err
}

type fakeAgent struct {
	quiz     agent.QuizRequest
	research agent.ResearchRequest
	err      error
}

func (a *fakeAgent) Quiz(_ context.Context, req agent.QuizRequest) (json.RawMessage, error) {
	a.quiz = req
	return json.RawMessage(`{"questions":[]}`), a.err
}

func (a *fakeAgent) Research(_ context.Context, req agent.ResearchRequest) (json.RawMessage, error) {
	a.research = req
	return json.RawMessage(`"report"`), a.err
}

// fakeBuilder fails with err on every call, or only on the first `failures` calls when set.
type fakeBuilder struct {
	mu       sync.Mutex
	users    []string
	err      error
	failures int
}

func (b *fakeBuilder) Build(_ context.Context, user string) (*ingest.Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users = append(b.users, user)
	if b.err != nil && (b.failures == 0 || len(b.users) <= b.failures) {
		return nil, b.err
	}
	return &ingest.Result{User: user, Prefix: "data/" + user + "/vectorStore", Files: 1, Chunks: 3}, nil
}

func (b *fakeBuilder) calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.users...)
}

type recordingEventPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingEventPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingEventPublisher) published() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}
