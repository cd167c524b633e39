package service

import (
	"context"
	"sync"

	"legal-assistant-be/internal/entity"
	"legal-assistant-be/internal/repository/contract"
	"legal-assistant-be/internal/repository/specification"
	"legal-assistant-be/internal/repository/unitofwork"
	"legal-assistant-be/pkg/aichat"
	"legal-assistant-be/pkg/events"

	"github.com/google/uuid"
)

// memoryDB backs the fake unit of work; writes inside a transaction are applied immediately
type memoryDB struct {
	mu        sync.Mutex
	sessions  []*entity.ChatSession
	messages  []*entity.ChatMessage
	commits   int
	rollbacks int
}

type fakeFactory struct{ db *memoryDB }

func (f fakeFactory) NewUnitOfWork(context.Context) unitofwork.UnitOfWork {
	return &fakeUnitOfWork{db: f.db}
}

type fakeUnitOfWork struct {
	db     *memoryDB
	active bool
}

func (u *fakeUnitOfWork) Begin(context.Context) error {
	u.active = true
	return nil
}

func (u *fakeUnitOfWork) Commit() error {
	u.active = false
	u.db.mu.Lock()
	u.db.commits++
	u.db.mu.Unlock()
	return nil
}

func (u *fakeUnitOfWork) Rollback() error {
	if !u.active {
		return nil
	}
	u.active = false
	u.db.mu.Lock()
	u.db.rollbacks++
	u.db.mu.Unlock()
	return nil
}

func (u *fakeUnitOfWork) ChatSessionRepository() contract.ChatSessionRepository {
	return fakeSessionRepo{db: u.db}
}

func (u *fakeUnitOfWork) ChatMessageRepository() contract.ChatMessageRepository {
	return fakeMessageRepo{db: u.db}
}

func sessionMatches(s *entity.ChatSession, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch v := spec.(type) {
		case specification.ByExternalID:
			if s.ExternalId != v.ExternalID {
				return false
			}
		case specification.ByUserEmail:
			if s.UserEmail != v.Email {
				return false
			}
		}
	}
	return true
}

type fakeSessionRepo struct{ db *memoryDB }

func (r fakeSessionRepo) Create(_ context.Context, session *entity.ChatSession) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cp := *session
	r.db.sessions = append(r.db.sessions, &cp)
	return nil
}

func (r fakeSessionRepo) Update(_ context.Context, session *entity.ChatSession) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i, s := range r.db.sessions {
		if s.Id == session.Id {
			cp := *session
			r.db.sessions[i] = &cp
		}
	}
	return nil
}

func (r fakeSessionRepo) DeleteAllByUserEmailUnscoped(_ context.Context, email string) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var deleted int64
	kept := r.db.sessions[:0]
	for _, s := range r.db.sessions {
		if s.UserEmail == email {
			deleted++
			continue
		}
		kept = append(kept, s)
	}
	r.db.sessions = kept
	return deleted, nil
}

func (r fakeSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r fakeSessionRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var res []*entity.ChatSession
	for _, s := range r.db.sessions {
		if sessionMatches(s, specs) {
			cp := *s
			res = append(res, &cp)
		}
	}
	return res, nil
}

func (r fakeSessionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

type fakeMessageRepo struct{ db *memoryDB }

func (r fakeMessageRepo) Create(_ context.Context, message *entity.ChatMessage) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cp := *message
	r.db.messages = append(r.db.messages, &cp)
	return nil
}

func (r fakeMessageRepo) DeleteAllByUserEmailUnscoped(_ context.Context, email string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	owned := map[uuid.UUID]bool{}
	for _, s := range r.db.sessions {
		if s.UserEmail == email {
			owned[s.Id] = true
		}
	}
	kept := r.db.messages[:0]
	for _, m := range r.db.messages {
		if !owned[m.ChatSessionId] {
			kept = append(kept, m)
		}
	}
	r.db.messages = kept
	return nil
}

func (r fakeMessageRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var res []*entity.ChatMessage
	for _, m := range r.db.messages {
		match := true
		for _, spec := range specs {
			if v, ok := spec.(specification.ByChatSessionID); ok && m.ChatSessionId != v.ChatSessionID {
				match = false
			}
		}
		if match {
			cp := *m
			res = append(res, &cp)
		}
	}
	return res, nil
}

func (r fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *fakePublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.EventType())
	}
	return types
}

type fakeAI struct {
	mu       sync.Mutex
	requests []aichat.Request
	result   aichat.Result
}

func (f *fakeAI) SendMessage(_ context.Context, req aichat.Request) (aichat.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.result, nil
}
