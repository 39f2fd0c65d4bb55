package handler_test

import (
	"context"
	"sync"
	"time"

	"payments/internal/domain"
	"payments/internal/provider"
	"payments/internal/repository"
)

// stubRepository is a minimal in-memory PaymentRepository.
type stubRepository struct {
	mu       sync.Mutex
	payments map[string]*domain.Payment
	err      error
}

func newStubRepository() *stubRepository {
	return &stubRepository{payments: make(map[string]*domain.Payment)}
}

func (r *stubRepository) Insert(ctx context.Context, p *domain.Payment) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.payments[p.PaymentID]; ok {
		return repository.ErrConflict
	}
	copy := *p
	r.payments[p.PaymentID] = &copy
	return nil
}

func (r *stubRepository) FindByPaymentID(ctx context.Context, id string) (*domain.Payment, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *p
	return &copy, nil
}

func (r *stubRepository) UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Status = status
	return nil
}

func (r *stubRepository) CompareAndSetStatus(ctx context.Context, id string, current, next domain.PaymentStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok || p.Status != current {
		return false, nil
	}
	p.Status = next
	return true, nil
}

// stubLock grants each key once.
type stubLock struct {
	mu   sync.Mutex
	held map[string]bool
	err  error
}

func newStubLock() *stubLock {
	return &stubLock{held: make(map[string]bool)}
}

func (l *stubLock) TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

func (l *stubLock) Release(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}

// stubGateway accepts every submission.
type stubGateway struct {
	status   domain.PaymentStatus
	queryErr error
}

func (g *stubGateway) Name() string { return "stub" }

func (g *stubGateway) Submit(ctx context.Context, req provider.SubmissionRequest) (*provider.SubmissionResult, error) {
	return &provider.SubmissionResult{PaymentID: req.PaymentID, Status: domain.PaymentStatusProcessing}, nil
}

func (g *stubGateway) QueryStatus(ctx context.Context, id string) (*provider.StatusResult, error) {
	if g.queryErr != nil {
		return nil, g.queryErr
	}
	status := g.status
	if status == "" {
		status = domain.PaymentStatusProcessing
	}
	return &provider.StatusResult{PaymentID: id, Status: status}, nil
}
