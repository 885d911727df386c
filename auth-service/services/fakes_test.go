package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"restaurant-backend/shared/apperr"
	"restaurant-backend/shared/database/models"
	"restaurant-backend/shared/database/models/auth"
	"restaurant-backend/shared/utils/query"
)

type memoryUsers struct {
	mu           sync.Mutex
	byID         map[int64]*models.User
	nextID       int64
	lastLoginErr error
	findErr      error
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byID: map[int64]*models.User{}, nextID: 1}
}

func (m *memoryUsers) add(u models.User) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == 0 {
		u.ID = m.nextID
	}
	if u.ID >= m.nextID {
		m.nextID = u.ID + 1
	}
	m.byID[u.ID] = &u
	return &u
}

func (m *memoryUsers) FindByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, u := range m.byID {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.New(apperr.UserNotFound, "User not found")
}

func (m *memoryUsers) FindByID(_ context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	u, ok := m.byID[id]
	if !ok {
		return nil, apperr.New(apperr.UserNotFound, "User not found")
	}
	cp := *u
	return &cp, nil
}

func (m *memoryUsers) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := m.FindByUsername(ctx, username)
	if apperr.KindOf(err) == apperr.UserNotFound {
		return false, nil
	}
	return err == nil, err
}

func (m *memoryUsers) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user.ID = m.nextID
	m.nextID++
	cp := *user
	m.byID[user.ID] = &cp
	return nil
}

func (m *memoryUsers) Update(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[user.ID]; !ok {
		return apperr.New(apperr.UserNotFound, "User not found")
	}
	cp := *user
	m.byID[user.ID] = &cp
	return nil
}

func (m *memoryUsers) UpdateLastLogin(_ context.Context, id int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastLoginErr != nil {
		return m.lastLoginErr
	}
	if u, ok := m.byID[id]; ok {
		u.LastLogin = &at
	}
	return nil
}

func (m *memoryUsers) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return apperr.New(apperr.UserNotFound, "User not found")
	}
	delete(m.byID, id)
	return nil
}

func (m *memoryUsers) List(_ context.Context, params query.Params) ([]models.User, int64, error) {
	page, limit := params.Page, params.Limit
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]models.User, 0, len(m.byID))
	for _, u := range m.byID {
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	start := (page - 1) * limit
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

type memoryLedger struct {
	mu      sync.Mutex
	revoked map[string]*auth.RevokedToken
	err     error
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{revoked: map[string]*auth.RevokedToken{}}
}

func (l *memoryLedger) Record(_ context.Context, token *auth.RevokedToken) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	if _, ok := l.revoked[token.TokenID]; ok {
		return apperr.New(apperr.AlreadyRevoked, "Token already revoked")
	}
	cp := *token
	l.revoked[token.TokenID] = &cp
	return nil
}

func (l *memoryLedger) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return false, l.err
	}
	_, ok := l.revoked[tokenID]
	return ok, nil
}

// purgeBefore drops rows the way RevocationLedger.PurgeExpired does: expires_at < cutoff.
func (l *memoryLedger) purgeBefore(cutoff time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, token := range l.revoked {
		if token.ExpiresAt.Before(cutoff) {
			delete(l.revoked, id)
		}
	}
}
