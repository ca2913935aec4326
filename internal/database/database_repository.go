package database

import (
	"career-ebook-generator/internal/models"
	"context"
	"errors"
	"gorm.io/gorm"
	"sync"
	"time"
)

// ErrSessionNotFound is returned when no session with the requested ID exists.
var ErrSessionNotFound = errors.New("session not found")

// Repository defines data access methods for the per-user session state.
//
// @Summary Interface for session storage operations
type Repository interface {

	// CreateSession stores a new, empty session.
	CreateSession(ctx context.Context, session *models.Session) error

	// FindSession loads the session with the given ID into session.
	//
	// Param id path string true "Session ID"
	FindSession(ctx context.Context, id string, session *models.Session) error

	// SaveSession overwrites name, document and converted artifact of an existing session.
	SaveSession(ctx context.Context, session *models.Session) error

	// DeleteSession removes the session; deleting an unknown session is not an error.
	DeleteSession(ctx context.Context, id string) error

	// DeleteSessionsIdleSince removes every session not updated since the given time
	// and returns how many were removed.
	DeleteSessionsIdleSince(ctx context.Context, since time.Time) (int64, error)
}

// NullRepository is a no-op implementation of the Repository interface.
// Useful for testing or default wiring when no storage is required.
type NullRepository struct{}

func (n *NullRepository) CreateSession(ctx context.Context, session *models.Session) error {
	return nil
}

func (n *NullRepository) FindSession(ctx context.Context, id string, session *models.Session) error {
	return ErrSessionNotFound
}

func (n *NullRepository) SaveSession(ctx context.Context, session *models.Session) error {
	return nil
}

func (n *NullRepository) DeleteSession(ctx context.Context, id string) error {
	return nil
}

func (n *NullRepository) DeleteSessionsIdleSince(ctx context.Context, since time.Time) (int64, error) {
	return 0, nil
}

// ensure NullRepository implements Repository
var _ Repository = &NullRepository{}

// MemoryRepository keeps sessions in process memory. Sessions die with the process.
type MemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
	now      func() time.Time
}

// ensure MemoryRepository implements Repository
var _ Repository = &MemoryRepository{}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sessions: make(map[string]models.Session), now: time.Now}
}

func (m *MemoryRepository) CreateSession(ctx context.Context, session *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	session.CreatedAt = now
	session.UpdatedAt = now
	m.sessions[session.ID] = copySession(*session)
	return nil
}

func (m *MemoryRepository) FindSession(ctx context.Context, id string, session *models.Session) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	*session = copySession(stored)
	return nil
}

func (m *MemoryRepository) SaveSession(ctx context.Context, session *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.sessions[session.ID]
	if !ok {
		return ErrSessionNotFound
	}
	session.CreatedAt = stored.CreatedAt
	session.UpdatedAt = m.now()
	m.sessions[session.ID] = copySession(*session)
	return nil
}

func (m *MemoryRepository) DeleteSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	return nil
}

func (m *MemoryRepository) DeleteSessionsIdleSince(ctx context.Context, since time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed int64
	for id, s := range m.sessions {
		if s.UpdatedAt.Before(since) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// copySession detaches the converted bytes so callers cannot mutate stored state.
func copySession(s models.Session) models.Session {
	if s.Converted != nil {
		s.Converted = append([]byte(nil), s.Converted...)
	}
	return s
}

// GormRepository provides a GORM-based implementation of the Repository interface.
type GormRepository struct {
	*gorm.DB
}

// ensure GormRepository implements Repository
var _ Repository = &GormRepository{}

func (g *GormRepository) CreateSession(ctx context.Context, session *models.Session) error {
	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now

	return g.DB.
		WithContext(ctx).
		Exec("INSERT INTO sessions (id, created_at, updated_at, community_name, document) VALUES (?, ?, ?, ?, ?)",
			session.ID, session.CreatedAt, session.UpdatedAt, session.CommunityName, session.Document).
		Error
}

func (g *GormRepository) FindSession(ctx context.Context, id string, session *models.Session) error {
	err := g.DB.
		WithContext(ctx).
		Where("id = ?", id).
		Take(session).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrSessionNotFound
	}
	return err
}

func (g *GormRepository) SaveSession(ctx context.Context, session *models.Session) error {
	session.UpdatedAt = time.Now()

	result := g.DB.
		WithContext(ctx).
		Exec("UPDATE sessions SET community_name = ?, document = ?, generated = ?, converted = ?, updated_at = ? WHERE id = ?",
			session.CommunityName, session.Document, session.Generated, session.Converted, session.UpdatedAt, session.ID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (g *GormRepository) DeleteSession(ctx context.Context, id string) error {
	return g.DB.
		WithContext(ctx).
		Exec("DELETE FROM sessions WHERE id = ?", id).
		Error
}

func (g *GormRepository) DeleteSessionsIdleSince(ctx context.Context, since time.Time) (int64, error) {
	result := g.DB.
		WithContext(ctx).
		Exec("DELETE FROM sessions WHERE updated_at < ?", since)
	return result.RowsAffected, result.Error
}
