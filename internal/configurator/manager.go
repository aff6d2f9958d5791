package configurator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/configurator-backend/internal/drafts"
	"github.com/angelmondragon/configurator-backend/internal/pricing"
	pkgerrors "github.com/angelmondragon/configurator-backend/pkg/errors"
	"github.com/angelmondragon/configurator-backend/pkg/logger"
	"github.com/angelmondragon/configurator-backend/pkg/metrics"
	"github.com/google/uuid"
)

var errSessionClosed = pkgerrors.New(pkgerrors.CodeStateConflict, "configuration session closed")

// ManagerParams wires the collaborators shared by every session.
type ManagerParams struct {
	Catalog           CatalogLoader
	Drafts            drafts.Service
	TermPreferences   pricing.TermPreferences
	DefaultTermMonths int
	Metrics           *metrics.ConfiguratorMetrics
	Logger            *logger.Logger
}

// CreateInput starts a session. DraftID takes precedence over ModelID. ClientID scopes
// the remembered financing term; the session id is used when it is empty.
type CreateInput struct {
	ModelID  uuid.UUID
	DraftID  uuid.UUID
	ClientID string
}

// Manager creates, finds and closes configuration sessions.
type Manager struct {
	params ManagerParams

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

func NewManager(params ManagerParams) (*Manager, error) {
	if params.Catalog == nil {
		return nil, errors.New("catalog loader required")
	}
	if params.Drafts == nil {
		return nil, errors.New("drafts service required")
	}
	if !pricing.IsOfferedTerm(params.DefaultTermMonths) {
		params.DefaultTermMonths = pricing.OptionFor(params.DefaultTermMonths).Months
	}
	return &Manager{params: params, sessions: map[uuid.UUID]*Session{}}, nil
}

// Create registers a new session and loads its model or draft. The session is closed
// again when that initial load fails.
func (m *Manager) Create(ctx context.Context, in CreateInput) (*Session, *ResumeOutcome, error) {
	if in.ModelID == uuid.Nil && in.DraftID == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "model_id or draft_id is required")
	}

	id := uuid.New()
	scope := strings.TrimSpace(in.ClientID)
	if scope == "" {
		scope = id.String()
	}
	session := &Session{
		id:         id,
		scope:      scope,
		loader:     m.params.Catalog,
		drafts:     m.params.Drafts,
		prefs:      m.params.TermPreferences,
		metrics:    m.params.Metrics,
		logg:       m.params.Logger,
		nav:        NewNavigator(),
		termMonths: m.initialTerm(ctx, scope),
		touchedAt:  time.Now(),
	}

	m.mu.Lock()
	m.sessions[id] = session
	m.mu.Unlock()

	if in.DraftID != uuid.Nil {
		outcome, err := session.ResumeDraft(ctx, in.DraftID)
		if err != nil {
			m.Close(id)
			return nil, nil, err
		}
		return session, &outcome, nil
	}
	if _, err := session.LoadModel(ctx, in.ModelID); err != nil {
		m.Close(id)
		return nil, nil, err
	}
	return session, nil, nil
}

func (m *Manager) initialTerm(ctx context.Context, scope string) int {
	if m.params.TermPreferences == nil {
		return m.params.DefaultTermMonths
	}
	months, ok, err := m.params.TermPreferences.Last(ctx, scope)
	if err != nil {
		if m.params.Logger != nil {
			m.params.Logger.WarnErr(ctx, "term_preference.load_failed", err)
		}
		return m.params.DefaultTermMonths
	}
	if !ok || !pricing.IsOfferedTerm(months) {
		return m.params.DefaultTermMonths
	}
	return months
}

// Get returns the session or NOT_FOUND.
func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	session, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "configuration session not found").
			WithDetails(map[string]any{"session_id": id})
	}
	return session, nil
}

// Close tears the session down; in-flight loads for it are discarded.
func (m *Manager) Close(id uuid.UUID) bool {
	m.mu.Lock()
	session, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		session.close()
	}
	return ok
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CloseIdle closes sessions untouched since before cutoff and returns how many closed.
func (m *Manager) CloseIdle(cutoff time.Time) int {
	m.mu.RLock()
	stale := make([]uuid.UUID, 0)
	for id, session := range m.sessions {
		if session.idleSince().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	m.mu.RUnlock()

	closed := 0
	for _, id := range stale {
		if m.Close(id) {
			closed++
		}
	}
	return closed
}

// RunJanitor closes sessions idle for longer than idle every interval until ctx ends.
func (m *Manager) RunJanitor(ctx context.Context, interval, idle time.Duration) {
	if interval <= 0 || idle <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := m.CloseIdle(now.Add(-idle)); n > 0 && m.params.Logger != nil {
				m.params.Logger.Info(m.params.Logger.WithField(ctx, "closed", n), "configurator.idle_sessions_closed")
			}
		}
	}
}
