// Package session keeps the logged-in user's token on the device.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/pharmacy_shop/internal/apperr"
	"github.com/Skotchmaster/pharmacy_shop/internal/models"
	"github.com/Skotchmaster/pharmacy_shop/internal/storefront/storage"
	"github.com/Skotchmaster/pharmacy_shop/pkg/tokens"
)

const StorageKey = "session"

var errLoginRequired = apperr.New(apperr.ErrUnauthenticated, "Please log in first")

type Session struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

type Manager struct {
	Store storage.Storage
	Now   func() time.Time
}

func NewManager(store storage.Storage) *Manager {
	return &Manager{Store: store, Now: time.Now}
}

func (m *Manager) Save(ctx context.Context, s Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}
	if err := m.Store.Set(ctx, StorageKey, data); err != nil {
		return fmt.Errorf("session: save: %w", err)
	}
	return nil
}

// Load returns the stored session, or nil when nobody is logged in.
func (m *Manager) Load(ctx context.Context) (*Session, error) {
	data, err := m.Store.Get(ctx, StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: load: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("session: decode: %w", err)
	}
	return &s, nil
}

func (m *Manager) Clear(ctx context.Context) error {
	return m.Store.Remove(ctx, StorageKey)
}

// Expired reads exp from the token without the signing secret; the server
// still has the final say on every request.
func (m *Manager) Expired(s *Session) bool {
	claims, err := tokens.ClaimsUnverified(s.Token)
	if err != nil || claims.ExpiresAt == nil {
		return true
	}
	return !m.Now().Before(claims.ExpiresAt.Time)
}

// Require returns the current session if it holds an unexpired token.
func (m *Manager) Require(ctx context.Context) (*Session, error) {
	s, err := m.Load(ctx)
	if err != nil {
		return nil, err
	}
	if s == nil || s.Token == "" {
		return nil, errLoginRequired
	}
	if m.Expired(s) {
		return nil, apperr.New(apperr.ErrUnauthenticated, "Session expired, please log in again")
	}
	return s, nil
}
