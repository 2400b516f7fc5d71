package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/angelmondragon/shopdesk-backend/pkg/config"
	redisclient "github.com/angelmondragon/shopdesk-backend/pkg/redis"
)

const refreshTokenBytes = 32

var (
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	errNoAccessID          = errors.New("access id is required")
)

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	AccessSessionKey(accessID string) string
}

// Session is what a login or refresh hands back to the client: the jti of
// the access token and the opaque refresh token that renews it.
type Session struct {
	AccessID     string
	RefreshToken string
}

// record is the Redis value under the access key. Only a digest of the
// refresh token is stored.
type record struct {
	UserID   uint64    `json:"uid"`
	Digest   string    `json:"rt"`
	IssuedAt time.Time `json:"iat"`
}

func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (r record) matches(userID uint64, token string) bool {
	return r.UserID == userID && subtle.ConstantTimeCompare([]byte(r.Digest), []byte(digest(token))) == 1
}

// Manager keeps one Redis key per access token jti. The key lives as long as
// the refresh token, so its presence is also what makes an access token
// count as not logged out.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
	now   func() time.Time
}

// AccessSessionChecker is the read-only view the auth middleware needs.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, errors.New("session manager: redis client is required")
	}
	ttl := cfg.RefreshTokenTTL()
	accessTTL := time.Duration(cfg.ExpirationMinutes) * time.Minute
	switch {
	case ttl <= 0:
		return nil, errors.New("session manager: refresh token ttl must be positive")
	case ttl <= accessTTL:
		return nil, fmt.Errorf("session manager: refresh token ttl (%s) must exceed access token ttl (%s)", ttl, accessTTL)
	}
	return &Manager{store: client, keyer: client, ttl: ttl, now: time.Now}, nil
}

func (m *Manager) Start(ctx context.Context, userID uint64) (Session, error) {
	if userID == 0 {
		return Session{}, errors.New("user id is required")
	}
	token, err := generateRefreshToken()
	if err != nil {
		return Session{}, err
	}
	value, err := json.Marshal(record{UserID: userID, Digest: digest(token), IssuedAt: m.now().UTC()})
	if err != nil {
		return Session{}, err
	}

	s := Session{AccessID: NewAccessID(), RefreshToken: token}
	if err := m.store.Set(ctx, m.keyer.AccessSessionKey(s.AccessID), string(value), m.ttl); err != nil {
		return Session{}, fmt.Errorf("store session: %w", err)
	}
	return s, nil
}

func (m *Manager) load(ctx context.Context, accessID string) (record, error) {
	raw, err := m.store.Get(ctx, m.keyer.AccessSessionKey(accessID))
	if errors.Is(err, redislib.Nil) {
		return record{}, ErrInvalidRefreshToken
	}
	if err != nil {
		return record{}, err
	}
	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return record{}, ErrInvalidRefreshToken
	}
	return rec, nil
}

// Rotate trades a valid refresh token for a brand new session. The old key
// is deleted first so a replayed token cannot mint a second session.
func (m *Manager) Rotate(ctx context.Context, userID uint64, oldAccessID, provided string) (Session, error) {
	if strings.TrimSpace(oldAccessID) == "" || strings.TrimSpace(provided) == "" {
		return Session{}, ErrInvalidRefreshToken
	}
	rec, err := m.load(ctx, oldAccessID)
	if err != nil {
		return Session{}, err
	}
	if !rec.matches(userID, provided) {
		return Session{}, ErrInvalidRefreshToken
	}
	if err := m.store.Del(ctx, m.keyer.AccessSessionKey(oldAccessID)); err != nil {
		return Session{}, fmt.Errorf("drop rotated session: %w", err)
	}
	return m.Start(ctx, userID)
}

func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return errNoAccessID
	}
	return m.store.Del(ctx, m.keyer.AccessSessionKey(accessID))
}

func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if strings.TrimSpace(accessID) == "" {
		return false, errNoAccessID
	}
	_, err := m.store.Get(ctx, m.keyer.AccessSessionKey(accessID))
	switch {
	case errors.Is(err, redislib.Nil):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

// NewAccessID produces the identifier used as the JWT jti and Redis key.
func NewAccessID() string {
	return uuid.NewString()
}

func generateRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
