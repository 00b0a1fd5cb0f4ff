package auth

import (
	"bytes"
	"context"
	"encoding/base32"
	"encoding/gob"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"

	"github.com/caelus-deploy/caelus/pkg/cache"
)

// DefaultSessionTTL is one operator shift.
const DefaultSessionTTL = 12 * time.Hour

// RedisStore keeps session values in Redis under "<namespace>:session:<id>";
// the cookie carries only the signed and encrypted id.
//
// Keys must be 32 or 64 bytes for authentication and 16, 24 or 32 bytes for
// encryption (openssl rand -base64 32).
type RedisStore struct {
	redis   *cache.RedisClient
	codecs  []securecookie.Codec
	options sessions.Options
}

// StoreOption tunes a RedisStore.
type StoreOption func(*RedisStore)

// WithSessionTTL overrides DefaultSessionTTL.
func WithSessionTTL(ttl time.Duration) StoreOption {
	return func(s *RedisStore) { s.options.MaxAge = int(ttl.Seconds()) }
}

// NewSessionStore returns a RedisStore. secureCookie restricts the cookie to
// HTTPS and should be set in production.
func NewSessionStore(rc *cache.RedisClient, authKey, encryptionKey []byte, secureCookie bool, opts ...StoreOption) *RedisStore {
	s := &RedisStore{
		redis:  rc,
		codecs: securecookie.CodecsFromPairs(authKey, encryptionKey),
		options: sessions.Options{
			Path:     "/",
			MaxAge:   int(DefaultSessionTTL.Seconds()),
			HttpOnly: true,
			Secure:   secureCookie,
			SameSite: http.SameSiteLaxMode,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the request-cached session for name.
func (s *RedisStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New loads the session named by the cookie. A missing, tampered or expired
// cookie, or a record already gone from Redis, yields a fresh session.
func (s *RedisStore) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := s.options
	session.Options = &opts
	session.IsNew = true

	id, ok := s.cookieID(r, name)
	if !ok {
		return session, nil
	}
	values, err := s.load(r.Context(), id)
	if err != nil {
		return session, nil //nolint:nilerr
	}
	session.ID = id
	session.Values = values
	session.IsNew = false
	return session, nil
}

func (s *RedisStore) cookieID(r *http.Request, name string) (string, bool) {
	c, err := r.Cookie(name)
	if err != nil {
		return "", false
	}
	var id string
	if err := securecookie.DecodeMulti(name, c.Value, &id, s.codecs...); err != nil {
		return "", false
	}
	return id, true
}

// Save writes the values to Redis with the session's MaxAge as TTL and sets
// the cookie. A negative MaxAge deletes both.
func (s *RedisStore) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	ctx := r.Context()
	if session.Options.MaxAge < 0 {
		if session.ID != "" {
			if err := s.redis.Client().Del(ctx, s.key(session.ID)).Err(); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	if session.ID == "" {
		session.ID = newSessionID()
	}
	if err := s.store(ctx, session); err != nil {
		return err
	}
	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.codecs...)
	if err != nil {
		return fmt.Errorf("encode session cookie: %w", err)
	}
	http.SetCookie(w, sessions.NewCookie(session.Name(), encoded, session.Options))
	return nil
}

func newSessionID() string {
	return strings.TrimRight(base32.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32)), "=")
}

func (s *RedisStore) key(id string) string {
	return s.redis.Key("session", id)
}

func (s *RedisStore) store(ctx context.Context, session *sessions.Session) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(session.Values); err != nil {
		return fmt.Errorf("encode session values: %w", err)
	}
	ttl := time.Duration(session.Options.MaxAge) * time.Second
	if err := s.redis.Client().Set(ctx, s.key(session.ID), buf.Bytes(), ttl).Err(); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

func (s *RedisStore) load(ctx context.Context, id string) (map[any]any, error) {
	data, err := s.redis.Client().Get(ctx, s.key(id)).Bytes()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	values := make(map[any]any)
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&values); err != nil {
		return nil, fmt.Errorf("decode session values: %w", err)
	}
	return values, nil
}
