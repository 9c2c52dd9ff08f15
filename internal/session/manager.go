package session

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v5"
	cache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/impressalabs/console/config"
	"github.com/impressalabs/console/internal/composer"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// Session is one operator's console session. The composer it owns holds all
// batch state in memory; losing the session loses the batch.
type Session struct {
	ID        string
	Username  string
	Composer  *composer.Composer
	CreatedAt time.Time
}

// ComposerFactory builds the session-scoped composer with its collaborators
// wired. Injected by the application to keep this package free of transport
// concerns.
type ComposerFactory func(sessionID string) *composer.Composer

// Manager authenticates operators, mints bearer tokens and keeps the
// session registry. Idle sessions expire after the configured TTL; eviction
// closes the owned composer so its in-memory state is discarded.
type Manager struct {
	secret    []byte
	ttl       time.Duration
	store     *cache.Cache
	node      *snowflake.Node
	operators map[string]string
	factory   ComposerFactory
}

func NewManager(cfg *config.AppConfig, factory ComposerFactory) (*Manager, error) {
	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, errors.Wrap(err, "init snowflake node")
	}

	// Credentials are held as bcrypt hashes only. Config values may already
	// be hashed; plaintext entries are hashed once at startup.
	operators := make(map[string]string, len(cfg.Operators))
	for _, op := range cfg.Operators {
		if strings.HasPrefix(op.Password, "$2") {
			operators[op.Username] = op.Password
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(op.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, errors.Wrapf(err, "hash password for operator %s", op.Username)
		}
		operators[op.Username] = string(hash)
	}

	m := &Manager{
		secret:    []byte(cfg.Web.JwtSecret),
		ttl:       cfg.SessionTTL(),
		node:      node,
		operators: operators,
		factory:   factory,
	}

	// no janitor goroutine: the application's cron sweep drives eviction
	m.store = cache.New(m.ttl, 0)
	m.store.OnEvicted(func(id string, v interface{}) {
		sess, ok := v.(*Session)
		if !ok {
			return
		}
		if err := sess.Composer.Close(); err != nil {
			zap.L().Warn("evicted session left composer busy",
				zap.String("session_id", id),
				zap.String("composer_state", sess.Composer.DumpState()),
				zap.Error(err))
			return
		}
		zap.L().Info("operator session closed",
			zap.String("session_id", id),
			zap.String("username", sess.Username),
		)
	})
	return m, nil
}

// Login validates operator credentials, opens a fresh session with its own
// composer and returns a signed bearer token.
func (m *Manager) Login(username, password string) (string, *Session, error) {
	hash, ok := m.operators[username]
	if !ok || bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	sess := &Session{
		ID:        m.node.Generate().String(),
		Username:  username,
		CreatedAt: time.Now(),
	}
	sess.Composer = m.factory(sess.ID)
	m.store.SetDefault(sess.ID, sess)

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": sess.ID,
		"sub": username,
		"iat": now.Unix(),
		"exp": now.Add(m.ttl).Unix(),
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		m.store.Delete(sess.ID)
		return "", nil, errors.Wrap(err, "sign session token")
	}

	zap.L().Info("operator logged in",
		zap.String("session_id", sess.ID),
		zap.String("username", username),
	)
	return signed, sess, nil
}

// Get resolves a session by ID and refreshes its idle TTL.
func (m *Manager) Get(sessionID string) (*Session, bool) {
	v, ok := m.store.Get(sessionID)
	if !ok {
		return nil, false
	}
	sess := v.(*Session)
	m.store.SetDefault(sessionID, sess)
	return sess, true
}

// Logout drops the session; eviction closes its composer.
func (m *Manager) Logout(sessionID string) {
	m.store.Delete(sessionID)
}

// SweepExpired evicts idle sessions. Driven by the application cron job.
func (m *Manager) SweepExpired() {
	m.store.DeleteExpired()
}

// Count reports live sessions, for the sweep log line.
func (m *Manager) Count() int {
	return m.store.ItemCount()
}

// Secret exposes the signing key for the JWT middleware.
func (m *Manager) Secret() []byte {
	return m.secret
}

// SessionID extracts the session ID claim from a verified token.
func SessionID(token *jwt.Token) (string, bool) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}
	sid, ok := claims["sid"].(string)
	return sid, ok && sid != ""
}
