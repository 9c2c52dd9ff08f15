package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	cache "github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/impressalabs/console/config"
	"github.com/impressalabs/console/internal/composer"
	"github.com/impressalabs/console/internal/taxonomy"
)

type nopNotifier struct{}

func (nopNotifier) Submitted(int) {}
func (nopNotifier) Closed()       {}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	cfg := &config.AppConfig{
		Web: config.WebConfig{
			JwtSecret:  "test-secret",
			SessionTTL: 1,
		},
		Operators: []config.OperatorConfig{
			{Username: "admin", Password: "impressa"},
		},
	}
	m, err := NewManager(cfg, func(string) *composer.Composer {
		return composer.New(taxonomy.NewVocabulary(), nil, nil, nopNotifier{})
	})
	require.NoError(t, err)
	return m
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	m := newTestManager(t)

	signed, sess, err := m.Login("admin", "impressa")
	require.NoError(t, err)
	require.NotNil(t, sess.Composer)

	token, err := jwt.Parse(signed, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	sid, ok := SessionID(token)
	require.True(t, ok)
	assert.Equal(t, sess.ID, sid)

	got, ok := m.Get(sid)
	require.True(t, ok)
	assert.Equal(t, "admin", got.Username)
}

func TestPreHashedOperatorPasswordAccepted(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("impressa"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &config.AppConfig{
		Web: config.WebConfig{JwtSecret: "test-secret", SessionTTL: 1},
		Operators: []config.OperatorConfig{
			{Username: "admin", Password: string(hash)},
		},
	}
	m, err := NewManager(cfg, func(string) *composer.Composer {
		return composer.New(taxonomy.NewVocabulary(), nil, nil, nopNotifier{})
	})
	require.NoError(t, err)

	_, _, err = m.Login("admin", "impressa")
	require.NoError(t, err)

	_, _, err = m.Login("admin", string(hash))
	assert.ErrorIs(t, err, ErrInvalidCredentials, "the hash itself is not a password")
}

func TestStoredCredentialsNeverPlaintext(t *testing.T) {
	m := newTestManager(t)
	for user, stored := range m.operators {
		assert.NotEqual(t, "impressa", stored, "operator %s stored in plaintext", user)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored), []byte("impressa")))
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	m := newTestManager(t)

	_, _, err := m.Login("admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = m.Login("ghost", "impressa")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.Equal(t, 0, m.Count())
}

func TestEachSessionGetsItsOwnComposer(t *testing.T) {
	m := newTestManager(t)

	_, a, err := m.Login("admin", "impressa")
	require.NoError(t, err)
	_, b, err := m.Login("admin", "impressa")
	require.NoError(t, err)

	require.NotEqual(t, a.ID, b.ID)
	require.NotSame(t, a.Composer, b.Composer)

	// vocab additions stay session-scoped
	a.Composer.AddCustomCategory("headwear")
	assert.Contains(t, a.Composer.Categories(), "headwear")
	assert.NotContains(t, b.Composer.Categories(), "headwear")
}

func TestLogoutDropsSession(t *testing.T) {
	m := newTestManager(t)
	_, sess, err := m.Login("admin", "impressa")
	require.NoError(t, err)

	m.Logout(sess.ID)
	_, ok := m.Get(sess.ID)
	assert.False(t, ok)
}

func TestSweepEvictsIdleSessions(t *testing.T) {
	cfg := &config.AppConfig{
		Web: config.WebConfig{JwtSecret: "test-secret"},
		Operators: []config.OperatorConfig{
			{Username: "admin", Password: "impressa"},
		},
	}
	m, err := NewManager(cfg, func(string) *composer.Composer {
		return composer.New(taxonomy.NewVocabulary(), nil, nil, nopNotifier{})
	})
	require.NoError(t, err)
	m.ttl = 10 * time.Millisecond
	m.store = cache.New(m.ttl, 0)

	_, sess, err := m.Login("admin", "impressa")
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	m.SweepExpired()

	_, ok := m.Get(sess.ID)
	assert.False(t, ok, "idle session evicted by sweep")
}
