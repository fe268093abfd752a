package gcal

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tazhate/calendarskill/internal/domain"
)

type memoryTokens map[string][]byte

func (m memoryTokens) Token(account string) ([]byte, error) { return m[account], nil }

func (m memoryTokens) SaveToken(account string, data []byte) error {
	m[account] = data
	return nil
}

func mustEvent(t *testing.T, title string, start time.Time) domain.Event {
	t.Helper()
	e, err := domain.NewEvent(title, start, start.Add(time.Hour), "")
	require.NoError(t, err)
	return e
}

var testCreds = Credentials{ClientID: "id", ClientSecret: "secret", Account: "me"}

func TestTokenSourceWithoutToken(t *testing.T) {
	_, err := NewTokenSource(context.Background(), testCreds, memoryTokens{}, nil)
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestTokenSourceMissingFileIsNoToken(t *testing.T) {
	creds := testCreds
	creds.TokenFile = filepath.Join(t.TempDir(), "absent.json")

	_, err := NewTokenSource(context.Background(), creds, memoryTokens{}, nil)
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestTokenSourceImportsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"access_token": "dummy", "token_type": "Bearer", "expiry": "2099-01-01T00:00:00Z"}`), 0o600))

	creds := testCreds
	creds.TokenFile = path
	store := memoryTokens{}

	ts, err := NewTokenSource(context.Background(), creds, store, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, store["me"])

	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "dummy", tok.AccessToken)
}

func TestTokenSourceRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"broken": true`), 0o600))

	creds := testCreds
	creds.TokenFile = path

	_, err := NewTokenSource(context.Background(), creds, memoryTokens{}, nil)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoToken)
}

func TestCredentialsConfigured(t *testing.T) {
	assert.True(t, testCreds.IsConfigured())
	assert.False(t, Credentials{ClientID: "id"}.IsConfigured())
}
