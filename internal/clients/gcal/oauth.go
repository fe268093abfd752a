package gcal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

// ErrNoToken means no OAuth token was provisioned for the account yet
var ErrNoToken = errors.New("no google token provisioned")

// Credentials identifies the OAuth client and the account whose token is used
type Credentials struct {
	ClientID     string
	ClientSecret string
	Account      string
	// TokenFile is imported into the store when the store has no token
	TokenFile string
}

// IsConfigured returns true if an OAuth client is set up
func (c Credentials) IsConfigured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

func (c Credentials) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Scopes:       []string{calendar.CalendarScope},
		Endpoint:     google.Endpoint,
	}
}

// TokenStore persists serialized tokens per account. Token returns nil data
// and a nil error when nothing is stored.
type TokenStore interface {
	Token(account string) ([]byte, error)
	SaveToken(account string, data []byte) error
}

// NewTokenSource returns a refreshing token source that writes refreshed
// tokens back to the store.
func NewTokenSource(ctx context.Context, creds Credentials, store TokenStore, logger *zap.Logger) (oauth2.TokenSource, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	data, err := store.Token(creds.Account)
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}

	if data == nil && creds.TokenFile != "" {
		data, err = importTokenFile(creds, store)
		if err != nil {
			return nil, err
		}
		if data != nil {
			logger.Info("Imported Google token", zap.String("file", creds.TokenFile), zap.String("account", creds.Account))
		}
	}
	if data == nil {
		return nil, ErrNoToken
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	return &persistingSource{
		base:    creds.oauthConfig().TokenSource(ctx, &tok),
		store:   store,
		account: creds.Account,
		last:    tok.AccessToken,
		logger:  logger,
	}, nil
}

func importTokenFile(creds Credentials, store TokenStore) ([]byte, error) {
	data, err := os.ReadFile(creds.TokenFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("token file %s is not valid JSON", creds.TokenFile)
	}
	if err := store.SaveToken(creds.Account, data); err != nil {
		return nil, fmt.Errorf("save token: %w", err)
	}
	return data, nil
}

type persistingSource struct {
	base    oauth2.TokenSource
	store   TokenStore
	account string
	logger  *zap.Logger

	mu   sync.Mutex
	last string
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken == s.last {
		return tok, nil
	}
	s.last = tok.AccessToken

	data, err := json.Marshal(tok)
	if err == nil {
		err = s.store.SaveToken(s.account, data)
	}
	if err != nil {
		s.logger.Warn("Failed to persist refreshed token", zap.String("account", s.account), zap.Error(err))
	}
	return tok, nil
}
