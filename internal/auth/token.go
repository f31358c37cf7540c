package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kestrelhq/nfeed/internal/repository"
	"golang.org/x/oauth2"
)

type TokenChecker interface {
	HasToken(ctx context.Context) (bool, error)
}

var (
	_ TokenChecker       = (*DBTokenSource)(nil)
	_ oauth2.TokenSource = (*DBTokenSource)(nil)
)

// DBTokenSource serves the locally stored Kestrel access token as an
// oauth2.TokenSource. Personal access tokens do not expire client-side,
// so the token is loaded once and cached.
type DBTokenSource struct {
	tokens repository.TokenRepository
	mu     sync.Mutex
	token  *oauth2.Token
}

func NewDBTokenSource(tokens repository.TokenRepository) *DBTokenSource {
	return &DBTokenSource{tokens: tokens}
}

func (s *DBTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != nil {
		return s.token, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	accessToken, err := s.tokens.Get(ctx)
	if err != nil {
		return nil, err
	}

	s.token = &oauth2.Token{AccessToken: accessToken}
	return s.token, nil
}

func (s *DBTokenSource) HasToken(ctx context.Context) (bool, error) {
	_, err := s.Token()
	if errors.Is(err, repository.ErrNoToken) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Invalidate drops the cached token so the next Token call reloads it.
func (s *DBTokenSource) Invalidate() {
	s.mu.Lock()
	s.token = nil
	s.mu.Unlock()
}
