package service

import (
	"context"
	"fmt"

	"github.com/buran83/makechat/internal/domain"
	"github.com/buran83/makechat/internal/repository"
	"github.com/buran83/makechat/internal/security"
)

// tokenGenerationAttempts bounds the regenerate loop so a broken random
// source cannot spin forever.
const tokenGenerationAttempts = 16

type TokenService struct {
	tokens repository.TokenRepository
}

func NewTokenService(tokens repository.TokenRepository) *TokenService {
	return &TokenService{tokens: tokens}
}

// CreateToken mints a named token for the user. The existence check and
// retry defend against a degraded random source; correctness under
// concurrency comes from the store's unique index on the value, not from
// this loop.
func (s *TokenService) CreateToken(ctx context.Context, user *domain.User, name string) (*domain.Token, error) {
	value := security.TokenValue()
	for attempt := 0; ; attempt++ {
		exists, err := s.tokens.ExistsByValue(ctx, value)
		if err != nil {
			return nil, err
		}
		if !exists {
			break
		}
		if attempt == tokenGenerationAttempts {
			return nil, fmt.Errorf("could not generate a unique token value after %d attempts", tokenGenerationAttempts)
		}
		value = security.TokenValue()
	}

	token := &domain.Token{UserID: user.ID, Name: name, Value: value}
	if err := s.tokens.Create(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

func (s *TokenService) ListTokens(ctx context.Context, user *domain.User, req repository.PageRequest, defaultLimit int) (repository.PageResult[domain.Token], error) {
	return s.tokens.ListPageByUser(ctx, user.ID, req, defaultLimit)
}

// DeleteToken removes one of the caller's own tokens; other users' tokens
// are indistinguishable from missing ones.
func (s *TokenService) DeleteToken(ctx context.Context, user *domain.User, tokenID uint) error {
	return s.tokens.DeleteByIDForUser(ctx, user.ID, tokenID)
}
