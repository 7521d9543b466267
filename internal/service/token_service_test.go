package service

import (
	"context"
	"errors"
	"testing"

	"github.com/buran83/makechat/internal/domain"
	"github.com/buran83/makechat/internal/repository"
)

func TestCreateTokenRoundTrip(t *testing.T) {
	auth, _ := newAuthServiceForTest(t)
	tokens := NewTokenService(auth.tokens)
	ctx := context.Background()

	user, err := auth.Register(ctx, RegisterInput{Email: "test@example.org", Username: "test", Password1: "x", Password2: "x"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	token, err := tokens.CreateToken(ctx, user, "token1")
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	if token.Name != "token1" || len(token.Value) != 32 {
		t.Fatalf("unexpected token: %+v", token)
	}

	owner, err := auth.ResolveToken(ctx, token.Value)
	if err != nil {
		t.Fatalf("resolve token: %v", err)
	}
	if owner.ID != user.ID {
		t.Fatalf("token resolved to user %d, want %d", owner.ID, user.ID)
	}

	if _, err := auth.ResolveToken(ctx, "00000000000000000000000000000000"); !errors.Is(err, repository.ErrTokenNotFound) {
		t.Fatalf("expected unknown value not found, got %v", err)
	}
}

func TestCreateTokenListsInCreationOrder(t *testing.T) {
	auth, _ := newAuthServiceForTest(t)
	tokens := NewTokenService(auth.tokens)
	ctx := context.Background()

	user, err := auth.Register(ctx, RegisterInput{Email: "test@example.org", Username: "test", Password1: "x", Password2: "x"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	for _, name := range []string{"token1", "token2"} {
		if _, err := tokens.CreateToken(ctx, user, name); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	page, err := tokens.ListTokens(ctx, user, repository.PageRequest{}, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Items) != 2 || page.Items[0].Name != "token1" || page.Items[1].Name != "token2" {
		t.Fatalf("unexpected token order: %+v", page.Items)
	}
}

// collidingTokenRepo reports every value as taken for the first few
// existence checks, forcing the generation loop to retry.
type collidingTokenRepo struct {
	repository.TokenRepository
	collisions int
	checks     int
}

func (r *collidingTokenRepo) ExistsByValue(ctx context.Context, value string) (bool, error) {
	r.checks++
	if r.checks <= r.collisions {
		return true, nil
	}
	return r.TokenRepository.ExistsByValue(ctx, value)
}

func TestCreateTokenRetriesOnCollision(t *testing.T) {
	auth, _ := newAuthServiceForTest(t)
	colliding := &collidingTokenRepo{TokenRepository: auth.tokens, collisions: 3}
	tokens := NewTokenService(colliding)
	ctx := context.Background()

	token, err := tokens.CreateToken(ctx, &domain.User{ID: 1}, "retry")
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	if colliding.checks != 4 {
		t.Fatalf("expected 4 existence checks, got %d", colliding.checks)
	}
	if len(token.Value) != 32 {
		t.Fatalf("unexpected value: %s", token.Value)
	}
}

func TestCreateTokenGivesUpOnBrokenRandomness(t *testing.T) {
	auth, _ := newAuthServiceForTest(t)
	colliding := &collidingTokenRepo{TokenRepository: auth.tokens, collisions: 1 << 30}
	tokens := NewTokenService(colliding)

	if _, err := tokens.CreateToken(context.Background(), &domain.User{ID: 1}, "never"); err == nil {
		t.Fatal("expected generation to give up eventually")
	}
}

func TestDeleteTokenScopedToOwner(t *testing.T) {
	auth, _ := newAuthServiceForTest(t)
	tokens := NewTokenService(auth.tokens)
	ctx := context.Background()

	owner, err := auth.Register(ctx, RegisterInput{Email: "a@example.org", Username: "a", Password1: "x", Password2: "x"})
	if err != nil {
		t.Fatalf("register owner: %v", err)
	}
	other, err := auth.Register(ctx, RegisterInput{Email: "b@example.org", Username: "b", Password1: "x", Password2: "x"})
	if err != nil {
		t.Fatalf("register other: %v", err)
	}

	token, err := tokens.CreateToken(ctx, owner, "mine")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := tokens.DeleteToken(ctx, other, token.ID); !errors.Is(err, repository.ErrTokenNotFound) {
		t.Fatalf("expected foreign delete to look like not found, got %v", err)
	}
	if err := tokens.DeleteToken(ctx, owner, token.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
}
