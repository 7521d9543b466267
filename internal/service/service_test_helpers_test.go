package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/buran83/makechat/internal/domain"
	"github.com/buran83/makechat/internal/repository"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newAuthServiceForTest(t *testing.T) (*AuthService, *miniredis.Miniredis) {
	t.Helper()
	db := newGormForTest(t)
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})
	users := repository.NewUserRepository(db)
	sessions := repository.NewSessionStore(client, time.Hour)
	tokens := repository.NewTokenRepository(db)
	return NewAuthService(users, sessions, tokens, testSecret), server
}

func newGormForTest(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Room{}, &domain.Member{}, &domain.Token{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
