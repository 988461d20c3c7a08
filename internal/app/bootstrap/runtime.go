package bootstrap

import (
	"context"
	"crypto/tls"
	"database/sql"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/coleta-bot/internal/audit"
	appconfig "github.com/wolfman30/coleta-bot/internal/config"
	"github.com/wolfman30/coleta-bot/pkg/logging"
)

const pingTimeout = 5 * time.Second

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis not available, message dedup disabled", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// OpenDatabase opens the Postgres pool used for audit entries, or returns nil
// when DATABASE_URL is unset or unreachable.
func OpenDatabase(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) *sql.DB {
	if cfg == nil || strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Warn("invalid DATABASE_URL, audit disabled", "error", err)
		return nil
	}
	db.SetMaxOpenConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		logger.Warn("postgres not available, audit disabled", "error", err)
		_ = db.Close()
		return nil
	}
	return db
}

// BuildAuditStore returns the audit store when a database is available.
func BuildAuditStore(db *sql.DB) *audit.Store {
	if db == nil {
		return nil
	}
	return audit.NewStore(db)
}
