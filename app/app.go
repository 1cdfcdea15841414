package app

import (
	"context"
	"time"

	"Gin_postgres_redis_record_loans/clock"
	"Gin_postgres_redis_record_loans/config"
	"Gin_postgres_redis_record_loans/db"
	"Gin_postgres_redis_record_loans/session"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	RDB    *redis.Client
	Repo   *db.Repo
	Gate   Gate
	Config *config.Config
	Log    *logrus.Logger

	appSess *session.AppSessionStore
}

func (a *App) AppSessions() *session.AppSessionStore { return a.appSess }

// New wires an App around already opened connections.
func New(cfg *config.Config, dbConn *gorm.DB, rdb *redis.Client, clk clock.Clock, log *logrus.Logger) *App {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(log))
	useCORS(r, cfg.WebOrigin)

	return &App{
		Router:  r,
		DB:      dbConn,
		RDB:     rdb,
		Repo:    db.NewRepo(dbConn, clk, log),
		Gate:    NewStaticGate(cfg.AdminIDs, cfg.RequesterIDs),
		Config:  cfg,
		Log:     log,
		appSess: session.NewAppSessionStore(rdb, cfg.SessionTTL, clk),
	}
}

// Open connects Postgres and Redis, migrates the schema and builds the App.
func Open(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*App, error) {
	clk := clock.NewSystem()

	// --- DB: Postgres ---
	dbConn, err := db.ConnectDB(cfg.DSN(), clk, log)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(dbConn); err != nil {
		return nil, err
	}

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "redis")
	}

	return New(cfg, dbConn, rdb, clk, log), nil
}

func (a *App) Close() {
	_ = a.RDB.Close()
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
