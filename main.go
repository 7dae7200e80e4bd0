package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"

	"cookbook/auth"
	"cookbook/config"
	"cookbook/cookbook"
	"cookbook/db"
	"cookbook/dbscripts"
	"cookbook/middleware"
	"cookbook/ratelim"
	"cookbook/rdx"
	"cookbook/recipes"
	"cookbook/routes"
)

func newLogger(level string) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	return zapCfg.Build()
}

func main() {
	initDB := flag.Bool("init-db", false, "create the cookbook tables and exit")
	resetDB := flag.Bool("reset-db", false, "empty every table, passwords included, and exit")
	resetRecipes := flag.Bool("reset-recipes", false, "empty the recipe tables, keep passwords, and exit")
	addPassword := flag.String("add-password", "", "store a new cookbook password and exit")
	flag.Parse()

	cfg := config.Load()

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("connect to database", zap.Error(err))
	}
	defer pool.Close()

	// Admin tasks run out-of-band of the serving path.
	if *initDB || *resetDB || *resetRecipes || *addPassword != "" {
		runAdminTasks(ctx, pool, cfg, logger, *initDB, *resetDB, *resetRecipes, *addPassword)
		return
	}

	gate := auth.NewGate(pool, logger, cfg.BcryptCost)
	book := cookbook.New(pool, logger)
	cache := rdx.New(cfg.RedisAddr, logger)
	limiter := ratelim.New(rate.Limit(5), 5)
	handler := recipes.NewHandler(book, cache, logger)

	router := httprouter.New()
	routes.AddRecipeRoutes(router, handler, gate, limiter, logger)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(router)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           middleware.RequestLogger(logger, middleware.SecurityHeaders(corsHandler)),
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen and serve", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}

func runAdminTasks(ctx context.Context, pool *sql.DB, cfg config.Config, logger *zap.Logger,
	initDB, resetDB, resetRecipes bool, addPassword string) {
	if initDB {
		if err := dbscripts.InitTables(ctx, pool); err != nil {
			logger.Fatal("initialize schema", zap.Error(err))
		}
		logger.Info("schema initialized")
	}
	if resetDB {
		if err := dbscripts.ResetAll(ctx, pool); err != nil {
			logger.Fatal("reset database", zap.Error(err))
		}
		logger.Info("database reset")
	}
	if resetRecipes {
		if err := dbscripts.ResetRecipes(ctx, pool); err != nil {
			logger.Fatal("reset recipes", zap.Error(err))
		}
		logger.Info("recipe tables reset")
	}
	if addPassword != "" {
		gate := auth.NewGate(pool, logger, cfg.BcryptCost)
		if err := gate.Seed(ctx, addPassword); err != nil {
			logger.Fatal("add password", zap.Error(err))
		}
	}
}
