// Package app wires the planner's components together and owns their
// lifecycle: store, push service, reminder sweep and HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/soudousya-lab/weekday-planner/internal/config"
	"github.com/soudousya-lab/weekday-planner/internal/domain"
	"github.com/soudousya-lab/weekday-planner/internal/push"
	"github.com/soudousya-lab/weekday-planner/internal/scheduler"
	"github.com/soudousya-lab/weekday-planner/internal/server"
	"github.com/soudousya-lab/weekday-planner/internal/store"
)

type App struct {
	cfg config.Config
	log *zap.Logger
}

func New(cfg config.Config, log *zap.Logger) *App {
	return &App{cfg: cfg, log: log}
}

// Run starts the service and blocks until the context is canceled or an
// interrupt/termination signal arrives.
func (a *App) Run(ctx context.Context) error {
	policy, err := domain.ParsePolicy(a.cfg.Policy)
	if err != nil {
		return err
	}
	limits := domain.InputLimits{
		StudyMin:    a.cfg.StudyMin,
		StudyMax:    a.cfg.StudyMax,
		ArrivalStep: a.cfg.ArrivalStep,
	}

	a.log.Info("starting weekday-planner",
		zap.String("http", a.cfg.HTTPAddr),
		zap.String("policy", string(policy)),
	)

	repo, err := store.OpenSQLite(ctx, a.cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer func() { _ = repo.Close() }()
	a.log.Info("sqlite ready", zap.String("path", a.cfg.DBPath))

	pushSvc, err := push.NewService(ctx, repo, a.cfg.VAPIDSubject, a.log)
	if err != nil {
		return err
	}
	a.log.Info("web push ready", zap.String("publicKey", pushSvc.PublicKey()))

	srv := &http.Server{
		Addr:         a.cfg.HTTPAddr,
		Handler:      server.New(a.log, repo, repo, pushSvc, limits, policy).Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweep := scheduler.New(repo, pushSvc, a.log, a.cfg.SweepInterval)
	go sweep.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
	}

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		a.log.Warn("http server shutdown error", zap.Error(err))
	}
	return nil
}
