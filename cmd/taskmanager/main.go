package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskmanager/internal/config"
	"taskmanager/internal/notify"
	"taskmanager/internal/repository"
	"taskmanager/internal/service"
	"taskmanager/internal/web"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(logger)
	defer func() {
		_ = logger.Sync()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	if err := repository.EnsureSeedData(db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logger.Fatal("seed", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	tagRepo := repository.NewTagRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	clock := service.SystemClock()
	taskSvc := service.NewTaskService(taskRepo, tagRepo, projectRepo)

	var notifier notify.Notifier = notify.NewLogNotifier(logger)
	if cfg.TelegramToken != "" {
		telegramNotifier, err := notify.NewTelegramNotifier(cfg.TelegramToken, userRepo, notifier)
		if err != nil {
			logger.Fatal("telegram notifier", zap.Error(err))
		}
		notifier = telegramNotifier
	}
	sweeper := service.NewReminderSweeper(taskRepo, notifier, logger)

	var aiSvc *service.AIService
	if cfg.GeminiAPIKey != "" {
		aiSvc, err = service.NewAIService(ctx, cfg.GeminiAPIKey, clock)
		if err != nil {
			logger.Fatal("ai service", zap.Error(err))
		}
		defer aiSvc.Close()
	}

	scheduler := service.NewSchedulerService(time.UTC)
	if _, err := scheduler.ScheduleInterval(cfg.SweepInterval, func() {
		tickCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := sweeper.Sweep(tickCtx, clock.Now()); err != nil {
			logger.Warn("reminder sweep", zap.Error(err))
		}
	}); err != nil {
		logger.Fatal("schedule reminder sweep", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	var aiParser web.AIParser
	if aiSvc != nil {
		aiParser = aiSvc
	}

	r := gin.New()
	r.Use(gin.Recovery(), web.RequestLogger(logger))
	web.RegisterRoutes(r, cfg.JWTSecret, userRepo, web.Handlers{
		Auth:     web.NewAuthHandler(userRepo, roleRepo, cfg.JWTSecret),
		Tasks:    web.NewTaskHandler(taskSvc),
		Projects: web.NewProjectHandler(projectRepo),
		Calendar: web.NewCalendarHandler(taskSvc, clock),
		AI:       web.NewAIHandler(aiParser),
		Users:    web.NewUsersHandler(userRepo, roleRepo),
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		logger.Info("starting server", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped with error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
