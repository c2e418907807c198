package cmd

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	config "crewsync.com/crewsync/internal/configs"
	httpapi "crewsync.com/crewsync/internal/http"
	"crewsync.com/crewsync/internal/realtime"
	repository "crewsync.com/crewsync/internal/repositories"
	"crewsync.com/crewsync/internal/services"
	"crewsync.com/crewsync/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Starts the task coordination HTTP API and realtime change feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			log.Println(".env file not found, using environment variables")
		}

		cfg := config.Load()

		database := config.NewDatabaseClient(cfg.DatabaseDSN)

		redisClient := config.NewRedisClient(cfg.RedisAddr)
		defer redisClient.Close()

		feed := realtime.NewRedisFeed(redisClient, cfg.RedisChannelPrefix)

		taskRepo := repository.NewTaskRepository(database)
		docRepo := repository.NewDocumentRepository(database)
		smsRepo := repository.NewSmsRepository(database)
		chatRepo := repository.NewChatRepository(database)
		profileRepo := repository.NewProfileRepository(database)
		notificationRepo := repository.NewNotificationRepository(database)
		timesheetRepo := repository.NewTimesheetRepository(database)

		notificationService := services.NewNotificationService(notificationRepo, feed)
		taskService := services.NewTaskService(taskRepo, docRepo, timesheetRepo, notificationService, feed, cfg.ReviewRequired)
		smsService := services.NewSmsService(smsRepo, taskRepo, notificationService, feed)
		chatService := services.NewChatService(chatRepo, feed)
		presenceService := services.NewPresenceService(profileRepo, feed)
		timesheetService := services.NewTimesheetService(timesheetRepo, feed)

		stores := session.Stores{
			Tasks:         taskRepo,
			Sms:           smsRepo,
			Chat:          chatRepo,
			Profiles:      profileRepo,
			Notifications: notificationRepo,
			Timesheet:     timesheetRepo,
		}

		e := echo.New()
		handler := httpapi.NewHandler(
			taskService,
			smsService,
			chatService,
			presenceService,
			notificationService,
			timesheetService,
			feed,
			stores,
			cfg.ConfirmTimeout,
			cfg.PollInterval,
			cfg.SettleDelay,
		)
		httpapi.Register(e, handler, cfg.JWTSecret, cfg.RateLimit)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		go func() {
			log.Printf("HTTP server listening on %s", cfg.AppURL)
			if err := e.Start(cfg.AppURL); err != nil {
				log.Printf("server stopped: %v", err)
			}
		}()

		<-ctx.Done()

		echoCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second)
		defer cancel()
		_ = e.Shutdown(echoCtx)

		log.Println("HTTP server shut down gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
