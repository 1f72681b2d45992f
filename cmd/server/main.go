package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medlink/config"
	"medlink/internal/cache"
	"medlink/internal/database"
	"medlink/internal/logger"
	"medlink/internal/queue"
	"medlink/internal/router"
	"medlink/internal/service"
	"medlink/internal/ws"
	"medlink/pkg/storage"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "medlink",
		Short:         "Healthcare coordination API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API, reminder dispatcher and notification consumer",
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply schema migrations using DIRECT_URL",
			RunE: func(cmd *cobra.Command, args []string) error {
				return migrate()
			},
		},
		seedAdminCmd(),
	)
	return root
}

func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Log.Level, cfg.Server.Env)
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	return cfg, log, nil
}

func migrate() error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()
	db, err := database.NewDirectDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := database.SeedRewardSettings(db); err != nil {
		return err
	}
	log.Info("migrations applied")
	return nil
}

func seedAdminCmd() *cobra.Command {
	var email, password, name string
	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create an ADMIN account if the email is not taken",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()
			if email == "" {
				email, password, name = cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Name
			}
			if email == "" || password == "" {
				return errors.New("email and password are required (flags or ADMIN_EMAIL/ADMIN_PASSWORD)")
			}
			if name == "" {
				name = "Administrator"
			}
			db, err := database.NewDB(&cfg.Database)
			if err != nil {
				return fmt.Errorf("database: %w", err)
			}
			created, err := database.SeedAdmin(db, email, password, name)
			if err != nil {
				return err
			}
			log.Info("seed admin", zap.String("email", email), zap.Bool("created", created))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	cmd.Flags().StringVar(&name, "name", "", "admin display name")
	return cmd
}

func serve(parent context.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := database.SeedRewardSettings(db); err != nil {
		return err
	}
	if created, err := database.SeedAdmin(db, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Name); err != nil {
		log.Warn("seed admin failed", zap.Error(err))
	} else if created {
		log.Info("admin account created", zap.String("email", cfg.Admin.Email))
	}

	deps := router.Deps{Config: cfg, DB: db, Log: log, Hub: ws.NewHub()}

	if cfg.Redis.URL != "" {
		c, client, err := cache.NewRedis(ctx, cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer client.Close()
		deps.Cache = c
		log.Info("redis cache enabled")
	} else {
		deps.Cache = cache.NewMemory()
	}

	store, err := storage.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if store != nil {
		deps.Store = store
		log.Info("document uploads enabled", zap.String("driver", cfg.Storage.Driver))
	}

	deps.FCM = service.NewFCMService(ctx, cfg.Firebase.ServiceAccountPath, log)
	if deps.FCM != nil {
		log.Info("push notifications enabled")
	}

	svcs := router.NewServices(deps)

	if cfg.RabbitMQ.URL != "" {
		conn, err := queue.Dial(cfg.RabbitMQ.URL)
		if err != nil {
			return fmt.Errorf("rabbitmq: %w", err)
		}
		defer conn.Close()
		pub, err := queue.NewPublisher(conn, queue.NotificationQueue)
		if err != nil {
			return fmt.Errorf("rabbitmq publisher: %w", err)
		}
		defer pub.Close()
		svcs.Notifications.UseQueue(pub)
		go func() {
			err := queue.Consume(ctx, conn, queue.NotificationQueue, cfg.RabbitMQ.Prefetch, svcs.Notifications.HandleDelivery, log)
			if err != nil && ctx.Err() == nil {
				log.Error("notification consumer stopped", zap.Error(err))
			}
		}()
		log.Info("notification delivery queued", zap.String("queue", queue.NotificationQueue))
	}

	if cfg.Reminder.Enabled {
		go svcs.Schedules.RunDispatcher(ctx, cfg.Reminder.Interval)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router.Setup(ctx, deps, svcs),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Server.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
