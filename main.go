package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"katalog/internal/config"
	"katalog/internal/database"
	"katalog/internal/handlers"
	"katalog/internal/ocr"
	"katalog/internal/services"
	"katalog/pkg/rabbitmq"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd(viper.New()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	var (
		cfg    *config.Config
		logger zerolog.Logger
	)

	root := &cobra.Command{
		Use:           "katalog",
		Short:         "Storefront catalog and inventory service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.SetDefaults(v)
			v.AutomaticEnv()
			if file := v.GetString("config"); file != "" {
				v.SetConfigFile(file)
				if err := v.ReadInConfig(); err != nil {
					return fmt.Errorf("failed to read config file: %w", err)
				}
			}

			var err error
			cfg, err = config.Load(v)
			if err != nil {
				return err
			}
			logger = config.NewLogger(cfg.Logger)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfg, logger)
		},
	}
	root.PersistentFlags().String("config", "", "path to a config file (env vars take precedence)")
	_ = v.BindPFlag("config", root.PersistentFlags().Lookup("config"))

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the stock adjustment consumer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfg, logger)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.Open(cfg.Database, logger)
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			logger.Info().Msg("database migrated")
			return nil
		},
	})
	return root
}

func serve(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Database ---
	db, err := database.Open(cfg.Database, log)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	// --- RabbitMQ ---
	var (
		publisher services.EventPublisher
		mqClient  *rabbitmq.Client
	)
	if cfg.RabbitMQ.Enabled {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL}, log)
		if err != nil {
			return err
		}
		defer mqClient.Close()
		publisher = mqClient
	}

	// --- OCR ---
	var extractor ocr.TextExtractor = ocr.Disabled{}
	if cfg.OCR.Enabled {
		vision, err := ocr.NewVisionExtractor(ctx, ocr.Config{
			CredentialsFile: cfg.OCR.CredentialsFile,
			RatePerSecond:   cfg.OCR.RatePerSecond,
		}, log)
		if err != nil {
			return err
		}
		defer vision.Close()
		extractor = vision
	}

	app := newApp(cfg, db, log, publisher, extractor)

	if mqClient != nil {
		consumer := handlers.NewStockAdjustmentConsumer(app.products, log)
		if err := mqClient.ConsumeStockAdjustments(ctx, consumer.Handler(ctx)); err != nil {
			return err
		}
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.AppPort).Msg("starting server")
		errCh <- app.http.Listen(cfg.AppPort)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	if err := app.http.Shutdown(); err != nil {
		log.Error().Err(err).Msg("error during Fiber shutdown")
	}
	log.Info().Msg("server gracefully stopped")
	return nil
}
