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

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/autopneuma/pneuma/internal/api"
	"github.com/autopneuma/pneuma/internal/auth"
	"github.com/autopneuma/pneuma/internal/community"
	"github.com/autopneuma/pneuma/internal/config"
	"github.com/autopneuma/pneuma/internal/embedding"
	"github.com/autopneuma/pneuma/internal/hooks"
	"github.com/autopneuma/pneuma/internal/llm"
	"github.com/autopneuma/pneuma/internal/logging"
	"github.com/autopneuma/pneuma/internal/moderation"
	"github.com/autopneuma/pneuma/internal/scripture"
	"github.com/autopneuma/pneuma/internal/status"
	"github.com/autopneuma/pneuma/internal/store"
	"github.com/autopneuma/pneuma/internal/tools"
)

var (
	configPath string
	cfg        *config.Config
	logger     *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "pneuma",
		Short:        "Auto Pneuma community platform and AI backend",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = config.Load(configPath); err != nil {
				return err
			}
			logger, err = logging.New(cfg.Logging.Level, cfg.Logging.Development)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "pneuma.yaml", "config file path")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(moderateCmd())
	rootCmd.AddCommand(scriptureCmd())
	rootCmd.AddCommand(toolsCmd())
	rootCmd.AddCommand(postCmd())
	rootCmd.AddCommand(prayerCmd())
	rootCmd.AddCommand(projectCmd())
	rootCmd.AddCommand(adminCmd())
	rootCmd.AddCommand(statusCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func openStore(ctx context.Context) (*store.Store, error) {
	return store.New(ctx, cfg.Database.Path)
}

// backend holds the services shared by serve and the local commands
type backend struct {
	store      *store.Store
	moderation *moderation.Service
	scripture  *scripture.Assistant
	tools      *tools.Service
	community  *community.Service
}

func newBackend(ctx context.Context) (*backend, error) {
	s, err := openStore(ctx)
	if err != nil {
		return nil, err
	}

	var completer llm.Completer
	aiEnabled := cfg.AIEnabled()
	if aiEnabled {
		completer, err = llm.New(ctx, cfg.LLMClientConfig())
		if err != nil {
			logger.Warn("AI features disabled", zap.Error(err))
			aiEnabled = false
		}
	}

	modSvc := moderation.NewService(completer, moderation.Options{
		Enabled:   aiEnabled && cfg.Features.AIModeration,
		Threshold: cfg.Moderation.ConfidenceThreshold,
	}, logger.Named("moderation"))
	scriptureSvc := scripture.NewAssistant(completer, scripture.Options{
		Enabled:        aiEnabled && cfg.Features.ScriptureAssistant,
		DefaultVersion: cfg.Scripture.DefaultBibleVersion,
	}, logger.Named("scripture"))

	var embedder embedding.Embedder
	if cfg.Embeddings.VoyageKey != "" {
		if embedder, err = embedding.NewVoyage(cfg.Embeddings.VoyageKey); err != nil {
			s.Close()
			return nil, err
		}
	}

	commSvc := community.NewService(community.Repositories{
		Posts:    s,
		Prayers:  s,
		Projects: s,
		Profiles: s,
		Metrics:  s,
	}, hooks.NewModeration(modSvc), embedder, logger.Named("community"))

	return &backend{
		store:      s,
		moderation: modSvc,
		scripture:  scriptureSvc,
		tools:      tools.NewService(s, cfg.Features.CommunityAITools, logger.Named("tools")),
		community:  commSvc,
	}, nil
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			b, err := newBackend(ctx)
			if err != nil {
				return err
			}
			defer b.store.Close()

			if port == 0 {
				port = cfg.Server.Port
			}

			httpClient := &http.Client{Timeout: 15 * time.Second}
			svc := api.Services{
				Moderation:    b.moderation,
				Scripture:     b.scripture,
				Tools:         b.tools,
				Community:     b.community,
				ModerationLog: b.store,
				Status: status.NewChecker(status.Config{
					APIURL:      cfg.Server.APIURL,
					SupabaseURL: cfg.Supabase.URL,
					AnonKey:     cfg.Supabase.AnonKey,
					Build:       status.NewBuildInfo(cfg.Build.SHA, cfg.Build.Time, cfg.Build.Beta),
				}, b.store, httpClient),
			}
			if cfg.Supabase.URL != "" {
				svc.Accounts = auth.NewClient(cfg.Supabase.URL, cfg.Supabase.AnonKey, httpClient)
			} else {
				logger.Warn("auth service not configured; member routes will reject requests")
			}

			server := api.New(svc, port, logger.Named("http"))

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			select {
			case sig := <-sigCh:
				logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
			case err := <-errCh:
				return fmt.Errorf("http server: %w", err)
			}

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Error("error shutting down http server", zap.Error(err))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (default from config)")
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the API, auth database, and local store",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			checker := status.NewChecker(status.Config{
				APIURL:      cfg.Server.APIURL,
				SupabaseURL: cfg.Supabase.URL,
				AnonKey:     cfg.Supabase.AnonKey,
				Build:       status.NewBuildInfo(cfg.Build.SHA, cfg.Build.Time, cfg.Build.Beta),
			}, s, nil)
			report := checker.Check(cmd.Context())

			fmt.Printf("Overall: %s\n", report.Status)
			for _, c := range report.Components {
				line := fmt.Sprintf("  %-10s %s", c.Name, c.Status)
				if c.Version != "" {
					line += " v" + c.Version
				}
				if c.Message != "" {
					line += " - " + c.Message
				}
				fmt.Println(line)
			}
			build := report.Build.SHA
			if report.Build.Beta {
				build += " (beta)"
			}
			fmt.Printf("Build: %s built %s\n", build, report.Build.Time)
			return nil
		},
	}
}
