package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clinsim/clinsim/internal/config"
	"github.com/clinsim/clinsim/internal/domain/complication"
	"github.com/clinsim/clinsim/internal/domain/investigation"
	"github.com/clinsim/clinsim/internal/domain/session"
	"github.com/clinsim/clinsim/internal/domain/simulation"
	"github.com/clinsim/clinsim/internal/platform/middleware"
	"github.com/clinsim/clinsim/internal/platform/responder"
	"github.com/clinsim/clinsim/internal/platform/websocket"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sim-server",
		Short: "Clinical encounter simulation server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(catalogCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the simulation API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

// buildCollaborators wires the narrative stack: gateway-backed when a base
// URL is configured, static canned responses otherwise.
func buildCollaborators(cfg *config.Config, logger zerolog.Logger) ([]simulation.NarrativeResponder, simulation.SafetyValidator, simulation.TreatmentAssessor) {
	roles := []string{"patient", "nurse", "senior", "family"}

	if cfg.ResponderBaseURL == "" {
		responders := make([]simulation.NarrativeResponder, 0, len(roles))
		for _, role := range roles {
			responders = append(responders, responder.NewStaticResponder(role))
		}
		return responders, responder.NewStaticValidator(), responder.NewStaticAssessor()
	}

	client := responder.NewClient(responder.Config{
		BaseURL: cfg.ResponderBaseURL,
		APIKey:  cfg.ResponderAPIKey,
		Timeout: cfg.ResponderTimeout(),
	}, logger)

	responders := make([]simulation.NarrativeResponder, 0, len(roles))
	for _, role := range roles {
		responders = append(responders, responder.NewRoleResponder(client, role))
	}
	return responders, responder.NewValidator(client), responder.NewAssessor(client)
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.RequestTimeout(30 * time.Second))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// API group
	api := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	api.Use(middleware.RateLimit(rateLimitCfg))

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})

	// Realtime event stream
	hub := websocket.NewHub(logger)
	websocket.NewWebSocketHandler(hub).RegisterRoutes(e.Group(""))

	// Simulation service
	responders, validator, assessor := buildCollaborators(cfg, logger)
	svc := simulation.NewService(
		session.NewStore(),
		validator,
		assessor,
		responders,
		websocket.NewPublisher(hub),
		simulation.Config{
			DispatchWorkers:  cfg.DispatchWorkers,
			ResponderTimeout: cfg.ResponderTimeout(),
		},
		logger,
	)
	simulation.NewHandler(svc).RegisterRoutes(api)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Bool("tls", cfg.TLSEnabled).Msg("starting server")
		var err error
		if cfg.TLSEnabled {
			err = e.StartTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = e.Start(addr)
		}
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the built-in simulation catalogs",
	}
	cmd.AddCommand(investigationsCmd())
	cmd.AddCommand(complicationsCmd())
	return cmd
}

func investigationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "investigations",
		Short: "List known investigation types and turnaround times",
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := investigation.Keys()
			sort.Strings(keys)
			for _, key := range keys {
				entry, _ := investigation.Lookup(key)
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %-28s routine %4d min, urgent %4d min\n",
					key, entry.Label, entry.Turnaround, entry.Urgent)
			}
			return nil
		},
	}
}

func complicationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complications [specialty]",
		Short: "List complication definitions, optionally for one specialty",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			specialties := complication.Specialties()
			sort.Strings(specialties)
			if len(args) == 1 {
				specialties = []string{args[0]}
			}
			for _, sp := range specialties {
				defs := complication.BySpecialty(sp)
				if len(defs) == 0 {
					return fmt.Errorf("unknown specialty %q", sp)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s:\n", sp)
				for _, def := range defs {
					fmt.Fprintf(cmd.OutOrStdout(), "  %-45s %-8s base %.2f, window %d-%d min\n",
						def.Name, def.Urgency, def.BaseProbability, def.WindowMin, def.WindowMax)
				}
			}
			return nil
		},
	}
}
