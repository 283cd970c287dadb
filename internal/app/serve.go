package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/AycMouna/scholara/internal/cli"
	"github.com/AycMouna/scholara/internal/db"
	"github.com/AycMouna/scholara/internal/httpapi"
)

type serveFlags struct {
	envLoader       *cli.EnvLoader
	host            *string
	port            *int
	readTimeout     *time.Duration
	writeTimeout    *time.Duration
	shutdownTimeout *time.Duration
}

func addServeFlags(fs *flag.FlagSet, defaultPort int) serveFlags {
	return serveFlags{
		envLoader:       cli.AddEnvFlag(fs, ".env", "Path to the .env file"),
		host:            fs.String("host", "0.0.0.0", "Host interface to bind"),
		port:            fs.Int("port", defaultPort, "HTTP port"),
		readTimeout:     fs.Duration("read-timeout", 10*time.Second, "HTTP read timeout"),
		writeTimeout:    fs.Duration("write-timeout", 30*time.Second, "HTTP write timeout"),
		shutdownTimeout: fs.Duration("shutdown-timeout", 10*time.Second, "Graceful shutdown timeout"),
	}
}

func (f serveFlags) options(corsOrigins []string) httpapi.Options {
	return httpapi.Options{
		Host:               *f.host,
		Port:               *f.port,
		ReadTimeout:        *f.readTimeout,
		WriteTimeout:       *f.writeTimeout,
		ShutdownTimeout:    *f.shutdownTimeout,
		CORSAllowedOrigins: corsOrigins,
	}
}

func parseServeFlags(fs *flag.FlagSet, flags serveFlags, args []string) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0, false
		}
		return 2, false
	}
	if *flags.port <= 0 || *flags.port > 65535 {
		fmt.Fprintln(os.Stderr, "--port must be between 1 and 65535")
		return 2, false
	}
	return 0, true
}

func runServeAI(args []string) int {
	fs := flag.NewFlagSet("serve-ai", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	flags := addServeFlags(fs, 5001)
	noWarmup := fs.Bool("no-warmup", false, "Skip loading models at startup")
	if code, ok := parseServeFlags(fs, flags, args); !ok {
		return code
	}

	cfg, logger, err := loadRuntime(flags.envLoader, "ai-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		return 1
	}

	stack, err := buildAIStack(cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("serve-ai failed to initialize")
		fmt.Fprintf(os.Stderr, "Failed to initialize AI service: %v\n", err)
		return 1
	}

	ctx, cancel := signalContext()
	defer cancel()

	if !cfg.WarmupDisabled && !*noWarmup {
		stack.registry.Warmup(ctx, cfg.WarmupPairs)
	}

	logger.Info().
		Str("providers", strings.Join(stack.orchestrator.ProviderNames(), ",")).
		Str("inference_backend", cfg.InferenceBackend).
		Msg("translation chain configured")

	srv := httpapi.NewAIServer(stack.orchestrator, stack.summarizer, logger, flags.options(cfg.CORSAllowedOriginsList()))
	if err := srv.Start(ctx); err != nil {
		logger.Error().Err(err).Str("host", *flags.host).Int("port", *flags.port).Msg("server failed")
		fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
		return 1
	}
	return 0
}

func runServeCourses(args []string) int {
	fs := flag.NewFlagSet("serve-courses", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	flags := addServeFlags(fs, 8000)
	if code, ok := parseServeFlags(fs, flags, args); !ok {
		return code
	}

	cfg, logger, err := loadRuntime(flags.envLoader, "course-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		return 1
	}
	if err := cfg.ValidateCourseService(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid course service config: %v\n", err)
		return 1
	}

	dbCtx, dbCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer dbCancel()

	pool, err := db.NewPool(dbCtx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("serve-courses failed to connect to database")
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		return 1
	}
	defer pool.Close()

	ctx, cancel := signalContext()
	defer cancel()

	srv := httpapi.NewCourseServer(pool, logger, flags.options(cfg.CORSAllowedOriginsList()))
	if err := srv.Start(ctx); err != nil {
		logger.Error().Err(err).Str("host", *flags.host).Int("port", *flags.port).Msg("server failed")
		fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
		return 1
	}
	return 0
}
