package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gocloud.dev/blob"

	"github.com/akitsu/pixget/internal/config"
	"github.com/akitsu/pixget/internal/downloader"
	"github.com/akitsu/pixget/internal/pixiv"
	"github.com/akitsu/pixget/internal/storage"
)

// commonFlags are the flags shared by every subcommand. Precedence, lowest
// to highest: defaults, config file, environment, flags.
type commonFlags struct {
	configPath string
	bucket     string
	workers    int
	timeout    time.Duration
}

func registerCommonFlags(fs *flag.FlagSet) *commonFlags {
	f := &commonFlags{}
	fs.StringVar(&f.configPath, "config", "", "Path to YAML config file")
	fs.StringVar(&f.bucket, "bucket", "", "Destination bucket URL (default: ./illustrations next to the executable)")
	fs.IntVar(&f.workers, "workers", 0, "Number of parallel download workers")
	fs.DurationVar(&f.timeout, "timeout", 0, "Per-request timeout")
	return f
}

func (f *commonFlags) loadConfig() (config.Config, error) {
	cfg := config.Default()

	if f.configPath != "" {
		fileCfg, err := config.LoadFromFile(f.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = fileCfg
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return config.Config{}, err
	}

	cfg = cfg.Merge(config.Config{
		Bucket:  f.bucket,
		Workers: f.workers,
		Timeout: f.timeout,
	})

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// app bundles the opened bucket and the logged-in API client for one
// subcommand invocation.
type app struct {
	cfg    config.Config
	bucket *blob.Bucket
	client *pixiv.Client
}

func setup(ctx context.Context, cfg config.Config) (*app, int) {
	bucket, err := storage.Open(ctx, cfg.Bucket)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return nil, ExitStorageError
	}

	client := pixiv.NewClient(pixiv.Options{
		Username:    cfg.Auth.Username,
		Password:    cfg.Auth.Password,
		AccessToken: cfg.Auth.AccessToken,
		Timeout:     cfg.Timeout,
		APIBase:     cfg.APIBase,
	})
	if err := client.Login(ctx); err != nil {
		bucket.Close()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return nil, ExitAuthError
	}

	return &app{cfg: cfg, bucket: bucket, client: client}, ExitSuccess
}

func (a *app) Close() {
	a.bucket.Close()
}

// downloadOptions maps the resolved config onto a download run.
func (a *app) downloadOptions() downloader.Options {
	return downloader.Options{
		Workers:    a.cfg.Workers,
		MaxRetries: a.cfg.MaxRetries,
		Timeout:    a.cfg.Timeout,
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\n[pixget] Received interrupt, shutting down...")
		cancel()
	}()

	return ctx, cancel
}

// apiExitCode distinguishes auth failures from other API errors.
func apiExitCode(err error) int {
	if errors.Is(err, pixiv.ErrAuthFailed) || errors.Is(err, pixiv.ErrUnauthorized) {
		return ExitAuthError
	}
	return ExitAPIError
}
