package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"folklist/internal/config"
	"folklist/internal/events"
	appLog "folklist/internal/log"
	"folklist/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	events     string
	validate   bool
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if flags.events != "" {
		conf.Events = flags.events
	}

	loader := &events.Loader{
		Fetcher: events.NewFetcher(conf.CacheDir),
		Expand: events.ExpandConfig{
			HorizonDays:    conf.HorizonDays,
			MaxOccurrences: conf.MaxOccurrences,
		},
	}
	refresh := func(ctx context.Context) (*events.Store, error) {
		return loader.Load(ctx, conf.Events)
	}

	if flags.validate {
		store, err := refresh(context.Background())
		if err != nil {
			appLog.Error("validation failed", err, "events", conf.Events)
			os.Exit(1)
		}
		fmt.Printf("Successfully validated %d events.\n", len(store.All()))
		return
	}

	appLog.Info("folklist starting",
		"listen", conf.Listen,
		"events", conf.Events,
		"refresh", conf.RefreshCron,
		"horizon_days", conf.HorizonDays,
		"max_occurrences", conf.MaxOccurrences,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	// The first snapshot must load; after that, failed refreshes keep
	// the published snapshot serving.
	store, err := refresh(ctx)
	if err != nil {
		appLog.Error("initial load failed", err, "events", conf.Events)
		os.Exit(1)
	}
	holder := events.NewHolder(store)

	scheduler := cron.New()
	_, err = scheduler.AddFunc(conf.RefreshCron, func() {
		refreshCtx, refreshCancel := context.WithTimeout(ctx, 5*time.Minute)
		defer refreshCancel()
		next, err := refresh(refreshCtx)
		if err != nil {
			appLog.Error("scheduled refresh failed, keeping current snapshot", err)
			return
		}
		holder.Publish(next)
	})
	if err != nil {
		appLog.Error("invalid refresh schedule", err, "refresh", conf.RefreshCron)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	server := web.NewServer(conf, holder, refresh)
	httpServer := &http.Server{
		Addr:    conf.Listen,
		Handler: server.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	appLog.Info("listening", "addr", "http://"+conf.Listen)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		appLog.Error("http server failed", err)
		os.Exit(1)
	}
	appLog.Info("folklist exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig
	flag.StringVar(&cfg.configPath, "config", "folklist.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.StringVar(&cfg.events, "events", "", "Events source file, directory or URL (overrides config if set)")
	flag.BoolVar(&cfg.validate, "validate", false, "Validate the events source and exit")
	flag.Parse()
	return cfg
}
