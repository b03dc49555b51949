package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"go.eggybyte.com/settingsx"
	"go.eggybyte.com/settingsx/configx"
	"go.eggybyte.com/settingsx/core/log"
	"go.eggybyte.com/settingsx/logx"
	"go.eggybyte.com/settingsx/obsx"
	"go.eggybyte.com/settingsx/optionsx"
)

// app is the wiring shared by every subcommand.
type app struct {
	logger     log.Logger
	manager    configx.Manager
	metrics    *obsx.Metrics
	collection *optionsx.Collection
}

func newLogger() (log.Logger, error) {
	level, ok := logx.ParseLevel(logLevel)
	if !ok {
		return nil, fmt.Errorf("unknown log level %q", logLevel)
	}

	if useZerolog {
		// slog levels step by 4 from debug at -4; zerolog steps by 1 from debug at 0.
		zl := zerolog.New(os.Stderr).With().Timestamp().Logger().
			Level(zerolog.Level(int(level)/4 + int(zerolog.InfoLevel)))
		return logx.FromZerolog(zl), nil
	}

	return logx.New(
		logx.WithFormat(logx.Format(logFormat)),
		logx.WithLevel(level),
		logx.WithSensitiveFields("password", "token", "secret"),
	), nil
}

// newApp loads configuration and registers every discovered settings type.
func newApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	logger, err := newLogger()
	if err != nil {
		return nil, err
	}

	sources := configx.DefaultSources(configFile, envPrefix, cmd.Flags())
	if configMap != "" {
		src, err := configx.NewConfigMapSource(configMap, configx.ConfigMapOptions{
			Namespace: namespace,
			Logger:    logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create configmap source: %w", err)
		}
		sources = append(sources, src)
	}

	manager, err := configx.NewManager(ctx, configx.Options{
		Logger:  logger,
		Sources: sources,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	metrics, err := obsx.NewMetrics(obsx.Options{EnableRuntime: true})
	if err != nil {
		return nil, err
	}

	collection := optionsx.NewCollection(
		optionsx.WithLogger(logger),
		optionsx.WithObserver(metrics),
	)
	err = settingsx.RegisterAllDiscovered(collection, manager,
		settingsx.WithLogger(logger),
		settingsx.WithMetrics(metrics))
	if err != nil {
		return nil, err
	}

	return &app{
		logger:     logger,
		manager:    manager,
		metrics:    metrics,
		collection: collection,
	}, nil
}
