package main

import (
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"go.eggybyte.com/settingsx/core/errors"
	"go.eggybyte.com/settingsx/core/log"
	"go.eggybyte.com/settingsx/httpx"
	"go.eggybyte.com/settingsx/optionsx"
	"go.eggybyte.com/settingsx/runtimex"
)

var (
	healthAddr  string
	metricsAddr string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Validate the settings and serve them until interrupted",
	Long: `Registers and validates the settings, then serves the current values on
/settings/sample and /settings/server at Server:Addr, health on /healthz and
metrics on /metrics. Configuration updates from the file or ConfigMap are
applied without a restart.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&healthAddr, "health-addr", ":8081", "Address serving /healthz")
	serveCmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9091", "Address serving /metrics")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	unwatch := a.collection.Watch(a.manager)
	defer unwatch()

	sample := optionsx.MustGet[SampleConfiguration](a.collection)
	sample.OnChange(func(r optionsx.Result[SampleConfiguration]) {
		a.logger.Info("sample settings reloaded", log.Bool("valid", r.Valid()))
	})

	server, err := optionsx.MustGet[ServerConfiguration](a.collection).Value()
	if err != nil {
		printFailures(cmd, err)
		return err
	}

	router := newRouter(server, map[string]http.Handler{
		"sample": httpx.SlotHandler(sample),
		"server": httpx.SlotHandler(optionsx.MustGet[ServerConfiguration](a.collection)),
	})

	err = runtimex.Run(ctx, nil, runtimex.Options{
		Logger:         a.logger,
		StartupChecks:  []runtimex.StartupCheck{runtimex.SettingsCheck(a.collection)},
		HealthCheckers: []runtimex.HealthChecker{runtimex.SettingsHealth(a.collection)},
		HTTP:           &runtimex.HTTPOptions{Addr: server.Addr, Handler: router},
		Health:         &runtimex.Endpoint{Addr: healthAddr},
		Metrics:        &runtimex.Endpoint{Addr: metricsAddr},
		MetricsHandler: a.metrics.Handler(),
	})
	printFailures(cmd, err)
	return err
}

// newRouter serves each slot handler under /settings/{section}.
func newRouter(server ServerConfiguration, sections map[string]http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(server.ReadTimeout))
	r.Use(httpx.SecureMiddleware(httpx.DefaultSecurityHeaders()))
	r.Use(httpx.CORSMiddleware(httpx.CORSOptions{AllowedOrigins: server.AllowOrigins}))

	r.Get("/settings/{section}", func(w http.ResponseWriter, req *http.Request) {
		h, ok := sections[strings.ToLower(chi.URLParam(req, "section"))]
		if !ok {
			_ = httpx.WriteError(w, errors.New(errors.CodeNotFound, "no settings section "+chi.URLParam(req, "section")))
			return
		}
		h.ServeHTTP(w, req)
	})
	return r
}
