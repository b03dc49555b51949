// Package main provides the settings-demo command.
//
// Overview:
//   - Responsibility: Register the sample settings, validate them at startup
//     and optionally serve health and metrics while watching for updates
//   - Key Types: Cobra command structure
//   - Concurrency Model: Single-threaded CLI execution; serve blocks until interrupted
//   - Error Semantics: Validation failures exit non-zero with the failed rules
//
// Usage:
//
//	settings-demo check --config settings.yaml --sample.samplekey=one
//	settings-demo serve --config settings.yaml --metrics-addr :9091
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	configFile string
	envPrefix  string
	logFormat  string
	logLevel   string
	useZerolog bool
	configMap  string
	namespace  string
)

var rootCmd = &cobra.Command{
	Use:   "settings-demo",
	Short: "Declarative settings registration demo",
	Long: `Registers the sample settings types, binds them from a file, the
environment and flags, and validates them.

Sources are merged in order: file, environment (prefix SETTINGS_ by default),
flags, and optionally a Kubernetes ConfigMap. Flags use dotted keys, for
example --sample.samplekey=one.`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "Settings file (yaml, json or toml)")
	flags.StringVar(&envPrefix, "env-prefix", "SETTINGS_", "Environment variable prefix")
	flags.StringVar(&logFormat, "log-format", "logfmt", "Log format: logfmt or json")
	flags.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	flags.BoolVar(&useZerolog, "zerolog", false, "Log through zerolog instead of the built-in handler")
	flags.StringVar(&configMap, "configmap", "", "Kubernetes ConfigMap to read settings from")
	flags.StringVar(&namespace, "namespace", "default", "Namespace of the ConfigMap")

	flags.String("sample.samplekey", "", "Override Sample:SampleKey")
	flags.Int("sample.samplenumber", 0, "Override Sample:SampleNumber")
	flags.String("sample.samplestring", "", "Override Sample:SampleString")
}

func main() {
	Execute()
}
