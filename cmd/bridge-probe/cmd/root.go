package cmd

import (
	"os"

	"github.com/pion/logging"
	"github.com/spf13/cobra"
)

var (
	bridgeIP string
	authKey  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "bridge-probe",
	Short: "Command-line smoke-test client for the bridge protocol",
}

// Execute adds all child commands to the root command. Called once by
// main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&bridgeIP, "bridge-ip", "", "bridge address (overrides BRIDGE_IP)")
	rootCmd.PersistentFlags().StringVar(&authKey, "auth-key", "", "bridge auth key (overrides BRIDGE_AUTH_KEY)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log verbosity: disabled, error, warn, info, debug, trace")
}

// loggerFactory builds the pion/logging factory shared by every
// component the facade constructs, set to the --log-level level.
func loggerFactory() *logging.DefaultLoggerFactory {
	f := logging.NewDefaultLoggerFactory()
	f.DefaultLogLevel = parseLogLevel(logLevel)
	return f
}

func parseLogLevel(s string) logging.LogLevel {
	switch s {
	case "disabled":
		return logging.LogLevelDisabled
	case "error":
		return logging.LogLevelError
	case "warn":
		return logging.LogLevelWarn
	case "info":
		return logging.LogLevelInfo
	case "debug":
		return logging.LogLevelDebug
	case "trace":
		return logging.LogLevelTrace
	default:
		return logging.LogLevelInfo
	}
}
