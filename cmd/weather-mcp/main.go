package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/actual-software/weather-mcp/internal/config"
	"github.com/actual-software/weather-mcp/internal/logging"
)

var (
	Version   = "v1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// VersionRequestedError is returned when the version flag is set.
type VersionRequestedError struct{}

func (e VersionRequestedError) Error() string {
	return "version requested"
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "weather-mcp",
		Short: "Weather MCP Server - OpenWeatherMap tools over HTTP, WebSocket and stdio",
		Long: `Weather MCP Server exposes current conditions and forecasts from the
OpenWeatherMap One Call API as MCP tools and as a small REST API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRoot,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("env-file", ".env", "Dotenv file loaded before the environment")
	rootCmd.Flags().BoolP("version", "v", false, "Show version information")

	rootCmd.AddCommand(serverCmd())
	rootCmd.AddCommand(stdioCmd())
	rootCmd.AddCommand(clientCmd())
	rootCmd.AddCommand(forecastCmd())
	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(configCmd())

	return rootCmd
}

func runRoot(cmd *cobra.Command, _ []string) error {
	if err := handleVersionFlag(cmd); err != nil {
		var errVersionRequested VersionRequestedError
		if errors.As(err, &errVersionRequested) {
			return nil
		}

		return err
	}

	return cmd.Help()
}

func handleVersionFlag(cmd *cobra.Command) error {
	showVersion, err := cmd.Flags().GetBool("version")
	if err != nil {
		return fmt.Errorf("failed to get version flag: %w", err)
	}

	if showVersion {
		printVersion(cmd.OutOrStdout())

		return VersionRequestedError{}
	}

	return nil
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "Weather MCP Server\n")
	fmt.Fprintf(w, "Version: %s\n", Version)
	fmt.Fprintf(w, "Build Time: %s\n", BuildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", GitCommit)
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}

	envFile, err := cmd.Flags().GetString("env-file")
	if err != nil {
		return nil, fmt.Errorf("failed to get env-file flag: %w", err)
	}

	var dotEnv []string
	if envFile != "" {
		dotEnv = []string{envFile}
	}

	cfg, err := config.Load(config.LoadOptions{ConfigPath: configPath, DotEnvPaths: dotEnv})
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}

// setupLogger builds the logger from the configuration. A non-empty
// --log-level overrides logging.level.
func setupLogger(cmd *cobra.Command, cfg *config.Config) (*zap.Logger, error) {
	logLevel, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get log-level flag: %w", err)
	}

	if logLevel == "" {
		logLevel = cfg.Logging.Level
	}

	logger, err := logging.New(logLevel, cfg.Logging.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return logger, nil
}

// bootstrap loads configuration and builds the logger for a subcommand.
func bootstrap(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	logger, err := setupLogger(cmd, cfg)
	if err != nil {
		return nil, nil, err
	}

	return cfg, logger, nil
}
