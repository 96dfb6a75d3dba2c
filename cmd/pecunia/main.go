package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose bool
	baseURL string
	timeout time.Duration
	asJSON  bool

	// Logger
	logger = zap.NewNop()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pecunia",
	Short: "Pecunia assistant developer tool",
	Long: `pecunia exercises the assistant pipeline from the terminal.

classify shows how a message would be routed without calling anything.
ask runs one message through a throwaway session against the analysis backend.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !verbose {
			return nil
		}
		config := zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		l, err := config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "Print JSON instead of text")

	askCmd.Flags().StringVar(&baseURL, "base-url", envOr("ANALYSIS_BASE_URL", "http://localhost:8001"), "Analysis backend base URL")
	askCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Backend request timeout")
	askCmd.Flags().Float64Var(&income, "income", 0, "Override monthly income")
	askCmd.Flags().Float64Var(&budget, "budget", 0, "Override monthly budget")

	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(askCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
