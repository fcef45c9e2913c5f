package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// v holds configuration for every command. Persistent flags are bound to it
// so that a flag overrides the matching environment variable.
var v = viper.New()

var rootCmd = &cobra.Command{
	Use:           "scraper",
	Short:         "scraper drives a browser through paginated listings and exports the records.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("output", "", "Output CSV path (overrides OUTPUT_DIR/<profile output>).")
	flags.String("gate", "", "Operator gate: stdin, file, webhook or redis.")
	flags.String("sinks", "", "Comma separated sinks: csv, postgres, sqlite.")
	flags.Bool("headless", false, "Run the browser without a window.")
	flags.String("log-level", "", "Log level: debug, info, warn, error.")
	flags.String("control-addr", "", "Listen address of the control server, e.g. :8080.")

	for key, name := range map[string]string{
		"OUTPUT":       "output",
		"GATE":         "gate",
		"SINKS":        "sinks",
		"HEADLESS":     "headless",
		"LOG_LEVEL":    "log-level",
		"CONTROL_ADDR": "control-addr",
	} {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

// ExecuteContext runs the CLI and returns the process exit code.
func ExecuteContext(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}
