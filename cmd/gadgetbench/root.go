package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"gadgetbench/internal/config"
	"gadgetbench/internal/telemetry"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var exit = os.Exit
var cfgFile string

// closeLog flushes the log file opened by initConfig, if any.
var closeLog = func() error { return nil }

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gadgetbench",
	Short: "Measure how compiler scheduling variants change ROP gadget sets",
	Long: `gadgetbench builds each sample benchmark once per scheduling configuration,
compares the variants against the baseline with GadgetSetAnalyzer and appends
one sheet per run to a spreadsheet report, with the average change per metric.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\n=== CRITICAL ERROR: Command Execution Panic ===\n")
			fmt.Fprintf(os.Stderr, "Error: %v\n", r)
			if viper.GetBool("verbose") {
				fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			}
			exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	closeLog()
	if err != nil {
		reportError(os.Stderr, err, viper.GetBool("verbose"))
		exit(1)
	}
}

// reportError prints a one-line summary, or in verbose mode every layer of
// the wrapped chain.
func reportError(w io.Writer, err error, verbose bool) {
	fmt.Fprintf(w, "Error: %v\n", err)
	if !verbose {
		fmt.Fprintln(w, "Run with --verbose for full diagnostics.")
		return
	}
	depth := 0
	for e := errors.Unwrap(err); e != nil; e = errors.Unwrap(e) {
		depth++
		fmt.Fprintf(w, "  %d: %T: %v\n", depth, e, e)
	}
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for i, e := range joined.Unwrap() {
			fmt.Fprintf(w, "  [%d] %v\n", i, e)
		}
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Stream tool output and enable debug logging")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newMatrixCmd())
	rootCmd.AddCommand(newHistoryCmd())
}

// flagBindings maps config keys to the command-line flags overriding them.
var flagBindings = map[string]string{
	"verbose":      "verbose",
	"paths.report": "report",
}

// initConfig reads in config file and ENV variables, binds the flags of the
// running command, validates the result and sets up logging.
func initConfig(cmd *cobra.Command) error {
	if err := config.Load(cfgFile); err != nil {
		return err
	}
	for key, name := range flagBindings {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := viper.BindPFlag(key, f); err != nil {
				return fmt.Errorf("failed to bind --%s: %w", name, err)
			}
		}
	}
	if err := config.ValidateConfig(); err != nil {
		return err
	}
	closeLog = telemetry.InitLogger(viper.GetBool("verbose"), viper.GetString("log.file"))
	return nil
}
