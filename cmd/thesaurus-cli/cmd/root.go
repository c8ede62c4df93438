package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"thesaurus/internal/adapters/render"
	"thesaurus/internal/app"
)

var (
	configPath string
	logMode    string
	plain      bool
	showIDs    bool
	instance   *app.App
)

var rootCmd = &cobra.Command{
	Use:   "thesaurus-cli",
	Short: "CLI for indexing and browsing SKOS thesauri",
	Long: `thesaurus-cli maintains the hierarchy index of SKOS concept schemes
and answers navigation queries over them.

It provides commands to reindex schemes, apply a declared structure,
import outlines, and print trees, branches and lists.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		a, err := app.New(configPath, logMode)
		if err != nil {
			return err
		}
		instance = a
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return instance.Close()
	},
}

// Execute runs the root command. SIGINT and SIGTERM cancel the running job
// at its next batch boundary.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("THESAURUS_CONFIG"), "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&logMode, "log", "", "log mode: dev, prod or quiet (default from config)")
	rootCmd.PersistentFlags().BoolVar(&plain, "plain", false, "disable colors and styling")
	rootCmd.PersistentFlags().BoolVar(&showIDs, "ids", true, "print concept ids")
}

// GetApp returns the initialized application
func GetApp() *app.App {
	return instance
}

func printer(cmd *cobra.Command) *render.Printer {
	p := render.NewPrinter(cmd.OutOrStdout(), plain)
	p.ShowIDs = showIDs
	return p
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id: %s", arg)
	}
	return id, nil
}
