package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"thesaurus/internal/application"
	"thesaurus/internal/application/commands"
)

var reindexAll bool

var reindexCmd = &cobra.Command{
	Use:   "reindex [scheme-id]",
	Short: "Rebuild the hierarchy index of a scheme",
	Long: `Rebuild the hierarchy index of one scheme, or of every scheme with --all.

The index is derived from the live broader/narrower links; rebuilding it
never changes the concepts themselves.

Examples:
  thesaurus-cli reindex 12
  thesaurus-cli reindex --all`,
	Args: func(cmd *cobra.Command, args []string) error {
		if reindexAll {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		env := GetApp().Env
		p := printer(cmd)

		if reindexAll {
			result, err := commands.NewReindexAllCommand(env).Execute(cmd.Context())
			if result != nil {
				p.Message(result.Message, result.Stats.Failed > 0)
				for id, schemeErr := range result.Errors {
					p.Message(fmt.Sprintf("scheme %d: %v", id, schemeErr), true)
				}
			}
			return err
		}

		schemeID, err := parseID(args[0])
		if err != nil {
			return err
		}
		result, err := commands.NewReindexSchemeCommand(env, schemeID).Execute(cmd.Context())
		if errors.Is(err, application.ErrEmptyScheme) {
			p.Message(result.Message, true)
			return nil
		}
		if result != nil {
			p.Message(result.Message, err != nil)
		}
		return err
	},
}

func init() {
	reindexCmd.Flags().BoolVarP(&reindexAll, "all", "a", false, "reindex every scheme")
	rootCmd.AddCommand(reindexCmd)
}
