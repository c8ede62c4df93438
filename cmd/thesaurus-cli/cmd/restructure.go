package cmd

import (
	"github.com/spf13/cobra"

	"thesaurus/internal/adapters/filesystem"
	"thesaurus/internal/application/commands"
)

var restructureCmd = &cobra.Command{
	Use:   "restructure <scheme-id> <structure.json>",
	Short: "Rearrange a scheme to match a declared structure",
	Long: `Rearrange a scheme so its hierarchy matches a declared structure, then
reindex it.

The structure file is JSON, either an array of entries or an object keyed
by concept id. Entry order is the sibling order. A null parent declares a
top concept; "remove": true takes the concept and its declared branch out
of the scheme.

  [{"id": 1, "parent": null}, {"id": 2, "parent": 1}]
  {"1": {"parent": null}, "2": {"parent": 1, "remove": true}}

Example:
  thesaurus-cli restructure 12 structure.json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		schemeID, err := parseID(args[0])
		if err != nil {
			return err
		}
		structure, err := filesystem.NewFiles(".").ReadStructure(args[1])
		if err != nil {
			return err
		}

		result, err := commands.NewApplyStructureCommand(GetApp().Env, schemeID, structure).Execute(cmd.Context())
		if result != nil {
			printer(cmd).Message(result.Message, err != nil)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(restructureCmd)
}
