package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"thesaurus/internal/adapters/filesystem"
	"thesaurus/internal/domain"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export <scheme-id> <outline-file>",
	Short: "Write a scheme as an outline file",
	Long: `Write a scheme's hierarchy as an outline that import reads back.

Example:
  thesaurus-cli export 12 geo.txt --format coded`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := bindArg(cmd, args)
		if err != nil {
			return err
		}
		format, err := domain.ParseOutlineFormat(exportFormat)
		if err != nil {
			return err
		}

		flat, err := view.FlatTree(cmd.Context())
		if err != nil {
			return err
		}
		files := filesystem.NewFiles(".")
		if err := files.WriteOutline(args[1], flat, format); err != nil {
			return err
		}
		printer(cmd).Message(fmt.Sprintf("Wrote %d concepts to %s", len(flat), files.Path(args[1])), false)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "tab", "outline format: tab or coded")
	rootCmd.AddCommand(exportCmd)
}
