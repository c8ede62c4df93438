package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"thesaurus/internal/adapters/filesystem"
	"thesaurus/internal/application/commands"
	"thesaurus/internal/domain"
)

var (
	importTitle     string
	importFormat    string
	importFill      string
	importSeparator string
)

var importCmd = &cobra.Command{
	Use:   "import <outline-file>",
	Short: "Create a new scheme from an outline file",
	Long: `Create a new scheme and its concepts from a plain-text outline, then
index it.

Formats:
  tab    one concept per line, depth = number of leading tabs
  coded  "01-02-03 label", depth = number of dashes

--fill stores computed properties on each concept: descriptor (own
label), path (ancestors and own label), ascendance (ancestors only).

Examples:
  thesaurus-cli import geo.txt --title "Geography"
  thesaurus-cli import codes.txt --format coded --fill descriptor,path`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lines, err := filesystem.NewFiles(".").ReadOutline(args[0])
		if err != nil {
			return err
		}
		format, err := domain.ParseOutlineFormat(importFormat)
		if err != nil {
			return err
		}
		fill, err := commands.ParseFillOptions(importFill)
		if err != nil {
			return err
		}

		title := importTitle
		if title == "" {
			base := filepath.Base(args[0])
			title = strings.TrimSuffix(base, filepath.Ext(base))
		}

		result, err := commands.NewBuildFromOutlineCommand(GetApp().Env, title, lines, format, fill, importSeparator).Execute(cmd.Context())
		if result != nil {
			p := printer(cmd)
			p.Message(result.Message, err != nil)
			if result.Scheme != nil {
				p.LabelValue("scheme", fmt.Sprintf("%d", result.Scheme.ID))
			}
		}
		return err
	},
}

func init() {
	importCmd.Flags().StringVarP(&importTitle, "title", "t", "", "scheme title (default: file name)")
	importCmd.Flags().StringVarP(&importFormat, "format", "f", "tab", "outline format: tab or coded")
	importCmd.Flags().StringVar(&importFill, "fill", "", "computed properties to store: descriptor,path,ascendance")
	importCmd.Flags().StringVarP(&importSeparator, "separator", "s", "", "separator for path values (default from config)")
	rootCmd.AddCommand(importCmd)
}
