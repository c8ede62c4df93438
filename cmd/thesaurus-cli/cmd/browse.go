package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"thesaurus/internal/application/query"
	"thesaurus/internal/domain"
)

// bindArg binds a view to the concept id given as first argument
func bindArg(cmd *cobra.Command, args []string) (*query.View, error) {
	id, err := parseID(args[0])
	if err != nil {
		return nil, err
	}
	return GetApp().Facade.WithConcept(cmd.Context(), id)
}

var treeCmd = &cobra.Command{
	Use:   "tree <id>",
	Short: "Display a scheme or a concept's branch as a tree",
	Long: `Display the tree of a scheme, or the branch below a concept.

Examples:
  thesaurus-cli tree 12
  thesaurus-cli tree 57 --plain`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := bindArg(cmd, args)
		if err != nil {
			return err
		}

		if view.IsScheme() {
			trees, err := view.Tree(cmd.Context())
			if err != nil {
				return err
			}
			printer(cmd).Tree(view.Concept(), trees)
			return nil
		}

		branch, err := view.Branch(cmd.Context())
		if err != nil {
			return err
		}
		printer(cmd).Tree(nil, []*domain.TreeNode{branch})
		return nil
	},
}

var topsCmd = &cobra.Command{
	Use:   "tops <id>",
	Short: "List the top concepts of a scheme",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := bindArg(cmd, args)
		if err != nil {
			return err
		}
		tops, err := view.Tops(cmd.Context())
		if err != nil {
			return err
		}
		printer(cmd).Concepts(tops)
		return nil
	},
}

var ascendantsSelf bool

var ascendantsCmd = &cobra.Command{
	Use:   "ascendants <concept-id>",
	Short: "List the broader concepts above a concept, closest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := bindArg(cmd, args)
		if err != nil {
			return err
		}
		get := view.Ascendants
		if ascendantsSelf {
			get = view.AscendantsOrSelf
		}
		chain, err := get(cmd.Context())
		if err != nil {
			return err
		}
		printer(cmd).Concepts(chain)
		return nil
	},
}

var descendantsSelf bool

var descendantsCmd = &cobra.Command{
	Use:   "descendants <concept-id>",
	Short: "List every concept below a concept, indented by depth",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := bindArg(cmd, args)
		if err != nil {
			return err
		}

		var entries []domain.FlatEntry
		if descendantsSelf {
			entries, err = view.DescendantsOrSelf(cmd.Context())
		} else {
			entries, err = view.Descendants(cmd.Context())
			for i := range entries {
				entries[i].Level--
			}
		}
		if err != nil {
			return err
		}
		printer(cmd).Flat(entries)
		return nil
	},
}

var siblingsSelf bool

var siblingsCmd = &cobra.Command{
	Use:   "siblings <concept-id>",
	Short: "List the concepts sharing a concept's parent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := bindArg(cmd, args)
		if err != nil {
			return err
		}
		get := view.Siblings
		if siblingsSelf {
			get = view.SiblingsOrSelf
		}
		siblings, err := get(cmd.Context())
		if err != nil {
			return err
		}
		printer(cmd).Concepts(siblings)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a concept's place in its scheme",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		view, err := bindArg(cmd, args)
		if err != nil {
			return err
		}
		p := printer(cmd)
		c := view.Concept()

		p.Title(fmt.Sprintf("%s #%d", c.Title, c.ID))
		p.LabelValue("class", view.Class().String())

		scheme, err := view.Scheme(ctx)
		if err != nil {
			return err
		}
		if scheme != nil {
			p.LabelValue("scheme", fmt.Sprintf("%s #%d", scheme.Title, scheme.ID))
		}
		indexed, err := view.HasIndex(ctx)
		if err != nil {
			return err
		}
		p.LabelValue("indexed", fmt.Sprintf("%t", indexed))
		if indexed && scheme != nil {
			at, ok, err := GetApp().DB.Index().LastIndexed(scheme.ID)
			if err != nil {
				return err
			}
			if ok {
				p.LabelValue("last indexed", at.Local().Format(time.RFC3339))
			}
		}

		if !view.IsScheme() {
			chain, err := view.AscendantsOrSelf(ctx)
			if err != nil {
				return err
			}
			titles := make([]string, 0, len(chain))
			for i := len(chain) - 1; i >= 0; i-- {
				titles = append(titles, chain[i].Title)
			}
			p.LabelValue("path", domain.JoinPath(titles, GetApp().Cfg.Separator))
		}

		narrowers, err := view.Narrowers(ctx)
		if err != nil {
			return err
		}
		p.LabelValue("narrower", fmt.Sprintf("%d", len(narrowers)))

		for _, v := range c.Values {
			if v.Type == domain.ValueLiteral {
				p.LabelValue(v.Term, v.Literal)
			}
		}
		return nil
	},
}

var (
	listAscendance bool
	listSeparator  string
	listIndent     string
	listPrependID  bool
	listAppendID   bool
	listMaxLength  int
	listRecords    bool
)

var listCmd = &cobra.Command{
	Use:   "list <id>",
	Short: "Render a scheme or branch as a selectable list",
	Long: `Render a scheme, or the branch below a concept, as one label per line.

Examples:
  thesaurus-cli list 12 --ascendance --separator " / "
  thesaurus-cli list 57 --indent "  " --append-id --max-length 40
  thesaurus-cli list 12 --records`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := bindArg(cmd, args)
		if err != nil {
			return err
		}

		if listRecords {
			flat, err := view.FlatTree(cmd.Context())
			if err != nil {
				return err
			}
			for _, r := range query.Records(flat) {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%d\t%s\n", r.ID, r.Level, r.Title)
			}
			return nil
		}

		opts := domain.ListOptions{
			Ascendance: listAscendance,
			Separator:  listSeparator,
			Indent:     listIndent,
			PrependID:  listPrependID,
			AppendID:   listAppendID,
			MaxLength:  listMaxLength,
		}
		entries, err := view.ListBranch(cmd.Context(), opts)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No results.")
			return nil
		}
		printer(cmd).List(entries)
		return nil
	},
}

func init() {
	ascendantsCmd.Flags().BoolVar(&ascendantsSelf, "self", false, "include the concept itself")
	descendantsCmd.Flags().BoolVar(&descendantsSelf, "self", false, "include the concept itself")
	siblingsCmd.Flags().BoolVar(&siblingsSelf, "self", false, "include the concept itself")

	listCmd.Flags().BoolVar(&listAscendance, "ascendance", false, "prefix labels with their ancestors")
	listCmd.Flags().StringVar(&listSeparator, "separator", "", "separator between path segments (default from config)")
	listCmd.Flags().StringVar(&listIndent, "indent", "", "indentation repeated per level")
	listCmd.Flags().BoolVar(&listPrependID, "prepend-id", false, "write the id before each label")
	listCmd.Flags().BoolVar(&listAppendID, "append-id", false, "write the id after each label")
	listCmd.Flags().IntVar(&listMaxLength, "max-length", 0, "truncate labels to this many characters")
	listCmd.Flags().BoolVar(&listRecords, "records", false, "print id, level and title columns for the whole scheme")

	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(topsCmd)
	rootCmd.AddCommand(ascendantsCmd)
	rootCmd.AddCommand(descendantsCmd)
	rootCmd.AddCommand(siblingsCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(listCmd)
}
