package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"thesaurus/internal/adapters/render"
	"thesaurus/internal/application/query"
	"thesaurus/internal/domain"
)

// RegisterReadTools adds all read-only thesaurus tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, facade *query.Facade) {
	s.AddTool(topsTool(), topsHandler(facade))
	s.AddTool(treeTool(), treeHandler(facade))
	s.AddTool(ascendantsTool(), ascendantsHandler(facade))
	s.AddTool(descendantsTool(), descendantsHandler(facade))
	s.AddTool(siblingsTool(), siblingsHandler(facade))
	s.AddTool(listTreeTool(), listTreeHandler(facade))
}

// --- tops ---

func topsTool() mcp.Tool {
	return mcp.NewTool("tops",
		mcp.WithDescription("List the top concepts of a scheme in order. Any concept id resolves to its scheme."),
		mcp.WithNumber("id",
			mcp.Description("Scheme or concept id"),
			mcp.Required(),
		),
	)
}

func topsHandler(facade *query.Facade) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		view, err := bind(ctx, facade, req)
		if err != nil {
			return toolError(err)
		}
		tops, err := view.Tops(ctx)
		if err != nil {
			return toolError(err)
		}
		return text(func(p *render.Printer) { p.Concepts(tops) })
	}
}

// --- tree ---

func treeTool() mcp.Tool {
	return mcp.NewTool("tree",
		mcp.WithDescription("Display a scheme as a tree. With a concept id, display only that concept's branch."),
		mcp.WithNumber("id",
			mcp.Description("Scheme or concept id"),
			mcp.Required(),
		),
	)
}

func treeHandler(facade *query.Facade) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		view, err := bind(ctx, facade, req)
		if err != nil {
			return toolError(err)
		}

		if view.IsScheme() {
			trees, err := view.Tree(ctx)
			if err != nil {
				return toolError(err)
			}
			return text(func(p *render.Printer) { p.Tree(view.Concept(), trees) })
		}

		branch, err := view.Branch(ctx)
		if err != nil {
			return toolError(err)
		}
		return text(func(p *render.Printer) { p.Tree(nil, []*domain.TreeNode{branch}) })
	}
}

// --- ascendants ---

func ascendantsTool() mcp.Tool {
	return mcp.NewTool("ascendants",
		mcp.WithDescription("List the broader concepts above a concept, closest first."),
		mcp.WithNumber("id",
			mcp.Description("Concept id"),
			mcp.Required(),
		),
	)
}

func ascendantsHandler(facade *query.Facade) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		view, err := bind(ctx, facade, req)
		if err != nil {
			return toolError(err)
		}
		chain, err := view.Ascendants(ctx)
		if err != nil {
			return toolError(err)
		}
		return text(func(p *render.Printer) { p.Concepts(chain) })
	}
}

// --- descendants ---

func descendantsTool() mcp.Tool {
	return mcp.NewTool("descendants",
		mcp.WithDescription("List every concept below a concept in tree order, indented by depth."),
		mcp.WithNumber("id",
			mcp.Description("Concept id"),
			mcp.Required(),
		),
	)
}

func descendantsHandler(facade *query.Facade) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		view, err := bind(ctx, facade, req)
		if err != nil {
			return toolError(err)
		}
		entries, err := view.Descendants(ctx)
		if err != nil {
			return toolError(err)
		}
		for i := range entries {
			entries[i].Level--
		}
		return text(func(p *render.Printer) { p.Flat(entries) })
	}
}

// --- siblings ---

func siblingsTool() mcp.Tool {
	return mcp.NewTool("siblings",
		mcp.WithDescription("List the concepts sharing a concept's parent (or the other top concepts)."),
		mcp.WithNumber("id",
			mcp.Description("Concept id"),
			mcp.Required(),
		),
	)
}

func siblingsHandler(facade *query.Facade) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		view, err := bind(ctx, facade, req)
		if err != nil {
			return toolError(err)
		}
		siblings, err := view.Siblings(ctx)
		if err != nil {
			return toolError(err)
		}
		return text(func(p *render.Printer) { p.Concepts(siblings) })
	}
}

// --- list_tree ---

func listTreeTool() mcp.Tool {
	return mcp.NewTool("list_tree",
		mcp.WithDescription("Render a scheme or a concept's branch as a selectable list of labels."),
		mcp.WithNumber("id",
			mcp.Description("Scheme or concept id"),
			mcp.Required(),
		),
		mcp.WithBoolean("ascendance",
			mcp.Description("Prefix each label with its ancestors"),
		),
		mcp.WithString("separator",
			mcp.Description("Separator between path segments"),
		),
		mcp.WithString("indent",
			mcp.Description("Indentation repeated per level when ascendance is off"),
		),
		mcp.WithBoolean("prepend_id",
			mcp.Description("Write the id before each label"),
		),
		mcp.WithBoolean("append_id",
			mcp.Description("Write the id after each label"),
		),
		mcp.WithNumber("max_length",
			mcp.Description("Truncate labels to this many characters"),
		),
	)
}

func listTreeHandler(facade *query.Facade) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		view, err := bind(ctx, facade, req)
		if err != nil {
			return toolError(err)
		}

		opts := domain.ListOptions{
			Ascendance: req.GetBool("ascendance", false),
			Separator:  req.GetString("separator", ""),
			Indent:     req.GetString("indent", ""),
			PrependID:  req.GetBool("prepend_id", false),
			AppendID:   req.GetBool("append_id", false),
			MaxLength:  req.GetInt("max_length", 0),
		}
		entries, err := view.ListBranch(ctx, opts)
		if err != nil {
			return toolError(err)
		}
		if len(entries) == 0 {
			return mcp.NewToolResultText("No results."), nil
		}
		return text(func(p *render.Printer) { p.List(entries) })
	}
}

// --- helpers ---

func bind(ctx context.Context, facade *query.Facade, req mcp.CallToolRequest) (*query.View, error) {
	id := int64(req.GetInt("id", 0))
	if id <= 0 {
		return nil, fmt.Errorf("id is required")
	}
	return facade.WithConcept(ctx, id)
}

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func text(write func(p *render.Printer)) (*mcp.CallToolResult, error) {
	var sb strings.Builder
	write(render.NewPrinter(&sb, true))
	return mcp.NewToolResultText(sb.String()), nil
}
