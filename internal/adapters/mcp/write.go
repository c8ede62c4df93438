package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"thesaurus/internal/application"
	"thesaurus/internal/application/commands"
	"thesaurus/internal/domain"
)

// RegisterWriteTools adds the indexing, restructuring and import tools to
// the MCP server.
func RegisterWriteTools(s *server.MCPServer, env *commands.Env) {
	s.AddTool(reindexTool(), reindexHandler(env))
	s.AddTool(reindexAllTool(), reindexAllHandler(env))
	s.AddTool(applyStructureTool(), applyStructureHandler(env))
	s.AddTool(importOutlineTool(), importOutlineHandler(env))
}

// --- reindex ---

func reindexTool() mcp.Tool {
	return mcp.NewTool("reindex",
		mcp.WithDescription("Rebuild the hierarchy index of one scheme from its live links."),
		mcp.WithNumber("scheme_id",
			mcp.Description("Scheme id"),
			mcp.Required(),
		),
	)
}

func reindexHandler(env *commands.Env) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd := commands.NewReindexSchemeCommand(env, int64(req.GetInt("scheme_id", 0)))
		result, err := cmd.Execute(ctx)
		if errors.Is(err, application.ErrEmptyScheme) {
			return mcp.NewToolResultText(result.Message), nil
		}
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- reindex_all ---

func reindexAllTool() mcp.Tool {
	return mcp.NewTool("reindex_all",
		mcp.WithDescription("Rebuild the index of every scheme. Failing schemes are reported and skipped."),
	)
}

func reindexAllHandler(env *commands.Env) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := commands.NewReindexAllCommand(env).Execute(ctx)
		if err != nil && result == nil {
			return toolError(err)
		}

		var sb strings.Builder
		sb.WriteString(result.Message)
		sb.WriteByte('\n')
		for id, schemeErr := range result.Errors {
			fmt.Fprintf(&sb, "scheme %d: %v\n", id, schemeErr)
		}
		if err != nil {
			fmt.Fprintf(&sb, "stopped: %v\n", err)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- apply_structure ---

func applyStructureTool() mcp.Tool {
	return mcp.NewTool("apply_structure",
		mcp.WithDescription(`Rearrange a scheme to match a declared structure, then reindex it. The structure is JSON: either [{"id":1,"parent":null},{"id":2,"parent":1,"remove":false}] or {"1":{"parent":null},"2":{"parent":1}}. Entry order is the sibling order; removing a concept removes its declared branch.`),
		mcp.WithNumber("scheme_id",
			mcp.Description("Scheme id"),
			mcp.Required(),
		),
		mcp.WithString("structure",
			mcp.Description("Declared structure as JSON"),
			mcp.Required(),
		),
	)
}

func applyStructureHandler(env *commands.Env) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		structure, err := domain.ParseStructure([]byte(req.GetString("structure", "")))
		if err != nil {
			return toolError(err)
		}

		cmd := commands.NewApplyStructureCommand(env, int64(req.GetInt("scheme_id", 0)), structure)
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- import_outline ---

func importOutlineTool() mcp.Tool {
	return mcp.NewTool("import_outline",
		mcp.WithDescription("Create a new scheme from an outline. Tab format: one concept per line, depth = leading tabs. Coded format: \"01-02 label\", depth = number of dashes."),
		mcp.WithString("title",
			mcp.Description("Title of the new scheme"),
			mcp.Required(),
		),
		mcp.WithString("outline",
			mcp.Description("Outline text, one concept per line"),
			mcp.Required(),
		),
		mcp.WithString("format",
			mcp.Description("Outline format"),
			mcp.Enum("tab", "coded"),
		),
		mcp.WithString("fill",
			mcp.Description("Comma-separated computed properties to store: descriptor, path, ascendance"),
		),
		mcp.WithString("separator",
			mcp.Description("Separator for path and ascendance values"),
		),
	)
}

func importOutlineHandler(env *commands.Env) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		format, err := domain.ParseOutlineFormat(req.GetString("format", "tab"))
		if err != nil {
			return toolError(err)
		}
		fill, err := commands.ParseFillOptions(req.GetString("fill", ""))
		if err != nil {
			return toolError(err)
		}

		cmd := commands.NewBuildFromOutlineCommand(env,
			req.GetString("title", ""),
			domain.SplitOutline(req.GetString("outline", "")),
			format,
			fill,
			req.GetString("separator", ""),
		)
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}
