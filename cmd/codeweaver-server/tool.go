package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/knitli/codeweaver/internal/mcputils"
	"github.com/knitli/codeweaver/internal/query"
	"github.com/knitli/codeweaver/internal/types"
)

// findCodeArgs mirrors find_code's tool parameters for
// mcputils.CoerceBindArguments, which tolerates MCP clients that send
// numbers/booleans/arrays as JSON-encoded strings.
type findCodeArgs struct {
	Query          string   `json:"query"`
	Intent         string   `json:"intent"`
	TokenLimit     uint32   `json:"token_limit"`
	IncludeTests   bool     `json:"include_tests"`
	FocusLanguages []string `json:"focus_languages"`
	MaxResults     uint32   `json:"max_results"`
}

// AddFindCodeTool registers find_code on s, backed by pipeline.
// Grounded on the teacher's internal/mcp/tool.go AddCortexSearchTool:
// same mcp.NewTool/argument-map/handler shape, rewired from
// ContextSearcher.Query to query.Pipeline.FindCode and from
// CortexSearchRequest's tags/chunk_types filters to find_code's
// intent/token_limit/include_tests/focus_languages/max_results fields.
func AddFindCodeTool(s *server.MCPServer, pipeline *query.Pipeline) {
	tool := mcp.NewTool(
		"find_code",
		mcp.WithDescription("Search the indexed codebase for code relevant to a natural-language query, returning ranked snippets sized to a token budget."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural language description of the code to find")),
		mcp.WithString("intent",
			mcp.Description("Query intent: UNDERSTAND, IMPLEMENT, DEBUG, or DISCOVER. Auto-detected from query when omitted.")),
		mcp.WithNumber("token_limit",
			mcp.Description("Maximum tokens across all returned snippets (1-200000, default 10000)")),
		mcp.WithBoolean("include_tests",
			mcp.Description("Include test files in results (default false)")),
		mcp.WithArray("focus_languages",
			mcp.Description("Restrict results to these languages; empty means all")),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of matches to return (1-500, default 50)")),
	)

	s.AddTool(tool, findCodeHandler(pipeline))
}

func findCodeHandler(pipeline *query.Pipeline) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if _, ok := request.GetRawArguments().(map[string]interface{}); !ok {
			return mcp.NewToolResultError("invalid arguments format: expected object"), nil
		}

		var args findCodeArgs
		if err := mcputils.CoerceBindArguments(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if args.Query == "" {
			return mcp.NewToolResultError("query parameter is required"), nil
		}

		req := types.DefaultFindCodeRequest(args.Query)
		if args.Intent != "" {
			intent := types.IntentType(args.Intent)
			req.Intent = &intent
		}
		if args.TokenLimit != 0 {
			req.TokenLimit = args.TokenLimit
		}
		req.IncludeTests = args.IncludeTests
		req.FocusLanguages = args.FocusLanguages
		if args.MaxResults != 0 {
			req.MaxResults = args.MaxResults
		}

		resp, err := pipeline.FindCode(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("find_code failed: %w", err)
		}

		jsonData, err := json.Marshal(resp)
		if err != nil {
			return nil, fmt.Errorf("marshaling find_code response: %w", err)
		}
		return mcp.NewToolResultText(string(jsonData)), nil
	}
}
