package mcp

import (
	"context"
	"log/slog"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/boardsum/internal/domain/board"
)

// registerTools adds the operator tools.
func registerTools(server *sdkmcp.Server, svc Services, logger *slog.Logger) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "recompute_summary",
		Description: "Recompute every summary total from the current board and write it to the summary card",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ emptyInput) (*sdkmcp.CallToolResult, RecomputeOutput, error) {
		res, err := svc.Recomputer.Recompute(context.WithoutCancel(ctx))
		if err != nil {
			logger.Warn("recompute from mcp failed", "error", err)
			return nil, RecomputeOutput{}, toolError(err)
		}
		return nil, toRecomputeOutput(res), nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_field_mappings",
		Description: "List the source to summary field mappings with the list each mapping is restricted to",
	}, func(_ context.Context, _ *sdkmcp.CallToolRequest, _ emptyInput) (*sdkmcp.CallToolResult, MappingsOutput, error) {
		return nil, toMappingsOutput(svc.Summary.Rules()), nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "clear_identifier_cache",
		Description: "Forget cached list names and field ids, e.g. after renaming a list or field on the board",
	}, func(_ context.Context, _ *sdkmcp.CallToolRequest, _ emptyInput) (*sdkmcp.CallToolResult, ClearCacheOutput, error) {
		lists, fields := svc.Board.ClearCache()
		return nil, ClearCacheOutput{Cleared: true, ListsDropped: lists, FieldsDropped: fields}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "clear_summary_field",
		Description: "Remove the value of one summary field from the summary card",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in ClearFieldParams) (*sdkmcp.CallToolResult, ClearFieldOutput, error) {
		field := strings.TrimSpace(in.Field)
		if field == "" {
			return nil, ClearFieldOutput{}, &APIError{Code: "INVALID_INPUT", Message: "field is required"}
		}
		if err := svc.Summary.ClearSummaryField(ctx, field); err != nil {
			return nil, ClearFieldOutput{}, toolError(err)
		}
		return nil, ClearFieldOutput{Field: field, Cleared: true}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "resolve_field",
		Description: "Look up the board id of a custom field by its exact name",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in ResolveFieldParams) (*sdkmcp.CallToolResult, ResolveFieldOutput, error) {
		if in.Name == "" {
			return nil, ResolveFieldOutput{}, &APIError{Code: "INVALID_INPUT", Message: "name is required"}
		}
		id, found, err := svc.Board.ResolveFieldID(ctx, in.Name)
		if err != nil {
			return nil, ResolveFieldOutput{}, toolError(err)
		}
		return nil, ResolveFieldOutput{Name: in.Name, ID: id, Found: found}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_board_fields",
		Description: "List every custom field defined on the board with its id and type",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ emptyInput) (*sdkmcp.CallToolResult, BoardFieldsOutput, error) {
		fields, err := svc.Board.ListCustomFields(ctx)
		if err != nil {
			return nil, BoardFieldsOutput{}, toolError(err)
		}
		if fields == nil {
			fields = []board.CustomField{}
		}
		return nil, BoardFieldsOutput{Fields: fields}, nil
	})
}
