package mcp

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"gopkg.in/yaml.v3"
)

const serverInstructions = `boardsum keeps a summary card on a Trello board in sync with per-card quantities.

Every total on the summary card is recomputed from scratch: each mapping sums a source custom
field over all cards (except the summary card) and writes the result to a summary field.
Mappings with a category only count cards in that category's list.

Operator tools:
- recompute_summary: run a full recompute now and report the totals written.
- list_field_mappings: show the mappings and which list each one is restricted to.
- list_board_fields / resolve_field: check field names and ids on the board.
- clear_identifier_cache: forget cached ids after renaming lists or fields on the board.
- clear_summary_field: blank one summary field on the summary card.

Docs:
- boardsum://docs/index
- boardsum://rules (current aggregation rules as YAML)
`

const rulesURI = "boardsum://rules"

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "boardsum://docs/index",
		Name:        "docs_index",
		Title:       "boardsum docs index",
		Description: "How totals are computed, when they run, and what to check when a total looks wrong.",
		Content: `# boardsum

## When totals are recomputed

- On every relevant board webhook: card created, updated, deleted, or a custom field changed.
- On ` + "`GET /update-summary`" + `, the ` + "`recompute`" + ` CLI command, or the ` + "`recompute_summary`" + ` tool.

Updates to the summary card itself are ignored so that writing totals never triggers another run.

## How a total is computed

1. Fetch all cards (with custom field values) and all lists.
2. Resolve the id of every source and summary field by exact name.
3. Start every total at zero.
4. For each card, for each field value, add the number to every mapping with that source field
   whose category allows the card's list. Text that starts with a number counts as that number;
   anything else counts as 0.
5. Write each total to the summary card as plain text (` + "`5`" + `, ` + "`12.5`" + `).

Mappings that share a summary field add into the same total.

## Troubleshooting

- A total stays at its old value: the summary field name probably does not match the board.
  Use ` + "`resolve_field`" + `, and ` + "`clear_identifier_cache`" + ` after renames.
- A card is not counted: check its list against ` + "`list_field_mappings`" + `.
- A card bounced back to its list with a comment: it was moved out of the guarded list without
  a value in the required field.
`,
	},
}

func registerDocResources(server *sdkmcp.Server, rules SummaryService) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}

	if rules == nil {
		return
	}
	server.AddResource(&sdkmcp.Resource{
		URI:         rulesURI,
		Name:        "rules",
		Title:       "Aggregation rules",
		Description: "Mappings, categories, list counts and scoped totals in effect.",
		MIMEType:    "application/yaml",
	}, func(_ context.Context, _ *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
		data, err := yaml.Marshal(rules.Rules())
		if err != nil {
			return nil, fmt.Errorf("encode rules: %w", err)
		}
		return &sdkmcp.ReadResourceResult{
			Contents: []*sdkmcp.ResourceContents{{
				URI:      rulesURI,
				MIMEType: "application/yaml",
				Text:     string(data),
			}},
		}, nil
	})
}
