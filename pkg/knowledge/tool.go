package knowledge

import (
	"context"
	"fmt"

	"github.com/Cherwin23/HR-Assistant/pkg/tool"
)

// ToolName is the name the model uses to invoke handbook retrieval
const ToolName = "handbook_retriever_tool"

// NewTool wraps the store as an agent tool. Retrieval is I/O-light so the
// tool is non-blocking and runs on the caller's goroutine.
func NewTool(store *Store, topK int) *tool.Definition {
	return &tool.Definition{
		Name: ToolName,
		Description: "Search the employee handbook for company policies, benefits, " +
			"leave rules, code of conduct and other HR documentation. " +
			"Use this for any question about company policy.",
		Parameters: []tool.Parameter{
			{
				Name:        "query",
				Type:        "string",
				Description: "The policy question to search the handbook for",
				Required:    true,
			},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (string, error) {
			query, _ := args["query"].(string)
			if query == "" {
				return "", fmt.Errorf("query is required")
			}

			snippets, err := store.Search(ctx, query, topK)
			if err != nil {
				return "", fmt.Errorf("handbook search failed: %w", err)
			}
			return FormatSnippets(snippets), nil
		},
	}
}
