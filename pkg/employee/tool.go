package employee

import (
	"context"
	"fmt"

	"github.com/Cherwin23/HR-Assistant/pkg/tool"
)

// ToolName is the name the model uses to query employee data
const ToolName = "employee_data_sql_tool"

// NewTool wraps the database as an agent tool. The sqlite driver blocks on
// disk I/O, so the tool is marked Blocking and runs on the worker pool.
func NewTool(db *DB) *tool.Definition {
	return &tool.Definition{
		Name: ToolName,
		Description: "Execute a read-only SQL query against the employee data (SQLite).\n" +
			"- Only SELECT statements are allowed.\n" +
			"- Table name: employees\n" +
			"- Use exact SQL, not natural language.\n\n" +
			"Schema:\n" + SchemaDescription,
		Parameters: []tool.Parameter{
			{
				Name:        "sql_query",
				Type:        "string",
				Description: "The SELECT statement to run against the employees table",
				Required:    true,
			},
		},
		Blocking: true,
		Handler: func(ctx context.Context, args map[string]interface{}) (string, error) {
			sqlQuery, _ := args["sql_query"].(string)
			if sqlQuery == "" {
				return "", fmt.Errorf("sql_query is required")
			}
			return db.Query(ctx, sqlQuery), nil
		},
	}
}
