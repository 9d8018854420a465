// Package intent classifies inbound questions and decides whether the
// agent loop runs at all.
package intent

// Categories a classification can resolve to. Anything else upstream
// produces is normalized to CategoryInvalid.
const (
	CategoryQuery          = "query"
	CategoryAction         = "action"
	CategoryConversational = "conversational"
	CategoryInvalid        = "invalid"
)

// Known module codes; unknown codes are discarded to null.
var knownModules = map[string]bool{
	"M1": true, // leave
	"M2": true, // payroll
	"M3": true, // employee records
}

// entitySlots is the fixed entity template. Missing keys default to null.
var entitySlots = []string{
	"days",
	"leave_type",
	"start_date",
	"end_date",
	"department",
	"role",
	"location",
	"name",
	"employee_id",
	"job_family",
}

// Result is a normalized classification outcome. It is immutable once
// produced; the facade derives the outbound response from it.
type Result struct {
	Intent          string                 `json:"intent"`
	Category        string                 `json:"category"`
	Module          *string                `json:"module"`
	UseCase         *string                `json:"use_case"`
	Answer          *string                `json:"answer"`
	Confidence      float64                `json:"confidence"`
	RequiresContext []string               `json:"requires_context"`
	Entities        map[string]interface{} `json:"entities"`
}

// DefaultEntities returns the entity template with every slot null
func DefaultEntities() map[string]interface{} {
	entities := make(map[string]interface{}, len(entitySlots))
	for _, slot := range entitySlots {
		entities[slot] = nil
	}
	return entities
}

// invalidResult builds the terminal classification used when the upstream
// reply cannot be used
func invalidResult(answer string) Result {
	return Result{
		Intent:          "invalid",
		Category:        CategoryInvalid,
		Confidence:      0.0,
		Answer:          &answer,
		RequiresContext: []string{},
		Entities:        DefaultEntities(),
	}
}
