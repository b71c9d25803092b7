package intake

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/galtpos/oasara-sub004/internal/model"
	"github.com/galtpos/oasara-sub004/pkg/anthropic"
)

// ToolName is the tool the model calls once it has all journey details.
const ToolName = "create_journey"

const (
	maxBudget          = 1_000_000
	minProcedureLength = 3
)

// Timelines accepted for a journey.
var Timelines = []string{"urgent", "flexible", "planning"}

// journeyFields are the required tool input keys in report order.
var journeyFields = []string{"procedure", "budgetMin", "budgetMax", "timeline"}

// JourneyTool is the create_journey tool declaration.
var JourneyTool = anthropic.Tool{
	Name: ToolName,
	Description: "Creates a personalized healthcare journey once the procedure, the budget range " +
		"(min and max) and the timeline are all known.",
	Properties: map[string]any{
		"procedure": map[string]any{
			"type":        "string",
			"description": `The specific procedure, e.g. "hip replacement" or "dental implants".`,
		},
		"budgetMin": map[string]any{
			"type":        "number",
			"description": "Minimum budget in USD.",
		},
		"budgetMax": map[string]any{
			"type":        "number",
			"description": "Maximum budget in USD.",
		},
		"timeline": map[string]any{
			"type":        "string",
			"enum":        Timelines,
			"description": "urgent (1-3 months), flexible (3-6 months) or planning (6+ months).",
		},
	},
	Required: journeyFields,
}

// SystemPrompt steers the model towards collecting the three journey facts.
const SystemPrompt = `You are a friendly guide for people exploring medical travel. Through natural conversation, learn three things:
1. The specific procedure they are considering (for example "breast augmentation" or "knee replacement").
2. Their budget range in USD, as a minimum and a maximum.
3. Their timeline: urgent (next 1-3 months), flexible (3-6 months) or planning (6+ months).

Ask one thing at a time and keep the tone warm. Confirm a procedure when you hear it. If the budget is vague, offer ranges such as $5k-10k or $10k-20k.

Once you know all three, summarize them back in one sentence and call the create_journey tool.`

// ValidationError is a rejected tool call, rendered as a 400 response.
type ValidationError struct {
	Err     string `json:"error"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string { return e.Err + ": " + e.Message }

// Status is the HTTP status for the error.
func (e *ValidationError) Status() int { return http.StatusBadRequest }

func invalid(err, msg string) *ValidationError {
	return &ValidationError{Err: err, Message: msg}
}

// ValidateJourney checks a create_journey tool input. The checks run in a
// fixed order and the first failure is returned.
func ValidateJourney(input json.RawMessage) (*model.Journey, *ValidationError) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(input, &raw); err != nil {
		return nil, invalid("Incomplete journey details", "Missing required fields: "+strings.Join(journeyFields, ", "))
	}

	var missing []string
	for _, k := range journeyFields {
		if v, ok := raw[k]; !ok || isNull(v) {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return nil, invalid("Incomplete journey details", "Missing required fields: "+strings.Join(missing, ", "))
	}

	var j model.Journey
	if json.Unmarshal(raw["budgetMin"], &j.BudgetMin) != nil || json.Unmarshal(raw["budgetMax"], &j.BudgetMax) != nil {
		return nil, invalid("Invalid budget values", "Budget must be numeric values")
	}
	if j.BudgetMin < 0 || j.BudgetMax < 0 {
		return nil, invalid("Invalid budget range", "Budget values must be positive")
	}
	if j.BudgetMin > j.BudgetMax {
		return nil, invalid("Invalid budget range", "Minimum budget cannot exceed maximum budget")
	}
	if j.BudgetMax > maxBudget {
		return nil, invalid("Invalid budget range", "Budget seems unrealistic. Please verify the amount.")
	}

	if json.Unmarshal(raw["procedure"], &j.Procedure) != nil || len([]rune(strings.TrimSpace(j.Procedure))) < minProcedureLength {
		return nil, invalid("Invalid procedure", "Please specify a valid procedure type")
	}
	j.Procedure = strings.TrimSpace(j.Procedure)

	if json.Unmarshal(raw["timeline"], &j.Timeline) != nil || !validTimeline(j.Timeline) {
		return nil, invalid("Invalid timeline", "Timeline must be one of: "+strings.Join(Timelines, ", "))
	}
	return &j, nil
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

func validTimeline(t string) bool {
	for _, v := range Timelines {
		if t == v {
			return true
		}
	}
	return false
}
