package report

import (
	"encoding/json"
	"time"

	"github.com/questbench/txvalidator/internal/check"
)

// JSON types that match downstream harness expectations
type Output struct {
	Schema      string                  `json:"schema"`
	GeneratedAt string                  `json:"generated_at"`
	Operation   string                  `json:"operation"`
	Result      *check.ValidationResult `json:"result"`
}

const outputSchema = "txvalidator/result/v1"

// EncodeJSON marshals the result in the harness output format.
func EncodeJSON(operation string, res *check.ValidationResult, now time.Time) ([]byte, error) {
	out := Output{
		Schema:      outputSchema,
		GeneratedAt: now.UTC().Format(time.RFC3339),
		Operation:   operation,
		Result:      res,
	}
	return json.MarshalIndent(out, "", "  ")
}
