package webhook

import (
	"fmt"

	"github.com/Alx-707/whatsapp-webhook-pipeline/internal/domain/models"
)

// ValidationResult carries the outcome of a structural payload check.
// Valid is true exactly when Errors is empty.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Validate performs a structural check over the JSON-decoded request body
// before it is bound to the typed envelope. It never panics and has no side
// effects; malformed shapes are reported as human-readable strings so the
// HTTP layer can echo them back with a 400.
func Validate(payload any) ValidationResult {
	result := ValidationResult{Errors: []string{}, Warnings: []string{}}

	body, ok := payload.(map[string]any)
	if !ok {
		result.Errors = append(result.Errors, "payload must be a JSON object")
		return result
	}

	object, _ := body["object"].(string)
	if object != models.ObjectWhatsAppBusinessAccount {
		result.Errors = append(result.Errors,
			fmt.Sprintf("unexpected object type %q, want %q", object, models.ObjectWhatsAppBusinessAccount))
	}

	rawEntries, present := body["entry"]
	entries, ok := rawEntries.([]any)
	if !present || !ok {
		result.Errors = append(result.Errors, "entry must be an array")
		result.Valid = len(result.Errors) == 0
		return result
	}

	if len(entries) == 0 {
		result.Warnings = append(result.Warnings, "entry array is empty")
	}

	for i, rawEntry := range entries {
		validateEntry(i, rawEntry, &result)
	}

	result.Valid = len(result.Errors) == 0
	return result
}

func validateEntry(index int, rawEntry any, result *ValidationResult) {
	entry, ok := rawEntry.(map[string]any)
	if !ok {
		result.Errors = append(result.Errors, fmt.Sprintf("entry[%d] must be an object", index))
		return
	}

	if id, _ := entry["id"].(string); id == "" {
		result.Errors = append(result.Errors, fmt.Sprintf("entry[%d] is missing id", index))
	}

	changes, ok := entry["changes"].([]any)
	if !ok {
		result.Errors = append(result.Errors, fmt.Sprintf("entry[%d].changes must be an array", index))
		return
	}

	for j, rawChange := range changes {
		validateChange(index, j, rawChange, result)
	}
}

func validateChange(entryIndex, changeIndex int, rawChange any, result *ValidationResult) {
	change, ok := rawChange.(map[string]any)
	if !ok {
		result.Errors = append(result.Errors,
			fmt.Sprintf("entry[%d].changes[%d] must be an object", entryIndex, changeIndex))
		return
	}

	if field, _ := change["field"].(string); field != "" && field != "messages" {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("entry[%d].changes[%d] has unexpected field %q", entryIndex, changeIndex, field))
	}

	value, ok := change["value"].(map[string]any)
	if !ok {
		result.Errors = append(result.Errors,
			fmt.Sprintf("entry[%d].changes[%d] is missing value", entryIndex, changeIndex))
		return
	}

	metadata, _ := value["metadata"].(map[string]any)
	if id, _ := metadata["phone_number_id"].(string); id == "" {
		result.Errors = append(result.Errors,
			fmt.Sprintf("entry[%d].changes[%d].value.metadata.phone_number_id is missing", entryIndex, changeIndex))
	}

	_, hasMessages := value["messages"]
	_, hasStatuses := value["statuses"]
	_, hasErrors := value["errors"]
	if !hasMessages && !hasStatuses && !hasErrors {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("entry[%d].changes[%d].value carries no messages, statuses or errors", entryIndex, changeIndex))
	}
}
