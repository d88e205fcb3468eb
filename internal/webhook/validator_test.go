package webhook

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBody(t *testing.T, raw string) any {
	t.Helper()
	var decoded any
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	return decoded
}

func TestValidate_ValidPayload(t *testing.T) {
	payload := decodeBody(t, `{
		"object": "whatsapp_business_account",
		"entry": [{
			"id": "entry-1",
			"changes": [{
				"field": "messages",
				"value": {
					"metadata": {"display_phone_number": "15550001111", "phone_number_id": "pn-1"},
					"messages": [{"id": "wamid.1", "from": "15551234567", "type": "text"}]
				}
			}]
		}]
	}`)

	result := Validate(payload)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestValidate_StructuralErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload any
		wantErr string
	}{
		{
			name:    "not an object",
			payload: decodeBody(t, `"hello"`),
			wantErr: "payload must be a JSON object",
		},
		{
			name:    "wrong object discriminator",
			payload: decodeBody(t, `{"object": "not_whatsapp", "entry": []}`),
			wantErr: `unexpected object type "not_whatsapp"`,
		},
		{
			name:    "entry missing",
			payload: decodeBody(t, `{"object": "whatsapp_business_account"}`),
			wantErr: "entry must be an array",
		},
		{
			name:    "entry not an array",
			payload: decodeBody(t, `{"object": "whatsapp_business_account", "entry": "nope"}`),
			wantErr: "entry must be an array",
		},
		{
			name:    "entry missing id",
			payload: decodeBody(t, `{"object": "whatsapp_business_account", "entry": [{"changes": []}]}`),
			wantErr: "entry[0] is missing id",
		},
		{
			name:    "changes not an array",
			payload: decodeBody(t, `{"object": "whatsapp_business_account", "entry": [{"id": "e1", "changes": 42}]}`),
			wantErr: "entry[0].changes must be an array",
		},
		{
			name:    "change missing value",
			payload: decodeBody(t, `{"object": "whatsapp_business_account", "entry": [{"id": "e1", "changes": [{"field": "messages"}]}]}`),
			wantErr: "entry[0].changes[0] is missing value",
		},
		{
			name: "missing phone number id",
			payload: decodeBody(t, `{"object": "whatsapp_business_account", "entry": [{
				"id": "e1",
				"changes": [{"field": "messages", "value": {"metadata": {}, "messages": []}}]
			}]}`),
			wantErr: "entry[0].changes[0].value.metadata.phone_number_id is missing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.payload)
			assert.False(t, result.Valid)
			require.NotEmpty(t, result.Errors)

			found := false
			for _, err := range result.Errors {
				if strings.Contains(err, tt.wantErr) {
					found = true
				}
			}
			assert.True(t, found, "expected an error containing %q, got %v", tt.wantErr, result.Errors)
		})
	}
}

func TestValidate_Warnings(t *testing.T) {
	t.Run("empty entry array", func(t *testing.T) {
		result := Validate(decodeBody(t, `{"object": "whatsapp_business_account", "entry": []}`))
		assert.True(t, result.Valid)
		assert.Contains(t, result.Warnings, "entry array is empty")
	})

	t.Run("unexpected change field", func(t *testing.T) {
		result := Validate(decodeBody(t, `{"object": "whatsapp_business_account", "entry": [{
			"id": "e1",
			"changes": [{"field": "account_update", "value": {
				"metadata": {"phone_number_id": "pn-1"},
				"statuses": []
			}}]
		}]}`))
		assert.True(t, result.Valid)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "account_update")
	})
}

func TestValidate_ValidMatchesEmptyErrors(t *testing.T) {
	payloads := []string{
		`{"object": "whatsapp_business_account", "entry": []}`,
		`{"object": "bad", "entry": []}`,
		`{"object": "whatsapp_business_account", "entry": [{"id": "", "changes": []}]}`,
	}

	for _, raw := range payloads {
		result := Validate(decodeBody(t, raw))
		assert.Equal(t, len(result.Errors) == 0, result.Valid, "payload: %s", raw)
	}
}
