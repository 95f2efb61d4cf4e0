package llm

// DecisionSchema returns the JSON schema every planning completion is
// constrained to. The shape is strict-mode compatible: every object is
// closed, every property key appears in required, and optionality is
// expressed through nullable types. Providers that enforce the same mode
// must serialize this schema unmodified.
func DecisionSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"action", "reply", "question", "draft", "sessionPatch"},
		"properties": map[string]any{
			"action": map[string]any{
				"type": "string",
				"enum": []string{"chat", "ask", "propose_event"},
			},
			"reply":    map[string]any{"type": []string{"string", "null"}},
			"question": map[string]any{"type": []string{"string", "null"}},
			"draft": map[string]any{
				"type":                 []string{"object", "null"},
				"additionalProperties": false,
				"required": []string{
					"name", "description", "scheduledStartTime",
					"scheduledEndTime", "entityType", "location", "channelId",
				},
				"properties": map[string]any{
					"name":               map[string]any{"type": "string"},
					"description":        map[string]any{"type": []string{"string", "null"}},
					"scheduledStartTime": map[string]any{"type": "string"},
					"scheduledEndTime":   map[string]any{"type": []string{"string", "null"}},
					"entityType": map[string]any{
						"type": "string",
						"enum": []string{"EXTERNAL", "VOICE", "STAGE"},
					},
					"location":  map[string]any{"type": []string{"string", "null"}},
					"channelId": map[string]any{"type": []string{"string", "null"}},
				},
			},
			"sessionPatch": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"required":             []string{"mode", "awaiting"},
				"properties": map[string]any{
					"mode": map[string]any{
						"type": []string{"string", "null"},
						"enum": []any{"chat", "event", nil},
					},
					"awaiting": map[string]any{
						"type": []string{"string", "null"},
						"enum": []any{"name", "where", "duration", "description", "confirm", "null", nil},
					},
				},
			},
		},
	}
}
