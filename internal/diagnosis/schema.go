package diagnosis

import "github.com/abhisek/iosdiag/internal/schema"

// requiredFields are checked one by one before schema validation so the
// error names the first missing field.
var requiredFields = []string{
	"pattern_id", "description", "priority", "signatures",
	"command_pattern", "error_type", "diagnosis", "fix",
}

var documentSchema = &schema.Schema{
	Name: "pattern-document",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"version":  map[string]any{"type": "string"},
			"patterns": map[string]any{"type": "array"},
		},
		"required": []any{"patterns"},
	},
}

func templateSchema(extras string) map[string]any {
	return map[string]any{
		"oneOf": []any{
			map[string]any{"type": "string", "minLength": 1},
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"template": map[string]any{"type": "string", "minLength": 1},
					extras: map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
				},
				"required": []any{"template"},
			},
		},
	}
}

var entrySchema = &schema.Schema{
	Name: "pattern-entry",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"pattern_id":  map[string]any{"type": "string", "minLength": 1},
			"description": map[string]any{"type": "string"},
			"priority":    map[string]any{"type": "integer"},
			"signatures": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"command_pattern": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"regex": map[string]any{"type": "string"},
					"flags": map[string]any{"type": "string"},
				},
				"required": []any{"regex"},
			},
			"error_type": map[string]any{"type": "string", "minLength": 1},
			"diagnosis":  templateSchema("variables"),
			"fix":        templateSchema("examples"),
			"marker_check": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"enabled": map[string]any{"type": "boolean"},
					"expected_position": map[string]any{
						"enum": []any{string(MarkerBeforeSlash), string(MarkerAtChar), string(MarkerEndOfCommand)},
					},
				},
			},
			"metadata": map[string]any{
				"type": "object",
				"properties": map[string]any{
					MetaAffectedModes: map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
				},
			},
			"fuzzy_matching": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"enabled": map[string]any{"type": "boolean"},
					"similarity_threshold": map[string]any{
						"type":    "number",
						"minimum": 0,
						"maximum": 1,
					},
				},
			},
		},
	},
}
