// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// registrySchema is the structural contract a registry file has to satisfy
// before the generator or the updater will touch it.
var registrySchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"version", "activities"},
	"properties": map[string]interface{}{
		"version":     map[string]interface{}{"type": "string", "minLength": 1},
		"lastUpdated": map[string]interface{}{"type": "string"},
		"activities": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type":     "object",
				"required": []interface{}{"id", "displayName", "category", "taskType"},
				"properties": map[string]interface{}{
					"id":          map[string]interface{}{"type": "string", "minLength": 1},
					"displayName": map[string]interface{}{"type": "string", "minLength": 1},
					"category": map[string]interface{}{
						"type": "string",
						"enum": []interface{}{"query", "analytics", "insight"},
					},
					"taskType": map[string]interface{}{"type": "string", "minLength": 1},
					"implementationStatus": map[string]interface{}{
						"type": "string",
						"enum": []interface{}{"planned", "in-progress", "completed", "verified"},
					},
					"retries": map[string]interface{}{"type": "integer", "minimum": 0},
				},
			},
		},
	},
}

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// SaveRegistry writes the registry as indented JSON, creating the parent
// directory if needed.
func SaveRegistry(reg *ActivityRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}

	return nil
}

// Validate checks the registry against the structural schema, then the rules
// the schema cannot express: activity IDs and task types must be unique.
func (r *ActivityRegistry) Validate() error {
	schemaLoader := gojsonschema.NewGoLoader(registrySchema)
	documentLoader := gojsonschema.NewGoLoader(r)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if !result.Valid() {
		var errs []string
		for _, desc := range result.Errors() {
			errs = append(errs, desc.String())
		}
		return fmt.Errorf("registry does not match schema: %s", strings.Join(errs, "; "))
	}

	ids := make(map[string]bool, len(r.Activities))
	taskTypes := make(map[string]bool, len(r.Activities))
	for _, activity := range r.Activities {
		if ids[activity.ID] {
			return fmt.Errorf("duplicate activity ID: %s", activity.ID)
		}
		ids[activity.ID] = true

		if taskTypes[activity.TaskType] {
			return fmt.Errorf("duplicate task type: %s", activity.TaskType)
		}
		taskTypes[activity.TaskType] = true
	}

	return nil
}
