// cmd/tools/worker-generator/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/Ananya-0081/insightx-upi/pkg/registry"
)

// WorkerData holds data for templates
type WorkerData struct {
	Name                 string                 `json:"name"`
	ID                   string                 `json:"id"`
	PackageName          string                 `json:"packageName"`
	CategoryDir          string                 `json:"categoryDir"`
	TaskType             string                 `json:"taskType"`
	InputSchema          map[string]interface{} `json:"inputSchema"`
	OutputSchema         map[string]interface{} `json:"outputSchema"`
	ErrorCodes           []string               `json:"errorCodes"`
	Description          string                 `json:"description"`
	Category             string                 `json:"category"`
	Timeout              string                 `json:"timeout"`
	Retries              int                    `json:"retries"`
	ImplementationStatus string                 `json:"implementationStatus"`
}

// parseSchema extracts properties from a JSON schema object
func parseSchema(schemaObj interface{}) map[string]interface{} {
	if schemaMap, ok := schemaObj.(map[string]interface{}); ok {
		if props, exists := schemaMap["properties"]; exists {
			if properties, ok := props.(map[string]interface{}); ok {
				return properties
			}
		}
	}
	return map[string]interface{}{}
}

// goType maps JSON schema types to Go types
func goType(jsonType interface{}) string {
	if jt, ok := jsonType.(string); ok {
		switch jt {
		case "string":
			return "string"
		case "number":
			return "float64"
		case "integer":
			return "int"
		case "boolean":
			return "bool"
		case "object":
			return "map[string]interface{}"
		case "array":
			return "[]interface{}"
		default:
			return "interface{}"
		}
	}
	return "interface{}"
}

// generateStructFields generates Go struct field definitions from schema properties
func generateStructFields(properties map[string]interface{}) string {
	var fields []string
	for prop, details := range properties {
		propDetails, ok := details.(map[string]interface{})
		if !ok {
			continue
		}
		fieldType := goType(propDetails["type"])
		jsonTag := fmt.Sprintf("`json:\"%s\"`", prop)

		comment := ""
		if desc, exists := propDetails["description"]; exists {
			if d, ok := desc.(string); ok && d != "" {
				comment = fmt.Sprintf(" // %s", d)
			}
		}

		fieldDef := fmt.Sprintf("\t%s %s %s%s", upperFirst(prop), fieldType, jsonTag, comment)
		fields = append(fields, fieldDef)
	}
	return strings.Join(fields, "\n")
}

// upperFirst makes the first character uppercase
func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// errVarName converts an UPPER_SNAKE error code to its sentinel variable
// name, e.g. QUERY_PARSE_FAILED becomes ErrQueryParseFailed.
func errVarName(code string) string {
	parts := strings.Split(strings.ToLower(code), "_")
	for i, p := range parts {
		parts[i] = upperFirst(p)
	}
	return "Err" + strings.Join(parts, "")
}

// goDurationLiteral renders a registry timeout like "30s" as a Go expression
func goDurationLiteral(raw string) string {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return "30 * time.Second"
	}
	if d%time.Second == 0 {
		return fmt.Sprintf("%d * time.Second", d/time.Second)
	}
	return fmt.Sprintf("%d * time.Millisecond", d/time.Millisecond)
}

const handlerTemplate = `// internal/workers/{{ .CategoryDir }}/{{ .ID }}/handler.go
package {{ .PackageName }}

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"github.com/Ananya-0081/insightx-upi/internal/common/logger"
	"github.com/Ananya-0081/insightx-upi/internal/common/metrics"
)

const (
	TaskType = "{{ .TaskType }}"
)

var (
	ErrInvalidInput = errors.New("INVALID_INPUT")
{{- range .ErrorCodes }}
{{- if ne . "INVALID_INPUT" }}
	{{ errVarName . }} = errors.New("{{ . }}")
{{- end }}
{{- end }}
)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, fmt.Errorf("%w: parse input: %v", ErrInvalidInput, err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, err, {{ .Retries }})
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	// TODO: implement the {{ .TaskType }} activity.
	return &Output{}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)

	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error, retries int32) {
	errorCode := "UNKNOWN_ERROR"
	switch {
	case errors.Is(err, ErrInvalidInput):
		errorCode = "INVALID_INPUT"
{{- range .ErrorCodes }}
{{- if ne . "INVALID_INPUT" }}
	case errors.Is(err, {{ errVarName . }}):
		errorCode = "{{ . }}"
{{- end }}
{{- end }}
	}

	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":    job.Key,
		"error":     err.Error(),
		"errorCode": errorCode,
	})

	metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()

	_, _ = client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(retries).
		ErrorMessage(errorCode + ": " + err.Error()).
		Send(context.Background())
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
`

const configTemplate = `// internal/workers/{{ .CategoryDir }}/{{ .ID }}/config.go
package {{ .PackageName }}

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: {{ goDurationLiteral .Timeout }},
	}
}
`

const modelsTemplate = `// internal/workers/{{ .CategoryDir }}/{{ .ID }}/models.go
package {{ .PackageName }}

// Input carries the variables the {{ .TaskType }} job reads.
type Input struct {
{{- $inputProps := parseSchema .InputSchema }}
{{- if $inputProps }}
{{ generateStructFields $inputProps }}
{{- else }}
	// TODO: add input fields from the activity's inputSchema
{{- end }}
}

// Output carries the variables the {{ .TaskType }} job writes back.
type Output struct {
{{- $outputProps := parseSchema .OutputSchema }}
{{- if $outputProps }}
{{ generateStructFields $outputProps }}
{{- else }}
	// TODO: add output fields from the activity's outputSchema
{{- end }}
}
`

const testTemplate = `// internal/workers/{{ .CategoryDir }}/{{ .ID }}/handler_test.go
package {{ .PackageName }}

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ananya-0081/insightx-upi/internal/common/logger"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	return NewHandler(LoadConfig(), logger.NewTestLogger(t))
}

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name     string
		input    *Input
		wantErr  error
		validate func(t *testing.T, output *Output)
	}{
		{
			name:  "scaffold returns empty output",
			input: &Input{},
			validate: func(t *testing.T, output *Output) {
				assert.NotNil(t, output)
			},
		},
		// TODO: add cases once the activity logic lands
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t)

			output, err := h.Execute(context.Background(), tt.input)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			if tt.validate != nil {
				tt.validate(t, output)
			}
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, {{ goDurationLiteral .Timeout }}, cfg.Timeout)
}
`

const readmeTemplate = `# {{ .Name }} Worker

## Description
{{ .Description }}

## Category
{{ .Category }}

## Task Type
{{ .TaskType }}

## Implementation Status
{{ .ImplementationStatus }}

## Configuration
- **Timeout**: {{ .Timeout }}
- **Retries**: {{ .Retries }}

## Input Schema
{{- $inputProps := parseSchema .InputSchema }}
{{- if $inputProps }}
The worker expects the following input variables:

{{ range $prop, $details := $inputProps }}
- **{{ $prop }}** ({{ goType (index $details "type") }}){{ if index $details "description" }}: {{ index $details "description" }}{{ end }}
{{ end }}
{{- else }}
No input schema defined in registry.
{{- end }}

## Output Schema
{{- $outputProps := parseSchema .OutputSchema }}
{{- if $outputProps }}
The worker produces the following output variables:

{{ range $prop, $details := $outputProps }}
- **{{ $prop }}** ({{ goType (index $details "type") }}){{ if index $details "description" }}: {{ index $details "description" }}{{ end }}
{{ end }}
{{- else }}
No output schema defined in registry.
{{- end }}

## Error Codes
{{- if .ErrorCodes }}
{{ range .ErrorCodes }}
- {{ . }}
{{ end }}
{{- else }}
No specific error codes defined.
{{- end }}

## Usage

### Register in Worker Manager

` + "```go" + `
import wk "github.com/Ananya-0081/insightx-upi/internal/workers/{{ .CategoryDir }}/{{ .ID }}"

// In main:
if config.IsWorkerEnabled(cfg, wk.TaskType) {
    wcfg := config.GetWorkerConfig(cfg, wk.TaskType)
    handler := wk.NewHandler(
        &wk.Config{Timeout: config.GetDuration(wcfg.Timeout)},
        log,
    )
    startWorker(zeebeClient, wk.TaskType, wcfg, camunda.Instrument(wk.TaskType, obs, handler.Handle), zapLog)
}
` + "```" + `

### Configuration in config.yaml

` + "```yaml" + `
workers:
  {{ .TaskType }}:
    enabled: true
    max_jobs_active: 5
    timeout: 30000
` + "```" + `

## Development

### Run Tests
` + "```bash" + `
go test ./internal/workers/{{ .CategoryDir }}/{{ .ID }}/...
` + "```" + `
`

func main() {
	activity := flag.String("activity", "", "Activity ID from registry (e.g., parse-query)")
	outputDir := flag.String("output", "./internal/workers/", "Output directory for the generated worker")
	registryPath := flag.String("registry", "configs/activity-registry.json", "Path to the activity registry JSON file")
	flag.Parse()

	if *activity == "" {
		fmt.Println("Usage: worker-generator --activity <id> --output <dir> [--registry <path>]")
		fmt.Println("\nExample:")
		fmt.Println("  go run cmd/tools/worker-generator/main.go --activity parse-query")
		os.Exit(1)
	}

	// Load the registry
	reg, err := registry.LoadRegistry(*registryPath)
	if err != nil {
		fmt.Printf("Error loading registry from %s: %v\n", *registryPath, err)
		os.Exit(1)
	}
	if err := reg.Validate(); err != nil {
		fmt.Printf("Registry %s is invalid: %v\n", *registryPath, err)
		os.Exit(1)
	}

	// Find the activity in the registry
	foundActivity := reg.FindByID(*activity)
	if foundActivity == nil {
		fmt.Printf("Activity '%s' not found in registry %s\n", *activity, *registryPath)
		os.Exit(1)
	}

	// Prepare data for templates
	data := WorkerData{
		Name:                 foundActivity.DisplayName,
		ID:                   foundActivity.ID,
		PackageName:          strings.ReplaceAll(foundActivity.ID, "-", ""),
		CategoryDir:          mapCategoryToDirectory(foundActivity.Category),
		TaskType:             foundActivity.TaskType,
		InputSchema:          foundActivity.InputSchema,
		OutputSchema:         foundActivity.OutputSchema,
		ErrorCodes:           foundActivity.ErrorCodes,
		Description:          foundActivity.Description,
		Category:             foundActivity.Category,
		Timeout:              foundActivity.Timeout,
		Retries:              foundActivity.Retries,
		ImplementationStatus: foundActivity.ImplementationStatus,
	}

	workerDir := filepath.Join(*outputDir, data.CategoryDir, foundActivity.ID)

	if err := os.MkdirAll(workerDir, 0755); err != nil {
		fmt.Printf("Error creating directory: %v\n", err)
		os.Exit(1)
	}

	// Create templates with functions
	funcMap := template.FuncMap{
		"parseSchema":          parseSchema,
		"goType":               goType,
		"generateStructFields": generateStructFields,
		"upperFirst":           upperFirst,
		"errVarName":           errVarName,
		"goDurationLiteral":    goDurationLiteral,
		"index": func(m map[string]interface{}, key string) interface{} {
			if val, exists := m[key]; exists {
				return val
			}
			return nil
		},
	}

	// Generate files
	templates := map[string]string{
		"handler.go":      handlerTemplate,
		"config.go":       configTemplate,
		"models.go":       modelsTemplate,
		"handler_test.go": testTemplate,
		"README.md":       readmeTemplate,
	}

	for filename, tmplStr := range templates {
		tmpl, err := template.New(filename).Funcs(funcMap).Parse(tmplStr)
		if err != nil {
			fmt.Printf("Error parsing template %s: %v\n", filename, err)
			continue
		}

		filePath := filepath.Join(workerDir, filename)
		file, err := os.Create(filePath)
		if err != nil {
			fmt.Printf("Error creating file %s: %v\n", filePath, err)
			continue
		}

		if err := tmpl.Execute(file, data); err != nil {
			fmt.Printf("Error executing template for %s: %v\n", filename, err)
		}
		file.Close()

		fmt.Printf("✓ Generated %s\n", filePath)
	}

	fmt.Printf("\n✅ Worker scaffold generated successfully at: %s\n", workerDir)
	fmt.Printf("\nNext steps:\n")
	fmt.Printf("  1. Implement the activity logic in handler.go (execute)\n")
	fmt.Printf("  2. Fill in Input/Output in models.go\n")
	fmt.Printf("  3. Extend the table test in handler_test.go\n")
	fmt.Printf("  4. Register the worker in cmd/worker-manager/main.go\n")
	fmt.Printf("  5. Add configuration to configs/config.yaml\n")
}

// mapCategoryToDirectory maps registry categories to directory names
func mapCategoryToDirectory(category string) string {
	switch category {
	case "query", "analytics", "insight":
		return category
	default:
		return strings.ToLower(category)
	}
}
