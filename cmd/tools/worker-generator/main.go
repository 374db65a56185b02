// cmd/tools/worker-generator/main.go
//
// Scaffolds a new worker package from its activity-registry entry. The
// generated files follow the same layout every existing worker uses:
// config.go, models.go, handler.go, handler_test.go.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"matchmaking-workers/pkg/registry"
)

type Field struct {
	Name    string // exported Go name
	JSONKey string
	GoType  string
}

type WorkerData struct {
	ActivityID   string
	TaskType     string
	PackageName  string
	DisplayName  string
	Description  string
	Category     string
	InputFields  []Field
	OutputFields []Field
	ErrorCodes   []string
}

func main() {
	id := flag.String("id", "", "Activity ID from the registry (e.g., find-matches)")
	registryPath := flag.String("registry", "configs/activity-registry.json", "Path to the activity registry")
	outputDir := flag.String("output", "internal/workers", "Root directory for generated worker packages")
	force := flag.Bool("force", false, "Overwrite an existing worker package")
	flag.Parse()

	if *id == "" {
		fmt.Println("Usage: worker-generator -id <activity-id> [-registry <path>] [-output <dir>] [-force]")
		fmt.Println("\nExample:")
		fmt.Println("  go run cmd/tools/worker-generator/main.go -id send-match-notification")
		os.Exit(1)
	}

	reg, err := registry.LoadRegistry(*registryPath)
	if err != nil {
		fmt.Printf("Error loading registry from %s: %v\n", *registryPath, err)
		os.Exit(1)
	}

	activity := reg.FindByID(*id)
	if activity == nil {
		fmt.Printf("Activity '%s' not found in registry %s\n", *id, *registryPath)
		os.Exit(1)
	}
	if !registry.ValidCategory(activity.Category) {
		fmt.Printf("Activity '%s' has unknown category %q (expected one of: %s)\n",
			*id, activity.Category, strings.Join(registry.KnownCategories, ", "))
		os.Exit(1)
	}

	data := buildWorkerData(activity)
	workerDir := filepath.Join(*outputDir, data.Category, data.TaskType)

	if _, err := os.Stat(workerDir); err == nil && !*force {
		fmt.Printf("Error: %s already exists (use -force to overwrite)\n", workerDir)
		os.Exit(1)
	}
	if err := os.MkdirAll(workerDir, 0o755); err != nil {
		fmt.Printf("Error creating directory: %v\n", err)
		os.Exit(1)
	}

	templates := map[string]string{
		"config.go":       configTemplate,
		"models.go":       modelsTemplate,
		"handler.go":      handlerTemplate,
		"handler_test.go": testTemplate,
	}

	for filename, tmplStr := range templates {
		if err := renderFile(filepath.Join(workerDir, filename), filename, tmplStr, data); err != nil {
			fmt.Printf("Error generating %s: %v\n", filename, err)
			os.Exit(1)
		}
		fmt.Printf("Generated %s\n", filepath.Join(workerDir, filename))
	}

	fmt.Printf("\nWorker scaffold generated at: %s\n", workerDir)
	fmt.Printf("\nNext steps:\n")
	fmt.Printf("  1. Implement Execute in handler.go\n")
	fmt.Printf("  2. Register the handler in cmd/worker-manager/main.go\n")
	fmt.Printf("  3. Add a workers.%s entry to configs/config.yaml\n", data.TaskType)
}

func buildWorkerData(a *registry.Activity) WorkerData {
	return WorkerData{
		ActivityID:   a.ID,
		TaskType:     a.TaskType,
		PackageName:  strings.ReplaceAll(a.TaskType, "-", ""),
		DisplayName:  a.DisplayName,
		Description:  a.Description,
		Category:     a.Category,
		InputFields:  schemaFields(a.InputSchema),
		OutputFields: schemaFields(a.OutputSchema),
		ErrorCodes:   append(a.ErrorCodes, "EXECUTION_FAILED"),
	}
}

// schemaFields turns the flat registry schema into sorted struct fields.
func schemaFields(schema map[string]interface{}) []Field {
	keys := make([]string, 0, len(schema))
	for k := range schema {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]Field, 0, len(keys))
	for _, k := range keys {
		typeName, _ := schema[k].(string)
		fields = append(fields, Field{
			Name:    upperFirst(k),
			JSONKey: k,
			GoType:  goTypeFromJSONType(typeName),
		})
	}
	return fields
}

func goTypeFromJSONType(t string) string {
	switch t {
	case "string":
		return "string"
	case "integer":
		return "int"
	case "number":
		return "float64"
	case "boolean":
		return "bool"
	case "array":
		return "[]interface{}"
	case "object":
		return "map[string]interface{}"
	default:
		return "interface{}"
	}
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func renderFile(path, name, tmplStr string, data WorkerData) error {
	tmpl, err := template.New(name).Parse(tmplStr)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return tmpl.Execute(file, data)
}

const configTemplate = `package {{.PackageName}}

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() Config {
	return Config{
		Timeout: 30 * time.Second,
	}
}
`

const modelsTemplate = `package {{.PackageName}}

// Input carries the job variables for the {{.TaskType}} task.
type Input struct {
{{- range .InputFields}}
	{{.Name}} {{.GoType}} ` + "`" + `json:"{{.JSONKey}}"` + "`" + `
{{- end}}
}

// Output is written back to the process instance on completion.
type Output struct {
{{- range .OutputFields}}
	{{.Name}} {{.GoType}} ` + "`" + `json:"{{.JSONKey}}"` + "`" + `
{{- end}}
}
`

const handlerTemplate = `package {{.PackageName}}

import (
	"context"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"matchmaking-workers/internal/common/logger"
)

const TaskType = "{{.TaskType}}"

// Handler serves the {{.TaskType}} task. {{.Description}}
type Handler struct {
	config Config
	logger logger.Logger
}

func NewHandler(config Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("Processing job", map[string]interface{}{"jobKey": job.Key})

	var input Input
	if err := job.GetVariablesAs(&input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.logger.WithError(err).Error("Job execution failed", map[string]interface{}{
			"jobKey": job.Key,
		})
		h.failJob(client, job, "EXECUTION_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

// Execute runs the task logic. Exported so tests can drive it without a
// Zeebe broker.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("input is nil")
	}

	// TODO({{.ActivityID}}): implement the task logic.
	return &Output{}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	request, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.WithError(err).Error("Failed to build complete command", map[string]interface{}{
			"jobKey": job.Key,
		})
		return
	}

	if _, err := request.Send(context.Background()); err != nil {
		h.logger.WithError(err).Error("Failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
		})
		return
	}

	h.logger.Info("Job completed", map[string]interface{}{"jobKey": job.Key})
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("Job failed", map[string]interface{}{
		"jobKey":    job.Key,
		"errorCode": errorCode,
		"error":     errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.WithError(err).Error("Failed to throw error", map[string]interface{}{
			"jobKey": job.Key,
		})
	}
}
`

const testTemplate = `package {{.PackageName}}

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchmaking-workers/internal/common/logger"
)

func newTestHandler(t *testing.T) *Handler {
	return NewHandler(Config{Timeout: 5 * time.Second}, logger.NewTestLogger(t))
}

func TestHandler_Execute_NilInput(t *testing.T) {
	h := newTestHandler(t)

	output, err := h.Execute(context.Background(), nil)
	require.Error(t, err)
	assert.Nil(t, output)
}
`
