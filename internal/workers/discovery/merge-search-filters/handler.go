// internal/workers/discovery/merge-search-filters/handler.go
package mergesearchfilters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"matchmaking-workers/internal/common/logger"
	"matchmaking-workers/internal/models"
	"matchmaking-workers/pkg/vocabulary"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "merge-search-filters"

var (
	ErrInvalidFilterFormat = errors.New("INVALID_FILTER_FORMAT")
)

const (
	defaultMaxResults = 20
	maxResultsCap     = 100
)

// Overlayable tag dimensions. A filter on one of these replaces the
// corresponding assessment field in the derived copy only.
var tagOverlays = []struct {
	Key       string
	Dimension string
	Apply     func(a *models.ClientAssessment, tags []string)
}{
	{"therapyGoals", vocabulary.DimSpecialties, func(a *models.ClientAssessment, t []string) { a.TherapyGoals = t }},
	{"therapyModalities", vocabulary.DimModalities, func(a *models.ClientAssessment, t []string) { a.TherapyModalities = t }},
	{"communicationPreferences", vocabulary.DimCommunicationStyles, func(a *models.ClientAssessment, t []string) { a.CommunicationPreferences = t }},
	{"identityPreferences", vocabulary.DimIdentityTags, func(a *models.ClientAssessment, t []string) { a.IdentityPreferences = t }},
	{"languagePreferences", vocabulary.DimLanguages, func(a *models.ClientAssessment, t []string) { a.LanguagePreferences = t }},
	{"preferredTimes", vocabulary.DimTimeSlots, func(a *models.ClientAssessment, t []string) { a.PreferredTimes = t }},
}

type Handler struct {
	config *Config
	vocab  *vocabulary.Vocabulary
	logger logger.Logger
}

func NewHandler(config *Config, vocab *vocabulary.Vocabulary, log logger.Logger) *Handler {
	if vocab == nil {
		vocab = vocabulary.Default()
	}
	return &Handler{
		config: config,
		vocab:  vocab,
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
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, "INVALID_FILTER_FORMAT", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input.Assessment == nil {
		return nil, fmt.Errorf("%w: assessment is required", ErrInvalidFilterFormat)
	}
	if input.RawFilters == nil {
		input.RawFilters = make(map[string]interface{})
	}

	// Work on a copy: the stored assessment record stays untouched.
	merged := *input.Assessment

	for _, overlay := range tagOverlays {
		raw, ok := input.RawFilters[overlay.Key]
		if !ok {
			continue
		}
		tags := vocabulary.NormalizeAll(parseStringArray(raw))
		if unknown := h.vocab.UnknownTags(overlay.Dimension, tags); len(unknown) > 0 {
			return nil, fmt.Errorf("%w: unknown %s tags: %s",
				ErrInvalidFilterFormat, overlay.Dimension, strings.Join(unknown, ", "))
		}
		overlay.Apply(&merged, tags)
	}

	if raw, ok := input.RawFilters["budget"]; ok {
		if err := applyBudget(&merged, raw); err != nil {
			return nil, err
		}
	}

	if raw, ok := input.RawFilters["therapistGenderPreference"]; ok {
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: therapistGenderPreference must be a string", ErrInvalidFilterFormat)
		}
		normalized := vocabulary.Normalize(s)
		if normalized != "" && !h.vocab.IsKnown(vocabulary.DimGenderIdentities, normalized) {
			return nil, fmt.Errorf("%w: unknown gender preference '%s'", ErrInvalidFilterFormat, normalized)
		}
		merged.TherapistGenderPreference = normalized
	}

	maxResults := defaultMaxResults
	if raw, ok := input.RawFilters["maxResults"]; ok {
		n, err := parseCount(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: maxResults: %v", ErrInvalidFilterFormat, err)
		}
		if n >= 1 {
			maxResults = n
			if maxResults > maxResultsCap {
				maxResults = maxResultsCap
			}
		}
	}

	h.logger.Info("filters merged", map[string]interface{}{
		"clientId":   merged.ClientID,
		"maxResults": maxResults,
	})

	return &Output{
		Assessment: &merged,
		MaxResults: maxResults,
	}, nil
}

func applyBudget(a *models.ClientAssessment, raw interface{}) error {
	budgetMap, ok := raw.(map[string]interface{})
	if !ok {
		return fmt.Errorf("%w: budget must be an object", ErrInvalidFilterFormat)
	}

	if minRaw, exists := budgetMap["min"]; exists {
		min, ok := minRaw.(float64)
		if !ok || min < 0 {
			return fmt.Errorf("%w: budget min must be a non-negative number", ErrInvalidFilterFormat)
		}
		a.BudgetMin = min
	}
	if maxRaw, exists := budgetMap["max"]; exists {
		max, ok := maxRaw.(float64)
		if !ok || max < 0 {
			return fmt.Errorf("%w: budget max must be a non-negative number", ErrInvalidFilterFormat)
		}
		a.BudgetMax = max
	}

	if a.BudgetMax > 0 && a.BudgetMin > a.BudgetMax {
		return fmt.Errorf("%w: budget min (%.2f) > max (%.2f)",
			ErrInvalidFilterFormat, a.BudgetMin, a.BudgetMax)
	}
	return nil
}

func parseStringArray(raw interface{}) []string {
	result := []string{}
	if raw == nil {
		return result
	}

	switch v := raw.(type) {
	case string:
		for _, s := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				result = append(result, trimmed)
			}
		}
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				if trimmed := strings.TrimSpace(s); trimmed != "" {
					result = append(result, trimmed)
				}
			}
		}
	case []string:
		for _, s := range v {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				result = append(result, trimmed)
			}
		}
	}

	return result
}

func parseCount(raw interface{}) (int, error) {
	switch v := raw.(type) {
	case float64:
		if v < 0 || v != float64(int(v)) {
			return 0, errors.New("not a valid positive integer")
		}
		return int(v), nil
	case int:
		if v < 0 {
			return 0, errors.New("negative integer not allowed")
		}
		return v, nil
	default:
		return 0, errors.New("not a number")
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
