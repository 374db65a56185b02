// internal/workers/intake/validate-assessment/handler.go
package validateassessment

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"matchmaking-workers/internal/common/logger"
	"matchmaking-workers/internal/models"
	"matchmaking-workers/pkg/vocabulary"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
	"github.com/xeipuuv/gojsonschema"
)

const (
	TaskType = "validate-assessment"
)

const assessmentCachePrefix = "assessment:client:"

// Preference dimensions whose tags must come from the shared vocabulary.
// Unknown tags on these dimensions break exact-match scoring silently, so
// intake rejects them instead.
var vocabularyChecks = []struct {
	Dimension string
	Tags      func(a *models.ClientAssessment) []string
}{
	{vocabulary.DimCommunicationStyles, func(a *models.ClientAssessment) []string { return a.CommunicationPreferences }},
	{vocabulary.DimLanguages, func(a *models.ClientAssessment) []string { return a.LanguagePreferences }},
	{vocabulary.DimIdentityTags, func(a *models.ClientAssessment) []string { return a.IdentityPreferences }},
	{vocabulary.DimSpecialties, func(a *models.ClientAssessment) []string { return a.TherapyGoals }},
	{vocabulary.DimModalities, func(a *models.ClientAssessment) []string { return a.TherapyModalities }},
	{vocabulary.DimTimeSlots, func(a *models.ClientAssessment) []string { return a.PreferredTimes }},
}

type Handler struct {
	config *Config
	db     *sql.DB
	redis  *redis.Client
	vocab  *vocabulary.Vocabulary
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, redis *redis.Client, vocab *vocabulary.Vocabulary, log logger.Logger) *Handler {
	if vocab == nil {
		vocab = vocabulary.Default()
	}
	return &Handler{
		config: config,
		db:     db,
		redis:  redis,
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
		code := "ASSESSMENT_VALIDATION_FAILED"
		if strings.HasPrefix(err.Error(), "unknown tags") {
			code = "UNKNOWN_VOCABULARY_TAG"
		} else if strings.HasPrefix(err.Error(), "store assessment") {
			code = "ASSESSMENT_STORE_FAILED"
		}
		h.failJob(client, job, code, err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if len(input.Assessment) == 0 {
		return nil, fmt.Errorf("assessment is required")
	}

	if err := validateSchema(input.Assessment); err != nil {
		return nil, err
	}

	var assessment models.ClientAssessment
	if err := json.Unmarshal(input.Assessment, &assessment); err != nil {
		return nil, fmt.Errorf("decode assessment: %v", err)
	}

	normalizeAssessment(&assessment)

	if err := assessment.Validate(); err != nil {
		return nil, err
	}

	var warnings []string
	for _, check := range vocabularyChecks {
		if unknown := h.vocab.UnknownTags(check.Dimension, check.Tags(&assessment)); len(unknown) > 0 {
			return nil, fmt.Errorf("unknown tags in %s: %s", check.Dimension, strings.Join(unknown, ", "))
		}
	}
	if assessment.AgeGroup != "" && !h.vocab.IsKnown(vocabulary.DimAgeGroups, assessment.AgeGroup) {
		warnings = append(warnings, fmt.Sprintf("unrecognized age group %q ignored by age matching", assessment.AgeGroup))
	}
	if assessment.TherapistGenderPreference != "" && !h.vocab.IsKnown(vocabulary.DimGenderIdentities, assessment.TherapistGenderPreference) {
		return nil, fmt.Errorf("unknown tags in %s: %s", vocabulary.DimGenderIdentities, assessment.TherapistGenderPreference)
	}

	if err := h.store(ctx, &assessment); err != nil {
		return nil, fmt.Errorf("store assessment: %v", err)
	}

	h.logger.Info("assessment validated", map[string]interface{}{
		"clientId": assessment.ClientID,
		"warnings": len(warnings),
	})

	return &Output{
		Valid:      true,
		Assessment: &assessment,
		Warnings:   warnings,
	}, nil
}

func validateSchema(raw json.RawMessage) error {
	schemaLoader := gojsonschema.NewGoLoader(assessmentSchema)
	documentLoader := gojsonschema.NewBytesLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation: %v", err)
	}
	if !result.Valid() {
		var details []string
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return fmt.Errorf("assessment failed schema validation: %s", strings.Join(details, "; "))
	}
	return nil
}

// normalizeAssessment canonicalizes every tag field so stored assessments
// always compare cleanly against therapist profiles.
func normalizeAssessment(a *models.ClientAssessment) {
	a.CommunicationPreferences = vocabulary.NormalizeAll(a.CommunicationPreferences)
	a.LanguagePreferences = vocabulary.NormalizeAll(a.LanguagePreferences)
	a.IdentityPreferences = vocabulary.NormalizeAll(a.IdentityPreferences)
	a.TherapyGoals = vocabulary.NormalizeAll(a.TherapyGoals)
	a.TherapyModalities = vocabulary.NormalizeAll(a.TherapyModalities)
	a.PreferredTimes = vocabulary.NormalizeAll(a.PreferredTimes)
	a.CulturalIdentity = vocabulary.NormalizeAll(a.CulturalIdentity)
	a.AgeGroup = vocabulary.Normalize(a.AgeGroup)
	a.TherapistGenderPreference = vocabulary.Normalize(a.TherapistGenderPreference)
	a.ExperiencePreference = vocabulary.Normalize(a.ExperiencePreference)
}

// store upserts the assessment record and refreshes the discovery cache.
func (h *Handler) store(ctx context.Context, assessment *models.ClientAssessment) error {
	data, err := json.Marshal(assessment)
	if err != nil {
		return err
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO client_assessments (client_id, data, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (client_id)
		DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
		assessment.ClientID, data)
	if err != nil {
		return err
	}

	cacheKey := assessmentCachePrefix + assessment.ClientID
	if err := h.redis.Set(ctx, cacheKey, data, h.config.CacheTTL).Err(); err != nil {
		// Cache failures never fail intake; discovery falls back to postgres
		h.logger.Warn("failed to cache assessment", map[string]interface{}{
			"clientId": assessment.ClientID,
			"error":    err,
		})
	}

	return nil
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
