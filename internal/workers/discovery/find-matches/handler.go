// internal/workers/discovery/find-matches/handler.go
package findmatches

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"matchmaking-workers/internal/common/logger"
	"matchmaking-workers/internal/common/metrics"
	"matchmaking-workers/internal/matching"
	"matchmaking-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "find-matches"
)

const assessmentCachePrefix = "assessment:client:"

// catalogQuery loads every profile; the engine applies the verified/active
// hard filter itself so the flags travel with the row.
const catalogQuery = `
	SELECT id, name, personality_tags, languages, identity_tags, specialties,
	       modalities, communication_style, session_format, gender_identity,
	       age_group, session_rates, years_experience, availability,
	       cultural_background, is_verified, is_active
	FROM therapists
	WHERE is_verified = true AND is_active = true`

type Handler struct {
	config *Config
	db     *sql.DB
	redis  *redis.Client
	engine *matching.Engine
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, redis *redis.Client, engine *matching.Engine, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		redis:  redis,
		engine: engine,
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
		code := "MATCH_COMPUTATION_FAILED"
		switch {
		case errors.Is(err, errAssessmentNotFound):
			code = "ASSESSMENT_NOT_FOUND"
		case errors.Is(err, errCatalogQueryFailed):
			code = "CATALOG_QUERY_FAILED"
		}
		h.failJob(client, job, code, err.Error())
		return
	}

	h.completeJob(client, job, output)
}

var (
	errAssessmentNotFound = errors.New("no assessment found for client")
	errCatalogQueryFailed = errors.New("therapist catalog query failed")
)

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	assessment, err := h.resolveAssessment(ctx, input)
	if err != nil {
		return nil, err
	}

	candidates := input.Candidates
	if candidates == nil {
		candidates, err = h.loadCatalog(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errCatalogQueryFailed, err)
		}
	}

	matches, err := h.engine.FindMatches(assessment, candidates)
	if err != nil {
		return nil, err
	}

	total := len(candidates)
	limit := input.MaxResults
	if limit <= 0 {
		limit = h.config.MaxResults
	}
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	metrics.MatchCandidatesScored.Observe(float64(total))
	metrics.MatchResultsReturned.Observe(float64(len(matches)))

	h.logger.Info("matches computed", map[string]interface{}{
		"clientId":        assessment.ClientID,
		"totalCandidates": total,
		"returned":        len(matches),
	})

	return &Output{
		Matches:         matches,
		TotalCandidates: total,
		ReturnedCount:   len(matches),
	}, nil
}

// resolveAssessment prefers the inline assessment, then the Redis cache
// written at intake, then the persisted record.
func (h *Handler) resolveAssessment(ctx context.Context, input *Input) (*models.ClientAssessment, error) {
	if input.Assessment != nil {
		return input.Assessment, nil
	}
	if input.ClientID == "" {
		return nil, fmt.Errorf("either assessment or clientId is required")
	}

	cacheKey := assessmentCachePrefix + input.ClientID
	if val, err := h.redis.Get(ctx, cacheKey).Result(); err == nil {
		var assessment models.ClientAssessment
		if err := json.Unmarshal([]byte(val), &assessment); err == nil {
			return &assessment, nil
		}
	}

	row := h.db.QueryRowContext(ctx,
		`SELECT data FROM client_assessments WHERE client_id = $1`, input.ClientID)

	var data []byte
	if err := row.Scan(&data); err != nil {
		if err == sql.ErrNoRows {
			return nil, errAssessmentNotFound
		}
		return nil, fmt.Errorf("fetch assessment: %w", err)
	}

	var assessment models.ClientAssessment
	if err := json.Unmarshal(data, &assessment); err != nil {
		return nil, fmt.Errorf("decode assessment: %w", err)
	}

	// Refill the cache for the next discovery request
	h.redis.Set(ctx, cacheKey, data, h.config.CacheTTL)

	return &assessment, nil
}

func (h *Handler) loadCatalog(ctx context.Context) ([]models.TherapistProfile, error) {
	rows, err := h.db.QueryContext(ctx, catalogQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []models.TherapistProfile
	for rows.Next() {
		profile, err := scanTherapist(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, profile)
	}
	return candidates, rows.Err()
}

func scanTherapist(rows *sql.Rows) (models.TherapistProfile, error) {
	var p models.TherapistProfile
	var personalityTags, languages, identityTags, specialties, modalities []byte
	var sessionRates, availability, culturalBackground []byte

	err := rows.Scan(
		&p.ID, &p.Name, &personalityTags, &languages, &identityTags,
		&specialties, &modalities, &p.CommunicationStyle, &p.SessionFormat,
		&p.GenderIdentity, &p.AgeGroup, &sessionRates, &p.YearsExperience,
		&availability, &culturalBackground, &p.IsVerified, &p.IsActive,
	)
	if err != nil {
		return p, err
	}

	unmarshalTags(personalityTags, &p.PersonalityTags)
	unmarshalTags(languages, &p.Languages)
	unmarshalTags(identityTags, &p.IdentityTags)
	unmarshalTags(specialties, &p.Specialties)
	unmarshalTags(modalities, &p.Modalities)
	unmarshalTags(culturalBackground, &p.CulturalBackground)

	if err := json.Unmarshal(sessionRates, &p.SessionRates); err != nil {
		p.SessionRates = map[string]float64{}
	}
	if err := json.Unmarshal(availability, &p.Availability); err != nil {
		p.Availability = map[string]bool{}
	}

	return p, nil
}

func unmarshalTags(data []byte, dst *[]string) {
	if err := json.Unmarshal(data, dst); err != nil {
		*dst = []string{}
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
