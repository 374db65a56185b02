// internal/workers/discovery/find-matches/handler_test.go
package findmatches

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"matchmaking-workers/internal/common/logger"
	"matchmaking-workers/internal/matching"
	"matchmaking-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		CacheTTL:   10 * time.Minute,
		Timeout:    10 * time.Second,
		MaxResults: 20,
	}
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	return db, mock
}

func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func newTestHandler(t *testing.T, db *sql.DB, rdb *redis.Client) *Handler {
	engine := matching.NewEngine(matching.DefaultWeights())
	return NewHandler(createTestConfig(), db, rdb, engine, logger.NewTestLogger(t))
}

func createTestAssessment() *models.ClientAssessment {
	return &models.ClientAssessment{
		ClientID:     "client-1",
		TherapyGoals: []string{"anxiety"},
	}
}

func createTestCandidate(id string) models.TherapistProfile {
	return models.TherapistProfile{
		ID:         id,
		Name:       "Dr. Test",
		IsVerified: true,
		IsActive:   true,
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestExecute_InlineAssessmentAndCandidates(t *testing.T) {
	db, _ := setupMockDB(t)
	defer db.Close()
	_, rdb := setupMiniRedis(t)

	handler := newTestHandler(t, db, rdb)

	full := createTestCandidate("th-full")
	full.Specialties = []string{"anxiety"}
	none := createTestCandidate("th-none")
	none.Specialties = []string{"relationships"}
	unverified := createTestCandidate("th-hidden")
	unverified.IsVerified = false

	output, err := handler.Execute(context.Background(), &Input{
		Assessment: createTestAssessment(),
		Candidates: []models.TherapistProfile{none, full, unverified},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, output.TotalCandidates)
	assert.Equal(t, 2, output.ReturnedCount)
	assert.Equal(t, "th-full", output.Matches[0].TherapistID)
	assert.Equal(t, "th-none", output.Matches[1].TherapistID)
}

func TestExecute_MaxResultsTruncation(t *testing.T) {
	db, _ := setupMockDB(t)
	defer db.Close()
	_, rdb := setupMiniRedis(t)

	handler := newTestHandler(t, db, rdb)

	candidates := []models.TherapistProfile{
		createTestCandidate("th-1"),
		createTestCandidate("th-2"),
		createTestCandidate("th-3"),
	}

	output, err := handler.Execute(context.Background(), &Input{
		Assessment: createTestAssessment(),
		Candidates: candidates,
		MaxResults: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, output.TotalCandidates)
	assert.Len(t, output.Matches, 2)
}

func TestExecute_AssessmentFromCache(t *testing.T) {
	db, _ := setupMockDB(t)
	defer db.Close()
	mr, rdb := setupMiniRedis(t)

	data, _ := json.Marshal(createTestAssessment())
	mr.Set(assessmentCachePrefix+"client-1", string(data))

	handler := newTestHandler(t, db, rdb)

	output, err := handler.Execute(context.Background(), &Input{
		ClientID:   "client-1",
		Candidates: []models.TherapistProfile{createTestCandidate("th-1")},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, output.ReturnedCount)
}

func TestExecute_AssessmentFromDatabase(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	mr, rdb := setupMiniRedis(t)

	data, _ := json.Marshal(createTestAssessment())
	mock.ExpectQuery("SELECT data FROM client_assessments").
		WithArgs("client-1").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow(data))

	handler := newTestHandler(t, db, rdb)

	output, err := handler.Execute(context.Background(), &Input{
		ClientID:   "client-1",
		Candidates: []models.TherapistProfile{createTestCandidate("th-1")},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, output.ReturnedCount)
	assert.NoError(t, mock.ExpectationsWereMet())

	// the fetched record is cached for the next request
	assert.True(t, mr.Exists(assessmentCachePrefix+"client-1"))
}

func TestExecute_CacheErrorFallsBackToDatabase(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	rdb, redisMock := redismock.NewClientMock()

	data, _ := json.Marshal(createTestAssessment())
	cacheKey := assessmentCachePrefix + "client-1"
	redisMock.ExpectGet(cacheKey).SetErr(errors.New("connection refused"))
	redisMock.ExpectSet(cacheKey, data, 10*time.Minute).SetVal("OK")

	mock.ExpectQuery("SELECT data FROM client_assessments").
		WithArgs("client-1").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow(data))

	handler := newTestHandler(t, db, rdb)

	output, err := handler.Execute(context.Background(), &Input{
		ClientID:   "client-1",
		Candidates: []models.TherapistProfile{createTestCandidate("th-1")},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, output.ReturnedCount)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestExecute_AssessmentNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	_, rdb := setupMiniRedis(t)

	mock.ExpectQuery("SELECT data FROM client_assessments").
		WithArgs("client-404").
		WillReturnError(sql.ErrNoRows)

	handler := newTestHandler(t, db, rdb)

	_, err := handler.Execute(context.Background(), &Input{
		ClientID:   "client-404",
		Candidates: []models.TherapistProfile{createTestCandidate("th-1")},
	})
	assert.ErrorIs(t, err, errAssessmentNotFound)
}

func TestExecute_MissingClientIDAndAssessment(t *testing.T) {
	db, _ := setupMockDB(t)
	defer db.Close()
	_, rdb := setupMiniRedis(t)

	handler := newTestHandler(t, db, rdb)

	_, err := handler.Execute(context.Background(), &Input{
		Candidates: []models.TherapistProfile{createTestCandidate("th-1")},
	})
	assert.Error(t, err)
}

func TestExecute_CatalogFromDatabase(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	_, rdb := setupMiniRedis(t)

	tags, _ := json.Marshal([]string{"anxiety"})
	empty, _ := json.Marshal([]string{})
	rates, _ := json.Marshal(map[string]float64{"60min": 100})
	availability, _ := json.Marshal(map[string]bool{"weekday evenings": true})

	columns := []string{
		"id", "name", "personality_tags", "languages", "identity_tags",
		"specialties", "modalities", "communication_style", "session_format",
		"gender_identity", "age_group", "session_rates", "years_experience",
		"availability", "cultural_background", "is_verified", "is_active",
	}
	mock.ExpectQuery("SELECT id, name, personality_tags").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("th-1", "Dr. A", empty, empty, empty, tags, empty,
				"empathetic", "video", "woman", "35-44", rates, "8",
				availability, empty, true, true))

	handler := newTestHandler(t, db, rdb)

	output, err := handler.Execute(context.Background(), &Input{
		Assessment: createTestAssessment(),
	})
	require.NoError(t, err)
	require.Equal(t, 1, output.ReturnedCount)
	assert.Equal(t, "th-1", output.Matches[0].TherapistID)
	assert.Equal(t, 100, output.Matches[0].CompatibilityScore)
	assert.NoError(t, mock.ExpectationsWereMet())
}
