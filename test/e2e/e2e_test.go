// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchmaking-workers/internal/common/config"
	"matchmaking-workers/internal/common/database"
	"matchmaking-workers/internal/common/logger"
	"matchmaking-workers/internal/matching"
	"matchmaking-workers/internal/models"
	"matchmaking-workers/pkg/vocabulary"

	querytherapists "matchmaking-workers/internal/workers/catalog/query-therapists"
	searchtherapists "matchmaking-workers/internal/workers/catalog/search-therapists"
	findmatches "matchmaking-workers/internal/workers/discovery/find-matches"
	mergesearchfilters "matchmaking-workers/internal/workers/discovery/merge-search-filters"
	validateassessment "matchmaking-workers/internal/workers/intake/validate-assessment"
	sendmatchnotification "matchmaking-workers/internal/workers/notification/send-match-notification"
)

// TestEnvironment holds the shared clients for the full-stack tests.
type TestEnvironment struct {
	Config   *config.Config
	DB       *sql.DB
	ES       *elasticsearch.Client
	Redis    *redis.Client
	Log      logger.Logger
	pgClient *database.PostgresClient
	rdClient *database.RedisClient
}

// setupTestEnvironment connects to the local stack and skips the test when it
// is not running. CI sets E2E_TESTS=1 and provides the services.
func setupTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping E2E tests in short mode")
	}
	if os.Getenv("E2E_TESTS") == "" {
		t.Skip("Skipping E2E tests (set E2E_TESTS=1 and start the local stack to run)")
	}

	cfg, err := config.Load()
	require.NoError(t, err, "Failed to load configuration")

	cfg.Database.Postgres.Host = getEnvOrDefault("DB_HOST", "localhost")
	cfg.Database.Redis.Address = getEnvOrDefault("REDIS_ADDRESS", "localhost:6379")
	cfg.Database.Elasticsearch.URL = getEnvOrDefault("ES_URL", "http://localhost:9200")

	pgClient, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		t.Skipf("PostgreSQL not available: %v", err)
	}

	rdClient, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		pgClient.Close()
		t.Skipf("Redis not available: %v", err)
	}

	esClient, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.Database.Elasticsearch.GetURL()},
	})
	require.NoError(t, err)

	env := &TestEnvironment{
		Config:   cfg,
		DB:       pgClient.GetDB(),
		ES:       esClient,
		Redis:    rdClient.Client,
		Log:      logger.NewZapAdapter(logger.New("info", "json")),
		pgClient: pgClient,
		rdClient: rdClient,
	}

	t.Cleanup(func() {
		env.pgClient.Close()
		env.rdClient.Close()
	})

	return env
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func TestFullE2E(t *testing.T) {
	env := setupTestEnvironment(t)

	setupSchema(t, env.DB)
	seedTestData(t, env)

	t.Run("validate-assessment", func(t *testing.T) { testValidateAssessment(t, env) })
	t.Run("merge-search-filters", func(t *testing.T) { testMergeSearchFilters(t, env) })
	t.Run("find-matches", func(t *testing.T) { testFindMatches(t, env) })
	t.Run("query-therapists", func(t *testing.T) { testQueryTherapists(t, env) })
	t.Run("search-therapists", func(t *testing.T) { testSearchTherapists(t, env) })
	t.Run("send-match-notification", func(t *testing.T) { testSendMatchNotification(t, env) })

	t.Run("intake-to-discovery-workflow", func(t *testing.T) { testIntakeToDiscoveryWorkflow(t, env) })
}

func setupSchema(t *testing.T, db *sql.DB) {
	t.Helper()

	queries := []string{
		`CREATE TABLE IF NOT EXISTS therapists (
			id VARCHAR(255) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) DEFAULT '',
			phone VARCHAR(50) DEFAULT '',
			personality_tags JSONB,
			languages JSONB,
			identity_tags JSONB,
			specialties JSONB,
			modalities JSONB,
			communication_style VARCHAR(100),
			session_format VARCHAR(50),
			gender_identity VARCHAR(50),
			age_group VARCHAR(50),
			session_rates JSONB,
			years_experience VARCHAR(50),
			availability JSONB,
			cultural_background JSONB,
			is_verified BOOLEAN DEFAULT false,
			is_active BOOLEAN DEFAULT false,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS clients (
			id VARCHAR(255) PRIMARY KEY,
			email VARCHAR(255) DEFAULT '',
			phone VARCHAR(50) DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS client_assessments (
			client_id VARCHAR(255) PRIMARY KEY,
			data JSONB NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, query := range queries {
		_, err := db.ExecContext(context.Background(), query)
		require.NoError(t, err, "Failed to create table")
	}
}

func seedTestData(t *testing.T, env *TestEnvironment) {
	t.Helper()
	ctx := context.Background()

	therapists := []struct {
		id, name   string
		specialty  string
		verified   bool
		active     bool
	}{
		{"e2e-therapist-1", "Dr. Amara Okafor", "anxiety", true, true},
		{"e2e-therapist-2", "Dr. Lena Fischer", "depression", true, true},
		{"e2e-therapist-3", "Dr. Hidden Person", "anxiety", false, true},
	}

	for _, th := range therapists {
		_, err := env.DB.ExecContext(ctx, `
			INSERT INTO therapists (
				id, name, email, phone, personality_tags, languages, identity_tags,
				specialties, modalities, communication_style, session_format,
				gender_identity, age_group, session_rates, years_experience,
				availability, cultural_background, is_verified, is_active
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
			ON CONFLICT (id) DO NOTHING`,
			th.id, th.name, th.id+"@example.com", "+15550100",
			`["empathetic"]`, `["english"]`, `["lgbtq+ affirming"]`,
			fmt.Sprintf(`["%s"]`, th.specialty), `["cbt"]`, "empathetic", "online",
			"woman", "35-44", `{"individual": 120}`, "6-10",
			`{"weekday evenings": true}`, `[]`, th.verified, th.active,
		)
		require.NoError(t, err)
	}

	_, err := env.DB.ExecContext(ctx, `
		INSERT INTO clients (id, email, phone) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING`,
		"e2e-client-1", "e2e-client@example.com", "+15550101")
	require.NoError(t, err)
}

func testAssessment(clientID string) *models.ClientAssessment {
	return &models.ClientAssessment{
		ClientID:                 clientID,
		TherapyGoals:             []string{"anxiety"},
		TherapyModalities:        []string{"cbt"},
		CommunicationPreferences: []string{"empathetic"},
		LanguagePreferences:      []string{"english"},
		PreferredTimes:           []string{"weekday evenings"},
		BudgetMin:                50,
		BudgetMax:                200,
		AgeGroup:                 "35-44",
	}
}

func testValidateAssessment(t *testing.T, env *TestEnvironment) {
	handler := validateassessment.NewHandler(&validateassessment.Config{
		CacheTTL: time.Minute,
		Timeout:  10 * time.Second,
	}, env.DB, env.Redis, vocabulary.Default(), env.Log)

	raw, err := json.Marshal(testAssessment("e2e-client-1"))
	require.NoError(t, err)

	output, err := handler.Execute(context.Background(), &validateassessment.Input{Assessment: raw})
	require.NoError(t, err)
	assert.True(t, output.Valid)
	require.NotNil(t, output.Assessment)
	assert.Equal(t, "e2e-client-1", output.Assessment.ClientID)

	// Stored row and cache entry should exist after validation.
	var count int
	err = env.DB.QueryRow(`SELECT COUNT(*) FROM client_assessments WHERE client_id = $1`, "e2e-client-1").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func testMergeSearchFilters(t *testing.T, env *TestEnvironment) {
	handler := mergesearchfilters.NewHandler(&mergesearchfilters.Config{
		Timeout: 10 * time.Second,
	}, vocabulary.Default(), env.Log)

	output, err := handler.Execute(context.Background(), &mergesearchfilters.Input{
		Assessment: testAssessment("e2e-client-1"),
		RawFilters: map[string]interface{}{
			"therapyGoals": []interface{}{"depression"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"depression"}, output.Assessment.TherapyGoals)
	// Untouched dimensions keep the stored assessment values.
	assert.Equal(t, []string{"cbt"}, output.Assessment.TherapyModalities)
}

func testFindMatches(t *testing.T, env *TestEnvironment) {
	engine := matching.NewEngine(matching.DefaultWeights())
	handler := findmatches.NewHandler(&findmatches.Config{
		CacheTTL:   time.Minute,
		Timeout:    30 * time.Second,
		MaxResults: 10,
	}, env.DB, env.Redis, engine, env.Log)

	output, err := handler.Execute(context.Background(), &findmatches.Input{
		ClientID:   "e2e-client-1",
		Assessment: testAssessment("e2e-client-1"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, output.Matches, "Expected at least one match from the seeded catalog")

	for _, m := range output.Matches {
		assert.NotEqual(t, "e2e-therapist-3", m.TherapistID, "Unverified therapists must never surface")
		assert.True(t, m.CompatibilityScore >= 0 && m.CompatibilityScore <= 100)
	}
}

func testQueryTherapists(t *testing.T, env *TestEnvironment) {
	handler := querytherapists.NewHandler(&querytherapists.Config{
		Timeout: 10 * time.Second,
	}, env.DB, env.Log)

	output, err := handler.Execute(context.Background(), &querytherapists.Input{
		QueryType:   string(querytherapists.QueryTypeTherapistProfile),
		TherapistID: "e2e-therapist-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, output.RowCount)

	visible, err := handler.Execute(context.Background(), &querytherapists.Input{
		QueryType: string(querytherapists.QueryTypeVisibleCatalog),
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, visible.RowCount, 2)
}

func testSearchTherapists(t *testing.T, env *TestEnvironment) {
	indexName := "e2e-therapists"
	indexTestTherapists(t, env.ES, indexName)

	handler := searchtherapists.NewHandler(&searchtherapists.Config{
		Timeout:      10 * time.Second,
		DefaultIndex: indexName,
	}, env.ES, env.Log)

	output, err := handler.Execute(context.Background(), &searchtherapists.Input{
		QueryType: "therapist_search",
		Filters: map[string]interface{}{
			"keywords": "anxiety",
		},
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, output.TotalHits, int64(1))
}

func indexTestTherapists(t *testing.T, es *elasticsearch.Client, indexName string) {
	t.Helper()
	ctx := context.Background()

	docs := []string{
		`{"id": "e2e-therapist-1", "name": "Dr. Amara Okafor", "bio": "Specializes in anxiety and stress",
		  "specialties": ["anxiety"], "modalities": ["cbt"], "session_format": "online",
		  "session_rate": 120, "is_verified": true, "is_active": true}`,
		`{"id": "e2e-therapist-2", "name": "Dr. Lena Fischer", "bio": "Depression and grief work",
		  "specialties": ["depression"], "modalities": ["psychodynamic"], "session_format": "online",
		  "session_rate": 140, "is_verified": true, "is_active": true}`,
	}

	for i, doc := range docs {
		res, err := es.Index(
			indexName,
			strings.NewReader(doc),
			es.Index.WithDocumentID(fmt.Sprintf("e2e-therapist-%d", i+1)),
			es.Index.WithContext(ctx),
			es.Index.WithRefresh("true"),
		)
		require.NoError(t, err)
		res.Body.Close()
	}
}

func testSendMatchNotification(t *testing.T, env *TestEnvironment) {
	// Channels disabled so no AWS calls leave the test environment.
	handler, err := sendmatchnotification.NewHandler(&sendmatchnotification.Config{
		EmailEnabled: false,
		SMSEnabled:   false,
		AWSRegion:    "us-east-1",
		Timeout:      10 * time.Second,
	}, env.DB, env.Log)
	require.NoError(t, err)

	output, err := handler.Execute(context.Background(), &sendmatchnotification.Input{
		RecipientID:      "e2e-client-1",
		RecipientType:    sendmatchnotification.RecipientTypeClient,
		NotificationType: sendmatchnotification.TypeMatchesReady,
		MatchCount:       3,
		TopMatchName:     "Dr. Amara Okafor",
	})
	require.NoError(t, err)
	assert.Equal(t, sendmatchnotification.StatusDisabled, output.Status)
	assert.NotEmpty(t, output.NotificationID)
}

// testIntakeToDiscoveryWorkflow runs the intake assessment through validation
// and straight into match discovery, the same path the BPMN process takes.
func testIntakeToDiscoveryWorkflow(t *testing.T, env *TestEnvironment) {
	vocab := vocabulary.Default()

	validateHandler := validateassessment.NewHandler(&validateassessment.Config{
		CacheTTL: time.Minute,
		Timeout:  10 * time.Second,
	}, env.DB, env.Redis, vocab, env.Log)

	clientID := fmt.Sprintf("e2e-journey-%d", time.Now().Unix())
	_, err := env.DB.ExecContext(context.Background(),
		`INSERT INTO clients (id, email) VALUES ($1, $2)`, clientID, clientID+"@example.com")
	require.NoError(t, err)
	t.Cleanup(func() {
		env.DB.Exec(`DELETE FROM client_assessments WHERE client_id = $1`, clientID)
		env.DB.Exec(`DELETE FROM clients WHERE id = $1`, clientID)
	})

	raw, err := json.Marshal(testAssessment(clientID))
	require.NoError(t, err)

	validated, err := validateHandler.Execute(context.Background(), &validateassessment.Input{Assessment: raw})
	require.NoError(t, err)
	require.True(t, validated.Valid)

	// Discovery loads the stored assessment by clientId alone.
	engine := matching.NewEngine(matching.DefaultWeights())
	matchHandler := findmatches.NewHandler(&findmatches.Config{
		CacheTTL:   time.Minute,
		Timeout:    30 * time.Second,
		MaxResults: 5,
	}, env.DB, env.Redis, engine, env.Log)

	matches, err := matchHandler.Execute(context.Background(), &findmatches.Input{ClientID: clientID})
	require.NoError(t, err)
	assert.NotEmpty(t, matches.Matches)
	assert.LessOrEqual(t, matches.ReturnedCount, 5)

	t.Logf("Workflow completed: %d candidates scored, %d matches returned",
		matches.TotalCandidates, matches.ReturnedCount)
}
