// cmd/tools/catalog-seeder/main.go
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"matchmaking-workers/internal/common/config"
	"matchmaking-workers/internal/common/database"
	"matchmaking-workers/internal/models"
	"matchmaking-workers/pkg/vocabulary"
)

const upsertTherapist = `
	INSERT INTO therapists (
		id, name, personality_tags, languages, identity_tags, specialties,
		modalities, communication_style, session_format, gender_identity,
		age_group, session_rates, years_experience, availability,
		cultural_background, is_verified, is_active, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW())
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		personality_tags = EXCLUDED.personality_tags,
		languages = EXCLUDED.languages,
		identity_tags = EXCLUDED.identity_tags,
		specialties = EXCLUDED.specialties,
		modalities = EXCLUDED.modalities,
		communication_style = EXCLUDED.communication_style,
		session_format = EXCLUDED.session_format,
		gender_identity = EXCLUDED.gender_identity,
		age_group = EXCLUDED.age_group,
		session_rates = EXCLUDED.session_rates,
		years_experience = EXCLUDED.years_experience,
		availability = EXCLUDED.availability,
		cultural_background = EXCLUDED.cultural_background,
		is_verified = EXCLUDED.is_verified,
		is_active = EXCLUDED.is_active,
		updated_at = NOW()`

func main() {
	inputPath := flag.String("file", "", "Path to a JSON file with an array of therapist profiles")
	skipES := flag.Bool("skip-es", false, "Seed PostgreSQL only, skip Elasticsearch indexing")
	strict := flag.Bool("strict", false, "Fail on unknown vocabulary tags instead of warning")
	flag.Parse()

	if *inputPath == "" {
		fmt.Println("Usage: catalog-seeder --file <therapists.json> [--skip-es] [--strict]")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	profiles, err := loadProfiles(*inputPath)
	if err != nil {
		fmt.Printf("Error reading %s: %v\n", *inputPath, err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %d therapist profiles from %s\n", len(profiles), *inputPath)

	vocab := vocabulary.Default()
	if cfg.Vocabulary.Path != "" {
		vocab, err = vocabulary.LoadVocabulary(cfg.Vocabulary.Path)
		if err != nil {
			fmt.Printf("Error loading vocabulary from %s: %v\n", cfg.Vocabulary.Path, err)
			os.Exit(1)
		}
	}

	if err := checkVocabulary(profiles, vocab, *strict); err != nil {
		fmt.Printf("Vocabulary check failed: %v\n", err)
		os.Exit(1)
	}

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		fmt.Printf("Error connecting to PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pg.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	for _, p := range profiles {
		if err := seedPostgres(ctx, pg.DB, p); err != nil {
			fmt.Printf("Error seeding therapist %s: %v\n", p.ID, err)
			os.Exit(1)
		}
	}
	fmt.Printf("Seeded %d therapists into PostgreSQL\n", len(profiles))

	if *skipES {
		fmt.Println("Skipping Elasticsearch indexing (--skip-es)")
		return
	}

	esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		fmt.Printf("Error connecting to Elasticsearch: %v\n", err)
		os.Exit(1)
	}

	index := cfg.Matching.TherapistIndex
	indexed := 0
	for _, p := range profiles {
		if err := indexTherapist(ctx, esClient.Client, index, p); err != nil {
			fmt.Printf("Error indexing therapist %s: %v\n", p.ID, err)
			os.Exit(1)
		}
		indexed++
	}
	fmt.Printf("Indexed %d therapists into Elasticsearch index %q\n", indexed, index)
}

func loadProfiles(path string) ([]models.TherapistProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var profiles []models.TherapistProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("parse therapist profiles: %w", err)
	}

	for i, p := range profiles {
		if p.ID == "" {
			return nil, fmt.Errorf("profile at position %d has no id", i)
		}
		if p.Name == "" {
			return nil, fmt.Errorf("profile %s has no name", p.ID)
		}
	}
	return profiles, nil
}

func checkVocabulary(profiles []models.TherapistProfile, vocab *vocabulary.Vocabulary, strict bool) error {
	for _, p := range profiles {
		checks := []struct {
			dimension string
			tags      []string
		}{
			{vocabulary.DimSpecialties, p.Specialties},
			{vocabulary.DimModalities, p.Modalities},
			{vocabulary.DimCommunicationStyles, vocabulary.NormalizeAll([]string{p.CommunicationStyle})},
			{vocabulary.DimIdentityTags, p.IdentityTags},
			{vocabulary.DimLanguages, p.Languages},
			{vocabulary.DimTimeSlots, p.AvailableSlots()},
		}

		for _, c := range checks {
			unknown := vocab.UnknownTags(c.dimension, c.tags)
			if len(unknown) == 0 {
				continue
			}
			if strict {
				return fmt.Errorf("therapist %s has unknown %s tags: %s",
					p.ID, c.dimension, strings.Join(unknown, ", "))
			}
			fmt.Printf("Warning: therapist %s has unknown %s tags: %s\n",
				p.ID, c.dimension, strings.Join(unknown, ", "))
		}
	}
	return nil
}

func seedPostgres(ctx context.Context, db *sql.DB, p models.TherapistProfile) error {
	_, err := db.ExecContext(ctx, upsertTherapist,
		p.ID, p.Name,
		mustJSON(p.PersonalityTags), mustJSON(p.Languages), mustJSON(p.IdentityTags),
		mustJSON(p.Specialties), mustJSON(p.Modalities),
		p.CommunicationStyle, p.SessionFormat, p.GenderIdentity, p.AgeGroup,
		mustJSON(p.SessionRates), p.YearsExperience, mustJSON(p.Availability),
		mustJSON(p.CulturalBackground), p.IsVerified, p.IsActive,
	)
	return err
}

func indexTherapist(ctx context.Context, esClient *elasticsearch.Client, index string, p models.TherapistProfile) error {
	doc := map[string]interface{}{
		"id":                  p.ID,
		"name":                p.Name,
		"personality_tags":    p.PersonalityTags,
		"languages":           p.Languages,
		"identity_tags":       p.IdentityTags,
		"specialties":         p.Specialties,
		"modalities":          p.Modalities,
		"communication_style": p.CommunicationStyle,
		"session_format":      p.SessionFormat,
		"gender_identity":     p.GenderIdentity,
		"age_group":           p.AgeGroup,
		"session_rate":        p.SessionRates["individual"],
		"cultural_background": p.CulturalBackground,
		"is_verified":         p.IsVerified,
		"is_active":           p.IsActive,
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	res, err := esClient.Index(
		index,
		strings.NewReader(string(body)),
		esClient.Index.WithDocumentID(p.ID),
		esClient.Index.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index %s: %s", p.ID, res.String())
	}
	return nil
}

func mustJSON(v interface{}) []byte {
	data, _ := json.Marshal(v)
	return data
}
