// Command seed imports coding challenges from a local dataset directory and
// optionally backfills embeddings for challenges that lack one.
//
// The dataset layout is one subdirectory per problem:
//
//	<dataset>/<problem>/question.txt    (required; first line becomes the title)
//	<dataset>/<problem>/metadata.json   (optional; topic/difficulty)
//
// Each problem is imported in its own transaction so a single malformed
// folder never aborts the whole run.
//
// Usage:
//
//	seed -dataset ./data/train            # import problems
//	seed -embed -batch 100                # backfill missing embeddings
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/kpolkampally/go-challenge-backend/internal/config"
	"github.com/kpolkampally/go-challenge-backend/internal/domain"
	"github.com/kpolkampally/go-challenge-backend/internal/oracle"
	"github.com/kpolkampally/go-challenge-backend/internal/repo"
	"github.com/kpolkampally/go-challenge-backend/internal/sysutil"
)

const maxTitleLen = 255

// challengeMeta mirrors the optional metadata.json sidecar.
type challengeMeta struct {
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"`
}

func main() {
	var (
		datasetDir = flag.String("dataset", "", "directory of problem folders to import")
		embed      = flag.Bool("embed", false, "backfill embeddings for challenges without one")
		batch      = flag.Int("batch", 100, "max challenges to embed per run")
	)
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.MustLoad()
	sysutil.SetLogLevel(cfg.LogLevel)
	zerolog.TimeFieldFormat = time.RFC3339

	db := openDB(cfg)
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	ctx := context.Background()

	if *datasetDir != "" {
		importDataset(ctx, db, *datasetDir)
	}

	if *embed {
		oc := oracle.NewHTTPClient(oracle.Config{
			BaseURL:    cfg.Oracle.BaseURL,
			APIKey:     cfg.Oracle.APIKey,
			Model:      cfg.Oracle.Model,
			EmbedModel: cfg.Oracle.EmbedModel,
			Timeout:    cfg.Oracle.Timeout,
		})
		backfillEmbeddings(ctx, db, oc, *batch)
	}

	if *datasetDir == "" && !*embed {
		flag.Usage()
		os.Exit(2)
	}
}

// importDataset walks the dataset directory and imports each problem folder
// in its own transaction.
func importDataset(ctx context.Context, db *gorm.DB, dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", dir).Msg("cannot read dataset directory")
	}

	var imported, skipped int
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if err := importProblem(ctx, db, filepath.Join(dir, e.Name())); err != nil {
			skipped++
			log.Warn().Err(err).Str("problem", e.Name()).Msg("skipping problem")
			continue
		}
		imported++
	}
	log.Info().Int("imported", imported).Int("skipped", skipped).Msg("dataset import done")
}

// importProblem loads one problem folder and inserts its challenge row.
func importProblem(ctx context.Context, db *gorm.DB, dir string) error {
	description, err := os.ReadFile(filepath.Join(dir, "question.txt"))
	if err != nil {
		return err
	}
	text := strings.TrimSpace(string(description))
	if text == "" {
		return os.ErrInvalid
	}

	meta := readMeta(filepath.Join(dir, "metadata.json"))

	c := &domain.Challenge{
		ID:          uuid.NewString(),
		Title:       titleFrom(text),
		Description: text,
	}
	if meta.Topic != "" {
		c.Topic = &meta.Topic
	}
	if meta.Difficulty != "" {
		c.Difficulty = &meta.Difficulty
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return repo.CreateChallenge(ctx, tx, c)
	})
}

// readMeta parses the optional metadata sidecar; absence or malformed JSON
// just yields empty metadata.
func readMeta(path string) challengeMeta {
	var meta challengeMeta
	raw, err := os.ReadFile(path)
	if err != nil {
		return meta
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("malformed metadata, ignoring")
	}
	return meta
}

// titleFrom derives a display title from the first non-empty line of the
// problem statement, clipped to the column width.
func titleFrom(text string) string {
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if len(line) > maxTitleLen {
			return line[:maxTitleLen]
		}
		return line
	}
	return "Untitled Challenge"
}

// backfillEmbeddings computes embeddings for challenges missing one, up to
// the batch cap. Failures are logged per challenge and do not stop the run.
func backfillEmbeddings(ctx context.Context, db *gorm.DB, oc oracle.Client, batch int) {
	challenges, err := repo.ListChallengesWithoutEmbedding(ctx, db, batch)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot list challenges")
	}

	var done, failed int
	for _, c := range challenges {
		vec, err := oc.Embed(ctx, c.Description)
		if err != nil {
			failed++
			log.Warn().Err(err).Str("id", c.ID).Msg("embedding failed")
			continue
		}
		raw, err := json.Marshal(vec)
		if err != nil {
			failed++
			log.Warn().Err(err).Str("id", c.ID).Msg("embedding marshal failed")
			continue
		}
		if err := repo.UpdateChallengeEmbedding(ctx, db, c.ID, raw); err != nil {
			failed++
			log.Warn().Err(err).Str("id", c.ID).Msg("embedding store failed")
			continue
		}
		done++
	}
	log.Info().Int("embedded", done).Int("failed", failed).Msg("embedding backfill done")
}

func openDB(cfg config.Config) *gorm.DB {
	if cfg.DatabaseURL != "" {
		db, err := repo.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("postgres open failed")
		}
		return db
	}
	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("sqlite open failed")
	}
	return db
}
