package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/hackgods/clinic-shift-scheduling/internal/db"
	"github.com/hackgods/clinic-shift-scheduling/internal/logging"
)

var specialties = map[string][]string{
	"Dermatology":      {"Skin consultation", "Acne treatment"},
	"Cardiology":       {"ECG", "Echocardiogram", "Cardiac consultation"},
	"General Practice": {"General check-up", "Vaccination"},
	"Orthopedics":      {"Joint consultation", "Fracture follow-up"},
	"Pediatrics":       {"Child check-up", "Growth assessment"},
	"Ophthalmology":    {"Eye exam", "Vision test"},
	"ENT":              {"Hearing test", "Sinus consultation"},
}

func main() {
	_ = godotenv.Load()
	logger := logging.New(getEnv("APP_ENV", "dev"), "seed")
	logger.Info().Msg("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		logger.Fatal().Msg("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	if _, err := db.Migrate(context.Background(), pool, logger); err != nil {
		logger.Fatal().Err(err).Msg("migrate")
	}

	gofakeit.Seed(time.Now().UnixNano())

	specialtyIDs, err := seedCatalog(context.Background(), pool, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("seed catalog")
	}
	if err := seedDoctors(context.Background(), pool, specialtyIDs, getInt("SEED_DOCTORS", 40), logger); err != nil {
		logger.Fatal().Err(err).Msg("seed doctors")
	}
	if err := seedPatients(context.Background(), pool, getInt("SEED_PATIENTS", 5000), logger); err != nil {
		logger.Fatal().Err(err).Msg("seed patients")
	}

	logger.Info().Msg("seed complete; run schedctl shifts generate to create shifts")
}

// seedCatalog upserts the specialties and their services and returns the
// specialty ids.
func seedCatalog(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) ([]uuid.UUID, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var ids []uuid.UUID
	for name, services := range specialties {
		var id uuid.UUID
		err := tx.QueryRow(ctx, `
			INSERT INTO specialties (id, name)
			VALUES ($1, $2)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		`, uuid.New(), name).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("insert specialty %s: %w", name, err)
		}
		ids = append(ids, id)

		for _, svc := range services {
			price := decimal.NewFromInt(int64(gofakeit.Number(10, 80)) * 10000)
			if _, err := tx.Exec(ctx, `
				INSERT INTO services (id, specialty_id, name, price)
				SELECT $1, $2, $3, $4::numeric
				WHERE NOT EXISTS (SELECT 1 FROM services WHERE specialty_id = $2 AND name = $3)
			`, uuid.New(), id, svc, price.String()); err != nil {
				return nil, fmt.Errorf("insert service %s: %w", svc, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	logger.Info().Int("specialties", len(ids)).Msg("catalog seeded")
	return ids, nil
}

func seedDoctors(ctx context.Context, pool *pgxpool.Pool, specialtyIDs []uuid.UUID, count int, logger zerolog.Logger) error {
	logger.Info().Int("count", count).Msg("seeding doctors")

	batch := &pgx.Batch{}
	for i := 0; i < count; i++ {
		specialty := specialtyIDs[gofakeit.Number(0, len(specialtyIDs)-1)]
		batch.Queue(`
			INSERT INTO doctors (id, name, specialty_id, active)
			VALUES ($1, $2, $3, true)
		`, uuid.New(), "Dr. "+gofakeit.Name(), specialty)
	}

	if err := pool.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}

	logger.Info().Msg("doctors seeded")
	return nil
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, count int, logger zerolog.Logger) error {
	logger.Info().Int("count", count).Msg("seeding patients")

	const batchSize = 500

	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		for i := offset; i < end; i++ {
			gender := gofakeit.RandomString([]string{"male", "female", "other"})
			email := gofakeit.Email()

			// Phones must be unique; derive them from the row number.
			_, err := tx.Exec(ctx, `
				INSERT INTO patients (id, name, phone, gender, email)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (phone) DO NOTHING
			`, uuid.New(), gofakeit.Name(), fmt.Sprintf("+849%08d", i), gender, email)
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		logger.Info().Int("seeded", end).Int("total", count).Msg("patients progress")
	}

	logger.Info().Msg("patients seeded")
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
