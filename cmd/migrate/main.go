package main

import (
	"log"
	"os"

	"voice-meditation-be/internal/model"
	"voice-meditation-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting Authoritative GORM Migration...")

	// 3. Pre-Migration: Extensions (Things GORM AutoMigrate doesn't do)
	log.Println("Step 1: Setting up Extensions...")

	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	}

	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate All Models
	log.Println("Step 2: Running AutoMigrate...")

	models := []interface{}{
		&model.Profile{},
		&model.UserRefreshToken{},
		&model.MeditationSession{},
		&model.VoiceCall{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Post-Migration: Functions & Triggers
	// Profile aggregates belong to the store, not the API: a trigger keeps
	// total_sessions / total_meditation_time_sec / last_session_at current
	// whenever a session flips to completed.
	log.Println("Step 3: Creating Functions and Triggers...")

	postMigrationSQL := []string{
		`CREATE OR REPLACE FUNCTION sync_profile_stats() RETURNS trigger LANGUAGE plpgsql AS $$
		BEGIN
		  IF NEW.status = 'completed' AND (OLD.status IS DISTINCT FROM 'completed') THEN
		    UPDATE profiles SET
		      total_sessions = total_sessions + 1,
		      total_meditation_time_sec = total_meditation_time_sec + NEW.duration_min * 60,
		      last_session_at = NEW.completed_at,
		      updated_at = now()
		    WHERE id = NEW.user_id;
		  END IF;
		  RETURN NEW;
		END; $$;`,

		`DROP TRIGGER IF EXISTS user_sessions_sync_profile_stats ON user_sessions;`,

		`CREATE TRIGGER user_sessions_sync_profile_stats
		 AFTER UPDATE ON user_sessions
		 FOR EACH ROW EXECUTE FUNCTION sync_profile_stats();`,
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v. Continuing...", err)
		}
	}

	log.Println("✅ Migration complete")
}
