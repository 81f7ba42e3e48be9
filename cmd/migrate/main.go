package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"rag-chatbot-be/internal/model"
	"rag-chatbot-be/pkg/database"
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

	log.Println("Starting GORM Migration...")

	// 3. Pre-Migration: Extensions
	log.Println("Step 1: Setting up Extensions...")

	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS vector;`,
	}

	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate All Models
	log.Println("Step 2: Running AutoMigrate...")

	models := []interface{}{
		&model.Session{},
		&model.Chat{},
		&model.Conversation{},
		&model.ChatBot{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Post-Migration: updated_at triggers
	log.Println("Step 3: Creating Functions and Triggers...")

	postMigrationSQL := []string{
		`CREATE OR REPLACE FUNCTION set_current_timestamp_updated_at() RETURNS trigger LANGUAGE plpgsql AS $$
		DECLARE _new_value TIMESTAMP WITH TIME ZONE;
		BEGIN
		  _new_value := now();
		  IF NEW.updated_at IS DISTINCT FROM _new_value THEN NEW.updated_at = _new_value; END IF;
		  RETURN NEW;
		END; $$;`,

		`DROP TRIGGER IF EXISTS set_sessions_updated_at ON sessions;
		 CREATE TRIGGER set_sessions_updated_at BEFORE UPDATE ON sessions
		 FOR EACH ROW EXECUTE FUNCTION set_current_timestamp_updated_at();`,

		`DROP TRIGGER IF EXISTS set_chats_updated_at ON chats;
		 CREATE TRIGGER set_chats_updated_at BEFORE UPDATE ON chats
		 FOR EACH ROW EXECUTE FUNCTION set_current_timestamp_updated_at();`,

		`DROP TRIGGER IF EXISTS set_conversations_updated_at ON conversations;
		 CREATE TRIGGER set_conversations_updated_at BEFORE UPDATE ON conversations
		 FOR EACH ROW EXECUTE FUNCTION set_current_timestamp_updated_at();`,

		`DROP TRIGGER IF EXISTS set_chat_bots_updated_at ON chat_bots;
		 CREATE TRIGGER set_chat_bots_updated_at BEFORE UPDATE ON chat_bots
		 FOR EACH ROW EXECUTE FUNCTION set_current_timestamp_updated_at();`,
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("Success: Database migration completed via GORM.")
}
