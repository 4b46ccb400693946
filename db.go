package main

import (
	"log"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"portal/models"
)

var db *gorm.DB

func initDB() {
	var err error
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN.")
	}
	db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect postgres database:", err)
	}
	// Control schema migrations with env DB_AUTO_MIGRATE (default true). Any permission errors will be logged and ignored.
	shouldMigrate := true
	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		lv := strings.ToLower(v)
		if lv == "false" || lv == "0" || lv == "no" {
			shouldMigrate = false
		}
	}
	if shouldMigrate {
		// Migrate models individually so a failure on one doesn't block others.
		// Accounts first so the FKs on the rest can be applied safely.
		if err := db.AutoMigrate(&models.Account{}); err != nil {
			log.Printf("migration warning (accounts): %v", err)
		}
		if err := db.AutoMigrate(&models.Application{}); err != nil {
			log.Printf("migration warning (applications): %v", err)
		}
		if err := db.AutoMigrate(&models.Document{}); err != nil {
			log.Printf("migration warning (documents): %v", err)
		}
		if err := db.AutoMigrate(&models.FeeRecord{}); err != nil {
			log.Printf("migration warning (payments): %v", err)
		}
		if err := db.AutoMigrate(&models.Receipt{}); err != nil {
			log.Printf("migration warning (payment_receipts): %v", err)
		}
		if err := db.AutoMigrate(&models.RefreshToken{}); err != nil {
			log.Printf("migration warning (refresh_tokens): %v", err)
		}
		if err := ensureCascadeFKs(); err != nil {
			log.Printf("warning: ensuring cascade FKs failed: %v", err)
		}
	}
	seedDB()
}

// ensureCascadeFKs adds the ON DELETE CASCADE constraints in case the
// tables existed before the association tags did. Deleting an application
// must leave zero orphaned document, fee or receipt rows.
func ensureCascadeFKs() error {
	fks := []struct{ name, table, column, ref string }{
		{"fk_documents_application", "documents", "application_id", "applications"},
		{"fk_payments_application", "payments", "application_id", "applications"},
		{"fk_payment_receipts_payment", "payment_receipts", "payment_id", "payments"},
	}
	for _, fk := range fks {
		type cnt struct{ N int }
		var c cnt
		fkCheckSQL := `SELECT count(*) AS n
			FROM pg_constraint ct
			JOIN pg_class rel ON rel.oid = ct.conrelid
			WHERE rel.relname = ? AND ct.contype = 'f'
			  AND pg_get_constraintdef(ct.oid) ILIKE '%' || ? || '%'
			  AND pg_get_constraintdef(ct.oid) ILIKE '%' || ? || '%'
			  AND pg_get_constraintdef(ct.oid) ILIKE '%CASCADE%'`
		if err := db.Raw(fkCheckSQL, fk.table, fk.column, fk.ref).Scan(&c).Error; err != nil {
			return err
		}
		if c.N == 0 {
			stmt := `ALTER TABLE ` + fk.table + `
				ADD CONSTRAINT ` + fk.name + `
				FOREIGN KEY (` + fk.column + `) REFERENCES ` + fk.ref + `(id)
				ON UPDATE CASCADE ON DELETE CASCADE`
			if err := db.Exec(stmt).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func seedDB() {
	// Seed a superStaff account so role management is reachable on a fresh
	// database. Credentials are env-driven; skip silently when unset and a
	// superStaff already exists.
	email := strings.ToLower(strings.TrimSpace(os.Getenv("SEED_SUPERSTAFF_EMAIL")))
	password := os.Getenv("SEED_SUPERSTAFF_PASSWORD")
	if email == "" || password == "" {
		return
	}
	var count int64
	db.Model(&models.Account{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("failed to hash seed password: %v", err)
		return
	}
	acc := models.Account{
		ID:           "user_seed_superstaff",
		Email:        email,
		DisplayName:  "Portal Administrator",
		PasswordHash: hash,
		Role:         models.RoleSuperStaff,
	}
	if err := db.Create(&acc).Error; err != nil {
		log.Printf("failed to seed superStaff account: %v", err)
		return
	}
	log.Println("Seeded superStaff account:", email)
}

// uploadBaseDir returns the base directory for local uploads (configurable via UPLOAD_BASE env)
func uploadBaseDir() string {
	if v := os.Getenv("UPLOAD_BASE"); v != "" {
		return v
	}
	return "uploads"
}
