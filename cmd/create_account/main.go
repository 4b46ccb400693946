package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"portal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 4 {
		fmt.Println("usage: go run ./cmd/create_account <email> <password> <role>")
		os.Exit(2)
	}
	email := strings.ToLower(strings.TrimSpace(os.Args[1]))
	password := os.Args[2]
	role := models.Role(os.Args[3])
	if !role.Valid() {
		log.Fatalf("invalid role %q (want applicant, staff or superStaff)", os.Args[3])
	}

	dsn := os.Getenv("DB_DSN")
	if strings.TrimSpace(dsn) == "" {
		log.Fatal("DB_DSN not set in environment")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}

	var existing models.Account
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		fmt.Printf("account %s already exists (id=%s role=%s)\n", email, existing.ID, existing.Role)
		os.Exit(0)
	}

	hpw, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("bcrypt failed: %v", err)
	}
	acct := models.Account{
		ID:           "user_" + uuid.NewString(),
		Email:        email,
		DisplayName:  email,
		PasswordHash: hpw,
		Role:         role,
	}
	if err := db.Create(&acct).Error; err != nil {
		log.Fatalf("failed to create account: %v", err)
	}
	fmt.Printf("created %s account %s id=%s\n", acct.Role, email, acct.ID)
}
