package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/harvesthub/marketplace/internal/config"
	"github.com/harvesthub/marketplace/internal/domain"
	"github.com/harvesthub/marketplace/internal/repository/postgres"
)

func main() {
	emailFlag := flag.String("email", "", "Admin email address")
	nameFlag := flag.String("name", "Administrator", "Admin display name")
	passwordFlag := flag.String("password", "", "Admin password (at least 8 characters)")
	flag.Parse()

	email := strings.ToLower(strings.TrimSpace(*emailFlag))
	name := strings.TrimSpace(*nameFlag)
	password := *passwordFlag
	if email == "" || password == "" {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/create-admin --email admin@example.com --password \"s3cret-pass\" [--name \"Site Admin\"]")
		os.Exit(1)
	}
	if len(password) < 8 {
		fmt.Fprintf(os.Stderr, "Error: password must be at least 8 characters.\n")
		os.Exit(1)
	}

	_ = godotenv.Load(".env")

	cfg, err := config.LoadDatabase()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	db, err := postgres.NewConnection(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to hash password: %v\n", err)
		os.Exit(1)
	}
	hashed := string(hash)

	repos := postgres.NewRepositories(db, logger)
	ctx := context.Background()

	// Promote an existing account instead of failing on the unique email
	if existing, err := repos.User.GetByEmail(ctx, email); err == nil {
		if err := repos.User.UpdateRole(ctx, existing.ID, domain.UserRoleAdmin); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to promote user: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Existing user %s (%s) promoted to ADMIN\n", existing.Email, existing.ID)
		return
	}

	user := &domain.User{
		Email:        email,
		Name:         name,
		PasswordHash: &hashed,
		Role:         domain.UserRoleAdmin,
		IsVerified:   true,
	}
	if err := repos.User.Create(ctx, user); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create admin: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Admin created successfully!\n\n")
	fmt.Printf("User ID: %s\n", user.ID)
	fmt.Printf("Email: %s\n", user.Email)
	fmt.Printf("\nSign in with POST /api/auth/login to obtain a bearer token.\n")
}
