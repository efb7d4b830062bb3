package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cigno/platform/internal/config"
	"github.com/cigno/platform/internal/database"
	"github.com/cigno/platform/internal/repository"
	"github.com/cigno/platform/internal/service"
	"github.com/cigno/platform/pkg/jwt"
)

func main() {
	// Flags for customization
	user := flag.String("user", "", "User id or email address (required)")
	privateKeyPath := flag.String("key", "", "Path to JWT private key (default: JWT_PRIVATE_KEY_PATH)")
	expMins := flag.Int("exp", 0, "Token expiration in minutes (default: JWT_EXPIRATION_MINS)")
	outputJSON := flag.Bool("json", false, "Output as JSON")

	flag.Parse()

	if *user == "" {
		fmt.Fprintln(os.Stderr, "Error: -user is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *privateKeyPath == "" {
		*privateKeyPath = cfg.JWT.PrivateKeyPath
	}
	if *expMins <= 0 {
		*expMins = cfg.JWT.ExpirationMins
	}

	// Create JWT service with just the private key
	jwtService, err := jwt.NewService(jwt.Config{
		PrivateKeyPath: *privateKeyPath,
		Issuer:         cfg.JWT.Issuer,
		ExpirationMins: *expMins,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating JWT service: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.ConnectSurreal(ctx, database.Config{
		URL:       cfg.Database.URL,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to database: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	authService := service.NewAuthService(repository.NewUserRepository(db), jwtService)
	token, err := authService.IssueTokenFor(ctx, *user)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error issuing token: %v\n", err)
		_ = db.Close()
		os.Exit(1)
	}

	if *outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(token)
		return
	}

	expTime := time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	fmt.Println("Access Token Issued")
	fmt.Println("===================")
	fmt.Printf("User ID:  %s\n", token.User.ID)
	fmt.Printf("Email:    %s\n", token.User.Email)
	fmt.Printf("Role:     %s\n", token.User.Role)
	fmt.Printf("Expires:  %s\n", expTime.Format(time.RFC3339))
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token.AccessToken)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Printf("  curl -H 'Authorization: Bearer %s' http://localhost:%s/api/projects\n", token.AccessToken[:min(50, len(token.AccessToken))]+"...", cfg.Server.Port)
}
