// Command issue-token prints a bearer token for the HTTP API.
//
//	go run ./cmd/issue-token -user alice
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/vladimiradmaev/protein-tracker/internal/auth"
)

func main() {
	userID := flag.String("user", "", "user id to put in the token subject")
	ttl := flag.Duration("ttl", 0, "token lifetime (defaults to JWT_TTL or 72h)")
	flag.Parse()

	_ = godotenv.Load()

	if err := run(os.Getenv, *userID, *ttl); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func run(getenv func(string) string, userID string, ttl time.Duration) error {
	token, err := issue(getenv, userID, ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func issue(getenv func(string) string, userID string, ttl time.Duration) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", fmt.Errorf("-user is required")
	}

	secret := getenv("JWT_SECRET")
	if secret == "" {
		return "", fmt.Errorf("JWT_SECRET is not set")
	}

	issuer := getenv("JWT_ISSUER")
	if issuer == "" {
		issuer = "protein-tracker"
	}

	if ttl <= 0 {
		ttl = 72 * time.Hour
		if raw := getenv("JWT_TTL"); raw != "" {
			parsed, err := time.ParseDuration(raw)
			if err != nil {
				return "", fmt.Errorf("invalid JWT_TTL: %w", err)
			}
			ttl = parsed
		}
	}

	return auth.NewJWT(secret, issuer, ttl).Issue(userID)
}
