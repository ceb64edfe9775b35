package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/vladimiradmaev/protein-tracker/internal/config"
)

func main() {
	fmt.Println("🔍 Checking configuration...")

	if err := godotenv.Load(); err != nil {
		fmt.Printf("⚠️  .env file not found: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Configuration is invalid:\n%v\n", err)
		os.Exit(1)
	}

	fmt.Println("✅ Configuration is valid!")
	fmt.Printf("📋 Configuration details:\n")
	fmt.Printf("  - Telegram Token: %s\n", maskToken(cfg.TelegramToken))
	fmt.Printf("  - AI Provider: %s\n", cfg.AI.Provider)
	switch cfg.AI.Provider {
	case config.ProviderGemini:
		fmt.Printf("  - Gemini API Key: %s\n", maskToken(cfg.AI.GeminiAPIKey))
		fmt.Printf("  - Gemini Model: %s\n", cfg.AI.GeminiModel)
	case config.ProviderOpenAI:
		fmt.Printf("  - OpenAI API Key: %s\n", maskToken(cfg.AI.OpenAIAPIKey))
		fmt.Printf("  - OpenAI Model: %s\n", cfg.AI.OpenAIModel)
	}
	fmt.Printf("  - AI Timeout: %s\n", cfg.AI.Timeout)
	fmt.Printf("  - Suggestion Limit: %d per %s\n", cfg.RateLimit.SuggestionLimit, cfg.RateLimit.SuggestionWindow)
	fmt.Printf("  - HTTP Addr: %s\n", cfg.HTTP.Addr)
	fmt.Printf("  - DB Host: %s\n", cfg.DB.Host)
	fmt.Printf("  - DB Port: %s\n", cfg.DB.Port)
	fmt.Printf("  - DB User: %s\n", cfg.DB.User)
	fmt.Printf("  - DB Name: %s\n", cfg.DB.DBName)
	if cfg.Redis.Enabled() {
		fmt.Printf("  - Redis: %s (db %d)\n", cfg.Redis.Addr, cfg.Redis.DB)
	} else {
		fmt.Printf("  - Redis: <disabled, using in-memory limiter>\n")
	}
	fmt.Printf("  - JWT Secret: %s\n", maskToken(cfg.Auth.JWTSecret))
	fmt.Printf("  - Default Goal: %.0fg\n", cfg.Tracker.DefaultGoalProtein)
	fmt.Printf("  - Default Timezone: %s\n", cfg.Tracker.DefaultTimezone)
	fmt.Printf("  - Log Level: %v\n", cfg.Logger.Level)
	fmt.Printf("  - Log Output: %s\n", cfg.Logger.OutputPath)
	fmt.Printf("  - Log Format: %s\n", cfg.Logger.Format)
}

func maskToken(token string) string {
	if token == "" {
		return "<not set>"
	}
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
