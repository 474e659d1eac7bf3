// Command checkplatforms prints which social platforms have working
// credential configuration, without posting anything.
package main

import (
	"fmt"
	"log"

	"github.com/catops/cat-content-bot/internal/config"
	"github.com/catops/cat-content-bot/internal/platforms"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	pubs := []platforms.Publisher{
		platforms.NewInstagramPublisher(cfg.InstagramUsername, cfg.InstagramPassword),
		platforms.NewTwitterPublisher(cfg.TwitterAPIKey, cfg.TwitterAPISecret, cfg.TwitterAccessToken, cfg.TwitterAccessSecret),
		platforms.NewFacebookPublisher(cfg.FacebookAccessToken, cfg.FacebookPageID),
		platforms.NewTikTokPublisher(cfg.TikTokAccessToken),
	}

	fmt.Println("Platform configuration:")
	for _, pub := range pubs {
		status := "missing credentials"
		if pub.IsConfigured() {
			status = "configured"
		}
		fmt.Printf("  %-10s %s\n", pub.Name(), status)
	}

	if cfg.GeminiAPIKey != "" {
		fmt.Printf("  %-10s configured (model %s)\n", "gemini", cfg.GeminiModel)
	}
}
