package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"dev/bravebird/forum-automation-go/pkg/browser"
	"dev/bravebird/forum-automation-go/pkg/config"
	"dev/bravebird/forum-automation-go/pkg/runner"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Optional .env file; absence is not an error
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Printf("Failed to create logger: %v", err)
		return 1
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	cfg, err := config.FromEnv()
	if err != nil {
		sugar.Errorw("Invalid configuration", "error", err)
		return 1
	}

	ctx := context.Background()
	if cfg.Settings.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Settings.RunTimeout)
		defer cancel()
	}

	driver := browser.NewRodDriver(cfg.Settings, sugar)
	result := runner.New(cfg, driver, sugar).Run(ctx)

	if !result.Success {
		fmt.Printf("Automation failed: %s\n", result.ErrorMessage)
		fmt.Printf("Failure screenshot (best effort): %s\n", result.ScreenshotPath)
		return 1
	}

	fmt.Println("Topic extracted successfully")
	fmt.Printf("  Title:      %s\n", result.Topic.Title)
	fmt.Printf("  Author:     %s\n", result.Topic.Author)
	fmt.Printf("  Category:   %s\n", result.Topic.Category)
	fmt.Printf("  Tags:       %s\n", strings.Join(result.Topic.Tags, ", "))
	fmt.Printf("  URL:        %s\n", result.Topic.URL)
	fmt.Printf("  Screenshot: %s\n", result.ScreenshotPath)
	return 0
}
