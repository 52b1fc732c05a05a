package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/nileshgupta/stocklens/internal/cache"
	"github.com/nileshgupta/stocklens/internal/config"
	"github.com/nileshgupta/stocklens/internal/genai"
	"github.com/nileshgupta/stocklens/internal/insights"
)

// Live round trip against the real API: explain one stock with the
// default fallback order and print the result.
func main() {
	symbol := flag.String("symbol", "RELIANCE", "NSE symbol to explain")
	flag.Parse()

	_ = godotenv.Load()
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatal("GEMINI_API_KEY is not set")
	}

	candidates := make([]genai.ModelCandidate, len(config.DefaultModels))
	for i, m := range config.DefaultModels {
		candidates[i] = genai.ModelCandidate{Name: m.Name, StructuredOutput: m.Structured()}
	}

	client := genai.NewClient(
		config.DefaultBaseURL,
		apiKey,
		candidates,
		genai.WithTimeout(config.DefaultAPITimeout),
	)
	svc := insights.NewService(client, cache.New(config.DefaultStatusTTL, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute)
	defer cancel()

	fmt.Printf("=== Explaining %s ===\n", *symbol)
	insight, err := svc.ExplainStock(ctx, *symbol)
	if err != nil {
		log.Fatalf("ExplainStock failed: %v", err)
	}

	fmt.Printf("Symbol:    %s\n", insight.Symbol)
	fmt.Printf("Sentiment: %s\n", insight.Sentiment)
	fmt.Printf("Summary:   %s\n", insight.Summary)

	if len(insight.Drivers) > 0 {
		fmt.Println("\nDrivers:")
		for i, d := range insight.Drivers {
			fmt.Printf("  %d. [%s] %s: %s\n", i+1, d.Impact, d.Title, d.Detail)
		}
	}

	if len(insight.Risks) > 0 {
		fmt.Println("\nRisks:")
		for _, r := range insight.Risks {
			fmt.Printf("  - %s\n", r)
		}
	}

	if len(insight.Citations) > 0 {
		fmt.Println("\nSources:")
		for _, c := range insight.Citations {
			fmt.Printf("  - %s (%s)\n", c.Title, c.URL)
		}
	}

	fmt.Println("\n=== Done ===")
}
