package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"

	"github.com/nileshgupta/stocklens/internal/config"
	"github.com/nileshgupta/stocklens/internal/genai"
)

func main() {
	baseURL := flag.String("base-url", config.DefaultBaseURL, "API base URL")
	generateOnly := flag.Bool("generate-only", false, "show only models that support generateContent")
	flag.Parse()

	_ = godotenv.Load()
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatal("GEMINI_API_KEY is not set")
	}

	client := genai.NewClient(*baseURL, apiKey, nil, genai.WithTimeout(30*time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	models, err := client.ListAllModels(ctx)
	if err != nil {
		log.Fatalf("ListAllModels failed: %v", err)
	}

	shown := 0
	for _, m := range models {
		if *generateOnly && !supportsGenerate(m) {
			continue
		}
		shown++

		fmt.Println(m.Name)
		fmt.Printf("  display: %s\n", m.DisplayName)
		fmt.Printf("  tokens:  %s in / %s out\n",
			humanize.Comma(int64(m.InputTokenLimit)),
			humanize.Comma(int64(m.OutputTokenLimit)),
		)
		fmt.Printf("  methods: %s\n", strings.Join(m.SupportedGenerationMethods, ", "))
	}

	fmt.Printf("\n%d models", shown)
	if *generateOnly {
		fmt.Printf(" (of %d total)", len(models))
	}
	fmt.Println()
}

func supportsGenerate(m genai.ModelInfo) bool {
	for _, method := range m.SupportedGenerationMethods {
		if method == "generateContent" {
			return true
		}
	}
	return false
}
