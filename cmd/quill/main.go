// Command quill writes cited research articles.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/quill/internal/adapters/driven/ai"
	"github.com/custodia-labs/quill/internal/adapters/driven/config/env"
	"github.com/custodia-labs/quill/internal/adapters/driven/config/file"
	"github.com/custodia-labs/quill/internal/adapters/driven/discovery/perplexity"
	filefetcher "github.com/custodia-labs/quill/internal/adapters/driven/fetcher/file"
	"github.com/custodia-labs/quill/internal/adapters/driven/fetcher/web"
	"github.com/custodia-labs/quill/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/quill/internal/adapters/driving/cli"
	"github.com/custodia-labs/quill/internal/core/ports/driven"
	"github.com/custodia-labs/quill/internal/core/ports/driving"
	"github.com/custodia-labs/quill/internal/core/services"
	"github.com/custodia-labs/quill/internal/logger"
	"github.com/custodia-labs/quill/internal/normalisers"
	"github.com/custodia-labs/quill/internal/normalisers/html"
	"github.com/custodia-labs/quill/internal/normalisers/pdf"
	"github.com/custodia-labs/quill/internal/normalisers/plaintext"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := env.LoadDotEnv(); err != nil {
		return fmt.Errorf("loading .env: %w", err)
	}

	dir, err := file.DefaultDir()
	if err != nil {
		return err
	}

	configStore, err := file.NewConfigStore(dir)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settingsService.SetOverlay(env.Overlay())

	prompts, err := file.NewPromptStore(filepath.Join(dir, "prompts"), map[string]string{
		driven.PromptSectionSystem:  services.DefaultSectionSystemPrompt,
		driven.PromptSection:        services.DefaultSectionPrompt,
		driven.PromptResearchSystem: perplexity.DefaultSystemPrompt,
		driven.PromptResearch:       perplexity.DefaultResearchPrompt,
	})
	if err != nil {
		return fmt.Errorf("opening prompts: %w", err)
	}

	store, err := sqlite.NewStore(filepath.Join(dir, "data"))
	if err != nil {
		return fmt.Errorf("opening article history: %w", err)
	}
	defer store.Close()

	registry := normalisers.NewRegistry(html.New(), pdf.New(), plaintext.New())

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	history := services.NewArticleService(nil, nil, nil, nil, store, services.ArticleConfigFromSettings(settings))

	newWriter := func() (driving.ArticleService, func(), error) {
		settings, err := settingsService.Get()
		if err != nil {
			return nil, nil, fmt.Errorf("loading settings: %w", err)
		}

		result, err := ai.Initialise(settings, prompts)
		if err != nil {
			return nil, nil, err
		}
		for _, w := range result.Warnings {
			logger.Warn("%s", w)
		}

		writer := services.NewArticleService(
			result.Discoverer,
			web.New(registry, web.ConfigFromSettings(settings.Fetch)),
			result.EmbeddingService,
			result.LLMService,
			store,
			services.ArticleConfigFromSettings(settings),
		)
		writer.SetPromptStore(prompts)
		return writer, result.Close, nil
	}

	cli.SetVersion(version)
	cli.SetServices(&cli.Services{
		Settings:  settingsService,
		History:   history,
		NewWriter: newWriter,
		Files:     filefetcher.New(registry),
		Prompts:   prompts,
	})

	return cli.Execute(ctx)
}
