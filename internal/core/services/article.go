package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/quill/internal/core/domain"
	"github.com/custodia-labs/quill/internal/core/ports/driven"
	"github.com/custodia-labs/quill/internal/core/ports/driving"
	"github.com/custodia-labs/quill/internal/logger"
	"github.com/custodia-labs/quill/internal/postprocessors/chunker"
)

// Ensure ArticleService implements the interface.
var _ driving.ArticleService = (*ArticleService)(nil)

// Progress checkpoints for the generation stages.
const (
	researchDone   = 0.33
	processingDone = 0.66
)

// ArticleConfig holds the tunable parameters of one generation run.
type ArticleConfig struct {
	// ChunkSize is the target chunk length in characters.
	ChunkSize int

	// Threshold is the retrieval similarity threshold.
	Threshold float64

	// TopK is the number of chunks retrieved per section.
	TopK int

	// Sections is the ordered list of sections to write.
	Sections []string
}

// ArticleConfigFromSettings derives the run configuration from app settings.
func ArticleConfigFromSettings(settings *domain.AppSettings) ArticleConfig {
	return ArticleConfig{
		ChunkSize: settings.Retrieval.ChunkSize,
		Threshold: settings.Retrieval.Threshold,
		TopK:      settings.Retrieval.TopK,
		Sections:  settings.Article.Sections,
	}
}

// ArticleService orchestrates research, ingestion and writing of articles.
// Every run gets its own ledger, store and generator; nothing is shared
// between articles.
type ArticleService struct {
	discoverer  driven.SourceDiscoverer
	fetcher     driven.PageFetcher
	embedder    driven.EmbeddingService
	llm         driven.LLMService
	store       driven.ArticleStore
	promptStore driven.PromptStore
	cfg         ArticleConfig

	now   func() time.Time
	newID func() string
}

// NewArticleService creates a new article service.
// The discoverer and fetcher are only needed by Generate; store is optional
// and, when nil, generated articles are not persisted.
func NewArticleService(
	discoverer driven.SourceDiscoverer,
	fetcher driven.PageFetcher,
	embedder driven.EmbeddingService,
	llm driven.LLMService,
	store driven.ArticleStore,
	cfg ArticleConfig,
) *ArticleService {
	if len(cfg.Sections) == 0 {
		cfg.Sections = domain.DefaultSections()
	}
	return &ArticleService{
		discoverer: discoverer,
		fetcher:    fetcher,
		embedder:   embedder,
		llm:        llm,
		store:      store,
		cfg:        cfg,
		now:        time.Now,
		newID:      func() string { return uuid.New().String() },
	}
}

// SetPromptStore sets the prompt store handed to each section generator.
func (s *ArticleService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// articleRun is the per-article state.
type articleRun struct {
	store     *VectorStore
	ledger    *CitationLedger
	generator *SectionGenerator
}

func (s *ArticleService) newRun() *articleRun {
	ledger := NewCitationLedger()
	ledger.now = s.now
	store := NewVectorStore(s.embedder, chunker.New(chunker.WithChunkSize(s.cfg.ChunkSize)), ledger)
	generator := NewSectionGenerator(NewRetriever(store, s.embedder), s.llm)
	generator.SetThreshold(s.cfg.Threshold)
	generator.SetTopK(s.cfg.TopK)
	if s.promptStore != nil {
		generator.SetPromptStore(s.promptStore)
	}
	return &articleRun{store: store, ledger: ledger, generator: generator}
}

// Generate discovers sources for topic, ingests them and writes the article.
// URLs that cannot be fetched are skipped.
func (s *ArticleService) Generate(
	ctx context.Context,
	topic string,
	progress domain.ProgressFunc,
) (*domain.Article, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("%w: topic is required", domain.ErrInvalidInput)
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.discoverer == nil || s.fetcher == nil {
		return nil, domain.ErrDiscoveryUnavailable
	}

	logger.Section("Research: " + topic)
	notify(progress, domain.StageResearch, 0, "Searching for sources")

	urls, err := s.discoverer.DiscoverSources(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDiscoveryFailed, err)
	}
	if len(urls) == 0 {
		return nil, domain.ErrNoSources
	}
	logger.Info("%s found %d sources", s.discoverer.Name(), len(urls))
	notify(progress, domain.StageResearch, researchDone, fmt.Sprintf("Found %d sources", len(urls)))

	run := s.newRun()
	for i, url := range urls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := s.fetcher.Fetch(ctx, url)
		if err != nil {
			logger.Warn("skip %s: %v", url, err)
		} else {
			run.store.AddContent(ctx, page.Content, page.URL, page.CitationFields())
		}

		notify(progress, domain.StageProcessing,
			researchDone+(processingDone-researchDone)*float64(i+1)/float64(len(urls)),
			fmt.Sprintf("Processed %d of %d sources", i+1, len(urls)))
	}

	return s.write(ctx, run, topic, progress)
}

// GenerateFromContent writes the article from caller-supplied pages.
func (s *ArticleService) GenerateFromContent(
	ctx context.Context,
	topic string,
	pages []domain.Page,
	progress domain.ProgressFunc,
) (*domain.Article, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("%w: topic is required", domain.ErrInvalidInput)
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if len(pages) == 0 {
		return nil, domain.ErrNoSources
	}

	notify(progress, domain.StageResearch, researchDone, fmt.Sprintf("Using %d supplied sources", len(pages)))

	run := s.newRun()
	if err := run.ingestPages(ctx, pages, progress); err != nil {
		return nil, err
	}

	return s.write(ctx, run, topic, progress)
}

// WriteSection writes a single section about topic from caller-supplied
// pages. The result is returned as a one-section article and is not stored.
func (s *ArticleService) WriteSection(
	ctx context.Context,
	topic, section string,
	pages []domain.Page,
) (*domain.Article, error) {
	topic = strings.TrimSpace(topic)
	section = strings.TrimSpace(section)
	if topic == "" || section == "" {
		return nil, fmt.Errorf("%w: topic and section are required", domain.ErrInvalidInput)
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if len(pages) == 0 {
		return nil, domain.ErrNoSources
	}

	run := s.newRun()
	if err := run.ingestPages(ctx, pages, nil); err != nil {
		return nil, err
	}

	return &domain.Article{
		ID:         s.newID(),
		Topic:      topic,
		Sections:   []domain.Section{{Name: section, Content: run.generator.GenerateSection(ctx, section, topic)}},
		References: run.ledger.GetReferences(),
		Sources:    run.store.Sources(),
		CreatedAt:  s.now().UTC(),
	}, nil
}

// ingestPages adds every page to the run's store. Pages without a title or
// URL are ingested uncited.
func (r *articleRun) ingestPages(ctx context.Context, pages []domain.Page, progress domain.ProgressFunc) error {
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}

		var fields *domain.CitationFields
		if page.Title != "" || page.URL != "" {
			fields = page.CitationFields()
		}
		source := page.URL
		if source == "" {
			source = page.Title
		}
		report := r.store.AddContent(ctx, page.Content, source, fields)
		if report.Skipped > 0 {
			logger.Warn("%s: %d of %d chunks not embedded", source, report.Skipped, report.Chunks)
		}

		notify(progress, domain.StageProcessing,
			researchDone+(processingDone-researchDone)*float64(i+1)/float64(len(pages)),
			fmt.Sprintf("Processed %d of %d sources", i+1, len(pages)))
	}
	return nil
}

// write generates every configured section and assembles the article.
func (s *ArticleService) write(
	ctx context.Context,
	run *articleRun,
	topic string,
	progress domain.ProgressFunc,
) (*domain.Article, error) {
	logger.Info("writing %q from %d chunks and %d citations", topic, run.store.Len(), run.ledger.Len())

	sections := make([]domain.Section, 0, len(s.cfg.Sections))
	for i, name := range s.cfg.Sections {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sections = append(sections, domain.Section{
			Name:    name,
			Content: run.generator.GenerateSection(ctx, name, topic),
		})

		notify(progress, domain.StageWriting,
			processingDone+(1-processingDone)*float64(i+1)/float64(len(s.cfg.Sections)),
			fmt.Sprintf("Wrote %s", name))
	}

	article := &domain.Article{
		ID:         s.newID(),
		Topic:      topic,
		Sections:   sections,
		References: run.ledger.GetReferences(),
		Sources:    run.store.Sources(),
		CreatedAt:  s.now().UTC(),
	}

	if s.store != nil {
		if err := s.store.Save(ctx, article); err != nil {
			return article, fmt.Errorf("save article: %w", err)
		}
	}

	notify(progress, domain.StageDone, 1, "Article complete")
	return article, nil
}

// Get retrieves a stored article.
func (s *ArticleService) Get(ctx context.Context, id string) (*domain.Article, error) {
	if s.store == nil {
		return nil, domain.ErrNotFound
	}
	return s.store.Get(ctx, id)
}

// List returns stored article summaries, newest first.
func (s *ArticleService) List(ctx context.Context) ([]domain.ArticleSummary, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.List(ctx)
}

// Delete removes a stored article.
func (s *ArticleService) Delete(ctx context.Context, id string) error {
	if s.store == nil {
		return nil
	}
	return s.store.Delete(ctx, id)
}

func notify(progress domain.ProgressFunc, stage domain.Stage, fraction float64, msg string) {
	if progress == nil {
		return
	}
	if fraction > 1 {
		fraction = 1
	}
	progress(domain.Progress{Stage: stage, Fraction: fraction, Message: msg})
}
