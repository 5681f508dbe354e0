package main

import (
	"context"
	"fmt"

	"github.com/custodia-labs/ragkit/internal/adapters/driven/ai"
	"github.com/custodia-labs/ragkit/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ragkit/internal/adapters/driven/storage/flat"
	"github.com/custodia-labs/ragkit/internal/adapters/driving/cli"
	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driving"
	"github.com/custodia-labs/ragkit/internal/core/services"
	"github.com/custodia-labs/ragkit/internal/loaders"
	"github.com/custodia-labs/ragkit/internal/postprocessors"
)

// composer wires configured adapters into the services a command runs with.
type composer struct {
	settings  driving.SettingsService
	promptDir string
	loaderOpt loaders.Options
}

func newComposer(settings driving.SettingsService, promptDir string) *composer {
	return &composer{settings: settings, promptDir: promptDir}
}

// resolve applies per-invocation overrides to the stored settings.
func (c *composer) resolve(opts cli.RuntimeOptions) (*domain.AppSettings, error) {
	settings, err := c.settings.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	if opts.Profile != "" && opts.Profile != settings.Profile {
		defaults := domain.DefaultSettingsForProfile(opts.Profile)
		settings.Profile = opts.Profile
		settings.Index.Dir = defaults.Index.Dir
		settings.Corpus.Include = defaults.Corpus.Include
		settings.RulesPath = defaults.RulesPath
	}
	if opts.CorpusDir != "" {
		settings.Corpus.Dir = opts.CorpusDir
	}
	if opts.RulesPath != "" {
		settings.RulesPath = opts.RulesPath
	}
	if settings.RulesPath == "" {
		settings.RulesPath = domain.DefaultRulesPath
	}
	return settings, nil
}

func (c *composer) open(ctx context.Context, opts cli.RuntimeOptions) (*cli.Runtime, error) {
	settings, err := c.resolve(opts)
	if err != nil {
		return nil, err
	}

	models, err := ai.Init(ctx, settings, opts.RequireLLM)
	if err != nil {
		return nil, err
	}

	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)
	pipeline, err := registry.BuildPipeline(domain.PipelineConfigFor(settings.Chunk))
	if err != nil {
		models.Close()
		return nil, fmt.Errorf("chunking: %w", err)
	}

	if opts.Rebuild {
		if err := flat.RemoveArtifacts(settings.Index.Dir); err != nil {
			models.Close()
			return nil, err
		}
	}

	loaderOpt := c.loaderOpt
	loaderOpt.TextColumn = settings.Corpus.TextColumn
	loader := loaders.NewDirectoryLoader(loaders.NewDefaultRegistry(loaderOpt))

	opener := flat.Opener(flat.Config{
		Dir:       settings.Index.Dir,
		Metric:    settings.Index.Metric,
		BatchSize: settings.Index.BatchSize,
	}, models.EmbeddingService)

	retrieval, err := services.NewRetrievalService(ctx, services.RetrievalConfig{
		CorpusDir: settings.Corpus.Dir,
		Include:   settings.Corpus.Include,
	}, loader, pipeline, opener)
	if err != nil {
		models.Close()
		return nil, err
	}

	prompts, err := file.NewPromptStore(c.promptDir)
	if err != nil {
		_ = retrieval.Close()
		models.Close()
		return nil, err
	}

	answers := services.NewAnswerService(retrieval, models.LLMService, prompts, settings.Profile)
	answers.SetDefaultTopK(settings.Retrieval.TopK)

	return &cli.Runtime{
		Retrieval:  retrieval,
		Answers:    answers,
		Compliance: services.NewComplianceService(retrieval, models.LLMService, prompts),
		Evaluation: services.NewEvaluationService(answers),
		Rules:      file.NewRuleSource(settings.RulesPath),
		IndexDir:   settings.Index.Dir,
		Reload:     retrieval.Reload,
		Warnings:   models.Warnings,
		Close: func() {
			_ = retrieval.Close()
			models.Close()
		},
	}, nil
}
