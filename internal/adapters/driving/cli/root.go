// Package cli implements the ragkit command line.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
	"github.com/custodia-labs/ragkit/internal/core/ports/driving"
	"github.com/custodia-labs/ragkit/internal/logger"
)

// version is set at build time with -ldflags "-X .../cli.version=...".
var version = "dev"

// RuntimeOptions selects how a command's services are constructed.
type RuntimeOptions struct {
	// Profile overrides the configured profile when set.
	Profile domain.Profile

	// RequireLLM fails construction when no usable LLM is configured.
	RequireLLM bool

	// Rebuild deletes existing index artifacts before opening the index.
	Rebuild bool

	// CorpusDir overrides the configured corpus directory when set.
	CorpusDir string

	// RulesPath overrides the configured compliance rule file when set.
	RulesPath string
}

// Runtime is the set of services a command runs with.
type Runtime struct {
	Retrieval  driving.RetrievalService
	Answers    driving.AnswerService
	Compliance driving.ComplianceService
	Evaluation driving.EvaluationService
	Rules      driven.RuleSource

	// IndexDir is the directory holding the index artifacts.
	IndexDir string

	// Reload swaps in a freshly loaded index. Nil when unsupported.
	Reload func(ctx context.Context) error

	// Warnings are non-fatal construction issues shown to the user.
	Warnings []string

	// Close releases every service. May be nil.
	Close func()
}

// RuntimeFactory builds the services for one command invocation.
type RuntimeFactory func(ctx context.Context, opts RuntimeOptions) (*Runtime, error)

var (
	settingsService driving.SettingsService
	runtimeFactory  RuntimeFactory

	verbose     bool
	profileFlag string
)

var rootCmd = &cobra.Command{
	Use:   "ragkit",
	Short: "Retrieval-augmented question answering over local documents",
	Long: `ragkit indexes a directory of documents (text, Markdown, CSV, PDF) into
a persistent vector index and answers questions grounded in it.

Run 'ragkit build' once to create the index, then 'ragkit query' or
'ragkit ask'. The policy profile adds compliance audits with 'ragkit audit'.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&profileFlag, "profile", "", "profile to run as (medical or policy)")
}

// SetSettingsService sets the settings service used by the settings command.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// SetRuntimeFactory sets how commands construct their services.
func SetRuntimeFactory(f RuntimeFactory) {
	runtimeFactory = f
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// openRuntime builds the services for cmd.
func openRuntime(cmd *cobra.Command, opts RuntimeOptions) (*Runtime, error) {
	if runtimeFactory == nil {
		return nil, errors.New("services not configured")
	}
	if profileFlag != "" {
		p := domain.Profile(profileFlag)
		if !p.IsValid() {
			return nil, fmt.Errorf("%w: unknown profile %q", domain.ErrInvalidInput, profileFlag)
		}
		opts.Profile = p
	}

	rt, err := runtimeFactory(commandContext(cmd), opts)
	if err != nil {
		if errors.Is(err, domain.ErrIndexCorrupt) {
			return nil, fmt.Errorf("%w\nRun 'ragkit build --force' to rebuild the index", err)
		}
		return nil, err
	}
	for _, w := range rt.Warnings {
		cmd.PrintErrf("Warning: %s\n", w)
	}
	return rt, nil
}

func (r *Runtime) close() {
	if r != nil && r.Close != nil {
		r.Close()
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
