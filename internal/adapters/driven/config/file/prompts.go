package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads LLM prompts from user-editable files on disk.
// Prompts are loaded from a configurable directory with fallback to embedded defaults.
//
// Files are only created on first Load, not in the constructor.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains embedded default prompts.
// These are used when user files don't exist and as the initial content for new files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptMedicalAnswer: `You are a helpful and safe medical assistant. Use the following context to answer the user's question.
If the answer is not in the context, say you don't know. Do not make up medical information.
Always advise the user to consult a doctor for professional advice.

Context:
%s

Question: %s

Answer:`,

	driven.PromptPolicyAnswer: `You are a Policy Expert. Answer the user's question based ONLY on the following policy context.

Context:
%s

Question: %s

Answer:`,

	driven.PromptComplianceCheck: `You are a strict Compliance Officer. Evaluate if the company policy text provided below complies with the following rule.

Rule Category: %s
Rule: "%s"

Policy Context Retrieved:
%s

Task:
1. Determine if the policy is "Compliant", "Non-Compliant", or "Missing" (if not mentioned).
2. Provide a brief "Evidence" quote from the context if found.
3. Suggest "Remediation" if non-compliant or missing.

Output Format (JSON):
{
  "status": "Compliant/Non-Compliant/Missing",
  "evidence": "...",
  "remediation": "..."
}`,
}

// DefaultPrompt returns the embedded template for name.
func DefaultPrompt(name string) (string, bool) {
	p, ok := defaultPrompts[name]
	return p, ok
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.ragkit/prompts/.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultConfigDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(dir, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// The user's file wins over the embedded default; unknown names are ErrNotFound.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	prompt, err := s.loadFromFile(name)
	var invalid *invalidPromptError
	if errors.As(err, &invalid) {
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}
	if err != nil {
		defaultPrompt, ok := defaultPrompts[name]
		if !ok {
			return "", fmt.Errorf("load prompt %q: %w: %w", name, domain.ErrNotFound, err)
		}
		prompt = defaultPrompt
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and default files.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

func (s *PromptStore) loadFromFile(name string) (string, error) {
	path := filepath.Join(s.promptDir, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	prompt := strings.TrimSpace(string(data))
	if args, ok := driven.PromptArgs(name); ok {
		if err := domain.CheckPromptTemplate(prompt, args); err != nil {
			return "", &invalidPromptError{path: path, err: err}
		}
	}
	return prompt, nil
}

// invalidPromptError marks a prompt file that exists but cannot be used.
type invalidPromptError struct {
	path string
	err  error
}

func (e *invalidPromptError) Error() string { return e.path + ": " + e.err.Error() }
func (e *invalidPromptError) Unwrap() error { return e.err }

func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}

	content := `# ragkit prompts

Each file is a Go fmt template used when generating answers.

- ` + "`medical_answer.txt`" + ` - clinical Q&A. Placeholders: context, question
- ` + "`policy_answer.txt`" + ` - policy Q&A. Placeholders: context, question
- ` + "`compliance_check.txt`" + ` - compliance verdict as JSON. Placeholders: category, rule, context

Keep every ` + "`%s`" + ` in place and in order. Write a literal percent sign as ` + "`%%`" + `.
Changes take effect on the next command.
`
	return os.WriteFile(path, []byte(content), 0600)
}
