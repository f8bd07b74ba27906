package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/quill/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// promptExt is the file extension of prompt templates.
const promptExt = ".txt"

// PromptStore loads LLM prompts from user-editable files on disk.
// Each prompt lives in <dir>/<name>.txt; missing or unreadable files fall
// back to the defaults supplied at construction.
//
// Initialisation is lazy: the directory and default files are only written
// on the first Load.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	defaults  map[string]string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// NewPromptStore creates a prompt store rooted at promptDir.
// If promptDir is empty, defaults to <DefaultDir>/prompts.
// defaults seeds new prompt files and serves as the fallback content.
func NewPromptStore(promptDir string, defaults map[string]string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		promptDir = filepath.Join(dir, "prompts")
	}

	seeded := make(map[string]string, len(defaults))
	for name, content := range defaults {
		seeded[name] = content
	}

	return &PromptStore{
		promptDir: promptDir,
		defaults:  seeded,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		if prompt, ok := s.defaults[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	prompt, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return prompt, nil
	}

	prompt, err := s.loadFromFile(name)
	if err != nil || prompt == "" {
		if fallback, ok := s.defaults[name]; ok {
			return fallback, nil
		}
		if err == nil {
			err = fmt.Errorf("empty prompt file")
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
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

// Names returns the names of the prompts with defaults, sorted.
func (s *PromptStore) Names() []string {
	names := make([]string, 0, len(s.defaults))
	for name := range s.defaults {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// initialise creates the prompt directory, default files and README.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, content := range s.defaults {
		path := filepath.Join(s.promptDir, name+promptExt)
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

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.promptDir, name+promptExt))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}

	var files strings.Builder
	for _, name := range s.Names() {
		files.WriteString("- `" + name + promptExt + "`\n")
	}

	content := `# Quill Prompts

This directory contains the prompts quill sends to the language models.

## Files

` + files.String() + `
## Customisation

Edit any file to change how sources are found or sections are written.
Delete a file to restore its default on the next run. A running MCP server
picks up edits without a restart.

## Format Placeholders

- ` + "`section.txt`" + ` uses ` + "`%[1]s`" + ` (section name), ` + "`%[2]s`" + ` (topic)
  and ` + "`%[3]s`" + ` (retrieved context).
- ` + "`research.txt`" + ` uses ` + "`%s`" + ` for the topic.

Keep the placeholders when customising a prompt.
`
	return os.WriteFile(path, []byte(content), 0600)
}
