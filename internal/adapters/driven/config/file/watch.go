package file

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/quill/internal/logger"
)

// Watch reloads the prompt cache whenever a prompt file in the directory
// is written, created, renamed or removed. It blocks until ctx is done.
// onChange, if non-nil, is called with the prompt name after each reload.
func (s *PromptStore) Watch(ctx context.Context, onChange func(name string)) error {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		return s.initErr
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create prompt watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.promptDir); err != nil {
		return fmt.Errorf("watch %s: %w", s.promptDir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name, isPrompt := promptName(event.Name)
			if !isPrompt || event.Op == fsnotify.Chmod {
				continue
			}
			s.Reload()
			logger.Debug("prompt %s changed (%s), cache cleared", name, event.Op)
			if onChange != nil {
				onChange(name)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("prompt watcher: %v", err)
		}
	}
}

// promptName returns the prompt name for a path inside the prompt directory.
func promptName(path string) (string, bool) {
	base := filepath.Base(path)
	if filepath.Ext(base) != promptExt {
		return "", false
	}
	return strings.TrimSuffix(base, promptExt), true
}
