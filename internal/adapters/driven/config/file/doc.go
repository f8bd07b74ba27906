// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under the quill data directory (~/.quill).
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: user-editable prompt templates, optionally watched for edits
package file
