// Package file provides file-based implementations of driven port interfaces.
// These adapters read from the local filesystem.
//
// Adapters:
//   - PromptStore: user-editable LLM prompts with embedded defaults
//   - PromptWatcher: reloads the PromptStore when prompt files change
//   - Seed loader: TOML store seeds and the embedded sample store
package file
