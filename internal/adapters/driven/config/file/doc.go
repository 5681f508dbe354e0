// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem under ~/.ragkit.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: user-editable prompt templates with embedded defaults
//   - RuleSource: compliance rules from JSON or YAML
//   - LoadEnv: .env files for API keys
package file
