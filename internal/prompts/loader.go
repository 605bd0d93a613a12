// Package prompts provides a loader for externalized LLM prompt templates.
// Prompts are stored as JSON files and embedded at compile time.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// library holds every embedded prompt file, parsed once on first use.
var (
	library  map[string]map[string]string
	loadOnce sync.Once
	loadErr  error
)

func load() error {
	loadOnce.Do(func() {
		library = make(map[string]map[string]string)

		entries, err := promptFiles.ReadDir(".")
		if err != nil {
			loadErr = fmt.Errorf("failed to read embedded prompts: %w", err)
			return
		}

		for _, entry := range entries {
			data, err := promptFiles.ReadFile(entry.Name())
			if err != nil {
				loadErr = fmt.Errorf("failed to read prompt file %s: %w", entry.Name(), err)
				return
			}

			var prompts map[string]string
			if err := json.Unmarshal(data, &prompts); err != nil {
				loadErr = fmt.Errorf("failed to parse prompt file %s: %w", entry.Name(), err)
				return
			}
			library[entry.Name()] = prompts
		}
	})
	return loadErr
}

// Get retrieves a prompt by filename and key.
// The filename should not include the path (e.g., "capability.json").
// Returns an error if the file or key is not found.
func Get(filename, key string) (string, error) {
	if err := load(); err != nil {
		return "", err
	}

	prompts, exists := library[filename]
	if !exists {
		return "", fmt.Errorf("failed to read prompt file %s: not embedded", filename)
	}

	prompt, exists := prompts[key]
	if !exists {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}

	return prompt, nil
}

// MustGet retrieves a prompt by filename and key, panicking if not found.
// Use this for prompts that are required at initialization time.
func MustGet(filename, key string) string {
	prompt, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return prompt
}

// Format replaces template placeholders in the form {{.Key}} with values from data.
// This is a simple template system for prompt customization.
func Format(template string, data map[string]string) string {
	result := template
	for key, value := range data {
		placeholder := fmt.Sprintf("{{.%s}}", key)
		result = strings.ReplaceAll(result, placeholder, value)
	}
	return result
}
