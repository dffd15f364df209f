package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// loadPromptsFromFiles loads custom prompts from external files if file paths are specified
func (c *Config) loadPromptsFromFiles() error {
	log.Println("[CONFIG] Starting custom prompt loading from files")

	// Initialize loaded prompts exactly once
	loadedPromptsOnce.Do(func() {
		loadedPrompts = AllLoadedPrompts{}
	})

	// Load global prompts
	if err := c.loadSystemPromptsFromFiles(&c.AI.CustomPrompts.SystemPrompts, &loadedPrompts.Global.SystemPrompts); err != nil {
		return fmt.Errorf("failed to load global system prompts: %w", err)
	}
	if err := c.loadUserPromptsFromFiles(&c.AI.CustomPrompts.UserPrompts, &loadedPrompts.Global.UserPrompts); err != nil {
		return fmt.Errorf("failed to load global user prompts: %w", err)
	}

	// Load operation-specific prompts
	if err := c.loadSystemPromptsFromFiles(&c.AI.ParseResume.CustomPrompts.SystemPrompts, &loadedPrompts.ParseResume.SystemPrompts); err != nil {
		return fmt.Errorf("failed to load parseResume system prompts: %w", err)
	}
	if err := c.loadUserPromptsFromFiles(&c.AI.ParseResume.CustomPrompts.UserPrompts, &loadedPrompts.ParseResume.UserPrompts); err != nil {
		return fmt.Errorf("failed to load parseResume user prompts: %w", err)
	}

	if err := c.loadSystemPromptsFromFiles(&c.AI.ParseJob.CustomPrompts.SystemPrompts, &loadedPrompts.ParseJob.SystemPrompts); err != nil {
		return fmt.Errorf("failed to load parseJob system prompts: %w", err)
	}
	if err := c.loadUserPromptsFromFiles(&c.AI.ParseJob.CustomPrompts.UserPrompts, &loadedPrompts.ParseJob.UserPrompts); err != nil {
		return fmt.Errorf("failed to load parseJob user prompts: %w", err)
	}

	if err := c.loadSystemPromptsFromFiles(&c.AI.Summarize.CustomPrompts.SystemPrompts, &loadedPrompts.Summarize.SystemPrompts); err != nil {
		return fmt.Errorf("failed to load summarize system prompts: %w", err)
	}
	if err := c.loadUserPromptsFromFiles(&c.AI.Summarize.CustomPrompts.UserPrompts, &loadedPrompts.Summarize.UserPrompts); err != nil {
		return fmt.Errorf("failed to load summarize user prompts: %w", err)
	}

	c.logPromptLoadingSummary()

	return nil
}

// loadSystemPromptsFromFiles loads system prompts from files if file paths are specified
func (c *Config) loadSystemPromptsFromFiles(prompts *SystemPrompts, target *LoadedSystemPrompts) error {
	if prompts.ParseResumeFile != "" {
		content, err := c.loadPromptFromFile(prompts.ParseResumeFile, "system", "parseResume")
		if err != nil {
			return err
		}
		target.ParseResume = content
	}

	if prompts.ParseJobFile != "" {
		content, err := c.loadPromptFromFile(prompts.ParseJobFile, "system", "parseJob")
		if err != nil {
			return err
		}
		target.ParseJob = content
	}

	if prompts.SummarizeFile != "" {
		content, err := c.loadPromptFromFile(prompts.SummarizeFile, "system", "summarize")
		if err != nil {
			return err
		}
		target.Summarize = content
	}

	return nil
}

// loadUserPromptsFromFiles loads user prompts from files if file paths are specified
func (c *Config) loadUserPromptsFromFiles(prompts *UserPrompts, target *LoadedUserPrompts) error {
	if prompts.ParseResumeFile != "" {
		content, err := c.loadPromptFromFile(prompts.ParseResumeFile, "user", "parseResume")
		if err != nil {
			return err
		}
		target.ParseResume = content
	}

	if prompts.ParseJobFile != "" {
		content, err := c.loadPromptFromFile(prompts.ParseJobFile, "user", "parseJob")
		if err != nil {
			return err
		}
		target.ParseJob = content
	}

	if prompts.SummarizeFile != "" {
		content, err := c.loadPromptFromFile(prompts.SummarizeFile, "user", "summarize")
		if err != nil {
			return err
		}
		target.Summarize = content
	}

	return nil
}

// loadPromptFromFile loads a prompt from a file with proper error handling and logging
func (c *Config) loadPromptFromFile(filePath, promptType, operation string) (string, error) {
	// Resolve relative paths
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s %s prompt file '%s': %w", promptType, operation, filePath, err)
	}

	// Check if file exists
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("%s %s prompt file not found: %s", promptType, operation, absPath)
	}

	// Read file content
	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s %s prompt file '%s': %w", promptType, operation, absPath, err)
	}

	// Validate content is not empty
	trimmedContent := strings.TrimSpace(string(content))
	if trimmedContent == "" {
		return "", fmt.Errorf("%s %s prompt file '%s' is empty", promptType, operation, absPath)
	}

	log.Printf("[CONFIG] Successfully loaded %s %s prompt from file: %s (%d characters)",
		promptType, operation, absPath, len(trimmedContent))

	return trimmedContent, nil
}

// validatePromptFiles validates that prompt files exist and are readable before loading
func (c *Config) validatePromptFiles() error {
	var validationErrors []string

	// Helper function to validate a file path
	validateFile := func(filePath, promptType, operation string) {
		if filePath == "" {
			return // No file specified, skip validation
		}

		absPath, err := filepath.Abs(filePath)
		if err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("invalid path for %s %s prompt: %s", promptType, operation, filePath))
			return
		}

		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			validationErrors = append(validationErrors, fmt.Sprintf("%s %s prompt file not found: %s", promptType, operation, absPath))
		}
	}

	// Validate global prompt files
	validateFile(c.AI.CustomPrompts.SystemPrompts.ParseResumeFile, "system", "parseResume")
	validateFile(c.AI.CustomPrompts.SystemPrompts.ParseJobFile, "system", "parseJob")
	validateFile(c.AI.CustomPrompts.SystemPrompts.SummarizeFile, "system", "summarize")
	validateFile(c.AI.CustomPrompts.UserPrompts.ParseResumeFile, "user", "parseResume")
	validateFile(c.AI.CustomPrompts.UserPrompts.ParseJobFile, "user", "parseJob")
	validateFile(c.AI.CustomPrompts.UserPrompts.SummarizeFile, "user", "summarize")

	// Validate operation-specific prompt files
	validateFile(c.AI.ParseResume.CustomPrompts.SystemPrompts.ParseResumeFile, "parseResume system", "parseResume")
	validateFile(c.AI.ParseResume.CustomPrompts.UserPrompts.ParseResumeFile, "parseResume user", "parseResume")
	validateFile(c.AI.ParseJob.CustomPrompts.SystemPrompts.ParseJobFile, "parseJob system", "parseJob")
	validateFile(c.AI.ParseJob.CustomPrompts.UserPrompts.ParseJobFile, "parseJob user", "parseJob")
	validateFile(c.AI.Summarize.CustomPrompts.SystemPrompts.SummarizeFile, "summarize system", "summarize")
	validateFile(c.AI.Summarize.CustomPrompts.UserPrompts.SummarizeFile, "summarize user", "summarize")

	if len(validationErrors) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(validationErrors, "\n"))
	}

	return nil
}

// promptFilePaths collects every configured prompt file path, deduplicated.
func (c *Config) promptFilePaths() []string {
	seen := make(map[string]bool)
	var paths []string
	add := func(p string) {
		if p != "" && !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, sp := range []SystemPrompts{
		c.AI.CustomPrompts.SystemPrompts,
		c.AI.ParseResume.CustomPrompts.SystemPrompts,
		c.AI.ParseJob.CustomPrompts.SystemPrompts,
		c.AI.Summarize.CustomPrompts.SystemPrompts,
	} {
		add(sp.ParseResumeFile)
		add(sp.ParseJobFile)
		add(sp.SummarizeFile)
	}
	for _, up := range []UserPrompts{
		c.AI.CustomPrompts.UserPrompts,
		c.AI.ParseResume.CustomPrompts.UserPrompts,
		c.AI.ParseJob.CustomPrompts.UserPrompts,
		c.AI.Summarize.CustomPrompts.UserPrompts,
	} {
		add(up.ParseResumeFile)
		add(up.ParseJobFile)
		add(up.SummarizeFile)
	}

	return paths
}

// ReloadPrompts re-reads every configured prompt file. Called by the prompt
// watcher between sessions; an in-flight session keeps the prompts it started
// with.
func (c *Config) ReloadPrompts() error {
	if err := c.validatePromptFiles(); err != nil {
		return err
	}
	return c.loadPromptsFromFiles()
}

// logPromptLoadingSummary logs a summary of loaded prompts
func (c *Config) logPromptLoadingSummary() {
	promptCount := 0

	promptChecks := []struct {
		content string
		message string
	}{
		{loadedPrompts.Global.SystemPrompts.ParseResume, "[CONFIG] Global system parseResume prompt: loaded from config/file"},
		{loadedPrompts.Global.SystemPrompts.ParseJob, "[CONFIG] Global system parseJob prompt: loaded from config/file"},
		{loadedPrompts.Global.SystemPrompts.Summarize, "[CONFIG] Global system summarize prompt: loaded from config/file"},
		{loadedPrompts.Global.UserPrompts.ParseResume, "[CONFIG] Global user parseResume prompt: loaded from config/file"},
		{loadedPrompts.Global.UserPrompts.ParseJob, "[CONFIG] Global user parseJob prompt: loaded from config/file"},
		{loadedPrompts.Global.UserPrompts.Summarize, "[CONFIG] Global user summarize prompt: loaded from config/file"},
		{loadedPrompts.ParseResume.SystemPrompts.ParseResume, "[CONFIG] ParseResume-specific system prompt: loaded from config/file"},
		{loadedPrompts.ParseResume.UserPrompts.ParseResume, "[CONFIG] ParseResume-specific user prompt: loaded from config/file"},
		{loadedPrompts.ParseJob.SystemPrompts.ParseJob, "[CONFIG] ParseJob-specific system prompt: loaded from config/file"},
		{loadedPrompts.ParseJob.UserPrompts.ParseJob, "[CONFIG] ParseJob-specific user prompt: loaded from config/file"},
		{loadedPrompts.Summarize.SystemPrompts.Summarize, "[CONFIG] Summarize-specific system prompt: loaded from config/file"},
		{loadedPrompts.Summarize.UserPrompts.Summarize, "[CONFIG] Summarize-specific user prompt: loaded from config/file"},
	}

	for _, check := range promptChecks {
		if check.content != "" {
			log.Println(check.message)
			promptCount++
		}
	}

	if promptCount == 0 {
		log.Println("[CONFIG] No custom prompts loaded - using built-in defaults")
	} else {
		log.Printf("[CONFIG] Total custom prompts loaded: %d", promptCount)
	}
}
