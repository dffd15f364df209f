package config

// applyOperationDefaults applies global defaults to operation-specific configuration
func (c *Config) applyOperationDefaults(opCfg *OperationAIConfig) {
	if opCfg.Provider == "" {
		opCfg.Provider = c.AI.Provider
	}
	if opCfg.Model == "" {
		opCfg.Model = c.AI.Model
	}
	if opCfg.Timeout == nil {
		opCfg.Timeout = &c.AI.Timeout
	}
	if opCfg.APIKey == "" {
		opCfg.APIKey = c.AI.APIKey
	}
	if opCfg.MaxRetries == nil {
		opCfg.MaxRetries = &c.AI.MaxRetries
	}
	if opCfg.RetryBaseDelay == nil {
		opCfg.RetryBaseDelay = &c.AI.RetryBaseDelay
	}
	if opCfg.Temperature == nil {
		opCfg.Temperature = &c.AI.Temperature
	}
	// UseSystemPrompts: apply global default only if not explicitly set
	if opCfg.UseSystemPrompts == nil {
		opCfg.UseSystemPrompts = &c.AI.UseSystemPrompts
	}
}

// GetParseResumeConfig returns the AI configuration for resume parsing with fallback to global config
func (c *Config) GetParseResumeConfig() OperationAIConfig {
	config := c.AI.ParseResume

	// Apply common defaults
	c.applyOperationDefaults(&config)

	// Apply operation-specific prompt fallbacks
	if config.CustomPrompts.SystemPrompts.ParseResume == "" {
		config.CustomPrompts.SystemPrompts.ParseResume = c.AI.CustomPrompts.SystemPrompts.ParseResume
	}
	if config.CustomPrompts.UserPrompts.ParseResume == "" {
		config.CustomPrompts.UserPrompts.ParseResume = c.AI.CustomPrompts.UserPrompts.ParseResume
	}
	// Also copy file paths for potential later loading
	if config.CustomPrompts.SystemPrompts.ParseResumeFile == "" {
		config.CustomPrompts.SystemPrompts.ParseResumeFile = c.AI.CustomPrompts.SystemPrompts.ParseResumeFile
	}
	if config.CustomPrompts.UserPrompts.ParseResumeFile == "" {
		config.CustomPrompts.UserPrompts.ParseResumeFile = c.AI.CustomPrompts.UserPrompts.ParseResumeFile
	}

	return config
}

// GetParseJobConfig returns the AI configuration for job parsing with fallback to global config
func (c *Config) GetParseJobConfig() OperationAIConfig {
	config := c.AI.ParseJob

	// Apply common defaults
	c.applyOperationDefaults(&config)

	// Apply operation-specific prompt fallbacks
	if config.CustomPrompts.SystemPrompts.ParseJob == "" {
		config.CustomPrompts.SystemPrompts.ParseJob = c.AI.CustomPrompts.SystemPrompts.ParseJob
	}
	if config.CustomPrompts.UserPrompts.ParseJob == "" {
		config.CustomPrompts.UserPrompts.ParseJob = c.AI.CustomPrompts.UserPrompts.ParseJob
	}
	// Also copy file paths for potential later loading
	if config.CustomPrompts.SystemPrompts.ParseJobFile == "" {
		config.CustomPrompts.SystemPrompts.ParseJobFile = c.AI.CustomPrompts.SystemPrompts.ParseJobFile
	}
	if config.CustomPrompts.UserPrompts.ParseJobFile == "" {
		config.CustomPrompts.UserPrompts.ParseJobFile = c.AI.CustomPrompts.UserPrompts.ParseJobFile
	}

	return config
}

// GetSummarizeConfig returns the AI configuration for summary generation with fallback to global config
func (c *Config) GetSummarizeConfig() OperationAIConfig {
	config := c.AI.Summarize

	// Apply common defaults
	c.applyOperationDefaults(&config)

	// Apply operation-specific prompt fallbacks
	if config.CustomPrompts.SystemPrompts.Summarize == "" {
		config.CustomPrompts.SystemPrompts.Summarize = c.AI.CustomPrompts.SystemPrompts.Summarize
	}
	if config.CustomPrompts.UserPrompts.Summarize == "" {
		config.CustomPrompts.UserPrompts.Summarize = c.AI.CustomPrompts.UserPrompts.Summarize
	}
	// Also copy file paths for potential later loading
	if config.CustomPrompts.SystemPrompts.SummarizeFile == "" {
		config.CustomPrompts.SystemPrompts.SummarizeFile = c.AI.CustomPrompts.SystemPrompts.SummarizeFile
	}
	if config.CustomPrompts.UserPrompts.SummarizeFile == "" {
		config.CustomPrompts.UserPrompts.SummarizeFile = c.AI.CustomPrompts.UserPrompts.SummarizeFile
	}

	return config
}

// GetLoadedParseResumePrompts returns a copy of the loaded prompts for resume parsing
func (c *Config) GetLoadedParseResumePrompts() OperationLoadedPrompts {
	return loadedPrompts.ParseResume
}

// GetLoadedParseJobPrompts returns a copy of the loaded prompts for job parsing
func (c *Config) GetLoadedParseJobPrompts() OperationLoadedPrompts {
	return loadedPrompts.ParseJob
}

// GetLoadedSummarizePrompts returns a copy of the loaded prompts for summary generation
func (c *Config) GetLoadedSummarizePrompts() OperationLoadedPrompts {
	return loadedPrompts.Summarize
}

// GetLoadedGlobalPrompts returns a copy of the loaded global prompts
func (c *Config) GetLoadedGlobalPrompts() LoadedPrompts {
	return loadedPrompts.Global
}
