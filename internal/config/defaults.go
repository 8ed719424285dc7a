package config

// GetDefaults returns the default configuration values
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"content_dir":   ".",
		"include":       []string{"**/*.json"},
		"exclude":       []string{},
		"workers":       0,
		"tables_path":   "",
		"max_errors":    50,
		"strict":        false,
		"format":        "text",
		"state_dir":     "~/.packforge/state",
		"max_history":   500,
		"metrics_file":  "",
		"show_progress": true,
	}
}
