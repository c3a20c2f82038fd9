package config

// DefaultConfig returns the built-in configuration used when no config
// file overrides it.
func DefaultConfig() *Config {
	return &Config{
		InputDir: "",
		Toc: TocConfig{
			Title:         "Table of Contents",
			LinesPerPage:  28,
			Indent:        20,
			LineHeight:    22,
			PageSize:      "A4",
			FontFamily:    "Helvetica",
			TitleFontSize: 20,
			EntryFontSize: 13,
			SubFontSize:   11,
		},
		Backend: BackendConfig{
			MaxRetries:       2,
			PageCountWorkers: 8,
		},
	}
}
