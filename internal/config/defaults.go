package config

// Default configuration values.
const (
	DefaultReportsOutputDir   = "build/reports"
	DefaultTestResultsPath    = "reports/junit.xml"
	DefaultCoveragePath       = "coverage/lcov.info"
	DefaultConcurrency        = 1
	DefaultRegistryRepository = "https://registry.npmjs.org"
)

// Default returns a configuration with every default applied, used when
// no config file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults fills in default values for unset configuration fields.
func applyDefaults(cfg *Config) {
	applyLayoutDefaults(cfg)
	applyReportsDefaults(cfg)
	applyRunDefaults(cfg)
}

func applyLayoutDefaults(cfg *Config) {
	if cfg.Layout == nil {
		cfg.Layout = &LayoutConfig{}
	}
	if cfg.Layout.WebRoot == "" {
		cfg.Layout.WebRoot = "react"
	}
	if cfg.Layout.FunctionsRoot == "" {
		cfg.Layout.FunctionsRoot = "src/lambda"
	}
	if cfg.Layout.Marker == "" {
		cfg.Layout.Marker = "package.json"
	}
}

func applyReportsDefaults(cfg *Config) {
	if cfg.Reports == nil {
		cfg.Reports = &ReportsConfig{}
	}
	if cfg.Reports.OutputDir == "" {
		cfg.Reports.OutputDir = DefaultReportsOutputDir
	}
	if cfg.Reports.TestResults == "" {
		cfg.Reports.TestResults = DefaultTestResultsPath
	}
	if cfg.Reports.Coverage == "" {
		cfg.Reports.Coverage = DefaultCoveragePath
	}
}

func applyRunDefaults(cfg *Config) {
	if cfg.Concurrency == 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if len(cfg.Repositories) == 0 {
		cfg.Repositories = []string{DefaultRegistryRepository}
	}
}
