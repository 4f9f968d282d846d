package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Config holds application configuration. All thresholds and budgets carry
// documented defaults; an absent or partial config file never fails startup.
type Config struct {
	// FillImmediate is the context fill ratio that demands an immediate handoff.
	FillImmediate float64 `json:"fill_immediate,omitempty"`

	// FillSoon is the fill ratio at which a handoff should happen soon.
	FillSoon float64 `json:"fill_soon,omitempty"`

	// FillPlanned is the fill ratio at which a handoff should be planned.
	FillPlanned float64 `json:"fill_planned,omitempty"`

	// MaxSessionMs is the session duration cap in milliseconds.
	MaxSessionMs int64 `json:"max_session_ms,omitempty"`

	// MaxConversationLength is the message-count cap before a planned handoff.
	MaxConversationLength int `json:"max_conversation_length,omitempty"`

	// DefaultMaxTokens is the context budget assumed when a usage sample does
	// not carry its own.
	DefaultMaxTokens int `json:"default_max_tokens,omitempty"`

	// SummaryMaxChars caps the synthesized conversation summary string.
	SummaryMaxChars int `json:"summary_max_chars,omitempty"`

	// MessageMaxChars caps each message before it joins the summary.
	MessageMaxChars int `json:"message_max_chars,omitempty"`

	// TopicMaxChars caps the current-topic string.
	TopicMaxChars int `json:"topic_max_chars,omitempty"`

	// RequestMaxChars caps the last-user-request string.
	RequestMaxChars int `json:"request_max_chars,omitempty"`

	// SummaryWindow is how many trailing messages feed the summary.
	SummaryWindow int `json:"summary_window,omitempty"`

	// ExtractWindow is how many trailing messages feed question/commitment
	// extraction.
	ExtractWindow int `json:"extract_window,omitempty"`

	// ThemeWindow is how many trailing messages feed theme matching.
	ThemeWindow int `json:"theme_window,omitempty"`

	// MemoryMaxReports bounds the in-memory store; oldest reports are evicted
	// once the cap is reached. Zero means the default cap, not unlimited.
	MemoryMaxReports int `json:"memory_max_reports,omitempty"`

	// SourceTimeoutMs is the per-provider timeout during aggregation.
	SourceTimeoutMs int64 `json:"source_timeout_ms,omitempty"`

	// ResetDelayMs is how long a completed handoff cycle lingers before the
	// session automatically returns to monitoring.
	ResetDelayMs int64 `json:"reset_delay_ms,omitempty"`

	// EnrichmentModel names the LLM used for optional prompt enrichment.
	// Empty disables enrichment; the template-only path is always available.
	EnrichmentModel string `json:"enrichment_model,omitempty"`

	// EnrichmentBaseURL overrides the OpenAI-compatible endpoint.
	EnrichmentBaseURL string `json:"enrichment_base_url,omitempty"`

	// EnrichmentTimeoutMs bounds each enrichment call. On expiry the
	// template-only prompt is used.
	EnrichmentTimeoutMs int64 `json:"enrichment_timeout_ms,omitempty"`

	// DBMaxOpenConns limits open database connections. Set to 1 to serialize
	// all access (reduces "database is locked" errors). 0 means sql.DB default.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits idle database connections. 0 means sql.DB default.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		FillImmediate:         0.95,
		FillSoon:              0.85,
		FillPlanned:           0.80,
		MaxSessionMs:          3_600_000,
		MaxConversationLength: 100,
		DefaultMaxTokens:      128_000,
		SummaryMaxChars:       2000,
		MessageMaxChars:       150,
		TopicMaxChars:         200,
		RequestMaxChars:       300,
		SummaryWindow:         10,
		ExtractWindow:         5,
		ThemeWindow:           20,
		MemoryMaxReports:      50,
		SourceTimeoutMs:       3000,
		ResetDelayMs:          5000,
		EnrichmentTimeoutMs:   30_000,
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.relay.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.relay) and repo
// (.relay) directories. Repo config is found by walking upward from startDir;
// it takes precedence for scalar values, arrays are merged and deduplicated.
// Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repoConfigPath := FindRepoConfig(startDir)
	repo, err := loadFileRaw(repoConfigPath)
	if err != nil {
		return nil, err
	}

	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest
// .relay/config.json. Returns the path if found, or empty string if not.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".relay", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and
// deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.FillImmediate = pickFloat(base.FillImmediate, overlay.FillImmediate)
	result.FillSoon = pickFloat(base.FillSoon, overlay.FillSoon)
	result.FillPlanned = pickFloat(base.FillPlanned, overlay.FillPlanned)
	result.MaxSessionMs = pickInt64(base.MaxSessionMs, overlay.MaxSessionMs)
	result.MaxConversationLength = pickInt(base.MaxConversationLength, overlay.MaxConversationLength)
	result.DefaultMaxTokens = pickInt(base.DefaultMaxTokens, overlay.DefaultMaxTokens)
	result.SummaryMaxChars = pickInt(base.SummaryMaxChars, overlay.SummaryMaxChars)
	result.MessageMaxChars = pickInt(base.MessageMaxChars, overlay.MessageMaxChars)
	result.TopicMaxChars = pickInt(base.TopicMaxChars, overlay.TopicMaxChars)
	result.RequestMaxChars = pickInt(base.RequestMaxChars, overlay.RequestMaxChars)
	result.SummaryWindow = pickInt(base.SummaryWindow, overlay.SummaryWindow)
	result.ExtractWindow = pickInt(base.ExtractWindow, overlay.ExtractWindow)
	result.ThemeWindow = pickInt(base.ThemeWindow, overlay.ThemeWindow)
	result.MemoryMaxReports = pickInt(base.MemoryMaxReports, overlay.MemoryMaxReports)
	result.SourceTimeoutMs = pickInt64(base.SourceTimeoutMs, overlay.SourceTimeoutMs)
	result.ResetDelayMs = pickInt64(base.ResetDelayMs, overlay.ResetDelayMs)
	result.EnrichmentModel = pickString(base.EnrichmentModel, overlay.EnrichmentModel)
	result.EnrichmentBaseURL = pickString(base.EnrichmentBaseURL, overlay.EnrichmentBaseURL)
	result.EnrichmentTimeoutMs = pickInt64(base.EnrichmentTimeoutMs, overlay.EnrichmentTimeoutMs)
	result.DBMaxOpenConns = pickInt(base.DBMaxOpenConns, overlay.DBMaxOpenConns)
	result.DBMaxIdleConns = pickInt(base.DBMaxIdleConns, overlay.DBMaxIdleConns)

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

func pickInt(base, overlay int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

func pickInt64(base, overlay int64) int64 {
	if overlay != 0 {
		return overlay
	}
	return base
}

func pickFloat(base, overlay float64) float64 {
	if overlay != 0 {
		return overlay
	}
	return base
}

func pickString(base, overlay string) string {
	if overlay != "" {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes
// duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
