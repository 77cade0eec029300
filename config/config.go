package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every tunable the server reads from the environment.
// It is built once in main and injected into the services that need it.
type Config struct {
	Port      string
	ChromaURL string

	GeminiAPIKey string
	LLMModel     string

	OllamaURL      string
	EmbeddingModel string

	UnidocLicenseKey string

	ChunkSize    int
	ChunkOverlap int
	DefaultTopK  int

	// MatchThreshold is the minimum similarity score for a stored project to
	// count as a match in the pitch workflow.
	MatchThreshold float64

	// HistoryWindow bounds how many past turns are injected into prompts.
	HistoryWindow      int
	MaxSessionsPerSite int

	DefaultCollection  string
	ProjectsCollection string

	// WatchDir, when set, enables the local file indexer. Indexed chunks go
	// into WatchCollection.
	WatchDir        string
	WatchCollection string

	RequestTimeout time.Duration
}

// Load reads the .env file (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		ChromaURL:          getEnv("CHROMA_URL", "http://localhost:8000"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		LLMModel:           getEnv("LLM_MODEL", "gemini-2.5-flash"),
		OllamaURL:          getEnv("OLLAMA_URL", "http://localhost:11434"),
		EmbeddingModel:     getEnv("EMBEDDING_MODEL", "nomic-embed-text:v1.5"),
		UnidocLicenseKey:   os.Getenv("UNIDOC_LICENSE_KEY"),
		DefaultCollection:  getEnv("DEFAULT_COLLECTION", "daruka_documents"),
		ProjectsCollection: getEnv("PROJECTS_COLLECTION", "daruka_projects"),
		WatchDir:           os.Getenv("WATCH_DIR"),
		WatchCollection:    getEnv("WATCH_COLLECTION", "daruka_documents"),
	}

	var err error
	if cfg.ChunkSize, err = getEnvInt("CHUNK_SIZE", 800); err != nil {
		return nil, err
	}
	if cfg.ChunkOverlap, err = getEnvInt("CHUNK_OVERLAP", 150); err != nil {
		return nil, err
	}
	if cfg.DefaultTopK, err = getEnvInt("TOP_K", 5); err != nil {
		return nil, err
	}
	if cfg.MatchThreshold, err = getEnvFloat("MATCH_THRESHOLD", 0.6); err != nil {
		return nil, err
	}
	if cfg.HistoryWindow, err = getEnvInt("HISTORY_WINDOW", 6); err != nil {
		return nil, err
	}
	if cfg.MaxSessionsPerSite, err = getEnvInt("MAX_SESSIONS_PER_SITE", 100); err != nil {
		return nil, err
	}
	timeoutSecs, err := getEnvInt("REQUEST_TIMEOUT_SECONDS", 30)
	if err != nil {
		return nil, err
	}
	cfg.RequestTimeout = time.Duration(timeoutSecs) * time.Second

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP must be in [0, CHUNK_SIZE), got %d", c.ChunkOverlap)
	}
	if c.DefaultTopK <= 0 {
		return fmt.Errorf("TOP_K must be positive, got %d", c.DefaultTopK)
	}
	if c.MatchThreshold < 0 || c.MatchThreshold > 1 {
		return fmt.Errorf("MATCH_THRESHOLD must be in [0,1], got %g", c.MatchThreshold)
	}
	if c.HistoryWindow < 0 {
		return fmt.Errorf("HISTORY_WINDOW must not be negative, got %d", c.HistoryWindow)
	}
	if c.MaxSessionsPerSite <= 0 {
		return fmt.Errorf("MAX_SESSIONS_PER_SITE must be positive, got %d", c.MaxSessionsPerSite)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT_SECONDS must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", key, v)
	}
	return f, nil
}
