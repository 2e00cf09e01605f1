package config

import "github.com/caarlos0/env/v10"

// Config centralizeaza configuratia serviciului.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	GeminiAPIKey string `env:"GEMINI_API_KEY,required"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`

	LLMTimeoutSeconds     int `env:"LLM_TIMEOUT_SECONDS" envDefault:"120"`
	UploadPollSeconds     int `env:"UPLOAD_POLL_SECONDS" envDefault:"1"`
	UploadPollMaxAttempts int `env:"UPLOAD_POLL_MAX_ATTEMPTS" envDefault:"60"`

	TTSBaseURL  string `env:"TTS_BASE_URL" envDefault:"https://translate.google.com"`
	TTSLanguage string `env:"TTS_LANGUAGE" envDefault:"ro"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

// LoadConfig incarca configuratia din variabile de mediu.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
