package config

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

type MQConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	Secret string `yaml:"secret"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

// AIConfig configures the model completion endpoint (Groq/OpenAI compatible).
type AIConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	// Domain is used for generated Message-ID headers.
	Domain string `yaml:"domain"`
}

type WorkerConfig struct {
	// PoolSize bounds concurrent AI processing in batch operations.
	PoolSize int `yaml:"pool_size"`
	// LockTTLSeconds bounds how long a per-proposal processing lock is held.
	LockTTLSeconds int `yaml:"lock_ttl_seconds"`
	// MetricsPort is where the worker serves its prometheus endpoint.
	MetricsPort string `yaml:"metrics_port"`
}

type Config struct {
	DB     DBConfig     `yaml:"db"`
	MQ     MQConfig     `yaml:"mq"`
	Redis  RedisConfig  `yaml:"redis"`
	JWT    JWTConfig    `yaml:"jwt"`
	Server ServerConfig `yaml:"server"`
	AI     AIConfig     `yaml:"ai"`
	SMTP   SMTPConfig   `yaml:"smtp"`
	Worker WorkerConfig `yaml:"worker"`
}

func Load() *Config {
	f, err := os.Open("config.yaml")
	if err != nil {
		log.Fatalf("failed to open config.yaml: %v", err)
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		log.Fatalf("failed to decode config.yaml: %v", err)
	}

	OverrideFromEnv(&cfg)
	applyDefaults(&cfg)

	return &cfg
}

// OverrideFromEnv applies environment variable overrides on top of the YAML
// values. Used in production deployments; YAML carries local defaults.
func OverrideFromEnv(cfg *Config) {
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.DB.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.DB.Port = p
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.DB.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.DB.Password = password
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.DB.Name = name
	}

	if url := os.Getenv("MQ_URL"); url != "" {
		cfg.MQ.URL = url
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}

	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWT.Secret = secret
	}

	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Server.Port = port
	}

	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		cfg.AI.APIKey = key
	}
	if model := os.Getenv("GROQ_MODEL"); model != "" {
		cfg.AI.Model = model
	}
	if url := os.Getenv("AI_BASE_URL"); url != "" {
		cfg.AI.BaseURL = url
	}

	if host := os.Getenv("SMTP_HOST"); host != "" {
		cfg.SMTP.Host = host
	}
	if port := os.Getenv("SMTP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.SMTP.Port = p
		}
	}
	if user := os.Getenv("SMTP_USER"); user != "" {
		cfg.SMTP.User = user
	}
	if pass := os.Getenv("SMTP_PASS"); pass != "" {
		cfg.SMTP.Password = pass
	}
}

func applyDefaults(cfg *Config) {
	if cfg.AI.BaseURL == "" {
		cfg.AI.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "llama-3.1-8b-instant"
	}
	if cfg.AI.TimeoutSeconds == 0 {
		cfg.AI.TimeoutSeconds = 60
	}
	if cfg.Worker.PoolSize == 0 {
		cfg.Worker.PoolSize = 4
	}
	if cfg.Worker.LockTTLSeconds == 0 {
		cfg.Worker.LockTTLSeconds = 300
	}
	if cfg.Worker.MetricsPort == "" {
		cfg.Worker.MetricsPort = ":9091"
	}
	if cfg.SMTP.Domain == "" {
		cfg.SMTP.Domain = "rfpflow.local"
	}
}
