package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Address string `yaml:"address"`
	} `yaml:"server"`
	Database struct {
		Driver string `yaml:"driver"`
		URL    string `yaml:"url"`
	} `yaml:"database"`
	Libelula struct {
		AppKey        string `yaml:"appkey"`
		BaseURL       string `yaml:"base_url"`
		PublicBaseURL string `yaml:"public_base_url"`
		Verify        string `yaml:"verify"` // push | pull
	} `yaml:"libelula"`
	Firebase struct {
		CredentialsFile string `yaml:"credentials_file"`
	} `yaml:"firebase"`
}

// LoadConfig reads the yaml file named by CONFIG_PATH (default
// config/config.yaml, optional) and then applies environment overrides, so
// deployments can run on env vars alone.
func LoadConfig() Config {
	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	explicit := path != ""
	if path == "" {
		path = "config/config.yaml"
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Failed to unmarshal config data: %v", err)
		}
	case explicit:
		log.Fatalf("Failed to read config file: %v", err)
	}

	overrideFromEnv(&cfg.Database.URL, "DATABASE_URL")
	overrideFromEnv(&cfg.Libelula.AppKey, "LIBELULA_APPKEY")
	overrideFromEnv(&cfg.Libelula.BaseURL, "LIBELULA_BASE_URL")
	overrideFromEnv(&cfg.Libelula.PublicBaseURL, "PUBLIC_BASE_URL")
	overrideFromEnv(&cfg.Libelula.Verify, "LIBELULA_VERIFY")
	overrideFromEnv(&cfg.Firebase.CredentialsFile, "FIREBASE_CREDENTIALS_FILE")
	return cfg
}

func overrideFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
