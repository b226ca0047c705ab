// Package config loads CLI configuration from config files, the
// environment and .env files.
package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

var AppFs = afero.NewOsFs()

// Config holds the CLI configuration.
type Config struct {
	SchemaPath  string
	DatabaseURL string
	ReplicaURL  string
	Provider    string
}

// Load reads configuration from .sqlbridge.yaml (working directory or
// home), the SQLBRIDGE_* environment and .env files.
func Load() (*Config, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, err
	}

	viper.SetConfigName(".sqlbridge")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath(home)
	viper.AddConfigPath(filepath.Join(home, ".config", "sqlbridge"))

	viper.SetEnvPrefix("SQLBRIDGE")
	viper.AutomaticEnv()

	viper.SetDefault("schema_path", "schema.json")
	viper.SetDefault("provider", "mysql")

	// Config file is optional.
	_ = viper.ReadInConfig()

	if _, err := AppFs.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
	if _, err := AppFs.Stat(".env.local"); err == nil {
		_ = godotenv.Overload(".env.local")
	}

	cfg := &Config{
		SchemaPath:  viper.GetString("schema_path"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		ReplicaURL:  os.Getenv("REPLICA_URL"),
		Provider:    viper.GetString("provider"),
	}
	return cfg, nil
}
