package config

import (
	"log"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port    string `yaml:"port"`
	Backend string `yaml:"backend"` // sqlite | memory
	DBDSN   string `yaml:"db_dsn"`
	LogFile string `yaml:"log_file"`
	Seed    bool   `yaml:"seed"`
}

// Load resolves configuration in order: defaults, optional YAML file,
// environment variables, command-line flags.
func Load(args []string) Config {
	cfg := Config{
		Port:    "8080",
		Backend: "sqlite",
		DBDSN:   "warungpos.db",
		LogFile: "./warungpos.log",
		Seed:    true,
	}

	fs := pflag.NewFlagSet("warungpos", pflag.ExitOnError)
	file := fs.String("config", os.Getenv("CONFIG_FILE"), "path to YAML config file")
	port := fs.String("port", "", "listen port")
	backend := fs.String("backend", "", "store backend: sqlite or memory")
	dsn := fs.String("db", "", "sqlite DSN")
	logFile := fs.String("log-file", "", "log sink path (empty disables file logging)")
	seed := fs.Bool("seed", cfg.Seed, "seed demo data on start")
	_ = fs.Parse(args)

	if *file != "" {
		if b, err := os.ReadFile(*file); err != nil {
			log.Printf("[config] could not read %s: %v", *file, err)
		} else if err := yaml.Unmarshal(b, &cfg); err != nil {
			log.Printf("[config] could not parse %s: %v", *file, err)
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("STORE_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		cfg.DBDSN = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.LogFile = v
	}

	if *port != "" {
		cfg.Port = *port
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *dsn != "" {
		cfg.DBDSN = *dsn
	}
	if fs.Changed("log-file") {
		cfg.LogFile = *logFile
	}
	if fs.Changed("seed") {
		cfg.Seed = *seed
	}

	log.Printf("[config] PORT=%s BACKEND=%s DB_DSN=%s LOG_FILE=%s SEED=%v",
		cfg.Port, cfg.Backend, cfg.DBDSN, cfg.LogFile, cfg.Seed)
	return cfg
}
