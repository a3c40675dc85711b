package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all process configuration. It is loaded once at startup and
// treated as immutable afterwards.
type Config struct {
	Env        string `env:"HALDOOR_ENV" env-default:"local"`
	HTTPServer HTTPServer
	DB         DB
	Auth       Auth
	Assets     Assets
	Admin      Admin
}

// HTTPServer configures the listener.
type HTTPServer struct {
	Port string `env:"HALDOOR_PORT" env-default:"8080"`
}

// DB configures the sqlite database.
type DB struct {
	Path string `env:"HALDOOR_DB_PATH" env-default:"./haldoor.db"`
}

// Auth configures credentials and token signing. The signing secret must
// come from the environment, never from source.
type Auth struct {
	JWTSecret  string `env:"HALDOOR_JWT_SECRET" env-required:"true"`
	BcryptCost int    `env:"HALDOOR_BCRYPT_COST" env-default:"10"`
}

// Assets configures the upload directory for property images.
type Assets struct {
	Dir string `env:"HALDOOR_UPLOAD_DIR" env-default:"./uploads"`
}

// Admin configures the bootstrap admin account created when the user table
// is empty.
type Admin struct {
	Name     string `env:"HALDOOR_ADMIN_NAME" env-default:"Administrator"`
	Email    string `env:"HALDOOR_ADMIN_EMAIL" env-default:"admin@haldoor.local"`
	Password string `env:"HALDOOR_ADMIN_PASSWORD" env-default:"changeme"`
}

// MustLoad reads configuration from the environment and panics if a
// required value is missing.
func MustLoad() *Config {
	cfg, err := load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

func load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
