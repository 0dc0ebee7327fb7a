package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	HttpServerPort uint16 `env:"HTTP_SERVER_PORT" envDefault:"8085" validate:"min=1000,max=65535"`
	TcpServerPort  uint16 `env:"TCP_SERVER_PORT"  envDefault:"3002" validate:"min=1000,max=65535"`

	LobbyName string `env:"LOBBY_NAME" envDefault:"Lobby" validate:"required"`

	MaxMessageSize int64         `env:"MAX_MESSAGE_SIZE" envDefault:"4096" validate:"min=64"`
	WriteWait      time.Duration `env:"WRITE_WAIT"       envDefault:"10s"`
}

func LoadConfig() (*Config, error) {
	// Load environment variables from .env file
	err := godotenv.Load(".env")
	if err != nil {
		zap.L().Debug(".env file not found", zap.Error(err))
	}

	cfg := &Config{}
	// Parse config from environment variables
	if err = env.Parse(cfg); err != nil {
		zap.L().Error("config_load_failed", zap.Error(err))
		return nil, err
	}

	// Validate the config
	validate := validator.New()
	err = validate.Struct(cfg)
	if err != nil {
		zap.L().Error("config_validation_failed", zap.Error(err))
		return nil, err
	}
	return cfg, nil
}
