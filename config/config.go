package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig      `envPrefix:"VERIFY_APP_"`
	Server   ServerConfig   `envPrefix:"VERIFY_SERVER_"`
	Log      LogConfig      `envPrefix:"VERIFY_LOG_"`
	Database DatabaseConfig `envPrefix:"VERIFY_DATABASE_"`
	Mail     MailConfig     `envPrefix:"VERIFY_MAIL_"`
	OTP      OTPConfig      `envPrefix:"VERIFY_OTP_"`
}

type AppConfig struct {
	Name string `env:"NAME" envDefault:"verify"`
	URL  string `env:"URL" envDefault:"http://localhost:8080"`
}

type ServerConfig struct {
	Port string `env:"PORT" envDefault:"8080"`
	Host string `env:"HOST" envDefault:"localhost"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
	Output string `env:"OUTPUT" envDefault:"stdout"`
}

type DatabaseConfig struct {
	Driver      string `env:"DRIVER" envDefault:"sqlite"`
	DSN         string `env:"DSN" envDefault:"verify.db"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
}

type MailConfig struct {
	Host        string `env:"HOST"`
	Port        int    `env:"PORT" envDefault:"587"`
	Username    string `env:"USERNAME"`
	Password    string `env:"PASSWORD"`
	Encryption  string `env:"ENCRYPTION" envDefault:"starttls"`
	FromAddress string `env:"FROM_ADDRESS"`
	FromName    string `env:"FROM_NAME" envDefault:"OTP Service"`
	OTPSubject  string `env:"OTP_SUBJECT" envDefault:"Your verification code"`
}

type OTPConfig struct {
	DailyLimit      int           `env:"DAILY_LIMIT" envDefault:"5"`
	Lifetime        time.Duration `env:"LIFETIME" envDefault:"5m"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"1h"`
}

func LoadConfig(cfg any) error {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	return env.Parse(cfg)
}
