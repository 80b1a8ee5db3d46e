package config

import (
    "log"

    "github.com/spf13/viper"
)

type Config struct {
    DBUrl    string `mapstructure:"DB_URL"`
    HTTPAddr string `mapstructure:"HTTP_ADDR"`

    SMTPHost     string `mapstructure:"SMTP_HOST"`
    SMTPPort     int    `mapstructure:"SMTP_PORT"`
    SMTPUsername string `mapstructure:"SMTP_USERNAME"`
    SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
    SMTPFrom     string `mapstructure:"SMTP_FROM"`
    SMTPFromName string `mapstructure:"SMTP_FROM_NAME"`
    SMTPTLS      bool   `mapstructure:"SMTP_TLS"`

    ResetCodeTTLMinutes int `mapstructure:"RESET_CODE_TTL_MINUTES"`
    PasswordMinLength   int `mapstructure:"PASSWORD_MIN_LENGTH"`
}

func LoadConfig() Config {
    viper.SetConfigFile(".env")
    viper.AutomaticEnv()

    viper.SetDefault("HTTP_ADDR", ":8080")
    viper.SetDefault("SMTP_PORT", 587)
    viper.SetDefault("SMTP_TLS", true)
    viper.SetDefault("RESET_CODE_TTL_MINUTES", 10)
    viper.SetDefault("PASSWORD_MIN_LENGTH", 3)

    if err := viper.ReadInConfig(); err != nil {
        log.Println("No .env file found, using env variables only")
    }

    var c Config
    if err := viper.Unmarshal(&c); err != nil {
        log.Fatal("config unmarshal error:", err)
    }

    return c
}
