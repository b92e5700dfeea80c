package core

import (
	"fmt"
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "CAPLC"

type (
	Config struct {
		Env              string // dev (default), test, prod
		Build            string
		AppName          string
		Debug            bool
		TestMode         bool
		WorkDir          string
		SecretKey        string
		FrontendBaseURL  string
		DefaultFromEmail mail.Address
		SendgridApiKey   string
		RollbarToken     string
		Cities           []string
		Server           ServerConfig
		Database         DatabaseConfig
	}

	ServerConfig struct {
		Host                      string
		Address                   string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		DisableReqLogs            bool
		JWTExpirationDelta        time.Duration
		JWTBlacklistEnabled       bool
		PasswordResetTimeoutDelta time.Duration
		RateLimit                 int64 // requests per RateLimitPeriod and IP on sensitive endpoints
		RateLimitPeriod           time.Duration
	}

	DatabaseConfig struct {
		Engine   string // mongo | memory
		Host     string
		Port     string
		Name     string
		User     string
		Password string
		Timeout  time.Duration
	}
)

// URI returns the MongoDB connection string.
func (c DatabaseConfig) URI() string {
	var creds string
	if c.User != "" {
		creds = c.User + ":" + c.Password + "@"
	}
	return fmt.Sprintf("mongodb://%s%s:%s/?authSource=admin", creds, c.Host, c.Port)
}

// NewConfig loads the configuration from the environment (and config/.env.<env> if it exists).
func NewConfig() *Config {
	v := viper.New()

	env := strings.ToLower(os.Getenv(envPrefix + "_ENV"))
	if env == "" {
		env = "dev"
	}

	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("config.os.Getwd(): %v", err)
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+env)
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}

	v.SetTypeByDefaultValue(true)
	v.SetDefault("build", "develop")
	v.SetDefault("appName", "CAPLC")
	v.SetDefault("debug", env == "dev")
	v.SetDefault("secretKey", "my_precious_secret_key")
	v.SetDefault("frontendBaseUrl", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("cities", []string{"Paris", "Lyon", "Marseille", "Lille", "Bordeaux", "Nantes", "Toulouse", "Strasbourg"})

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":5000")
	v.SetDefault("server.debugHost", ":5001")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.disableReqLogs", false)
	v.SetDefault("server.jwtExpirationDelta", 48*time.Hour)
	v.SetDefault("server.jwtBlacklistEnabled", true)
	v.SetDefault("server.passwordResetTimeoutDelta", 72*time.Hour)
	v.SetDefault("server.rateLimit", 20)
	v.SetDefault("server.rateLimitPeriod", time.Minute)

	v.SetDefault("database.engine", "mongo")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "27017")
	v.SetDefault("database.name", "caplc")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.timeout", 10*time.Second)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	conf := &Config{
		Env:             env,
		Build:           v.GetString("build"),
		AppName:         v.GetString("appName"),
		Debug:           v.GetBool("debug"),
		TestMode:        env == "test",
		WorkDir:         wd,
		SecretKey:       v.GetString("secretKey"),
		FrontendBaseURL: strings.TrimSuffix(v.GetString("frontendBaseUrl"), "/"),
		SendgridApiKey:  v.GetString("sendgridApiKey"),
		RollbarToken:    v.GetString("rollbarToken"),
		Cities:          v.GetStringSlice("cities"),
		Server: ServerConfig{
			Host:                      v.GetString("server.host"),
			Address:                   v.GetString("server.address"),
			DebugHost:                 v.GetString("server.debugHost"),
			ShutdownTimeout:           v.GetDuration("server.shutdownTimeout"),
			DisableReqLogs:            v.GetBool("server.disableReqLogs"),
			JWTExpirationDelta:        v.GetDuration("server.jwtExpirationDelta"),
			JWTBlacklistEnabled:       v.GetBool("server.jwtBlacklistEnabled"),
			PasswordResetTimeoutDelta: v.GetDuration("server.passwordResetTimeoutDelta"),
			RateLimit:                 v.GetInt64("server.rateLimit"),
			RateLimitPeriod:           v.GetDuration("server.rateLimitPeriod"),
		},
		Database: DatabaseConfig{
			Engine:   v.GetString("database.engine"),
			Host:     v.GetString("database.host"),
			Port:     v.GetString("database.port"),
			Name:     v.GetString("database.name"),
			User:     v.GetString("database.user"),
			Password: v.GetString("database.password"),
			Timeout:  v.GetDuration("database.timeout"),
		},
	}

	if conf.TestMode {
		conf.Database.Name += "Test"
	}

	from, err := mail.ParseAddress(v.GetString("defaultFromEmail"))
	if err != nil {
		log.Fatalf("config.defaultFromEmail: %v", err)
	}
	conf.DefaultFromEmail = *from

	return conf
}

// NewTestConfig returns a Config suited for tests: in-memory storage, no request logs.
func NewTestConfig() *Config {
	conf := NewConfig()
	conf.Env = "test"
	conf.TestMode = true
	conf.Debug = false
	conf.Database.Engine = "memory"
	conf.Server.DisableReqLogs = true
	conf.Server.RateLimit = 1000
	return conf
}

// HasCity reports whether city is one of the configured cities.
func (c *Config) HasCity(city string) bool {
	for _, ct := range c.Cities {
		if ct == city {
			return true
		}
	}
	return false
}

// DefaultCity is the city assigned to users created from the command line.
func (c *Config) DefaultCity() string {
	if len(c.Cities) == 0 {
		return ""
	}
	return c.Cities[0]
}
