package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host                      string
		Address                   string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		DisableRequestLogs        bool
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine     string // sqlite3 | postgres
		Path       string // sqlite3 only
		Host       string
		Port       string
		Name       string
		User       string
		Password   string
		DisableTLS bool
	}

	AuthConfig struct {
		OTPLength            int
		OTPTimeoutDelta      time.Duration
		DefaultAdminUsername string
		DefaultAdminPassword string
	}

	Config struct {
		Env            string // DEV (local; default), TEST, QA, PROD
		Build          string
		Debug          bool
		TestMode       bool
		AppName        string
		SecretKey      string
		WorkDir        string
		FromEmailName  string
		FromEmail      string
		SendgridApiKey string
		RollbarToken   string
		BucketWidth    int

		Server   ServerConfig
		Database DatabaseConfig
		Auth     AuthConfig
	}
)

func (conf *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: conf.FromEmailName, Address: conf.FromEmail}
}

func (dbc DatabaseConfig) Address() string {
	return net.JoinHostPort(dbc.Host, dbc.Port)
}

// NewConfig loads the configuration from the environment.
// Variables are read with the ENV prefix (e.g. DEV_DATABASE_ENGINE) and may be provided in config/.env.<env>.
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	wd := Getwd()

	// defaults
	v.SetDefault("build", "develop")
	v.SetDefault("debug", env == "DEV" || env == "TEST")
	v.SetDefault("appName", "Student Results")
	v.SetDefault("secretKey", "p9#x-2rq$kz4!w)bm7l&c0^e8h+uvy=n5s(f3tg1ad*oj6")
	v.SetDefault("fromEmailName", "Student Results")
	v.SetDefault("fromEmail", "noreply@localhost")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("bucketWidth", 10)

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.disableRequestLogs", false)
	v.SetDefault("server.jwtExpirationDelta", 4*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 7*24*time.Hour)

	v.SetDefault("database.engine", "sqlite3")
	v.SetDefault("database.path", filepath.Join(wd, "data", "results.sqlite"))
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "results")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("auth.otpLength", 6)
	v.SetDefault("auth.otpTimeoutDelta", 5*time.Minute)
	v.SetDefault("auth.defaultAdminUsername", "admin")
	v.SetDefault("auth.defaultAdminPassword", "admin123")

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Env:            env,
		Build:          v.GetString("build"),
		Debug:          v.GetBool("debug"),
		TestMode:       env == "TEST",
		AppName:        v.GetString("appName"),
		SecretKey:      v.GetString("secretKey"),
		WorkDir:        wd,
		FromEmailName:  v.GetString("fromEmailName"),
		FromEmail:      v.GetString("fromEmail"),
		SendgridApiKey: v.GetString("sendgridApiKey"),
		RollbarToken:   v.GetString("rollbarToken"),
		BucketWidth:    v.GetInt("bucketWidth"),
		Server: ServerConfig{
			Host:                      v.GetString("server.host"),
			Address:                   v.GetString("server.address"),
			DebugHost:                 v.GetString("server.debugHost"),
			ShutdownTimeout:           v.GetDuration("server.shutdownTimeout"),
			DisableRequestLogs:        v.GetBool("server.disableRequestLogs"),
			JWTExpirationDelta:        v.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("server.jwtRefreshExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:     v.GetString("database.engine"),
			Path:       v.GetString("database.path"),
			Host:       v.GetString("database.host"),
			Port:       v.GetString("database.port"),
			Name:       v.GetString("database.name"),
			User:       v.GetString("database.user"),
			Password:   v.GetString("database.password"),
			DisableTLS: v.GetBool("database.disableTLS"),
		},
		Auth: AuthConfig{
			OTPLength:            v.GetInt("auth.otpLength"),
			OTPTimeoutDelta:      v.GetDuration("auth.otpTimeoutDelta"),
			DefaultAdminUsername: v.GetString("auth.defaultAdminUsername"),
			DefaultAdminPassword: v.GetString("auth.defaultAdminPassword"),
		},
	}
}
