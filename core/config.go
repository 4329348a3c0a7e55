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
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	// GenerationConfig holds the output budgets of every model call site.
	GenerationConfig struct {
		Language          string // language generated content is written in
		LessonMaxTokens   int
		QuizMaxTokens     int
		FeedbackMaxTokens int
		SimplifyMaxTokens int
		TestMaxTokens     int
	}

	FilesConfig struct {
		Backend       string // local | gcs
		LocalDir      string
		Bucket        string
		PublicBaseURL string
		MaxUploadSize int64
	}

	Config struct {
		AppName          string
		Env              string // DEV (local; default), TEST, QA, PROD
		Debug            bool
		TestMode         bool
		Build            string
		WorkDir          string
		SecretKey        string
		FrontendBaseURL  string
		DefaultFromEmail mail.Address
		RollbarToken     string
		SendgridApiKey   string

		Server     ServerConfig
		Database   DatabaseConfig
		Generation GenerationConfig
		Files      FilesConfig
	}
)

func (db DatabaseConfig) Address() string {
	return net.JoinHostPort(db.Host, db.Port)
}

func setDefaults(conf *viper.Viper) {
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Darslik")
	conf.SetDefault("build", "dev")
	conf.SetDefault("secretKey", "k7$w1z+q2(b8@darslik)n#4c!e9s&m0h^fv6j-ru3%yp5t")
	conf.SetDefault("frontendBaseURL", "http://localhost:3000")
	conf.SetDefault("defaultFromEmail", "Darslik <noreply@localhost>")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("sendgridApiKey", "")

	conf.SetDefault("serverHost", "localhost")
	conf.SetDefault("serverAddress", ":8000")
	conf.SetDefault("serverDebugHost", ":4000")
	conf.SetDefault("serverShutdownTimeout", 10*time.Second)
	conf.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)

	conf.SetDefault("dbEngine", "postgres")
	conf.SetDefault("dbHost", "localhost")
	conf.SetDefault("dbPort", "5432")
	conf.SetDefault("dbName", "darslik")
	conf.SetDefault("dbUser", "darslik")
	conf.SetDefault("dbPassword", "darslik")
	conf.SetDefault("dbAdminUser", "postgres")
	conf.SetDefault("dbAdminPassword", "postgres")
	conf.SetDefault("dbDisableTLS", true)

	conf.SetDefault("genLanguage", "Uzbek")
	conf.SetDefault("genLessonMaxTokens", 4000)
	conf.SetDefault("genQuizMaxTokens", 3000)
	conf.SetDefault("genFeedbackMaxTokens", 1000)
	conf.SetDefault("genSimplifyMaxTokens", 3000)
	conf.SetDefault("genTestMaxTokens", 50)

	conf.SetDefault("filesBackend", "local")
	conf.SetDefault("filesLocalDir", "uploads")
	conf.SetDefault("filesBucket", "")
	conf.SetDefault("filesPublicBaseURL", "http://localhost:8000/uploads")
	conf.SetDefault("filesMaxUploadSize", int64(20<<20))
}

// NewConfig loads the app configuration from defaults, the optional `config/.env.<env>` file and the environment.
func NewConfig() *Config {
	conf := viper.New()
	setDefaults(conf)

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	wd := Getwd()
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	from, err := mail.ParseAddress(conf.GetString("defaultFromEmail"))
	if err != nil {
		log.Fatalf("config.defaultFromEmail: %v", err)
	}

	return &Config{
		AppName:          conf.GetString("appName"),
		Env:              env,
		Debug:            conf.GetBool("debug"),
		TestMode:         conf.GetBool("testMode"),
		Build:            conf.GetString("build"),
		WorkDir:          wd,
		SecretKey:        conf.GetString("secretKey"),
		FrontendBaseURL:  conf.GetString("frontendBaseURL"),
		DefaultFromEmail: *from,
		RollbarToken:     conf.GetString("rollbarToken"),
		SendgridApiKey:   conf.GetString("sendgridApiKey"),
		Server: ServerConfig{
			Host:                      conf.GetString("serverHost"),
			Address:                   conf.GetString("serverAddress"),
			DebugHost:                 conf.GetString("serverDebugHost"),
			ShutdownTimeout:           conf.GetDuration("serverShutdownTimeout"),
			JWTExpirationDelta:        conf.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: conf.GetDuration("jwtRefreshExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        conf.GetString("dbEngine"),
			Host:          conf.GetString("dbHost"),
			Port:          conf.GetString("dbPort"),
			Name:          conf.GetString("dbName"),
			User:          conf.GetString("dbUser"),
			Password:      conf.GetString("dbPassword"),
			AdminUser:     conf.GetString("dbAdminUser"),
			AdminPassword: conf.GetString("dbAdminPassword"),
			DisableTLS:    conf.GetBool("dbDisableTLS"),
		},
		Generation: GenerationConfig{
			Language:          conf.GetString("genLanguage"),
			LessonMaxTokens:   conf.GetInt("genLessonMaxTokens"),
			QuizMaxTokens:     conf.GetInt("genQuizMaxTokens"),
			FeedbackMaxTokens: conf.GetInt("genFeedbackMaxTokens"),
			SimplifyMaxTokens: conf.GetInt("genSimplifyMaxTokens"),
			TestMaxTokens:     conf.GetInt("genTestMaxTokens"),
		},
		Files: FilesConfig{
			Backend:       conf.GetString("filesBackend"),
			LocalDir:      conf.GetString("filesLocalDir"),
			Bucket:        conf.GetString("filesBucket"),
			PublicBaseURL: conf.GetString("filesPublicBaseURL"),
			MaxUploadSize: conf.GetInt64("filesMaxUploadSize"),
		},
	}
}

// NewTestConfig returns the configuration used by tests: no .env lookup, no external services.
func NewTestConfig() *Config {
	conf := viper.New()
	setDefaults(conf)
	from, _ := mail.ParseAddress(conf.GetString("defaultFromEmail"))
	return &Config{
		AppName:          conf.GetString("appName"),
		Env:              "TEST",
		TestMode:         true,
		Build:            "test",
		SecretKey:        conf.GetString("secretKey"),
		FrontendBaseURL:  conf.GetString("frontendBaseURL"),
		DefaultFromEmail: *from,
		Server: ServerConfig{
			Host:                      conf.GetString("serverHost"),
			ShutdownTimeout:           conf.GetDuration("serverShutdownTimeout"),
			JWTExpirationDelta:        conf.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: conf.GetDuration("jwtRefreshExpirationDelta"),
		},
		Generation: GenerationConfig{
			Language:          conf.GetString("genLanguage"),
			LessonMaxTokens:   conf.GetInt("genLessonMaxTokens"),
			QuizMaxTokens:     conf.GetInt("genQuizMaxTokens"),
			FeedbackMaxTokens: conf.GetInt("genFeedbackMaxTokens"),
			SimplifyMaxTokens: conf.GetInt("genSimplifyMaxTokens"),
			TestMaxTokens:     conf.GetInt("genTestMaxTokens"),
		},
		Files: FilesConfig{
			Backend:       "local",
			PublicBaseURL: conf.GetString("filesPublicBaseURL"),
			MaxUploadSize: conf.GetInt64("filesMaxUploadSize"),
		},
	}
}
