package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		AppName      string
		Build        string
		Env          string
		Debug        bool
		TestMode     bool
		WorkDir      string
		RollbarToken string

		Server ServerConfig
		Store  StoreConfig
		Marks  MarksConfig
		Client ClientConfig
	}

	ServerConfig struct {
		Host            string
		Address         string
		DebugHost       string
		ShutdownTimeout time.Duration
		DisableReqLogs  bool
		AllowOrigins    []string
	}

	StoreConfig struct {
		DataDir       string
		TeachersFile  string
		TeachersSheet string
		MarksFile     string
		MarksSheet    string
		WriteAttempts int
		RetryDelay    time.Duration
		Watch         bool
	}

	MarksConfig struct {
		PassThreshold     float64
		DefaultTotalMarks float64
	}

	ClientConfig struct {
		BaseURL        string
		SessionFile    string
		RequestTimeout time.Duration
		RefreshPolicy  string // keep | refetch
		LogFile        string
	}
)

// TeachersPath is the absolute location of the teachers workbook.
func (c StoreConfig) TeachersPath() string { return filepath.Join(c.DataDir, c.TeachersFile) }

// MarksPath is the absolute location of the marks workbook.
func (c StoreConfig) MarksPath() string { return filepath.Join(c.DataDir, c.MarksFile) }

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)
	v.SetDefault("appName", "Markbook")
	v.SetDefault("build", "develop")
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":3000")
	v.SetDefault("server.debugHost", "localhost:4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.disableReqLogs", false)
	v.SetDefault("server.allowOrigins", []string{"*"})

	v.SetDefault("store.dataDir", "data")
	v.SetDefault("store.teachersFile", "teachers.xlsx")
	v.SetDefault("store.teachersSheet", "Teachers")
	v.SetDefault("store.marksFile", "marks.xlsx")
	v.SetDefault("store.marksSheet", "Marks")
	v.SetDefault("store.writeAttempts", 3)
	v.SetDefault("store.retryDelay", time.Second)
	v.SetDefault("store.watch", true)

	v.SetDefault("marks.passThreshold", 0.35)
	v.SetDefault("marks.defaultTotalMarks", 100.0)

	v.SetDefault("client.baseURL", "http://localhost:3000/api")
	v.SetDefault("client.sessionFile", "")
	v.SetDefault("client.requestTimeout", 10*time.Second)
	v.SetDefault("client.refreshPolicy", "keep")
	v.SetDefault("client.logFile", "")
}

// NewConfig loads the configuration for the current ENV (DEV by default).
// Values come from defaults, then `config/.env.<env>` (if it exists), then the environment.
// Environment keys are prefixed by the ENV and use underscores for nesting, e.g. PROD_STORE_DATADIR.
func NewConfig() *Config {
	v := viper.New()
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	case "QA", "PROD":
		v.SetDefault("debug", false)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("config.os.Getwd(): %v", err)
	}

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

	conf := &Config{
		AppName:      v.GetString("appName"),
		Build:        v.GetString("build"),
		Env:          env,
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		WorkDir:      wd,
		RollbarToken: v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			Address:         v.GetString("server.address"),
			DebugHost:       v.GetString("server.debugHost"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
			DisableReqLogs:  v.GetBool("server.disableReqLogs"),
			AllowOrigins:    v.GetStringSlice("server.allowOrigins"),
		},
		Store: StoreConfig{
			DataDir:       v.GetString("store.dataDir"),
			TeachersFile:  v.GetString("store.teachersFile"),
			TeachersSheet: v.GetString("store.teachersSheet"),
			MarksFile:     v.GetString("store.marksFile"),
			MarksSheet:    v.GetString("store.marksSheet"),
			WriteAttempts: v.GetInt("store.writeAttempts"),
			RetryDelay:    v.GetDuration("store.retryDelay"),
			Watch:         v.GetBool("store.watch"),
		},
		Marks: MarksConfig{
			PassThreshold:     v.GetFloat64("marks.passThreshold"),
			DefaultTotalMarks: v.GetFloat64("marks.defaultTotalMarks"),
		},
		Client: ClientConfig{
			BaseURL:        v.GetString("client.baseURL"),
			SessionFile:    v.GetString("client.sessionFile"),
			RequestTimeout: v.GetDuration("client.requestTimeout"),
			RefreshPolicy:  v.GetString("client.refreshPolicy"),
			LogFile:        v.GetString("client.logFile"),
		},
	}
	if !filepath.IsAbs(conf.Store.DataDir) {
		conf.Store.DataDir = filepath.Join(wd, conf.Store.DataDir)
	}
	return conf
}
