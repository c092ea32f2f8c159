package config

import (
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

type SystemConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	// Datadir holds uploaded and file-referenced price lists. Filename imports
	// never resolve outside this directory.
	Datadir string `yaml:"datadir"`
	Debug   bool   `yaml:"debug"`
}

type WebConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	JwtSecret string `yaml:"jwt_secret"`
}

type DBConfig struct {
	Type     string `yaml:"type"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	MaxConn  int    `yaml:"max_conn"`
	IdleConn int    `yaml:"idle_conn"`
	Debug    bool   `yaml:"debug"`
}

type SmtpConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	Enabled  bool   `yaml:"enabled"`
}

type LoggerConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

type AppConfig struct {
	System   SystemConfig `yaml:"system"`
	Web      WebConfig    `yaml:"web"`
	Database DBConfig     `yaml:"database"`
	Smtp     SmtpConfig   `yaml:"smtp"`
	Logger   LoggerConfig `yaml:"logger"`
}

var DefaultAppConfig = &AppConfig{
	System: SystemConfig{
		Appid:    "procurement",
		Location: "UTC",
		Workdir:  "/var/procurement",
		Datadir:  "/var/procurement/data",
		Debug:    true,
	},
	Web: WebConfig{
		Host:      "0.0.0.0",
		Port:      8000,
		JwtSecret: "9b6d38c92wsecret",
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "procurement",
		User:     "postgres",
		Passwd:   "",
		MaxConn:  100,
		IdleConn: 10,
	},
	Smtp: SmtpConfig{
		Host: "localhost",
		Port: 25,
		From: "no-reply@procurement.local",
	},
	Logger: LoggerConfig{
		Mode:       "development",
		FileEnable: false,
		Filename:   "/var/procurement/procurement.log",
	},
}

func setEnvValue(name string, val *string) {
	if evalue, ok := os.LookupEnv(name); ok {
		*val = evalue
	}
}

func setEnvIntValue(name string, val *int) {
	if evalue, ok := os.LookupEnv(name); ok {
		if ivalue, err := strconv.Atoi(evalue); err == nil {
			*val = ivalue
		}
	}
}

func setEnvBoolValue(name string, val *bool) {
	if evalue, ok := os.LookupEnv(name); ok {
		*val = evalue == "true" || evalue == "1" || evalue == "on"
	}
}

// LoadConfig reads the YAML configuration file and applies environment
// variable overrides. A missing file yields the defaults.
func LoadConfig(cfile string) *AppConfig {
	cfg := DefaultAppConfig
	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			cfg = new(AppConfig)
			if err := yaml.Unmarshal(data, cfg); err != nil {
				panic(err)
			}
		}
	}

	setEnvValue("PROCUREMENT_SYSTEM_WORKDIR", &cfg.System.Workdir)
	setEnvValue("PROCUREMENT_SYSTEM_DATADIR", &cfg.System.Datadir)
	setEnvBoolValue("PROCUREMENT_SYSTEM_DEBUG", &cfg.System.Debug)

	setEnvValue("PROCUREMENT_WEB_HOST", &cfg.Web.Host)
	setEnvIntValue("PROCUREMENT_WEB_PORT", &cfg.Web.Port)
	setEnvValue("PROCUREMENT_WEB_JWT_SECRET", &cfg.Web.JwtSecret)

	setEnvValue("PROCUREMENT_DB_TYPE", &cfg.Database.Type)
	setEnvValue("PROCUREMENT_DB_HOST", &cfg.Database.Host)
	setEnvIntValue("PROCUREMENT_DB_PORT", &cfg.Database.Port)
	setEnvValue("PROCUREMENT_DB_NAME", &cfg.Database.Name)
	setEnvValue("PROCUREMENT_DB_USER", &cfg.Database.User)
	setEnvValue("PROCUREMENT_DB_PWD", &cfg.Database.Passwd)

	setEnvValue("PROCUREMENT_SMTP_HOST", &cfg.Smtp.Host)
	setEnvIntValue("PROCUREMENT_SMTP_PORT", &cfg.Smtp.Port)
	setEnvValue("PROCUREMENT_SMTP_USERNAME", &cfg.Smtp.Username)
	setEnvValue("PROCUREMENT_SMTP_PASSWORD", &cfg.Smtp.Password)
	setEnvValue("PROCUREMENT_SMTP_FROM", &cfg.Smtp.From)
	setEnvBoolValue("PROCUREMENT_SMTP_ENABLED", &cfg.Smtp.Enabled)

	if cfg.System.Datadir == "" {
		cfg.System.Datadir = filepath.Join(cfg.System.Workdir, "data")
	}

	return cfg
}
