package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// SysConfig holds generic service settings
type SysConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

// WebConfig holds the operator HTTP API settings
type WebConfig struct {
	Host       string `yaml:"host" json:"host"`
	Port       int    `yaml:"port" json:"port"`
	JwtSecret  string `yaml:"jwt_secret" json:"jwt_secret"`
	SessionTTL int    `yaml:"session_ttl" json:"session_ttl"` // minutes
}

// OperatorConfig is one operator account allowed to open a console session
type OperatorConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// StorageConfig points at the object-storage upload endpoint
type StorageConfig struct {
	UploadURL    string `yaml:"upload_url" json:"upload_url"`
	UploadPreset string `yaml:"upload_preset" json:"upload_preset"`
	Timeout      int    `yaml:"timeout" json:"timeout"` // seconds
}

// DataAPIConfig points at the storefront data API
type DataAPIConfig struct {
	BaseURL string `yaml:"base_url" json:"base_url"`
	Token   string `yaml:"token" json:"token"`
	Timeout int    `yaml:"timeout" json:"timeout"` // seconds
}

type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type AppConfig struct {
	System    SysConfig        `yaml:"system" json:"system"`
	Web       WebConfig        `yaml:"web" json:"web"`
	Operators []OperatorConfig `yaml:"operators" json:"operators"`
	Storage   StorageConfig    `yaml:"storage" json:"storage"`
	DataAPI   DataAPIConfig    `yaml:"data_api" json:"data_api"`
	Logger    LogConfig        `yaml:"logger" json:"logger"`
}

func (c *AppConfig) SessionTTL() time.Duration {
	if c.Web.SessionTTL <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.Web.SessionTTL) * time.Minute
}

func (c *AppConfig) StorageTimeout() time.Duration {
	if c.Storage.Timeout <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.Storage.Timeout) * time.Second
}

func (c *AppConfig) DataAPITimeout() time.Duration {
	if c.DataAPI.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.DataAPI.Timeout) * time.Second
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "ImpressaConsole",
		Location: "Africa/Lagos",
		Workdir:  "/var/impressa-console",
	},
	Web: WebConfig{
		Host:       "0.0.0.0",
		Port:       1979,
		JwtSecret:  "9b6de5cc-0001-1203-xxtt-0f568ac9da37",
		SessionTTL: 30,
	},
	Operators: []OperatorConfig{
		{Username: "admin", Password: "impressa"},
	},
	Storage: StorageConfig{
		UploadURL:    "https://api.cloudinary.com/v1_1/dlyu92juc/image/upload",
		UploadPreset: "impressa",
		Timeout:      60,
	},
	DataAPI: DataAPIConfig{
		BaseURL: "http://127.0.0.1:5000/api/v1",
		Timeout: 30,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/impressa-console/console.log",
	},
}

// LoadConfig reads the yaml configuration file, falling back to defaults
// when the file does not exist. Secrets may be overridden by environment.
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
	setEnvValue("CONSOLE_WEB_JWT_SECRET", &cfg.Web.JwtSecret)
	setEnvValue("CONSOLE_DATA_API_TOKEN", &cfg.DataAPI.Token)
	setEnvValue("CONSOLE_UPLOAD_PRESET", &cfg.Storage.UploadPreset)
	return cfg
}

func setEnvValue(name string, val *string) {
	evalue := os.Getenv(name)
	if evalue != "" {
		*val = evalue
	}
}
