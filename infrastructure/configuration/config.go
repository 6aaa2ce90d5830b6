package configuration

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"benchly/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	App         App         `json:"app"`
	Database    Database    `json:"database"`
	RedisClient RedisClient `json:"redisClient"`
	YouTube     YouTube     `json:"youtube"`
	Cache       Cache       `json:"cache"`
	Upstream    Upstream    `json:"upstream"`
	RateLimit   RateLimit   `json:"rateLimit"`
	LLM         LLM         `json:"llm"`
}

type App struct {
	Port           int      `json:"port"`
	SecretKey      string   `json:"secretKey"`
	TLSEnabled     bool     `json:"tlsEnabled"`
	TLSCertFile    string   `json:"tlsCertFile"`
	TLSKeyFile     string   `json:"tlsKeyFile"`
	AllowedOrigins []string `json:"allowedOrigins"`
	TokenTTLHours  int      `json:"tokenTTLHours"`
}

type Database struct {
	Psql  Db `json:"psql"`
	MySql Db `json:"mysql"`
	Mssql Db `json:"mssql"`
	Mongo Db `json:"mongo"`
	// ProjectStore is "mysql" or "mongo".
	ProjectStore string `json:"projectStore"`
}

type Db struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
}

type RedisClient struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Password string `json:"password"`
	Username string `json:"username"`
	DB       int    `json:"db"`
}

type YouTube struct {
	APIKey       string `json:"apiKey"`
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	RedirectURI  string `json:"redirectURI"`
}

// Cache selects the search result store: memory, redis, postgres or mssql.
type Cache struct {
	Driver     string `json:"driver"`
	TTLMinutes int    `json:"ttlMinutes"`
	MaxEntries int    `json:"maxEntries"`
	KeyPrefix  string `json:"keyPrefix"`
}

type Upstream struct {
	TimeoutSeconds int `json:"timeoutSeconds"`
}

type RateLimit struct {
	PerMinute int `json:"perMinute"`
	Burst     int `json:"burst"`
}

type LLM struct {
	APIBase        string  `json:"apiBase"`
	APIKey         string  `json:"apiKey"`
	FlashModel     string  `json:"flashModel"`
	ProModel       string  `json:"proModel"`
	Temperature    float64 `json:"temperature"`
	MaxTokens      int     `json:"maxTokens"`
	TimeoutSeconds int     `json:"timeoutSeconds"`
}

func (c Cache) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

func (u Upstream) Timeout() time.Duration {
	return time.Duration(u.TimeoutSeconds) * time.Second
}

func (l LLM) Timeout() time.Duration {
	return time.Duration(l.TimeoutSeconds) * time.Second
}

var C Config

func init() {
	Reload()
}

// Reload rereads the config file and the environment into C. Call it after
// loading env files so their values take effect.
func Reload() {
	C = Config{}
	LoadConfig()
	initDatabase(&C)
	initApp(&C)
	initDiscovery(&C)
	initLLM(&C)
}

func LoadConfig() {
	name := getConfig()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().Warn("Config file not found")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	logger.GetLogger().WithField("config", name).Info("Config set up successfully")
	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
	}
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func initDatabase(C *Config) {
	C.Database.Psql.Name = getConfigValue(C.Database.Psql.Name, "DB_NAME", "benchly")
	C.Database.Psql.Host = getConfigValue(C.Database.Psql.Host, "DB_HOST", "localhost")
	C.Database.Psql.Port = getConfigValue(C.Database.Psql.Port, "DB_PORT", "5432")
	C.Database.Psql.User = getConfigValue(C.Database.Psql.User, "DB_USER", "postgres")
	C.Database.Psql.Password = getConfigValue(C.Database.Psql.Password, "DB_PASSWORD", "")

	C.Database.MySql.Name = getConfigValue(C.Database.MySql.Name, "MYSQL_DB_NAME", "benchly")
	C.Database.MySql.Host = getConfigValue(C.Database.MySql.Host, "MYSQL_HOST", "localhost")
	C.Database.MySql.Port = getConfigValue(C.Database.MySql.Port, "MYSQL_PORT", "3306")
	C.Database.MySql.User = getConfigValue(C.Database.MySql.User, "MYSQL_USER", "root")
	C.Database.MySql.Password = getConfigValue(C.Database.MySql.Password, "MYSQL_PASSWORD", "")

	C.Database.Mongo.Name = getConfigValue(C.Database.Mongo.Name, "MONGO_DB_NAME", "benchly")
	C.Database.Mongo.Host = getConfigValue(C.Database.Mongo.Host, "MONGO_HOST", "localhost")
	C.Database.Mongo.Port = getConfigValue(C.Database.Mongo.Port, "MONGO_PORT", "27017")
	C.Database.Mongo.User = getConfigValue(C.Database.Mongo.User, "MONGO_USER", "")
	C.Database.Mongo.Password = getConfigValue(C.Database.Mongo.Password, "MONGO_PASSWORD", "")
	C.Database.ProjectStore = strings.ToLower(getConfigValue(C.Database.ProjectStore, "PROJECT_STORE", "mysql"))

	C.Database.Mssql.Name = getConfigValue(C.Database.Mssql.Name, "MSSQL_DB_NAME", "benchly")
	C.Database.Mssql.Host = getConfigValue(C.Database.Mssql.Host, "MSSQL_HOST", "localhost")
	C.Database.Mssql.Port = getConfigValue(C.Database.Mssql.Port, "MSSQL_PORT", "1433")
	C.Database.Mssql.User = getConfigValue(C.Database.Mssql.User, "MSSQL_USER", "sa")
	C.Database.Mssql.Password = getConfigValue(C.Database.Mssql.Password, "MSSQL_PASSWORD", "")

	C.RedisClient.Host = getConfigValue(C.RedisClient.Host, "REDIS_HOST", "localhost")
	C.RedisClient.Port = getConfigValue(C.RedisClient.Port, "REDIS_PORT", "6379")
	C.RedisClient.Password = getConfigValue(C.RedisClient.Password, "REDIS_PASSWORD", "")
}

func initApp(C *Config) {
	if v := os.Getenv("SECRET_KEY"); v != "" {
		C.App.SecretKey = v
	}
	// APP_PORT -> PORT -> config -> 10001
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	} else if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	}
	if C.App.Port == 0 {
		C.App.Port = 10001
	}
	if v := os.Getenv("TLS_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			C.App.TLSEnabled = enabled
		}
	}
	C.App.TLSCertFile = getConfigValue(C.App.TLSCertFile, "TLS_CERT_FILE", "")
	C.App.TLSKeyFile = getConfigValue(C.App.TLSKeyFile, "TLS_KEY_FILE", "")
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		C.App.AllowedOrigins = splitList(v)
	}
	if len(C.App.AllowedOrigins) == 0 {
		C.App.AllowedOrigins = []string{"http://localhost:10001", "http://localhost:5000"}
	}
	if C.App.TokenTTLHours <= 0 {
		C.App.TokenTTLHours = 24
	}
	if C.App.SecretKey == "" {
		logger.GetLogger().Warn("App.SecretKey not set; JWT authentication will fail. Provide SECRET_KEY via environment.")
	}
}

func initDiscovery(C *Config) {
	C.YouTube.APIKey = getConfigValue(C.YouTube.APIKey, "YOUTUBE_API_KEY", "")
	C.YouTube.ClientID = getConfigValue(C.YouTube.ClientID, "YOUTUBE_CLIENT_ID", "")
	C.YouTube.ClientSecret = getConfigValue(C.YouTube.ClientSecret, "YOUTUBE_CLIENT_SECRET", "")

	C.Cache.Driver = strings.ToLower(getConfigValue(C.Cache.Driver, "CACHE_DRIVER", "memory"))
	C.Cache.TTLMinutes = getIntValue(C.Cache.TTLMinutes, "CACHE_TTL_MINUTES", 60)
	C.Cache.MaxEntries = getIntValue(C.Cache.MaxEntries, "CACHE_MAX_ENTRIES", 1024)
	C.Cache.KeyPrefix = getConfigValue(C.Cache.KeyPrefix, "CACHE_KEY_PREFIX", "benchly:search:")

	C.Upstream.TimeoutSeconds = getIntValue(C.Upstream.TimeoutSeconds, "UPSTREAM_TIMEOUT_SECONDS", 5)

	C.RateLimit.PerMinute = getIntValue(C.RateLimit.PerMinute, "RATE_LIMIT_PER_MINUTE", 120)
	C.RateLimit.Burst = getIntValue(C.RateLimit.Burst, "RATE_LIMIT_BURST", C.RateLimit.PerMinute)
}

func initLLM(C *Config) {
	C.LLM.APIBase = getConfigValue(C.LLM.APIBase, "LLM_API_BASE", "https://generativelanguage.googleapis.com/v1beta/openai")
	C.LLM.APIKey = getConfigValue(C.LLM.APIKey, "GEMINI_API_KEY", "")
	C.LLM.FlashModel = getConfigValue(C.LLM.FlashModel, "LLM_FLASH_MODEL", "gemini-flash-latest")
	C.LLM.ProModel = getConfigValue(C.LLM.ProModel, "LLM_PRO_MODEL", "gemini-pro-latest")
	if C.LLM.Temperature == 0 {
		C.LLM.Temperature = 0.7
	}
	C.LLM.MaxTokens = getIntValue(C.LLM.MaxTokens, "LLM_MAX_TOKENS", 4096)
	C.LLM.TimeoutSeconds = getIntValue(C.LLM.TimeoutSeconds, "LLM_TIMEOUT_SECONDS", 60)
}

// getConfigValue prefers the environment, then a non-placeholder config
// value, then the default.
func getConfigValue(configValue, envKey, defaultValue string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	if configValue != "" && !strings.HasPrefix(configValue, "YOUR_") {
		return configValue
	}
	return defaultValue
}

func getIntValue(configValue int, envKey string, defaultValue int) int {
	if v := os.Getenv(envKey); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		logger.GetLogger().WithField("key", envKey).Warn("Ignoring non-numeric environment value")
	}
	if configValue > 0 {
		return configValue
	}
	return defaultValue
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
