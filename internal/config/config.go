package config

import (
	"flag"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var once sync.Once
var logger *zap.SugaredLogger
var loggerOnce sync.Once

// isTestRun returns true if the current process is a Go test binary.
func isTestRun() bool {
	return flag.Lookup("test.v") != nil || filepath.Ext(os.Args[0]) == ".test"
}

func initConfig() {
	once.Do(func() {
		root, err := getProjectRoot()
		if err != nil {
			GetLogger().Errorw("Error finding project root", "error", err)
		}
		viper.SetConfigType("yaml")

		viper.SetConfigName("config")
		viper.AddConfigPath(root)
		if err = viper.ReadInConfig(); err != nil {
			GetLogger().Errorw("Error reading config file", "error", err)
		}

		if isTestRun() {
			viper.SetConfigName("config_test")
			viper.AddConfigPath(root)
		}

		err = viper.MergeInConfig()
		if err != nil {
			GetLogger().Errorw("Error reading config file", "error", err)
		}
	})
}

func getProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

func GetWeatherstackURL() string {
	initConfig()
	return viper.GetString("providers.weatherstack.api_url")
}

func GetWeatherstackAccessKey() string {
	_ = godotenv.Load()
	return os.Getenv("WEATHERSTACK_ACCESS_KEY")
}

func GetWeatherbitURL() string {
	initConfig()
	return viper.GetString("providers.weatherbit.api_url")
}

func GetWeatherbitAPIKey() string {
	_ = godotenv.Load()
	return os.Getenv("WEATHERBIT_API_KEY")
}

func GetOpenMeteoURL() string {
	initConfig()
	return viper.GetString("providers.openmeteo.api_url")
}

// GetSecondarySource names where history and forecast come from:
// "simulated", "weatherbit" or "openmeteo". Defaults to "simulated".
func GetSecondarySource() string {
	initConfig()
	source := viper.GetString("providers.secondary_source")
	if source == "" {
		source = "simulated"
	}
	return source
}

// GetProviderRate returns the outbound requests-per-second and burst for
// the named provider's client. Defaults match free-tier quotas.
func GetProviderRate(name string) (rps float64, burst int) {
	initConfig()
	rps = viper.GetFloat64("providers." + name + ".rps")
	if rps == 0 {
		rps = 1
	}
	burst = viper.GetInt("providers." + name + ".burst")
	if burst == 0 {
		burst = 2
	}
	return
}

func GetRedisAddr() string {
	initConfig()
	return viper.GetString("redis.addr")
}

func GetServerPort() string {
	initConfig()
	return viper.GetString("server.port")
}

func GetServerTimeout(key string) string {
	initConfig()
	return viper.GetString("server." + key)
}

// GetSchedulerEnabled reports whether the cache warmer should run.
func GetSchedulerEnabled() bool {
	initConfig()
	return viper.GetBool("scheduler.enabled")
}

// GetSchedulerInterval returns the cache warm interval. Defaults to 30m,
// matching the default cache TTL.
func GetSchedulerInterval() time.Duration {
	initConfig()
	durStr := viper.GetString("scheduler.interval")
	if durStr == "" {
		durStr = "30m"
	}
	dur, err := time.ParseDuration(durStr)
	if err != nil {
		return 30 * time.Minute
	}
	return dur
}

// GetRateLimits returns the inbound per-client and per-location
// requests-per-minute limits.
func GetRateLimits() (perMinute, perLocationPerMinute float64) {
	initConfig()
	perMinute = viper.GetFloat64("rate_limiter.per_minute")
	if perMinute == 0 {
		perMinute = 10
	}
	perLocationPerMinute = viper.GetFloat64("rate_limiter.per_location_per_minute")
	if perLocationPerMinute == 0 {
		perLocationPerMinute = 2
	}
	return
}

// ReloadConfigForTest resets the config singleton and reloads Viper config. Use only in tests.
func ReloadConfigForTest() {
	once = sync.Once{}
	initConfig()
}

func GetLogger() *zap.SugaredLogger {
	loggerOnce.Do(func() {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
		logger = l.Sugar()
	})
	return logger
}
