package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type AppConfig struct {
	API      *APIConfig      `mapstructure:"api"`
	Gin      *GinConfig      `mapstructure:"gin"`
	Postgres *PostgresConfig `mapstructure:"postgres"`
	Redis    *RedisConfig    `mapstructure:"redis"`
	Gacha    *GachaConfig    `mapstructure:"gacha"`
	Jobs     *JobsConfig     `mapstructure:"jobs"`

	mu sync.RWMutex
}

type APIConfig struct {
	Environment        string `mapstructure:"environment"`
	Port               string `mapstructure:"port"`
	BaseURL            string `mapstructure:"baseURL"`
	JWTSigningKey      string `mapstructure:"jwtSigningKey"`
	AllowedCORSDomains string `mapstructure:"allowedCORSDomains"`
	LimitTimezone      string `mapstructure:"limitTimezone"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbName"`
	SSLMode  string `mapstructure:"sslMode"`
}

type RedisConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	URL        string `mapstructure:"url"`
	BalanceTTL string `mapstructure:"balanceTTL"`
}

type GachaConfig struct {
	Weights  map[string]int  `mapstructure:"weights"`
	PointBox *PointBoxConfig `mapstructure:"pointBox"`
	Roulette *RouletteConfig `mapstructure:"roulette"`
}

type PointBoxConfig struct {
	Min int `mapstructure:"min"`
	Max int `mapstructure:"max"`
}

type RouletteConfig struct {
	Prizes []RoulettePrize `mapstructure:"prizes"`
}

type RoulettePrize struct {
	Points int `mapstructure:"points"`
	Weight int `mapstructure:"weight"`
}

type JobsConfig struct {
	ReconcileSchedule string `mapstructure:"reconcileSchedule"`
}

// Load reads the yaml config at path. Environment variables override file
// values (api.port -> API_PORT). Tunables such as gacha weights are hot
// reloaded on file change.
func Load(path string) (*AppConfig, error) {
	conf := &AppConfig{}

	viper.SetConfigFile(path)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("viper.ReadInConfig -> %w", err)
	}

	if err := viper.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("viper.Unmarshal -> %w", err)
	}

	viper.OnConfigChange(func(e fsnotify.Event) {
		conf.mu.Lock()
		defer conf.mu.Unlock()

		if err := viper.Unmarshal(conf); err != nil {
			zap.L().Error("failed to reload config", zap.Error(err))
			return
		}
		zap.L().Info("config reloaded", zap.String("file", e.Name))
	})
	viper.WatchConfig()

	return conf, nil
}

// GachaSnapshot returns the current gacha tunables under the read lock,
// so a hot reload never races a draw.
func (c *AppConfig) GachaSnapshot() GachaConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.Gacha == nil {
		return GachaConfig{}
	}

	snap := GachaConfig{Weights: make(map[string]int, len(c.Gacha.Weights))}
	for k, v := range c.Gacha.Weights {
		snap.Weights[k] = v
	}
	if c.Gacha.PointBox != nil {
		pb := *c.Gacha.PointBox
		snap.PointBox = &pb
	}
	if c.Gacha.Roulette != nil {
		prizes := make([]RoulettePrize, len(c.Gacha.Roulette.Prizes))
		copy(prizes, c.Gacha.Roulette.Prizes)
		snap.Roulette = &RouletteConfig{Prizes: prizes}
	}

	return snap
}
