package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	CONFIG_NAME = "matchmaking"
	ENV_PREFIX  = "MM"
)

type EngineConfig struct {
	Pool            string
	SkillThreshold  int
	TableSize       int
	HistoryCapacity int
	HistoryPolicy   string
	SearchStrategy  string
	PurgeOnMatch    bool
}

type MatchmakingServerConfig struct {
	DebugMode  bool
	Port       string
	ProfileTTL time.Duration

	Engine EngineConfig
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "5000")
	v.SetDefault("server.debugMode", false)
	v.SetDefault("server.profileTTLMinutes", 60)

	v.SetDefault("engine.pool", "default")
	v.SetDefault("engine.skillThreshold", 150)
	v.SetDefault("engine.tableSize", 1024)
	v.SetDefault("engine.historyCapacity", 1000)
	v.SetDefault("engine.historyPolicy", "evict_oldest")
	v.SetDefault("engine.searchStrategy", "scan")
	v.SetDefault("engine.purgeOnMatch", true)
}

// LoadMatchmakingServerConfig reads config/matchmaking.yaml. Every key can be
// overridden from the environment, e.g. MM_ENGINE_SKILLTHRESHOLD.
func LoadMatchmakingServerConfig() (sc *MatchmakingServerConfig, err error) {
	return LoadMatchmakingServerConfigFrom("config/")
}

func LoadMatchmakingServerConfigFrom(path string) (sc *MatchmakingServerConfig, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName(CONFIG_NAME)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(ENV_PREFIX)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err = v.ReadInConfig(); err != nil {
		err = fmt.Errorf("SMM: %w", err)
		return
	}

	sc = &MatchmakingServerConfig{
		Port:       v.GetString("server.port"),
		DebugMode:  v.GetBool("server.debugMode"),
		ProfileTTL: time.Duration(v.GetInt("server.profileTTLMinutes")) * time.Minute,
		Engine: EngineConfig{
			Pool:            v.GetString("engine.pool"),
			SkillThreshold:  v.GetInt("engine.skillThreshold"),
			TableSize:       v.GetInt("engine.tableSize"),
			HistoryCapacity: v.GetInt("engine.historyCapacity"),
			HistoryPolicy:   v.GetString("engine.historyPolicy"),
			SearchStrategy:  v.GetString("engine.searchStrategy"),
			PurgeOnMatch:    v.GetBool("engine.purgeOnMatch"),
		},
	}

	return
}
