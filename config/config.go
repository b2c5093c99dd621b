package config

import (
	"encoding/json"
	"flag"
	"github.com/spf13/viper"
	"hyperv-facade/hyperv/protocol"
	"log"
	"testing"
)

const (
	DriverSim   = "sim"
	DriverAgent = "agent"
)

type Config struct {
	Server struct {
		Mode string `mapstructure:"mode"`
		Port int    `mapstructure:"port"`
		Log  struct {
			Path           string `mapstructure:"path"`
			Level          string `mapstructure:"level"`
			MaxSize        int    `mapstructure:"maxSize"`
			MaxBackups     int    `mapstructure:"maxBackups"`
			MaxAge         int    `mapstructure:"maxAge"`
			EnableFullPath bool   `mapstructure:"enableFullPath"`
		}
		Db struct {
			Badger *struct {
				Path string `mapstructure:"path"`
			} `mapstructure:"badger"`
		}
	}

	App struct {
		Token struct {
			Type   string `mapstructure:"type"`
			Secret string `mapstructure:"secret"`
		}
	}

	Hyperv struct {
		Host struct {
			Driver  string `mapstructure:"driver"`
			Cluster string `mapstructure:"cluster"`
		}
		Default struct {
			Operation struct {
				ShutdownFirst bool `mapstructure:"shutdownFirst"`
			} `mapstructure:"operation"`
			Callback *protocol.CallbackReq `mapstructure:"callback"`
			Notify   struct {
				Redis *struct {
					URL     string `mapstructure:"url"`
					Channel string `mapstructure:"channel"`
				} `mapstructure:"redis"`
			} `mapstructure:"notify"`
		}
		Timeout struct {
			Api          int32 `mapstructure:"api"`
			Job          int32 `mapstructure:"job"`
			PollInterval int32 `mapstructure:"pollInterval"`
		}
		Cache struct {
			Enable          bool     `mapstructure:"enable"`
			RefreshDuration int      `mapstructure:"refreshDuration"`
			Ignore          []string `mapstructure:"ignore"`
		}
		RoutineCount struct {
			Operation  int `mapstructure:"operation"`
			Deployment int `mapstructure:"deployment"`
		} `mapstructure:"routineCount"`
	}
}

var G Config

func Setup() {
	testing.Init()
	configDir := flag.String("config", ".", "config file dir")
	flag.Parse()
	viper.SetConfigType("yaml")
	viper.SetConfigName("config")
	viper.AddConfigPath("$HOME/.hyperv-facade")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath(*configDir)
	Defaults()
	Reload()

	b, _ := json.Marshal(G)
	log.Println("读取到的配置: ", string(b))
}

// Defaults 未配置项的默认值，Setup之外（例如测试）也可以单独调用
func Defaults() {
	viper.SetDefault("server.mode", "release")
	viper.SetDefault("server.port", 6001)
	viper.SetDefault("server.log.level", "info")
	viper.SetDefault("app.token.type", "bearer")
	viper.SetDefault("hyperv.host.driver", DriverSim)
	viper.SetDefault("hyperv.timeout.api", 30)
	viper.SetDefault("hyperv.timeout.job", 300)
	viper.SetDefault("hyperv.timeout.pollInterval", 100)
	viper.SetDefault("hyperv.cache.refreshDuration", 10)
	viper.SetDefault("hyperv.routineCount.operation", 10)
	viper.SetDefault("hyperv.routineCount.deployment", 5)
	_ = viper.Unmarshal(&G)
}

func Reload() {
	err := viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatal("读取配置失败", err)
			return
		}
		log.Println("未找到配置文件，使用默认配置")
	}
	err = viper.Unmarshal(&G)
	if err != nil {
		panic(err)
	}
}
