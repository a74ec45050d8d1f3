package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Server      Server      `yaml:"server" json:"server"`                                 // configuration of the public REST server
	Name        string      `yaml:"name" json:"name" env:"APP_NAME" env-default:"zendcr"` // used for OTEL as an application identifier
	Tracing     Tracing     `yaml:"tracing" json:"tracing"`
	Translation Translation `yaml:"translation" json:"translation"`
}

type Server struct {
	Context string `yaml:"context" json:"context" env:"REST_API_CONTEXT" env-default:"/"`
	Addr    string `yaml:"addr" json:"addr" env:"REST_API_ADDR" env-default:":8080"`
}

type Tracing struct {
	Enabled  bool   `yaml:"enabled" json:"enabled" env:"OTEL_ENABLED" env-default:"false"`
	Name     string `yaml:"name" json:"name" env:"OTEL_APP_NAME" env-default:"zendcr"`
	Endpoint string `yaml:"endpoint" json:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT" env-default:"localhost:4318"`
	// TransferHeaders are copied from incoming requests into span attributes and the request context
	TransferHeaders []string `yaml:"transferHeaders" json:"transferHeaders" env:"OTEL_TRANSFER_HEADERS" env-separator:","`
}

// Translation configures how uploaded BPMN resources are turned into DCR graphs.
type Translation struct {
	NestingThreshold int           `yaml:"nestingThreshold" json:"nestingThreshold" env:"NESTING_THRESHOLD" env-default:"1"`
	CacheSize        int           `yaml:"cacheSize" json:"cacheSize" env:"TRANSLATION_CACHE_SIZE" env-default:"128"`
	CacheTTL         time.Duration `yaml:"cacheTTL" json:"cacheTTL" env:"TRANSLATION_CACHE_TTL" env-default:"1h"`
}

func (c Config) defaults() Config {
	if c.Tracing.Name == "" {
		c.Tracing.Name = c.Name
	}
	if c.Translation.NestingThreshold < 0 {
		c.Translation.NestingThreshold = 0
	}
	return c
}

func InitConfig() Config {
	var fileName string
	confFile := os.Getenv("CONFIG_FILE")
	if confFile == "" {
		wd, err := os.Getwd()
		if err != nil {
			panic(err)
		}
		fileName = fmt.Sprintf("%s/conf.yaml", wd)
	} else {
		fileName = confFile
	}
	c, err := readConfig(fileName)
	if err != nil {
		fmt.Printf("Error occurred while reading the configuration: %s\n", err)
		panic(err)
	}
	return c
}

func readConfig(fileName string) (Config, error) {
	c := Config{}
	var err error
	if _, perr := os.Stat(fileName); errors.Is(perr, os.ErrNotExist) {
		err = cleanenv.ReadEnv(&c)
		fmt.Printf("Configuration file %s not found. Reading config from ENV.\n", fileName)
	} else {
		err = cleanenv.ReadConfig(fileName, &c)
	}
	if err != nil {
		return Config{}, err
	}
	return c.defaults(), nil
}
