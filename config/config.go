package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 服务端与客户端共用的配置；文件 < 环境变量 < 命令行参数
type Config struct {
	Server struct {
		Addr           string   `yaml:"addr"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`

	Log struct {
		File    string `yaml:"file"`
		Level   string `yaml:"level"`
		Console bool   `yaml:"console"`
	} `yaml:"log"`

	// Link 对转发的对手操作施加人为延迟与丢包，用于弱网调试
	Link struct {
		DelayMinMs int     `yaml:"delay_min_ms"`
		DelayMaxMs int     `yaml:"delay_max_ms"`
		DropProb   float64 `yaml:"drop_prob"`
	} `yaml:"link"`

	NATS struct {
		URL           string `yaml:"url"`
		SubjectPrefix string `yaml:"subject_prefix"`
	} `yaml:"nats"`

	Peer struct {
		ServerURL string `yaml:"server_url"`
		FrameRate int    `yaml:"frame_rate"`
	} `yaml:"peer"`
}

// Default 默认配置
func Default() *Config {
	c := &Config{}
	c.Server.Addr = ":3001"
	c.Server.AllowedOrigins = []string{"*"}
	c.Log.File = "foosball.log"
	c.Log.Level = "debug"
	c.NATS.SubjectPrefix = "foosball"
	c.Peer.ServerURL = "ws://localhost:3001/ws"
	c.Peer.FrameRate = 60
	return c
}

// Load 读取 .env、可选的 YAML 配置文件，再用环境变量覆盖
// path 为空或文件不存在时使用默认值
func Load(path string) (*Config, error) {
	// .env 不存在是正常情况
	_ = godotenv.Load()

	c := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, c); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	c.Server.Addr = getEnv("FOOSBALL_ADDR", c.Server.Addr)
	if origins := os.Getenv("FOOSBALL_ALLOWED_ORIGINS"); origins != "" {
		c.Server.AllowedOrigins = strings.Split(origins, ",")
	}
	c.Log.File = getEnv("FOOSBALL_LOG_FILE", c.Log.File)
	c.Log.Level = getEnv("FOOSBALL_LOG_LEVEL", c.Log.Level)
	c.Log.Console = getEnvAsBool("FOOSBALL_LOG_CONSOLE", c.Log.Console)
	c.Link.DelayMinMs = getEnvAsInt("FOOSBALL_LINK_DELAY_MIN_MS", c.Link.DelayMinMs)
	c.Link.DelayMaxMs = getEnvAsInt("FOOSBALL_LINK_DELAY_MAX_MS", c.Link.DelayMaxMs)
	c.Link.DropProb = getEnvAsFloat("FOOSBALL_LINK_DROP_PROB", c.Link.DropProb)
	c.NATS.URL = getEnv("FOOSBALL_NATS_URL", c.NATS.URL)
	c.NATS.SubjectPrefix = getEnv("FOOSBALL_NATS_SUBJECT_PREFIX", c.NATS.SubjectPrefix)
	c.Peer.ServerURL = getEnv("FOOSBALL_SERVER_URL", c.Peer.ServerURL)
	c.Peer.FrameRate = getEnvAsInt("FOOSBALL_FRAME_RATE", c.Peer.FrameRate)

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate 检查取值范围
func (c *Config) Validate() error {
	if c.Link.DropProb < 0 || c.Link.DropProb > 1 {
		return fmt.Errorf("link.drop_prob must be within [0,1], got %v", c.Link.DropProb)
	}
	if c.Link.DelayMinMs < 0 || c.Link.DelayMaxMs < c.Link.DelayMinMs {
		return fmt.Errorf("link delay range [%d,%d] is invalid", c.Link.DelayMinMs, c.Link.DelayMaxMs)
	}
	if c.Peer.FrameRate <= 0 {
		return fmt.Errorf("peer.frame_rate must be positive, got %d", c.Peer.FrameRate)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
