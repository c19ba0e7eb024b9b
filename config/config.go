package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ipset-keeper/model"

	"github.com/caarlos0/env/v9"
	"github.com/xxxsen/common/logger"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LogConfig      logger.LogConfig `json:"log_config"`
	FirewallCmd    string           `json:"firewall_cmd"`
	Permanent      bool             `json:"permanent"`
	ReloadOnChange bool             `json:"reload_on_change"`
	TmpDir         string           `json:"tmp_dir"`
	IPSets         []*model.IPSet   `json:"ipsets"`
}

// envConfig holds overrides read from the environment. Bools are pointers so an unset
// variable can be told apart from an explicit false.
type envConfig struct {
	FirewallCmd    string `env:"IPSET_KEEPER_FIREWALL_CMD"`
	Permanent      *bool  `env:"IPSET_KEEPER_PERMANENT"`
	ReloadOnChange *bool  `env:"IPSET_KEEPER_RELOAD_ON_CHANGE"`
	TmpDir         string `env:"IPSET_KEEPER_TMP_DIR"`
	LogLevel       string `env:"IPSET_KEEPER_LOG_LEVEL"`
}

func defaultConfig() *Config {
	c := &Config{
		Permanent:      true,
		ReloadOnChange: true,
	}
	c.LogConfig.Level = "info"
	c.LogConfig.Console = true
	return c
}

func Parse(f string) (*Config, error) {
	raw, err := os.ReadFile(f)
	if err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(f))
	if ext == ".yaml" || ext == ".yml" {
		if raw, err = yamlToJSON(raw); err != nil {
			return nil, fmt.Errorf("decode yaml config failed, err:%w", err)
		}
	}
	c := defaultConfig()
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, err
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	ec := &envConfig{}
	if err := env.Parse(ec); err != nil {
		return fmt.Errorf("parse env config failed, err:%w", err)
	}
	if len(ec.FirewallCmd) > 0 {
		c.FirewallCmd = ec.FirewallCmd
	}
	if len(ec.TmpDir) > 0 {
		c.TmpDir = ec.TmpDir
	}
	if len(ec.LogLevel) > 0 {
		c.LogConfig.Level = ec.LogLevel
	}
	if ec.Permanent != nil {
		c.Permanent = *ec.Permanent
	}
	if ec.ReloadOnChange != nil {
		c.ReloadOnChange = *ec.ReloadOnChange
	}
	return nil
}

func yamlToJSON(raw []byte) ([]byte, error) {
	var v interface{}
	if err := yaml.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	if v == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(v)
}
