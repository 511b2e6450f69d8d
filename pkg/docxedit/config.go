package docxedit

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config contains all configuration options for the editor
type Config struct {
	// LogLevel controls the verbosity of logging (debug, info, warn, error, off)
	LogLevel string `yaml:"log_level"`
	// MediaDirName is the directory, created beside the source archive, that
	// images are extracted to when reading.
	MediaDirName string `yaml:"media_dir"`
	// DefaultImageWidth and DefaultImageHeight are reported for pictures
	// without an extent.
	DefaultImageWidth  int `yaml:"default_image_width"`
	DefaultImageHeight int `yaml:"default_image_height"`
	// InjectWidth and InjectHeight are used by InjectImage when no size is
	// given and the image header cannot be decoded.
	InjectWidth  int `yaml:"inject_width"`
	InjectHeight int `yaml:"inject_height"`
	// RelIDPrefix prefixes minted relationship ids.
	RelIDPrefix string `yaml:"rel_id_prefix"`
}

var (
	globalConfig      *Config
	globalConfigMutex sync.RWMutex
	configOnce        sync.Once
)

func init() {
	configOnce.Do(func() {
		globalConfig = ConfigFromEnvironment()
	})
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		LogLevel:           "info",
		MediaDirName:       "mcp_media",
		DefaultImageWidth:  300,
		DefaultImageHeight: 200,
		InjectWidth:        100,
		InjectHeight:       100,
		RelIDPrefix:        "rId",
	}
}

// ConfigFromEnvironment creates a configuration from environment variables
func ConfigFromEnvironment() *Config {
	config := DefaultConfig()
	applyEnvironment(config)
	return config
}

func applyEnvironment(config *Config) {
	if val := os.Getenv("DOCXEDIT_LOG_LEVEL"); val != "" {
		config.LogLevel = val
	}
	if val := os.Getenv("DOCXEDIT_MEDIA_DIR"); val != "" {
		config.MediaDirName = val
	}
	if val := os.Getenv("DOCXEDIT_REL_ID_PREFIX"); val != "" {
		config.RelIDPrefix = val
	}
}

// LoadConfigFile reads a YAML configuration file. Keys absent from the file
// keep their defaults; environment variables override the file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, notFoundErr("load config", path)
		}
		return nil, ioErr("load config", path, err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, formatErr("load config", path, err)
	}
	applyEnvironment(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"off":   true,
	}

	if !validLogLevels[c.LogLevel] {
		return errors.New("invalid log level: " + c.LogLevel)
	}

	if c.MediaDirName == "" {
		return errors.New("media dir name cannot be empty")
	}

	if c.DefaultImageWidth <= 0 || c.DefaultImageHeight <= 0 {
		return errors.New("default image size must be positive")
	}

	if c.InjectWidth <= 0 || c.InjectHeight <= 0 {
		return errors.New("inject image size must be positive")
	}

	if c.RelIDPrefix == "" {
		return errors.New("relationship id prefix cannot be empty")
	}

	return nil
}

// GetGlobalConfig returns the global configuration
func GetGlobalConfig() *Config {
	globalConfigMutex.RLock()
	defer globalConfigMutex.RUnlock()

	if globalConfig == nil {
		return DefaultConfig()
	}

	configCopy := *globalConfig
	return &configCopy
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config *Config) {
	globalConfigMutex.Lock()
	globalConfig = config
	globalConfigMutex.Unlock()

	// outside the lock: the logger reads the config back
	UpdateLoggerFromConfig()
}

// ResetGlobalConfig resets the global configuration to defaults from environment
func ResetGlobalConfig() {
	SetGlobalConfig(ConfigFromEnvironment())
}
