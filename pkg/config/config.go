package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"os/user"
	"path"

	"gopkg.in/yaml.v2"

	"github.com/go-delve/gdbmi/pkg/mi"
)

const (
	configDir    string = ".midecode"
	xdgConfigDir string = "midecode"
	configFile   string = "config.yml"
	historyFile  string = ".midecode_history"
)

// Config defines all configuration options available to be set through the config file.
type Config struct {
	// Commands aliases.
	Aliases map[string][]string `yaml:"aliases"`

	// OOBWindow is the maximum number of out of band records attached to
	// a command result. Zero means mi.DefaultWindow.
	OOBWindow int `yaml:"oob-window,omitempty"`
	// StreamWindow is the maximum number of stream records attached to an
	// async record. Zero means mi.DefaultWindow.
	StreamWindow int `yaml:"stream-window,omitempty"`
	// ParseCacheSize is the number of parsed lines that are remembered,
	// zero disables the cache.
	ParseCacheSize int `yaml:"parse-cache-size,omitempty"`

	// WordSize is the word size used to decode -data-read-memory results
	// when none is given on the command line.
	WordSize int `yaml:"word-size,omitempty"`

	// MaxStringLen is the maximum length of the values printed by the
	// decode command, longer values are truncated.
	MaxStringLen *int `yaml:"max-string-len,omitempty"`

	// RecordColors maps record kinds (result, exec, status, notify,
	// console, target, log, prompt) to 3/4 bit color codes as defined
	// here: https://en.wikipedia.org/wiki/ANSI_escape_code#Colors
	RecordColors map[string]int `yaml:"record-colors"`

	// If ShowRaw is true the REPL echoes every line before its decoded
	// form.
	ShowRaw bool `yaml:"show-raw"`
}

// AssemblerConfig returns the assembler settings of c.
func (c *Config) AssemblerConfig() mi.AssemblerConfig {
	if c == nil {
		return mi.AssemblerConfig{}
	}
	return mi.AssemblerConfig{
		OOBWindow:    c.OOBWindow,
		StreamWindow: c.StreamWindow,
		CacheSize:    c.ParseCacheSize,
	}
}

// LoadError is returned when a config file exists but can not be decoded.
type LoadError struct {
	Path string
	Err  error
}

func (err *LoadError) Error() string {
	return fmt.Sprintf("unable to decode config file %s: %v", err.Path, err.Err)
}

func (err *LoadError) Unwrap() error {
	return err.Err
}

// LoadConfig attempts to populate a Config object from the config.yml file.
func LoadConfig() *Config {
	err := createConfigPath()
	if err != nil {
		fmt.Printf("Could not create config directory: %v.", err)
		return &Config{}
	}
	fullConfigFile, err := GetConfigFilePath(configFile)
	if err != nil {
		fmt.Printf("Unable to get config file path: %v.", err)
		return &Config{}
	}
	if _, err := os.Stat(fullConfigFile); os.IsNotExist(err) {
		if err := createDefaultConfig(fullConfigFile); err != nil {
			fmt.Printf("Error creating default config file: %v", err)
			return &Config{}
		}
	}
	c, err := LoadConfigFrom(fullConfigFile)
	if err != nil {
		fmt.Printf("%v.", err)
		return &Config{}
	}
	return c
}

// LoadConfigFrom reads the config file at path.
func LoadConfigFrom(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read config data: %w", err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return &c, nil
}

// SaveConfig will marshal and save the config struct
// to disk.
func SaveConfig(conf *Config) error {
	fullConfigFile, err := GetConfigFilePath(configFile)
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(*conf)
	if err != nil {
		return err
	}

	f, err := os.Create(fullConfigFile)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(out)
	return err
}

func createDefaultConfig(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create config file: %v", err)
	}
	defer f.Close()
	err = writeDefaultConfig(f)
	if err != nil {
		return fmt.Errorf("unable to write default configuration: %v", err)
	}
	return nil
}

func writeDefaultConfig(f *os.File) error {
	_, err := f.WriteString(
		`# Configuration file for midecode.

# This is the default configuration file. Available options are provided, but disabled.
# Delete the leading hash mark to enable an item.

# Provided aliases will be added to the default aliases for a given command.
aliases:
  # command: ["alias1", "alias2"]

# Number of out of band records kept in front of a command result (default 20).
# oob-window: 20

# Number of stream records kept in front of an async record (default 20).
# stream-window: 20

# Number of parsed lines remembered, repeated lines are parsed once.
# parse-cache-size: 128

# Word size used to decode -data-read-memory results.
# word-size: 1

# Maximum length of printed values.
# max-string-len: 64

# ANSI foreground colors used for each kind of record.
# See https://en.wikipedia.org/wiki/ANSI_escape_code#3/4_bit
record-colors:
  # result: 32
  # exec: 33
  # notify: 36
  # log: 31

# Uncomment the following line to echo every line before its decoded form.
# show-raw: true
`)
	return err
}

// createConfigPath creates the directory structure at which all config files are saved.
func createConfigPath() error {
	path, err := GetConfigFilePath("")
	if err != nil {
		return err
	}
	return os.MkdirAll(path, 0700)
}

// GetConfigFilePath gets the full path to the given config file name.
// $XDG_CONFIG_HOME/midecode is used when XDG_CONFIG_HOME is set,
// $HOME/.midecode otherwise.
func GetConfigFilePath(file string) (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return path.Join(xdg, xdgConfigDir, file), nil
	}
	userHomeDir := "."
	usr, err := user.Current()
	if err == nil {
		userHomeDir = usr.HomeDir
	}
	return path.Join(userHomeDir, configDir, file), nil
}

// GetHistoryFilePath returns the path of the REPL history file.
func GetHistoryFilePath() (string, error) {
	return GetConfigFilePath(historyFile)
}
