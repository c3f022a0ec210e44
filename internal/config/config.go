package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Dir           string `mapstructure:"dir"`
	DefaultDoc    string `mapstructure:"default_doc"`
	DarkMode      bool   `mapstructure:"dark_mode"`
	Watch         bool   `mapstructure:"watch"`
	SearchLimit   int    `mapstructure:"search_limit"`
	SearchContext int    `mapstructure:"search_context"`
	WrapWidth     int    `mapstructure:"wrap_width"`
	SidebarWidth  int    `mapstructure:"sidebar_width"`
	LogFile       string `mapstructure:"log_file"`
	LogLevel      string `mapstructure:"log_level"`
	ColorAccent   string `mapstructure:"color_accent"`
	ColorDim      string `mapstructure:"color_dim"`
	ColorCode     string `mapstructure:"color_code"`
}

// C is the validated configuration read by every getter.
// It only changes through Reload.
var C Config

// colorRe accepts ANSI 256 codes and #rrggbb
var colorRe = regexp.MustCompile(`^(#[0-9a-fA-F]{6}|[0-9]{1,3})$`)

// Validate checks value ranges
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SearchLimit, validation.Required, validation.Min(1), validation.Max(500)),
		validation.Field(&c.SearchContext, validation.Min(0), validation.Max(200)),
		validation.Field(&c.WrapWidth, validation.Required, validation.Min(20), validation.Max(400)),
		validation.Field(&c.SidebarWidth, validation.Required, validation.Min(12), validation.Max(80)),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.ColorAccent, validation.Required, validation.Match(colorRe)),
		validation.Field(&c.ColorDim, validation.Required, validation.Match(colorRe)),
		validation.Field(&c.ColorCode, validation.Required, validation.Match(colorRe)),
	)
}

func setDefaults() {
	viper.SetDefault("dir", "") // Empty means bundled guides
	viper.SetDefault("default_doc", "go-concurrency")
	viper.SetDefault("dark_mode", true)
	viper.SetDefault("watch", false)
	viper.SetDefault("search_limit", 20)
	viper.SetDefault("search_context", 30)
	viper.SetDefault("wrap_width", 80)
	viper.SetDefault("sidebar_width", 28)
	viper.SetDefault("log_file", "")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("color_accent", "212") // Pink
	viper.SetDefault("color_dim", "245")    // Gray
	viper.SetDefault("color_code", "114")   // Green
}

// Init initializes configuration with viper.
// An explicit configFile must exist and parse; the default lookup is best effort.
func Init(configFile string) error {
	setDefaults()

	viper.SetConfigType("yaml")
	if configFile != "" {
		viper.SetConfigFile(expandTilde(configFile))
	} else {
		viper.SetConfigName("studymd")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "studymd"))
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("STUDYMD")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	return Reload()
}

// Reload re-reads viper into C and validates it
func Reload() error {
	var next Config
	if err := viper.Unmarshal(&next); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	if err := next.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	next.Dir = expandTilde(next.Dir)
	next.LogFile = expandTilde(next.LogFile)
	C = next
	return nil
}

// expandTilde expands ~ to the user's home directory
func expandTilde(path string) string {
	if len(path) == 0 {
		return path
	}
	if path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetDir returns the guide directory with tilde expansion, or "" for bundled guides
func GetDir() string {
	return C.Dir
}

// GetDefaultDoc returns the document opened on start
func GetDefaultDoc() string {
	return C.DefaultDoc
}

// GetDarkMode returns the initial theme
func GetDarkMode() bool {
	return C.DarkMode
}

// GetWatch returns whether the guide directory is watched
func GetWatch() bool {
	return C.Watch
}

// GetSearchLimit returns the maximum number of search results
func GetSearchLimit() int {
	return C.SearchLimit
}

// GetSearchContext returns the snippet context in characters on each side
func GetSearchContext() int {
	return C.SearchContext
}

// GetWrapWidth returns the maximum document text width
func GetWrapWidth() int {
	return C.WrapWidth
}

// GetSidebarWidth returns the sidebar column width
func GetSidebarWidth() int {
	return C.SidebarWidth
}

// GetLogFile returns the log destination, "" discards logs
func GetLogFile() string {
	return C.LogFile
}

// GetLogLevel returns the minimum log level name
func GetLogLevel() string {
	return C.LogLevel
}

// GetColorAccent returns the accent color (headings, selection)
func GetColorAccent() string {
	return C.ColorAccent
}

// GetColorDim returns the color for secondary text
func GetColorDim() string {
	return C.ColorDim
}

// GetColorCode returns the code block color
func GetColorCode() string {
	return C.ColorCode
}
