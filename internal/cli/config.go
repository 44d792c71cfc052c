package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/go-playground/validator/v10"
	"github.com/hmegen/hmegen/internal/aliasfile"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default name of the config file
const DefaultConfigFile = "config.yaml"

const (
	defaultServerURL  = "https://p68-maildomainws.icloud.com"
	defaultCookieFile = "cookie.txt"
	defaultOutputFile = aliasfile.DefaultPath
	defaultLabel      = "hmegen"
	defaultNote       = "Generated by hmegen"
	defaultLangCode   = "en-us"
	defaultTimeout    = 10 * time.Second
	configVersion     = "0.1.0"
)

// Config is the CLI configuration. Values come from defaults, then the YAML file, then
// HME_* environment variables (a .env file in the working directory is honoured), then
// command line flags.
type Config struct {
	// Version of the configuration file format
	Version string `yaml:"version"`
	// ServerURL is the base URL of the Hide My Email web service
	ServerURL string `yaml:"server_url" env:"HME_SERVER_URL" validate:"required,url"`
	// CookieFile holds the session cookie on its first non-comment line
	CookieFile string `yaml:"cookie_file" env:"HME_COOKIE_FILE"`
	// Cookie is the session cookie itself; it takes precedence over CookieFile
	Cookie string `yaml:"-" env:"HME_COOKIE"`
	// OutputFile receives every reserved alias
	OutputFile string `yaml:"output_file" env:"HME_OUTPUT_FILE" validate:"required"`
	// Label and Note are stored with every reserved alias
	Label string `yaml:"label" env:"HME_LABEL"`
	Note  string `yaml:"note" env:"HME_NOTE"`
	// LangCode selects the language of generated aliases
	LangCode string `yaml:"lang_code" env:"HME_LANG_CODE"`
	// DSID is the account directory id, sent when set
	DSID string `yaml:"dsid,omitempty" env:"HME_DSID"`
	// Timeout bounds each request
	Timeout time.Duration `yaml:"timeout" env:"HME_TIMEOUT" validate:"gt=0"`
}

// DefaultConfig returns a Config populated with defaults.
func DefaultConfig() *Config {
	return &Config{
		Version:    configVersion,
		ServerURL:  defaultServerURL,
		CookieFile: defaultCookieFile,
		OutputFile: defaultOutputFile,
		Label:      defaultLabel,
		Note:       defaultNote,
		LangCode:   defaultLangCode,
		Timeout:    defaultTimeout,
	}
}

// GetDefaultConfigPath returns the default path for the config file
// It uses the OS-specific config directory (e.g., ~/.config/hmegen on Linux)
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "hmegen", DefaultConfigFile), nil
}

// LoadConfig builds the configuration. When file is empty the default location is used
// and a missing file is not an error; an explicitly named file must exist.
func LoadConfig(file string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := file != ""
	if !explicit {
		var err error
		file, err = GetDefaultConfigPath()
		if err != nil {
			return nil, err
		}
	}

	yamlStr, err := os.ReadFile(file)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(yamlStr, cfg); err != nil {
			return nil, fmt.Errorf("unable to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	loadDotEnv()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("unable to parse environment: %w", err)
	}

	cfg.ServerURL = MorphServer(cfg.ServerURL)
	if err := cfg.ValidateConfig(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDotEnv loads .env from the working directory if it exists. Variables already
// present in the environment win.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}
	_ = godotenv.Load(filepath.Join(cwd, ".env")) // no error if .env doesn't exist
}

func envDebug() bool {
	switch strings.ToLower(os.Getenv("HME_DEBUG")) {
	case "1", "true", "yes":
		return true
	}
	return false
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateConfig checks required fields and formats.
func (cfg *Config) ValidateConfig() error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid configuration: %s failed %q check", verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// WriteConfig writes the configuration to file with owner-only permissions.
func (cfg *Config) WriteConfig(file string) error {
	if file == "" {
		return errors.New("file path cannot be empty")
	}

	err := os.MkdirAll(filepath.Dir(file), os.ModePerm)
	if err != nil {
		return fmt.Errorf("unable to create config directory: %w", err)
	}

	yamlStr, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("unable to generate configuration: %w", err)
	}

	err = os.WriteFile(file, yamlStr, os.FileMode(0600))
	if err != nil {
		return fmt.Errorf("unable to write config file: %w", err)
	}

	return nil
}

// Print writes the configuration in a human-readable format. The cookie is never shown.
func (cfg *Config) Print(w io.Writer) {
	fmt.Fprintf(w, "Server: %s\n", cfg.ServerURL)
	fmt.Fprintf(w, "Cookie file: %s\n", cfg.CookieFile)
	fmt.Fprintf(w, "Output file: %s\n", cfg.OutputFile)
	fmt.Fprintf(w, "Label: %s\n", cfg.Label)
	fmt.Fprintf(w, "Note: %s\n", cfg.Note)
	fmt.Fprintf(w, "Timeout: %s\n", cfg.Timeout)
}

// MorphServer ensures the server URL is properly formatted
// Adds https:// prefix if missing and removes trailing slashes
func MorphServer(server string) string {
	if server == "" {
		return server
	}

	server = strings.TrimRight(server, "/")

	if !strings.HasPrefix(server, "http://") && !strings.HasPrefix(server, "https://") {
		server = "https://" + server
	}

	return server
}

// GetServerURL returns the properly formatted server URL
func (cfg *Config) GetServerURL() string {
	return MorphServer(cfg.ServerURL)
}

// GetSessionCredential returns the resolved session cookie
func (cfg *Config) GetSessionCredential() string {
	return cfg.Cookie
}

// GetTimeout returns the per-request timeout
func (cfg *Config) GetTimeout() time.Duration {
	return cfg.Timeout
}

// loadCommandConfig loads the configuration and applies the persistent flag overrides.
func loadCommandConfig(opts *rootOptions) (*Config, error) {
	cfg, err := LoadConfig(opts.configFile)
	if err != nil {
		return nil, err
	}
	if opts.cookieFile != "" {
		cfg.CookieFile = opts.cookieFile
	}
	return cfg, nil
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  `Show or create the hmegen configuration file.`,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadCommandConfig(opts)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				printJSON(cmd.OutOrStdout(), map[string]any{
					"server_url":  cfg.ServerURL,
					"cookie_file": cfg.CookieFile,
					"output_file": cfg.OutputFile,
					"label":       cfg.Label,
					"note":        cfg.Note,
					"timeout":     cfg.Timeout.String(),
				})
				return nil
			}
			cfg.Print(cmd.OutOrStdout())
			return nil
		},
	})

	var server, outputFile, label string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Write a configuration file with default values",
		Long: `Write a configuration file. Values not given as flags take their defaults.

Examples:
  hmegen config create
  hmegen config create --label shopping --output-file ~/aliases.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := opts.configFile
			if configPath == "" {
				var err error
				configPath, err = GetDefaultConfigPath()
				if err != nil {
					return err
				}
			}

			cfg := DefaultConfig()
			if server != "" {
				cfg.ServerURL = MorphServer(server)
			}
			if opts.cookieFile != "" {
				cfg.CookieFile = opts.cookieFile
			}
			if outputFile != "" {
				cfg.OutputFile = outputFile
			}
			if label != "" {
				cfg.Label = label
			}
			if err := cfg.ValidateConfig(); err != nil {
				return err
			}
			if err := cfg.WriteConfig(configPath); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}

			if opts.jsonOutput {
				printJSON(cmd.OutOrStdout(), map[string]string{
					"server":      cfg.ServerURL,
					"config_file": configPath,
				})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Server configured: %s\n", cfg.ServerURL)
				fmt.Fprintf(cmd.OutOrStdout(), "Config file: %s\n", configPath)
			}
			return nil
		},
	}
	createCmd.Flags().StringVar(&server, "server", "", "Service base URL")
	createCmd.Flags().StringVar(&outputFile, "output-file", "", "File that receives reserved aliases")
	createCmd.Flags().StringVar(&label, "label", "", "Label stored with reserved aliases")
	configCmd.AddCommand(createCmd)

	return configCmd
}
