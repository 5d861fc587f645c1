package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"rhystmorgan/contactterm/internal/storage"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	envPrefix = "CONTACTTERM"

	KeyAPIBaseURL = "api_base_url"
	KeyTimeout    = "timeout"
	KeyDataDir    = "data_dir"
	KeyPassphrase = "passphrase"
	KeyDebug      = "debug"
	KeyAudit      = "audit"
	KeyEphemeral  = "ephemeral"

	DefaultAPIBaseURL = "http://localhost:4000"
	DefaultTimeout    = 30 * time.Second
)

const defaultConfigYAML = `# contactterm configuration
# Every key can also be set with a CONTACTTERM_<KEY> environment variable.

# Contacts service root
api_base_url: http://localhost:4000

# Per-request timeout
timeout: 30s

# Append successful changes to audit.jsonl in the data directory
audit: true
`

// flagKeys maps command-line flag names onto configuration keys.
var flagKeys = map[string]string{
	"api-url":   KeyAPIBaseURL,
	"timeout":   KeyTimeout,
	"data-dir":  KeyDataDir,
	"debug":     KeyDebug,
	"audit":     KeyAudit,
	"ephemeral": KeyEphemeral,
}

type ClientConfig struct {
	APIBaseURL   string
	Timeout      time.Duration
	DataDir      string
	Passphrase   string
	Debug        bool
	AuditEnabled bool
	// Ephemeral keeps the session token in memory only.
	Ephemeral bool
	// ConfigFile is the file that was read, if any.
	ConfigFile string
}

// Load resolves the configuration from defaults, config.yaml in the data
// directory, CONTACTTERM_* environment variables and any flags that were set,
// in increasing order of precedence. flags may be nil.
func Load(flags *pflag.FlagSet) (*ClientConfig, error) {
	v := viper.New()

	defaultDataDir, err := storage.DefaultDataDir()
	if err != nil {
		return nil, err
	}

	v.SetDefault(KeyAPIBaseURL, DefaultAPIBaseURL)
	v.SetDefault(KeyTimeout, DefaultTimeout)
	v.SetDefault(KeyDataDir, defaultDataDir)
	v.SetDefault(KeyAudit, true)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if flag := flags.Lookup(name); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	dataDir := expandHome(v.GetString(KeyDataDir))

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(dataDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	config := &ClientConfig{
		APIBaseURL:   strings.TrimSpace(v.GetString(KeyAPIBaseURL)),
		Timeout:      v.GetDuration(KeyTimeout),
		DataDir:      dataDir,
		Passphrase:   v.GetString(KeyPassphrase),
		Debug:        v.GetBool(KeyDebug),
		AuditEnabled: v.GetBool(KeyAudit),
		Ephemeral:    v.GetBool(KeyEphemeral),
		ConfigFile:   v.ConfigFileUsed(),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *ClientConfig) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("api base URL is required")
	}
	parsed, err := url.Parse(c.APIBaseURL)
	if err != nil {
		return fmt.Errorf("invalid api base URL %q: %w", c.APIBaseURL, err)
	}
	switch parsed.Scheme {
	case "http", "https":
	default:
		return fmt.Errorf("invalid api base URL %q (must be http or https)", c.APIBaseURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("invalid api base URL %q (missing host)", c.APIBaseURL)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got: %v", c.Timeout)
	}

	if c.DataDir == "" {
		return fmt.Errorf("data directory is required")
	}

	return nil
}

// EnsureDefaultFile writes a commented config.yaml into dataDir unless one
// already exists.
func EnsureDefaultFile(dataDir string) (string, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}

	path := filepath.Join(dataDir, configFileExt)
	_, err := os.Stat(path)
	if err == nil {
		return path, nil
	}
	if !os.IsNotExist(err) {
		return "", fmt.Errorf("stat config file: %w", err)
	}

	if err := os.WriteFile(path, []byte(defaultConfigYAML), 0600); err != nil {
		return "", fmt.Errorf("write config file: %w", err)
	}
	return path, nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
