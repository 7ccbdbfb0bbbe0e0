package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/goodocy/android-store/internal/keycodec"
	"github.com/goodocy/android-store/internal/logging"
)

const defaultDir = "~/.android-store"

type Config struct {
	Store   StoreConfig   `toml:"store"`
	Codec   CodecConfig   `toml:"codec"`
	Logging LoggingConfig `toml:"logging"`
}

type StoreConfig struct {
	DataDir string `toml:"data_dir"`
	File    string `toml:"file"`
	Bucket  string `toml:"bucket"`
}

// CodecConfig selects how item identities are obscured before they are
// written. Secret and SecretFile are mutually exclusive; when both are
// empty the CLI prompts for a secret. Salt pins the key derivation salt;
// when empty the store's installation id is used.
type CodecConfig struct {
	Mode       string `toml:"mode"`
	Secret     string `toml:"secret"`
	SecretFile string `toml:"secret_file"`
	Salt       string `toml:"salt"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Defaults returns a Config with sane defaults.
func Defaults() *Config {
	return &Config{
		Store: StoreConfig{
			DataDir: defaultDir,
			File:    "ownership.db",
			Bucket:  "nonconsumable",
		},
		Codec: CodecConfig{
			Mode: keycodec.ModeNone,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a TOML config file and returns the parsed Config.
// If path is empty, the default location is tried and defaults are
// returned when it does not exist.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path == "" {
		path = expandHome(defaultDir + "/config.toml")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Store.DataDir) == "" {
		errs = append(errs, errors.New("store.data_dir is empty"))
	}
	if strings.TrimSpace(c.Store.File) == "" {
		errs = append(errs, errors.New("store.file is empty"))
	}
	switch strings.TrimSpace(c.Store.Bucket) {
	case "":
		errs = append(errs, errors.New("store.bucket is empty"))
	case keycodec.MetaBucket:
		errs = append(errs, fmt.Errorf("store.bucket %q is reserved", keycodec.MetaBucket))
	}

	switch strings.ToLower(c.Codec.Mode) {
	case "", keycodec.ModeNone, keycodec.ModeHash, keycodec.ModeSeal:
	default:
		errs = append(errs, fmt.Errorf("codec.mode %q: want none, hash or seal", c.Codec.Mode))
	}
	if c.Codec.Secret != "" && c.Codec.SecretFile != "" {
		errs = append(errs, errors.New("codec.secret and codec.secret_file are mutually exclusive"))
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q: want text or json", c.Logging.Format))
	}

	return errors.Join(errs...)
}

// CodecEnabled reports whether identities are obscured.
func (c *Config) CodecEnabled() bool {
	m := strings.ToLower(c.Codec.Mode)
	return m != "" && m != keycodec.ModeNone
}

// StorePath returns the database path with ~ expanded.
func (c *Config) StorePath() string {
	return filepath.Join(expandHome(c.Store.DataDir), c.Store.File)
}

// LoadSecret returns the codec secret from Secret or SecretFile.
// It returns nil, nil when neither is set. Trailing newlines in the file
// are ignored.
func (c *Config) LoadSecret() ([]byte, error) {
	if c.Codec.Secret != "" {
		return []byte(c.Codec.Secret), nil
	}
	if c.Codec.SecretFile == "" {
		return nil, nil
	}
	data, err := os.ReadFile(expandHome(c.Codec.SecretFile))
	if err != nil {
		return nil, fmt.Errorf("reading codec secret: %w", err)
	}
	secret := []byte(strings.TrimRight(string(data), "\r\n"))
	if len(secret) == 0 {
		return nil, fmt.Errorf("codec secret file %s is empty", c.Codec.SecretFile)
	}
	return secret, nil
}

// ExpandHome resolves a leading ~/ to the user's home directory.
func ExpandHome(path string) string {
	return expandHome(path)
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
