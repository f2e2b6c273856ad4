// Package config loads the bridge settings and the shared authorization key.
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/Macmod/go-soda/soap"
)

var logger = loggo.GetLogger("soda.config")

const (
	DefaultKeyFile    = "~/.kxmlrpcd"
	DefaultMaxKeySize = 256
	DefaultLogging    = "<root>=WARNING"
)

// Config is the on-disk bridge configuration.
type Config struct {
	KeyFile              string `toml:"key_file"`
	MaxKeySize           int64  `toml:"max_key_size"`
	TrimKey              bool   `toml:"trim_key"`
	AllowUnauthenticated bool   `toml:"allow_unauthenticated"`
	StrictNumbers        bool   `toml:"strict_numbers"`
	Logging              string `toml:"logging"`
}

func Default() *Config {
	return &Config{
		KeyFile:    DefaultKeyFile,
		MaxKeySize: DefaultMaxKeySize,
		Logging:    DefaultLogging,
	}
}

// Load reads a TOML file over the defaults. Unknown keys are logged, not
// rejected.
func Load(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if os.IsNotExist(errors.Cause(err)) {
		return nil, errors.NotFoundf("config file %q", path)
	}
	if err != nil {
		return nil, errors.Annotatef(err, "reading %s", path)
	}
	for _, key := range md.Undecoded() {
		logger.Warningf("unknown config field %q in %s", key.String(), path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Annotatef(err, "in %s", path)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.KeyFile) == "" {
		return errors.NotValidf("empty key_file")
	}
	if c.MaxKeySize <= 0 {
		return errors.NotValidf("max_key_size %d", c.MaxKeySize)
	}
	return nil
}

// SessionOptions translates the policy switches into soap options.
func (c *Config) SessionOptions() []soap.Option {
	var opts []soap.Option
	if c.AllowUnauthenticated {
		opts = append(opts, soap.WithUnauthenticated())
	}
	if c.StrictNumbers {
		opts = append(opts, soap.WithStrictNumbers())
	}
	return opts
}

// LoadKey reads the key file named by the config.
func (c *Config) LoadKey() ([]byte, error) {
	path, err := ExpandHome(c.KeyFile)
	if err != nil {
		return nil, errors.Trace(err)
	}
	key, err := LoadSecret(path, c.MaxKeySize)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if c.TrimKey {
		key = bytes.TrimRight(key, "\r\n")
	}
	if len(key) == 0 {
		return nil, errors.NotValidf("empty key file %q", path)
	}
	return key, nil
}

// LoadSecret reads a shared secret, refusing files larger than max bytes
// or empty ones. The content is returned verbatim.
func LoadSecret(path string, max int64) ([]byte, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.NotFoundf("key file %q", path)
	}
	if err != nil {
		return nil, errors.Annotate(err, "opening key file")
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.Annotate(err, "opening key file")
	}
	if info.Size() > max {
		return nil, errors.NotValidf("key file %q larger than %d bytes", path, max)
	}

	// Read one byte past the cap in case the file grew after Stat.
	key, err := io.ReadAll(io.LimitReader(f, max+1))
	if err != nil {
		return nil, errors.Annotate(err, "reading key file")
	}
	if int64(len(key)) > max {
		return nil, errors.NotValidf("key file %q larger than %d bytes", path, max)
	}
	if len(key) == 0 {
		return nil, errors.NotValidf("empty key file %q", path)
	}
	return key, nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Annotate(err, "expanding ~")
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
