package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	defaultPath         = "."
	defaultServiceName  = "PeerBackupService"
	defaultStorePath    = "peerbackup.db"
	defaultBusyTimeout  = 5 * time.Second
	defaultMaxOpenConns = 1
	defaultAdminName    = "admin"
	defaultAdminPass    = "admin"
	defaultNonceLength  = 8
	defaultReportBuffer = 16
	defaultStopTimeout  = 10 * time.Second
	defaultSinkPrefix   = "PeerBackup"

	// SinkConsole renders reports on stdout for interactive runs.
	SinkConsole = "console"
	// SinkEventLog renders reports through the structured service log.
	SinkEventLog = "eventlog"
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName" validate:"required"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	Store StoreConfig `json:"store" yaml:"store"`

	Bootstrap BootstrapConfig `json:"bootstrap" yaml:"bootstrap"`

	Worker WorkerConfig `json:"worker" yaml:"worker"`

	Sink SinkConfig `json:"sink" yaml:"sink"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// StoreConfig locates the SQLite credential store.
type StoreConfig struct {
	Path         string        `json:"path" yaml:"path" validate:"required"`
	BusyTimeout  time.Duration `json:"busyTimeout" yaml:"busyTimeout" validate:"min=0"`
	MaxOpenConns int           `json:"maxOpenConns" yaml:"maxOpenConns" validate:"min=1"`
}

// BootstrapConfig holds the values written when a fresh store is formatted.
type BootstrapConfig struct {
	AdminName     string `json:"adminName" yaml:"adminName" validate:"required,ne=sys"`
	AdminPassword string `json:"adminPassword" yaml:"adminPassword" validate:"required"`
	AdminEmail    string `json:"adminEmail" yaml:"adminEmail"`
	NonceLength   int    `json:"nonceLength" yaml:"nonceLength" validate:"min=1,max=256"`
	// AdminPipeName is generated at format time when empty.
	AdminPipeName string `json:"adminPipeName" yaml:"adminPipeName"`
}

// WorkerConfig tunes the background worker and its report channel.
type WorkerConfig struct {
	ReportBuffer int           `json:"reportBuffer" yaml:"reportBuffer" validate:"min=1"`
	StopTimeout  time.Duration `json:"stopTimeout" yaml:"stopTimeout" validate:"min=0"`
}

// SinkConfig selects where worker reports are rendered.
type SinkConfig struct {
	Mode   string `json:"mode" yaml:"mode" validate:"oneof=console eventlog"`
	Prefix string `json:"prefix" yaml:"prefix"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			searchPaths = append(searchPaths, filepath.Join(pwd, path))
		}
	}

	var configFile string
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate

			break
		}
	}

	// A missing file is not fatal: defaults plus environment are enough to run the service.
	if configFile != "" {
		if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "read %s config failed", currEnv)
		}
	}

	existingConfigMap := koanfInstance.Raw()

	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// STORE_BUSYTIMEOUT -> store.busyTimeout
			return canonicalizeEnvKey(k, existingConfigMap), v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyDefaults fills every zero-valued setting that has a sensible default.
func (c *Config) ApplyDefaults() {
	if strings.TrimSpace(c.Env.ServiceName) == "" {
		c.Env.ServiceName = defaultServiceName
	}
	if c.Env.Log.Level == "" {
		c.Env.Log.Level = "info"
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		c.Store.Path = defaultStorePath
	}
	if c.Store.BusyTimeout == 0 {
		c.Store.BusyTimeout = defaultBusyTimeout
	}
	if c.Store.MaxOpenConns == 0 {
		c.Store.MaxOpenConns = defaultMaxOpenConns
	}
	if c.Bootstrap.AdminName == "" {
		c.Bootstrap.AdminName = defaultAdminName
	}
	if c.Bootstrap.AdminPassword == "" {
		c.Bootstrap.AdminPassword = defaultAdminPass
	}
	if c.Bootstrap.NonceLength == 0 {
		c.Bootstrap.NonceLength = defaultNonceLength
	}
	if c.Worker.ReportBuffer == 0 {
		c.Worker.ReportBuffer = defaultReportBuffer
	}
	if c.Worker.StopTimeout == 0 {
		c.Worker.StopTimeout = defaultStopTimeout
	}
	if c.Sink.Mode == "" {
		c.Sink.Mode = SinkConsole
	}
	if c.Sink.Prefix == "" {
		c.Sink.Prefix = defaultSinkPrefix
	}
}

// Validate checks the struct tags of the whole configuration tree.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	return nil
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
