// =============================================================================
// IVA Book Reconciler - Configuration Module
// =============================================================================
//
// This module loads the application configuration.
//
// SOURCES (later ones win):
//   1. Built-in defaults (applyMainConfigDefaults)
//   2. The YAML file (config.yaml), optional
//   3. AFIP_* environment variables, optionally loaded from a .env file,
//      for the document validator credentials and pacing
//
// The loaded configuration is checked with struct tags before use.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY AND LOGGING SETTINGS
	// =========================================================================

	// OutputDir receives the patched book, reports and patch-miss logs when
	// the command line does not name another directory.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// LogFile is the daily log file pattern. "{date}" becomes DD-MM-YYYY.
	// Default: "./logs/ivarecon_{date}.log"
	LogFile string `yaml:"log_file"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`

	// =========================================================================
	// RECONCILIATION SETTINGS
	// =========================================================================

	// Encoding is the charset of the book files.
	// Default: "ISO-8859-1"
	Encoding string `yaml:"encoding"`

	// Threshold is the largest tolerated gap between the computed and the
	// declared total of a line.
	// Default: 1.0
	Threshold *float64 `yaml:"threshold" validate:"required,gte=0"`

	// CompareField is the declared-total field of the invoice book.
	// Default: 9
	CompareField int `yaml:"compare_field" validate:"min=1"`

	// DocumentField is the counterpart tax-ID field of the invoice book.
	// Default: 7
	DocumentField int `yaml:"document_field" validate:"min=1"`

	GenericIDs GenericIDsConfig `yaml:"generic_ids"`

	Report ReportConfig `yaml:"report"`

	Validator ValidatorConfig `yaml:"validator"`
}

// GenericIDsConfig holds the placeholder IDs written over flagged documents.
type GenericIDsConfig struct {
	// Default: "30000000007"
	LegalEntity string `yaml:"legal_entity" validate:"numeric,len=11"`

	// Default: "20222222223"
	NaturalPerson string `yaml:"natural_person" validate:"numeric,len=11"`
}

// ReportConfig controls the reports written after each run.
type ReportConfig struct {
	// Formats lists the report writers to run.
	// Valid values: "json", "xlsx"
	// Default: ["json"]
	Formats []string `yaml:"formats" validate:"min=1,dive,oneof=json xlsx"`

	// FileNameFormat is the report name without extension.
	// Placeholders: {datetime}, {timestamp}, {date}, {time}, {uuid}
	// Default: "final_report_{datetime}"
	FileNameFormat string `yaml:"file_name_format" validate:"required"`

	// IncludeSummary adds the merged line data to the report.
	// Default: false
	IncludeSummary bool `yaml:"include_summary"`
}

// ValidatorConfig configures the document validator.
type ValidatorConfig struct {
	// Provider selects the validator. A comma-separated list such as
	// "afip,checksum" chains several and flags the union of their results.
	// Valid values: "afip", "checksum", "none"
	// Default: "afip"
	Provider string `yaml:"provider" validate:"providers"`

	// The fields below only apply to the "afip" provider and can be
	// overridden by the AFIP_* environment variables.
	BaseURL           string        `yaml:"base_url" validate:"omitempty,url"`
	Username          string        `yaml:"username"`
	Password          string        `yaml:"password"`
	ChunkSize         int           `yaml:"chunk_size" validate:"gte=0"`
	MaxCalls          int           `yaml:"max_calls" validate:"gte=0"`
	PauseDuration     time.Duration `yaml:"pause_duration" validate:"gte=0"`
	MaxRetries        int           `yaml:"max_retries" validate:"gte=0"`
	RetryDelay        time.Duration `yaml:"retry_delay" validate:"gte=0"`
	Timeout           time.Duration `yaml:"timeout" validate:"gte=0"`
	ServicesAvailable []string      `yaml:"services_available"`
	ErrorKeys         []string      `yaml:"error_keys"`
	ErrorMessages     []string      `yaml:"error_messages"`
}

// =============================================================================
// LOADING
// =============================================================================

// LoadMainConfig reads configPath, falling back to defaults when the file
// does not exist, then applies the environment overrides.
//
// PARAMETERS:
//   - configPath: the YAML file. May be empty.
//   - envFile: a .env file loaded into the environment first. A missing file
//     is ignored. May be empty.
func LoadMainConfig(configPath, envFile string) (*MainConfig, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	var config MainConfig

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// Defaults only.
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	applyMainConfigDefaults(&config)

	if err := applyEnvOverrides(&config.Validator, os.LookupEnv); err != nil {
		return nil, err
	}

	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Default returns the configuration used when no file is present.
func Default() *MainConfig {
	var config MainConfig
	applyMainConfigDefaults(&config)
	return &config
}

// applyMainConfigDefaults fills every unset field.
func applyMainConfigDefaults(config *MainConfig) {
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.LogFile == "" {
		config.LogFile = "./logs/ivarecon_{date}.log"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.Encoding == "" {
		config.Encoding = "ISO-8859-1"
	}
	if config.Threshold == nil {
		threshold := 1.0
		config.Threshold = &threshold
	}
	if config.CompareField == 0 {
		config.CompareField = 9
	}
	if config.DocumentField == 0 {
		config.DocumentField = 7
	}
	if config.GenericIDs.LegalEntity == "" {
		config.GenericIDs.LegalEntity = "30000000007"
	}
	if config.GenericIDs.NaturalPerson == "" {
		config.GenericIDs.NaturalPerson = "20222222223"
	}
	if len(config.Report.Formats) == 0 {
		config.Report.Formats = []string{"json"}
	}
	if config.Report.FileNameFormat == "" {
		config.Report.FileNameFormat = "final_report_{datetime}"
	}
	if config.Validator.Provider == "" {
		config.Validator.Provider = "afip"
	}
	if config.Validator.ChunkSize == 0 {
		config.Validator.ChunkSize = 100
	}
	if config.Validator.Timeout == 0 {
		config.Validator.Timeout = 30 * time.Second
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// applyEnvOverrides copies the AFIP_* variables into v. Durations accept
// either a plain number of seconds or a Go duration ("1m30s").
func applyEnvOverrides(v *ValidatorConfig, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"AFIP_BASE_URL": &v.BaseURL,
		"AFIP_USERNAME": &v.Username,
		"AFIP_PASSWORD": &v.Password,
	}
	for key, target := range strs {
		if value, ok := lookup(key); ok && value != "" {
			*target = value
		}
	}

	ints := map[string]*int{
		"AFIP_CHUNK_SIZE":  &v.ChunkSize,
		"AFIP_MAX_CALLS":   &v.MaxCalls,
		"AFIP_MAX_RETRIES": &v.MaxRetries,
	}
	for key, target := range ints {
		value, ok := lookup(key)
		if !ok || value == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, value, err)
		}
		*target = n
	}

	durations := map[string]*time.Duration{
		"AFIP_PAUSE_DURATION": &v.PauseDuration,
		"AFIP_RETRY_DELAY":    &v.RetryDelay,
	}
	for key, target := range durations {
		value, ok := lookup(key)
		if !ok || value == "" {
			continue
		}
		d, err := parseSeconds(value)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, value, err)
		}
		*target = d
	}

	if value, ok := lookup("AFIP_SERVICES_AVAILABLE"); ok && value != "" {
		v.ServicesAvailable = nil
		for _, s := range strings.Split(value, ",") {
			if s = strings.TrimSpace(s); s != "" {
				v.ServicesAvailable = append(v.ServicesAvailable, s)
			}
		}
	}

	return nil
}

func parseSeconds(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(value)
}

// =============================================================================
// VALIDATION
// =============================================================================

var validate = newValidate()

// knownProviders are the names accepted by the "providers" tag.
var knownProviders = map[string]bool{"afip": true, "checksum": true, "none": true}

func newValidate() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("providers", func(fl validator.FieldLevel) bool {
		names := SplitProviders(fl.Field().String())
		if len(names) == 0 {
			return false
		}
		for _, name := range names {
			if !knownProviders[name] {
				return false
			}
		}
		return true
	})
	return v
}

// SplitProviders splits a provider list on commas, dropping blanks.
func SplitProviders(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks config against its struct tags.
func Validate(config *MainConfig) error {
	if err := validate.Struct(config); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}
