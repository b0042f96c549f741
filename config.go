package altvote

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/fatih/structs"
	"github.com/koding/multiconfig"
	"github.com/rs/zerolog"
)

// DefaultCandidates is the roster used when none is configured.
var DefaultCandidates = []string{"Cameron", "Corbyn", "Farron", "Sturgeon"}

// Config uses the multiconfig loader and validators to store configuration
// values required to count an election. Configuration can be stored as a
// JSON, TOML, or YAML file in the current working directory as altvote.json,
// in the user's home directory as .altvote.json or in /etc/altvote.json (with
// the extension of the file format of choice). Configuration can also be
// added from the environment using environment variables prefixed with
// $ALTVOTE_ and the all caps version of the configuration name.
type Config struct {
	Candidates []string `required:"false" json:"candidates"`                   // ordered candidate roster, DefaultCandidates if empty
	Seed       int64    `required:"false" json:"seed"`                         // random seed for tie-break elimination, time based if zero
	LogLevel   string   `default:"info" validate:"loglevel" json:"log_level"` // minimum level of log messages
	Ballots    string   `required:"false" validate:"file" json:"ballots"`     // ballot file to load before counting
	Metrics    string   `required:"false" validate:"path" json:"metrics"`     // location to append tally metrics to
}

// Load the configuration from default values, then from a configuration file,
// and finally from the environment. Validate the configuration when loaded.
func (c *Config) Load() error {
	loaders := []multiconfig.Loader{}

	// Read default values defined via tag fields "default"
	loaders = append(loaders, &multiconfig.TagLoader{})

	// Find the config path and the appropriate file loader
	if path, err := c.GetPath(); err == nil {
		if strings.HasSuffix(path, "toml") {
			loaders = append(loaders, &multiconfig.TOMLLoader{Path: path})
		}

		if strings.HasSuffix(path, "json") {
			loaders = append(loaders, &multiconfig.JSONLoader{Path: path})
		}

		if strings.HasSuffix(path, "yml") || strings.HasSuffix(path, "yaml") {
			loaders = append(loaders, &multiconfig.YAMLLoader{Path: path})
		}

	}

	// Load the environment variable loader
	env := &multiconfig.EnvironmentLoader{Prefix: "ALTVOTE", CamelCase: true}
	loaders = append(loaders, env)

	loader := multiconfig.MultiLoader(loaders...)
	if err := loader.Load(c); err != nil {
		return err
	}

	return c.Validate()
}

// LoadConfig loads the configuration from defaults, disk and the environment
// and then updates it with the non-zero values of options.
func LoadConfig(options *Config) (*Config, error) {
	config := new(Config)
	if err := config.Load(); err != nil {
		return nil, err
	}

	if err := config.Update(options); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate the loaded configuration using the multiconfig multi validator.
func (c *Config) Validate() error {
	validators := multiconfig.MultiValidator(
		&multiconfig.RequiredValidator{},
		&ComplexValidator{},
	)

	if err := validators.Validate(c); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(c.Candidates))
	for _, name := range c.Candidates {
		if strings.TrimSpace(name) == "" {
			return errors.New("candidate names cannot be empty")
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("candidate %q is listed twice", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// Update the configuration from another configuration struct
func (c *Config) Update(o *Config) error {
	if o == nil {
		return nil
	}

	conf := structs.New(c)

	// Then update the current config with values from the other config
	for _, field := range structs.Fields(o) {
		if !field.IsZero() {
			updateField := conf.Field(field.Name())
			if err := updateField.Set(field.Value()); err != nil {
				return err
			}
		}
	}

	return c.Validate()
}

// GetCandidates returns the configured roster or the default roster.
func (c *Config) GetCandidates() []string {
	if len(c.Candidates) == 0 {
		candidates := make([]string, len(DefaultCandidates))
		copy(candidates, DefaultCandidates)
		return candidates
	}
	return c.Candidates
}

// GetSeed returns the configured random seed or a time based seed if unset.
func (c *Config) GetSeed() int64 {
	if c.Seed == 0 {
		return time.Now().UnixNano()
	}
	return c.Seed
}

// GetLogLevel parses the log level, defaulting to info if it isn't set.
func (c *Config) GetLogLevel() zerolog.Level {
	if c.LogLevel == "" {
		return zerolog.InfoLevel
	}

	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// GetPath searches possible configuration paths returning the first path it
// finds; this path is used when loading the configuration from disk. An
// error is returned if no configuration file exists.
func (c *Config) GetPath() (string, error) {
	// Prepare PATH list
	paths := make([]string, 0, 3)

	// Look in CWD directory first
	if path, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(path, "altvote"))
	}

	// Look in user's home directory next
	if user, err := user.Current(); err == nil {
		paths = append(paths, filepath.Join(user.HomeDir, ".altvote"))
	}

	// Finally look in etc for the global configuration
	paths = append(paths, "/etc/altvote")

	for _, path := range paths {
		for _, ext := range []string{".toml", ".json", ".yml", ".yaml"} {
			fpath := path + ext
			if _, err := os.Stat(fpath); !os.IsNotExist(err) {
				return fpath, nil
			}
		}
	}

	return "", errors.New("no configuration file found")
}

//===========================================================================
// Validators
//===========================================================================

// ComplexValidator validates complex types that multiconfig doesn't understand
type ComplexValidator struct {
	TagName string
}

// Validate implements the multiconfig.Validator interface.
func (v *ComplexValidator) Validate(s interface{}) error {
	if v.TagName == "" {
		v.TagName = "validate"
	}

	for _, field := range structs.Fields(s) {
		if err := v.processField("", field); err != nil {
			return err
		}
	}

	return nil
}

func (v *ComplexValidator) processField(fieldName string, field *structs.Field) error {
	fieldName += field.Name()
	switch field.Kind() {
	case reflect.Struct:
		fieldName += "."
		for _, f := range field.Fields() {
			if err := v.processField(fieldName, f); err != nil {
				return err
			}
		}
	default:
		if field.IsZero() {
			return nil
		}

		switch strings.ToLower(field.Tag(v.TagName)) {
		case "":
			return nil
		case "loglevel":
			return v.processLogLevelField(fieldName, field)
		case "file":
			return v.processFileField(fieldName, field)
		case "path":
			return v.processPathField(fieldName, field)
		default:
			return fmt.Errorf("cannot validate type '%s'", field.Tag(v.TagName))
		}

	}

	return nil
}

func (v *ComplexValidator) processLogLevelField(fieldName string, field *structs.Field) error {
	if _, err := zerolog.ParseLevel(strings.ToLower(field.Value().(string))); err != nil {
		return fmt.Errorf("could not validate %s: %s", fieldName, err.Error())
	}
	return nil
}

// A file must exist and must not be a directory.
func (v *ComplexValidator) processFileField(fieldName string, field *structs.Field) error {
	info, err := os.Stat(field.Value().(string))
	if err != nil {
		return fmt.Errorf("could not validate %s: %s", fieldName, err.Error())
	}

	if info.IsDir() {
		return fmt.Errorf("could not validate %s: %s is a directory", fieldName, info.Name())
	}
	return nil
}

// A path may not exist yet but its directory must.
func (v *ComplexValidator) processPathField(fieldName string, field *structs.Field) error {
	path := field.Value().(string)
	info, err := os.Stat(filepath.Dir(path))
	if err != nil {
		return fmt.Errorf("could not validate %s: %s", fieldName, err.Error())
	}

	if !info.IsDir() {
		return fmt.Errorf("could not validate %s: %s is not a directory", fieldName, filepath.Dir(path))
	}
	return nil
}
