package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// PasswordEnv holds the remote console password.
const PasswordEnv = "RCON_PWD"

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
// Variables already set are not overridden. A missing file is ignored.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// Environ returns the process environment as a map.
func Environ() map[string]string {
	env := make(map[string]string)
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 {
			env[pair[0]] = pair[1]
		}
	}
	return env
}

// ApplyEnv fills settings the project file left empty from the environment.
func (p *Project) ApplyEnv(env map[string]string) {
	if p.RCON.Password == "" {
		p.RCON.Password = env[PasswordEnv]
	}
	if p.SocketIO.Password == "" {
		p.SocketIO.Password = env[PasswordEnv]
	}
}

// Validate checks values that would otherwise fail late at runtime.
func (p *Project) Validate() error {
	var errs []error
	switch p.Notifier {
	case NotifierRCON:
	case NotifierSocketIO:
		if p.SocketIO.URL == "" {
			errs = append(errs, fmt.Errorf("socketio.url is required when notifier is %q", NotifierSocketIO))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown notifier %q: must be %q or %q", p.Notifier, NotifierRCON, NotifierSocketIO))
	}
	for _, f := range []struct{ name, value string }{
		{"paths.manifest", p.Paths.Manifest},
		{"paths.source", p.Paths.Source},
		{"paths.output", p.Paths.Output},
		{"paths.descriptor", p.Paths.Descriptor},
	} {
		if f.value == "" {
			errs = append(errs, fmt.Errorf("%s must not be empty", f.name))
		}
	}
	// The descriptor references bundles relative to the resource root.
	if filepath.IsAbs(p.Paths.Output) {
		errs = append(errs, fmt.Errorf("paths.output %q must be relative to the resource root", p.Paths.Output))
	}
	if p.Publish != nil && p.Publish.Bucket == "" {
		errs = append(errs, fmt.Errorf("publish.bucket is required"))
	}
	return errors.Join(errs...)
}
