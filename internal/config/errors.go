package config

import "github.com/pkg/errors"

// newConfigError reports an inconsistent-flag failure (spec §7
// ConfigError): e.g. --smus paired with a bias that can't drive a
// cardinality Map, or SMT input requested from stdin.
func newConfigError(format string, args ...interface{}) error {
	return errors.Errorf("config: "+format, args...)
}
