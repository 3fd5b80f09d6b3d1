package env

import (
	"fmt"

	envparse "github.com/caarlos0/env/v11"
)

// ParseEnv fills target from the process environment using `env` struct tags.
func ParseEnv(target any) error {
	if err := envparse.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
