package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

var ErrMissingEnv = errors.New("missing required env")

// exit is swapped in tests.
var exit = os.Exit

func RequireNonEmpty(value, envName string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w %s", ErrMissingEnv, envName)
	}
	return nil
}

// Must logs err through the default slog logger and exits when it is non-nil.
func Must(err error) {
	if err != nil {
		slog.Error("config_invalid", "error", err)
		exit(1)
	}
}

func MustNonEmpty(value, envName string) {
	Must(RequireNonEmpty(value, envName))
}

func MustNonEmptyBytes(value []byte, envName string) {
	Must(RequireNonEmpty(string(value), envName))
}
