package config

import (
	"errors"
	"fmt"
	"github.com/joho/godotenv"
	"io/fs"
	"os"
	"strings"
)

// ErrSecretMissing is returned when a required secret is not set.
var ErrSecretMissing = errors.New("secret not set")

// LoadEnvFile merges a dotenv file into the process environment. Variables
// already present in the environment win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if len(path) == 0 {
		return nil
	}
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Secret resolves a secret from the environment.
func Secret(name string) (string, error) {
	value := strings.TrimSpace(os.Getenv(name))
	if len(value) == 0 {
		return "", fmt.Errorf("%w: %s", ErrSecretMissing, name)
	}
	return value, nil
}
