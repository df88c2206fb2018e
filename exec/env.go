package exec

import (
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// ComposeEnv layers the process environment, the global config env and the
// per-target env, later layers winning.
func ComposeEnv(base []string, global, target map[string]string) []string {
	if base == nil {
		base = os.Environ()
	}

	overrides := make([]string, 0, len(global)+len(target))
	for k, v := range global {
		overrides = append(overrides, k+"="+v)
	}
	for k, v := range target {
		overrides = append(overrides, k+"="+v)
	}

	return MergeEnv(base, overrides)
}

func LoadEnvFile(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read env file %s", path)
	}
	return vars, nil
}

// ApplyEnvFile exports every variable of the env file into the current
// process so drivers spawned by automation libraries inherit them.
func ApplyEnvFile(path string) (map[string]string, error) {
	vars, err := LoadEnvFile(path)
	if err != nil {
		return nil, err
	}
	for k, v := range vars {
		if err = os.Setenv(k, v); err != nil {
			return nil, errors.Wrapf(err, "failed to export %s", k)
		}
	}
	return vars, nil
}

func MergeEnv(base, override []string) []string {
	envMap := make(map[string]string)

	for _, e := range base {
		idx := strings.Index(e, "=")
		if idx != -1 {
			envMap[e[:idx]] = e[idx+1:]
		}
	}

	for _, e := range override {
		idx := strings.Index(e, "=")
		if idx != -1 {
			envMap[e[:idx]] = e[idx+1:]
		}
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	sort.Strings(result)

	return result
}

// LookupEnv finds key in env. An empty value counts as unset.
func LookupEnv(env []string, key string) (string, bool) {
	value, found := "", false
	prefix := key + "="
	for _, e := range env {
		if strings.HasPrefix(e, prefix) {
			value, found = e[len(prefix):], true
		}
	}
	if !found || value == "" {
		return "", false
	}
	return value, true
}
