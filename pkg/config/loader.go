package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// cache keeps one parsed copy per configuration type.
var cache = struct {
	sync.Mutex
	values map[reflect.Type]any
}{values: make(map[reflect.Type]any)}

var dotenvOnce sync.Once

func loadDotenv() {
	dotenvOnce.Do(func() {
		// The .env file is optional.
		_ = godotenv.Load()
	})
}

// Load parses environment variables (and a .env file in the working directory,
// if any) into v using `env` struct tags. Each configuration type is parsed once
// per process; later calls are served from a cache.
//
//	var cfg tenantdb.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	loadDotenv()

	key := reflect.TypeFor[T]()

	cache.Lock()
	defer cache.Unlock()

	if cached, ok := cache.values[key]; ok {
		*v = cached.(T)
		return nil
	}
	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	cache.values[key] = *v
	return nil
}

// MustLoad works like Load but panics if configuration loading fails.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

// LoadYAML decodes the YAML file at path into v and then applies environment
// overrides, so precedence is defaults < file < environment. Results are not cached.
func LoadYAML[T any](path string, v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	loadDotenv()

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Join(ErrReadingFile, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return errors.Join(ErrReadingFile, fmt.Errorf("%s: %w", path, err))
	}
	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// Reset drops every cached configuration. Intended for tests.
func Reset() {
	cache.Lock()
	defer cache.Unlock()
	clear(cache.values)
}
