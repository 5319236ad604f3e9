// Package config loads the command line configuration from defaults, an
// optional .env file, CORPUSPREP_* environment variables and flag overrides,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment variable read by Load
const EnvPrefix = "CORPUSPREP_"

// Config is the complete run configuration
type Config struct {
	WorkDir     string `koanf:"work_dir" validate:"required"`
	LexiconPath string `koanf:"lexicon_path"`
	Seed        uint64 `koanf:"seed"`
	Force       bool   `koanf:"force"`

	Chunk    ChunkConfig    `koanf:"chunk"`
	Sentence SentenceConfig `koanf:"sentence"`
	Clean    CleanConfig    `koanf:"clean"`
	OCR      OCRConfig      `koanf:"ocr"`
	Export   ExportConfig   `koanf:"export"`
	Log      LogConfig      `koanf:"log"`
}

// ChunkConfig configures chunk assembly
type ChunkConfig struct {
	TargetWords  int `koanf:"target_words" validate:"gt=0"`
	OverlapWords int `koanf:"overlap_words" validate:"gte=0,ltfield=TargetWords"`
	MinWords     int `koanf:"min_words" validate:"gte=0,ltfield=TargetWords"`
}

// SentenceConfig configures the sentence filter
type SentenceConfig struct {
	MinChars       int     `koanf:"min_chars" validate:"gte=0"`
	MaxSymbolRatio float64 `koanf:"max_symbol_ratio" validate:"gte=0,lte=1"`
}

// CleanConfig configures text cleaning
type CleanConfig struct {
	SplitCaseBoundaries bool `koanf:"split_case_boundaries"`
}

// OCRConfig configures the OCR fallback for scanned PDFs
type OCRConfig struct {
	Enabled         bool   `koanf:"enabled"`
	MinDigitalChars int    `koanf:"min_digital_chars" validate:"gte=0"`
	Language        string `koanf:"language" validate:"required"`
	DPI             int    `koanf:"dpi" validate:"min=72,max=1200"`
}

// ExportConfig configures dataset encoding
type ExportConfig struct {
	Format string `koanf:"format" validate:"oneof=json jsonl"`
}

// LogConfig configures logging
type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `koanf:"json"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		WorkDir: ".",
		Seed:    42,
		Chunk: ChunkConfig{
			TargetWords:  180,
			OverlapWords: 30,
			MinWords:     80,
		},
		Sentence: SentenceConfig{
			MinChars:       40,
			MaxSymbolRatio: 0.25,
		},
		Clean: CleanConfig{
			SplitCaseBoundaries: true,
		},
		OCR: OCRConfig{
			Enabled:         true,
			MinDigitalChars: 1200,
			Language:        "eng",
			DPI:             300,
		},
		Export: ExportConfig{Format: "json"},
		Log:    LogConfig{Level: "info"},
	}
}

// Options controls Load
type Options struct {
	// EnvFile is a dotenv file loaded into the process environment before
	// reading variables. A missing file is ignored.
	EnvFile string

	// Overrides maps koanf paths (e.g. "chunk.target_words") to values that
	// take precedence over every other source
	Overrides map[string]any
}

// Load builds the configuration
func Load(opts Options) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", opts.EnvFile, err)
		}
	}

	envToPath := EnvMappings(k.Keys())
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			if path, ok := envToPath[key]; ok {
				return path, value
			}
			if path, ok := envToPath[EnvPrefix+key]; ok {
				return path, value
			}
			return "", nil
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if len(opts.Overrides) > 0 {
		if err := k.Load(rawMap(opts.Overrides), nil); err != nil {
			return nil, fmt.Errorf("failed to apply overrides: %w", err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &cfg,
			TagName:          "koanf",
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks cfg against its constraints
func Validate(cfg *Config) error {
	return validator.New().Struct(cfg)
}

// EnvMappings maps each environment variable name to its koanf path, e.g.
// CORPUSPREP_CHUNK_TARGET_WORDS to chunk.target_words
func EnvMappings(paths []string) map[string]string {
	out := make(map[string]string, len(paths))
	for _, p := range paths {
		out[EnvName(p)] = p
	}
	return out
}

// EnvName returns the environment variable for a koanf path
func EnvName(path string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(path, ".", "_"))
}

// rawMap is a koanf.Provider adapter for flat map[string]any data keyed by
// dotted paths
type rawMap map[string]any

func (r rawMap) Read() (map[string]any, error) {
	nested := make(map[string]any)
	for key, value := range r {
		parts := strings.Split(key, ".")
		cur := nested
		for _, part := range parts[:len(parts)-1] {
			next, ok := cur[part].(map[string]any)
			if !ok {
				next = make(map[string]any)
				cur[part] = next
			}
			cur = next
		}
		cur[parts[len(parts)-1]] = value
	}
	return nested, nil
}

func (r rawMap) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("ReadBytes not implemented")
}
