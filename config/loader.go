package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/inhies/go-bytesize"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
)

var ErrConfiguration = errors.New("configuration error")

type loader struct {
	o opts
}

func newLoader(options ...Option) *loader {
	l := &loader{o: opts{envPrefix: defaultEnvPrefix}}

	for _, opt := range options {
		opt(&l.o)
	}

	return l
}

func (l *loader) load(config any) error {
	parser, err := koanfFromStruct(config)
	if err != nil {
		return err
	}

	if len(l.o.configFile) != 0 {
		if err := l.loadYaml(parser); err != nil {
			return err
		}
	}

	if err := l.loadEnv(parser); err != nil {
		return err
	}

	hooks := append([]mapstructure.DecodeHookFunc{
		byteSizeDecodeHookFunc,
		logLevelDecodeHookFunc,
		logFormatDecodeHookFunc,
	}, l.o.decodeHooks...)

	if err := parser.UnmarshalWithConf("", config, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook:       mapstructure.ComposeDecodeHookFunc(hooks...),
			Result:           config,
			WeaklyTypedInput: true,
		},
	}); err != nil {
		return fmt.Errorf("%w: decoding failed: %w", ErrConfiguration, err)
	}

	return nil
}

func (l *loader) loadYaml(parser *koanf.Koanf) error {
	raw, err := os.ReadFile(l.o.configFile)
	if err != nil {
		return fmt.Errorf("%w: failed to read %s: %w", ErrConfiguration, l.o.configFile, err)
	}

	if err := parser.Load(rawbytes.Provider(raw), yaml.Parser()); err != nil {
		return fmt.Errorf("%w: failed to load yaml config from %s: %w", ErrConfiguration, l.o.configFile, err)
	}

	return nil
}

// loadEnv maps ENUMFORM_LIMITS_FORM to limits.form. A double underscore stands
// for an underscore within a key.
func (l *loader) loadEnv(parser *koanf.Koanf) error {
	prefix := l.o.envPrefix

	provider := env.Provider(".", env.Opt{
		Prefix: prefix,
		TransformFunc: func(key, val string) (string, any) {
			tmp := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, prefix)), "__", `\:\`)
			tmp = strings.ReplaceAll(tmp, "_", ".")

			return strings.ReplaceAll(tmp, `\:\`, "_"), val
		},
	})

	if err := parser.Load(provider, nil); err != nil {
		return fmt.Errorf("%w: failed to parse environment variables: %w", ErrConfiguration, err)
	}

	return nil
}

func koanfFromStruct(s any) (*koanf.Koanf, error) {
	parser := koanf.New(".")

	if err := parser.Load(structs.Provider(s, "koanf"), nil); err != nil {
		return nil, err
	}

	keys := parser.Keys()
	// Assert all keys are lowercase
	for i := 0; i < len(keys); i++ {
		if !isLower(keys[i]) {
			return nil, fmt.Errorf("%w: field %s does not have lowercase key, use the `koanf` tag",
				ErrConfiguration, keys[i])
		}
	}

	return parser, nil
}

func isLower(s string) bool {
	for _, r := range s {
		if !unicode.IsLower(r) && unicode.IsLetter(r) {
			return false
		}
	}

	return true
}

func byteSizeDecodeHookFunc(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(bytesize.ByteSize(0)) {
		return data, nil
	}

	size, err := bytesize.Parse(data.(string))
	if err != nil {
		return nil, err
	}

	return size, nil
}

func logLevelDecodeHookFunc(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(zerolog.Level(0)) {
		return data, nil
	}

	level, err := zerolog.ParseLevel(data.(string))
	if err != nil {
		return zerolog.InfoLevel, nil //nolint:nilerr
	}

	return level, nil
}

func logFormatDecodeHookFunc(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(LogFormat(0)) {
		return data, nil
	}

	if data == "json" {
		return LogJSONFormat, nil
	}

	return LogTextFormat, nil
}
