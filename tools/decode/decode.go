package decode

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Options customizes Map behavior.
type Options struct {
	// WeaklyTypedInput (default true) tolerates e.g. "123" -> int,
	// 1.0 -> int64, which is what arbitrary JSON payloads produce.
	WeaklyTypedInput bool
}

func DefaultOptions() Options {
	return Options{WeaklyTypedInput: true}
}

// Map decodes a generic map (typically the result of json.Unmarshal
// into map[string]any) into a typed payload T. Struct fields are
// matched by `json` tag.
func Map[T any](m map[string]any, opts ...Options) (*T, error) {
	if m == nil {
		return nil, fmt.Errorf("payload is nil")
	}

	cfg := DefaultOptions()
	if len(opts) > 0 {
		cfg = opts[0]
	}

	var out T
	decCfg := &mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &out,
		WeaklyTypedInput: cfg.WeaklyTypedInput,
	}
	dec, err := mapstructure.NewDecoder(decCfg)
	if err != nil {
		return nil, fmt.Errorf("new decoder: %w", err)
	}
	if err := dec.Decode(m); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return &out, nil
}
