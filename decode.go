package configtpl

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Decode copies a built configuration into out, which must be a pointer.
// Struct fields are matched by their yaml tag, falling back to the field
// name. Scalars are weakly typed, so "8080" decodes into an int field and
// "30s" into a time.Duration.
func Decode(value map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "yaml",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if err := dec.Decode(value); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
