package config

import (
	"fmt"
	"strings"
)

// Flag is a boolean setting that also accepts yes/no and on/off.
type Flag bool

func (f *Flag) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "1", "true", "yes", "on":
		*f = true
	case "0", "false", "no", "off":
		*f = false
	default:
		return fmt.Errorf("invalid boolean value %q", string(text))
	}
	return nil
}

func (f Flag) Bool() bool { return bool(f) }
