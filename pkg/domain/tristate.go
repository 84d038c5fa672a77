package domain

import (
	"fmt"
	"strings"
)

// TriState is a boolean option that distinguishes "never set" from an explicit
// true or false. The skip-preparation option needs all three states: an explicit
// false overrides the skip-tests shorthand, while an unset value defers to it.
type TriState int

const (
	TriUnset TriState = iota
	TriTrue
	TriFalse
)

func (t TriState) String() string {
	switch t {
	case TriTrue:
		return "true"
	case TriFalse:
		return "false"
	default:
		return "unset"
	}
}

// ParseTriState converts a textual option value into a TriState. The empty
// string and "unset" map to TriUnset so that absent flags and cleared
// environment variables behave identically.
func ParseTriState(s string) (TriState, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unset":
		return TriUnset, nil
	case "true", "yes", "on", "1":
		return TriTrue, nil
	case "false", "no", "off", "0":
		return TriFalse, nil
	default:
		return TriUnset, fmt.Errorf("invalid tri-state value %q (want true, false or unset)", s)
	}
}

// UnmarshalYAML accepts booleans, tri-state strings and null. Absent keys never
// reach this method, so they keep the zero value TriUnset. The legacy callback
// signature is used deliberately: it keeps this package free of yaml imports.
func (t *TriState) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw interface{}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*t = TriUnset
	case bool:
		if v {
			*t = TriTrue
		} else {
			*t = TriFalse
		}
	case string:
		parsed, err := ParseTriState(v)
		if err != nil {
			return err
		}
		*t = parsed
	default:
		return fmt.Errorf("invalid tri-state value %v (want true, false or unset)", raw)
	}
	return nil
}

// MarshalYAML renders explicit values as booleans and unset as null.
func (t TriState) MarshalYAML() (interface{}, error) {
	if t == TriUnset {
		return nil, nil
	}
	return t == TriTrue, nil
}
