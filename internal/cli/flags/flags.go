// Package flags provides common flag types for the CLI.
package flags

import (
	"fmt"
	"strconv"
	"strings"
)

// BoolFlag is a boolean flag that tracks whether it was explicitly set.
// This is useful for differentiating between an unset flag and a flag
// explicitly set to false, which matters when CLI flags override config
// file values.
type BoolFlag struct {
	Value  bool
	WasSet bool
}

// Set parses and sets the boolean value.
func (b *BoolFlag) Set(s string) error {
	if s == "" {
		b.Value = true
		b.WasSet = true
		return nil
	}
	switch strings.ToLower(s) {
	case "true", "1":
		b.Value = true
	case "false", "0":
		b.Value = false
	default:
		return fmt.Errorf("invalid boolean %q", s)
	}
	b.WasSet = true
	return nil
}

// String returns the string representation of the boolean value.
func (b *BoolFlag) String() string {
	if b.Value {
		return "true"
	}
	return "false"
}

// IsBoolFlag returns true, indicating this is a boolean flag that doesn't require a value.
func (b *BoolFlag) IsBoolFlag() bool { return true }

// StringFlag is a string flag that tracks whether it was explicitly set.
type StringFlag struct {
	Value  string
	WasSet bool
}

// Set stores the string value.
func (s *StringFlag) Set(v string) error {
	s.Value = v
	s.WasSet = true
	return nil
}

// String returns the stored value.
func (s *StringFlag) String() string { return s.Value }

// IntFlag is an int flag that tracks whether it was explicitly set.
type IntFlag struct {
	Value  int
	WasSet bool
}

// Set parses and stores the int value.
func (i *IntFlag) Set(v string) error {
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid integer %q", v)
	}
	i.Value = parsed
	i.WasSet = true
	return nil
}

// String returns the string representation of the int value.
func (i *IntFlag) String() string { return fmt.Sprintf("%d", i.Value) }
