package app

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

// choiceValue is a string flag restricted to a fixed set. It starts empty so
// that an unset flag leaves env and file settings in charge.
type choiceValue struct {
	target  *string
	choices []string
}

func newChoiceValue(target *string, choices ...string) *choiceValue {
	return &choiceValue{target: target, choices: choices}
}

func (v *choiceValue) String() string {
	if v.target == nil {
		return ""
	}
	return *v.target
}

func (v *choiceValue) Set(s string) error {
	s = strings.ToLower(strings.TrimSpace(s))
	if !slices.Contains(v.choices, s) {
		return fmt.Errorf("must be one of %s", strings.Join(v.choices, ", "))
	}
	*v.target = s
	return nil
}

func (v *choiceValue) Type() string { return strings.Join(v.choices, "|") }

// optUint64 returns nil unless name was given on the command line.
func optUint64(cmd *cobra.Command, name string, v uint64) *uint64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &v
}

func optUint32(cmd *cobra.Command, name string, v uint32) *uint32 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &v
}

func optString(cmd *cobra.Command, name, v string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &v
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// rawValue keeps an empty daemon reply encodable.
func rawValue(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || !json.Valid(raw) {
		return json.RawMessage("{}")
	}
	return raw
}
