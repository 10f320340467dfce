// Package tlv parses custom TLV records given on the command line as
// <type>:<hex>.
package tlv

import (
	"encoding/hex"
	"strconv"
	"strings"

	clierr "github.com/ggonzalez94/rgbldk-cli/internal/errors"
	"github.com/ggonzalez94/rgbldk-cli/internal/model"
)

func Parse(input string) (model.CustomTLV, error) {
	typ, value, ok := strings.Cut(strings.TrimSpace(input), ":")
	if !ok {
		return model.CustomTLV{}, clierr.New(clierr.CodeUsage, "invalid --tlv (expected <type>:<hex>)")
	}
	n, err := strconv.ParseUint(strings.TrimSpace(typ), 10, 64)
	if err != nil {
		return model.CustomTLV{}, clierr.Wrap(clierr.CodeUsage, "invalid --tlv type", err)
	}
	value = strings.TrimSpace(value)
	if _, err := hex.DecodeString(value); err != nil {
		return model.CustomTLV{}, clierr.Wrap(clierr.CodeUsage, "invalid --tlv hex value", err)
	}
	return model.CustomTLV{Type: n, ValueHex: strings.ToLower(value)}, nil
}

// List collects repeated --tlv flags. It implements pflag.Value.
type List struct {
	Records []model.CustomTLV
}

func (l *List) String() string {
	parts := make([]string, 0, len(l.Records))
	for _, r := range l.Records {
		parts = append(parts, strconv.FormatUint(r.Type, 10)+":"+r.ValueHex)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func (l *List) Set(v string) error {
	rec, err := Parse(v)
	if err != nil {
		return err
	}
	l.Records = append(l.Records, rec)
	return nil
}

func (l *List) Type() string { return "type:hex" }
