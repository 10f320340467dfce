package out

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

const satsPerBTC = 100_000_000

// Comma groups the decimal digits of v in threes.
func Comma(v uint64) string {
	if v > math.MaxInt64 {
		return humanize.BigComma(new(big.Int).SetUint64(v))
	}
	return humanize.Comma(int64(v))
}

// FormatBTC renders sats as a BTC amount with up to 8 fractional digits,
// trailing zeros trimmed but one digit always kept.
func FormatBTC(sats uint64) string {
	whole := sats / satsPerBTC
	frac := strings.TrimRight(leftPad(strconv.FormatUint(sats%satsPerBTC, 10), 8), "0")
	if frac == "" {
		frac = "0"
	}
	return strconv.FormatUint(whole, 10) + "." + frac + " BTC"
}

// FormatSats switches to BTC at one whole coin unless forceSats is set.
func FormatSats(sats uint64, forceSats bool) string {
	if !forceSats && sats >= satsPerBTC {
		return FormatBTC(sats)
	}
	return Comma(sats) + " sats"
}

// FormatSatsDelta renders after-before with an explicit sign.
func FormatSatsDelta(before, after uint64) string {
	switch {
	case after > before:
		return "+" + FormatSats(after-before, false)
	case after < before:
		return "-" + FormatSats(before-after, false)
	default:
		return "0 sats"
	}
}

func FormatMsat(v uint64) string {
	return Comma(v) + " msat"
}

// OptMsat renders an optional msat amount, "-" when absent.
func OptMsat(v *uint64) string {
	if v == nil {
		return "-"
	}
	return FormatMsat(*v)
}

// OptComma renders an optional count, "-" when absent.
func OptComma(v *uint64) string {
	if v == nil {
		return "-"
	}
	return Comma(*v)
}

func OptString(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func OptUint(v *uint64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatUint(*v, 10)
}

const (
	idHead = 8
	idTail = 8
)

// TruncateID shortens identifiers longer than 19 characters to
// head...tail. Shorter strings are returned unchanged.
func TruncateID(s string) string {
	if len(s) <= idHead+idTail+3 {
		return s
	}
	return s[:idHead] + "..." + s[len(s)-idTail:]
}

var checkLabels = map[string]string{
	"http_server":             "HTTP Server",
	"node_is_running":         "Lightning Node",
	"p2p_is_listening":        "P2P Listener",
	"best_block_height_known": "Best Block Height",
}

var acronyms = map[string]string{
	"http": "HTTP",
	"api":  "API",
	"p2p":  "P2P",
	"rgb":  "RGB",
	"ldk":  "LDK",
}

// CheckLabel maps a check name to its display label.
func CheckLabel(name string) string {
	if label, ok := checkLabels[name]; ok {
		return label
	}
	parts := strings.Split(name, "_")
	words := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		if upper, ok := acronyms[part]; ok {
			words = append(words, upper)
			continue
		}
		words = append(words, strings.ToUpper(part[:1])+part[1:])
	}
	if len(words) == 0 {
		return name
	}
	return strings.Join(words, " ")
}

func leftPad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
