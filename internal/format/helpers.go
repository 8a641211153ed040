package format

import (
	"encoding/hex"
	"math"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/specialistvlad/radgo/internal/radon"
)

// FmtDuration formats a duration with an SI prefix, such as "1.5 ms".
func FmtDuration(d time.Duration) string {
	if d <= 0 {
		return "0 s"
	}
	return humanize.SIWithDigits(d.Seconds(), 2, "s")
}

// Truncate shortens s to maxLen runes, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// BoolMark returns "✓" for true and "✗" for false.
func BoolMark(v bool) string {
	if v {
		return "✓"
	}
	return "✗"
}

// Preview renders a value for a table cell. Large byte strings and
// containers are summarised instead of printed in full.
func Preview(v radon.Value, maxLen int) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case radon.Bytes:
		if len(x) > 32 {
			return humanize.IBytes(uint64(len(x))) + " of bytes"
		}
	case radon.Array:
		if len(x.String()) > maxLen {
			return "Array of " + humanize.Comma(int64(x.Len()))
		}
	case radon.Map:
		if len(x.String()) > maxLen {
			return "Map with " + humanize.Comma(int64(x.Len())) + " keys"
		}
	}
	return Truncate(v.String(), maxLen)
}

// JSONValue converts a value into data that JSON encoders accept. Bytes
// become 0x-prefixed hex, infinities become strings and errors become an
// object with the error name and message.
func JSONValue(v radon.Value) any {
	switch x := v.(type) {
	case nil:
		return nil
	case radon.Float:
		f := x.Float64()
		if math.IsInf(f, 0) {
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
		return f
	case radon.Bytes:
		return "0x" + hex.EncodeToString(x)
	case radon.Array:
		out := make([]any, x.Len())
		for i, e := range x.Values() {
			out[i] = JSONValue(e)
		}
		return out
	case radon.Map:
		out := make(map[string]any, x.Len())
		for _, k := range x.Keys() {
			e, _ := x.Get(k)
			out[k] = JSONValue(e)
		}
		return out
	}
	return radon.ToGo(v)
}
