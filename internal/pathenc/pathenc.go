package pathenc

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Git prints any path containing bytes >= 0x80, control characters, quotes
// or backslashes as a C-style quoted string: the whole path wrapped in
// double quotes, with \" \\ \t \n \r for the usual suspects and \NNN octal
// escapes for everything else (core.quotePath default). A Chinese filename
// like 中文.txt therefore arrives from git as "\344\270\255\346\226\207.txt".
//
// Decode reverses that quoting and interprets the raw bytes as UTF-8.
// Misreading these paths is exactly how non-ASCII files end up matched
// against nothing and silently misattributed, so a path that cannot be
// decoded is an error, never a lossy best-effort string.

// DecodeError reports a path that could not be decoded to valid UTF-8.
type DecodeError struct {
	Raw    string // the raw form as git printed it
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode path %q: %s", e.Raw, e.Reason)
}

// Decode converts a path as printed by git into its canonical UTF-8 form.
// Unquoted paths pass through after a UTF-8 validity check.
func Decode(raw string) (string, error) {
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		return unquote(raw)
	}
	if !utf8.ValidString(raw) {
		return "", &DecodeError{Raw: raw, Reason: "not valid UTF-8"}
	}
	return raw, nil
}

// unquote decodes the inside of a git C-quoted path.
func unquote(raw string) (string, error) {
	inner := raw[1 : len(raw)-1]
	buf := make([]byte, 0, len(inner))

	for i := 0; i < len(inner); i++ {
		c := inner[i]
		if c != '\\' {
			buf = append(buf, c)
			continue
		}
		i++
		if i >= len(inner) {
			return "", &DecodeError{Raw: raw, Reason: "trailing backslash"}
		}
		switch e := inner[i]; e {
		case '\\', '"':
			buf = append(buf, e)
		case 't':
			buf = append(buf, '\t')
		case 'n':
			buf = append(buf, '\n')
		case 'r':
			buf = append(buf, '\r')
		case 'a':
			buf = append(buf, '\a')
		case 'b':
			buf = append(buf, '\b')
		case 'f':
			buf = append(buf, '\f')
		case 'v':
			buf = append(buf, '\v')
		case '0', '1', '2', '3', '4', '5', '6', '7':
			// Up to three octal digits form one raw byte.
			val := int(e - '0')
			digits := 1
			for digits < 3 && i+1 < len(inner) && inner[i+1] >= '0' && inner[i+1] <= '7' {
				i++
				digits++
				val = val*8 + int(inner[i]-'0')
			}
			if val > 0xFF {
				return "", &DecodeError{Raw: raw, Reason: fmt.Sprintf("octal escape out of range: \\%o", val)}
			}
			buf = append(buf, byte(val))
		default:
			return "", &DecodeError{Raw: raw, Reason: fmt.Sprintf("invalid escape \\%c", e)}
		}
	}

	if !utf8.Valid(buf) {
		return "", &DecodeError{Raw: raw, Reason: "unescaped bytes are not valid UTF-8"}
	}
	return string(buf), nil
}

// Encode produces the quoted form git would print for a canonical path.
// ASCII paths with nothing special come back unchanged.
func Encode(path string) string {
	if !needsQuoting(path) {
		return path
	}

	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(path); i++ {
		c := path[i]
		switch {
		case c == '"':
			b.WriteString(`\"`)
		case c == '\\':
			b.WriteString(`\\`)
		case c == '\t':
			b.WriteString(`\t`)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c < 0x20 || c == 0x7f || c >= 0x80:
			fmt.Fprintf(&b, "\\%03o", c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func needsQuoting(path string) bool {
	for i := 0; i < len(path); i++ {
		c := path[i]
		if c < 0x20 || c == 0x7f || c >= 0x80 || c == '"' || c == '\\' {
			return true
		}
	}
	return false
}
