package generate

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Models are asked for a JSON object, but in practice reply with anything from
// strict JSON to Python-style literals (single quotes, trailing commas). The
// parsers below accept both shapes: a JSON fast path, then a small scanner for
// the rest. Only string keys and string values are allowed — any other value
// type is a parse error.

// ParseStringDict parses a brace-delimited literal into a path→content map.
func ParseStringDict(s string) (map[string]string, error) {
	var viaJSON map[string]string
	if err := json.Unmarshal([]byte(s), &viaJSON); err == nil {
		return viaJSON, nil
	}
	sc := &litScanner{src: s}
	sc.skipSpace()
	if !sc.consume('{') {
		return nil, fmt.Errorf("expected '{' at offset %d", sc.pos)
	}
	out := map[string]string{}
	for {
		sc.skipSpace()
		if sc.consume('}') {
			break
		}
		key, err := sc.scanString()
		if err != nil {
			return nil, fmt.Errorf("dict key: %w", err)
		}
		sc.skipSpace()
		if !sc.consume(':') {
			return nil, fmt.Errorf("expected ':' after key %q at offset %d", key, sc.pos)
		}
		sc.skipSpace()
		val, err := sc.scanString()
		if err != nil {
			return nil, fmt.Errorf("value of %q: %w", key, err)
		}
		out[key] = val
		sc.skipSpace()
		if sc.consume(',') {
			continue
		}
		if sc.consume('}') {
			break
		}
		return nil, fmt.Errorf("expected ',' or '}' at offset %d", sc.pos)
	}
	sc.skipSpace()
	if !sc.done() {
		return nil, fmt.Errorf("trailing data at offset %d", sc.pos)
	}
	return out, nil
}

// ParseStringList parses a bracket-delimited literal into a string slice.
func ParseStringList(s string) ([]string, error) {
	var viaJSON []string
	if err := json.Unmarshal([]byte(s), &viaJSON); err == nil {
		return viaJSON, nil
	}
	sc := &litScanner{src: s}
	sc.skipSpace()
	if !sc.consume('[') {
		return nil, fmt.Errorf("expected '[' at offset %d", sc.pos)
	}
	var out []string
	for {
		sc.skipSpace()
		if sc.consume(']') {
			break
		}
		val, err := sc.scanString()
		if err != nil {
			return nil, err
		}
		out = append(out, val)
		sc.skipSpace()
		if sc.consume(',') {
			continue
		}
		if sc.consume(']') {
			break
		}
		return nil, fmt.Errorf("expected ',' or ']' at offset %d", sc.pos)
	}
	sc.skipSpace()
	if !sc.done() {
		return nil, fmt.Errorf("trailing data at offset %d", sc.pos)
	}
	return out, nil
}

type litScanner struct {
	src string
	pos int
}

func (sc *litScanner) done() bool {
	return sc.pos >= len(sc.src)
}

func (sc *litScanner) skipSpace() {
	for !sc.done() {
		switch sc.src[sc.pos] {
		case ' ', '\t', '\n', '\r':
			sc.pos++
		default:
			return
		}
	}
}

func (sc *litScanner) consume(c byte) bool {
	if sc.done() || sc.src[sc.pos] != c {
		return false
	}
	sc.pos++
	return true
}

// scanString reads a quoted string starting at the current offset. Both quote
// styles are accepted, along with Python/JSON escape sequences. An unknown
// escape keeps the backslash verbatim, matching Python's behavior.
func (sc *litScanner) scanString() (string, error) {
	if sc.done() {
		return "", fmt.Errorf("expected string at offset %d", sc.pos)
	}
	quote := sc.src[sc.pos]
	if quote != '\'' && quote != '"' {
		return "", fmt.Errorf("expected quote at offset %d", sc.pos)
	}
	sc.pos++
	var b strings.Builder
	for {
		if sc.done() {
			return "", fmt.Errorf("unterminated string")
		}
		c := sc.src[sc.pos]
		switch c {
		case quote:
			sc.pos++
			return b.String(), nil
		case '\\':
			sc.pos++
			if sc.done() {
				return "", fmt.Errorf("unterminated escape")
			}
			esc := sc.src[sc.pos]
			sc.pos++
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case 'b':
				b.WriteByte('\b')
			case 'f':
				b.WriteByte('\f')
			case '\\', '\'', '"', '/':
				b.WriteByte(esc)
			case 'x':
				if err := sc.scanHex(&b, 2); err != nil {
					return "", err
				}
			case 'u':
				if err := sc.scanHex(&b, 4); err != nil {
					return "", err
				}
			default:
				b.WriteByte('\\')
				b.WriteByte(esc)
			}
		default:
			b.WriteByte(c)
			sc.pos++
		}
	}
}

func (sc *litScanner) scanHex(b *strings.Builder, width int) error {
	if sc.pos+width > len(sc.src) {
		return fmt.Errorf("truncated hex escape at offset %d", sc.pos)
	}
	code, err := strconv.ParseUint(sc.src[sc.pos:sc.pos+width], 16, 32)
	if err != nil {
		return fmt.Errorf("invalid hex escape at offset %d", sc.pos)
	}
	sc.pos += width
	if width == 2 {
		b.WriteByte(byte(code))
		return nil
	}
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], rune(code))
	b.Write(buf[:n])
	return nil
}
