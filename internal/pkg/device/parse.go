package device

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/anicoll/loxone-integration/internal/pkg/model"
)

var (
	errSyntax   = errors.New("syntax error")
	errArgCount = errors.New("wrong number of arguments")
)

// ColorValue is a decoded tag(v1,v2,...) colour payload.
type ColorValue struct {
	Tag  string
	Args []float64
}

var colorArity = map[string]int{
	model.PayloadHSV:  3,
	model.PayloadTemp: 2,
}

// ParseColor decodes "hsv(h,s,v)" and "temp(position,kelvin)".
func ParseColor(s string) (ColorValue, error) {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return ColorValue{}, fmt.Errorf("%w: expected tag(args)", errSyntax)
	}
	tag := strings.TrimSpace(s[:open])
	arity, ok := colorArity[tag]
	if !ok {
		return ColorValue{}, fmt.Errorf("%w: unknown tag %q", errSyntax, tag)
	}

	parts := strings.Split(s[open+1:len(s)-1], ",")
	if len(parts) != arity {
		return ColorValue{}, fmt.Errorf("%w: %s takes %d, got %d", errArgCount, tag, arity, len(parts))
	}
	args := make([]float64, 0, arity)
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return ColorValue{}, fmt.Errorf("%w: %w", errSyntax, err)
		}
		args = append(args, f)
	}
	return ColorValue{Tag: tag, Args: args}, nil
}

// ParseSceneIDs decodes a list literal such as "[778]" or "[2, 778]".
func ParseSceneIDs(s string) ([]model.SceneID, error) {
	v, err := ParseLiteral(s)
	if err != nil {
		return nil, err
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a list, got %T", errSyntax, v)
	}
	ids := make([]model.SceneID, 0, len(items))
	for _, item := range items {
		id, err := sceneID(item)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ParseScenes decodes a mood list: a list of records carrying at least "id"
// and "name". Records without both are dropped.
func ParseScenes(s string) ([]model.Scene, error) {
	v, err := ParseLiteral(s)
	if err != nil {
		return nil, err
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a list, got %T", errSyntax, v)
	}
	scenes := make([]model.Scene, 0, len(items))
	for _, item := range items {
		rec, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: expected a record, got %T", errSyntax, item)
		}
		rawID, hasID := rec["id"]
		name, hasName := rec["name"].(string)
		if !hasID || !hasName {
			continue
		}
		id, err := sceneID(rawID)
		if err != nil {
			return nil, err
		}
		scenes = append(scenes, model.Scene{ID: id, Name: name})
	}
	return scenes, nil
}

func sceneID(v any) (model.SceneID, error) {
	switch id := v.(type) {
	case float64:
		return model.SceneID(strconv.FormatFloat(id, 'f', -1, 64)), nil
	case string:
		return model.SceneID(id), nil
	default:
		return "", fmt.Errorf("%w: scene id must be a number or text, got %T", errSyntax, v)
	}
}

// ParseLiteral decodes the literal syntax the miniserver uses for lists and
// records. It is JSON extended with single-quoted strings and the capitalised
// True, False and None spellings. Numbers decode to float64, lists to []any
// and records to map[string]any.
func ParseLiteral(s string) (any, error) {
	p := &literalParser{src: s}
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("trailing input")
	}
	return v, nil
}

type literalParser struct {
	src string
	pos int
}

func (p *literalParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w at offset %d: %s", errSyntax, p.pos, fmt.Sprintf(format, args...))
}

func (p *literalParser) skipSpace() {
	for p.pos < len(p.src) && strings.IndexByte(" \t\r\n", p.src[p.pos]) >= 0 {
		p.pos++
	}
}

func (p *literalParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *literalParser) value() (any, error) {
	p.skipSpace()
	switch c := p.peek(); {
	case c == 0:
		return nil, p.errorf("unexpected end of input")
	case c == '[':
		return p.list()
	case c == '{':
		return p.record()
	case c == '"' || c == '\'':
		return p.text()
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		return p.number()
	default:
		return p.keyword()
	}
}

func (p *literalParser) list() (any, error) {
	p.pos++ // [
	items := []any{}
	for {
		p.skipSpace()
		if p.peek() == ']' {
			p.pos++
			return items, nil
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		items = append(items, v)
		if err := p.separator(']'); err != nil {
			return nil, err
		}
	}
}

func (p *literalParser) record() (any, error) {
	p.pos++ // {
	rec := map[string]any{}
	for {
		p.skipSpace()
		if p.peek() == '}' {
			p.pos++
			return rec, nil
		}
		if c := p.peek(); c != '"' && c != '\'' {
			return nil, p.errorf("expected a quoted key")
		}
		key, err := p.text()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.peek() != ':' {
			return nil, p.errorf("expected ':'")
		}
		p.pos++
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		rec[key.(string)] = v
		if err := p.separator('}'); err != nil {
			return nil, err
		}
	}
}

// separator consumes a ',' or leaves the closing byte for the caller.
func (p *literalParser) separator(closing byte) error {
	p.skipSpace()
	switch p.peek() {
	case ',':
		p.pos++
		return nil
	case closing:
		return nil
	default:
		return p.errorf("expected ',' or %q", closing)
	}
}

func (p *literalParser) text() (any, error) {
	quote := p.src[p.pos]
	p.pos++
	var sb strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == quote:
			p.pos++
			return sb.String(), nil
		case c == '\\' && p.pos+1 < len(p.src):
			p.pos++
			sb.WriteByte(unescape(p.src[p.pos]))
		default:
			sb.WriteByte(c)
		}
		p.pos++
	}
	return nil, p.errorf("unterminated string")
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	default:
		return c
	}
}

func (p *literalParser) number() (any, error) {
	start := p.pos
	for p.pos < len(p.src) && strings.IndexByte("+-.eE0123456789", p.src[p.pos]) >= 0 {
		p.pos++
	}
	lit := p.src[start:p.pos]
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		p.pos = start
		return nil, p.errorf("bad number %q", lit)
	}
	return f, nil
}

var keywords = map[string]any{
	"true":  true,
	"True":  true,
	"false": false,
	"False": false,
	"null":  nil,
	"None":  nil,
}

func (p *literalParser) keyword() (any, error) {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
			break
		}
		p.pos++
	}
	word := p.src[start:p.pos]
	v, ok := keywords[word]
	if !ok {
		p.pos = start
		if word == "" {
			return nil, p.errorf("unexpected character %q", p.peek())
		}
		return nil, p.errorf("unexpected token %q", word)
	}
	return v, nil
}
