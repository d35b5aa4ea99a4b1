package parser

import (
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/iotux/log-parser/internal/models"
	"github.com/iotux/log-parser/internal/scanner"
)

// Parser converts the raw text of a record block into typed values. It
// implements a relaxed object/array literal grammar: keys may be quoted
// or bare, values nest arbitrarily, and scalars are coerced by shape.
//
// Malformed fragments never abort a record. A key/value fragment with
// no ':' delimiter is dropped, counted, and logged at debug level; the
// rest of the record parses normally.
type Parser struct {
	logger  *slog.Logger
	skipped int
}

// New creates a Parser. logger may be nil to disable diagnostics.
func New(logger *slog.Logger) *Parser {
	return &Parser{logger: logger}
}

// Skipped returns the number of fragments dropped since the parser was
// created.
func (p *Parser) Skipped() int {
	return p.skipped
}

// ParseRecord parses a record block's text as a top-level object.
func (p *Parser) ParseRecord(block string) *models.Record {
	return p.parseObject(strings.TrimSpace(block))
}

// ParseValue parses a trimmed fragment into a Value. Fragments starting
// with '{' parse as objects, '[' as arrays, anything else as a scalar.
func (p *Parser) ParseValue(fragment string) models.Value {
	fragment = strings.TrimSpace(fragment)
	switch {
	case strings.HasPrefix(fragment, "{"):
		return p.parseObject(fragment)
	case strings.HasPrefix(fragment, "["):
		return p.parseArray(fragment)
	default:
		return coerceScalar(fragment)
	}
}

func (p *Parser) parseObject(s string) *models.Record {
	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(s, "}")
	s = strings.TrimSpace(s)

	record := models.NewRecord()
	if s == "" {
		return record
	}
	for _, fragment := range scanner.SplitTopLevel(s) {
		// The key ends at the first ':' regardless of nesting; keys
		// containing a colon are not supported by the grammar.
		colon := strings.IndexByte(fragment, ':')
		if colon < 0 {
			p.skip(fragment)
			continue
		}
		key := unquote(strings.TrimSpace(fragment[:colon]))
		record.Set(key, p.ParseValue(fragment[colon+1:]))
	}
	return record
}

func (p *Parser) parseArray(s string) models.Array {
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	s = strings.TrimSpace(s)

	if s == "" {
		return models.Array{}
	}
	segments := scanner.SplitTopLevel(s)
	values := make(models.Array, 0, len(segments))
	for _, segment := range segments {
		values = append(values, p.ParseValue(segment))
	}
	return values
}

func (p *Parser) skip(fragment string) {
	p.skipped++
	if p.logger != nil {
		p.logger.Debug("skipping fragment without key delimiter",
			"fragment", fragment)
	}
}

// coerceScalar classifies a trimmed scalar token. Quoted tokens lose
// one layer of quotes and stay strings, even when the inner text is
// numeric. Unquoted tokens become numbers when strconv accepts them
// (NaN and infinity spellings excluded), booleans on exact true/false,
// and fall back to the raw text otherwise.
func coerceScalar(s string) models.Value {
	s = strings.TrimSpace(s)
	if inner, ok := unquoted(s); ok {
		return inner
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		if !math.IsNaN(n) && !math.IsInf(n, 0) {
			return n
		}
	}
	if s == "true" {
		return true
	}
	if s == "false" {
		return false
	}
	return s
}

// unquoted strips one layer of matching single or double quotes. The
// second return reports whether the token was quoted at all.
func unquoted(s string) (string, bool) {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '"' || first == '\'') {
			return s[1 : len(s)-1], true
		}
	}
	return s, false
}

func unquote(s string) string {
	inner, _ := unquoted(s)
	return inner
}
