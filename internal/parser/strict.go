package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/iotux/log-parser/internal/errors"
	"github.com/iotux/log-parser/internal/models"
)

// ParseRecordStrict parses a record block through a repair-then-decode
// path: the relaxed literal is first normalized to valid JSON with
// jsonrepair (quoting bare keys, fixing single quotes), then decoded
// with encoding/json. Unlike ParseRecord, malformed input is an error
// here rather than degrading to a partial record.
//
// Key order of the source text is preserved by walking the decoder's
// token stream instead of unmarshaling into a map.
func (p *Parser) ParseRecordStrict(block string) (*models.Record, error) {
	repaired, err := jsonrepair.JSONRepair(block)
	if err != nil {
		return nil, errors.NewParseError("failed to repair record text", err)
	}

	dec := json.NewDecoder(strings.NewReader(repaired))
	dec.UseNumber()

	value, err := decodeValue(dec)
	if err != nil {
		return nil, errors.NewParseError("failed to decode repaired record", err)
	}
	record, ok := value.(*models.Record)
	if !ok {
		return nil, errors.NewParseError(
			fmt.Sprintf("record text is not an object (got %T)", value), nil)
	}
	return record, nil
}

// decodeValue reads one JSON value from the token stream, preserving
// object key order.
func decodeValue(dec *json.Decoder) (models.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeFromToken(dec, tok)
}

func decodeFromToken(dec *json.Decoder, tok json.Token) (models.Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t.String())
		}
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			// Out-of-range literals stay as their source text.
			return t.String(), nil
		}
		return n, nil
	case string:
		return t, nil
	case bool:
		return t, nil
	case nil:
		// The value model has no null variant; JSON null becomes the
		// literal string, matching the relaxed parser's fallback.
		return "null", nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

func decodeObject(dec *json.Decoder) (*models.Record, error) {
	record := models.NewRecord()
	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
		if delim, ok := tok.(json.Delim); ok && delim == '}' {
			return record, nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is not a string: %v", tok)
		}
		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		record.Set(key, value)
	}
}

func decodeArray(dec *json.Decoder) (models.Array, error) {
	values := models.Array{}
	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
		if delim, ok := tok.(json.Delim); ok && delim == ']' {
			return values, nil
		}
		value, err := decodeFromToken(dec, tok)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}
}
