package apix

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"shopify-reconciler/internal/adapters/apix/dto"
	"shopify-reconciler/internal/domain/model"
)

const snippetLimit = 120

// parseEnvelope accepts a bare JSON array or {"value": [...]}. Anything else
// is invalid data.
func parseEnvelope(body []byte) ([]dto.Record, string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, "", model.NewInvalidData("response", "", "empty body")
	}

	switch trimmed[0] {
	case '[':
		records, err := decodeRecords(trimmed)
		return records, "", err
	case '{':
		var envelope dto.Envelope
		if err := decode(trimmed, &envelope); err != nil {
			return nil, "", model.NewInvalidData("response", snippet(trimmed), err.Error())
		}
		value := bytes.TrimSpace(envelope.Value)
		if len(value) == 0 || value[0] != '[' {
			return nil, "", model.NewInvalidData("response", snippet(trimmed), `expected a "value" array`)
		}
		records, err := decodeRecords(value)
		return records, strings.TrimSpace(envelope.NextLink), err
	default:
		return nil, "", model.NewInvalidData("response", snippet(trimmed), "expected a JSON array or object")
	}
}

func decodeRecords(raw []byte) ([]dto.Record, error) {
	var records []dto.Record
	if err := decode(raw, &records); err != nil {
		return nil, model.NewInvalidData("response", snippet(raw), err.Error())
	}
	return records, nil
}

// decode keeps numbers as json.Number so prices and quantities are not
// rounded through float64.
func decode(raw []byte, out any) error {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	return decoder.Decode(out)
}

// field reads name from record, falling back to a case-insensitive match.
func field(record dto.Record, name string) string {
	value, ok := record[name]
	if !ok {
		for key, v := range record {
			if strings.EqualFold(key, name) {
				value, ok = v, true
				break
			}
		}
	}
	if !ok || value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

func snippet(raw []byte) string {
	s := string(raw)
	if len(s) > snippetLimit {
		return s[:snippetLimit] + "..."
	}
	return s
}
