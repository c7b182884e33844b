package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Parse overlays JSONC content onto base and validates the result.
// Blank content yields the validated base.
func Parse(content string, base Config) (Config, []Warning, error) {
	switch trimmed := strings.TrimSpace(content); {
	case trimmed == "":
		warnings, err := Validate(base)
		if err != nil {
			return Config{}, nil, err
		}
		return base, warnings, nil
	case !strings.HasPrefix(trimmed, "{"):
		return Config{}, nil, errors.New("config must be a JSONC object")
	}
	return parseJSONC(content, base)
}

func parseJSONC(content string, base Config) (Config, []Warning, error) {
	normalized, err := normalizeJSONC(content)
	if err != nil {
		return Config{}, nil, err
	}

	var file fileConfig
	if err := decodeStrict(normalized, &file); err != nil {
		return Config{}, nil, err
	}

	cfg := base
	cfg.Alert.RelayURLs = append([]string(nil), base.Alert.RelayURLs...)
	file.overlay(&cfg)

	warnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, warnings, nil
}

// decodeStrict decodes exactly one JSON object with no unknown keys.
func decodeStrict(normalized string, v any) error {
	dec := json.NewDecoder(strings.NewReader(normalized))
	dec.DisallowUnknownFields()

	err := dec.Decode(v)
	if err == nil {
		err = ensureSingleJSONValue(dec)
	}
	if err != nil {
		return locate(normalized, err)
	}
	return nil
}

func ensureSingleJSONValue(dec *json.Decoder) error {
	var extra json.RawMessage
	switch err := dec.Decode(&extra); {
	case errors.Is(err, io.EOF):
		return nil
	case err == nil:
		return errors.New("multiple JSON values are not allowed")
	default:
		return err
	}
}

// locate prefixes syntax and type errors with a line and column.
func locate(content string, err error) error {
	var offset int64
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case errors.As(err, &typeErr):
		offset = typeErr.Offset
	default:
		return err
	}
	line, col := offsetToLineCol(content, offset)
	return fmt.Errorf("line %d column %d: %w", line, col, err)
}

// offsetToLineCol maps a 1-based decoder offset to 1-based line and column.
func offsetToLineCol(content string, offset int64) (int, int) {
	if offset <= 0 {
		return 1, 1
	}
	before := content[:min(int(offset), len(content))-1]
	line := 1 + strings.Count(before, "\n")
	col := len(before) - strings.LastIndexByte(before, '\n')
	return line, col
}
