package bank

import (
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/mcqprep/internal/question"
)

// SupportedFormat is the newest bank format version this build reads.
// Documents with a different major version are rejected.
const SupportedFormat = "v1.0.0"

// ErrUnsupportedFormat is returned for documents from a newer format.
var ErrUnsupportedFormat = errors.New("unsupported bank format version")

// Format is the encoding of a bank document.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatFor picks the format from a file name extension.
func FormatFor(name string) Format {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Document is a decoded bank file.
type Document struct {
	Name          string
	FormatVersion string
	Questions     []question.RawQuestion
	Origin        string // path or URL the document came from
}

// documentSchema checks the envelope only. Individual records are left to
// the normalizer, which drops bad ones instead of failing the document.
var documentSchema = map[string]any{
	"type":     "object",
	"required": []any{"questions"},
	"properties": map[string]any{
		"name":          map[string]any{"type": "string"},
		"formatVersion": map[string]any{"type": []any{"string", "number"}},
		"questions": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items":    map[string]any{"type": "object"},
		},
	},
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		c := jsonschema.NewCompiler()
		const url = "schema://bank-document.json"
		if err := c.AddResource(url, documentSchema); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(url)
	})
	return compiled, compileErr
}

// Decode parses a bank document in the given format.
func Decode(data []byte, format Format, origin string) (*Document, error) {
	var parsed any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return nil, fmt.Errorf("parse %s: %w", origin, err)
		}
		parsed = jsonCompatible(parsed)
		b, err := json.Marshal(parsed)
		if err != nil {
			return nil, fmt.Errorf("convert %s: %w", origin, err)
		}
		data = b
	default:
		if err := json.Unmarshal(data, &parsed); err != nil {
			return nil, fmt.Errorf("parse %s: %w", origin, err)
		}
	}

	sch, err := schema()
	if err != nil {
		return nil, fmt.Errorf("compile document schema: %w", err)
	}
	if err := sch.Validate(parsed); err != nil {
		return nil, fmt.Errorf("validate %s: %w", origin, err)
	}

	var env struct {
		Name          string                 `json:"name"`
		FormatVersion json.RawMessage        `json:"formatVersion"`
		Questions     []question.RawQuestion `json:"questions"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode %s: %w", origin, err)
	}

	version, err := checkFormat(env.FormatVersion)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", origin, err)
	}
	return &Document{
		Name:          env.Name,
		FormatVersion: version,
		Questions:     env.Questions,
		Origin:        origin,
	}, nil
}

// checkFormat canonicalizes the declared version. Absent means current.
func checkFormat(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return SupportedFormat, nil
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, raw)
		}
		v = strconv.FormatFloat(f, 'f', -1, 64)
	}
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, v)
	}
	if semver.Major(v) != semver.Major(SupportedFormat) {
		return "", fmt.Errorf("%w: %s (supported %s)", ErrUnsupportedFormat, v, semver.Major(SupportedFormat))
	}
	return semver.Canonical(v), nil
}

// jsonCompatible converts YAML maps with non-string keys into
// map[string]any so the value can be marshaled as JSON.
func jsonCompatible(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = jsonCompatible(val)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = jsonCompatible(val)
		}
		return out
	case []any:
		for i, val := range t {
			t[i] = jsonCompatible(val)
		}
		return t
	default:
		return v
	}
}
