package fixtures

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/sweatz/internal/document"
)

// ErrUnknownFormat reports a fixture file with an unrecognized extension.
var ErrUnknownFormat = errors.New("unknown fixture format")

// LoadFile reads a fixture file. The format follows the extension:
// .yaml/.yml, .json or .cue. Every format holds a top-level mapping from
// collection name to a list of records, and values may use the extended
// JSON wrappers {"$oid": hex} and {"$date": rfc3339}.
func LoadFile(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}

	var raw document.Value
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		raw, err = decodeYAML(data)
	case ".json":
		raw, err = document.ParseJSON(data)
	case ".cue":
		raw, err = decodeCUE(data, path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	set, err := toSet(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid fixture file %s: %w", path, err)
	}
	return set, nil
}

// LoadFiles loads and merges several fixture files in order.
func LoadFiles(paths ...string) (Set, error) {
	set := make(Set)
	for _, path := range paths {
		loaded, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		set.Merge(loaded)
	}
	return set, nil
}

func decodeYAML(data []byte) (document.Value, error) {
	var raw any
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if raw == nil {
		return document.Object{}, nil
	}
	return document.FromExtended(raw)
}

// decodeCUE evaluates a CUE file and converts the concrete result through
// JSON, which keeps integers and floats apart.
func decodeCUE(data []byte, path string) (document.Value, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compiling CUE: %w", err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("CUE value is not concrete: %w", err)
	}
	js, err := v.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("exporting CUE: %w", err)
	}
	return document.ParseJSON(js)
}

func toSet(raw document.Value) (Set, error) {
	top, ok := raw.(document.Object)
	if !ok {
		return nil, fmt.Errorf("top level must map collection names to records, got %s", document.KindOf(raw))
	}
	set := make(Set, len(top))
	for _, name := range top.SortedKeys() {
		list, ok := top[name].(document.Array)
		if !ok {
			return nil, fmt.Errorf("collection %q: records must be a list, got %s", name, document.KindOf(top[name]))
		}
		records := make([]document.Object, 0, len(list))
		for i, elem := range list {
			record, ok := elem.(document.Object)
			if !ok {
				return nil, fmt.Errorf("collection %q: record %d is %s, not an object", name, i, document.KindOf(elem))
			}
			records = append(records, record)
		}
		set[name] = records
	}
	return set, nil
}
