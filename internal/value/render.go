package value

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
	"gopkg.in/yaml.v3"
)

// Format selects how a set of outputs is printed.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("invalid output format %q: must be one of text, json, yaml", s)
}

// Render returns a human-readable form of v. Strings are printed raw and
// collections as compact JSON.
func Render(v cty.Value) string {
	switch {
	case v == cty.NilVal:
		return ""
	case !v.IsKnown():
		return "(unknown)"
	case v.IsNull():
		return "null"
	}
	switch v.Type() {
	case cty.String:
		return v.AsString()
	case cty.Number:
		return v.AsBigFloat().Text('f', -1)
	case cty.Bool:
		return strconv.FormatBool(v.True())
	}
	b, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		return v.GoString()
	}
	return string(b)
}

// Encode writes outputs to w in the given format. Text output is one
// "name = value" line per output, sorted by name.
func Encode(w io.Writer, format Format, outputs map[string]cty.Value) error {
	switch format {
	case FormatJSON:
		obj := cty.EmptyObjectVal
		if len(outputs) > 0 {
			obj = cty.ObjectVal(outputs)
		}
		b, err := ctyjson.Marshal(obj, obj.Type())
		if err != nil {
			return fmt.Errorf("failed to encode outputs as json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(b))
		return err

	case FormatYAML:
		doc := make(map[string]any, len(outputs))
		for name, v := range outputs {
			converted, err := ToGo(v)
			if err != nil {
				return fmt.Errorf("failed to convert output %q: %w", name, err)
			}
			doc[name] = converted
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode outputs as yaml: %w", err)
		}
		return enc.Close()

	case FormatText, "":
		names := make([]string, 0, len(outputs))
		for name := range outputs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if _, err := fmt.Fprintf(w, "%s = %s\n", name, Render(outputs[name])); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("invalid output format %q", format)
}
