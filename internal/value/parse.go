package value

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/taskflow/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// Parse turns a command-line literal into a value. The literal is read as
// an HCL expression without variables (5, true, [1, 2], {a = 1}, "x");
// anything that does not evaluate is taken as a plain string.
func Parse(src string) (cty.Value, error) {
	if src == "" {
		return cty.StringVal(""), nil
	}
	expr, diags := hclsyntax.ParseExpression([]byte(src), "<flag>", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return cty.StringVal(src), nil
	}
	v, diags := expr.Value(nil)
	if diags.HasErrors() {
		return cty.StringVal(src), nil
	}
	if !v.IsWhollyKnown() {
		return cty.NilVal, fmt.Errorf("literal %q does not evaluate to a known value", src)
	}
	return v, nil
}

// LoadFile reads an option file made of top-level HCL attributes
// (name = expression) and returns the evaluated option bag.
func LoadFile(ctx context.Context, path string) (map[string]cty.Value, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading option file.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse option file %s: %s", path, diags.Error())
	}
	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to read option file %s: %s", path, diags.Error())
	}

	options := make(map[string]cty.Value, len(attrs))
	for name, attr := range attrs {
		v, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to evaluate option %q in %s: %s", name, path, diags.Error())
		}
		options[name] = v
	}

	logger.Debug("Successfully loaded option file.", "path", path, "options", sortedKeys(options))
	return options, nil
}

func sortedKeys(m map[string]cty.Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
