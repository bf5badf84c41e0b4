package value

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want cty.Value
	}{
		{"Number", "5", cty.NumberIntVal(5)},
		{"Bool", "true", cty.True},
		{"QuotedString", `"hello"`, cty.StringVal("hello")},
		{"BareWordFallsBackToString", "hello", cty.StringVal("hello")},
		{"PathFallsBackToString", "/usr/bin/env", cty.StringVal("/usr/bin/env")},
		{"Empty", "", cty.StringVal("")},
		{"Tuple", "[10, 20, 30]", cty.TupleVal([]cty.Value{cty.NumberIntVal(10), cty.NumberIntVal(20), cty.NumberIntVal(30)})},
		{"Object", `{a = 1}`, cty.ObjectVal(map[string]cty.Value{"a": cty.NumberIntVal(1)})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.src)
			require.NoError(t, err)
			assert.True(t, got.Equals(tc.want).True(), "got %s, want %s", got.GoString(), tc.want.GoString())
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "options.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
a        = 5
name     = "taskflow"
multiply = true
data     = [1, 2]
`), 0o644))

	options, err := LoadFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, options, 4)
	assert.True(t, options["a"].Equals(cty.NumberIntVal(5)).True())
	assert.Equal(t, "taskflow", options["name"].AsString())
	assert.True(t, options["multiply"].True())
	assert.Equal(t, 2, options["data"].LengthInt())

	t.Run("Blocks", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.hcl")
		require.NoError(t, os.WriteFile(bad, []byte("block {\n}\n"), 0o644))
		_, err := LoadFile(context.Background(), bad)
		assert.Error(t, err)
	})

	t.Run("Variables", func(t *testing.T) {
		bad := filepath.Join(dir, "vars.hcl")
		require.NoError(t, os.WriteFile(bad, []byte("a = var.b\n"), 0o644))
		_, err := LoadFile(context.Background(), bad)
		assert.ErrorContains(t, err, `option "a"`)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := LoadFile(context.Background(), filepath.Join(dir, "missing.hcl"))
		assert.Error(t, err)
	})
}

func TestToGo(t *testing.T) {
	v := cty.ObjectVal(map[string]cty.Value{
		"int":   cty.NumberIntVal(3),
		"float": cty.NumberFloatVal(1.5),
		"str":   cty.StringVal("x"),
		"list":  cty.ListVal([]cty.Value{cty.True, cty.False}),
		"null":  cty.NullVal(cty.String),
	})
	got, err := ToGo(v)
	require.NoError(t, err)

	want := map[string]any{
		"int":   int64(3),
		"float": 1.5,
		"str":   "x",
		"list":  []any{true, false},
		"null":  nil,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ToGo() mismatch (-want +got):\n%s", diff)
	}
}

func TestFromGo(t *testing.T) {
	v, err := FromGo(map[string]string{"HOME": "/root"})
	require.NoError(t, err)
	assert.True(t, v.Type().IsMapType())
	assert.Equal(t, "/root", v.Index(cty.StringVal("HOME")).AsString())

	_, err = FromGo(make(chan int))
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	assert.Equal(t, "8", Render(cty.NumberIntVal(8)))
	assert.Equal(t, "0.25", Render(cty.NumberFloatVal(0.25)))
	assert.Equal(t, "plain", Render(cty.StringVal("plain")))
	assert.Equal(t, "false", Render(cty.False))
	assert.Equal(t, "null", Render(cty.NullVal(cty.Number)))
	assert.Equal(t, `[1,2]`, Render(cty.TupleVal([]cty.Value{cty.NumberIntVal(1), cty.NumberIntVal(2)})))
}

func TestEncode(t *testing.T) {
	outputs := map[string]cty.Value{
		"sum":  cty.NumberIntVal(8),
		"name": cty.StringVal("calc"),
	}

	t.Run("Text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, FormatText, outputs))
		assert.Equal(t, "name = calc\nsum = 8\n", buf.String())
	})

	t.Run("JSON", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, FormatJSON, outputs))
		assert.JSONEq(t, `{"name":"calc","sum":8}`, buf.String())
	})

	t.Run("YAML", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, FormatYAML, outputs))
		assert.YAMLEq(t, "name: calc\nsum: 8\n", buf.String())
	})

	t.Run("EmptyJSON", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, FormatJSON, nil))
		assert.JSONEq(t, `{}`, buf.String())
	})

	t.Run("InvalidFormat", func(t *testing.T) {
		_, err := ParseFormat("xml")
		assert.Error(t, err)
		assert.Error(t, Encode(&bytes.Buffer{}, Format("xml"), outputs))
	})
}
