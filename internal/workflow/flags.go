package workflow

import (
	"github.com/specialistvlad/taskflow/internal/value"
	"github.com/spf13/pflag"
	"github.com/zclconf/go-cty/cty"
)

// DeclareFlags adds one string flag per workflow input. Optional inputs
// show their default; flag values are parsed with value.Parse.
func (w *Workflow) DeclareFlags(fs *pflag.FlagSet) {
	for _, p := range w.Inputs() {
		if fs.Lookup(p.Name()) != nil {
			continue
		}
		def := ""
		if p.Optional() && p.Default() != cty.NilVal {
			def = value.Render(p.Default())
		}
		usage := p.Description()
		if usage == "" {
			usage = "Value for input " + p.Name() + "."
		}
		if !p.Optional() {
			usage += " (required)"
		}
		fs.String(p.Name(), def, usage)
	}
}

// FlagOptions turns the flags declared by DeclareFlags that were set on
// the command line into an option bag.
func (w *Workflow) FlagOptions(fs *pflag.FlagSet) (map[string]cty.Value, error) {
	options := make(map[string]cty.Value)
	for _, p := range w.Inputs() {
		f := fs.Lookup(p.Name())
		if f == nil || !f.Changed {
			continue
		}
		v, err := value.Parse(f.Value.String())
		if err != nil {
			return nil, err
		}
		options[p.Name()] = v
	}
	return options, nil
}
