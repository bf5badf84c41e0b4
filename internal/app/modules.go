package app

import (
	"io"

	"github.com/specialistvlad/taskflow/internal/builtin"
	"github.com/specialistvlad/taskflow/internal/registry"
	"github.com/specialistvlad/taskflow/modules/env"
	"github.com/specialistvlad/taskflow/modules/exec"
	"github.com/specialistvlad/taskflow/modules/math"
	"github.com/specialistvlad/taskflow/modules/print"
)

// CoreModules is the definitive list of all modules that are compiled into
// the taskflow binary. Modules that print write to outW.
func CoreModules(outW io.Writer) []registry.Module {
	return []registry.Module{
		&builtin.Module{},
		&env.Module{},
		&exec.Module{Out: outW},
		&math.Module{},
		&print.Module{Out: outW},
	}
}
