package workbook

import (
	"fmt"
	"os"

	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
)

// LoadWorkbook compiles a workbook from a single .cue file or from every
// .cue file in a directory.
func LoadWorkbook(path string) ([]PageDef, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("workbook path: %w", err)
	}
	if info.IsDir() {
		return loadDir(path)
	}
	return loadFile(path)
}

func loadFile(path string) ([]PageDef, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}

	ctx := cuecontext.New()
	value := ctx.CompileBytes(source)
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompileWorkbook(value)
}

func loadDir(dir string) ([]PageDef, error) {
	ctx := cuecontext.New()
	cfg := &load.Config{Dir: dir}
	instances := load.Instances([]string{"."}, cfg)
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded from %s", dir)
	}

	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("loading CUE files: %w", inst.Err)
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompileWorkbook(value)
}
