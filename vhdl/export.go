package vhdl

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/hlimgo/hlim"
)

// openFiles tracks every .vhdl file handle currently open mid-export, so
// the one atexit hook registered below can flush/close them if the process
// exits (e.g. via os.Exit in a host CLI) before a normal writeFile return,
// mirroring the teacher's own top-level atexit.Register shutdown path.
var (
	openFilesMu  sync.Mutex
	openFiles    = map[*os.File]bool{}
	registerOnce sync.Once
)

func trackOpenFile(f *os.File) {
	registerOnce.Do(func() {
		atexit.Register(func() {
			openFilesMu.Lock()
			defer openFilesMu.Unlock()
			for f := range openFiles {
				_ = f.Close()
			}
		})
	})
	openFilesMu.Lock()
	openFiles[f] = true
	openFilesMu.Unlock()
}

func untrackOpenFile(f *os.File) {
	openFilesMu.Lock()
	delete(openFiles, f)
	openFilesMu.Unlock()
}

// FormattingPolicy controls the incidental textual details of an export:
// the file extension used for every entity/package file, per spec.md §6's
// wire-level format note ("filename equals the allocated name with the
// formatter's extension (default `.vhdl`)").
type FormattingPolicy struct {
	Extension string
}

// DefaultFormatting is the formatter used when VHDLExport is never told
// otherwise.
func DefaultFormatting() FormattingPolicy {
	return FormattingPolicy{Extension: ".vhdl"}
}

// VHDLExport is the entry point spec.md §6 names
// "VHDLExport(destinationDir).setFormatting(policy?).operator()(circuit)":
// a value-receiver fluent builder, in the style of the ambient-stack
// convention recorded in SPEC_FULL.md §2/§7 (config.DeviceBuilder's
// With*-chain-ending-in-Build), ending in Export(circuit).
type VHDLExport struct {
	dir      string
	policy   FormattingPolicy
	handlers []ExternalNodeHandler
}

// NewVHDLExport begins a fluent export to destinationDir.
func NewVHDLExport(destinationDir string) VHDLExport {
	return VHDLExport{dir: destinationDir, policy: DefaultFormatting()}
}

// SetFormatting overrides the default formatting policy.
func (e VHDLExport) SetFormatting(policy FormattingPolicy) VHDLExport {
	e.policy = policy
	return e
}

// WithExternalHandler registers an ExternalNodeHandler consulted, in
// registration order, to claim EXTERNAL nodes during emission; the
// GenericComponentHandler is always consulted last as a fallback.
func (e VHDLExport) WithExternalHandler(h ExternalNodeHandler) VHDLExport {
	e.handlers = append(e.handlers, h)
	return e
}

// Export compiles circuit's optimized IR into a VHDL AST and writes one
// `.vhdl` file per entity and per package into the destination directory,
// per spec.md §6: the helper package first, then dependency-sorted
// entities so a sub-entity's file always exists before anything that
// would instantiate it. Returns the built AST so a caller can chain
// RecordTestbench/WriteGHDLScript against the same compiled tree.
func (e VHDLExport) Export(circuit *hlim.Circuit) (*AST, error) {
	ast, err := CompileAST(circuit)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		panic(&hlim.Error{Kind: hlim.VHDLOutputOpenFailed, Message: err.Error()})
	}

	registry := NewExternalHandlerRegistry(append(e.handlers, GenericComponentHandler{})...)

	if err := e.writeFile(ast.Helper.Name, RenderHelperPackage(ast.Helper)); err != nil {
		return nil, err
	}

	for _, ent := range getDependencySortedEntities(ast) {
		if ent.Memory != nil {
			text, err := renderMemoryEntity(ent.Memory, ent.NS, ast.Helper.Name)
			if err != nil {
				return nil, err
			}
			if err := e.writeFile(ent.Name, text); err != nil {
				return nil, err
			}
			continue
		}
		text, err := RenderEntity(ent, registry, ast.Helper.Name)
		if err != nil {
			return nil, err
		}
		if err := e.writeFile(ent.Name, text); err != nil {
			return nil, err
		}
	}

	return ast, nil
}

func (e VHDLExport) writeFile(name, contents string) error {
	ext := e.policy.Extension
	if ext == "" {
		ext = ".vhdl"
	}
	path := filepath.Join(e.dir, name+ext)

	f, err := os.Create(path)
	if err != nil {
		panic(&hlim.Error{Kind: hlim.VHDLOutputOpenFailed, Message: err.Error()})
	}
	trackOpenFile(f)
	defer func() {
		untrackOpenFile(f)
		_ = f.Close()
	}()

	_, err = f.WriteString(contents)
	return err
}
