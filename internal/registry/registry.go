package registry

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/planweave/planweave/internal/ctxlog"
	"github.com/planweave/planweave/internal/ir"
)

//go:embed manifests/*.hcl
var builtinManifests embed.FS

// FactoryDef describes one registered factory helper: a call the topology
// extractor turns into a synthetic worker node.
type FactoryDef struct {
	Name             string
	Module           string
	DefaultClassName string
	Variant          ir.VariantKind
	InputTypes       []string
	OutputTypes      []string
}

// Registry holds the manifest-loaded tables. Immutable once Load returns.
type Registry struct {
	factories    map[string]*FactoryDef
	factoryOrder []string

	allowed     map[string][]string
	moduleOrder []string

	// classModule maps an allowed class name to the first module that
	// declared it, for resolving implicit references.
	classModule map[string]string
}

// Load builds a registry from the embedded built-in manifests plus any
// extra manifest directories, then validates it. Directories are merged in
// argument order; a duplicate factory name is an error.
func Load(ctx context.Context, extraDirs ...string) (*Registry, error) {
	logger := ctxlog.FromContext(ctx)

	reg := &Registry{
		factories:   map[string]*FactoryDef{},
		allowed:     map[string][]string{},
		classModule: map[string]string{},
	}

	if err := reg.loadBuiltins(ctx); err != nil {
		return nil, err
	}
	for _, dir := range extraDirs {
		if err := reg.loadDir(ctx, dir); err != nil {
			return nil, err
		}
	}
	if err := reg.validate(); err != nil {
		return nil, err
	}

	logger.Debug("Registry loaded.",
		"factories", len(reg.factories),
		"allowed_modules", len(reg.allowed))
	return reg, nil
}

func (r *Registry) loadBuiltins(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	entries, err := fs.Glob(builtinManifests, "manifests/*.hcl")
	if err != nil {
		return fmt.Errorf("globbing built-in manifests: %w", err)
	}
	for _, name := range entries {
		src, err := builtinManifests.ReadFile(name)
		if err != nil {
			return fmt.Errorf("reading built-in manifest %s: %w", name, err)
		}
		if err := r.applyManifest(src, name); err != nil {
			return err
		}
		logger.Debug("Loaded built-in manifest.", "file", name)
	}
	return nil
}

// loadDir merges every .hcl manifest under dir, walked in lexical order so
// loading stays deterministic.
func (r *Registry) loadDir(ctx context.Context, dir string) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Registry loading manifest directory.", "path", dir)

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".hcl") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking manifest directory %s: %w", dir, err)
	}
	if len(files) == 0 {
		logger.Warn("No .hcl manifest files found in path.", "path", dir)
		return nil
	}

	for _, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading manifest %s: %w", path, err)
		}
		if err := r.applyManifest(src, path); err != nil {
			return err
		}
		logger.Debug("Loaded manifest file.", "file", path)
	}
	return nil
}

func (r *Registry) applyManifest(src []byte, filename string) error {
	manifest, err := decodeManifest(src, filename)
	if err != nil {
		return err
	}

	for _, f := range manifest.Factories {
		inputs, err := stringList(f.InputTypes)
		if err != nil {
			return fmt.Errorf("factory %q in %s: input_types: %w", f.Name, filename, err)
		}
		outputs, err := stringList(f.OutputTypes)
		if err != nil {
			return fmt.Errorf("factory %q in %s: output_types: %w", f.Name, filename, err)
		}
		def := &FactoryDef{
			Name:             f.Name,
			Module:           f.Module,
			DefaultClassName: f.DefaultClassName,
			Variant:          ir.VariantKind(f.Variant),
			InputTypes:       inputs,
			OutputTypes:      outputs,
		}
		if _, exists := r.factories[def.Name]; exists {
			return fmt.Errorf("factory %q in %s: already registered", def.Name, filename)
		}
		r.factories[def.Name] = def
		r.factoryOrder = append(r.factoryOrder, def.Name)
	}

	for _, a := range manifest.Allows {
		classes, err := stringList(a.Classes)
		if err != nil {
			return fmt.Errorf("allow %q in %s: classes: %w", a.Module, filename, err)
		}
		if _, exists := r.allowed[a.Module]; !exists {
			r.moduleOrder = append(r.moduleOrder, a.Module)
		}
		r.allowed[a.Module] = append(r.allowed[a.Module], classes...)
		for _, class := range classes {
			if _, exists := r.classModule[class]; !exists {
				r.classModule[class] = a.Module
			}
		}
	}
	return nil
}

// validate checks manifest-declared names against the fixed vocabulary.
func (r *Registry) validate() error {
	var errs []string
	for _, name := range r.factoryOrder {
		f := r.factories[name]
		if !ir.KnownVariant(f.Variant) {
			errs = append(errs, fmt.Sprintf("factory %q: unknown variant %q", f.Name, f.Variant))
		}
		if !ir.ValidIdentifier(f.Name) {
			errs = append(errs, fmt.Sprintf("factory %q: name is not a valid identifier", f.Name))
		}
		if !ir.ValidIdentifier(f.DefaultClassName) {
			errs = append(errs, fmt.Sprintf("factory %q: default_class_name %q is not a valid identifier", f.Name, f.DefaultClassName))
		}
		if f.Module == "" {
			errs = append(errs, fmt.Sprintf("factory %q: module must be set", f.Name))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// Factory returns the factory registered under name.
func (r *Registry) Factory(name string) (*FactoryDef, bool) {
	f, ok := r.factories[name]
	return f, ok
}

// Factories returns all factories in registration order.
func (r *Registry) Factories() []*FactoryDef {
	out := make([]*FactoryDef, 0, len(r.factoryOrder))
	for _, name := range r.factoryOrder {
		out = append(out, r.factories[name])
	}
	return out
}

// IsAllowed reports whether class may be imported from module.
func (r *Registry) IsAllowed(module, class string) bool {
	for _, allowed := range r.allowed[module] {
		if allowed == class {
			return true
		}
	}
	return false
}

// AllowedModules returns the allow-listed module paths in declaration order.
func (r *Registry) AllowedModules() []string {
	return append([]string(nil), r.moduleOrder...)
}

// TaskImportModule resolves a class name to the module it may be imported
// from, skipping framework vocabulary and factory helpers: those are never
// modeled as imported tasks.
func (r *Registry) TaskImportModule(class string) (string, bool) {
	if IsFrameworkName(class) {
		return "", false
	}
	if _, isFactory := r.factories[class]; isFactory {
		return "", false
	}
	module, ok := r.classModule[class]
	return module, ok
}
