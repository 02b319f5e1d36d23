package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/teranos/idlbind/errors"
	"github.com/teranos/idlbind/logger"
)

// Collector resolves registered inputs into FileEntries. Inputs are
// validated synchronously at registration; resolution happens concurrently
// in Collect with a single failure aborting the whole phase.
type Collector struct {
	decls   []Declaration
	modules []ModuleContribution
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// AddSource registers a file or directory input. Validation errors are
// raised here, before any build phase runs.
func (c *Collector) AddSource(decl Declaration) error {
	if decl.IDLPath == "" {
		return errors.NewInvalidInputError("source declaration requires an idl path")
	}
	c.decls = append(c.decls, decl)
	return nil
}

// AddModule registers a module contribution.
func (c *Collector) AddModule(mod ModuleContribution) error {
	if mod.Name == "" {
		return errors.NewInvalidInputError("module contribution requires a name")
	}
	if mod.DescriptorPath == "" {
		return errors.NewInvalidInputError("module contribution %q requires a descriptor path", mod.Name)
	}
	c.modules = append(c.modules, mod)
	return nil
}

// Collect resolves every input concurrently and returns the flattened entry
// list in registration order. Any stat/read failure is fatal for the whole
// build; no partial results are returned.
func (c *Collector) Collect(ctx context.Context) ([]FileEntry, error) {
	resolved := make([][]FileEntry, len(c.decls)+len(c.modules))

	g, _ := errgroup.WithContext(ctx)
	for i, decl := range c.decls {
		i, decl := i, decl
		g.Go(func() error {
			entries, err := resolveDeclaration(decl)
			if err != nil {
				return err
			}
			resolved[i] = entries
			return nil
		})
	}
	for i, mod := range c.modules {
		i, mod := i, mod
		g.Go(func() error {
			entries, err := resolveModule(mod)
			if err != nil {
				return err
			}
			resolved[len(c.decls)+i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []FileEntry
	for _, entries := range resolved {
		out = append(out, entries...)
	}
	logger.Logger.Infow("collected IDL sources",
		logger.FieldPhase, "collect",
		logger.FieldCount, len(out))
	return out, nil
}

// resolveDeclaration expands a declaration: directories yield one entry per
// directly-contained *.idl file (no recursion), files yield exactly one
// entry with no extension check.
func resolveDeclaration(decl Declaration) ([]FileEntry, error) {
	info, err := os.Stat(decl.IDLPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat source %q", decl.IDLPath)
	}

	if !info.IsDir() {
		return []FileEntry{{IDLPath: decl.IDLPath, ImplDir: decl.ImplDir}}, nil
	}

	dirEntries, err := os.ReadDir(decl.IDLPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read source directory %q", decl.IDLPath)
	}

	var out []FileEntry
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), Extension) {
			continue
		}
		out = append(out, FileEntry{
			IDLPath: filepath.Join(decl.IDLPath, de.Name()),
			ImplDir: decl.ImplDir,
		})
	}
	logger.Logger.Debugw("expanded source directory",
		logger.FieldDir, decl.IDLPath,
		logger.FieldCount, len(out))
	return out, nil
}

// resolveModule reads the contribution's descriptor and expands its declared
// IDL list. Descriptors without an idlbind section contribute zero entries.
func resolveModule(mod ModuleContribution) ([]FileEntry, error) {
	desc, ok, err := ReadDescriptor(mod.DescriptorPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read descriptor for module %q", mod.Name)
	}
	if !ok {
		logger.Logger.Debugw("module descriptor has no idlbind section, skipping",
			logger.FieldModule, mod.Name,
			logger.FieldPath, mod.DescriptorPath)
		return nil, nil
	}

	baseDir := filepath.Dir(mod.DescriptorPath)
	out := make([]FileEntry, 0, len(desc.Sources))
	for _, rel := range desc.Sources {
		out = append(out, FileEntry{
			IDLPath:       filepath.Join(baseDir, rel),
			OutputSubpath: desc.OutputSubpath,
		})
	}
	logger.Logger.Debugw("resolved module contribution",
		logger.FieldModule, mod.Name,
		logger.FieldCount, len(out))
	return out, nil
}
