// Package emit writes generated binding files from the fully-resolved
// registry: one shared utility module plus one source file per non-imported
// interface and dictionary.
package emit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/teranos/idlbind/errors"
	"github.com/teranos/idlbind/gen"
	"github.com/teranos/idlbind/logger"
	"github.com/teranos/idlbind/registry"
)

const (
	// DefaultExt is the generated file extension.
	DefaultExt = ".js"
	// DefaultCoercionModule is the bare specifier of the coercion helper
	// every generated file imports.
	DefaultCoercionModule = "webidl-conversions"
	// DefaultMaxWidth is the formatter line-width budget.
	DefaultMaxWidth = 100
)

// Options configures an emission driver. Zero values take the defaults
// above; UtilsPath defaults to <OutputDir>/utils<Ext>.
type Options struct {
	OutputDir      string
	Ext            string
	UtilsPath      string
	CoercionModule string
	MaxWidth       int
	Formatter      Formatter
}

// Driver iterates the registry and writes generated output. Entry writes
// are issued concurrently: entries are mutually independent and each writes
// a distinct path, with only read-only registry lookups shared between
// them. The utility module is written before the entry fan-out starts so
// generated files can resolve it at load time.
type Driver struct {
	opts Options
}

// NewDriver creates a driver, applying option defaults.
func NewDriver(opts Options) (*Driver, error) {
	if opts.OutputDir == "" {
		return nil, errors.New("emit: output directory is required")
	}
	if opts.Ext == "" {
		opts.Ext = DefaultExt
	}
	if opts.UtilsPath == "" {
		opts.UtilsPath = filepath.Join(opts.OutputDir, "utils"+opts.Ext)
	}
	if opts.CoercionModule == "" {
		opts.CoercionModule = DefaultCoercionModule
	}
	if opts.MaxWidth == 0 {
		opts.MaxWidth = DefaultMaxWidth
	}
	if opts.Formatter == nil {
		opts.Formatter = DefaultFormatter{}
	}
	return &Driver{opts: opts}, nil
}

// Emit writes the utility module and every non-imported entry.
func (d *Driver) Emit(ctx context.Context, reg *registry.Registry) error {
	if err := os.MkdirAll(d.opts.OutputDir, 0755); err != nil {
		return errors.Wrapf(err, "failed to create output directory %q", d.opts.OutputDir)
	}
	if err := d.writeUtils(); err != nil {
		return err
	}

	var emitted, skipped int
	g, _ := errgroup.WithContext(ctx)
	for _, entry := range gen.Entries(reg) {
		if entry.Imported() {
			skipped++
			logger.Logger.Debugw("skipping imported entry",
				logger.FieldType, entry.Name(),
				logger.FieldKind, string(entry.Kind))
			continue
		}
		emitted++
		entry := entry
		g.Go(func() error {
			return d.emitEntry(entry, reg)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	logger.Logger.Infow("emitted bindings",
		logger.FieldPhase, "emit",
		logger.FieldOutputDir, d.opts.OutputDir,
		logger.FieldCount, emitted,
		"skipped_imported", skipped)
	return nil
}

func (d *Driver) writeUtils() error {
	text, err := d.opts.Formatter.Format(gen.UtilsModule, d.opts.MaxWidth)
	if err != nil {
		return errors.Wrap(err, "failed to format utils module")
	}
	if dir := filepath.Dir(d.opts.UtilsPath); dir != d.opts.OutputDir {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "failed to create utils directory %q", dir)
		}
	}
	if err := os.WriteFile(d.opts.UtilsPath, []byte(text), 0644); err != nil {
		return errors.Wrapf(err, "failed to write utils module %q", d.opts.UtilsPath)
	}
	return nil
}

func (d *Driver) emitEntry(entry gen.Entry, reg *registry.Registry) error {
	body, err := entry.Render(reg)
	if err != nil {
		return errors.Wrapf(err, "failed to render %s %q", entry.Kind, entry.Name())
	}

	preamble, err := d.preamble(entry)
	if err != nil {
		return err
	}

	text, err := d.opts.Formatter.Format(preamble+"\n"+body, d.opts.MaxWidth)
	if err != nil {
		return errors.Wrapf(err, "failed to format generated source for %q", entry.Name())
	}

	path := filepath.Join(d.opts.OutputDir, entry.Name()+d.opts.Ext)
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return errors.Wrapf(err, "failed to write %q", path)
	}
	logger.Logger.Debugw("wrote binding",
		logger.FieldType, entry.Name(),
		logger.FieldPath, path)
	return nil
}

// preamble builds the fixed import header: the coercion helper, the shared
// utility module, and, for interfaces, the hand-written implementation
// module.
func (d *Driver) preamble(entry gen.Entry) (string, error) {
	utilsSpec, err := RelativeModule(d.opts.OutputDir, d.opts.UtilsPath)
	if err != nil {
		return "", err
	}

	header := "\"use strict\";\n\n"
	header += fmt.Sprintf("const conversions = require(%q);\n", d.opts.CoercionModule)
	header += fmt.Sprintf("const utils = require(%q);\n", utilsSpec)

	if entry.Kind == registry.KindInterface {
		implPath := filepath.Join(entry.ImplDir(), entry.Name()+d.opts.Ext)
		implSpec, err := RelativeModule(d.opts.OutputDir, implPath)
		if err != nil {
			return "", err
		}
		header += fmt.Sprintf("const Impl = require(%q);\n", implSpec)
	}
	return header, nil
}
