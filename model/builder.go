// Package model turns loaded IDL documents into the resolved type registry.
//
// Resolution is two-pass: pass one registers every full (non-partial)
// interface, dictionary, and typedef across all documents; pass two merges
// partial definitions into their full counterparts and records mixin
// relationships. Partials and mixins may reference full definitions that
// appear in later-processed documents, so a single linear pass cannot
// resolve them; splitting "register everything total" from "merge
// everything partial" makes pass-2 lookups target a fully-populated
// registry regardless of input ordering.
package model

import (
	"github.com/teranos/idlbind/errors"
	"github.com/teranos/idlbind/idl"
	"github.com/teranos/idlbind/logger"
	"github.com/teranos/idlbind/registry"
	"github.com/teranos/idlbind/source"
)

// Options controls the error policy of model building.
type Options struct {
	// Relaxed downgrades the four model-error classes — unknown instruction
	// kind, partial interface without a full definition, partial dictionary
	// without a full definition, mixin with an unknown target — from fatal
	// errors to silent drops. Duplicate registration stays fatal in every
	// mode, as do I/O, parse, generation, and formatting errors.
	Relaxed bool
}

// Builder runs the two-pass resolution. Parsing and both passes are
// synchronous and single-threaded: pass two requires pass one to be wholly
// complete across all documents, and the registry builder is not safe for
// concurrent mutation.
type Builder struct {
	parser idl.Parser
	opts   Options
}

// NewBuilder creates a model builder using the given parser collaborator.
func NewBuilder(parser idl.Parser, opts Options) *Builder {
	return &Builder{parser: parser, opts: opts}
}

// instructionRef pairs an instruction with the provenance of its document.
type instructionRef struct {
	inst idl.Instruction
	doc  *source.Document
}

// BuildRegistry parses every document and resolves the instruction streams
// into a sealed, read-only registry.
func (b *Builder) BuildRegistry(docs []source.Document) (*registry.Registry, error) {
	refs, err := b.parseAll(docs)
	if err != nil {
		return nil, err
	}

	rb := registry.NewBuilder()
	if err := b.registerFullDefinitions(rb, refs); err != nil {
		return nil, err
	}
	if err := b.mergePartialsAndMixins(rb, refs); err != nil {
		return nil, err
	}

	reg := rb.Build()
	logger.Logger.Infow("resolved type registry",
		logger.FieldPhase, "resolve",
		logger.FieldCount, reg.Len())
	return reg, nil
}

func (b *Builder) parseAll(docs []source.Document) ([]instructionRef, error) {
	var refs []instructionRef
	for i := range docs {
		doc := &docs[i]
		insts, err := b.parser.Parse(doc.Text)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse %q", doc.Path)
		}
		logger.Logger.Debugw("parsed document",
			logger.FieldFile, doc.Path,
			logger.FieldCount, len(insts))
		for _, inst := range insts {
			refs = append(refs, instructionRef{inst: inst, doc: doc})
		}
	}
	return refs, nil
}

// registerFullDefinitions is pass one.
func (b *Builder) registerFullDefinitions(rb *registry.Builder, refs []instructionRef) error {
	for _, ref := range refs {
		inst, doc := ref.inst, ref.doc
		switch inst.Kind {
		case idl.KindInterface:
			if inst.Partial {
				continue // pass two
			}
			err := rb.AddInterface(&registry.Interface{
				Name:          inst.Name,
				Inherits:      inst.Inherits,
				Members:       inst.Members,
				ExtAttrs:      inst.ExtAttrs,
				Imported:      doc.FromModule(),
				ImplDir:       doc.ImplDir,
				OutputSubpath: doc.OutputSubpath,
			})
			if err != nil {
				return errors.Wrapf(err, "in %q", doc.Path)
			}

		case idl.KindDictionary:
			if inst.Partial {
				continue // pass two
			}
			err := rb.AddDictionary(&registry.Dictionary{
				Name:          inst.Name,
				Inherits:      inst.Inherits,
				Members:       inst.Members,
				ExtAttrs:      inst.ExtAttrs,
				Imported:      doc.FromModule(),
				OutputSubpath: doc.OutputSubpath,
			})
			if err != nil {
				return errors.Wrapf(err, "in %q", doc.Path)
			}

		case idl.KindTypedef:
			if err := rb.AddTypedef(&registry.Typedef{Name: inst.Name, Type: inst.Type}); err != nil {
				return errors.Wrapf(err, "in %q", doc.Path)
			}

		case idl.KindImplements:
			continue // pass two

		default:
			if b.opts.Relaxed {
				logger.Logger.Debugw("dropping unsupported instruction",
					logger.FieldKind, string(inst.Kind),
					logger.FieldType, inst.Name,
					logger.FieldFile, doc.Path)
				continue
			}
			return errors.Newf("unsupported instruction kind %q for %q in %q",
				inst.Kind, inst.Name, doc.Path)
		}
	}
	return nil
}

// mergePartialsAndMixins is pass two. Partial members append onto the full
// declaration in document-processing order; that order is significant for
// positional code generation.
func (b *Builder) mergePartialsAndMixins(rb *registry.Builder, refs []instructionRef) error {
	for _, ref := range refs {
		inst, doc := ref.inst, ref.doc
		switch {
		case inst.Kind == idl.KindInterface && inst.Partial:
			iface, ok := rb.Interface(inst.Name)
			if !ok {
				if b.opts.Relaxed {
					logger.Logger.Debugw("dropping partial interface without full definition",
						logger.FieldType, inst.Name,
						logger.FieldFile, doc.Path)
					continue
				}
				return errors.Newf("partial interface %q in %q has no full definition",
					inst.Name, doc.Path)
			}
			iface.Members = append(iface.Members, inst.Members...)
			iface.ExtAttrs = append(iface.ExtAttrs, inst.ExtAttrs...)

		case inst.Kind == idl.KindDictionary && inst.Partial:
			dict, ok := rb.Dictionary(inst.Name)
			if !ok {
				if b.opts.Relaxed {
					logger.Logger.Debugw("dropping partial dictionary without full definition",
						logger.FieldType, inst.Name,
						logger.FieldFile, doc.Path)
					continue
				}
				return errors.Newf("partial dictionary %q in %q has no full definition",
					inst.Name, doc.Path)
			}
			dict.Members = append(dict.Members, inst.Members...)
			dict.ExtAttrs = append(dict.ExtAttrs, inst.ExtAttrs...)

		case inst.Kind == idl.KindImplements:
			iface, ok := rb.Interface(inst.Name)
			if !ok {
				if b.opts.Relaxed {
					logger.Logger.Debugw("dropping implements with unknown target",
						logger.FieldType, inst.Name,
						logger.FieldFile, doc.Path)
					continue
				}
				return errors.Newf("%q implements %q in %q, but %[1]q is not a registered interface",
					inst.Name, inst.Mixin, doc.Path)
			}
			iface.Mixins = append(iface.Mixins, inst.Mixin)
		}
	}
	return nil
}
