// Package registry holds the build-scoped symbol table of resolved type
// declarations. A Builder is populated by the model builder in two passes
// and then sealed; every later stage sees only the immutable Registry view,
// so no consumer can observe a partially-resolved table.
package registry

import (
	"sort"

	"github.com/teranos/idlbind/errors"
	"github.com/teranos/idlbind/idl"
)

// TypeKind discriminates registry entries.
type TypeKind string

const (
	KindInterface  TypeKind = "interface"
	KindDictionary TypeKind = "dictionary"
	KindTypedef    TypeKind = "typedef"
)

// Interface is a fully-resolved interface declaration.
type Interface struct {
	Name     string
	Inherits string
	Members  []idl.Member
	ExtAttrs []idl.ExtAttr

	// Mixins lists interfaces whose members this interface also exposes,
	// in resolution order. Applied lazily by the generator, not expanded
	// here.
	Mixins []string

	// Imported marks declarations owned by another build; they are present
	// for reference resolution but never emitted by this build.
	Imported bool

	// ImplDir is where the hand-written backing implementation lives.
	ImplDir string

	// OutputSubpath hints where the owning build emits this type.
	OutputSubpath string
}

// Dictionary is a fully-resolved dictionary declaration. Dictionaries have
// no implementation binding.
type Dictionary struct {
	Name     string
	Inherits string
	Members  []idl.Member
	ExtAttrs []idl.ExtAttr

	Imported      bool
	OutputSubpath string
}

// Typedef is a type alias. Typedefs carry no binding metadata and do not
// participate in cross-kind name-collision detection.
type Typedef struct {
	Name string
	Type string
}

// Builder accumulates declarations during model building. Zero value is
// ready to use. Not safe for concurrent use; the model-building phase is
// single-threaded by design.
type Builder struct {
	interfaces   map[string]*Interface
	dictionaries map[string]*Dictionary
	typedefs     map[string]*Typedef
	kinds        map[string]TypeKind
	sealed       bool
}

// NewBuilder creates an empty registry builder.
func NewBuilder() *Builder {
	return &Builder{
		interfaces:   make(map[string]*Interface),
		dictionaries: make(map[string]*Dictionary),
		typedefs:     make(map[string]*Typedef),
		kinds:        make(map[string]TypeKind),
	}
}

// AddInterface registers a full interface definition. A name already present
// in the combined index, under any kind, is a fatal duplicate.
func (b *Builder) AddInterface(iface *Interface) error {
	if err := b.checkWritable(iface.Name); err != nil {
		return err
	}
	b.interfaces[iface.Name] = iface
	b.kinds[iface.Name] = KindInterface
	return nil
}

// AddDictionary registers a full dictionary definition.
func (b *Builder) AddDictionary(dict *Dictionary) error {
	if err := b.checkWritable(dict.Name); err != nil {
		return err
	}
	b.dictionaries[dict.Name] = dict
	b.kinds[dict.Name] = KindDictionary
	return nil
}

// AddTypedef registers a type alias. Typedefs stay out of the combined
// index; a typedef sharing a name with an interface is not a collision in
// this model.
func (b *Builder) AddTypedef(td *Typedef) error {
	if b.sealed {
		return errors.Newf("registry is sealed; cannot register typedef %q", td.Name)
	}
	if _, ok := b.typedefs[td.Name]; ok {
		return errors.Newf("duplicate typedef %q", td.Name)
	}
	b.typedefs[td.Name] = td
	return nil
}

// Interface returns the mutable entry for name during the build phases.
func (b *Builder) Interface(name string) (*Interface, bool) {
	iface, ok := b.interfaces[name]
	return iface, ok
}

// Dictionary returns the mutable entry for name during the build phases.
func (b *Builder) Dictionary(name string) (*Dictionary, bool) {
	dict, ok := b.dictionaries[name]
	return dict, ok
}

func (b *Builder) checkWritable(name string) error {
	if b.sealed {
		return errors.Newf("registry is sealed; cannot register %q", name)
	}
	if existing, ok := b.kinds[name]; ok {
		return errors.Newf("duplicate type name %q: already registered as %s", name, existing)
	}
	return nil
}

// Build seals the builder and returns the read-only view. Further
// registration attempts fail.
func (b *Builder) Build() *Registry {
	b.sealed = true
	return &Registry{
		interfaces:   b.interfaces,
		dictionaries: b.dictionaries,
		typedefs:     b.typedefs,
		kinds:        b.kinds,
	}
}

// Registry is the immutable view over the fully-resolved symbol table.
type Registry struct {
	interfaces   map[string]*Interface
	dictionaries map[string]*Dictionary
	typedefs     map[string]*Typedef
	kinds        map[string]TypeKind
}

// Interface looks up an interface by name.
func (r *Registry) Interface(name string) (*Interface, bool) {
	iface, ok := r.interfaces[name]
	return iface, ok
}

// Dictionary looks up a dictionary by name.
func (r *Registry) Dictionary(name string) (*Dictionary, bool) {
	dict, ok := r.dictionaries[name]
	return dict, ok
}

// Typedef looks up a type alias by name.
func (r *Registry) Typedef(name string) (*Typedef, bool) {
	td, ok := r.typedefs[name]
	return td, ok
}

// KindOf returns the combined-index kind for name. Typedefs are not in the
// combined index and report false here.
func (r *Registry) KindOf(name string) (TypeKind, bool) {
	kind, ok := r.kinds[name]
	return kind, ok
}

// Names returns the combined index's names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Interfaces returns all interfaces sorted by name.
func (r *Registry) Interfaces() []*Interface {
	out := make([]*Interface, 0, len(r.interfaces))
	for _, iface := range r.interfaces {
		out = append(out, iface)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Dictionaries returns all dictionaries sorted by name.
func (r *Registry) Dictionaries() []*Dictionary {
	out := make([]*Dictionary, 0, len(r.dictionaries))
	for _, dict := range r.dictionaries {
		out = append(out, dict)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len reports the combined index size.
func (r *Registry) Len() int {
	return len(r.kinds)
}
