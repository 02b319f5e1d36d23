// Package gen renders resolved registry entries into ECMAScript binding
// source. Entries are a tagged variant over the registry's kinds; rendering
// dispatches on the kind discriminator rather than a type hierarchy.
package gen

import (
	"github.com/teranos/idlbind/errors"
	"github.com/teranos/idlbind/registry"
)

// Entry is one emittable declaration: an interface or a dictionary, tagged
// by kind. Typedefs produce no output and have no entries.
type Entry struct {
	Kind       registry.TypeKind
	Interface  *registry.Interface
	Dictionary *registry.Dictionary
}

// Entries lists the registry's emittable declarations, interfaces first,
// each group sorted by name.
func Entries(reg *registry.Registry) []Entry {
	var out []Entry
	for _, iface := range reg.Interfaces() {
		out = append(out, Entry{Kind: registry.KindInterface, Interface: iface})
	}
	for _, dict := range reg.Dictionaries() {
		out = append(out, Entry{Kind: registry.KindDictionary, Dictionary: dict})
	}
	return out
}

// Name returns the declared type name.
func (e Entry) Name() string {
	switch e.Kind {
	case registry.KindInterface:
		return e.Interface.Name
	case registry.KindDictionary:
		return e.Dictionary.Name
	}
	return ""
}

// Imported reports whether the entry is owned by a different build and must
// be skipped during emission.
func (e Entry) Imported() bool {
	switch e.Kind {
	case registry.KindInterface:
		return e.Interface.Imported
	case registry.KindDictionary:
		return e.Dictionary.Imported
	}
	return false
}

// ImplDir returns the implementation directory for interfaces; dictionaries
// have no implementation binding and return "".
func (e Entry) ImplDir() string {
	if e.Kind == registry.KindInterface {
		return e.Interface.ImplDir
	}
	return ""
}

// Render produces the entry's generated source text against the finalized
// registry, so references to other types resolve. Render failures indicate
// a generator defect and are fatal.
func (e Entry) Render(reg *registry.Registry) (string, error) {
	switch e.Kind {
	case registry.KindInterface:
		return renderInterface(e.Interface, reg)
	case registry.KindDictionary:
		return renderDictionary(e.Dictionary, reg)
	}
	return "", errors.Newf("cannot render entry of kind %q", e.Kind)
}
