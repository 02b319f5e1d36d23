// Package source resolves caller-declared inputs — explicit files,
// directories, and externally-packaged module contributions — into the flat
// list of IDL documents the model builder consumes.
package source

// Extension is the recognized IDL file suffix for directory expansion.
// Explicitly-declared files are taken regardless of suffix.
const Extension = ".idl"

// Declaration is a caller-registered input: a single IDL file or a directory
// of IDL files, with the directory holding the hand-written implementation
// classes the generated bindings delegate to. Immutable once registered.
type Declaration struct {
	IDLPath string
	ImplDir string
}

// ModuleContribution names an externally-packaged set of IDL files declared
// through a descriptor file rather than a direct path. The descriptor's
// idlbind section lists the module's IDL sources and output subpath;
// descriptors without that section contribute nothing.
type ModuleContribution struct {
	Name           string
	DescriptorPath string
}

// FileEntry is one physical IDL file with its binding provenance. Exactly
// one of ImplDir and OutputSubpath is meaningful: entries resolved from a
// module contribution carry the module's output subpath and their types are
// treated as imported (emitted by the owning module's own build).
type FileEntry struct {
	IDLPath       string
	ImplDir       string
	OutputSubpath string
}

// FromModule reports whether this entry came from a module contribution.
func (e FileEntry) FromModule() bool {
	return e.OutputSubpath != ""
}

// Document pairs a file's full text with the provenance metadata of its
// FileEntry, order-preserving with the entry list.
type Document struct {
	Path          string
	Text          string
	ImplDir       string
	OutputSubpath string
}

// FromModule reports whether this document came from a module contribution.
func (d Document) FromModule() bool {
	return d.OutputSubpath != ""
}
