package source

import (
	"github.com/spf13/viper"

	"github.com/teranos/idlbind/errors"
)

// DescriptorSection is the key of the build-tool section idlbind reads from
// a module descriptor. Descriptors are whatever structured format viper
// recognizes by extension (JSON, TOML, YAML).
const DescriptorSection = "idlbind"

// Descriptor is the idlbind section of a module descriptor: where the
// module's own build emits its generated bindings, and which IDL files it
// contributes, relative to the descriptor's directory.
type Descriptor struct {
	OutputSubpath string
	Sources       []string
}

// ReadDescriptor reads a module descriptor file. The second return is false
// when the file parses but carries no idlbind section; that is not an
// error. Unreadable or unparseable descriptors are fatal.
func ReadDescriptor(path string) (Descriptor, bool, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Descriptor{}, false, errors.Wrapf(err, "failed to read module descriptor %q", path)
	}

	section := v.Sub(DescriptorSection)
	if section == nil {
		return Descriptor{}, false, nil
	}

	return Descriptor{
		OutputSubpath: section.GetString("output_subpath"),
		Sources:       section.GetStringSlice("sources"),
	}, true, nil
}
