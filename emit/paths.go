package emit

import (
	"path/filepath"
	"strings"

	"github.com/teranos/idlbind/errors"
)

// RelativeModule computes the module specifier that resolves target from a
// file inside fromDir. Both paths are resolved against the working directory
// first, so a relative implementation dir still relates to an absolute
// output dir. Specifiers are slash-separated regardless of host OS and
// always prefixed "./" or "../" so loaders never mistake them for bare
// module names.
func RelativeModule(fromDir, target string) (string, error) {
	absFrom, err := filepath.Abs(fromDir)
	if err != nil {
		return "", errors.Wrapf(err, "cannot resolve %q", fromDir)
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return "", errors.Wrapf(err, "cannot resolve %q", target)
	}
	rel, err := filepath.Rel(absFrom, absTarget)
	if err != nil {
		return "", errors.Wrapf(err, "cannot express %q relative to %q", target, fromDir)
	}
	rel = filepath.ToSlash(rel)
	if rel != ".." && !strings.HasPrefix(rel, "../") {
		rel = "./" + rel
	}
	return rel, nil
}
