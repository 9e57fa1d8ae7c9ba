package pattern

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/banshee-data/livox.sim/internal/security"
)

const packageScheme = "package://"

// ResolvePath maps a table location to a filesystem path. Locations of the
// form package://<name>/<rel> are looked up in roots, which maps a package
// name to its share directory. Any other location is returned unchanged.
func ResolvePath(url string, roots map[string]string) (string, error) {
	if !strings.HasPrefix(url, packageScheme) {
		return url, nil
	}

	rest := strings.TrimPrefix(url, packageScheme)
	pkg, rel, ok := strings.Cut(rest, "/")
	if !ok {
		return "", fmt.Errorf("%w: could not parse %q into a file path", ErrConfig, url)
	}
	if pkg == "" {
		return "", fmt.Errorf("%w: package name must not be empty in %q", ErrConfig, url)
	}

	root, ok := roots[pkg]
	if !ok {
		return "", fmt.Errorf("%w: package [%s] does not exist", ErrConfig, pkg)
	}

	resolved := filepath.Join(root, filepath.FromSlash(rel))
	if err := security.ValidatePathWithinDirectory(resolved, root); err != nil {
		return "", fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return resolved, nil
}
