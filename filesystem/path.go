package filesystem

import "strings"

// ParentPath returns the parent directory path of p. Paths arrive
// bridge-normalized: absolute, '/'-separated, no trailing slash. The
// root's parent is the root itself.
func ParentPath(p string) string {
	i := strings.LastIndex(p, "/")
	if i <= 0 {
		return "/"
	}
	return p[:i]
}

// ChildName returns the bare name of child relative to dir, stripping the
// directory prefix and the separator that follows it.
func ChildName(dir, child string) string {
	name := strings.TrimPrefix(child, dir)
	return strings.TrimPrefix(name, "/")
}
