package store

import (
	"path"
	"strings"
)

// JoinPath rebuilds a file path from its directory row and its pathname.
// A directory that already ends in "/" (the root) gets no second separator.
func JoinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	if strings.HasSuffix(dir, "/") {
		return dir + name
	}
	return dir + "/" + name
}

// SplitPath splits a file path into the directory row and the pathname
// stored beneath it. The front end's directory is used when the file lives
// under it, or when the file is a bare name relative to it; otherwise the
// file's own parent directory is used. For any file containing a "/",
// JoinPath(SplitPath(file, dir)) == file.
func SplitPath(file, dir string) (string, string) {
	dir = strings.TrimSuffix(dir, "/")
	if dir == "" && strings.HasPrefix(file, "/") {
		dir = "/"
	}
	if dir != "" {
		prefix := dir + "/"
		if dir == "/" {
			prefix = "/"
		}
		if rest, ok := strings.CutPrefix(file, prefix); ok && rest != "" {
			return dir, rest
		}
	}
	if !strings.Contains(file, "/") {
		return dir, file
	}
	parent, name := path.Split(file)
	if parent != "/" {
		parent = strings.TrimSuffix(parent, "/")
	}
	return parent, name
}
