package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitPath(t *testing.T) {
	t.Parallel()
	cases := []struct {
		file, dir       string
		wantDir, wantNm string
	}{
		{"/src/x.cpp", "/src", "/src", "x.cpp"},
		{"/src/x.cpp", "/src/", "/src", "x.cpp"},
		{"/src/sub/x.cpp", "/src", "/src", "sub/x.cpp"},
		{"/x.cpp", "/", "/", "x.cpp"},
		{"/x.cpp", "", "/", "x.cpp"},
		{"/other/x.cpp", "/src", "/other", "x.cpp"},
		{"src/x.cpp", "src", "src", "x.cpp"},
		{"x.cpp", "/src", "/src", "x.cpp"},
		{"x.cpp", "", "", "x.cpp"},
	}
	for _, tc := range cases {
		dir, name := SplitPath(tc.file, tc.dir)
		assert.Equal(t, tc.wantDir, dir, "dir for %q in %q", tc.file, tc.dir)
		assert.Equal(t, tc.wantNm, name, "name for %q in %q", tc.file, tc.dir)
	}
}

func TestJoinPath_RoundTrip(t *testing.T) {
	t.Parallel()
	for _, file := range []string{"/src/x.cpp", "/x.cpp", "/a/b/c.h", "rel/x.cpp", "./x.cpp"} {
		dir, name := SplitPath(file, "")
		assert.Equal(t, file, JoinPath(dir, name))
	}
}
