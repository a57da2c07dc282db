package util

import "testing"

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"src/main.c":       "src/main.c",
		"./src/main.c":     "src/main.c",
		"src\\sub\\a.c":    "src/sub/a.c",
		"  src/a.c ":       "src/a.c",
		".":                "",
		"src//nested/a.c":  "src/nested/a.c",
		"/abs/path/file.c": "abs/path/file.c",
	}
	for in, want := range cases {
		if got := NormalizePath(in); got != want {
			t.Errorf("NormalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDirOf(t *testing.T) {
	if got := DirOf("src/core/a.c"); got != "src/core" {
		t.Errorf("DirOf = %q, want src/core", got)
	}
	if got := DirOf("main.c"); got != "" {
		t.Errorf("DirOf top-level = %q, want empty", got)
	}
}

func TestBaseNameNoExt(t *testing.T) {
	if got := BaseNameNoExt("src/uart_driver.c"); got != "uart_driver" {
		t.Errorf("BaseNameNoExt = %q, want uart_driver", got)
	}
	if got := BaseNameNoExt("Makefile"); got != "Makefile" {
		t.Errorf("BaseNameNoExt = %q, want Makefile", got)
	}
}

func TestSortedStringKeys(t *testing.T) {
	m := map[string]int{"b": 1, "a": 2, "c": 3}
	keys := SortedStringKeys(m)
	if len(keys) != 3 || keys[0] != "a" || keys[1] != "b" || keys[2] != "c" {
		t.Errorf("unexpected key order: %v", keys)
	}
}
