package hydrate

import (
	"path/filepath"
	"slices"
	"testing"

	"github.com/Iron-Ham/packrat/internal/errors"
	"github.com/Iron-Ham/packrat/internal/testutil"
)

func TestHydrate_BarePathRewrite(t *testing.T) {
	dir := testutil.SetupTestTree(t, map[string]string{
		"a.txt":          "content",
		"sub/b.txt":      "content",
		"sub/deep/c.txt": "content",
	})

	plain, err := Hydrate(dir)
	if err != nil {
		t.Fatalf("Hydrate(%q) failed: %v", dir, err)
	}
	slashed, err := Hydrate(dir + "/")
	if err != nil {
		t.Fatalf("Hydrate(%q) failed: %v", dir+"/", err)
	}

	// A bare path and the same path with a trailing separator must expand
	// to the same effective pattern and the same files.
	wantPattern := dir + "/**/*"
	if len(plain.Patterns) != 1 || plain.Patterns[0] != wantPattern {
		t.Errorf("Patterns = %v, want [%s]", plain.Patterns, wantPattern)
	}
	if !slices.Equal(plain.Patterns, slashed.Patterns) {
		t.Errorf("Patterns differ: %v vs %v", plain.Patterns, slashed.Patterns)
	}
	if !slices.Equal(plain.Files, slashed.Files) {
		t.Errorf("Files differ: %v vs %v", plain.Files, slashed.Files)
	}

	want := []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "sub", "b.txt"),
		filepath.Join(dir, "sub", "deep", "c.txt"),
	}
	gotSorted := slices.Clone(plain.Files)
	slices.Sort(gotSorted)
	slices.Sort(want)
	if !slices.Equal(gotSorted, want) {
		t.Errorf("Files = %v, want %v", gotSorted, want)
	}
}

func TestHydrate_FilesOnly(t *testing.T) {
	dir := testutil.SetupTestTree(t, map[string]string{"sub/a.txt": "content"})

	result, err := Hydrate(dir)
	if err != nil {
		t.Fatalf("Hydrate failed: %v", err)
	}

	// The sub directory itself matches the pattern but must not appear.
	for _, f := range result.Files {
		if f == filepath.Join(dir, "sub") {
			t.Errorf("Files contains directory %s", f)
		}
	}
	if len(result.Files) != 1 {
		t.Errorf("len(Files) = %d, want 1: %v", len(result.Files), result.Files)
	}
}

func TestHydrate_GlobPassthrough(t *testing.T) {
	dir := testutil.SetupTestTree(t, map[string]string{
		"a.txt": "content",
		"b.txt": "content",
		"c.md":  "content",
	})

	result, err := Hydrate(dir + "/*.txt")
	if err != nil {
		t.Fatalf("Hydrate failed: %v", err)
	}

	// A pattern with wildcard syntax is used as given, not rewritten.
	if len(result.Patterns) != 1 || result.Patterns[0] != dir+"/*.txt" {
		t.Errorf("Patterns = %v, want [%s]", result.Patterns, dir+"/*.txt")
	}

	want := []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt")}
	got := slices.Clone(result.Files)
	slices.Sort(got)
	if !slices.Equal(got, want) {
		t.Errorf("Files = %v, want %v", got, want)
	}
}

func TestHydrate_InputOrderPreserved(t *testing.T) {
	dir := testutil.SetupTestTree(t, map[string]string{
		"one/a.txt": "content",
		"two/b.txt": "content",
	})

	result, err := Hydrate([]string{
		filepath.Join(dir, "two"),
		filepath.Join(dir, "one"),
	})
	if err != nil {
		t.Fatalf("Hydrate failed: %v", err)
	}

	want := []string{
		filepath.Join(dir, "two", "b.txt"),
		filepath.Join(dir, "one", "a.txt"),
	}
	if !slices.Equal(result.Files, want) {
		t.Errorf("Files = %v, want %v", result.Files, want)
	}

	wantPatterns := []string{
		filepath.Join(dir, "two") + "/**/*",
		filepath.Join(dir, "one") + "/**/*",
	}
	if !slices.Equal(result.Patterns, wantPatterns) {
		t.Errorf("Patterns = %v, want %v", result.Patterns, wantPatterns)
	}
}

func TestHydrate_AnySliceInput(t *testing.T) {
	dir := testutil.SetupTestTree(t, map[string]string{"a.txt": "content"})

	result, err := Hydrate([]any{dir + "/*.txt"})
	if err != nil {
		t.Fatalf("Hydrate failed: %v", err)
	}
	if len(result.Files) != 1 {
		t.Errorf("len(Files) = %d, want 1", len(result.Files))
	}
}

func TestHydrate_InvalidInputs(t *testing.T) {
	tests := []struct {
		name  string
		input any
	}{
		{"int input", 42},
		{"map input", map[string]string{"a": "b"}},
		{"nil input", nil},
		{"non-string element", []any{"ok", 7}},
		{"nested slice element", []any{[]string{"nope"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Hydrate(tt.input)
			if err == nil {
				t.Fatal("Hydrate should fail")
			}
			if !errors.Is(err, errors.ErrInvalidInput) {
				t.Errorf("error = %v, want ErrInvalidInput match", err)
			}
			var invalidArg *errors.InvalidArgumentError
			if !errors.As(err, &invalidArg) {
				t.Errorf("error = %T, want *InvalidArgumentError", err)
			}
		})
	}
}

func TestHydrate_Excludes(t *testing.T) {
	dir := testutil.SetupTestTree(t, map[string]string{
		"a.txt":         "content",
		"debug.log":     "content",
		"sub/trace.log": "content",
	})

	result, err := Hydrate(dir, WithExcludes("*.log"))
	if err != nil {
		t.Fatalf("Hydrate failed: %v", err)
	}

	want := []string{filepath.Join(dir, "a.txt")}
	if !slices.Equal(result.Files, want) {
		t.Errorf("Files = %v, want %v", result.Files, want)
	}
}

func TestHydrate_InvalidExclude(t *testing.T) {
	_, err := Hydrate("anything", WithExcludes("[unclosed"))
	if err == nil {
		t.Fatal("Hydrate should fail on a bad exclude pattern")
	}
	if !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput match", err)
	}
}

func TestHydrate_RelativeToBaseDir(t *testing.T) {
	dir := testutil.SetupTestTree(t, map[string]string{
		"src/a.txt": "content",
		"src/b.txt": "content",
	})

	result, err := Hydrate("src", WithBaseDir(dir))
	if err != nil {
		t.Fatalf("Hydrate failed: %v", err)
	}

	want := []string{
		filepath.Join(dir, "src", "a.txt"),
		filepath.Join(dir, "src", "b.txt"),
	}
	got := slices.Clone(result.Files)
	slices.Sort(got)
	if !slices.Equal(got, want) {
		t.Errorf("Files = %v, want %v", got, want)
	}

	// The effective pattern stays in the caller's form, pre-resolution.
	if len(result.Patterns) != 1 || result.Patterns[0] != "src/**/*" {
		t.Errorf("Patterns = %v, want [src/**/*]", result.Patterns)
	}
}

func TestHydrate_NoMatches(t *testing.T) {
	dir := t.TempDir()

	result, err := Hydrate(dir + "/*.txt")
	if err != nil {
		t.Fatalf("Hydrate failed: %v", err)
	}
	if len(result.Files) != 0 {
		t.Errorf("Files = %v, want empty", result.Files)
	}
	if len(result.Patterns) != 1 {
		t.Errorf("Patterns = %v, want one entry", result.Patterns)
	}
}
