package parser

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// To update golden files, set the environment variable:
//
//	UPDATE_GOLDEN=1 go test -run TestGolden ./parser/...
func updateGolden() bool {
	return os.Getenv("UPDATE_GOLDEN") == "1"
}

// goldenCompare compares actual against the .golden file next to input,
// rewriting it when UPDATE_GOLDEN is set.
func goldenCompare(t *testing.T, input, actual string) {
	t.Helper()
	goldenFile := strings.TrimSuffix(input, ".aw") + ".golden"
	if updateGolden() {
		require.NoError(t, os.WriteFile(goldenFile, []byte(actual), 0o644))
		t.Logf("updated golden file: %s", goldenFile)
		return
	}
	expected, err := os.ReadFile(goldenFile)
	if os.IsNotExist(err) {
		t.Fatalf("golden file not found: %s\nRun with UPDATE_GOLDEN=1 to create it.\nActual output:\n%s", goldenFile, actual)
	}
	require.NoError(t, err)
	require.Equal(t, string(expected), actual)
}

// TestGolden parses each .aw file in testdata/golden and compares the
// program's String() form against the matching .golden file.
func TestGolden(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "golden", "*.aw"))
	require.NoError(t, err)
	if len(files) == 0 {
		t.Skip("no golden test files found")
	}
	for _, file := range files {
		t.Run(strings.TrimSuffix(filepath.Base(file), ".aw"), func(t *testing.T) {
			input, err := os.ReadFile(file)
			require.NoError(t, err)
			program, err := Parse(context.Background(), string(input), WithFilename(file))
			require.NoError(t, err)
			goldenCompare(t, file, program.String())
		})
	}
}

// TestGoldenErrors parses files that must fail and compares the error text.
func TestGoldenErrors(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "golden", "errors", "*.aw"))
	require.NoError(t, err)
	if len(files) == 0 {
		t.Skip("no golden error test files found")
	}
	for _, file := range files {
		t.Run(strings.TrimSuffix(filepath.Base(file), ".aw"), func(t *testing.T) {
			input, err := os.ReadFile(file)
			require.NoError(t, err)
			_, parseErr := Parse(context.Background(), string(input), WithFilename(file))
			require.Error(t, parseErr)
			goldenCompare(t, file, parseErr.Error())
		})
	}
}
