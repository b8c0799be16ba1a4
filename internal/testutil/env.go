package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// MustMarshalJSON marshals v to JSON or fails the test.
func MustMarshalJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

// MustUnmarshalJSON unmarshals JSON data into v or fails the test.
func MustUnmarshalJSON(t *testing.T, data []byte, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(data, v))
}

// WriteTestFile writes content to a file relative to the base directory,
// creating parent directories as needed, and returns the full path.
func WriteTestFile(t *testing.T, base, path, content string) string {
	t.Helper()
	fullPath := filepath.Join(base, path)
	require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0o755))
	require.NoError(t, os.WriteFile(fullPath, []byte(content), 0o644))
	return fullPath
}

// WriteSampleData writes the sample orders and shoppers as a JSON data file
// in dir and returns its path.
func WriteSampleData(t *testing.T, dir string) string {
	t.Helper()
	data := map[string]interface{}{
		"orders":   SampleOrders(),
		"shoppers": SampleShoppers(),
	}
	return WriteTestFile(t, dir, "data.json", string(MustMarshalJSON(t, data)))
}
