package envfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Map
	}{
		{
			name:    "simple pairs",
			content: "FOO=bar\nBAZ=qux\n",
			want:    Map{"FOO": "bar", "BAZ": "qux"},
		},
		{
			name:    "comments and blanks contribute nothing",
			content: "# leading comment\n\nFOO=bar\n   # indented comment\n\n",
			want:    Map{"FOO": "bar"},
		},
		{
			name:    "splits on first equals only",
			content: "URL=http://localhost:6080/vnc.html?autoconnect=1\n",
			want:    Map{"URL": "http://localhost:6080/vnc.html?autoconnect=1"},
		},
		{
			name:    "key trimmed value kept raw",
			content: "  TOKEN  =  abc123  \n",
			want:    Map{"TOKEN": "  abc123  "},
		},
		{
			name:    "export prefix stripped",
			content: "export OPENCLAW_GATEWAY_TOKEN=abc123\n",
			want:    Map{"OPENCLAW_GATEWAY_TOKEN": "abc123"},
		},
		{
			name:    "lines without equals skipped",
			content: "not a pair\nFOO=bar\n",
			want:    Map{"FOO": "bar"},
		},
		{
			name:    "empty value allowed",
			content: "EMPTY=\n",
			want:    Map{"EMPTY": ""},
		},
		{
			name:    "last duplicate wins",
			content: "FOO=first\nFOO=second\n",
			want:    Map{"FOO": "second"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.content)
			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoadDeterministic(t *testing.T) {
	path := writeFile(t, "# secrets\nOPENCLAW_GATEWAY_TOKEN=abc123\nEXTRA=value with spaces\n")

	first, err := Load(path)
	require.NoError(t, err)
	second, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestMerge(t *testing.T) {
	fileVals := Map{"FROM_FILE": "file", "SHARED": "file"}
	environ := []string{"SHARED=env", "FROM_ENV=env", "malformed-entry"}

	merged := Merge(fileVals, environ)

	assert.Equal(t, "env", merged["SHARED"], "calling environment must win")
	assert.Equal(t, "file", merged["FROM_FILE"])
	assert.Equal(t, "env", merged["FROM_ENV"])
	assert.NotContains(t, merged, "malformed-entry")
}

func TestWriteThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, Write(path, Map{"OPENCLAW_GATEWAY_TOKEN": "abc123"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "abc123", got["OPENCLAW_GATEWAY_TOKEN"])
}
