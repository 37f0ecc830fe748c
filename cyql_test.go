package cyql

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewQuerySaveLoadRoundTrip(t *testing.T) {
	c := New(DefaultOptions(), nil)
	res := c.Query(`CREATE (a:Person {name:"ada"})`)
	require.True(t, res.Success, res.Error)

	var buf bytes.Buffer
	require.NoError(t, c.Save(&buf))

	c2, err := Load(bytes.NewReader(buf.Bytes()), DefaultOptions(), nil)
	require.NoError(t, err)

	res = c2.Query(`MATCH (p:Person {name:"ada"}) RETURN p.name`)
	require.True(t, res.Success, res.Error)
	require.Equal(t, 1, res.MatchCount)
	require.Equal(t, "ada", res.Rows[0][0].S)
}

func TestLoadOptionsAppliesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/opts.yaml"
	require.NoError(t, os.WriteFile(path, []byte("case_sensitive_labels: true\nmax_path_results: 5\n"), 0o644))

	opts, err := LoadOptions(path)
	require.NoError(t, err)
	require.True(t, opts.CaseSensitiveLabels)
	require.Equal(t, 5, opts.MaxPathResults)
	require.True(t, opts.ValidateBeforeExecute)
}
