package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Embedded(t *testing.T) {
	t.Parallel()

	ds, err := Load("")
	require.NoError(t, err)
	require.Contains(t, ds, "BMW")

	c := New(ds, 10)
	require.Equal(t, 30, c.Len())

	p := c.ModelsByBrand("BMW", Query{Search: "x5"})
	require.Equal(t, []string{"X5", "X5 M", "x5 xDrive40i"}, p.Items)
}

func TestLoad_Files(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	yml := filepath.Join(dir, "brands.yaml")
	require.NoError(t, os.WriteFile(yml, []byte("Kia:\n  - Rio\n  - rio\n  - Rio\nLada:\n  - Vesta\n"), 0o600))

	ds, err := Load(yml)
	require.NoError(t, err)
	require.Equal(t, Dataset{"Kia": {"Rio", "rio", "Rio"}, "Lada": {"Vesta"}}, ds)
	require.Equal(t, []string{"Rio", "rio"}, New(ds, 10).ModelsByBrand("Kia", Query{}).Items)

	js := filepath.Join(dir, "brands.JSON")
	require.NoError(t, os.WriteFile(js, []byte(`{"Tesla":["Model 3"]}`), 0o600))

	ds, err = Load(js)
	require.NoError(t, err)
	require.Equal(t, Dataset{"Tesla": {"Model 3"}}, ds)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "brands.csv"))
	require.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Load(filepath.Join(dir, "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{"BMW": [`), 0o600))
	_, err = Load(broken)
	require.Error(t, err)

	empty := filepath.Join(dir, "empty.yml")
	require.NoError(t, os.WriteFile(empty, []byte("{}\n"), 0o600))
	_, err = Load(empty)
	require.Error(t, err)

	_, err = Parse([]byte(`{}`), "toml")
	require.ErrorIs(t, err, ErrUnknownFormat)
}
