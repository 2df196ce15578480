package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"lombada-bot/internal/catalog"
	"lombada-bot/internal/lombada"
)

const testCatalog = "../../internal/catalog/testdata/papeis.json"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CATALOG_SOURCE", "file")
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	e := &env{out: &out}
	err := newApp(e).Run(context.Background(), append([]string{"lombadactl", "--catalog", testCatalog}, args...))
	return out.String(), err
}

func TestCalc(t *testing.T) {
	out, err := run(t, "calc", "-p", "Offset", "-w", "56", "-n", "200", "--cartonado")
	require.NoError(t, err)
	assert.Equal(t, "A lombada (Cartonado) é: 7.6 mm\n", out)

	out, err = run(t, "calc", "--paper", "Pólen Soft", "--weight", "65 2.0", "--pages", "100", "--fresado")
	require.NoError(t, err)
	assert.Equal(t, "A lombada (Fresado) é: 1.5 mm\n", out)
}

func TestCalcErrors(t *testing.T) {
	_, err := run(t, "calc", "-p", "Offset", "-w", "56", "-n", "200")
	require.Error(t, err)
	assert.Equal(t, lombada.ErrNoBinding.Msg, err.Error())

	_, err = run(t, "calc", "-p", "Offset", "-w", "56", "-n", "20x", "--costurado")
	require.Error(t, err)
	assert.Equal(t, lombada.ErrIncompleteForm.Msg, err.Error())

	_, err = run(t, "calc", "-p", "Pólen Soft", "-w", "90", "-n", "100", "--costurado")
	require.Error(t, err)
	assert.Equal(t, lombada.ErrBaseNotFound.Msg, err.Error())
}

func TestPapersAndWeights(t *testing.T) {
	out, err := run(t, "papers")
	require.NoError(t, err)
	assert.Equal(t, "Offset\t2\nPólen Soft\t3\nReciclado\t0\n", out)

	out, err = run(t, "weights", "Pólen Soft")
	require.NoError(t, err)
	assert.Equal(t, "65 2.0\t65\nPAPER CREAMY 78G\t48\n90g\t0\n", out)

	_, err = run(t, "weights", "Reciclado")
	assert.Error(t, err)
}

func TestDump(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "papeis.yaml")

	_, err := run(t, "dump", "--format", "yaml", dest)
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	c, err := catalog.Decode(data, catalog.FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	_, err = run(t, "dump", "--format", "xml")
	assert.Error(t, err)
}

func TestExport(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "catalogo.xlsx")

	out, err := run(t, "export", dest)
	require.NoError(t, err)
	assert.Equal(t, dest+"\n", out)

	f, err := excelize.OpenFile(dest)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Catalogo"}, f.GetSheetList())
}

func TestMissingCatalog(t *testing.T) {
	t.Setenv("CATALOG_SOURCE", "file")

	var out bytes.Buffer
	err := newApp(&env{out: &out}).Run(context.Background(),
		[]string{"lombadactl", "--catalog", "does-not-exist.json", "papers"})
	require.Error(t, err)
	assert.ErrorIs(t, err, catalog.ErrLoadFailed)
}
