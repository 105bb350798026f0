package demo

import (
	"bufio"
	"bytes"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/oy3o/objcodec"
	"github.com/oy3o/objcodec/internal/config"
	"github.com/oy3o/objcodec/internal/sample"
	"github.com/oy3o/objcodec/objstore"
)

func testFiles(t *testing.T) config.FilesConfig {
	dir := t.TempDir()
	return config.FilesConfig{
		Main: filepath.Join(dir, "main.bin"),
		Test: filepath.Join(dir, "test.bin"),
	}
}

func TestRunnerAllScenariosMatch(t *testing.T) {
	files := testFiles(t)
	results, err := NewRunner(files, zaptest.NewLogger(t)).Run()
	require.NoError(t, err)

	var names []string
	for _, res := range results {
		names = append(names, res.Scenario)
		assert.True(t, res.Match, res.Scenario)
	}
	assert.Equal(t, []string{
		"single object",
		"multiple objects",
		"default codec",
		"custom codec",
		"typed codec",
		"self-describing",
		"slice field",
	}, names)
	assert.FileExists(t, files.Test)
}

func TestRunnerReportsMissingDirectory(t *testing.T) {
	files := config.FilesConfig{
		Main: filepath.Join(t.TempDir(), "missing", "main.bin"),
		Test: filepath.Join(t.TempDir(), "test.bin"),
	}
	results, err := NewRunner(files, nil).Run()
	assert.ErrorIs(t, err, objcodec.ErrIO)
	assert.Empty(t, results)
}

func TestCatalogRoundTrip(t *testing.T) {
	reg, err := StandardRegistry(zaptest.NewLogger(t))
	require.NoError(t, err)
	ser := objcodec.New(reg)
	path := filepath.Join(t.TempDir(), "catalog.bin")

	n, err := WriteCatalog(ser, path)
	require.NoError(t, err)
	want := Catalog()
	require.Equal(t, len(want), n)

	// a second registry built the same way reads the file
	reg2, err := StandardRegistry(nil)
	require.NoError(t, err)
	ser2 := objcodec.New(reg2)

	var got []any
	err = readFile(path, func(r *objcodec.Reader) error {
		for r.More() {
			v, err := ser2.ReadTagged(r)
			if err != nil {
				return err
			}
			got = append(got, v)
		}
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, Equal(want[i], got[i]), "entry %d: want %v, got %v", i, want[i], got[i])
	}
}

func TestDump(t *testing.T) {
	reg, err := StandardRegistry(nil)
	require.NoError(t, err)
	ser := objcodec.New(reg)
	path := filepath.Join(t.TempDir(), "catalog.bin")
	_, err = WriteCatalog(ser, path)
	require.NoError(t, err)

	var out bytes.Buffer
	n, err := Dump(ser, path, &out)
	require.NoError(t, err)
	assert.Equal(t, len(Catalog()), n)

	var entries []Entry
	sc := bufio.NewScanner(&out)
	for sc.Scan() {
		var e Entry
		require.NoError(t, sonic.Unmarshal(sc.Bytes(), &e))
		entries = append(entries, e)
	}
	require.Len(t, entries, n)
	assert.Equal(t, "string", entries[0].Type)
	assert.Equal(t, "This is really a string", entries[0].Value)
	assert.Equal(t, "sample.Person", entries[2].Type)
	assert.Equal(t, "demo.Shelf", entries[7].Type)
	assert.Equal(t, "*timestamppb.Timestamp", entries[8].Type)
}

func TestDumpTruncatedFile(t *testing.T) {
	reg, err := StandardRegistry(nil)
	require.NoError(t, err)
	ser := objcodec.New(reg)
	path := filepath.Join(t.TempDir(), "truncated.bin")

	err = writeFile(path, func(w *objcodec.Writer) error {
		if err := ser.WriteTagged(w, "complete"); err != nil {
			return err
		}
		// an id with no payload behind it
		id, err := reg.Lookup(reflect.TypeFor[sample.Person]())
		w.WriteVarUint(uint64(id))
		return err
	})
	require.NoError(t, err)

	var out bytes.Buffer
	n, err := Dump(ser, path, &out)
	assert.ErrorIs(t, err, objcodec.ErrUnderflow)
	assert.Equal(t, 1, n)
}

func TestStoreCatalog(t *testing.T) {
	reg, err := StandardRegistry(nil)
	require.NoError(t, err)
	st, err := objstore.Open(t.TempDir(), objcodec.New(reg))
	require.NoError(t, err)
	defer st.Close()

	ids, err := StoreCatalog(st)
	require.NoError(t, err)
	require.Len(t, ids, len(Catalog()))

	for i, v := range Catalog() {
		got, err := st.Get(ids[i])
		require.NoError(t, err)
		assert.True(t, Equal(v, got), "entry %d", i)
	}

	var out bytes.Buffer
	n, err := ListStore(st, &out)
	require.NoError(t, err)
	assert.Equal(t, len(ids), n)
	assert.Equal(t, n, bytes.Count(out.Bytes(), []byte("\n")))
}
