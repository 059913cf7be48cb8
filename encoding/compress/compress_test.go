package compress

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allFormats = []Format{None, Gzip, Zstd, BGZF}

func TestRoundTrip(t *testing.T) {
	text := strings.Repeat("chr1\t100\t200\tpeak\n", 10000)
	for _, format := range allFormats {
		for _, level := range []int{0, 1} {
			var buf bytes.Buffer
			w, err := NewWriter(&buf, format, level)
			require.NoError(t, err)
			_, err = w.Write([]byte(text))
			require.NoError(t, err)
			require.NoError(t, w.Close())
			if format != None {
				assert.True(t, buf.Len() < len(text), format.String())
			}

			r, detected, err := NewReader(&buf)
			require.NoError(t, err)
			want := format
			if format == BGZF {
				want = Gzip
			}
			assert.Equal(t, want, detected)
			got, err := ioutil.ReadAll(r)
			require.NoError(t, err)
			require.NoError(t, r.Close())
			assert.Equal(t, text, string(got), format.String())
		}
	}
}

func TestZeroLevelIsDefault(t *testing.T) {
	text := []byte(strings.Repeat("chr1\t100\t200\tpeak\n", 1000))
	encode := func(level int) []byte {
		var buf bytes.Buffer
		w, err := NewWriter(&buf, Gzip, level)
		require.NoError(t, err)
		_, err = w.Write(text)
		require.NoError(t, err)
		require.NoError(t, w.Close())
		return buf.Bytes()
	}
	zero := encode(0)
	assert.Equal(t, encode(DefaultGzipLevel), zero)
	assert.Equal(t, encode(-1), zero)
	assert.True(t, len(zero) < len(text))
}

func TestEmptyInput(t *testing.T) {
	r, format, err := NewReader(bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Equal(t, None, format)
	got, err := ioutil.ReadAll(r)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCreateOpen(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()
	for _, format := range allFormats {
		path := filepath.Join(tempDir, "out.txt"+format.Ext())
		w, err := Create(ctx, path, format, 0)
		require.NoError(t, err)
		_, err = w.Write([]byte("hello\n"))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		r, err := Open(ctx, path)
		require.NoError(t, err)
		got, err := ioutil.ReadAll(r)
		require.NoError(t, err)
		require.NoError(t, r.Close())
		assert.Equal(t, "hello\n", string(got), format.String())
	}
}

func TestParseFormat(t *testing.T) {
	for _, format := range allFormats {
		got, err := ParseFormat(format.String())
		require.NoError(t, err)
		assert.Equal(t, format, got)
	}
	_, err := ParseFormat("lz4")
	assert.True(t, errors.Is(errors.NotSupported, err))
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, Gzip, FormatFromPath("a/b.tsv.gz"))
	assert.Equal(t, Zstd, FormatFromPath("b.narrowPeak.zst"))
	assert.Equal(t, None, FormatFromPath("presence.tsv"))
}
