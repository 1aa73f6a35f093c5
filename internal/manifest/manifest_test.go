package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	t.Parallel()

	body := []byte(`{
		"files": [
			{"name": "PLAW-115publ1.xml", "link": "https://www.govinfo.gov/bulkdata/PLAW/115/public/PLAW-115publ1.xml"},
			{"name": "PLAW-115publ1.pdf", "link": "https://www.govinfo.gov/bulkdata/PLAW/115/public/PLAW-115publ1.pdf"}
		]
	}`)

	m, err := Decode(body)
	require.NoError(t, err)
	require.Len(t, m.Files, 2)
	assert.Equal(t, "PLAW-115publ1.xml", m.Files[0].Name)
	assert.Contains(t, m.Files[0].Link, "PLAW-115publ1.xml")
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte(`{"files": [`))
	assert.Error(t, err)
}

func TestFileNameRoundTrip(t *testing.T) {
	t.Parallel()

	for _, congress := range []int{113, 115, 118} {
		name := FileName(congress)
		got, err := CongressFromFileName(name)
		require.NoError(t, err)
		assert.Equal(t, congress, got)
	}
}

func TestCongressFromFileNameErrors(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"113.json", "plaw_113.xml", "plaw_abc.json", ""} {
		_, err := CongressFromFileName(name)
		assert.Error(t, err, "name %q", name)
	}
}
