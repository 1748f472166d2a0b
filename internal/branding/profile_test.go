package branding

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	p := Default()
	assert.Equal(t, "Sekretariat DPRD Provinsi Lampung", p.Secretariat)
	assert.Equal(t, []string{"SEKRETARIAT DEWAN PERWAKILAN RAKYAT DAERAH", "PROVINSI LAMPUNG"}, p.Letterhead)
	assert.Equal(t, "Kepala Bagian Aspirasi, Humas, Dan Protokol", p.SignatoryTitle)
	assert.Len(t, p.AddressLines, 2)
}

func TestLoad(t *testing.T) {
	p, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "Bandar Lampung", p.City)

	path := filepath.Join(t.TempDir(), "office.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
secretariat: Sekretariat Uji
letterhead: [KANTOR UJI]
address: Jalan Uji 1
signatory_title: Kepala Uji
`), 0o600))

	p, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Sekretariat Uji", p.Secretariat)
	assert.Equal(t, []string{"Jalan Uji 1"}, p.AddressLines)
	assert.Equal(t, "REKAPITULASI SURAT KUNJUNGAN YANG DISETUJUI", p.ReportTitle)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("secretariat: x"))
	assert.Error(t, err)

	_, err = Parse([]byte("::not yaml"))
	assert.Error(t, err)
}
