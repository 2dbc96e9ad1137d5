package brenda

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cosmos-pkn/models"
)

func TestParseRegulationRow(t *testing.T) {
	_, ok := parseRegulationRow("ec_number\tcompound\tchebi_id\taction\tuniprot\tncbi_tax_id")
	assert.False(t, ok, "Header wird übersprungen")

	_, ok = parseRegulationRow("2.7.1.1\tglucose\tCHEBI:17234\tactivating\tnot-an-acc\t9606")
	assert.False(t, ok)

	row, ok := parseRegulationRow("2.7.1.1\tD-Glucose\tCHEBI:17234\tActivating\tP19367\t9606")
	require.True(t, ok)
	assert.Equal(t, "2.7.1.1", row.EC)
	assert.Equal(t, "activating", row.Action)
	assert.Equal(t, "P19367", row.UniProt)
	assert.Equal(t, 9606, row.TaxID)

	// unvollständige EC-Nummern mit Platzhalter sind zulässig
	row, ok = parseRegulationRow("1.1.1.-\tNADH\t\tinhibiting\tP00338\t9606")
	require.True(t, ok)
	assert.Equal(t, "1.1.1.-", row.EC)
}

func TestModeFor(t *testing.T) {
	assert.Equal(t, models.ModeActivation, modeFor("activating"))
	assert.Equal(t, models.ModeInhibition, modeFor("inhibitor"))
	assert.Equal(t, models.ModeUnknown, modeFor("modulating"))
}

func TestNormalizeCompound(t *testing.T) {
	// Ligaturen, Whitespace und Groß-/Kleinschreibung kollabieren
	assert.Equal(t, "riboflavin", normalizeCompound("Riboﬂavin"))
	assert.Equal(t, "d-glucose 6-phosphate", normalizeCompound("  D-Glucose   6-phosphate "))
	// NFC: zerlegte und vorkomponierte Akzente landen auf demselben Knoten
	assert.Equal(t, "caf\u00e9ine", normalizeCompound("Cafe\u0301ine"))
}
