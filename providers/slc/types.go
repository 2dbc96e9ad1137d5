package slc

import "regexp"

var (
	chebiRe   = regexp.MustCompile(`^CHEBI:\d+$`)
	uniprotRe = regexp.MustCompile(`^[A-Z][A-Z0-9]{5,9}$`)
)

// slcEntry ist ein Eintrag der SLC-Tabelle (RESOLUTE-Annotation eines
// Solute-Carrier-Transporters).
type slcEntry struct {
	Name         string         `json:"slc"`
	Accession    string         `json:"accession"`
	Substrates   []slcSubstrate `json:"substrates"`
	Localization string         `json:"localization"`
}

// slcSubstrate ist ein annotiertes Substrat mit ChEBI-ID.
type slcSubstrate struct {
	ChebiID string `json:"chebi_id"`
	Name    string `json:"name"`
}
