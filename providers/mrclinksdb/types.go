package mrclinksdb

import (
	"regexp"
	"strings"
)

var (
	pubchemRe = regexp.MustCompile(`^\d+$`)
	uniprotRe = regexp.MustCompile(`^[A-Z][A-Z0-9]{5,9}$`)
)

// pairRow ist eine Zeile der Metabolit-Rezeptor-Tabelle
// (metabolite, pubchem_cid, uniprot, gene_symbol, location).
type pairRow struct {
	Metabolite string
	PubChemCID string
	UniProt    string
	GeneSymbol string
	Location   string
}

// parsePairRow zerlegt eine Tab-getrennte Zeile. ok == false für
// Header-Zeilen und Zeilen ohne gültige PubChem-CID oder Accession.
func parsePairRow(line string) (pairRow, bool) {
	fields := strings.Split(line, "\t")
	if len(fields) < 5 || fields[0] == "metabolite" {
		return pairRow{}, false
	}
	cid := strings.TrimSpace(fields[1])
	acc := strings.TrimSpace(fields[2])
	if !pubchemRe.MatchString(cid) || !uniprotRe.MatchString(acc) {
		return pairRow{}, false
	}
	return pairRow{
		Metabolite: strings.TrimSpace(fields[0]),
		PubChemCID: cid,
		UniProt:    acc,
		GeneSymbol: strings.TrimSpace(fields[3]),
		Location:   fields[4],
	}, true
}
