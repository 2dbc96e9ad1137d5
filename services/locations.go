package services

import (
	"sort"
	"strings"
)

// Kompartiment-Codes nach BIGG-Konvention.
//
//	c: Cytoplasma/Cytosol    n: Nukleus        e: Extrazellulär/Membran
//	r: ER                    g: Golgi          m: Mitochondrium
//	l: Lysosom               x: Peroxisom      v: Vesikel
//	eg: ER-Golgi-Zwischenkompartiment

// tcdbLocationNames mappt UniProt/TCDB-Location-Namen auf Kompartiment-Codes.
var tcdbLocationNames = map[string]string{
	"Cytoplasm":                      "c",
	"Cytosol":                        "c",
	"Nucleus":                        "n",
	"Cell membrane":                  "e",
	"Plasma membrane":                "e",
	"Secreted":                       "e",
	"Endoplasmic reticulum":          "r",
	"Endoplasmic reticulum membrane": "r",
	"Golgi apparatus":                "g",
	"Golgi apparatus membrane":       "g",
	"Mitochondrion":                  "m",
	"Mitochondrion inner membrane":   "m",
	"Mitochondrion outer membrane":   "m",
	"Lysosome":                       "l",
	"Lysosome membrane":              "l",
	"Peroxisome":                     "x",
	"Peroxisome membrane":            "x",
	"Endosome":                       "v",
	"Endosome membrane":              "v",
	"Vesicle":                        "v",
}

// slcLocationNames mappt die abweichenden Location-Namen der SLC-Tabelle.
var slcLocationNames = map[string]string{
	"Plasma membrane":              "e",
	"Cytosol":                      "c",
	"Nucleus":                      "n",
	"ER":                           "r",
	"Golgi":                        "g",
	"Mitochondria":                 "m",
	"Mitochondrion":                "m",
	"Lysosome":                     "l",
	"Peroxisome":                   "x",
	"Endosome":                     "v",
	"ERGIC":                        "eg",
	"Inner mitochondrial membrane": "m",
	"Outer mitochondrial membrane": "m",
}

// LocationResolver ist ein reines Lookup von rohen Location-Strings auf
// Kompartiment-Codes. Fehlschläge liefern ok == false statt eines Fehlers;
// der Aufrufer entscheidet, ob er den Record verwirft.
type LocationResolver struct {
	names map[string]string
}

// TCDBLocations liefert den Resolver für TCDB/UniProt-Namenskonventionen.
func TCDBLocations() *LocationResolver {
	return &LocationResolver{names: tcdbLocationNames}
}

// SLCLocations liefert den Resolver für SLC-Namenskonventionen.
func SLCLocations() *LocationResolver {
	return &LocationResolver{names: slcLocationNames}
}

// Resolve mappt einen einzelnen Location-Namen auf seinen Code.
func (r *LocationResolver) Resolve(name string) (string, bool) {
	code, ok := r.names[strings.TrimSpace(name)]
	return code, ok
}

// ResolveAll zerlegt einen zusammengesetzten Location-String (durch ';'
// getrennt, z.B. "ER; Plasma membrane") und liefert die eindeutigen Codes
// in sortierter Reihenfolge. Unbekannte Teile werden übersprungen.
func (r *LocationResolver) ResolveAll(compound string) []string {
	seen := map[string]bool{}
	var codes []string
	for _, part := range strings.Split(compound, ";") {
		if code, ok := r.Resolve(part); ok && !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	// stabile Reihenfolge unabhängig von der Eingabe
	sort.Strings(codes)
	return codes
}
