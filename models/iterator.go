package models

// RecordIterator ist ein endlicher Pull-Iterator über Interaktions-Records,
// im Stil von sql.Rows: Next, dann Record, am Ende Err prüfen. Iteratoren
// sind nicht restartbar; ein Provider liefert auf erneuten Aufruf einen
// frischen Iterator.
type RecordIterator interface {
	// Next rückt zum nächsten Record vor. false bei Ende oder Fehler.
	Next() bool

	// Record liefert den aktuellen Record. Nur gültig nach Next() == true.
	Record() *Interaction

	// Err liefert den ersten Fehler des Streams, oder nil bei normalem Ende.
	Err() error
}

// SliceIterator liefert eine vorab gesammelte Record-Menge als Iterator.
// Genutzt von Providern, die zweiphasig arbeiten müssen (z.B. Degree-Filter),
// und in Tests.
type SliceIterator struct {
	records []Interaction
	pos     int
	err     error
}

// NewSliceIterator erstellt einen Iterator über die gegebenen Records.
func NewSliceIterator(records []Interaction) *SliceIterator {
	return &SliceIterator{records: records, pos: -1}
}

// NewErrIterator liefert einen Iterator, der sofort mit err endet.
func NewErrIterator(err error) *SliceIterator {
	return &SliceIterator{pos: -1, err: err}
}

func (it *SliceIterator) Next() bool {
	if it.err != nil || it.pos+1 >= len(it.records) {
		return false
	}
	it.pos++
	return true
}

func (it *SliceIterator) Record() *Interaction {
	return &it.records[it.pos]
}

func (it *SliceIterator) Err() error {
	return it.err
}
