package models

// FitnessEntry predates the common Base shape and was never migrated to
// it: it carries no userId, syncStatus or version, only its own id, date
// and creation time. The inconsistency is preserved on purpose so existing
// serialized data keeps round-tripping; forcing conformance here would
// change the wire format. It still satisfies Record via the id field, so
// the generic store and sync paths handle it like any other kind.
type FitnessEntry struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	CreatedAt int64  `json:"createdAt"`
	Exercise  string `json:"exercise"`
	Sets      int    `json:"sets,omitempty"`
	Reps      int    `json:"reps,omitempty"`
	WeightKg  float64 `json:"weightKg,omitempty"`
}

// RecordID implements Record.
func (f FitnessEntry) RecordID() string { return f.ID }
