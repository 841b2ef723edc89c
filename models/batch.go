package models

// EntityBatch is every non-event row of one ingest batch, grouped so the
// store can write each table in foreign-key order.
type EntityBatch struct {
	Courses   []Course
	Jockeys   []Jockey
	Trainers  []Trainer
	Owners    []Owner
	Sires     []Sire
	Dams      []Dam
	Damsires  []Damsire
	Horses    []Horse
	Pedigrees []Pedigree
}

// Len is the total number of rows in the batch.
func (b *EntityBatch) Len() int {
	return len(b.Courses) + len(b.Jockeys) + len(b.Trainers) + len(b.Owners) +
		len(b.Sires) + len(b.Dams) + len(b.Damsires) + len(b.Horses) + len(b.Pedigrees)
}
