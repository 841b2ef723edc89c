package coverage

// Source says which part of the pipeline populates a field, and so whether
// a null in it is expected.
type Source string

const (
	// Extraction fields come with every record; a null is always a defect.
	Extraction Source = "extraction"
	// Optional fields are extracted but the provider may omit them.
	Optional Source = "optional"
	// Enrichment fields are filled by the detail lookup; a null is a
	// defect only once the lookup has succeeded for that row.
	Enrichment Source = "enrichment"
	// Aggregation fields are left null when a threshold gates them out.
	Aggregation Source = "aggregation"
	// OutOfScope fields need a probability model and are always null.
	OutOfScope Source = "out_of_scope"
)

// Field is one audited column.
type Field struct {
	Table  string `json:"table"`
	Column string `json:"column"`
	Source Source `json:"source"`
	// Scope is the SQL predicate selecting rows where the field should
	// already be populated. Only Enrichment fields set it.
	Scope string `json:"scope,omitempty"`
}

const enrichedScope = "enriched_at IS NOT NULL"

var registry = []Field{
	{"courses", "course", Extraction, ""},
	{"courses", "region", Optional, ""},
	{"jockeys", "jockey", Extraction, ""},
	{"trainers", "trainer", Extraction, ""},
	{"trainers", "info", Optional, ""},
	{"owners", "owner", Extraction, ""},
	{"sires", "sire", Extraction, ""},
	{"sires", "region", Optional, ""},
	{"dams", "dam", Extraction, ""},
	{"dams", "region", Optional, ""},
	{"damsires", "damsire", Extraction, ""},
	{"damsires", "region", Optional, ""},

	{"horses", "horse", Extraction, ""},
	{"horses", "region", Optional, ""},
	{"horses", "dob", Enrichment, enrichedScope},
	{"horses", "sex_code", Enrichment, enrichedScope},
	{"horses", "colour", Enrichment, enrichedScope},
	{"horses", "breeder", Enrichment, enrichedScope},
	{"horses", "sire_id", Enrichment, enrichedScope},
	{"horses", "dam_id", Enrichment, enrichedScope},
	{"horses", "damsire_id", Enrichment, enrichedScope},
	{"horses", "enriched_at", Enrichment, "NOT enrich_failed"},

	{"pedigrees", "sire_id", Optional, ""},
	{"pedigrees", "dam_id", Optional, ""},
	{"pedigrees", "damsire_id", Optional, ""},
	{"pedigrees", "region", Optional, ""},

	{"races", "course_id", Extraction, ""},
	{"races", "date", Extraction, ""},
	{"races", "race_name", Extraction, ""},
	{"races", "class", Optional, ""},
	{"races", "going", Optional, ""},
	{"races", "race_type", Optional, ""},

	{"runners", "horse_id", Extraction, ""},
	{"runners", "jockey_id", Optional, ""},
	{"runners", "trainer_id", Optional, ""},
	{"runners", "owner_id", Optional, ""},
	{"runners", "weight_lbs", Optional, ""},
	{"runners", "odds", Optional, ""},
	{"runners", "position", Optional, ""},
	{"runners", "margin", Optional, ""},
	{"runners", "prize", Optional, ""},
	{"runners", "time_secs", Optional, ""},

	{"jockey_trainer_stats", "win_rate", Aggregation, ""},
	{"jockey_trainer_stats", "ae_index", OutOfScope, ""},
	{"jockey_trainer_stats", "profit_loss", OutOfScope, ""},
	{"distance_stats", "win_rate", Aggregation, ""},
	{"distance_stats", "best_time", Aggregation, ""},
	{"distance_stats", "ae_index", OutOfScope, ""},
	{"distance_stats", "profit_loss", OutOfScope, ""},
	{"venue_stats", "win_rate", Aggregation, ""},
	{"venue_stats", "ae_index", OutOfScope, ""},
	{"venue_stats", "profit_loss", OutOfScope, ""},
	{"pedigree_stats", "win_rate", Aggregation, ""},
	{"pedigree_stats", "class_1_key", Aggregation, ""},
	{"pedigree_stats", "class_2_key", Aggregation, ""},
	{"pedigree_stats", "class_3_key", Aggregation, ""},
	{"pedigree_stats", "dist_1_key", Aggregation, ""},
	{"pedigree_stats", "dist_2_key", Aggregation, ""},
	{"pedigree_stats", "dist_3_key", Aggregation, ""},
	{"pedigree_stats", "ae_index", OutOfScope, ""},
	{"pedigree_stats", "profit_loss", OutOfScope, ""},
}

// Fields returns the audited fields.
func Fields() []Field {
	return append([]Field(nil), registry...)
}
