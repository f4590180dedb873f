package rollup

type Options struct {
	// Names resolves names of departments that have no row of their own.
	Names NameLookup
	// OrgName labels the grand-total row of each date.
	OrgName string
	// Icons decides ShowIcon on the produced rows.
	Icons IconPolicy
}

type Report struct {
	Dates       []string    `json:"dates"`
	Rows        []Row       `json:"rows"`
	Diagnostics Diagnostics `json:"diagnostics"`
}

// Build aggregates records into the ordered display rows of every work date.
// It only fails on a structural cycle; data problems end up in Diagnostics.
func Build(records []Record, opts Options) (*Report, error) {
	var diag Diagnostics

	f := Aggregate(records, &diag)
	BuildHierarchy(f, opts.Names, &diag)

	rows, err := Flatten(f, NewCalculator(), opts.OrgName)
	if err != nil {
		return nil, err
	}
	opts.Icons.Apply(rows)

	dates := make([]string, len(f.Dates()))
	copy(dates, f.Dates())

	return &Report{
		Dates:       dates,
		Rows:        rows,
		Diagnostics: diag,
	}, nil
}
