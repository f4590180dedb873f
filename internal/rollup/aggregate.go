package rollup

import "sort"

// Node is one department on one work date. Counts hold only the records
// attributed directly to the code; subtree sums come from Calculator.
type Node struct {
	WorkDate    string
	Code        string
	Name        string
	Level       Level
	Counts      Counts
	SBU         string
	STD         string
	Synthesized bool
	Children    []*Node
}

// Forest holds every node of one build, keyed by work date and code.
type Forest struct {
	nodes     map[string]*Node
	seenNames map[string]string
	roots     map[string][]*Node
	dates     []string
}

func nodeKey(workDate, code string) string {
	return workDate + "\x00" + code
}

// Aggregate groups records by work date and department code and sums their
// counts. The first record of a group supplies its name, SBU and STD.
func Aggregate(records []Record, diag *Diagnostics) *Forest {
	f := &Forest{
		nodes:     make(map[string]*Node),
		seenNames: make(map[string]string),
		roots:     make(map[string][]*Node),
	}

	for _, r := range records {
		if r.Code == "" || r.WorkDate == "" {
			diag.SkippedRecordCount++
			diag.warn(WarningMissingKey, r.WorkDate, r.Code, "record without department code or work date skipped")
			continue
		}

		code, malformed := NormalizeCode(r.Code)
		if malformed {
			diag.warn(WarningMalformedCode, r.WorkDate, code, "department code %q normalised to %q", r.Code, code)
		}

		if _, ok := f.seenNames[code]; !ok && r.Name != "" {
			f.seenNames[code] = r.Name
		}

		key := nodeKey(r.WorkDate, code)
		n, ok := f.nodes[key]
		if !ok {
			f.nodes[key] = &Node{
				WorkDate: r.WorkDate,
				Code:     code,
				Name:     r.Name,
				Level:    LevelOf(code),
				Counts:   r.Counts,
				SBU:      r.SBU,
				STD:      r.STD,
			}
			continue
		}

		n.Counts = n.Counts.Add(r.Counts)

		switch {
		case n.Name == "":
			n.Name = r.Name
		case r.Name != "" && r.Name != n.Name:
			diag.warn(WarningInconsistentName, r.WorkDate, code, "name %q ignored, keeping %q", r.Name, n.Name)
		}
		if n.SBU == "" {
			n.SBU = r.SBU
		}
		if n.STD == "" {
			n.STD = r.STD
		}
	}

	return f
}

func (f *Forest) Node(workDate, code string) (*Node, bool) {
	n, ok := f.nodes[nodeKey(workDate, code)]
	return n, ok
}

func (f *Forest) Len() int {
	return len(f.nodes)
}

// Dates returns the work dates in ascending order. Valid after BuildHierarchy.
func (f *Forest) Dates() []string {
	return f.dates
}

// Roots returns the top-level nodes of workDate ordered by code. Valid after BuildHierarchy.
func (f *Forest) Roots(workDate string) []*Node {
	return f.roots[workDate]
}

// sortedNodes returns all nodes ordered by work date, then code.
func (f *Forest) sortedNodes() []*Node {
	list := make([]*Node, 0, len(f.nodes))
	for _, n := range f.nodes {
		list = append(list, n)
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].WorkDate != list[j].WorkDate {
			return list[i].WorkDate < list[j].WorkDate
		}
		return list[i].Code < list[j].Code
	})
	return list
}
