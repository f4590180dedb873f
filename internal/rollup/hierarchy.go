package rollup

import "sort"

// NameLookup resolves a display name for a department code that has no row of
// its own.
type NameLookup interface {
	DepartmentName(code string) (string, bool)
}

// Names is a NameLookup backed by a code to name map.
type Names map[string]string

func (n Names) DepartmentName(code string) (string, bool) {
	name, ok := n[code]
	return name, ok && name != ""
}

// BuildHierarchy adds every missing ancestor of the aggregated nodes and links
// each node to its parent on the same work date. names may be nil.
func BuildHierarchy(f *Forest, names NameLookup, diag *Diagnostics) {
	for _, n := range f.sortedNodes() {
		if !WellFormed(n.Code) {
			diag.warn(WarningMalformedCode, n.WorkDate, n.Code, "department code skips a hierarchy level")
		}

		for l := n.Level - 1; l >= LevelFactory; l-- {
			code := TruncateToLevel(n.Code, l)
			if code == n.Code {
				continue
			}

			key := nodeKey(n.WorkDate, code)
			if _, ok := f.nodes[key]; ok {
				continue
			}

			f.nodes[key] = &Node{
				WorkDate:    n.WorkDate,
				Code:        code,
				Name:        f.resolveName(code, names),
				Level:       LevelOf(code),
				Synthesized: true,
			}
		}
	}

	dates := make(map[string]struct{})
	for _, n := range f.sortedNodes() {
		dates[n.WorkDate] = struct{}{}

		parent := f.parentOf(n)
		if parent == nil {
			f.roots[n.WorkDate] = append(f.roots[n.WorkDate], n)
			continue
		}
		parent.Children = append(parent.Children, n)
	}

	for _, n := range f.nodes {
		sortByCode(n.Children)
	}
	for d := range f.roots {
		sortByCode(f.roots[d])
	}

	f.dates = f.dates[:0]
	for d := range dates {
		f.dates = append(f.dates, d)
	}
	sort.Strings(f.dates)
}

func (f *Forest) parentOf(n *Node) *Node {
	if n.Level <= LevelFactory {
		return nil
	}

	code := TruncateToLevel(n.Code, n.Level-1)
	if code == n.Code {
		return nil
	}

	return f.nodes[nodeKey(n.WorkDate, code)]
}

func (f *Forest) resolveName(code string, names NameLookup) string {
	if name, ok := f.seenNames[code]; ok {
		return name
	}
	if names != nil {
		if name, ok := names.DepartmentName(code); ok {
			return name
		}
	}
	return "Total " + code
}

func sortByCode(nodes []*Node) {
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].Code < nodes[j].Code
	})
}
