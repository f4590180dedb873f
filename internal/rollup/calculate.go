package rollup

import "sort"

// Totals is the rollup of a node's subtree.
type Totals struct {
	Counts

	// SBU and STD sum the measures of the leaves in the subtree.
	SBU    int
	STD    int
	HasSBU bool
	HasSTD bool

	// Codes lists the non-synthesized department codes in the subtree, sorted.
	Codes []string
}

// Calculator memoizes subtree rollups for one build. It is not safe for
// concurrent use.
type Calculator struct {
	memo     map[*Node]Totals
	visiting map[*Node]bool
}

func NewCalculator() *Calculator {
	return &Calculator{
		memo:     make(map[*Node]Totals),
		visiting: make(map[*Node]bool),
	}
}

// Rollup returns n's own counts plus the rollups of all its children.
func (c *Calculator) Rollup(n *Node) (Totals, error) {
	if t, ok := c.memo[n]; ok {
		return t, nil
	}
	if c.visiting[n] {
		return Totals{}, &StructuralCycleError{WorkDate: n.WorkDate, Code: n.Code}
	}

	c.visiting[n] = true
	defer delete(c.visiting, n)

	t := Totals{Counts: n.Counts}

	if !n.Synthesized {
		t.Codes = []string{n.Code}
	}

	if len(n.Children) == 0 {
		t.SBU, t.HasSBU = ParseMeasure(n.SBU)
		t.STD, t.HasSTD = ParseMeasure(n.STD)
	}

	for _, child := range n.Children {
		ct, err := c.Rollup(child)
		if err != nil {
			return Totals{}, err
		}

		t.Counts = t.Counts.Add(ct.Counts)
		t.SBU += ct.SBU
		t.STD += ct.STD
		t.HasSBU = t.HasSBU || ct.HasSBU
		t.HasSTD = t.HasSTD || ct.HasSTD
		t.Codes = append(t.Codes, ct.Codes...)
	}

	sort.Strings(t.Codes)
	c.memo[n] = t

	return t, nil
}
