package rollup

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// generateLeaves returns sub-unit records for a random, well formed tree
// spread over a few dates.
func generateLeaves(rnd *rand.Rand) []Record {
	dates := []string{"2024-06-01", "2024-06-02", "2024-06-03"}

	var records []Record
	for _, d := range dates {
		for f := 1; f <= 1+rnd.Intn(3); f++ {
			for v := 1; v <= 1+rnd.Intn(3); v++ {
				for p := 1; p <= 1+rnd.Intn(3); p++ {
					for u := 1; u <= rnd.Intn(4); u++ {
						code := fmt.Sprintf("%02d%02d%02d%02d", f, v, p, u)
						for n := 0; n <= rnd.Intn(2); n++ {
							records = append(records, record(d, code, "Unit "+code,
								rnd.Intn(20), rnd.Intn(5), rnd.Intn(30)))
						}
					}
				}
			}
		}
	}
	return records
}

func TestProperty_RollupEqualsLeafSum(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))

	for i := 0; i < 25; i++ {
		records := generateLeaves(rnd)

		var diag Diagnostics
		f := Aggregate(records, &diag)
		BuildHierarchy(f, nil, &diag)
		calc := NewCalculator()

		want := map[string]Counts{}
		for _, r := range records {
			key := r.WorkDate + "/" + TruncateToLevel(r.Code, LevelFactory)
			want[key] = want[key].Add(r.Counts)
		}

		for _, d := range f.Dates() {
			for _, root := range f.Roots(d) {
				got, err := calc.Rollup(root)
				require.NoError(t, err)
				assert.Equal(t, want[d+"/"+root.Code], got.Counts, "date %s root %s", d, root.Code)
			}
		}
	}
}

func TestProperty_OrderIndependent(t *testing.T) {
	rnd := rand.New(rand.NewSource(11))

	for i := 0; i < 10; i++ {
		records := generateLeaves(rnd)

		first, err := Build(records, Options{OrgName: "ACME"})
		require.NoError(t, err)

		shuffled := make([]Record, len(records))
		copy(shuffled, records)
		rnd.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		second, err := Build(shuffled, Options{OrgName: "ACME"})
		require.NoError(t, err)

		assert.Equal(t, first.Rows, second.Rows)
		assert.Equal(t, first.Dates, second.Dates)
	}
}

func TestProperty_NoDoubleCounting(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))

	for i := 0; i < 25; i++ {
		records := generateLeaves(rnd)
		// mix in records on coarser levels
		records = append(records,
			record("2024-06-01", "01010100", "Dept", 1, 1, 2),
			record("2024-06-01", "01000000", "Factory", 0, 3, 3),
			record("2024-06-02", "", "Broken", 9, 9, 9),
		)

		report, err := Build(records, Options{})
		require.NoError(t, err)

		input := map[string]int{}
		for _, r := range records {
			if r.Code == "" {
				continue
			}
			input[r.WorkDate] += r.Counts.Person
		}

		output := map[string]int{}
		for _, r := range report.Rows {
			if !r.IsTotalRow {
				output[r.WorkDate] += r.Person
			}
		}

		assert.Equal(t, input, output)
		assert.Equal(t, 1, report.Diagnostics.SkippedRecordCount)
	}
}

func TestProperty_TotalRowRules(t *testing.T) {
	rnd := rand.New(rand.NewSource(5))

	for i := 0; i < 25; i++ {
		records := generateLeaves(rnd)
		records = append(records, record("2024-06-01", "09090900", "Lonely", 2, 0, 2))

		var diag Diagnostics
		f := Aggregate(records, &diag)
		BuildHierarchy(f, nil, &diag)

		rows, err := Flatten(f, NewCalculator(), "ACME")
		require.NoError(t, err)

		totals := map[string]bool{}
		for _, r := range rows {
			if r.Kind == RowTotal {
				totals[r.WorkDate+"/"+r.Code] = true
			}
		}

		for _, d := range f.Dates() {
			var walk func(n *Node)
			walk = func(n *Node) {
				assert.Equal(t, HasTotalRow(n), totals[d+"/"+n.Code], "node %s level %d", n.Code, n.Level)
				if n.Level == LevelDepartment && len(n.Children) == 0 {
					assert.False(t, totals[d+"/"+n.Code])
				}
				for _, c := range n.Children {
					walk(c)
				}
			}
			for _, root := range f.Roots(d) {
				walk(root)
			}
		}
	}
}

func TestProperty_ChildrenSorted(t *testing.T) {
	rnd := rand.New(rand.NewSource(9))
	records := generateLeaves(rnd)

	var diag Diagnostics
	f := Aggregate(records, &diag)
	BuildHierarchy(f, nil, &diag)

	for _, d := range f.Dates() {
		roots := f.Roots(d)
		for i := 1; i < len(roots); i++ {
			assert.Less(t, roots[i-1].Code, roots[i].Code)
		}

		var check func(n *Node)
		check = func(n *Node) {
			for i, c := range n.Children {
				assert.Equal(t, n.Code, TruncateToLevel(c.Code, n.Level))
				assert.NotSame(t, n, c)
				if i > 0 {
					assert.Less(t, n.Children[i-1].Code, c.Code)
				}
				check(c)
			}
		}
		for _, root := range roots {
			check(root)
		}
	}
}
