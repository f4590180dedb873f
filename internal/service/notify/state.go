package notify

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"manpower/backend/internal/repository/hrbackend"

	"github.com/pkg/errors"
)

// State is what the notifier remembers between polls. People is reset when
// the date changes.
type State struct {
	Date       string                 `json:"date"`
	LastPolled time.Time              `json:"last_polled"`
	People     map[string]PersonState `json:"people"`
}

// PersonState holds the scans already announced to one employee.
type PersonState struct {
	FirstIn *time.Time `json:"first_in_time,omitempty"`
	LastOut *time.Time `json:"last_out_time,omitempty"`
}

// Apply compares scan with what was announced and returns the updated state
// and one message line per change. A scan newer than lastPolled is always
// announced.
func (p PersonState) Apply(scan Scan, lastPolled time.Time) (PersonState, []string) {
	var lines []string

	if !scan.In.IsZero() && (p.FirstIn == nil || scan.In.Before(*p.FirstIn) || scan.In.After(lastPolled)) {
		lines = append(lines, "🕖 In: "+clock(scan.In))
		in := scan.In
		p.FirstIn = &in
	}

	if !scan.Out.IsZero() && (p.LastOut == nil || scan.Out.After(*p.LastOut) || scan.Out.After(lastPolled)) {
		lines = append(lines, "🕓 Out: "+clock(scan.Out))
		out := scan.Out
		p.LastOut = &out
	}

	return p, lines
}

func clock(t time.Time) string {
	return t.Format("15:04:05") + " (" + t.Format("02/01/2006") + ")"
}

// Scan is an employee's earliest scan in and latest scan out of one day. A
// zero time means there was none.
type Scan struct {
	WorkdayID string
	In        time.Time
	Out       time.Time
}

// Scans keeps the summaries of day, merges duplicates per employee and
// returns them ordered by workday id. A scan out equal to the scan in is the
// same punch and is dropped.
func Scans(list []hrbackend.ScanSummary, day time.Time) []Scan {
	want := day.Format(dateLayout)
	byID := make(map[string]*Scan)

	for _, item := range list {
		id := strings.TrimSpace(item.WorkdayID)
		if id == "" || workDate(item.DateWork) != want {
			continue
		}

		in, inOK := ParseScanTime(day, item.ScanIn)
		out, outOK := ParseScanTime(day, item.ScanOut)
		if !inOK && !outOK {
			continue
		}

		scan, ok := byID[id]
		if !ok {
			scan = &Scan{WorkdayID: id}
			byID[id] = scan
		}
		if inOK && (scan.In.IsZero() || in.Before(scan.In)) {
			scan.In = in
		}
		if outOK && out.After(scan.Out) {
			scan.Out = out
		}
	}

	out := make([]Scan, 0, len(byID))
	for _, scan := range byID {
		if scan.Out.Equal(scan.In) {
			scan.Out = time.Time{}
		}
		out = append(out, *scan)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].WorkdayID < out[j].WorkdayID
	})

	return out
}

func workDate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	return s
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseScanTime reads an HH:MM:SS clock or an ISO 8601 timestamp and places
// its time of day on day.
func ParseScanTime(day time.Time, s *string) (time.Time, bool) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return time.Time{}, false
	}
	value := strings.TrimSpace(*s)
	loc := day.Location()

	t, err := time.ParseInLocation("15:04:05", value, loc)
	if err != nil {
		parsed := false
		for _, layout := range timestampLayouts {
			if t, err = time.ParseInLocation(layout, value, loc); err == nil {
				t = t.In(loc)
				parsed = true
				break
			}
		}
		if !parsed {
			return time.Time{}, false
		}
	}

	y, m, d := day.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc), true
}

// MemoryStore keeps state in process. It is used when redis is not
// configured, so state is lost on restart.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, key string, dst interface{}) (bool, error) {
	m.mu.Lock()
	data, ok := m.data[key]
	m.mu.Unlock()

	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, errors.Wrapf(err, "decoding %s", key)
	}
	return true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encoding %s", key)
	}

	m.mu.Lock()
	m.data[key] = data
	m.mu.Unlock()

	return nil
}
