package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"manpower/backend/internal/repository/hrbackend"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func strPtr(s string) *string {
	return &s
}

type fakeDirectory struct {
	mu        sync.Mutex
	active    []hrbackend.EmployeeActive
	users     []hrbackend.LineUser
	summaries []hrbackend.ScanSummary
	err       error

	summaryCalls int
	requested    []string
	year, month  int
}

func (f *fakeDirectory) GetEmployeeActive(context.Context) ([]hrbackend.EmployeeActive, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active, f.err
}

func (f *fakeDirectory) ListLineUsers(context.Context) ([]hrbackend.LineUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users, nil
}

func (f *fakeDirectory) GetScanSummary(_ context.Context, year, month int, ids []string) ([]hrbackend.ScanSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaryCalls++
	f.requested = ids
	f.year, f.month = year, month
	return f.summaries, nil
}

func (f *fakeDirectory) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.summaryCalls
}

type message struct {
	userID  string
	content string
}

type fakeSender struct {
	sent  []message
	fails int
}

func (f *fakeSender) SendText(_ context.Context, userID, content string) error {
	if f.fails > 0 {
		f.fails--
		return errors.New("wecom unavailable")
	}
	f.sent = append(f.sent, message{userID: userID, content: content})
	return nil
}

func directory() *fakeDirectory {
	return &fakeDirectory{
		active: []hrbackend.EmployeeActive{
			{WorkdayID: "W1", EmpCode: "001", EmpName: "Anan", DeptCode: "06010100"},
			{WorkdayID: "W2", EmpCode: "002", EmpName: "Boon"},
			{WorkdayID: "W3", EmpCode: "003", EmpName: "Chai"},
		},
		users: []hrbackend.LineUser{
			{EmployeeCode: "001", WeComID: strPtr("anan.wc")},
			{EmployeeCode: "002", WeComID: strPtr(" ")},
			{EmployeeCode: "003", WeComID: strPtr("chai.wc")},
		},
		summaries: []hrbackend.ScanSummary{
			{WorkdayID: "W1", DateWork: "2024-06-01", ScanIn: strPtr("07:45:10")},
		},
	}
}

type fakeClock struct {
	now time.Time
}

func newService(dir Directory, sender Sender, store Store) (*Service, *fakeClock) {
	c := &fakeClock{now: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}

	s := NewService(dir, sender, store, Config{Location: time.UTC}, zap.NewNop())
	s.now = func() time.Time { return c.now }

	return s, c
}

func TestRecipients(t *testing.T) {
	dir := directory()
	dir.active = append(dir.active,
		hrbackend.EmployeeActive{WorkdayID: "", EmpCode: "001"},
		hrbackend.EmployeeActive{WorkdayID: "W9", EmpCode: "009"},
	)
	dir.users = append(dir.users, hrbackend.LineUser{EmployeeCode: "009"})

	got := Recipients(dir.active, dir.users)
	assert.Equal(t, map[string]Recipient{
		"W1": {WorkdayID: "W1", EmpCode: "001", Name: "Anan", DeptCode: "06010100", WeComID: "anan.wc"},
		"W3": {WorkdayID: "W3", EmpCode: "003", Name: "Chai", WeComID: "chai.wc"},
	}, got)
}

func TestParseScanTime(t *testing.T) {
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	at := func(h, m, s int) time.Time { return time.Date(2024, 6, 1, h, m, s, 0, time.UTC) }

	tests := []struct {
		name string
		in   *string
		want time.Time
		ok   bool
	}{
		{name: "clock", in: strPtr("07:45:10"), want: at(7, 45, 10), ok: true},
		{name: "iso", in: strPtr("2024-06-01T17:05:00"), want: at(17, 5, 0), ok: true},
		{name: "iso with zone", in: strPtr("2024-06-01T17:05:00+07:00"), want: at(10, 5, 0), ok: true},
		{name: "other day keeps clock", in: strPtr("2024-05-31 06:00:00"), want: at(6, 0, 0), ok: true},
		{name: "nil", in: nil},
		{name: "blank", in: strPtr(" ")},
		{name: "garbage", in: strPtr("7am")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseScanTime(day, tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestScans(t *testing.T) {
	day := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	scans := Scans([]hrbackend.ScanSummary{
		{WorkdayID: "W2", DateWork: "2024-06-01T00:00:00", ScanIn: strPtr("08:10:00"), ScanOut: strPtr("08:10:00")},
		{WorkdayID: "W1", DateWork: "2024-06-01", ScanIn: strPtr("07:50:00"), ScanOut: strPtr("12:00:00")},
		{WorkdayID: "W1", DateWork: "2024-06-01", ScanIn: strPtr("07:45:00"), ScanOut: strPtr("11:00:00")},
		{WorkdayID: "W3", DateWork: "2024-05-31", ScanIn: strPtr("07:00:00")},
		{WorkdayID: "W4", DateWork: "2024-06-01"},
		{WorkdayID: " ", DateWork: "2024-06-01", ScanIn: strPtr("07:00:00")},
	}, day)

	require.Len(t, scans, 2)
	assert.Equal(t, "W1", scans[0].WorkdayID)
	assert.Equal(t, "07:45:00", scans[0].In.Format("15:04:05"))
	assert.Equal(t, "12:00:00", scans[0].Out.Format("15:04:05"))
	assert.Equal(t, "W2", scans[1].WorkdayID)
	assert.True(t, scans[1].Out.IsZero())
}

func TestService_PollAnnouncesEachChangeOnce(t *testing.T) {
	dir := directory()
	sender := &fakeSender{}
	store := NewMemoryStore()
	s, c := newService(dir, sender, store)
	ctx := context.Background()

	res, err := s.Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{Recipients: 2, Scans: 1, Sent: 1}, res)
	assert.Equal(t, []string{"W1", "W3"}, dir.requested)
	assert.Equal(t, 2024, dir.year)
	assert.Equal(t, 6, dir.month)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "anan.wc", sender.sent[0].userID)
	assert.Equal(t, "***New Scan Notification***\nName: Anan\nEmployee Code: 001\n🕖 In: 07:45:10 (01/06/2024)", sender.sent[0].content)

	c.now = c.now.Add(30 * time.Second)
	res, err = s.Poll(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Sent)

	c.now = time.Date(2024, 6, 1, 17, 31, 0, 0, time.UTC)
	dir.summaries[0].ScanOut = strPtr("17:30:05")
	res, err = s.Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
	require.Len(t, sender.sent, 2)
	assert.Contains(t, sender.sent[1].content, "🕓 Out: 17:30:05 (01/06/2024)")
	assert.NotContains(t, sender.sent[1].content, "In:")

	var state State
	ok, err := store.Get(ctx, stateKey, &state)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2024-06-01", state.Date)
	assert.Equal(t, "17:30:05", state.LastPolled.Format("15:04:05"))
	require.Contains(t, state.People, "W1")
}

func TestService_PollResetsOnNewDay(t *testing.T) {
	dir := directory()
	sender := &fakeSender{}
	store := NewMemoryStore()
	s, c := newService(dir, sender, store)
	ctx := context.Background()

	_, err := s.Poll(ctx)
	require.NoError(t, err)

	c.now = time.Date(2024, 6, 2, 7, 0, 0, 0, time.UTC)
	dir.summaries = []hrbackend.ScanSummary{
		{WorkdayID: "W1", DateWork: "2024-06-01", ScanIn: strPtr("07:45:10")},
		{WorkdayID: "W1", DateWork: "2024-06-02", ScanIn: strPtr("06:55:00")},
	}

	res, err := s.Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
	assert.Contains(t, sender.sent[1].content, "06:55:00 (02/06/2024)")

	var state State
	_, err = store.Get(ctx, stateKey, &state)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-02", state.Date)
	assert.Len(t, state.People, 1)
}

func TestService_PollRetriesFailedSend(t *testing.T) {
	dir := directory()
	sender := &fakeSender{fails: 1}
	s, c := newService(dir, sender, NewMemoryStore())
	ctx := context.Background()

	res, err := s.Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Empty(t, sender.sent)

	c.now = c.now.Add(30 * time.Second)
	res, err = s.Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].content, "In: 07:45:10")
}

func TestService_PollWithoutRecipients(t *testing.T) {
	dir := directory()
	dir.users = nil
	store := NewMemoryStore()
	s, c := newService(dir, &fakeSender{}, store)

	res, err := s.Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
	assert.Zero(t, dir.calls())

	var state State
	_, err = store.Get(context.Background(), stateKey, &state)
	require.NoError(t, err)
	assert.True(t, c.now.Equal(state.LastPolled))
}

func TestService_PollDirectoryError(t *testing.T) {
	dir := directory()
	dir.err = errors.New("hr backend down")
	store := NewMemoryStore()
	s, _ := newService(dir, &fakeSender{}, store)

	_, err := s.Poll(context.Background())
	assert.ErrorContains(t, err, "hr backend down")

	ok, err := store.Get(context.Background(), stateKey, &State{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_RunStopsWithContext(t *testing.T) {
	dir := directory()
	s := NewService(dir, &fakeSender{}, NewMemoryStore(), Config{Interval: 10 * time.Millisecond, Location: time.UTC}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return dir.calls() >= 2 }, 5*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("notifier did not stop")
	}
}
