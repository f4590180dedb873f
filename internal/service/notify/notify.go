// Package notify polls the HR backend for today's time-clock scans and sends
// each employee a WeCom message when their first scan in or last scan out
// changes.
package notify

import (
	"context"
	"sort"
	"strings"
	"time"

	"manpower/backend/internal/repository/hrbackend"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	DefaultInterval = 30 * time.Second

	stateKey   = "scan_state"
	dateLayout = "2006-01-02"

	// without saved state, scans this old are still announced.
	firstPollLookback = 6 * time.Hour
)

type Directory interface {
	GetEmployeeActive(ctx context.Context) ([]hrbackend.EmployeeActive, error)
	ListLineUsers(ctx context.Context) ([]hrbackend.LineUser, error)
	GetScanSummary(ctx context.Context, year, month int, workdayIDs []string) ([]hrbackend.ScanSummary, error)
}

type Sender interface {
	SendText(ctx context.Context, userID, content string) error
}

// Store is satisfied by redisdb.Cache and MemoryStore.
type Store interface {
	Get(ctx context.Context, key string, dst interface{}) (bool, error)
	Set(ctx context.Context, key string, v interface{}) error
}

type Config struct {
	Interval time.Duration
	// Location is the time zone of the time clocks. Nil means time.Local.
	Location *time.Location
}

type Service struct {
	directory Directory
	sender    Sender
	store     Store
	cfg       Config
	log       *zap.Logger
	now       func() time.Time
}

func NewService(directory Directory, sender Sender, store Store, cfg Config, log *zap.Logger) *Service {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	return &Service{
		directory: directory,
		sender:    sender,
		store:     store,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}

// Result summarises one poll.
type Result struct {
	Recipients int
	Scans      int
	Sent       int
	Failed     int
}

// Run polls immediately and then every interval until ctx is done. Failed
// polls are logged and retried on the next tick.
func (s *Service) Run(ctx context.Context) {
	s.log.Info("scan notifier started", zap.Duration("interval", s.cfg.Interval))

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		if _, err := s.Poll(ctx); err != nil && ctx.Err() == nil {
			s.log.Error("scan notification poll failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			s.log.Info("scan notifier stopped")
			return
		case <-ticker.C:
		}
	}
}

// Poll announces every new or changed scan of today to the employee's WeCom
// account and saves what was announced.
func (s *Service) Poll(ctx context.Context) (Result, error) {
	now := s.now().In(s.cfg.Location)
	today := now.Format(dateLayout)

	state, err := s.load(ctx, now)
	if err != nil {
		return Result{}, err
	}
	if state.Date != today {
		state.Date = today
		state.People = map[string]PersonState{}
	}

	active, err := s.directory.GetEmployeeActive(ctx)
	if err != nil {
		return Result{}, errors.Wrap(err, "fetching active employees")
	}
	users, err := s.directory.ListLineUsers(ctx)
	if err != nil {
		return Result{}, errors.Wrap(err, "fetching line users")
	}

	recipients := Recipients(active, users)
	res := Result{Recipients: len(recipients)}

	if len(recipients) == 0 {
		s.log.Warn("no active employee has a wecom id")
		state.LastPolled = now
		return res, s.save(ctx, state)
	}

	ids := make([]string, 0, len(recipients))
	for id := range recipients {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	summaries, err := s.directory.GetScanSummary(ctx, now.Year(), int(now.Month()), ids)
	if err != nil {
		return Result{}, errors.Wrap(err, "fetching scan summary")
	}

	scans := Scans(summaries, now)
	res.Scans = len(scans)

	seen := state.LastPolled
	if start := startOfDay(now); seen.Before(start) {
		seen = start
	}

	for _, scan := range scans {
		r, ok := recipients[scan.WorkdayID]
		if !ok {
			continue
		}

		person, lines := state.People[scan.WorkdayID].Apply(scan, state.LastPolled)
		seen = latest(seen, scan.In, scan.Out)

		if len(lines) == 0 {
			continue
		}

		if err := s.sender.SendText(ctx, r.WeComID, Message(r, lines)); err != nil {
			res.Failed++
			s.log.Warn("sending scan notification failed",
				zap.String("workday_id", r.WorkdayID),
				zap.Error(err))
			continue
		}

		res.Sent++
		state.People[scan.WorkdayID] = person
	}

	if len(scans) > 0 {
		state.LastPolled = seen
	} else {
		state.LastPolled = now
	}

	if err := s.save(ctx, state); err != nil {
		return res, err
	}

	s.log.Info("scan notification poll",
		zap.String("date", today),
		zap.Int("recipients", res.Recipients),
		zap.Int("scans", res.Scans),
		zap.Int("sent", res.Sent),
		zap.Int("failed", res.Failed))

	return res, nil
}

func (s *Service) load(ctx context.Context, now time.Time) (State, error) {
	var state State

	ok, err := s.store.Get(ctx, stateKey, &state)
	if err != nil {
		return State{}, errors.Wrap(err, "loading notification state")
	}
	if !ok {
		state = State{LastPolled: now.Add(-firstPollLookback)}
	}
	if state.People == nil {
		state.People = map[string]PersonState{}
	}

	return state, nil
}

func (s *Service) save(ctx context.Context, state State) error {
	return errors.Wrap(s.store.Set(ctx, stateKey, state), "saving notification state")
}

// Recipient is an active employee linked to a WeCom account.
type Recipient struct {
	WorkdayID string
	EmpCode   string
	Name      string
	DeptCode  string
	DeptName  string
	WeComID   string
}

// Recipients joins active employees with LineUsers on employee code and
// keeps those with a WeCom id, keyed by workday id.
func Recipients(active []hrbackend.EmployeeActive, users []hrbackend.LineUser) map[string]Recipient {
	wecomIDs := make(map[string]string, len(users))
	for _, u := range users {
		code := strings.TrimSpace(u.EmployeeCode)
		if code == "" || u.WeComID == nil {
			continue
		}
		if id := strings.TrimSpace(*u.WeComID); id != "" {
			wecomIDs[code] = id
		}
	}

	out := make(map[string]Recipient)
	for _, e := range active {
		workdayID := strings.TrimSpace(e.WorkdayID)
		code := strings.TrimSpace(e.EmpCode)
		if workdayID == "" || code == "" {
			continue
		}

		wecomID, ok := wecomIDs[code]
		if !ok {
			continue
		}

		out[workdayID] = Recipient{
			WorkdayID: workdayID,
			EmpCode:   code,
			Name:      strings.TrimSpace(e.EmpName),
			DeptCode:  e.DeptCode,
			DeptName:  e.DeptName,
			WeComID:   wecomID,
		}
	}

	return out
}

// Message renders the notification text for r.
func Message(r Recipient, lines []string) string {
	name := r.Name
	if name == "" {
		name = "Unknown"
	}

	return "***New Scan Notification***\n" +
		"Name: " + name + "\n" +
		"Employee Code: " + r.EmpCode + "\n" +
		strings.Join(lines, "\n")
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func latest(base time.Time, times ...time.Time) time.Time {
	for _, t := range times {
		if t.After(base) {
			base = t
		}
	}
	return base
}
