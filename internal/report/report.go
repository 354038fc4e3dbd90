// Package report is the read side: the attendance report join and the
// dashboard counters. It never writes ledger state.
package report

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"rollcall/internal/ledger"
)

// counterTTL keeps warm present-today counters around long enough to cover
// a day boundary in any server timezone.
const counterTTL = 48 * time.Hour

// Row is one line of the attendance report.
type Row struct {
	Day          time.Time  `json:"day"`
	EmployeeName string     `json:"employee_name"`
	CheckInAt    time.Time  `json:"check_in_at"`
	CheckOutAt   *time.Time `json:"check_out_at,omitempty"`
	Status       string     `json:"status"`
}

// Stats backs the dashboard page.
type Stats struct {
	EmployeeCount int `json:"employee_count"`
	PresentToday  int `json:"present_today"`
}

// ScanEvent is the queue payload published after every effective scan
// transition; the worker feeds it back into ApplyScan.
type ScanEvent struct {
	SchoolID   string         `json:"school_id"`
	EmployeeID string         `json:"employee_id"`
	Day        string         `json:"day"` // 2006-01-02
	Outcome    ledger.Outcome `json:"outcome"`
}

// Store runs the read queries.
type Store interface {
	// Rows returns a school's attendance, newest day first, names ascending
	// within a day.
	Rows(ctx context.Context, schoolID string) ([]Row, error)
	EmployeeCount(ctx context.Context, schoolID string) (int, error)
	PresentOn(ctx context.Context, schoolID string, day time.Time) (int, error)
}

// Service serves reports, with the present-today counter cached in Redis
// when a client is configured. The worker keeps the counter warm from scan
// events; a cache miss falls back to the store and re-primes with a short
// TTL so drift from missed events heals quickly.
type Service struct {
	store    Store
	rdb      *redis.Client
	cacheTTL time.Duration
}

// NewService creates a service; rdb may be nil to disable caching.
func NewService(st Store, rdb *redis.Client, cacheTTL time.Duration) *Service {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &Service{store: st, rdb: rdb, cacheTTL: cacheTTL}
}

// Attendance returns the full report for a school.
func (s *Service) Attendance(ctx context.Context, schoolID string) ([]Row, error) {
	return s.store.Rows(ctx, schoolID)
}

// Dashboard returns the employee count and today's presence for a school.
func (s *Service) Dashboard(ctx context.Context, schoolID string, now time.Time) (Stats, error) {
	count, err := s.store.EmployeeCount(ctx, schoolID)
	if err != nil {
		return Stats{}, err
	}

	day := ledger.DayOf(now)
	present, ok := s.cachedPresent(ctx, schoolID, day)
	if !ok {
		present, err = s.store.PresentOn(ctx, schoolID, day)
		if err != nil {
			return Stats{}, err
		}
		s.primePresent(ctx, schoolID, day, present)
	}
	return Stats{EmployeeCount: count, PresentToday: present}, nil
}

// ApplyScan folds one scan event into the cached counters. Only the
// check-in transition changes presence; check-outs and duplicates do not.
func (s *Service) ApplyScan(ctx context.Context, evt ScanEvent) error {
	if s.rdb == nil || evt.Outcome != ledger.OutcomeCheckedIn {
		return nil
	}
	key := presentKey(evt.SchoolID, evt.Day)
	if err := s.rdb.Incr(ctx, key).Err(); err != nil {
		return err
	}
	return s.rdb.Expire(ctx, key, counterTTL).Err()
}

func (s *Service) cachedPresent(ctx context.Context, schoolID string, day time.Time) (int, bool) {
	if s.rdb == nil {
		return 0, false
	}
	val, err := s.rdb.Get(ctx, presentKey(schoolID, day.Format("2006-01-02"))).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("present cache read failed: %v", err)
		}
		return 0, false
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (s *Service) primePresent(ctx context.Context, schoolID string, day time.Time, present int) {
	if s.rdb == nil {
		return
	}
	key := presentKey(schoolID, day.Format("2006-01-02"))
	if err := s.rdb.Set(ctx, key, present, s.cacheTTL).Err(); err != nil {
		log.Printf("present cache prime failed: %v", err)
	}
}

func presentKey(schoolID, day string) string {
	return "rollcall:present:" + schoolID + ":" + day
}
