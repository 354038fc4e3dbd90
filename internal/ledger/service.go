package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rollcall/internal/identity"
	"rollcall/internal/ledger/lock"
	"rollcall/internal/store"
)

// Registry resolves scanned tokens to employees; implemented by
// identity.Service.
type Registry interface {
	Resolve(ctx context.Context, tok identity.Token) (identity.Employee, error)
}

// ScanResult is the outcome of a single scan. Time is the timestamp the
// transition recorded; for AlreadyCheckedOut it is the existing check-out
// time, untouched.
type ScanResult struct {
	Outcome  Outcome
	Employee identity.Employee
	Entry    Entry
	Time     time.Time
}

// Service applies the scan state machine.
type Service struct {
	registry Registry
	store    Store
	locker   lock.Locker
}

// NewService creates a service. The locker serializes scans per
// (employee, day); with the memory locker that holds within one process,
// with the redis locker across instances.
func NewService(registry Registry, st Store, locker lock.Locker) *Service {
	return &Service{registry: registry, store: st, locker: locker}
}

// RecordScan resolves a scanned token for the given school and applies the
// day's transition at time now.
//
// Under the per-key lock the current state is read and acted on; a racer
// that still loses at the store (duplicate insert, or a check-out already
// set) loops back to re-read rather than surfacing the conflict. Each
// re-evaluation observes a strictly later state, so the loop converges in
// at most one extra pass.
func (s *Service) RecordScan(ctx context.Context, rawToken, schoolID string, now time.Time) (ScanResult, error) {
	tok, err := identity.ParseToken(rawToken)
	if err != nil {
		return ScanResult{}, err
	}

	emp, err := s.registry.Resolve(ctx, tok)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return ScanResult{}, ErrUnknownBadge
		}
		return ScanResult{}, err
	}
	if emp.SchoolID != schoolID {
		return ScanResult{}, ErrUnknownBadge
	}

	day := DayOf(now)
	release, err := s.locker.Acquire(ctx, scanKey(emp.ID, day))
	if err != nil {
		return ScanResult{}, fmt.Errorf("acquire scan lock: %w", err)
	}
	defer release()

	for attempt := 0; attempt < 3; attempt++ {
		res, retry, err := s.transition(ctx, emp, day, now)
		if err != nil {
			return ScanResult{}, err
		}
		if retry {
			scanConflicts.Inc()
			continue
		}
		scansTotal.WithLabelValues(string(res.Outcome)).Inc()
		return res, nil
	}
	return ScanResult{}, fmt.Errorf("scan for employee %s did not settle", emp.ID)
}

// transition performs one read-and-act pass. retry=true means the store
// state moved underneath us and the caller should re-evaluate.
func (s *Service) transition(ctx context.Context, emp identity.Employee, day, now time.Time) (ScanResult, bool, error) {
	entry, err := s.store.EntryFor(ctx, emp.ID, day)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return ScanResult{}, false, err
		}
		entry = Entry{
			ID:         uuid.NewString(),
			EmployeeID: emp.ID,
			Day:        day,
			CheckInAt:  now,
		}
		switch err := s.store.CreateEntry(ctx, entry); {
		case err == nil:
			return ScanResult{Outcome: OutcomeCheckedIn, Employee: emp, Entry: entry, Time: now}, false, nil
		case errors.Is(err, store.ErrDuplicate):
			return ScanResult{}, true, nil
		default:
			return ScanResult{}, false, err
		}
	}

	if entry.CheckOutAt == nil {
		out := now
		if out.Before(entry.CheckInAt) {
			// Only reachable under clock skew between racing requests;
			// check-in <= check-out must hold regardless.
			out = entry.CheckInAt
		}
		ok, err := s.store.SetCheckOut(ctx, entry.ID, out)
		if err != nil {
			return ScanResult{}, false, err
		}
		if !ok {
			return ScanResult{}, true, nil
		}
		entry.CheckOutAt = &out
		return ScanResult{Outcome: OutcomeCheckedOut, Employee: emp, Entry: entry, Time: out}, false, nil
	}

	return ScanResult{Outcome: OutcomeAlreadyCheckedOut, Employee: emp, Entry: entry, Time: *entry.CheckOutAt}, false, nil
}

// EntryFor exposes the day's entry for an employee of the caller's school.
func (s *Service) EntryFor(ctx context.Context, employeeID string, day time.Time) (Entry, error) {
	return s.store.EntryFor(ctx, employeeID, DayOf(day))
}

func scanKey(employeeID string, day time.Time) string {
	return "scan:" + employeeID + ":" + day.Format("2006-01-02")
}
