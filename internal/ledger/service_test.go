package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollcall/internal/errs"
	"rollcall/internal/identity"
	"rollcall/internal/ledger"
	"rollcall/internal/ledger/lock"
	"rollcall/internal/store"
)

func newFixture(t *testing.T) (*ledger.Service, *identity.Service, *ledger.MemoryStore) {
	t.Helper()
	registry := identity.NewService(identity.NewMemoryStore())
	entries := ledger.NewMemoryStore()
	svc := ledger.NewService(registry, entries, lock.NewMemory())
	return svc, registry, entries
}

func enroll(t *testing.T, registry *identity.Service, schoolID, name string) identity.Employee {
	t.Helper()
	emp, err := registry.Enroll(context.Background(), schoolID, name)
	require.NoError(t, err)
	return emp
}

func TestScanProgression(t *testing.T) {
	svc, registry, entries := newFixture(t)
	ctx := context.Background()
	emp := enroll(t, registry, "lincoln", "Jane Doe")

	checkIn := time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC)
	res, err := svc.RecordScan(ctx, emp.Badge, "lincoln", checkIn)
	require.NoError(t, err)
	assert.Equal(t, ledger.OutcomeCheckedIn, res.Outcome)
	assert.Equal(t, "Jane Doe", res.Employee.Name)
	assert.True(t, res.Time.Equal(checkIn))

	checkOut := time.Date(2024, 5, 6, 16, 30, 0, 0, time.UTC)
	res, err = svc.RecordScan(ctx, emp.Badge, "lincoln", checkOut)
	require.NoError(t, err)
	assert.Equal(t, ledger.OutcomeCheckedOut, res.Outcome)
	assert.True(t, res.Time.Equal(checkOut))

	// Third scan is informational and changes nothing.
	res, err = svc.RecordScan(ctx, emp.Badge, "lincoln", time.Date(2024, 5, 6, 16, 45, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, ledger.OutcomeAlreadyCheckedOut, res.Outcome)
	assert.True(t, res.Time.Equal(checkOut))

	entry, err := entries.EntryFor(ctx, emp.ID, ledger.DayOf(checkIn))
	require.NoError(t, err)
	assert.True(t, entry.CheckInAt.Equal(checkIn))
	require.NotNil(t, entry.CheckOutAt)
	assert.True(t, entry.CheckOutAt.Equal(checkOut))
	assert.Equal(t, "CheckedOut", entry.Status())
}

func TestDayBoundarySplitsEntries(t *testing.T) {
	svc, registry, entries := newFixture(t)
	ctx := context.Background()
	emp := enroll(t, registry, "lincoln", "Jane Doe")

	beforeMidnight := time.Date(2024, 1, 1, 23, 59, 59, 0, time.UTC)
	afterMidnight := time.Date(2024, 1, 2, 0, 0, 1, 0, time.UTC)

	res, err := svc.RecordScan(ctx, emp.Badge, "lincoln", beforeMidnight)
	require.NoError(t, err)
	assert.Equal(t, ledger.OutcomeCheckedIn, res.Outcome)

	res, err = svc.RecordScan(ctx, emp.Badge, "lincoln", afterMidnight)
	require.NoError(t, err)
	assert.Equal(t, ledger.OutcomeCheckedIn, res.Outcome, "new day starts a fresh entry")

	first, err := entries.EntryFor(ctx, emp.ID, ledger.DayOf(beforeMidnight))
	require.NoError(t, err)
	assert.Nil(t, first.CheckOutAt, "previous day's entry stays open")

	second, err := entries.EntryFor(ctx, emp.ID, ledger.DayOf(afterMidnight))
	require.NoError(t, err)
	assert.Nil(t, second.CheckOutAt)
}

func TestTenantIsolation(t *testing.T) {
	svc, registry, _ := newFixture(t)
	ctx := context.Background()
	emp := enroll(t, registry, "school-a", "Jane Doe")
	now := time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC)

	// A valid badge from school A is not recognized when school B scans it,
	// and the error is identical to a badge that exists nowhere.
	_, errB := svc.RecordScan(ctx, emp.Badge, "school-b", now)
	require.ErrorIs(t, errB, ledger.ErrUnknownBadge)

	ghost := identity.Token{EmployeeID: "3f6fd6e5-9a54-4f74-b7a1-54d54b30a94a", Code: "AAAA1111"}
	_, errGhost := svc.RecordScan(ctx, ghost.String(), "school-b", now)
	require.ErrorIs(t, errGhost, ledger.ErrUnknownBadge)
	assert.Equal(t, errB.Error(), errGhost.Error())
}

func TestMalformedTokenIsValidationError(t *testing.T) {
	svc, _, _ := newFixture(t)
	now := time.Now()

	for _, raw := range []string{
		"",
		"employee:1:ABC",
		"badge:not-a-uuid:ABC",
		"badge:3f6fd6e5-9a54-4f74-b7a1-54d54b30a94a:",
		"badge:3f6fd6e5-9a54-4f74-b7a1-54d54b30a94a",
	} {
		_, err := svc.RecordScan(context.Background(), raw, "lincoln", now)
		assert.True(t, errs.IsValidation(err), "token %q should be rejected as validation error, got %v", raw, err)
	}
}

func TestWrongCodeIsUnknownBadge(t *testing.T) {
	svc, registry, _ := newFixture(t)
	emp := enroll(t, registry, "lincoln", "Jane Doe")

	forged := identity.Token{EmployeeID: emp.ID, Code: "ZZZZ9999"}
	_, err := svc.RecordScan(context.Background(), forged.String(), "lincoln", time.Now())
	require.ErrorIs(t, err, ledger.ErrUnknownBadge)
}

func TestConcurrentScansSameDay(t *testing.T) {
	svc, registry, entries := newFixture(t)
	ctx := context.Background()
	emp := enroll(t, registry, "lincoln", "Jane Doe")
	now := time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC)

	const n = 32
	outcomes := make([]ledger.Outcome, n)
	scanErrs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := svc.RecordScan(ctx, emp.Badge, "lincoln", now.Add(time.Duration(i)*time.Second))
			outcomes[i], scanErrs[i] = res.Outcome, err
		}(i)
	}
	wg.Wait()

	for i, err := range scanErrs {
		require.NoError(t, err, "scan %d", i)
	}
	counts := map[ledger.Outcome]int{}
	for _, o := range outcomes {
		counts[o]++
	}
	assert.Equal(t, 1, counts[ledger.OutcomeCheckedIn], "exactly one racer may check in")
	assert.Equal(t, 1, counts[ledger.OutcomeCheckedOut], "exactly one racer may check out")
	assert.Equal(t, n-2, counts[ledger.OutcomeAlreadyCheckedOut])

	// The uniqueness invariant: a single entry for the (employee, day).
	assert.Len(t, entries.Snapshot(), 1)
	entry, err := entries.EntryFor(ctx, emp.ID, ledger.DayOf(now))
	require.NoError(t, err)
	require.NotNil(t, entry.CheckOutAt)
	assert.False(t, entry.CheckOutAt.Before(entry.CheckInAt), "check-in must not exceed check-out")
}

func TestCheckOutNeverPrecedesCheckIn(t *testing.T) {
	svc, registry, _ := newFixture(t)
	ctx := context.Background()
	emp := enroll(t, registry, "lincoln", "Jane Doe")

	checkIn := time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC)
	_, err := svc.RecordScan(ctx, emp.Badge, "lincoln", checkIn)
	require.NoError(t, err)

	// A skewed clock hands the second scan an earlier timestamp; the
	// recorded check-out is clamped so the invariant holds.
	res, err := svc.RecordScan(ctx, emp.Badge, "lincoln", checkIn.Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, ledger.OutcomeCheckedOut, res.Outcome)
	assert.True(t, res.Time.Equal(checkIn))
}

// flakyStore fails the first CreateEntry to prove a whole-operation retry
// is safe: the retried scan re-evaluates state and no duplicate appears.
type flakyStore struct {
	ledger.Store
	mu     sync.Mutex
	failed bool
}

func (f *flakyStore) CreateEntry(ctx context.Context, e ledger.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.failed {
		f.failed = true
		return errors.New("connection reset")
	}
	return f.Store.CreateEntry(ctx, e)
}

func TestRetryAfterTransientFailure(t *testing.T) {
	registry := identity.NewService(identity.NewMemoryStore())
	entries := ledger.NewMemoryStore()
	svc := ledger.NewService(registry, &flakyStore{Store: entries}, lock.NewMemory())
	ctx := context.Background()
	emp := enroll(t, registry, "lincoln", "Jane Doe")
	now := time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC)

	_, err := svc.RecordScan(ctx, emp.Badge, "lincoln", now)
	require.Error(t, err)
	assert.Empty(t, entries.Snapshot(), "a failed scan leaves no partial entry")

	res, err := svc.RecordScan(ctx, emp.Badge, "lincoln", now)
	require.NoError(t, err)
	assert.Equal(t, ledger.OutcomeCheckedIn, res.Outcome)
	assert.Len(t, entries.Snapshot(), 1)
}

// racingStore reports a duplicate on the first insert even though no row
// exists yet, mimicking a racer on another instance winning between the
// read and the write. The service must re-evaluate, observe the winner's
// entry and take the check-out transition.
type racingStore struct {
	ledger.Store
	mu     sync.Mutex
	raced  bool
	winner ledger.Entry
}

func (r *racingStore) CreateEntry(ctx context.Context, e ledger.Entry) error {
	r.mu.Lock()
	if !r.raced {
		r.raced = true
		winner := r.winner
		r.mu.Unlock()
		if err := r.Store.CreateEntry(ctx, winner); err != nil {
			return err
		}
		return store.ErrDuplicate
	}
	r.mu.Unlock()
	return r.Store.CreateEntry(ctx, e)
}

func TestLosingRacerReEvaluates(t *testing.T) {
	registry := identity.NewService(identity.NewMemoryStore())
	entries := ledger.NewMemoryStore()
	emp := enroll(t, registry, "lincoln", "Jane Doe")
	now := time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC)

	rs := &racingStore{Store: entries, winner: ledger.Entry{
		ID:         "winner-entry",
		EmployeeID: emp.ID,
		Day:        ledger.DayOf(now),
		CheckInAt:  now.Add(-time.Second),
	}}
	svc := ledger.NewService(registry, rs, lock.NewMemory())

	res, err := svc.RecordScan(context.Background(), emp.Badge, "lincoln", now)
	require.NoError(t, err)
	assert.Equal(t, ledger.OutcomeCheckedOut, res.Outcome, "loser must act on the winner's entry")
	assert.Len(t, entries.Snapshot(), 1)
}

func TestDayOf(t *testing.T) {
	ts := time.Date(2024, 1, 1, 23, 59, 59, 999999999, time.UTC)
	day := ledger.DayOf(ts)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), day)
	assert.Equal(t, day, ledger.DayOf(day))
}
