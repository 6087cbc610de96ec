package booking

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking/internal/apperror"
	"github.com/iliyamo/cinema-booking/internal/metrics"
	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/queue"
	"github.com/iliyamo/cinema-booking/internal/repository"
	"github.com/iliyamo/cinema-booking/internal/testutil"
)

type recordingPublisher struct {
	mu        sync.Mutex
	events    []queue.BookingEvent
	deadlines []time.Time
	err       error
}

func (p *recordingPublisher) Publish(ctx context.Context, ev queue.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	dl, _ := ctx.Deadline()
	p.deadlines = append(p.deadlines, dl)
	return p.err
}

type fixture struct {
	db       *sql.DB
	svc      *Service
	bookings *repository.BookingRepo
	pub      *recordingPublisher
	showID   uint64
	alice    uint64
	bob      uint64
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := testutil.NewDB(t)
	cat := testutil.NewCatalog(t, db)
	f := fixture{
		db:       db,
		bookings: repository.NewBookingRepo(db),
		pub:      &recordingPublisher{},
		showID:   cat.ShowID,
		alice:    testutil.User(t, db, "Alice", "alice@example.com", false),
		bob:      testutil.User(t, db, "Bob", "bob@example.com", false),
	}
	f.svc = NewService(db, repository.NewShowRepo(db), f.bookings, f.pub, nil)
	return f
}

func (f fixture) count(t *testing.T) int {
	t.Helper()
	n, err := f.bookings.CountByShow(context.Background(), f.showID)
	require.NoError(t, err)
	return n
}

func seats(pairs ...int) []model.Seat {
	out := make([]model.Seat, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, model.Seat{Row: pairs[i], Col: pairs[i+1]})
	}
	return out
}

func TestCreateBooking_EndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.CreateBooking(ctx, f.alice, f.showID, seats(0, 0, 0, 1))
	require.NoError(t, err)
	assert.NotZero(t, a.ID)
	assert.False(t, a.CreatedAt.IsZero())

	_, err = f.svc.CreateBooking(ctx, f.bob, f.showID, seats(0, 1, 0, 2))
	var ae *apperror.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperror.KindConflict, ae.Kind)
	assert.Equal(t, seats(0, 1), ae.Fields["seats"])

	c, err := f.svc.CreateBooking(ctx, f.bob, f.showID, seats(0, 2))
	require.NoError(t, err)
	assert.Greater(t, c.ID, a.ID)

	require.NoError(t, f.svc.CancelBooking(ctx, f.alice, a.ID))

	_, err = f.svc.CreateBooking(ctx, f.bob, f.showID, seats(0, 0))
	require.NoError(t, err)

	booked, err := f.bookings.BookedSeats(ctx, f.showID)
	require.NoError(t, err)
	assert.Equal(t, seats(0, 0, 0, 2), booked)

	require.Len(t, f.pub.events, 4)
	assert.Equal(t, queue.QueueBookingCreated, f.pub.events[0].Type)
	assert.Equal(t, queue.QueueBookingCancelled, f.pub.events[2].Type)
	assert.Equal(t, a.ID, f.pub.events[2].BookingID)
}

func TestCreateBooking_ValidationBeforePersistence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, s := range [][]model.Seat{nil, seats(1, 1, 1, 1), seats(10, 0), seats(0, -1), seats(0, 0, 0, 1, 0, 2, 0, 3, 0, 4, 0, 5, 0, 6)} {
		_, err := f.svc.CreateBooking(ctx, f.alice, f.showID, s)
		assert.True(t, apperror.Is(err, apperror.KindValidation), "seats %v: %v", s, err)
	}
	// Validation wins even when the show does not exist.
	_, err := f.svc.CreateBooking(ctx, f.alice, 9999, seats(1, 1, 1, 1))
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	assert.Zero(t, f.count(t))
	assert.Empty(t, f.pub.events)
}

func TestCreateBooking_UnknownShow(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateBooking(context.Background(), f.alice, 9999, seats(1, 1))
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestCreateBooking_ConflictLeavesNoRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.CreateBooking(ctx, f.alice, f.showID, seats(4, 4))
	require.NoError(t, err)

	_, err = f.svc.CreateBooking(ctx, f.bob, f.showID, seats(4, 5, 4, 4, 4, 6))
	assert.True(t, apperror.Is(err, apperror.KindConflict))
	assert.Equal(t, 1, f.count(t))

	booked, err := f.bookings.BookedSeats(ctx, f.showID)
	require.NoError(t, err)
	assert.Equal(t, seats(4, 4), booked)
}

// The SQLite test store has a single connection, so these two requests
// queue up rather than interleave; the insert-time race is covered by
// TestCreateBooking_UniqueIndexBacksUpCheck.
func TestCreateBooking_OverlappingRequests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	candidates := [][]model.Seat{seats(2, 2), seats(2, 2, 3, 3)}

	var (
		wg      sync.WaitGroup
		results = make([]error, len(candidates))
		won     = make([]model.Booking, len(candidates))
	)
	for i, s := range candidates {
		i, s := i, s
		wg.Add(1)
		go func() {
			defer wg.Done()
			won[i], results[i] = f.svc.CreateBooking(ctx, f.alice, f.showID, s)
		}()
	}
	wg.Wait()

	winner := -1
	for i, err := range results {
		if err == nil {
			require.Equal(t, -1, winner, "both bookings succeeded")
			winner = i
			continue
		}
		assert.True(t, apperror.Is(err, apperror.KindConflict), "unexpected error: %v", err)
	}
	require.NotEqual(t, -1, winner, "no booking succeeded")

	booked, err := f.bookings.BookedSeats(ctx, f.showID)
	require.NoError(t, err)
	assert.ElementsMatch(t, candidates[winner], booked)
	assert.Equal(t, 1, f.count(t))
}

// staleStore hides existing bookings from the pre-check, as a concurrent
// transaction would see them before the other commits.
type staleStore struct{ *repository.BookingRepo }

func (staleStore) ListByShowTx(context.Context, *sql.Tx, uint64) ([]model.Booking, error) {
	return nil, nil
}

func TestCreateBooking_UniqueIndexBacksUpCheck(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.CreateBooking(ctx, f.alice, f.showID, seats(7, 7))
	require.NoError(t, err)

	svc := NewService(f.db, repository.NewShowRepo(f.db), staleStore{f.bookings}, nil, nil)
	_, err = svc.CreateBooking(ctx, f.bob, f.showID, seats(7, 8, 7, 7))
	assert.True(t, apperror.Is(err, apperror.KindConflict), "got %v", err)
	assert.Equal(t, 1, f.count(t))
}

func TestCancelBooking_Ownership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.svc.CreateBooking(ctx, f.bob, f.showID, seats(1, 1))
	require.NoError(t, err)

	err = f.svc.CancelBooking(ctx, f.alice, b.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	err = f.svc.CancelBooking(ctx, f.alice, 424242)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	assert.Equal(t, 1, f.count(t))

	mine, err := f.svc.ListUserBookings(ctx, f.alice)
	require.NoError(t, err)
	assert.Empty(t, mine)

	theirs, err := f.svc.ListUserBookings(ctx, f.bob)
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.Equal(t, b.ID, theirs[0].ID)

	require.NoError(t, f.svc.CancelBooking(ctx, f.bob, b.ID))
	assert.True(t, apperror.Is(f.svc.CancelBooking(ctx, f.bob, b.ID), apperror.KindNotFound))
}

func TestListUserBookings_NewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	var ids []uint64
	for i := 0; i < 3; i++ {
		b, err := f.svc.CreateBooking(ctx, f.alice, f.showID, seats(i, 0))
		require.NoError(t, err)
		ids = append(ids, b.ID)
	}
	list, err := f.svc.ListUserBookings(ctx, f.alice)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []uint64{ids[2], ids[1], ids[0]}, []uint64{list[0].ID, list[1].ID, list[2].ID})
}

func TestCreateBooking_PublishFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.pub.err = errors.New("broker down")
	failed := metrics.EventsPublishFailed.WithLabelValues(queue.QueueBookingCreated)
	before := promtest.ToFloat64(failed)

	b, err := f.svc.CreateBooking(context.Background(), f.alice, f.showID, seats(9, 9))
	require.NoError(t, err)
	assert.NotZero(t, b.ID)
	assert.Equal(t, 1, f.count(t))
	assert.Equal(t, before+1, promtest.ToFloat64(failed))
}

func TestPublishIsBoundedByTimeout(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	before := time.Now()
	_, err := f.svc.CreateBooking(ctx, f.alice, f.showID, seats(5, 5))
	require.NoError(t, err)
	cancel()

	require.Len(t, f.pub.deadlines, 1)
	dl := f.pub.deadlines[0]
	require.False(t, dl.IsZero(), "publish context has no deadline")
	assert.WithinDuration(t, before.Add(PublishTimeout), dl, time.Second)
}
