package service_test

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/its-ok-zid/movie-booking/internal/model"
	"github.com/its-ok-zid/movie-booking/internal/queue"
	"github.com/its-ok-zid/movie-booking/internal/repository"
	"github.com/its-ok-zid/movie-booking/internal/service"
)

// memInventory is an in-memory implementation of both inventory store
// interfaces. One mutex covers showings and bookings so the conditional
// operations carry the same atomicity the MySQL statements do.
type memInventory struct {
	mu       sync.Mutex
	showings map[string]model.Showing
	bookings map[string]model.Booking
}

func newMemInventory(showings ...model.Showing) *memInventory {
	m := &memInventory{
		showings: map[string]model.Showing{},
		bookings: map[string]model.Booking{},
	}
	for _, s := range showings {
		m.showings[memKey(s.Key)] = s
	}
	return m
}

func memKey(k model.ShowingKey) string {
	return strings.ToLower(k.MovieName) + "|" + strings.ToLower(k.TheatreName)
}

func (m *memInventory) Get(_ context.Context, key model.ShowingKey) (model.Showing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.showings[memKey(key)]
	if !ok {
		return model.Showing{}, sql.ErrNoRows
	}
	return s, nil
}

func (m *memInventory) List(_ context.Context) ([]model.Showing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Showing, 0, len(m.showings))
	for _, s := range m.showings {
		out = append(out, s)
	}
	return out, nil
}

func (m *memInventory) Create(_ context.Context, s model.Showing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.showings[memKey(s.Key)]; ok {
		return repository.ErrDuplicate
	}
	m.showings[memKey(s.Key)] = s
	return nil
}

func (m *memInventory) Put(_ context.Context, s model.Showing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.showings[memKey(s.Key)]; !ok {
		return sql.ErrNoRows
	}
	m.showings[memKey(s.Key)] = s
	return nil
}

func (m *memInventory) ConditionalDecrement(_ context.Context, key model.ShowingKey, amount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.showings[memKey(key)]
	if !ok {
		return sql.ErrNoRows
	}
	if s.TotalTickets < amount {
		return repository.ErrInsufficient
	}
	s.TotalTickets -= amount
	s.Status = model.StatusFor(s.TotalTickets)
	m.showings[memKey(key)] = s
	return nil
}

func (m *memInventory) DeleteIfUnreferenced(_ context.Context, key model.ShowingKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.showings[memKey(key)]; !ok {
		return sql.ErrNoRows
	}
	for _, b := range m.bookings {
		if memKey(b.Key) == memKey(key) {
			return repository.ErrReferenced
		}
	}
	delete(m.showings, memKey(key))
	return nil
}

func (m *memInventory) Save(_ context.Context, b model.Booking) (model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[b.ID]; ok {
		return model.Booking{}, repository.ErrDuplicate
	}
	m.bookings[b.ID] = b
	return b, nil
}

func (m *memInventory) getBooking(id string) (model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return model.Booking{}, sql.ErrNoRows
	}
	return b, nil
}

func (m *memInventory) ExistsForShowing(_ context.Context, key model.ShowingKey) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if memKey(b.Key) == memKey(key) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memInventory) SumTicketsForShowing(_ context.Context, key model.ShowingKey) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum := 0
	for _, b := range m.bookings {
		if memKey(b.Key) == memKey(key) {
			sum += b.NumberOfTickets
		}
	}
	return sum, nil
}

// bookingStore adapts memInventory to service.BookingStore: the
// showing Get above takes a key, so the booking Get lives on this
// wrapper.
type bookingStore struct{ *memInventory }

func (s bookingStore) Get(_ context.Context, id string) (model.Booking, error) {
	return s.getBooking(id)
}

// failingBookingStore rejects every save so the compensation path can
// be exercised.
type failingBookingStore struct{ bookingStore }

func (failingBookingStore) Save(_ context.Context, _ model.Booking) (model.Booking, error) {
	return model.Booking{}, errors.New("insert failed")
}

// capturePublisher records published events.
type capturePublisher struct {
	mu     sync.Mutex
	events []queue.TicketsBookedEvent
}

func (p *capturePublisher) PublishTicketsBooked(_ context.Context, ev queue.TicketsBookedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func newInventoryService(m *memInventory, pub service.EventPublisher) *service.InventoryService {
	return service.NewInventoryService(m, bookingStore{m}, pub)
}

func TestCreateShowing(t *testing.T) {
	m := newMemInventory()
	svc := newInventoryService(m, nil)

	s, err := svc.CreateShowing(context.Background(), "MovieA", "TheatreA", 10)
	require.NoError(t, err)
	assert.Equal(t, model.StatusBookASAP, s.Status)

	// Zero capacity is legal and starts sold out.
	s, err = svc.CreateShowing(context.Background(), "MovieB", "TheatreB", 0)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSoldOut, s.Status)

	_, err = svc.CreateShowing(context.Background(), "moviea", "theatrea", 3)
	assert.ErrorIs(t, err, service.ErrAlreadyExists)

	_, err = svc.CreateShowing(context.Background(), "", "TheatreA", 3)
	assert.ErrorIs(t, err, service.ErrInvalidRequest)

	_, err = svc.CreateShowing(context.Background(), "MovieC", "TheatreC", -1)
	assert.ErrorIs(t, err, service.ErrInvalidRequest)
}

func TestBookTickets_Success(t *testing.T) {
	m := newMemInventory(model.Showing{
		Key:          model.ShowingKey{MovieName: "MovieA", TheatreName: "TheatreA"},
		TotalTickets: 10,
		Status:       model.StatusBookASAP,
	})
	pub := &capturePublisher{}
	svc := newInventoryService(m, pub)

	b, err := svc.BookTickets(context.Background(), "MovieA", "TheatreA", 4, "A1,A2,A3,A4")
	require.NoError(t, err)
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, 4, b.NumberOfTickets)

	after, err := m.Get(context.Background(), b.Key)
	require.NoError(t, err)
	assert.Equal(t, 6, after.TotalTickets)
	assert.Equal(t, model.StatusBookASAP, after.Status)

	require.Len(t, pub.events, 1)
	assert.Equal(t, b.ID, pub.events[0].BookingID)
	assert.Equal(t, 6, pub.events[0].Remaining)
}

func TestBookTickets_ExactRemainingSellsOut(t *testing.T) {
	m := newMemInventory(model.Showing{
		Key:          model.ShowingKey{MovieName: "MovieA", TheatreName: "TheatreA"},
		TotalTickets: 10,
		Status:       model.StatusBookASAP,
	})
	svc := newInventoryService(m, nil)

	_, err := svc.BookTickets(context.Background(), "MovieA", "TheatreA", 10, "A1-A10")
	require.NoError(t, err)

	after, err := m.Get(context.Background(), model.ShowingKey{MovieName: "MovieA", TheatreName: "TheatreA"})
	require.NoError(t, err)
	assert.Equal(t, 0, after.TotalTickets)
	assert.Equal(t, model.StatusSoldOut, after.Status)

	// A sold-out showing is still listed; it just refuses bookings.
	_, err = svc.BookTickets(context.Background(), "MovieA", "TheatreA", 1, "B1")
	assert.ErrorIs(t, err, service.ErrCapacityExceeded)

	all, err := svc.ListShowings(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestBookTickets_CapacityExceeded(t *testing.T) {
	m := newMemInventory(model.Showing{
		Key:          model.ShowingKey{MovieName: "MovieA", TheatreName: "TheatreA"},
		TotalTickets: 3,
		Status:       model.StatusBookASAP,
	})
	svc := newInventoryService(m, nil)

	_, err := svc.BookTickets(context.Background(), "MovieA", "TheatreA", 4, "A1-A4")
	assert.ErrorIs(t, err, service.ErrCapacityExceeded)
	// CapacityExceeded is a specialization of InvalidRequest.
	assert.ErrorIs(t, err, service.ErrInvalidRequest)

	after, _ := m.Get(context.Background(), model.ShowingKey{MovieName: "MovieA", TheatreName: "TheatreA"})
	assert.Equal(t, 3, after.TotalTickets)
}

func TestBookTickets_InvalidCount(t *testing.T) {
	m := newMemInventory(model.Showing{
		Key:          model.ShowingKey{MovieName: "MovieA", TheatreName: "TheatreA"},
		TotalTickets: 3,
		Status:       model.StatusBookASAP,
	})
	svc := newInventoryService(m, nil)

	for _, n := range []int{0, -1} {
		_, err := svc.BookTickets(context.Background(), "MovieA", "TheatreA", n, "A1")
		assert.ErrorIs(t, err, service.ErrInvalidRequest)
		assert.NotErrorIs(t, err, service.ErrCapacityExceeded)
	}
}

func TestBookTickets_UnknownShowing(t *testing.T) {
	svc := newInventoryService(newMemInventory(), nil)

	_, err := svc.BookTickets(context.Background(), "Nope", "Nowhere", 1, "A1")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestBookTickets_CaseInsensitiveKey(t *testing.T) {
	m := newMemInventory(model.Showing{
		Key:          model.ShowingKey{MovieName: "MovieA", TheatreName: "TheatreA"},
		TotalTickets: 5,
		Status:       model.StatusBookASAP,
	})
	svc := newInventoryService(m, nil)

	_, err := svc.BookTickets(context.Background(), "moviea", "THEATREA", 2, "A1,A2")
	require.NoError(t, err)

	after, err := m.Get(context.Background(), model.ShowingKey{MovieName: "MovieA", TheatreName: "TheatreA"})
	require.NoError(t, err)
	assert.Equal(t, 3, after.TotalTickets)
}

func TestBookTickets_ConcurrentNeverOversells(t *testing.T) {
	const capacity = 10
	m := newMemInventory(model.Showing{
		Key:          model.ShowingKey{MovieName: "MovieA", TheatreName: "TheatreA"},
		TotalTickets: capacity,
		Status:       model.StatusBookASAP,
	})
	svc := newInventoryService(m, nil)

	const workers = 50
	var wg sync.WaitGroup
	accepted := make(chan int, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.BookTickets(context.Background(), "MovieA", "TheatreA", 1, "X"); err == nil {
				accepted <- 1
			}
		}()
	}
	wg.Wait()
	close(accepted)

	total := 0
	for n := range accepted {
		total += n
	}
	assert.Equal(t, capacity, total)

	after, err := m.Get(context.Background(), model.ShowingKey{MovieName: "MovieA", TheatreName: "TheatreA"})
	require.NoError(t, err)
	assert.Equal(t, 0, after.TotalTickets)
	assert.Equal(t, model.StatusSoldOut, after.Status)
}

func TestBookTickets_SaveFailureRestoresCapacity(t *testing.T) {
	m := newMemInventory(model.Showing{
		Key:          model.ShowingKey{MovieName: "MovieA", TheatreName: "TheatreA"},
		TotalTickets: 10,
		Status:       model.StatusBookASAP,
	})
	svc := service.NewInventoryService(m, failingBookingStore{bookingStore{m}}, nil)

	_, err := svc.BookTickets(context.Background(), "MovieA", "TheatreA", 4, "A1-A4")
	require.Error(t, err)

	// The decremented capacity must be handed back when the booking
	// cannot be persisted.
	after, err := m.Get(context.Background(), model.ShowingKey{MovieName: "MovieA", TheatreName: "TheatreA"})
	require.NoError(t, err)
	assert.Equal(t, 10, after.TotalTickets)
	assert.Equal(t, model.StatusBookASAP, after.Status)
}

func TestDeleteShowing_BlockedByBookings(t *testing.T) {
	m := newMemInventory(model.Showing{
		Key:          model.ShowingKey{MovieName: "MovieA", TheatreName: "TheatreA"},
		TotalTickets: 10,
		Status:       model.StatusBookASAP,
	})
	svc := newInventoryService(m, nil)

	_, err := svc.BookTickets(context.Background(), "MovieA", "TheatreA", 2, "A1,A2")
	require.NoError(t, err)

	err = svc.DeleteShowing(context.Background(), "MovieA", "TheatreA")
	assert.ErrorIs(t, err, service.ErrConflict)

	// The showing must survive a blocked delete.
	_, err = m.Get(context.Background(), model.ShowingKey{MovieName: "MovieA", TheatreName: "TheatreA"})
	assert.NoError(t, err)
}

func TestDeleteShowing_ThenBookingFailsNotFound(t *testing.T) {
	m := newMemInventory(model.Showing{
		Key:          model.ShowingKey{MovieName: "MovieA", TheatreName: "TheatreA"},
		TotalTickets: 10,
		Status:       model.StatusBookASAP,
	})
	svc := newInventoryService(m, nil)

	require.NoError(t, svc.DeleteShowing(context.Background(), "MovieA", "TheatreA"))

	_, err := svc.BookTickets(context.Background(), "MovieA", "TheatreA", 1, "A1")
	assert.ErrorIs(t, err, service.ErrNotFound)

	err = svc.DeleteShowing(context.Background(), "MovieA", "TheatreA")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestUpdateAvailability_Override(t *testing.T) {
	m := newMemInventory(model.Showing{
		Key:          model.ShowingKey{MovieName: "MovieA", TheatreName: "TheatreA"},
		TotalTickets: 10,
		Status:       model.StatusBookASAP,
	})
	svc := newInventoryService(m, nil)

	b, err := svc.BookTickets(context.Background(), "MovieA", "TheatreA", 10, "all")
	require.NoError(t, err)

	// Raise capacity back above zero; status must flip to BOOK_ASAP and
	// the booked total is reported but not enforced.
	update, err := svc.UpdateAvailability(context.Background(), "MovieA", "TheatreA", b.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, update.Showing.TotalTickets)
	assert.Equal(t, model.StatusBookASAP, update.Showing.Status)
	assert.Equal(t, 10, update.BookedTickets)

	// And down to zero again.
	update, err = svc.UpdateAvailability(context.Background(), "MovieA", "TheatreA", b.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSoldOut, update.Showing.Status)
}

func TestUpdateAvailability_Failures(t *testing.T) {
	m := newMemInventory(model.Showing{
		Key:          model.ShowingKey{MovieName: "MovieA", TheatreName: "TheatreA"},
		TotalTickets: 10,
		Status:       model.StatusBookASAP,
	})
	svc := newInventoryService(m, nil)

	b, err := svc.BookTickets(context.Background(), "MovieA", "TheatreA", 1, "A1")
	require.NoError(t, err)

	_, err = svc.UpdateAvailability(context.Background(), "MovieA", "TheatreA", "no-such-ticket", 5)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = svc.UpdateAvailability(context.Background(), "Ghost", "TheatreA", b.ID, 5)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = svc.UpdateAvailability(context.Background(), "MovieA", "TheatreA", b.ID, -1)
	assert.ErrorIs(t, err, service.ErrInvalidRequest)
}

func TestFindShowingByName(t *testing.T) {
	m := newMemInventory(
		model.Showing{Key: model.ShowingKey{MovieName: "MovieA", TheatreName: "TheatreA"}, TotalTickets: 5, Status: model.StatusBookASAP},
		model.Showing{Key: model.ShowingKey{MovieName: "MovieB", TheatreName: "TheatreB"}, TotalTickets: 0, Status: model.StatusSoldOut},
	)
	svc := newInventoryService(m, nil)

	got, err := svc.FindShowingByName(context.Background(), "movieb")
	require.NoError(t, err)
	assert.Equal(t, "MovieB", got.Key.MovieName)

	_, err = svc.FindShowingByName(context.Background(), "MovieC")
	assert.ErrorIs(t, err, service.ErrNotFound)
}
