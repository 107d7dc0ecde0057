package checkout_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/nikolayk812/checkout-session/internal/checkout"
	"github.com/nikolayk812/checkout-session/internal/domain"
	"github.com/nikolayk812/checkout-session/internal/errs"
	"github.com/nikolayk812/checkout-session/internal/port"
	"github.com/nikolayk812/checkout-session/internal/port/mock"
	"github.com/nikolayk812/checkout-session/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"golang.org/x/text/currency"
)

var cfg = checkout.Config{Key: "checkout", Currency: currency.JPY}

type managerSuite struct {
	suite.Suite

	store   port.SessionStore
	logger  *slog.Logger
	ownerID string
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(managerSuite))
}

func (suite *managerSuite) SetupTest() {
	suite.store = repository.NewMemorySession()
	suite.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	suite.ownerID = gofakeit.UUID()
}

func (suite *managerSuite) open() *checkout.Manager {
	return suite.openAs(suite.ownerID)
}

func (suite *managerSuite) openAs(ownerID string) *checkout.Manager {
	m, err := checkout.Open(suite.T().Context(), suite.store, suite.logger, cfg, ownerID)
	suite.Require().NoError(err)
	return m
}

func (suite *managerSuite) TestOpen_DefaultWhenMissing() {
	m := suite.open()

	s := m.Session()
	suite.Empty(s.Items())
	suite.Equal(domain.StepCart, s.ActiveStep())
	suite.Equal(currency.JPY, s.Currency())
	suite.Nil(s.Billing())
}

func (suite *managerSuite) TestOpen_DefaultWhenUnreadable() {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "not json", payload: "{not json"},
		{name: "unknown version", payload: `{"version":99,"currency":"JPY"}`},
		{name: "bad currency", payload: `{"version":1,"currency":"???"}`},
		{name: "step out of range", payload: `{"version":1,"currency":"JPY","activeStep":9}`},
		{name: "zero quantity", payload: `{"version":1,"currency":"JPY","items":[{"id":"p1","price":"10","quantity":0}]}`},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ownerID := gofakeit.UUID()
			_, err := suite.store.Put(t.Context(), ownerID, cfg.Key, []byte(tt.payload), 0)
			require.NoError(t, err)

			m, err := checkout.Open(t.Context(), suite.store, suite.logger, cfg, ownerID)
			require.NoError(t, err)

			assert.Empty(t, m.Session().Items())
			assert.Equal(t, domain.StepCart, m.Session().ActiveStep())

			// the unreadable record is overwritten by the next transition
			_, err = m.AddItem(t.Context(), carProduct("p1", 100))
			require.NoError(t, err)
			assert.Len(t, suite.openAs(ownerID).Session().Items(), 1)
		})
	}
}

func (suite *managerSuite) TestOpen_EmptyOwner() {
	_, err := checkout.Open(suite.T().Context(), suite.store, suite.logger, cfg, "")
	suite.EqualError(err, "ownerID is empty")
}

func (suite *managerSuite) TestTransitionsArePersisted() {
	t := suite.T()
	ctx := t.Context()
	m := suite.open()

	_, err := m.AddItem(ctx, carProduct("p1", 100000))
	require.NoError(t, err)
	_, err = m.AddItem(ctx, carProduct("p2", 20000))
	require.NoError(t, err)
	_, err = m.IncreaseQuantity(ctx, "p2")
	require.NoError(t, err)
	_, err = m.DecreaseQuantity(ctx, "p1")
	require.NoError(t, err)
	_, err = m.ApplyShipping(ctx, domain.ShippingMethod{ID: "s1", Name: "Truck", Price: yen(3600), EstimatedDelivery: "3-5 days"})
	require.NoError(t, err)
	_, err = m.ApplyDiscount(ctx, yen(5000))
	require.NoError(t, err)
	_, err = m.SetBilling(ctx, randomBilling())
	require.NoError(t, err)
	_, err = m.NextStep(ctx)
	require.NoError(t, err)
	_, err = m.NextStep(ctx)
	require.NoError(t, err)
	s, err := m.BackStep(ctx)
	require.NoError(t, err)

	require.Len(t, s.Items(), 1)
	assert.Equal(t, "p2", s.Items()[0].ID)
	assert.Equal(t, domain.StepBilling, s.ActiveStep())
	assertAmount(t, 40000, s.SubTotal())
	assertAmount(t, 40000-5000+3600, s.Total())

	reopened := suite.open()
	assert.Empty(t, cmp.Diff(s, reopened.Session(), sessionCmpOpts...))
}

func (suite *managerSuite) TestRoundTripWithOrder() {
	t := suite.T()
	ctx := t.Context()
	m := suite.open()

	_, err := m.AddItem(ctx, carProduct("p1", 100000))
	require.NoError(t, err)
	s, err := m.RecordOrderSuccess(ctx, domain.OrderSnapshot{
		OrderNumber: "ORD-000001",
		PlacedAt:    time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2026, 10, 17, 9, 31, 0, 0, time.UTC),
		ItemCount:   1,
		SubTotal:    yen(100000),
		Discount:    yen(0),
		Shipping:    yen(0),
		Total:       yen(100000),
	})
	require.NoError(t, err)
	require.NotNil(t, s.LastOrder())

	reopened := suite.open()
	assert.Empty(t, cmp.Diff(s, reopened.Session(), sessionCmpOpts...))
}

func (suite *managerSuite) TestBuyNowPersistsImmediately() {
	t := suite.T()
	ctx := t.Context()
	m := suite.open()

	for range 3 {
		_, err := m.AddItem(ctx, carProduct(gofakeit.UUID(), 1000))
		require.NoError(t, err)
	}
	_, err := m.GoToStep(ctx, domain.StepPayment)
	require.NoError(t, err)

	_, err = m.BuyNow(ctx, carProduct("p9", 500000))
	require.NoError(t, err)

	s := suite.open().Session()
	require.Len(t, s.Items(), 1)
	assert.Equal(t, "p9", s.Items()[0].ID)
	assert.Equal(t, domain.StepCart, s.ActiveStep())
	assertAmount(t, 500000, s.SubTotal())
}

func (suite *managerSuite) TestRejectedTransitionKeepsSession() {
	t := suite.T()
	ctx := t.Context()
	m := suite.open()

	before, err := m.AddItem(ctx, carProduct("p1", 100))
	require.NoError(t, err)

	after, err := m.GoToStep(ctx, 5)
	require.ErrorIs(t, err, domain.ErrStepOutOfRange)
	assert.Empty(t, cmp.Diff(before, after, sessionCmpOpts...))

	_, err = m.ApplyDiscount(ctx, yen(-1))
	require.ErrorIs(t, err, domain.ErrNegativeDiscount)
	assert.Empty(t, cmp.Diff(before, m.Session(), sessionCmpOpts...))
}

func (suite *managerSuite) TestReset() {
	t := suite.T()
	ctx := t.Context()
	m := suite.open()

	_, err := m.AddItem(ctx, carProduct("p1", 100))
	require.NoError(t, err)

	first, err := m.Reset(ctx)
	require.NoError(t, err)
	second, err := m.Reset(ctx)
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(domain.NewSession(currency.JPY), first, sessionCmpOpts...))
	assert.Empty(t, cmp.Diff(first, second, sessionCmpOpts...))

	// the record is removed, not overwritten
	_, err = suite.store.Get(ctx, suite.ownerID, cfg.Key)
	require.ErrorIs(t, err, port.ErrSessionNotFound)
}

func (suite *managerSuite) TestPlaceOrder() {
	t := suite.T()
	ctx := t.Context()
	m := suite.open()

	placer := &fakePlacer{
		order: domain.OrderSnapshot{
			OrderNumber: "ORD-42",
			PlacedAt:    time.Now().UTC(),
			Total:       yen(98600),
		},
	}

	_, err := m.PlaceOrder(ctx, placer)
	require.ErrorIs(t, err, domain.ErrCheckoutIncomplete)
	assert.Zero(t, placer.calls)

	_, err = m.AddItem(ctx, carProduct("p1", 100000))
	require.NoError(t, err)
	_, err = m.ApplyShipping(ctx, domain.ShippingMethod{ID: "s1", Price: yen(3600)})
	require.NoError(t, err)
	_, err = m.ApplyDiscount(ctx, yen(5000))
	require.NoError(t, err)
	billing := randomBilling()
	_, err = m.SetBilling(ctx, billing)
	require.NoError(t, err)

	s, err := m.PlaceOrder(ctx, placer)
	require.NoError(t, err)

	require.Equal(t, 1, placer.calls)
	assert.Equal(t, billing, placer.req.Billing)
	assertAmount(t, 98600, placer.req.Total)
	assert.NoError(t, uuid.Validate(placer.req.PlacementID))
	assert.Empty(t, s.PlacementID())

	assert.Equal(t, domain.StepSuccess, s.ActiveStep())
	require.NotNil(t, s.LastOrder())
	assert.Equal(t, "ORD-42", s.LastOrder().OrderNumber)
	assert.Len(t, s.Items(), 1)

	assert.Equal(t, domain.StepSuccess, suite.open().Session().ActiveStep())
}

func (suite *managerSuite) TestPlaceOrder_PlacerFailure() {
	t := suite.T()
	ctx := t.Context()
	m := suite.open()

	_, err := m.AddItem(ctx, carProduct("p1", 100))
	require.NoError(t, err)
	_, err = m.SetBilling(ctx, randomBilling())
	require.NoError(t, err)
	before, err := m.ApplyShipping(ctx, domain.ShippingMethod{ID: "s1", Price: yen(10)})
	require.NoError(t, err)

	upstream := errors.New("connection refused")
	failing := &fakePlacer{err: upstream}
	_, err = m.PlaceOrder(ctx, failing)
	require.ErrorIs(t, err, upstream)
	assert.True(t, errs.Is(err, checkout.ErrOrderPlacement))

	// only the pending placement is added
	placementID := m.Session().PlacementID()
	require.Equal(t, failing.req.PlacementID, placementID)
	pending, err := before.BeginPlacement(placementID)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(pending, m.Session(), sessionCmpOpts...))
	assert.Nil(t, m.Session().LastOrder())

	// a retry reuses the placement id
	placer := &fakePlacer{order: domain.OrderSnapshot{OrderNumber: "ORD-7"}}
	s, err := suite.open().PlaceOrder(ctx, placer)
	require.NoError(t, err)
	assert.Equal(t, placementID, placer.req.PlacementID)
	assert.Equal(t, "ORD-7", s.LastOrder().OrderNumber)
}

func (suite *managerSuite) TestConcurrentManagersKeepEveryItem() {
	t := suite.T()
	ctx := t.Context()

	first := suite.open()
	second := suite.open()

	_, err := first.AddItem(ctx, carProduct("p1", 100))
	require.NoError(t, err)
	s, err := second.AddItem(ctx, carProduct("p2", 200))
	require.NoError(t, err)

	ids := func(s domain.Session) []string {
		var out []string
		for _, item := range s.Items() {
			out = append(out, item.ID)
		}
		return out
	}
	assert.ElementsMatch(t, []string{"p1", "p2"}, ids(s))
	assert.ElementsMatch(t, []string{"p1", "p2"}, ids(suite.open().Session()))

	// the stale manager replays on top of the newer record
	s, err = first.IncreaseQuantity(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, 3, s.ItemCount())
	assertAmount(t, 500, suite.open().Session().SubTotal())
}

func (suite *managerSuite) TestConcurrentAddsAllLand() {
	t := suite.T()
	ctx := t.Context()

	const writers = 5
	managers := make([]*checkout.Manager, writers)
	products := make([]domain.Product, writers)
	for i := range managers {
		managers[i] = suite.open()
		products[i] = carProduct(fmt.Sprintf("p%d", i), 100)
	}

	var wg sync.WaitGroup
	for i, m := range managers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.AddItem(ctx, products[i])
			if err != nil {
				// bounded replays may give up under heavy contention
				assert.True(t, errs.Is(err, checkout.ErrConcurrentUpdate), err.Error())
			}
		}()
	}
	wg.Wait()

	// every add that reported success is stored
	stored := suite.open().Session()
	assert.LessOrEqual(t, len(stored.Items()), writers)
	for _, m := range managers {
		for _, item := range m.Session().Items() {
			assert.True(t, slices.ContainsFunc(stored.Items(), func(l domain.CartLine) bool {
				return l.ID == item.ID
			}), "item %s lost", item.ID)
		}
	}
}

func TestManager_StoreFailures(t *testing.T) {
	ctx := t.Context()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	storeErr := errors.New("quota exceeded")

	t.Run("get failure is returned", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mock.NewMockSessionStore(ctrl)
		store.EXPECT().Get(gomock.Any(), "owner", cfg.Key).Return(port.SessionRecord{}, storeErr)

		_, err := checkout.Open(ctx, store, logger, cfg, "owner")
		require.ErrorIs(t, err, storeErr)
		assert.True(t, errs.Is(err, checkout.ErrStoreFailure))
	})

	t.Run("put failure keeps previous session", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mock.NewMockSessionStore(ctrl)
		store.EXPECT().Get(gomock.Any(), "owner", cfg.Key).Return(port.SessionRecord{}, port.ErrSessionNotFound)
		store.EXPECT().Put(gomock.Any(), "owner", cfg.Key, gomock.Any(), int64(0)).Return(int64(0), storeErr)

		m, err := checkout.Open(ctx, store, logger, cfg, "owner")
		require.NoError(t, err)

		s, err := m.AddItem(ctx, carProduct("p1", 100))
		require.ErrorIs(t, err, storeErr)
		assert.True(t, errs.Is(err, checkout.ErrStoreFailure))
		assert.Empty(t, s.Items())
		assert.Empty(t, m.Session().Items())
	})

	t.Run("every mutation writes the full session", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mock.NewMockSessionStore(ctrl)
		store.EXPECT().Get(gomock.Any(), "owner", cfg.Key).Return(port.SessionRecord{}, port.ErrSessionNotFound)

		var written [][]byte
		store.EXPECT().Put(gomock.Any(), "owner", cfg.Key, gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _, _ string, payload []byte, expected int64) (int64, error) {
				written = append(written, payload)
				return expected + 1, nil
			}).Times(3)

		m, err := checkout.Open(ctx, store, logger, cfg, "owner")
		require.NoError(t, err)

		_, err = m.AddItem(ctx, carProduct("p1", 100))
		require.NoError(t, err)
		_, err = m.AddItem(ctx, carProduct("p2", 200))
		require.NoError(t, err)
		_, err = m.RemoveItem(ctx, "p1")
		require.NoError(t, err)

		require.Len(t, written, 3)
		assert.Contains(t, string(written[1]), `"id":"p1"`)
		assert.Contains(t, string(written[1]), `"id":"p2"`)
		assert.NotContains(t, string(written[2]), `"id":"p1"`)
	})

	t.Run("reset failure keeps previous session", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mock.NewMockSessionStore(ctrl)
		store.EXPECT().Get(gomock.Any(), "owner", cfg.Key).Return(port.SessionRecord{}, port.ErrSessionNotFound)
		store.EXPECT().Put(gomock.Any(), "owner", cfg.Key, gomock.Any(), int64(0)).Return(int64(1), nil)
		store.EXPECT().Delete(gomock.Any(), "owner", cfg.Key).Return(false, storeErr)

		m, err := checkout.Open(ctx, store, logger, cfg, "owner")
		require.NoError(t, err)
		_, err = m.AddItem(ctx, carProduct("p1", 100))
		require.NoError(t, err)

		_, err = m.Reset(ctx)
		require.ErrorIs(t, err, storeErr)
		assert.Len(t, m.Session().Items(), 1)
	})

	t.Run("conflicts are replayed a bounded number of times", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mock.NewMockSessionStore(ctrl)
		store.EXPECT().Get(gomock.Any(), "owner", cfg.Key).
			Return(port.SessionRecord{}, port.ErrSessionNotFound).Times(4)
		store.EXPECT().Put(gomock.Any(), "owner", cfg.Key, gomock.Any(), int64(0)).
			Return(int64(0), port.ErrVersionConflict).Times(4)

		m, err := checkout.Open(ctx, store, logger, cfg, "owner")
		require.NoError(t, err)

		_, err = m.AddItem(ctx, carProduct("p1", 100))
		require.ErrorIs(t, err, port.ErrVersionConflict)
		assert.True(t, errs.Is(err, checkout.ErrConcurrentUpdate))
		assert.Empty(t, m.Session().Items())
	})

	t.Run("order confirmation not saved: retry reuses placement id", func(t *testing.T) {
		mem := repository.NewMemorySession()
		ctrl := gomock.NewController(t)
		store := mock.NewMockSessionStore(ctrl)
		store.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(mem.Get).AnyTimes()

		anyPut := func() *gomock.Call {
			return store.EXPECT().Put(gomock.Any(), "owner", cfg.Key, gomock.Any(), gomock.Any())
		}
		gomock.InOrder(
			// add item, shipping, billing, begin placement
			anyPut().DoAndReturn(mem.Put).Times(4),
			anyPut().Return(int64(0), errors.New("db down")),
			anyPut().DoAndReturn(mem.Put).AnyTimes(),
		)

		m, err := checkout.Open(ctx, store, logger, cfg, "owner")
		require.NoError(t, err)
		_, err = m.AddItem(ctx, carProduct("p1", 100000))
		require.NoError(t, err)
		_, err = m.ApplyShipping(ctx, domain.ShippingMethod{ID: "s1", Price: yen(3600)})
		require.NoError(t, err)
		_, err = m.SetBilling(ctx, randomBilling())
		require.NoError(t, err)

		placer := &dedupPlacer{orders: map[string]string{}}

		_, err = m.PlaceOrder(ctx, placer)
		require.Error(t, err)
		assert.True(t, errs.Is(err, checkout.ErrStoreFailure))
		assert.Nil(t, m.Session().LastOrder())

		retried, err := checkout.Open(ctx, store, logger, cfg, "owner")
		require.NoError(t, err)
		require.NotEmpty(t, retried.Session().PlacementID())

		s, err := retried.PlaceOrder(ctx, placer)
		require.NoError(t, err)

		require.Len(t, placer.keys, 2)
		assert.Equal(t, placer.keys[0], placer.keys[1])
		assert.Len(t, placer.orders, 1)
		require.NotNil(t, s.LastOrder())
		assert.Equal(t, placer.orders[placer.keys[0]], s.LastOrder().OrderNumber)
		assert.Equal(t, domain.StepSuccess, s.ActiveStep())
		assert.Empty(t, s.PlacementID())
	})
}

// dedupPlacer places one order per placement id, like an order service
// honoring idempotency keys.
type dedupPlacer struct {
	orders map[string]string
	keys   []string
}

func (p *dedupPlacer) PlaceOrder(_ context.Context, req domain.OrderRequest) (domain.OrderSnapshot, error) {
	p.keys = append(p.keys, req.PlacementID)

	number, ok := p.orders[req.PlacementID]
	if !ok {
		number = gofakeit.Numerify("ORD-######")
		p.orders[req.PlacementID] = number
	}

	return domain.OrderSnapshot{OrderNumber: number, Total: req.Total}, nil
}

type fakePlacer struct {
	order domain.OrderSnapshot
	err   error
	req   domain.OrderRequest
	calls int
}

func (p *fakePlacer) PlaceOrder(_ context.Context, req domain.OrderRequest) (domain.OrderSnapshot, error) {
	p.calls++
	p.req = req
	if p.err != nil {
		return domain.OrderSnapshot{}, p.err
	}
	return p.order, nil
}

var sessionCmpOpts = []cmp.Option{
	cmp.AllowUnexported(domain.Session{}),
	cmpopts.EquateEmpty(),
	cmp.Comparer(func(x, y decimal.Decimal) bool {
		return x.Equal(y)
	}),
	cmp.Comparer(func(x, y currency.Unit) bool {
		return x.String() == y.String()
	}),
	cmp.Comparer(func(x, y time.Time) bool {
		return x.Equal(y)
	}),
}

func assertAmount(t *testing.T, want int64, actual domain.Money) {
	t.Helper()

	assert.True(t, decimal.NewFromInt(want).Equal(actual.Amount), "amount %s, want %d", actual.Amount, want)
}

func yen(amount int64) domain.Money {
	return domain.NewMoney(decimal.NewFromInt(amount), currency.JPY)
}

func carProduct(id string, price int64) domain.Product {
	return domain.Product{
		ID:       id,
		Name:     gofakeit.CarMaker() + " " + gofakeit.CarModel(),
		CoverURL: gofakeit.URL(),
		Price:    yen(price),
	}
}

func randomBilling() domain.Billing {
	address := gofakeit.Address()

	return domain.Billing{
		FirstName:  gofakeit.FirstName(),
		LastName:   gofakeit.LastName(),
		Email:      gofakeit.Email(),
		Phone:      gofakeit.Phone(),
		Address:    address.Street,
		City:       address.City,
		State:      address.State,
		PostalCode: address.Zip,
		Country:    address.Country,
	}
}
