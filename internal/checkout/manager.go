package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/nikolayk812/checkout-session/internal/domain"
	"github.com/nikolayk812/checkout-session/internal/errs"
	"github.com/nikolayk812/checkout-session/internal/port"
	"golang.org/x/text/currency"
)

var (
	// ErrStoreFailure marks errors returned by the session store.
	ErrStoreFailure = errors.New("session store failure")
	// ErrOrderPlacement marks errors returned by the order placement service.
	ErrOrderPlacement = errors.New("order placement failed")
	// ErrConcurrentUpdate marks writes that kept losing to concurrent writers.
	ErrConcurrentUpdate = errors.New("session updated concurrently")
)

// maxConflictRetries bounds how often a transition is replayed on a fresher
// session after a version conflict.
const maxConflictRetries = 3

type Config struct {
	Key      string
	Currency currency.Unit
}

// Manager owns the checkout session of one visitor. Every transition is
// persisted before it becomes visible; a failed write leaves the previous
// session in place. Writes are conditional on the version last read, so a
// Manager that lost a race replays its transition on the stored session.
type Manager struct {
	mu      sync.Mutex
	store   port.SessionStore
	logger  *slog.Logger
	cfg     Config
	ownerID string
	session domain.Session
	version int64
}

// Open restores the owner's session from store. A missing or unreadable
// record yields the default session.
func Open(ctx context.Context, store port.SessionStore, logger *slog.Logger, cfg Config, ownerID string) (*Manager, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("ownerID is empty")
	}

	m := &Manager{
		store:   store,
		logger:  logger.With(slog.String("owner_id", ownerID)),
		cfg:     cfg,
		ownerID: ownerID,
		session: domain.NewSession(cfg.Currency),
	}

	if err := m.load(ctx); err != nil {
		return nil, err
	}

	return m, nil
}

// load replaces the session with the stored one. A missing or undecodable
// record yields the default session.
func (m *Manager) load(ctx context.Context) error {
	record, err := m.store.Get(ctx, m.ownerID, m.cfg.Key)
	if errors.Is(err, port.ErrSessionNotFound) {
		m.session, m.version = domain.NewSession(m.cfg.Currency), 0
		return nil
	}
	if err != nil {
		return errs.Mark(errs.Wrap(err, "store.Get"), ErrStoreFailure)
	}

	m.version = record.Version

	session, err := decodeSession(record.Payload)
	if err != nil {
		m.logger.Warn("discarding unreadable checkout session", slog.String("error", err.Error()))
		m.session = domain.NewSession(m.cfg.Currency)
		return nil
	}
	m.session = session

	return nil
}

func (m *Manager) OwnerID() string {
	return m.ownerID
}

// Session returns the current session.
func (m *Manager) Session() domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.session
}

func (m *Manager) AddItem(ctx context.Context, product domain.Product) (domain.Session, error) {
	return m.apply(ctx, "add_item", func(s domain.Session) (domain.Session, error) {
		return s.AddItem(product)
	})
}

func (m *Manager) RemoveItem(ctx context.Context, id string) (domain.Session, error) {
	return m.apply(ctx, "remove_item", func(s domain.Session) (domain.Session, error) {
		return s.RemoveItem(id), nil
	})
}

func (m *Manager) IncreaseQuantity(ctx context.Context, id string) (domain.Session, error) {
	return m.apply(ctx, "increase_quantity", func(s domain.Session) (domain.Session, error) {
		return s.IncreaseQuantity(id), nil
	})
}

func (m *Manager) DecreaseQuantity(ctx context.Context, id string) (domain.Session, error) {
	return m.apply(ctx, "decrease_quantity", func(s domain.Session) (domain.Session, error) {
		return s.DecreaseQuantity(id), nil
	})
}

func (m *Manager) BuyNow(ctx context.Context, product domain.Product) (domain.Session, error) {
	return m.apply(ctx, "buy_now", func(s domain.Session) (domain.Session, error) {
		return s.BuyNow(product)
	})
}

func (m *Manager) ApplyShipping(ctx context.Context, method domain.ShippingMethod) (domain.Session, error) {
	return m.apply(ctx, "apply_shipping", func(s domain.Session) (domain.Session, error) {
		return s.ApplyShipping(method)
	})
}

func (m *Manager) ApplyDiscount(ctx context.Context, amount domain.Money) (domain.Session, error) {
	return m.apply(ctx, "apply_discount", func(s domain.Session) (domain.Session, error) {
		return s.ApplyDiscount(amount)
	})
}

func (m *Manager) SetBilling(ctx context.Context, billing domain.Billing) (domain.Session, error) {
	return m.apply(ctx, "set_billing", func(s domain.Session) (domain.Session, error) {
		return s.SetBilling(billing), nil
	})
}

func (m *Manager) GoToStep(ctx context.Context, step domain.Step) (domain.Session, error) {
	return m.apply(ctx, "go_to_step", func(s domain.Session) (domain.Session, error) {
		return s.GoToStep(step)
	})
}

func (m *Manager) NextStep(ctx context.Context) (domain.Session, error) {
	return m.apply(ctx, "next_step", domain.Session.NextStep)
}

func (m *Manager) BackStep(ctx context.Context) (domain.Session, error) {
	return m.apply(ctx, "back_step", domain.Session.BackStep)
}

func (m *Manager) RecordOrderSuccess(ctx context.Context, order domain.OrderSnapshot) (domain.Session, error) {
	return m.apply(ctx, "record_order_success", func(s domain.Session) (domain.Session, error) {
		return s.RecordOrderSuccess(order), nil
	})
}

// PlaceOrder submits the session to the order placement service, records the
// confirmation and moves to the success step. Items stay until Reset.
//
// The placement id is persisted before the service is called and sent with
// the order, so a retry after a failed final write reuses it and the service
// can recognize the order it already placed.
func (m *Manager) PlaceOrder(ctx context.Context, placer port.OrderPlacer) (domain.Session, error) {
	placementID := uuid.NewString()
	pending, err := m.apply(ctx, "begin_placement", func(s domain.Session) (domain.Session, error) {
		return s.BeginPlacement(placementID)
	})
	if err != nil {
		return pending, err
	}

	req, err := pending.OrderRequest()
	if err != nil {
		return pending, err
	}

	order, err := placer.PlaceOrder(ctx, req)
	if err != nil {
		return pending, errs.Mark(errs.Wrap(err, "placer.PlaceOrder"), ErrOrderPlacement)
	}

	logger := m.logger.With(
		slog.String("placement_id", req.PlacementID),
		slog.String("order_number", order.OrderNumber))
	logger.Info("order placed", slog.String("total", order.Total.Amount.String()))

	session, err := m.apply(ctx, "place_order", func(s domain.Session) (domain.Session, error) {
		return s.RecordOrderSuccess(order).GoToStep(domain.StepSuccess)
	})
	if err != nil {
		logger.Error("order placed but confirmation was not saved", slog.String("error", err.Error()))
		return session, err
	}

	return session, nil
}

// Reset removes the stored record and returns to the default session.
func (m *Manager) Reset(ctx context.Context) (domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.store.Delete(ctx, m.ownerID, m.cfg.Key); err != nil {
		return m.session, errs.Mark(errs.Wrap(err, "store.Delete"), ErrStoreFailure)
	}

	m.session, m.version = m.session.Reset(), 0
	m.logger.Debug("checkout session reset")

	return m.session, nil
}

func (m *Manager) apply(ctx context.Context, op string, transition func(domain.Session) (domain.Session, error)) (domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for attempt := 0; ; attempt++ {
		next, err := transition(m.session)
		if err != nil {
			return m.session, err
		}

		payload, err := encodeSession(next)
		if err != nil {
			return m.session, fmt.Errorf("encodeSession: %w", err)
		}

		version, err := m.store.Put(ctx, m.ownerID, m.cfg.Key, payload, m.version)
		if errors.Is(err, port.ErrVersionConflict) {
			if attempt == maxConflictRetries {
				return m.session, errs.Mark(errs.Wrap(err, "store.Put"), ErrConcurrentUpdate)
			}

			m.logger.Debug("checkout session changed concurrently, replaying",
				slog.String("op", op),
				slog.Int("attempt", attempt+1))

			if err := m.load(ctx); err != nil {
				return m.session, err
			}
			continue
		}
		if err != nil {
			return m.session, errs.Mark(errs.Wrap(err, "store.Put"), ErrStoreFailure)
		}

		m.session, m.version = next, version
		m.logger.Debug("checkout session updated",
			slog.String("op", op),
			slog.String("step", next.ActiveStep().String()),
			slog.Int("items", len(next.Items())),
			slog.String("total", next.Total().Amount.String()))

		return next, nil
	}
}
