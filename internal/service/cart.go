package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/rowanvale/njord/internal/client"
	"github.com/rowanvale/njord/internal/domain"
	"github.com/rowanvale/njord/internal/session"
	"github.com/rowanvale/njord/internal/telemetry"
)

// CartAPI is the slice of the cart service client the store consumes.
type CartAPI interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Create(ctx context.Context, userID string, lines []client.CartLineInput) (*domain.Cart, error)
	Update(ctx context.Context, cartID string, lines []client.CartLineInput) (*domain.Cart, error)
	Delete(ctx context.Context, cartID string) error
}

// CartStore maintains a per-user mirror of the server-side cart. The mirror
// is strictly a cache: every mutation sends the complete intended line set
// (full-replace, never a delta) and adopts the server's response, then
// re-fetches server truth, because the cart service may apply its own
// invariants (stock caps, merges, dedup). On any failure the mirror is left
// untouched and the error surfaces to the caller; nothing here retries.
type CartStore struct {
	api     CartAPI
	logger  *slog.Logger
	metrics *telemetry.Metrics

	mu      sync.Mutex
	locks   map[string]*sync.Mutex
	mirrors map[string]domain.Cart
}

// NewCartStore creates a cart store.
func NewCartStore(api CartAPI, logger *slog.Logger, metrics *telemetry.Metrics) *CartStore {
	return &CartStore{
		api:     api,
		logger:  logger,
		metrics: metrics,
		locks:   make(map[string]*sync.Mutex),
		mirrors: make(map[string]domain.Cart),
	}
}

// lockFor serializes operations per user. Two sessions for the same user
// still race at the server (last-write-wins there); this only prevents this
// process from interleaving its own mutations of one cart.
func (s *CartStore) lockFor(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

// cloneCart copies the line slice so callers and the stored mirror never
// share a backing array.
func cloneCart(c domain.Cart) domain.Cart {
	c.Lines = append([]domain.CartLine(nil), c.Lines...)
	return c
}

func (s *CartStore) setMirror(cart *domain.Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mirrors[cart.UserID] = cloneCart(*cart)
}

func (s *CartStore) mirrorCopy(userID string) (domain.Cart, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.mirrors[userID]
	return cloneCart(m), ok
}

// mirrorLocked returns the user's mirror, hydrating from the server first if
// this process has never seen the cart (fresh instance, post-restart). Must
// be called with the user's lock held.
func (s *CartStore) mirrorLocked(ctx context.Context, userID string) (domain.Cart, error) {
	if m, ok := s.mirrorCopy(userID); ok {
		return m, nil
	}
	fetched, err := s.fetchLocked(ctx, userID)
	if err != nil {
		return domain.Cart{}, err
	}
	return *fetched, nil
}

func (s *CartStore) outcome(op string, err error) {
	label := "ok"
	if err != nil {
		label = "error"
	}
	s.metrics.CartMutations.WithLabelValues(op, label).Inc()
}

// Fetch retrieves the server's cart for the current user and replaces the
// mirror with it. This is the sole way the mirror is first populated; it
// must run whenever the acting user becomes known (login, session restore).
func (s *CartStore) Fetch(ctx context.Context) (*domain.Cart, error) {
	userID, err := session.UserID(ctx)
	if err != nil {
		return nil, err
	}

	lock := s.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	return s.fetchLocked(ctx, userID)
}

func (s *CartStore) fetchLocked(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.api.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		cart = &domain.Cart{UserID: userID}
	}
	cart.UserID = userID
	s.setMirror(cart)

	copy := cloneCart(*cart)
	return &copy, nil
}

// Mirror returns the current local mirror without a round trip, fetching
// once if the user has never been hydrated.
func (s *CartStore) Mirror(ctx context.Context) (*domain.Cart, error) {
	userID, err := session.UserID(ctx)
	if err != nil {
		return nil, err
	}

	if m, ok := s.mirrorCopy(userID); ok {
		return &m, nil
	}
	return s.Fetch(ctx)
}

// AddOrIncrement adds quantityDelta to the product's line, appending a new
// line when none exists. quantityDelta must be positive; removing a line
// goes through RemoveLine, never through a zero quantity.
func (s *CartStore) AddOrIncrement(ctx context.Context, productID string, quantityDelta int64) (*domain.Cart, error) {
	if quantityDelta <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	userID, err := session.UserID(ctx)
	if err != nil {
		return nil, err
	}

	lock := s.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	mirror, err := s.mirrorLocked(ctx, userID)
	if err != nil {
		s.outcome("add", err)
		return nil, err
	}

	intended := make([]client.CartLineInput, 0, len(mirror.Lines)+1)
	found := false
	for _, l := range mirror.Lines {
		qty := l.Quantity
		if l.ProductID == productID {
			qty += quantityDelta
			found = true
		}
		intended = append(intended, client.CartLineInput{ProductID: l.ProductID, Quantity: qty})
	}
	if !found {
		intended = append(intended, client.CartLineInput{ProductID: productID, Quantity: quantityDelta})
	}

	cart, err := s.replaceLocked(ctx, userID, &mirror, intended)
	s.outcome("add", err)
	return cart, err
}

// UpdateQuantity sets the line's quantity to newQuantity directly.
// Precondition: newQuantity >= 1, clamped by the calling layer; this store
// trusts its caller and does not clamp. The line must already exist.
func (s *CartStore) UpdateQuantity(ctx context.Context, productID string, newQuantity int64) (*domain.Cart, error) {
	userID, err := session.UserID(ctx)
	if err != nil {
		return nil, err
	}

	lock := s.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	mirror, err := s.mirrorLocked(ctx, userID)
	if err != nil {
		s.outcome("update", err)
		return nil, err
	}
	if mirror.Line(productID) == nil {
		s.outcome("update", domain.ErrCartLineMissing)
		return nil, domain.ErrCartLineMissing
	}

	intended := make([]client.CartLineInput, 0, len(mirror.Lines))
	for _, l := range mirror.Lines {
		qty := l.Quantity
		if l.ProductID == productID {
			qty = newQuantity
		}
		intended = append(intended, client.CartLineInput{ProductID: l.ProductID, Quantity: qty})
	}

	cart, err := s.replaceLocked(ctx, userID, &mirror, intended)
	s.outcome("update", err)
	return cart, err
}

// RemoveLine drops the product's line entirely.
func (s *CartStore) RemoveLine(ctx context.Context, productID string) (*domain.Cart, error) {
	userID, err := session.UserID(ctx)
	if err != nil {
		return nil, err
	}

	lock := s.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	mirror, err := s.mirrorLocked(ctx, userID)
	if err != nil {
		s.outcome("remove", err)
		return nil, err
	}
	if mirror.Line(productID) == nil {
		s.outcome("remove", domain.ErrCartLineMissing)
		return nil, domain.ErrCartLineMissing
	}

	intended := make([]client.CartLineInput, 0, len(mirror.Lines)-1)
	for _, l := range mirror.Lines {
		if l.ProductID == productID {
			continue
		}
		intended = append(intended, client.CartLineInput{ProductID: l.ProductID, Quantity: l.Quantity})
	}

	cart, err := s.replaceLocked(ctx, userID, &mirror, intended)
	s.outcome("remove", err)
	return cart, err
}

// replaceLocked sends the intended final line set, creating the cart lazily
// when it has never been persisted, then re-fetches server truth. Must be
// called with the user's lock held.
func (s *CartStore) replaceLocked(ctx context.Context, userID string, mirror *domain.Cart, intended []client.CartLineInput) (*domain.Cart, error) {
	var (
		cart *domain.Cart
		err  error
	)
	if mirror.ID == "" {
		cart, err = s.api.Create(ctx, userID, intended)
	} else {
		cart, err = s.api.Update(ctx, mirror.ID, intended)
	}
	if err != nil {
		return nil, err
	}
	cart.UserID = userID
	s.setMirror(cart)

	// Re-fetch full server truth rather than trusting the mutation body
	// alone; the server may apply invariants the response glosses over.
	fresh, ferr := s.api.Get(ctx, userID)
	if ferr != nil || fresh == nil {
		s.logger.Warn("cart re-fetch after mutation failed, keeping mutation response",
			slog.String("user_id", userID), slog.Any("error", ferr))
		copy := cloneCart(*cart)
		return &copy, nil
	}
	fresh.UserID = userID
	s.setMirror(fresh)

	copy := cloneCart(*fresh)
	return &copy, nil
}

// Clear deletes the cart resource server-side and resets the mirror.
func (s *CartStore) Clear(ctx context.Context) error {
	userID, err := session.UserID(ctx)
	if err != nil {
		return err
	}

	lock := s.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	// Hydrate a cold mirror first; an untracked cart may still exist
	// server-side and clearing must delete it, not skip it.
	mirror, err := s.mirrorLocked(ctx, userID)
	if err != nil {
		s.outcome("clear", err)
		return err
	}
	if mirror.ID != "" {
		if err := s.api.Delete(ctx, mirror.ID); err != nil {
			s.outcome("clear", err)
			return err
		}
	}
	s.setMirror(&domain.Cart{UserID: userID})
	s.outcome("clear", nil)
	return nil
}

// ForgetLocal resets the user's mirror without touching the server. Used
// after order completion (the source cart is deleted separately, and stale
// items must not show for a completed purchase) and on logout.
func (s *CartStore) ForgetLocal(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.mirrors, userID)
}
