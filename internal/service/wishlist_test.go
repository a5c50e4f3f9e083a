package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/rowanvale/njord/internal/domain"
	"github.com/rowanvale/njord/internal/telemetry"
)

type fakeWishlistAPI struct {
	lists map[string]*domain.Wishlist

	removeErr error
	clearErr  error
}

func newFakeWishlistAPI() *fakeWishlistAPI {
	return &fakeWishlistAPI{lists: make(map[string]*domain.Wishlist)}
}

func (f *fakeWishlistAPI) list(userID string) *domain.Wishlist {
	l, ok := f.lists[userID]
	if !ok {
		l = &domain.Wishlist{UserID: userID}
		f.lists[userID] = l
	}
	return l
}

func (f *fakeWishlistAPI) Get(ctx context.Context, userID string) (*domain.Wishlist, error) {
	copy := *f.list(userID)
	return &copy, nil
}

func (f *fakeWishlistAPI) Add(ctx context.Context, userID, productID string) (*domain.Wishlist, error) {
	l := f.list(userID)
	if !l.Contains(productID) {
		l.Entries = append(l.Entries, domain.WishlistEntry{ProductID: productID})
	}
	copy := *l
	return &copy, nil
}

func (f *fakeWishlistAPI) Remove(ctx context.Context, userID, productID string) (*domain.Wishlist, error) {
	if f.removeErr != nil {
		return nil, f.removeErr
	}
	l := f.list(userID)
	kept := l.Entries[:0]
	for _, e := range l.Entries {
		if e.ProductID != productID {
			kept = append(kept, e)
		}
	}
	l.Entries = kept
	copy := *l
	return &copy, nil
}

func (f *fakeWishlistAPI) Clear(ctx context.Context, userID string) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	f.list(userID).Entries = nil
	return nil
}

// recordingCartAdder records add order and can fail on chosen products.
type recordingCartAdder struct {
	added []string
	fail  map[string]error
}

func (r *recordingCartAdder) AddOrIncrement(ctx context.Context, productID string, quantityDelta int64) (*domain.Cart, error) {
	if err := r.fail[productID]; err != nil {
		return nil, err
	}
	r.added = append(r.added, productID)
	return &domain.Cart{}, nil
}

func testWishlistStore(api WishlistAPI, cart CartAdder) *WishlistStore {
	return NewWishlistStore(api, cart, slog.New(slog.NewTextHandler(io.Discard, nil)), telemetry.NewTestMetrics())
}

func TestWishlistAddAndRemove(t *testing.T) {
	api := newFakeWishlistAPI()
	store := testWishlistStore(api, &recordingCartAdder{})
	ctx := userCtx("u1")

	list, err := store.Add(ctx, "p1")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if !list.Contains("p1") {
		t.Error("p1 should be saved")
	}

	// A second add is a no-op, not an error.
	list, err = store.Add(ctx, "p1")
	if err != nil {
		t.Fatalf("second Add() error = %v", err)
	}
	if len(list.Entries) != 1 {
		t.Errorf("len(Entries) = %d, want 1", len(list.Entries))
	}

	list, err = store.Remove(ctx, "p1")
	if err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if list.Contains("p1") {
		t.Error("p1 should be gone")
	}
}

func TestWishlistMoveToCart(t *testing.T) {
	api := newFakeWishlistAPI()
	cart := &recordingCartAdder{}
	store := testWishlistStore(api, cart)
	ctx := userCtx("u1")

	if _, err := store.Add(ctx, "p1"); err != nil {
		t.Fatal(err)
	}

	list, err := store.MoveToCart(ctx, "p1")
	if err != nil {
		t.Fatalf("MoveToCart() error = %v", err)
	}
	if len(cart.added) != 1 || cart.added[0] != "p1" {
		t.Errorf("cart adds = %v, want [p1]", cart.added)
	}
	if list.Contains("p1") {
		t.Error("p1 should be removed from the wishlist")
	}
}

func TestWishlistMoveToCartAddFailsFirst(t *testing.T) {
	api := newFakeWishlistAPI()
	cart := &recordingCartAdder{fail: map[string]error{"p1": errors.New("cart service down")}}
	store := testWishlistStore(api, cart)
	ctx := userCtx("u1")

	if _, err := store.Add(ctx, "p1"); err != nil {
		t.Fatal(err)
	}

	_, err := store.MoveToCart(ctx, "p1")
	if err == nil {
		t.Fatal("expected the cart add failure to surface")
	}
	// Removal never ran: the product is still saved.
	list, err := store.Fetch(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !list.Contains("p1") {
		t.Error("p1 must remain saved when the cart add fails")
	}
}

func TestWishlistMoveToCartRemoveFails(t *testing.T) {
	api := newFakeWishlistAPI()
	cart := &recordingCartAdder{}
	store := testWishlistStore(api, cart)
	ctx := userCtx("u1")

	if _, err := store.Add(ctx, "p1"); err != nil {
		t.Fatal(err)
	}
	api.removeErr = errors.New("wishlist service down")

	_, err := store.MoveToCart(ctx, "p1")
	if domain.ErrorCode(err) != domain.EPARTIAL {
		t.Fatalf("error code = %q, want EPARTIAL (err = %v)", domain.ErrorCode(err), err)
	}
	// The cart add happened before the failure.
	if len(cart.added) != 1 {
		t.Errorf("cart adds = %v, want the add to have run", cart.added)
	}
}

func TestWishlistMoveAllToCart(t *testing.T) {
	api := newFakeWishlistAPI()
	cart := &recordingCartAdder{}
	store := testWishlistStore(api, cart)
	ctx := userCtx("u1")

	for _, p := range []string{"p1", "p2", "p3"} {
		if _, err := store.Add(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	list, err := store.MoveAllToCart(ctx)
	if err != nil {
		t.Fatalf("MoveAllToCart() error = %v", err)
	}
	if len(cart.added) != 3 {
		t.Errorf("cart adds = %v, want all three", cart.added)
	}
	if len(list.Entries) != 0 {
		t.Errorf("wishlist should be empty, got %+v", list.Entries)
	}
}

func TestWishlistMoveAllAbortsBeforeClear(t *testing.T) {
	api := newFakeWishlistAPI()
	cart := &recordingCartAdder{fail: map[string]error{"p2": errors.New("cart service down")}}
	store := testWishlistStore(api, cart)
	ctx := userCtx("u1")

	for _, p := range []string{"p1", "p2", "p3"} {
		if _, err := store.Add(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	_, err := store.MoveAllToCart(ctx)
	if err == nil {
		t.Fatal("expected the mid-sequence add failure to surface")
	}
	// The clear never ran: every product is still saved.
	list, ferr := store.Fetch(ctx)
	if ferr != nil {
		t.Fatal(ferr)
	}
	if len(list.Entries) != 3 {
		t.Errorf("len(Entries) = %d, want 3 (clear must not run)", len(list.Entries))
	}
	// Adds stopped at the failure.
	if len(cart.added) != 1 || cart.added[0] != "p1" {
		t.Errorf("cart adds = %v, want [p1]", cart.added)
	}
}

func TestWishlistMoveAllClearFails(t *testing.T) {
	api := newFakeWishlistAPI()
	cart := &recordingCartAdder{}
	store := testWishlistStore(api, cart)
	ctx := userCtx("u1")

	if _, err := store.Add(ctx, "p1"); err != nil {
		t.Fatal(err)
	}
	api.clearErr = errors.New("wishlist service down")

	_, err := store.MoveAllToCart(ctx)
	if domain.ErrorCode(err) != domain.EPARTIAL {
		t.Fatalf("error code = %q, want EPARTIAL (err = %v)", domain.ErrorCode(err), err)
	}
	if len(cart.added) != 1 {
		t.Errorf("cart adds = %v, want the add to have run", cart.added)
	}
}

func TestWishlistMoveAllEmpty(t *testing.T) {
	api := newFakeWishlistAPI()
	cart := &recordingCartAdder{}
	store := testWishlistStore(api, cart)

	list, err := store.MoveAllToCart(userCtx("u1"))
	if err != nil {
		t.Fatalf("MoveAllToCart() error = %v", err)
	}
	if len(list.Entries) != 0 || len(cart.added) != 0 {
		t.Errorf("empty wishlist must be a no-op, adds = %v", cart.added)
	}
}

func TestWishlistRequiresUser(t *testing.T) {
	store := testWishlistStore(newFakeWishlistAPI(), &recordingCartAdder{})

	if _, err := store.Add(context.Background(), "p1"); !errors.Is(err, domain.ErrNoCurrentUser) {
		t.Errorf("error = %v, want ErrNoCurrentUser", err)
	}
}
