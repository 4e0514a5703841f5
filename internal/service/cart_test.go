package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartService_GetOrCreate_RequiresIdentity(t *testing.T) {
	svc := &CartService{Repo: newTestRepo(t)}

	_, err := svc.GetOrCreate(context.Background(), sessionIdentity(""))
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestCartService_GetOrCreate_ReturnsSameCart(t *testing.T) {
	svc := &CartService{Repo: newTestRepo(t)}
	ctx := context.Background()

	first, err := svc.GetOrCreate(ctx, sessionIdentity("sess-1"))
	require.NoError(t, err)
	second, err := svc.GetOrCreate(ctx, sessionIdentity("sess-1"))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	other, err := svc.GetOrCreate(ctx, sessionIdentity("sess-2"))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)

	account, err := svc.GetOrCreate(ctx, accountIdentity(7))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, account.ID)
	require.NotNil(t, account.UserID)
	assert.Equal(t, uint(7), *account.UserID)
}

func TestCartService_AddLine_CreatesAndMerges(t *testing.T) {
	r := newTestRepo(t)
	svc := &CartService{Repo: r}
	ctx := context.Background()

	widget := seedProduct(t, r, "Widget", "10.00", 10)
	cart, err := svc.GetOrCreate(ctx, sessionIdentity("sess-1"))
	require.NoError(t, err)

	line, clamped, err := svc.AddLine(ctx, cart, widget.ID, 2)
	require.NoError(t, err)
	assert.False(t, clamped)
	assert.Equal(t, uint(2), line.Quantity)

	// same product merges into the single existing line
	line, clamped, err = svc.AddLine(ctx, cart, widget.ID, 3)
	require.NoError(t, err)
	assert.False(t, clamped)
	assert.Equal(t, uint(5), line.Quantity)

	lines, err := svc.Lines(ctx, cart)
	require.NoError(t, err)
	require.Len(t, lines, 1)
}

func TestCartService_AddLine_ClampsToStock(t *testing.T) {
	r := newTestRepo(t)
	svc := &CartService{Repo: r}
	ctx := context.Background()

	gadget := seedProduct(t, r, "Gadget", "5.00", 4)
	cart, err := svc.GetOrCreate(ctx, sessionIdentity("sess-1"))
	require.NoError(t, err)

	_, _, err = svc.AddLine(ctx, cart, gadget.ID, 2)
	require.NoError(t, err)

	line, clamped, err := svc.AddLine(ctx, cart, gadget.ID, 5)
	require.NoError(t, err)
	assert.True(t, clamped)
	assert.Equal(t, uint(4), line.Quantity)
}

func TestCartService_AddLine_RejectsInactiveAndMissing(t *testing.T) {
	r := newTestRepo(t)
	svc := &CartService{Repo: r}
	ctx := context.Background()

	inactive := seedProduct(t, r, "Retired", "1.00", 5)
	require.NoError(t, r.DB.Model(inactive).Update("is_active", false).Error)

	cart, err := svc.GetOrCreate(ctx, sessionIdentity("sess-1"))
	require.NoError(t, err)

	_, _, err = svc.AddLine(ctx, cart, inactive.ID, 1)
	require.ErrorIs(t, err, ErrNotFound)

	_, _, err = svc.AddLine(ctx, cart, 9999, 1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCartService_AddLine_OutOfStock(t *testing.T) {
	r := newTestRepo(t)
	svc := &CartService{Repo: r}
	ctx := context.Background()

	sold := seedProduct(t, r, "SoldOut", "1.00", 0)
	cart, err := svc.GetOrCreate(ctx, sessionIdentity("sess-1"))
	require.NoError(t, err)

	_, _, err = svc.AddLine(ctx, cart, sold.ID, 1)
	require.ErrorIs(t, err, ErrStockInsufficient)
}

func TestCartService_AdjustLine_DecreaseRemovesAtQuantityOne(t *testing.T) {
	r := newTestRepo(t)
	svc := &CartService{Repo: r}
	ctx := context.Background()

	widget := seedProduct(t, r, "Widget", "10.00", 10)
	cart, err := svc.GetOrCreate(ctx, sessionIdentity("sess-1"))
	require.NoError(t, err)

	line, _, err := svc.AddLine(ctx, cart, widget.ID, 1)
	require.NoError(t, err)

	// quantity never reaches zero while the line exists
	result, _, err := svc.AdjustLine(ctx, cart, line.ID, ActionDecrease)
	require.NoError(t, err)
	assert.Nil(t, result)

	lines, err := svc.Lines(ctx, cart)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestCartService_AdjustLine_IncreaseClampsAtStock(t *testing.T) {
	r := newTestRepo(t)
	svc := &CartService{Repo: r}
	ctx := context.Background()

	gadget := seedProduct(t, r, "Gadget", "5.00", 2)
	cart, err := svc.GetOrCreate(ctx, sessionIdentity("sess-1"))
	require.NoError(t, err)

	line, _, err := svc.AddLine(ctx, cart, gadget.ID, 2)
	require.NoError(t, err)

	adjusted, clamped, err := svc.AdjustLine(ctx, cart, line.ID, ActionIncrease)
	require.NoError(t, err)
	assert.True(t, clamped)
	assert.Equal(t, uint(2), adjusted.Quantity)
}

func TestCartService_AdjustLine_RemoveAndUnknownAction(t *testing.T) {
	r := newTestRepo(t)
	svc := &CartService{Repo: r}
	ctx := context.Background()

	widget := seedProduct(t, r, "Widget", "10.00", 10)
	cart, err := svc.GetOrCreate(ctx, sessionIdentity("sess-1"))
	require.NoError(t, err)

	line, _, err := svc.AddLine(ctx, cart, widget.ID, 3)
	require.NoError(t, err)

	_, _, err = svc.AdjustLine(ctx, cart, line.ID, LineAction("explode"))
	require.ErrorIs(t, err, ErrValidation)

	result, _, err := svc.AdjustLine(ctx, cart, line.ID, ActionRemove)
	require.NoError(t, err)
	assert.Nil(t, result)

	_, _, err = svc.AdjustLine(ctx, cart, line.ID, ActionRemove)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCartService_SubtotalAndTotalItems(t *testing.T) {
	r := newTestRepo(t)
	svc := &CartService{Repo: r}
	ctx := context.Background()

	widget := seedProduct(t, r, "Widget", "10.00", 10)
	gadget := seedProduct(t, r, "Gadget", "5.00", 10)
	cart, err := svc.GetOrCreate(ctx, sessionIdentity("sess-1"))
	require.NoError(t, err)

	_, _, err = svc.AddLine(ctx, cart, widget.ID, 2)
	require.NoError(t, err)
	_, _, err = svc.AddLine(ctx, cart, gadget.ID, 1)
	require.NoError(t, err)

	subtotal, err := svc.Subtotal(ctx, cart)
	require.NoError(t, err)
	assert.Equal(t, "25.00", subtotal.StringFixed(2))

	n, err := svc.TotalItems(ctx, cart)
	require.NoError(t, err)
	assert.Equal(t, uint(3), n)
}

func TestCartService_Clear(t *testing.T) {
	r := newTestRepo(t)
	svc := &CartService{Repo: r}
	ctx := context.Background()

	widget := seedProduct(t, r, "Widget", "10.00", 10)
	cart, err := svc.GetOrCreate(ctx, sessionIdentity("sess-1"))
	require.NoError(t, err)

	_, _, err = svc.AddLine(ctx, cart, widget.ID, 2)
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, cart))

	lines, err := svc.Lines(ctx, cart)
	require.NoError(t, err)
	assert.Empty(t, lines)
}
