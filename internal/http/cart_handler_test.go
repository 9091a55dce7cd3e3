package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/guntanalaganesh-web/shoe-store/internal/cart"
)

func TestGetCart_Empty(t *testing.T) {
	env := newTestEnv()

	rec := env.do(t, http.MethodGet, "/api/cart", nil, env.sessionFor(""))

	require.Equal(t, http.StatusOK, rec.Code)
	c := decodeData[cart.Cart](t, rec)
	require.Empty(t, c.Items)
	require.True(t, c.Total.IsZero())
}

func TestAddItem(t *testing.T) {
	env := newTestEnv()
	p := seedRunningShoe(env)
	guest := env.sessionFor("")

	rec := env.do(t, http.MethodPost, "/api/cart/add",
		cart.AddInput{ProductID: p.ID, Size: 9, Quantity: 2}, guest)

	require.Equal(t, http.StatusOK, rec.Code)
	c := decodeData[cart.Cart](t, rec)
	require.Len(t, c.Items, 1)
	require.Equal(t, 2, c.Items[0].Quantity)
	require.Equal(t, "259.98", c.Subtotal.StringFixed(2))

	// Same line again accumulates; the cart rides the session cookie.
	rec = env.do(t, http.MethodPost, "/api/cart/add",
		cart.AddInput{ProductID: p.ID, Size: 9, Quantity: 1}, guest)
	c = decodeData[cart.Cart](t, rec)
	require.Len(t, c.Items, 1)
	require.Equal(t, 3, c.Items[0].Quantity)
}

func TestAddItem_UnknownProduct(t *testing.T) {
	env := newTestEnv()

	rec := env.do(t, http.MethodPost, "/api/cart/add",
		cart.AddInput{ProductID: "ghost", Size: 9, Quantity: 1}, env.sessionFor(""))

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddItem_ExceedsStock(t *testing.T) {
	env := newTestEnv()
	p := seedRunningShoe(env)

	rec := env.do(t, http.MethodPost, "/api/cart/add",
		cart.AddInput{ProductID: p.ID, Size: 9.5, Quantity: 3}, env.sessionFor(""))

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, errorMessage(t, rec), "only 2 in stock")
}

func TestAddItem_SizeNotCarried(t *testing.T) {
	env := newTestEnv()
	p := seedRunningShoe(env)

	rec := env.do(t, http.MethodPost, "/api/cart/add",
		cart.AddInput{ProductID: p.ID, Size: 13, Quantity: 1}, env.sessionFor(""))

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, errorMessage(t, rec), "not available in size 13")
}

func TestAddItem_BadBody(t *testing.T) {
	env := newTestEnv()

	rec := env.do(t, http.MethodPost, "/api/cart/add", "not-an-object", env.sessionFor(""))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateItem(t *testing.T) {
	env := newTestEnv()
	p := seedRunningShoe(env)
	guest := env.sessionFor("")

	env.do(t, http.MethodPost, "/api/cart/add", cart.AddInput{ProductID: p.ID, Size: 9, Quantity: 2}, guest)

	rec := env.do(t, http.MethodPut, "/api/cart/update",
		updateLineRequest{ProductID: p.ID, Size: 9, Quantity: 5}, guest)

	require.Equal(t, http.StatusOK, rec.Code)
	c := decodeData[cart.Cart](t, rec)
	require.Equal(t, 5, c.Items[0].Quantity)
}

func TestUpdateItem_ZeroRemovesLine(t *testing.T) {
	env := newTestEnv()
	p := seedRunningShoe(env)
	guest := env.sessionFor("")

	env.do(t, http.MethodPost, "/api/cart/add", cart.AddInput{ProductID: p.ID, Size: 9, Quantity: 2}, guest)

	rec := env.do(t, http.MethodPut, "/api/cart/update",
		updateLineRequest{ProductID: p.ID, Size: 9, Quantity: 0}, guest)

	require.Equal(t, http.StatusOK, rec.Code)
	c := decodeData[cart.Cart](t, rec)
	require.Empty(t, c.Items)
}

func TestUpdateItem_LineNotFound(t *testing.T) {
	env := newTestEnv()
	p := seedRunningShoe(env)

	rec := env.do(t, http.MethodPut, "/api/cart/update",
		updateLineRequest{ProductID: p.ID, Size: 9, Quantity: 1}, env.sessionFor(""))

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "cart line not found", errorMessage(t, rec))
}

func TestRemoveItem(t *testing.T) {
	env := newTestEnv()
	p := seedRunningShoe(env)
	guest := env.sessionFor("")

	env.do(t, http.MethodPost, "/api/cart/add", cart.AddInput{ProductID: p.ID, Size: 9, Quantity: 1}, guest)
	env.do(t, http.MethodPost, "/api/cart/add", cart.AddInput{ProductID: p.ID, Size: 9.5, Quantity: 1}, guest)

	rec := env.do(t, http.MethodDelete, "/api/cart/remove?productId="+p.ID+"&size=9", nil, guest)

	require.Equal(t, http.StatusOK, rec.Code)
	c := decodeData[cart.Cart](t, rec)
	require.Len(t, c.Items, 1)
	require.Equal(t, 9.5, c.Items[0].Size)
}

func TestRemoveItem_MissingParams(t *testing.T) {
	env := newTestEnv()

	rec := env.do(t, http.MethodDelete, "/api/cart/remove?size=9", nil, env.sessionFor(""))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/cart/remove?productId=p1", nil, env.sessionFor(""))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClearCart(t *testing.T) {
	env := newTestEnv()
	p := seedRunningShoe(env)
	guest := env.sessionFor("")

	env.do(t, http.MethodPost, "/api/cart/add", cart.AddInput{ProductID: p.ID, Size: 9, Quantity: 2}, guest)

	rec := env.do(t, http.MethodDelete, "/api/cart/clear", nil, guest)

	require.Equal(t, http.StatusOK, rec.Code)
	c := decodeData[cart.Cart](t, rec)
	require.Empty(t, c.Items)

	rec = env.do(t, http.MethodGet, "/api/cart", nil, guest)
	c = decodeData[cart.Cart](t, rec)
	require.Empty(t, c.Items)
}
