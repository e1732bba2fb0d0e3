package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

type orderEnvelope struct {
	Order Order `json:"order"`
}

type ordersEnvelope struct {
	Orders []Order `json:"orders"`
}

type checkoutPayload struct {
	Items []CheckoutItem `json:"items"`
}

// Checkout places an order. Prices come from the server's product table; the
// client only names products and quantities.
func (c *Client) Checkout(ctx context.Context, items []CheckoutItem) (Order, error) {
	var out orderEnvelope
	if err := c.do(ctx, http.MethodPost, c.endpoint("api/v1/orders"), checkoutPayload{Items: items}, &out); err != nil {
		return Order{}, err
	}
	return out.Order, nil
}

func (c *Client) MyOrders(ctx context.Context, page, perPage int) ([]Order, error) {
	u := c.endpoint("api/v1/orders")
	u.RawQuery = pageQuery(page, perPage).Encode()

	var out ordersEnvelope
	if err := c.do(ctx, http.MethodGet, u, nil, &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

func (c *Client) Order(ctx context.Context, id string) (Order, error) {
	var out orderEnvelope
	if err := c.do(ctx, http.MethodGet, c.endpoint("api/v1/orders", id), nil, &out); err != nil {
		return Order{}, err
	}
	return out.Order, nil
}

func (c *Client) AdminOrders(ctx context.Context, page, perPage int) ([]Order, error) {
	u := c.endpoint("api/v1/admin/orders")
	u.RawQuery = pageQuery(page, perPage).Encode()

	var out ordersEnvelope
	if err := c.do(ctx, http.MethodGet, u, nil, &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

type orderStatusPayload struct {
	Status string `json:"status"`
}

func (c *Client) SetOrderStatus(ctx context.Context, id, status string) (Order, error) {
	var out orderEnvelope
	if err := c.do(ctx, http.MethodPut, c.endpoint("api/v1/admin/orders", id, "status"), orderStatusPayload{Status: status}, &out); err != nil {
		return Order{}, err
	}
	return out.Order, nil
}

func pageQuery(page, perPage int) url.Values {
	vals := url.Values{}
	if page > 0 {
		vals.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		vals.Set("perPage", strconv.Itoa(perPage))
	}
	return vals
}
