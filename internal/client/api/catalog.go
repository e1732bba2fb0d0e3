package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
)

type categoriesEnvelope struct {
	Categories []Category `json:"categories"`
}

type productEnvelope struct {
	Product Product `json:"product"`
}

type productsEnvelope struct {
	Products []Product `json:"products"`
}

func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var out categoriesEnvelope
	if err := c.do(ctx, http.MethodGet, c.endpoint("api/v1/categories"), nil, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

// ProductQuery narrows a product listing. Category takes precedence; Search
// and Sort follow the server's /products switches.
type ProductQuery struct {
	Search   string
	Sort     string
	Category string
	Page     int
	PerPage  int
}

func (c *Client) Products(ctx context.Context, q ProductQuery) ([]Product, error) {
	u := c.endpoint("api/v1/products")
	if q.Category != "" {
		u = c.endpoint("api/v1/categories", q.Category, "products")
	}

	vals := url.Values{}
	if q.Search != "" {
		vals.Set("q", q.Search)
	}
	if q.Sort != "" {
		vals.Set("sort", q.Sort)
	}
	if q.Page > 0 {
		vals.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		vals.Set("perPage", strconv.Itoa(q.PerPage))
	}
	u.RawQuery = vals.Encode()

	var out productsEnvelope
	if err := c.do(ctx, http.MethodGet, u, nil, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

func (c *Client) ProductBySlug(ctx context.Context, slug string) (Product, error) {
	var out productEnvelope
	if err := c.do(ctx, http.MethodGet, c.endpoint("api/v1/products", slug), nil, &out); err != nil {
		return Product{}, err
	}
	return out.Product, nil
}

func (c *Client) RelatedProducts(ctx context.Context, slug string, limit int) ([]Product, error) {
	u := c.endpoint("api/v1/products", slug, "related")
	if limit > 0 {
		vals := url.Values{}
		vals.Set("limit", strconv.Itoa(limit))
		u.RawQuery = vals.Encode()
	}

	var out productsEnvelope
	if err := c.do(ctx, http.MethodGet, u, nil, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

type categoryEnvelope struct {
	Category Category `json:"category"`
}

type categoryPayload struct {
	Name string `json:"name"`
}

func (c *Client) CreateCategory(ctx context.Context, name string) (Category, error) {
	var out categoryEnvelope
	if err := c.do(ctx, http.MethodPost, c.endpoint("api/v1/admin/categories"), categoryPayload{Name: name}, &out); err != nil {
		return Category{}, err
	}
	return out.Category, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id, name string) (Category, error) {
	var out categoryEnvelope
	if err := c.do(ctx, http.MethodPut, c.endpoint("api/v1/admin/categories", id), categoryPayload{Name: name}, &out); err != nil {
		return Category{}, err
	}
	return out.Category, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.endpoint("api/v1/admin/categories", id), nil, nil)
}

type ProductInput struct {
	CategoryID  string `json:"categoryId"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PriceCents  int64  `json:"priceCents"`
	Quantity    int    `json:"quantity"`
	Shipping    bool   `json:"shipping"`
}

func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (Product, error) {
	var out productEnvelope
	if err := c.do(ctx, http.MethodPost, c.endpoint("api/v1/admin/products"), in, &out); err != nil {
		return Product{}, err
	}
	return out.Product, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id string, in ProductInput) (Product, error) {
	var out productEnvelope
	if err := c.do(ctx, http.MethodPut, c.endpoint("api/v1/admin/products", id), in, &out); err != nil {
		return Product{}, err
	}
	return out.Product, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.endpoint("api/v1/admin/products", id), nil, nil)
}

// UploadPhoto attaches a product photo as a multipart upload. The server
// sniffs the content, so the filename only has to be plausible.
func (c *Client) UploadPhoto(ctx context.Context, productID, filename string, r io.Reader) (Product, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("photo", filename)
	if err != nil {
		return Product{}, fmt.Errorf("build upload: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return Product{}, fmt.Errorf("read photo: %w", err)
	}
	if err := form.Close(); err != nil {
		return Product{}, fmt.Errorf("build upload: %w", err)
	}

	u := c.endpoint("api/v1/admin/products", productID, "photo")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), &buf)
	if err != nil {
		return Product{}, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	var out productEnvelope
	if err := c.send(req, &out); err != nil {
		return Product{}, err
	}
	return out.Product, nil
}
