package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/models"
	"storefront/internal/repository"
)

type categoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func categoryJSON(category models.Category) categoryResponse {
	return categoryResponse{
		ID:   category.ID,
		Name: category.Name,
		Slug: category.Slug,
	}
}

type productResponse struct {
	ID          string    `json:"id"`
	CategoryID  string    `json:"categoryId"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"priceCents"`
	Quantity    int       `json:"quantity"`
	Shipping    bool      `json:"shipping"`
	Sold        int       `json:"sold"`
	PhotoURL    string    `json:"photoUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (h HandlerSet) productJSON(c *gin.Context, product models.Product) productResponse {
	photoURL, err := h.catalogSvc.PhotoURL(c.Request.Context(), product)
	if err != nil {
		h.log.Warn().Err(err).Str("product_id", product.ID).Msg("presign photo failed")
	}
	return productResponse{
		ID:          product.ID,
		CategoryID:  product.CategoryID,
		Name:        product.Name,
		Slug:        product.Slug,
		Description: product.Description,
		PriceCents:  product.PriceCents,
		Quantity:    product.Quantity,
		Shipping:    product.Shipping,
		Sold:        product.Sold,
		PhotoURL:    photoURL,
		CreatedAt:   product.CreatedAt,
	}
}

func (h HandlerSet) productsJSON(c *gin.Context, products []models.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, h.productJSON(c, p))
	}
	return out
}

func (h HandlerSet) ListCategories(c *gin.Context) {
	categories, err := h.catalogSvc.Categories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]categoryResponse, 0, len(categories))
	for _, category := range categories {
		out = append(out, categoryJSON(category))
	}
	c.JSON(http.StatusOK, gin.H{"categories": out})
}

func (h HandlerSet) CategoryProducts(c *gin.Context) {
	page, perPage := pageParams(c)
	products, err := h.catalogSvc.ProductsByCategory(c.Request.Context(), c.Param("slug"), page, perPage)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": h.productsJSON(c, products)})
}

// ListProducts serves the storefront shelves: newest by default,
// best-selling with sort=bestselling, and name search with q.
func (h HandlerSet) ListProducts(c *gin.Context) {
	page, perPage := pageParams(c)
	ctx := c.Request.Context()

	var (
		products []models.Product
		err      error
	)
	switch {
	case c.Query("q") != "":
		products, err = h.catalogSvc.SearchProducts(ctx, c.Query("q"), page, perPage)
	case c.Query("sort") == "bestselling":
		products, err = h.catalogSvc.BestSellers(ctx, page, perPage)
	default:
		products, err = h.catalogSvc.NewArrivals(ctx, page, perPage)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": h.productsJSON(c, products)})
}

func (h HandlerSet) ProductDetail(c *gin.Context) {
	product, err := h.catalogSvc.ProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": h.productJSON(c, product)})
}

// ProductPhoto redirects to a short-lived presigned URL for the product's
// photo so callers never talk to the object store directly.
func (h HandlerSet) ProductPhoto(c *gin.Context) {
	product, err := h.catalogSvc.ProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	photoURL, err := h.catalogSvc.PhotoURL(c.Request.Context(), product)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if photoURL == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "product has no photo"})
		return
	}

	c.Redirect(http.StatusFound, photoURL)
}

func (h HandlerSet) RelatedProducts(c *gin.Context) {
	products, err := h.catalogSvc.RelatedProducts(c.Request.Context(), c.Param("slug"), intQuery(c, "limit", 0))
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": h.productsJSON(c, products)})
}
