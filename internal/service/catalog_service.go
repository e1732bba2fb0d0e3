package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"storefront/internal/config"
	"storefront/internal/ids"
	"storefront/internal/media/sniffer"
	"storefront/internal/models"
	"storefront/internal/repository"
	"storefront/internal/storage"
)

var (
	ErrPhotoTooLarge    = errors.New("photo exceeds size limit")
	ErrUnsupportedPhoto = errors.New("unsupported photo format")
)

// Shelf cache keys, shared with the worker so it can invalidate them when a
// background job changes stock.
const (
	CacheKeyCategories  = "catalog:categories"
	CacheKeyNewArrivals = "catalog:newest"
	CacheKeyBestSellers = "catalog:bestsellers"
)

type CatalogService struct {
	categories *repository.CategoryRepository
	products   *repository.ProductRepository
	store      *storage.PhotoStore
	cache      *redis.Client
	queue      *redis.Client
	cfg        *config.AppConfig
	log        zerolog.Logger
}

func NewCatalogService(
	categories *repository.CategoryRepository,
	products *repository.ProductRepository,
	store *storage.PhotoStore,
	cache *redis.Client,
	queue *redis.Client,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *CatalogService {
	return &CatalogService{
		categories: categories,
		products:   products,
		store:      store,
		cache:      cache,
		queue:      queue,
		cfg:        cfg,
		log:        log,
	}
}

func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	if cached, ok := cacheGet[[]models.Category](ctx, s.cache, CacheKeyCategories); ok {
		return cached, nil
	}

	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, CacheKeyCategories, categories)
	return categories, nil
}

func (s *CatalogService) CategoryBySlug(ctx context.Context, slug string) (models.Category, error) {
	return s.categories.GetBySlug(ctx, slug)
}

func (s *CatalogService) CreateCategory(ctx context.Context, name string) (models.Category, error) {
	category := models.Category{
		ID:   ids.New(),
		Name: strings.TrimSpace(name),
		Slug: s.uniqueCategorySlug(ctx, name),
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return models.Category{}, err
	}

	s.invalidateShelves(ctx)
	return s.categories.GetByID(ctx, category.ID)
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id, name string) (models.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return models.Category{}, err
	}

	category.Name = strings.TrimSpace(name)
	category.Slug = s.uniqueCategorySlug(ctx, name)
	if err := s.categories.Update(ctx, category); err != nil {
		return models.Category{}, err
	}

	s.invalidateShelves(ctx)
	return s.categories.GetByID(ctx, id)
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateShelves(ctx)
	return nil
}

// NewArrivals lists products newest first. The first default-sized page is
// the storefront landing shelf and is served from cache.
func (s *CatalogService) NewArrivals(ctx context.Context, page, perPage int) ([]models.Product, error) {
	limit, offset := s.pageWindow(page, perPage)

	cacheable := offset == 0 && limit == s.cfg.Catalog.PageSize
	if cacheable {
		if cached, ok := cacheGet[[]models.Product](ctx, s.cache, CacheKeyNewArrivals); ok {
			return cached, nil
		}
	}

	products, err := s.products.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if cacheable {
		s.cacheSet(ctx, CacheKeyNewArrivals, products)
	}
	return products, nil
}

func (s *CatalogService) BestSellers(ctx context.Context, page, perPage int) ([]models.Product, error) {
	limit, offset := s.pageWindow(page, perPage)

	cacheable := offset == 0 && limit == s.cfg.Catalog.PageSize
	if cacheable {
		if cached, ok := cacheGet[[]models.Product](ctx, s.cache, CacheKeyBestSellers); ok {
			return cached, nil
		}
	}

	products, err := s.products.ListBySold(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if cacheable {
		s.cacheSet(ctx, CacheKeyBestSellers, products)
	}
	return products, nil
}

func (s *CatalogService) ProductsByCategory(ctx context.Context, categorySlug string, page, perPage int) ([]models.Product, error) {
	category, err := s.categories.GetBySlug(ctx, categorySlug)
	if err != nil {
		return nil, err
	}
	limit, offset := s.pageWindow(page, perPage)
	return s.products.ListByCategory(ctx, category.ID, limit, offset)
}

func (s *CatalogService) SearchProducts(ctx context.Context, term string, page, perPage int) ([]models.Product, error) {
	limit, offset := s.pageWindow(page, perPage)
	return s.products.Search(ctx, strings.TrimSpace(term), limit, offset)
}

func (s *CatalogService) ProductBySlug(ctx context.Context, slug string) (models.Product, error) {
	return s.products.GetBySlug(ctx, slug)
}

func (s *CatalogService) RelatedProducts(ctx context.Context, slug string, limit int) ([]models.Product, error) {
	product, err := s.products.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > s.cfg.Catalog.PageSize {
		limit = s.cfg.Catalog.PageSize
	}
	return s.products.Related(ctx, product.CategoryID, product.ID, limit)
}

type ProductInput struct {
	CategoryID  string
	Name        string
	Description string
	PriceCents  int64
	Quantity    int
	Shipping    bool
}

func (s *CatalogService) CreateProduct(ctx context.Context, input ProductInput) (models.Product, error) {
	if _, err := s.categories.GetByID(ctx, input.CategoryID); err != nil {
		return models.Product{}, err
	}

	product := models.Product{
		ID:          ids.New(),
		CategoryID:  input.CategoryID,
		Name:        strings.TrimSpace(input.Name),
		Slug:        s.uniqueProductSlug(ctx, input.Name),
		Description: input.Description,
		PriceCents:  input.PriceCents,
		Quantity:    input.Quantity,
		Shipping:    input.Shipping,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return models.Product{}, err
	}

	s.invalidateShelves(ctx)
	return s.products.GetByID(ctx, product.ID)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id string, input ProductInput) (models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return models.Product{}, err
	}
	if input.CategoryID != product.CategoryID {
		if _, err := s.categories.GetByID(ctx, input.CategoryID); err != nil {
			return models.Product{}, err
		}
	}

	product.CategoryID = input.CategoryID
	product.Description = input.Description
	product.PriceCents = input.PriceCents
	product.Quantity = input.Quantity
	product.Shipping = input.Shipping
	if name := strings.TrimSpace(input.Name); name != product.Name {
		product.Name = name
		product.Slug = s.uniqueProductSlug(ctx, name)
	}

	if err := s.products.Update(ctx, product); err != nil {
		return models.Product{}, err
	}

	s.invalidateShelves(ctx)
	return s.products.GetByID(ctx, id)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	product, err := s.products.Delete(ctx, id)
	if err != nil {
		return err
	}

	if product.PhotoKey != "" {
		s.emitPhotoRemoved(ctx, product.PhotoKey)
	}
	s.invalidateShelves(ctx)
	return nil
}

// AttachPhoto stores a new product photo and swaps the product's key. The
// orphaned previous object is removed by the worker, not inline, so a slow
// object store cannot fail the admin request.
func (s *CatalogService) AttachPhoto(ctx context.Context, productID string, file multipart.File, header *multipart.FileHeader) (models.Product, error) {
	if file == nil || header == nil {
		return models.Product{}, errors.New("invalid file payload")
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return models.Product{}, err
	}

	maxBytes := s.cfg.Catalog.MaxPhotoBytes
	if header.Size > maxBytes {
		return models.Product{}, ErrPhotoTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return models.Product{}, fmt.Errorf("read photo: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return models.Product{}, ErrPhotoTooLarge
	}
	if len(data) == 0 {
		return models.Product{}, errors.New("empty file")
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	result, err := sniffer.DetectHead(head)
	if err != nil {
		return models.Product{}, ErrUnsupportedPhoto
	}

	declared := sniffer.DeclaredMIME(header.Header)
	if declared != "" && declared != result.MIME {
		return models.Product{}, fmt.Errorf("content type mismatch: declared %s, actual %s", declared, result.MIME)
	}

	key := path.Join("products", productID, fmt.Sprintf("%s.%s", strings.ToLower(ids.New()), result.Type))
	if err := s.store.Put(ctx, key, result.MIME, bytes.NewReader(data), int64(len(data))); err != nil {
		return models.Product{}, err
	}

	if err := s.products.UpdatePhotoKey(ctx, productID, key); err != nil {
		return models.Product{}, err
	}

	if product.PhotoKey != "" && product.PhotoKey != key {
		s.emitPhotoRemoved(ctx, product.PhotoKey)
	}
	s.invalidateShelves(ctx)

	return s.products.GetByID(ctx, productID)
}

// PhotoURL resolves a product's photo key to a time-limited link. Products
// without a photo resolve to the empty string.
func (s *CatalogService) PhotoURL(ctx context.Context, product models.Product) (string, error) {
	if product.PhotoKey == "" {
		return "", nil
	}
	return s.store.PresignedURL(ctx, product.PhotoKey)
}

func (s *CatalogService) pageWindow(page, perPage int) (limit, offset int) {
	if perPage <= 0 || perPage > 100 {
		perPage = s.cfg.Catalog.PageSize
	}
	if page < 1 {
		page = 1
	}
	return perPage, (page - 1) * perPage
}

func (s *CatalogService) uniqueCategorySlug(ctx context.Context, name string) string {
	slug := slugify(name)
	if _, err := s.categories.GetBySlug(ctx, slug); err == nil {
		slug = fmt.Sprintf("%s-%s", slug, strings.ToLower(ids.New())[:6])
	}
	return slug
}

func (s *CatalogService) uniqueProductSlug(ctx context.Context, name string) string {
	slug := slugify(name)
	if _, err := s.products.GetBySlug(ctx, slug); err == nil {
		slug = fmt.Sprintf("%s-%s", slug, strings.ToLower(ids.New())[:6])
	}
	return slug
}

func (s *CatalogService) invalidateShelves(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, CacheKeyCategories, CacheKeyNewArrivals, CacheKeyBestSellers).Err(); err != nil {
		s.log.Warn().Err(err).Msg("shelf cache invalidation failed")
	}
}

func (s *CatalogService) emitPhotoRemoved(ctx context.Context, key string) {
	if s.queue == nil {
		return
	}
	_, err := s.queue.XAdd(ctx, &redis.XAddArgs{
		Stream: s.cfg.Worker.Stream,
		Values: map[string]any{
			"type": "product.photo.removed",
			"key":  key,
		},
	}).Result()
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("enqueue photo removal failed")
	}
}

func cacheGet[T any](ctx context.Context, cache *redis.Client, key string) (T, bool) {
	var zero T
	if cache == nil {
		return zero, false
	}
	raw, err := cache.Get(ctx, key).Bytes()
	if err != nil {
		return zero, false
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, false
	}
	return out, true
}

func (s *CatalogService) cacheSet(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cfg.Catalog.CacheTTL).Err(); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("shelf cache write failed")
	}
}

func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
