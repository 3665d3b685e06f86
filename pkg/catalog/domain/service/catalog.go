package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/entoun8/alshami-store/pkg/catalog/domain/model"
	common "github.com/entoun8/alshami-store/pkg/common/domain"
)

var (
	ErrImageTooLarge   = errors.New("image exceeds the maximum upload size")
	ErrUnsupportedType = errors.New("image type is not supported")
)

const (
	// MaxImageBytes bounds admin image uploads.
	MaxImageBytes = 2 << 20
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ImageStore persists product images in object storage and returns the
// public URL of the stored object.
type ImageStore interface {
	Upload(ctx context.Context, name, contentType string, data []byte) (string, error)
}

type CatalogService interface {
	ListProducts(category string) ([]model.Product, error)
	ListCategories() ([]string, error)
	GetByID(id uuid.UUID) (*model.Product, error)
	GetBySlug(slug string) (*model.Product, error)
	FindUniqueSlug(base string) (string, error)

	CreateProduct(input model.ProductInput) (*model.Product, error)
	UpdateProduct(id uuid.UUID, input model.ProductInput) (*model.Product, error)
	DeleteProduct(id uuid.UUID) error
	UploadImage(ctx context.Context, contentType string, data []byte) (string, error)
}

func NewCatalogService(repo model.ProductRepository, images ImageStore, dispatcher common.EventDispatcher) CatalogService {
	return &catalogService{repo: repo, images: images, dispatcher: dispatcher}
}

type catalogService struct {
	repo       model.ProductRepository
	images     ImageStore
	dispatcher common.EventDispatcher
}

func (s *catalogService) ListProducts(category string) ([]model.Product, error) {
	return s.repo.List(category)
}

func (s *catalogService) ListCategories() ([]string, error) {
	return s.repo.Categories()
}

func (s *catalogService) GetByID(id uuid.UUID) (*model.Product, error) {
	return s.repo.Find(id)
}

func (s *catalogService) GetBySlug(slug string) (*model.Product, error) {
	return s.repo.FindBySlug(slug)
}

// FindUniqueSlug returns base unchanged when unused, otherwise the
// first free base-N suffix starting at 2.
func (s *catalogService) FindUniqueSlug(base string) (string, error) {
	taken, err := s.repo.SlugExists(base)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		taken, err := s.repo.SlugExists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
}

func (s *catalogService) CreateProduct(input model.ProductInput) (*model.Product, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	slug, err := s.FindUniqueSlug(input.Slug)
	if err != nil {
		return nil, err
	}

	price, err := model.ParsePrice(input.Price)
	if err != nil {
		return nil, err
	}

	productID, err := s.repo.NextID()
	if err != nil {
		return nil, err
	}

	product := &model.Product{
		ID:          productID,
		Slug:        slug,
		Name:        input.Name,
		Category:    input.Category,
		Brand:       input.Brand,
		Description: input.Description,
		Stock:       input.Stock,
		Price:       price,
		Image:       input.Image,
		Version:     1,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.Create(product); err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.ProductCreated{ProductID: productID, Name: product.Name, Slug: slug})
	return product, nil
}

func (s *catalogService) UpdateProduct(id uuid.UUID, input model.ProductInput) (*model.Product, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	product, err := s.repo.Find(id)
	if err != nil {
		return nil, err
	}

	if input.Slug != product.Slug {
		taken, err := s.repo.SlugExists(input.Slug)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, model.ErrSlugTaken
		}
		product.Slug = input.Slug
	}

	price, err := model.ParsePrice(input.Price)
	if err != nil {
		return nil, err
	}

	product.Name = input.Name
	product.Category = input.Category
	product.Brand = input.Brand
	product.Description = input.Description
	product.Stock = input.Stock
	product.Price = price
	product.Image = input.Image
	product.Version++

	if err := s.repo.Update(product); err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.ProductUpdated{ProductID: id, Slug: product.Slug})
	return product, nil
}

func (s *catalogService) DeleteProduct(id uuid.UUID) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	_ = s.dispatcher.Dispatch(model.ProductDeleted{ProductID: id})
	return nil
}

func (s *catalogService) UploadImage(ctx context.Context, contentType string, data []byte) (string, error) {
	if len(data) > MaxImageBytes {
		return "", ErrImageTooLarge
	}
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return "", ErrUnsupportedType
	}

	name := uuid.NewString() + ext
	url, err := s.images.Upload(ctx, name, contentType, data)
	if err != nil {
		return "", err
	}

	_ = s.dispatcher.Dispatch(model.ProductImageUploaded{ObjectName: name, URL: url})
	return url, nil
}
