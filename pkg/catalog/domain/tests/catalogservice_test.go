package tests

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entoun8/alshami-store/pkg/catalog/domain/model"
	"github.com/entoun8/alshami-store/pkg/catalog/domain/service"
	common "github.com/entoun8/alshami-store/pkg/common/domain"
)

func setup(t *testing.T) (service.CatalogService, *mockProductRepository, *mockImageStore, *mockEventDispatcher) {
	repo := &mockProductRepository{store: make(map[uuid.UUID]*model.Product)}
	images := &mockImageStore{}
	dispatcher := &mockEventDispatcher{}
	catalogService := service.NewCatalogService(repo, images, dispatcher)
	return catalogService, repo, images, dispatcher
}

func validInput() model.ProductInput {
	return model.ProductInput{
		Name:        "Arabica Beans",
		Slug:        "arabica",
		Category:    "Coffee",
		Brand:       "Alshami",
		Description: "Single-origin arabica beans, medium roast.",
		Stock:       10,
		Price:       "24.9",
		Image:       "/images/arabica.jpg",
	}
}

func TestCreateProduct(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		catalogService, repo, _, dispatcher := setup(t)

		product, err := catalogService.CreateProduct(validInput())

		require.NoError(t, err)
		assert.Equal(t, "arabica", product.Slug)
		assert.Equal(t, "24.90", product.Price)
		assert.Equal(t, 1, product.Version)

		saved, err := repo.FindBySlug("arabica")
		require.NoError(t, err)
		assert.Equal(t, product.ID, saved.ID)

		require.Len(t, dispatcher.events, 1)
		_, ok := dispatcher.events[0].(model.ProductCreated)
		assert.True(t, ok)
	})

	t.Run("Suffixes a taken slug", func(t *testing.T) {
		catalogService, _, _, _ := setup(t)

		first, err := catalogService.CreateProduct(validInput())
		require.NoError(t, err)
		second, err := catalogService.CreateProduct(validInput())
		require.NoError(t, err)
		third, err := catalogService.CreateProduct(validInput())
		require.NoError(t, err)

		assert.Equal(t, "arabica", first.Slug)
		assert.Equal(t, "arabica-2", second.Slug)
		assert.Equal(t, "arabica-3", third.Slug)
	})

	t.Run("Fails validation", func(t *testing.T) {
		catalogService, _, _, dispatcher := setup(t)
		input := validInput()
		input.Name = "ab"
		input.Stock = -1

		_, err := catalogService.CreateProduct(input)

		var validation *common.ValidationError
		require.ErrorAs(t, err, &validation)
		assert.Equal(t, []string{
			"Name must be at least 3 characters",
			"Stock must be a positive number",
		}, validation.Issues)
		assert.Empty(t, dispatcher.events)
	})

	t.Run("Fails on a negative price", func(t *testing.T) {
		catalogService, _, _, _ := setup(t)
		input := validInput()
		input.Price = "-5.00"

		_, err := catalogService.CreateProduct(input)
		assert.Error(t, err)
	})
}

func TestUpdateProduct(t *testing.T) {
	t.Run("Bumps the version and reprices", func(t *testing.T) {
		catalogService, _, _, _ := setup(t)
		product, err := catalogService.CreateProduct(validInput())
		require.NoError(t, err)

		input := validInput()
		input.Price = "29.95"
		updated, err := catalogService.UpdateProduct(product.ID, input)

		require.NoError(t, err)
		assert.Equal(t, "29.95", updated.Price)
		assert.Equal(t, 2, updated.Version)
	})

	t.Run("Rejects a slug already in use", func(t *testing.T) {
		catalogService, _, _, _ := setup(t)
		_, err := catalogService.CreateProduct(validInput())
		require.NoError(t, err)

		other := validInput()
		other.Slug = "robusta"
		product, err := catalogService.CreateProduct(other)
		require.NoError(t, err)

		input := validInput()
		_, err = catalogService.UpdateProduct(product.ID, input)
		assert.ErrorIs(t, err, model.ErrSlugTaken)
	})

	t.Run("Fails on an unknown product", func(t *testing.T) {
		catalogService, _, _, _ := setup(t)

		_, err := catalogService.UpdateProduct(uuid.New(), validInput())
		assert.ErrorIs(t, err, model.ErrProductNotFound)
	})
}

func TestListProducts(t *testing.T) {
	catalogService, _, _, _ := setup(t)
	_, err := catalogService.CreateProduct(validInput())
	require.NoError(t, err)

	spice := validInput()
	spice.Slug = "sumac"
	spice.Name = "Sumac"
	spice.Category = "Spices"
	_, err = catalogService.CreateProduct(spice)
	require.NoError(t, err)

	t.Run("All products without a filter", func(t *testing.T) {
		products, err := catalogService.ListProducts("")
		require.NoError(t, err)
		assert.Len(t, products, 2)
	})

	t.Run("Filtered by category", func(t *testing.T) {
		products, err := catalogService.ListProducts("Spices")
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "sumac", products[0].Slug)
	})

	t.Run("Distinct categories", func(t *testing.T) {
		categories, err := catalogService.ListCategories()
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"Coffee", "Spices"}, categories)
	})
}

func TestGetByID(t *testing.T) {
	catalogService, _, _, _ := setup(t)
	product, err := catalogService.CreateProduct(validInput())
	require.NoError(t, err)

	t.Run("Returns the product", func(t *testing.T) {
		found, err := catalogService.GetByID(product.ID)
		require.NoError(t, err)
		assert.Equal(t, product.ID, found.ID)
		assert.Equal(t, "arabica", found.Slug)
	})

	t.Run("Fails for an unknown id", func(t *testing.T) {
		_, err := catalogService.GetByID(uuid.New())
		assert.ErrorIs(t, err, model.ErrProductNotFound)
	})
}

func TestDeleteProduct(t *testing.T) {
	catalogService, _, _, dispatcher := setup(t)
	product, err := catalogService.CreateProduct(validInput())
	require.NoError(t, err)
	dispatcher.Reset()

	require.NoError(t, catalogService.DeleteProduct(product.ID))

	_, err = catalogService.GetByID(product.ID)
	assert.ErrorIs(t, err, model.ErrProductNotFound)

	assert.ErrorIs(t, catalogService.DeleteProduct(product.ID), model.ErrProductNotFound)
}

func TestUploadImage(t *testing.T) {
	t.Run("Stores a jpeg and returns its URL", func(t *testing.T) {
		catalogService, _, images, _ := setup(t)

		url, err := catalogService.UploadImage(context.Background(), "image/jpeg", []byte("jpeg-bytes"))

		require.NoError(t, err)
		assert.Equal(t, "https://cdn.test/"+images.lastName, url)
		assert.Contains(t, images.lastName, ".jpg")
	})

	t.Run("Rejects an oversized payload", func(t *testing.T) {
		catalogService, _, _, _ := setup(t)

		_, err := catalogService.UploadImage(context.Background(), "image/png", make([]byte, service.MaxImageBytes+1))
		assert.ErrorIs(t, err, service.ErrImageTooLarge)
	})

	t.Run("Rejects an unsupported type", func(t *testing.T) {
		catalogService, _, _, _ := setup(t)

		_, err := catalogService.UploadImage(context.Background(), "image/gif", []byte("gif-bytes"))
		assert.ErrorIs(t, err, service.ErrUnsupportedType)
	})
}

type mockProductRepository struct {
	store map[uuid.UUID]*model.Product
}

func (m *mockProductRepository) NextID() (uuid.UUID, error) { return uuid.New(), nil }
func (m *mockProductRepository) Create(product *model.Product) error {
	if taken, _ := m.SlugExists(product.Slug); taken {
		return model.ErrSlugTaken
	}
	copied := *product
	m.store[product.ID] = &copied
	return nil
}
func (m *mockProductRepository) Update(product *model.Product) error {
	if _, ok := m.store[product.ID]; !ok {
		return model.ErrProductNotFound
	}
	copied := *product
	m.store[product.ID] = &copied
	return nil
}
func (m *mockProductRepository) Delete(id uuid.UUID) error {
	if _, ok := m.store[id]; !ok {
		return model.ErrProductNotFound
	}
	delete(m.store, id)
	return nil
}
func (m *mockProductRepository) Find(id uuid.UUID) (*model.Product, error) {
	if product, ok := m.store[id]; ok {
		copied := *product
		return &copied, nil
	}
	return nil, model.ErrProductNotFound
}
func (m *mockProductRepository) FindBySlug(slug string) (*model.Product, error) {
	for _, product := range m.store {
		if product.Slug == slug {
			copied := *product
			return &copied, nil
		}
	}
	return nil, model.ErrProductNotFound
}
func (m *mockProductRepository) List(category string) ([]model.Product, error) {
	var products []model.Product
	for _, product := range m.store {
		if category == "" || category == "all" || product.Category == category {
			products = append(products, *product)
		}
	}
	return products, nil
}
func (m *mockProductRepository) Categories() ([]string, error) {
	seen := make(map[string]bool)
	var categories []string
	for _, product := range m.store {
		if !seen[product.Category] {
			seen[product.Category] = true
			categories = append(categories, product.Category)
		}
	}
	return categories, nil
}
func (m *mockProductRepository) SlugExists(slug string) (bool, error) {
	_, err := m.FindBySlug(slug)
	return err == nil, nil
}

type mockImageStore struct {
	lastName string
}

func (m *mockImageStore) Upload(_ context.Context, name, _ string, _ []byte) (string, error) {
	m.lastName = name
	return fmt.Sprintf("https://cdn.test/%s", name), nil
}

type mockEventDispatcher struct {
	events []common.Event
}

func (m *mockEventDispatcher) Dispatch(event common.Event) error {
	m.events = append(m.events, event)
	return nil
}
func (m *mockEventDispatcher) Reset() {
	m.events = nil
}
