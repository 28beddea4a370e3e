package services_test

import (
	"fmt"
	"testing"

	"duka/internal/apperrors"
	"duka/internal/models"
	"duka/internal/repositories"
	"duka/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockProductRepo is a mock implementation of repositories.ProductRepository
type MockProductRepo struct {
	mock.Mock
}

func (m *MockProductRepo) GetAll() ([]models.Product, error) {
	args := m.Called()
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepo) GetByID(id string) (*models.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepo) Search(opts repositories.ProductSearchOptions) ([]models.Product, error) {
	args := m.Called(opts)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepo) Create(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepo) Update(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepo) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func TestProductService_GetAllProducts(t *testing.T) {
	mockRepo := new(MockProductRepo)
	service := services.NewProductService(mockRepo)

	expectedProducts := []models.Product{
		{ID: "1", Name: "Chitenge Fabric", Price: 150.0, Stock: 25},
		{ID: "2", Name: "Copper Bracelet", Price: 80.0, Stock: 40},
	}

	mockRepo.On("GetAll").Return(expectedProducts, nil).Once()

	products, err := service.GetAllProducts()

	assert.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Equal(t, expectedProducts, products)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProductByID(t *testing.T) {
	mockRepo := new(MockProductRepo)
	service := services.NewProductService(mockRepo)

	expectedProduct := &models.Product{ID: "1", Name: "Chitenge Fabric", Price: 150.0, Stock: 25}

	// Test successful retrieval
	mockRepo.On("GetByID", "1").Return(expectedProduct, nil).Once()
	product, err := service.GetProductByID("1")
	assert.NoError(t, err)
	assert.Equal(t, expectedProduct, product)
	mockRepo.AssertExpectations(t)

	// Test product not found
	mockRepo.On("GetByID", "99").Return(nil, fmt.Errorf("product 99: %w", apperrors.ErrNotFound)).Once()
	product, err = service.GetProductByID("99")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Nil(t, product)
	mockRepo.AssertExpectations(t)
}

func TestProductService_SearchProducts(t *testing.T) {
	mockRepo := new(MockProductRepo)
	service := services.NewProductService(mockRepo)

	minPrice := 100.0
	opts := repositories.ProductSearchOptions{Query: "chitenge", MinPrice: &minPrice, SortBy: "price", SortDesc: true}
	expected := []models.Product{{ID: "1", Name: "Chitenge Fabric", Price: 150.0}}

	mockRepo.On("Search", opts).Return(expected, nil).Once()

	products, err := service.SearchProducts(opts)
	assert.NoError(t, err)
	assert.Equal(t, expected, products)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct(t *testing.T) {
	mockRepo := new(MockProductRepo)
	service := services.NewProductService(mockRepo)

	product := &models.Product{Name: "Wooden Stool", SKU: "WOO-001", Price: 220.0, Stock: 8}

	mockRepo.On("Create", product).Return(nil).Once()
	assert.NoError(t, service.CreateProduct(product))
	mockRepo.AssertExpectations(t)
}

func TestProductService_UpdateAndDeleteProduct(t *testing.T) {
	mockRepo := new(MockProductRepo)
	service := services.NewProductService(mockRepo)

	product := &models.Product{ID: "1", Name: "Wooden Stool", Price: 240.0}

	mockRepo.On("Update", product).Return(nil).Once()
	assert.NoError(t, service.UpdateProduct(product))

	mockRepo.On("Delete", "1").Return(nil).Once()
	assert.NoError(t, service.DeleteProduct("1"))

	mockRepo.On("Delete", "99").Return(fmt.Errorf("product 99 for deletion: %w", apperrors.ErrNotFound)).Once()
	assert.ErrorIs(t, service.DeleteProduct("99"), apperrors.ErrNotFound)
	mockRepo.AssertExpectations(t)
}
