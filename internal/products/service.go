package products

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/granduer/granduer-backend/pkg/db"
	"github.com/granduer/granduer-backend/pkg/db/models"
	pkgerrors "github.com/granduer/granduer-backend/pkg/errors"
)

const (
	msgProductNotFound  = "Product does not exist in database!"
	msgCategoryNotFound = "Category does not exist!"
	msgCategoryExists   = "Category already exists!"
)

// Service manages the catalog.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, categoryID *uuid.UUID) ([]models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	CreateCategory(ctx context.Context, name string) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

// CreateProductInput carries the fields for a new catalog entry.
type CreateProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Image       string
	CategoryID  *uuid.UUID
}

// UpdateProductInput carries a partial product update. Nil fields are left
// untouched.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Image       *string
	CategoryID  *uuid.UUID
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.Price.IsNegative() || input.Price.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product price must be positive")
	}

	if input.CategoryID != nil {
		if _, err := s.repo.FindCategoryByID(ctx, *input.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgCategoryNotFound)
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up category")
		}
	}

	product := &models.Product{
		Name:        name,
		Description: input.Description,
		Price:       input.Price,
		Image:       input.Image,
		CategoryID:  input.CategoryID,
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating product")
	}
	return product, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgProductNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up product")
	}
	return product, nil
}

func (s *service) ListProducts(ctx context.Context, categoryID *uuid.UUID) ([]models.Product, error) {
	out, err := s.repo.ListProducts(ctx, categoryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing products")
	}
	return out, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be empty")
		}
		updates["name"] = name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Price != nil {
		if input.Price.IsNegative() || input.Price.IsZero() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product price must be positive")
		}
		updates["price"] = *input.Price
	}
	if input.Image != nil {
		updates["image"] = *input.Image
	}
	if input.CategoryID != nil {
		updates["category_id"] = *input.CategoryID
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	rows, err := s.repo.UpdateProduct(ctx, id, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating product")
	}
	if rows == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgProductNotFound)
	}
	return s.GetProduct(ctx, id)
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	rows, err := s.repo.DeleteProduct(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting product")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, msgProductNotFound)
	}
	return nil
}

func (s *service) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}

	category := &models.Category{Name: name}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		if db.IsUniqueViolation(err, "idx_categories_name") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, msgCategoryExists)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating category")
	}
	return category, nil
}

func (s *service) ListCategories(ctx context.Context) ([]models.Category, error) {
	out, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing categories")
	}
	return out, nil
}

func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	rows, err := s.repo.DeleteCategory(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting category")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, msgCategoryNotFound)
	}
	return nil
}
