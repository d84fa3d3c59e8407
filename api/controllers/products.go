package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/granduer/granduer-backend/api/responses"
	"github.com/granduer/granduer-backend/api/validators"
	productssvc "github.com/granduer/granduer-backend/internal/products"
	"github.com/granduer/granduer-backend/pkg/db/models"
	pkgerrors "github.com/granduer/granduer-backend/pkg/errors"
	"github.com/granduer/granduer-backend/pkg/logger"
)

func ProductCreate(svc productssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newProductResponse(product))
	}
}

func ProductFetch(svc productssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProductResponse(product))
	}
}

func ProductList(svc productssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID, err := validators.ParseQueryUUID(r, "category_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out, err := svc.ListProducts(r.Context(), categoryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]productResponse, 0, len(out))
		for i := range out {
			items = append(items, newProductResponse(&out[i]))
		}
		responses.WriteSuccess(w, items)
	}
}

func ProductUpdate(svc productssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProductResponse(product))
	}
}

func ProductDelete(svc productssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"deleted": true})
	}
}

type createProductRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Price       string  `json:"price" validate:"required"`
	Image       string  `json:"image"`
	CategoryID  *string `json:"categoryId,omitempty"`
}

func (p createProductRequest) toInput() (productssvc.CreateProductInput, error) {
	price, err := decimal.NewFromString(p.Price)
	if err != nil {
		return productssvc.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price")
	}

	input := productssvc.CreateProductInput{
		Name:        p.Name,
		Description: p.Description,
		Price:       price,
		Image:       p.Image,
	}
	if p.CategoryID != nil {
		categoryID, err := uuid.Parse(*p.CategoryID)
		if err != nil {
			return productssvc.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category id")
		}
		input.CategoryID = &categoryID
	}
	return input, nil
}

type updateProductRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Price       *string `json:"price,omitempty"`
	Image       *string `json:"image,omitempty"`
	CategoryID  *string `json:"categoryId,omitempty"`
}

func (p updateProductRequest) toInput() (productssvc.UpdateProductInput, error) {
	input := productssvc.UpdateProductInput{
		Name:        p.Name,
		Description: p.Description,
		Image:       p.Image,
	}
	if p.Price != nil {
		price, err := decimal.NewFromString(*p.Price)
		if err != nil {
			return productssvc.UpdateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price")
		}
		input.Price = &price
	}
	if p.CategoryID != nil {
		categoryID, err := uuid.Parse(*p.CategoryID)
		if err != nil {
			return productssvc.UpdateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category id")
		}
		input.CategoryID = &categoryID
	}
	return input, nil
}

type productResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image,omitempty"`
	CategoryID  *uuid.UUID      `json:"categoryId,omitempty"`
}

func newProductResponse(product *models.Product) productResponse {
	return productResponse{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Image:       product.Image,
		CategoryID:  product.CategoryID,
	}
}

func parsePathID(r *http.Request, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+param)
	}
	return id, nil
}
