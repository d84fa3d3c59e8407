package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/granduer/granduer-backend/api/responses"
	"github.com/granduer/granduer-backend/api/validators"
	productssvc "github.com/granduer/granduer-backend/internal/products"
	"github.com/granduer/granduer-backend/pkg/db/models"
	"github.com/granduer/granduer-backend/pkg/logger"
)

func CategoryCreate(svc productssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createCategoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := svc.CreateCategory(r.Context(), payload.Name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCategoryResponse(category))
	}
}

func CategoryList(svc productssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]categoryResponse, 0, len(out))
		for i := range out {
			items = append(items, newCategoryResponse(&out[i]))
		}
		responses.WriteSuccess(w, items)
	}
}

func CategoryDelete(svc productssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteCategory(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"deleted": true})
	}
}

type createCategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

type categoryResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

func newCategoryResponse(category *models.Category) categoryResponse {
	return categoryResponse{ID: category.ID, Name: category.Name}
}
