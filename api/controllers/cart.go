package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/granduer/granduer-backend/api/responses"
	"github.com/granduer/granduer-backend/api/validators"
	cartsvc "github.com/granduer/granduer-backend/internal/cart"
	"github.com/granduer/granduer-backend/pkg/db/models"
	pkgerrors "github.com/granduer/granduer-backend/pkg/errors"
	"github.com/granduer/granduer-backend/pkg/logger"
)

// CartAdd places a product in the caller's cart.
func CartAdd(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload cartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toAddInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if _, err := svc.AddItem(r.Context(), input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userCart, err := svc.GetCart(r.Context(), input.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCartResponse(userCart))
	}
}

// CartUpdate applies a partial update to an existing line item.
func CartUpdate(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload cartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.UpdateItem(r.Context(), input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userCart, err := svc.GetCart(r.Context(), input.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(userCart))
	}
}

// CartRemove lowers a line item's quantity by one, removing it at zero.
func CartRemove(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload cartRemoveRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveItem(r.Context(), input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userCart, err := svc.GetCart(r.Context(), input.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(userCart))
	}
}

// CartFetch returns the cart for the user in the path.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(chi.URLParam(r, "userId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id"))
			return
		}

		userCart, err := svc.GetCart(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(userCart))
	}
}

type cartItemRequest struct {
	UserID    string  `json:"userId" validate:"required,uuid"`
	ProductID string  `json:"productId" validate:"required,uuid"`
	Quantity  *int    `json:"quantity,omitempty"`
	Size      *string `json:"size,omitempty"`
	Color     *string `json:"color,omitempty"`
}

func (p cartItemRequest) toAddInput() (cartsvc.AddItemInput, error) {
	userID, productID, err := p.parseIDs()
	if err != nil {
		return cartsvc.AddItemInput{}, err
	}
	input := cartsvc.AddItemInput{
		UserID:    userID,
		ProductID: productID,
		Size:      p.Size,
		Color:     p.Color,
	}
	if p.Quantity != nil {
		input.Quantity = *p.Quantity
	}
	return input, nil
}

func (p cartItemRequest) toUpdateInput() (cartsvc.UpdateItemInput, error) {
	userID, productID, err := p.parseIDs()
	if err != nil {
		return cartsvc.UpdateItemInput{}, err
	}
	return cartsvc.UpdateItemInput{
		UserID:    userID,
		ProductID: productID,
		Quantity:  p.Quantity,
		Size:      p.Size,
		Color:     p.Color,
	}, nil
}

func (p cartItemRequest) parseIDs() (uuid.UUID, uuid.UUID, error) {
	userID, err := uuid.Parse(p.UserID)
	if err != nil {
		return uuid.Nil, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	productID, err := uuid.Parse(p.ProductID)
	if err != nil {
		return uuid.Nil, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
	}
	return userID, productID, nil
}

type cartRemoveRequest struct {
	UserID    string `json:"userId" validate:"required,uuid"`
	ProductID string `json:"productId" validate:"required,uuid"`
}

func (p cartRemoveRequest) toInput() (cartsvc.RemoveItemInput, error) {
	userID, err := uuid.Parse(p.UserID)
	if err != nil {
		return cartsvc.RemoveItemInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	productID, err := uuid.Parse(p.ProductID)
	if err != nil {
		return cartsvc.RemoveItemInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
	}
	return cartsvc.RemoveItemInput{UserID: userID, ProductID: productID}, nil
}

type cartResponse struct {
	ID     uuid.UUID          `json:"id"`
	UserID uuid.UUID          `json:"userId"`
	Items  []cartItemResponse `json:"items"`
	Total  decimal.Decimal    `json:"total"`
}

type cartItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"productId"`
	Quantity  int             `json:"quantity"`
	Size      *string         `json:"size,omitempty"`
	Color     *string         `json:"color,omitempty"`
	Product   productResponse `json:"product"`
	AddedAt   time.Time       `json:"addedAt"`
}

func newCartResponse(userCart *models.Cart) cartResponse {
	items := make([]cartItemResponse, 0, len(userCart.Items))
	total := decimal.Zero
	for _, line := range userCart.Items {
		lineTotal := line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		total = total.Add(lineTotal)
		items = append(items, cartItemResponse{
			ID:        line.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Size:      line.SelectedSize,
			Color:     line.SelectedColor,
			Product:   newProductResponse(&line.Product),
			AddedAt:   line.CreatedAt,
		})
	}
	return cartResponse{
		ID:     userCart.ID,
		UserID: userCart.UserID,
		Items:  items,
		Total:  total,
	}
}
