package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/granduer/granduer-backend/api/responses"
	"github.com/granduer/granduer-backend/api/validators"
	userssvc "github.com/granduer/granduer-backend/internal/users"
	"github.com/granduer/granduer-backend/pkg/db/models"
	"github.com/granduer/granduer-backend/pkg/logger"
)

// AuthRegister creates an account and sends the verification mail.
func AuthRegister(svc userssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload registerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Register(r.Context(), userssvc.RegisterInput{
			FirstName: payload.FirstName,
			LastName:  payload.LastName,
			Email:     payload.Email,
			Phone:     payload.Phone,
			Password:  payload.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newUserResponse(user))
	}
}

// AuthVerifyEmail consumes the token from the verification link.
func AuthVerifyEmail(svc userssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")

		user, err := svc.VerifyEmail(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newUserResponse(user))
	}
}

type registerRequest struct {
	FirstName string  `json:"firstname" validate:"required"`
	LastName  string  `json:"lastname" validate:"required"`
	Email     string  `json:"email" validate:"required,email"`
	Phone     *string `json:"phone,omitempty"`
	Password  string  `json:"password" validate:"required,min=8"`
}

type userResponse struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	FirstName  string    `json:"firstname"`
	LastName   string    `json:"lastname"`
	Phone      *string   `json:"phone,omitempty"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt"`
}

func newUserResponse(user *models.User) userResponse {
	return userResponse{
		ID:         user.ID,
		Email:      user.Email,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Phone:      user.Phone,
		IsVerified: user.IsVerified,
		CreatedAt:  user.CreatedAt,
	}
}
