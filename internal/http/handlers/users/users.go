package users

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/harutok/counts-service/internal/storage"
	userTypes "github.com/harutok/counts-service/internal/types/users"
	"github.com/harutok/counts-service/internal/utils/response"
)

// GetUser looks a user up by id and/or email query parameters
// @Summary Get a user
// @Description Look a user up by id, email, or both (both must match)
// @Tags users
// @Produce json
// @Param id query int false "User ID"
// @Param email query string false "User email"
// @Success 200 {object} response.Response "User found"
// @Failure 400 {object} response.Response "Bad request"
// @Failure 404 {object} response.Response "Not found"
// @Router /users [get]
func GetUser(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idParam := r.URL.Query().Get("id")
		email := r.URL.Query().Get("email")
		if idParam == "" && email == "" {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("Invalid request")))
			return
		}

		var id int64
		if idParam != "" {
			parsed, err := strconv.ParseInt(idParam, 10, 64)
			if err != nil || parsed <= 0 {
				response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("Invalid request")))
				return
			}
			id = parsed
		}

		if email != "" {
			validate := validator.New()
			if err := validate.Var(email, "email"); err != nil {
				response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("Invalid request")))
				return
			}
		}

		user, err := store.GetUser(r.Context(), id, email)
		if errors.Is(err, storage.ErrNotFound) {
			response.WriteJSON(w, http.StatusNotFound, response.GeneralError(errors.New("Not found")))
			return
		}
		if err != nil {
			slog.Error("Failed to look up user", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("Internal server error")))
			return
		}

		response.WriteJSON(w, http.StatusOK, response.OK(user))
	}
}

// AddUser registers a new user
// @Summary Register a user
// @Description Register a new user by email
// @Tags users
// @Accept json
// @Produce json
// @Param user body users.AddUserRequest true "Registration details"
// @Success 200 {object} response.Response "User registered"
// @Failure 400 {object} response.Response "Bad request"
// @Failure 409 {object} response.Response "Email already registered"
// @Failure 500 {object} response.Response "Internal server error"
// @Router /users [post]
func AddUser(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req userTypes.AddUserRequest

		err := json.NewDecoder(r.Body).Decode(&req)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("request body cannot be empty")))
			return
		} else if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("Invalid request")))
			return
		}

		// Validate request
		validate := validator.New()
		err = validate.Struct(req)
		if err != nil {
			if ve, ok := err.(validator.ValidationErrors); ok {
				response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(ve))
				return
			}
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("Invalid request")))
			return
		}

		user, err := store.CreateUser(r.Context(), req.Email)
		if errors.Is(err, storage.ErrDuplicateEmail) {
			response.WriteJSON(w, http.StatusConflict, response.GeneralError(errors.New("Email already registered")))
			return
		}
		if errors.Is(err, storage.ErrWriteFailed) {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("Failed to register")))
			return
		}
		if err != nil {
			slog.Error("Failed to register user", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("Internal server error")))
			return
		}
		slog.Info("User registered", slog.Int64("user_id", user.ID))

		response.WriteJSON(w, http.StatusOK, response.OK(user))
	}
}
