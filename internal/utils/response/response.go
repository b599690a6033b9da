package response

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Response is the JSON envelope for every endpoint: successes carry
// message "ok" plus optional data, failures carry only an error string.
type Response struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	return json.NewEncoder(w).Encode(data)
}

func OK(data interface{}) Response {
	return Response{
		Message: "ok",
		Data:    data,
	}
}

func GeneralError(err error) Response {
	return Response{
		Error: err.Error(),
	}
}

func ValidationError(errs validator.ValidationErrors) Response {
	var errorMessages string
	for _, err := range errs {
		errorMessages += err.Field() + ": " + err.Tag() + "; "
	}

	return Response{
		Error: errorMessages,
	}
}
