package types

import (
	"encoding/json"
	"io"

	"github.com/go-playground/validator/v10"
)

// Category describes one tracked counter domain: the table holding its
// per-(user, day) rows and the fixed set of counter columns.
type Category struct {
	Name      string
	Table     string
	BodyField string // JSON key carrying the counter field in count-up requests
	Fields    []string

	decode func(io.Reader) (CountUp, error)
}

// Column maps a caller-supplied field name to the category's own column
// literal. The returned string is always taken from Fields, never from the
// caller's input, so it is safe to place in SQL text.
func (c Category) Column(field string) (string, bool) {
	for _, f := range c.Fields {
		if f == field {
			return f, true
		}
	}
	return "", false
}

// DecodeCountUp decodes and validates a count-up request body for this
// category, returning the counter field and the optional day string.
func (c Category) DecodeCountUp(body io.Reader) (CountUp, error) {
	return c.decode(body)
}

// CountUp is a decoded count-up request, independent of category.
type CountUp struct {
	Field string
	Day   string
}

var (
	RolyPoly = Category{
		Name:      "roly-poly",
		Table:     "daily_roly_poly_direction_counts",
		BodyField: "direction",
		Fields:    []string{"east", "west", "south", "north"},
		decode:    decodeRolyPolyCountUp,
	}

	Others = Category{
		Name:      "others",
		Table:     "daily_others_counts",
		BodyField: "object",
		Fields:    []string{"dog", "cat", "butterfly"},
		decode:    decodeOthersCountUp,
	}
)

// RolyPolyCountUpRequest records one observed roly-poly direction.
type RolyPolyCountUpRequest struct {
	Direction string `json:"direction" validate:"required,oneof=east west south north"`
	Day       string `json:"day"`
}

// OthersCountUpRequest records one observed non-roly-poly object.
type OthersCountUpRequest struct {
	Object string `json:"object" validate:"required,oneof=dog cat butterfly"`
	Day    string `json:"day"`
}

func decodeRolyPolyCountUp(body io.Reader) (CountUp, error) {
	var req RolyPolyCountUpRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return CountUp{}, err
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return CountUp{}, err
	}

	return CountUp{Field: req.Direction, Day: req.Day}, nil
}

func decodeOthersCountUp(body io.Reader) (CountUp, error) {
	var req OthersCountUpRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return CountUp{}, err
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return CountUp{}, err
	}

	return CountUp{Field: req.Object, Day: req.Day}, nil
}
