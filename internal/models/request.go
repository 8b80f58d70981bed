package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const DateLayout = "2006-01-02"

const MaxFlexibleDays = 7

type SearchFilters struct {
	PriceMax           *float64 `json:"price_max,omitempty" validate:"omitempty,gt=0"`
	MaxStops           *int     `json:"max_stops,omitempty" validate:"omitempty,gte=0"`
	Airlines           []string `json:"airlines,omitempty"`
	MaxDurationMinutes *int     `json:"max_duration,omitempty" validate:"omitempty,gt=0"`
}

type SearchRequest struct {
	Origin        string         `json:"origin" validate:"required,len=3,alpha"`
	Destination   string         `json:"destination" validate:"required,len=3,alpha,nefield=Origin"`
	DepartureDate string         `json:"departure_date" validate:"required,datetime=2006-01-02"`
	ReturnDate    *string        `json:"return_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Adults        int            `json:"adults" validate:"gte=0,lte=9"`
	Children      int            `json:"children" validate:"gte=0,lte=9"`
	Infants       int            `json:"infants" validate:"gte=0,lte=9"`
	TravelClass   string         `json:"travel_class" validate:"oneof=economy premium_economy business first"`
	FlexibleDays  int            `json:"flexible_days" validate:"gte=0"`
	Filters       *SearchFilters `json:"filters,omitempty"`
}

func (r SearchRequest) IsRoundTrip() bool {
	return r.ReturnDate != nil && *r.ReturnDate != ""
}

func (r SearchRequest) TotalPassengers() int {
	return r.Adults + r.Children + r.Infants
}

// Passengers returns the passenger mix handed to providers.
func (r SearchRequest) Passengers() Passengers {
	return Passengers{Adults: r.Adults, Children: r.Children, Infants: r.Infants}
}

// Departure parses DepartureDate. Only meaningful after Validate.
func (r SearchRequest) Departure() time.Time {
	t, _ := time.Parse(DateLayout, r.DepartureDate)
	return t
}

// TripDays is the number of days between departure and return, or 0 for one-way.
func (r SearchRequest) TripDays() int {
	if !r.IsRoundTrip() {
		return 0
	}
	ret, err := time.Parse(DateLayout, *r.ReturnDate)
	if err != nil {
		return 0
	}
	return int(ret.Sub(r.Departure()).Hours() / 24)
}

// Normalize fills defaults and canonicalises airport codes.
func (r *SearchRequest) Normalize() {
	r.Origin = strings.ToUpper(strings.TrimSpace(r.Origin))
	r.Destination = strings.ToUpper(strings.TrimSpace(r.Destination))
	r.TravelClass = strings.ToLower(strings.TrimSpace(r.TravelClass))

	if r.TravelClass == "" {
		r.TravelClass = "economy"
	}
	if r.Adults == 0 && r.Children == 0 && r.Infants == 0 {
		r.Adults = 1
	}
	if r.ReturnDate != nil && strings.TrimSpace(*r.ReturnDate) == "" {
		r.ReturnDate = nil
	}
	if r.FlexibleDays > MaxFlexibleDays {
		r.FlexibleDays = MaxFlexibleDays
	}
}

func (r *SearchRequest) Validate() error {
	r.Normalize()

	if r.Origin == "" {
		return ErrMissingOrigin
	}
	if r.Destination == "" {
		return ErrMissingDestination
	}
	if r.DepartureDate == "" {
		return ErrMissingDepartureDate
	}
	if r.Origin == r.Destination {
		return ErrSameOriginDestination
	}

	if err := validate.Struct(r); err != nil {
		return translate(err)
	}

	if r.Adults == 0 && r.Infants > 0 {
		return ErrInfantWithoutAdult
	}
	if r.IsRoundTrip() && r.TripDays() < 0 {
		return ErrReturnBeforeDeparture
	}
	return nil
}

// Validator returns the shared validator so the HTTP layer can reuse the same
// tag-name configuration.
func Validator() *validator.Validate {
	return validate
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func translate(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return ValidationError(fmt.Sprintf("%s is required", fe.Field()))
	case "nefield":
		return ErrSameOriginDestination
	case "datetime":
		return ValidationError(fmt.Sprintf("%s must be a date in YYYY-MM-DD format", fe.Field()))
	case "oneof":
		return ValidationError(fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()))
	case "len", "alpha":
		return ValidationError(fmt.Sprintf("%s must be a 3-letter airport code", fe.Field()))
	default:
		return ValidationError(fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag()))
	}
}

type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

const (
	ErrMissingOrigin         ValidationError = "origin is required"
	ErrMissingDestination    ValidationError = "destination is required"
	ErrMissingDepartureDate  ValidationError = "departure_date is required"
	ErrSameOriginDestination ValidationError = "origin and destination must differ"
	ErrReturnBeforeDeparture ValidationError = "return_date must not be before departure_date"
	ErrInfantWithoutAdult    ValidationError = "infants must travel with an adult"
)

// LegQuery is one provider call: a single origin/destination pair on a date.
type LegQuery struct {
	Origin        string     `json:"origin"`
	Destination   string     `json:"destination"`
	DepartureDate string     `json:"departure_date"`
	ReturnDate    string     `json:"return_date,omitempty"`
	Passengers    Passengers `json:"passengers"`
	TravelClass   string     `json:"travel_class"`
}

type Passengers struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Infants  int `json:"infants"`
}

func (p Passengers) Total() int {
	return p.Adults + p.Children + p.Infants
}
