package controller

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"aqdash/internal/dataset"
)

const (
	defaultPollutant = dataset.ColPM25
	defaultFactor    = dataset.ColTemperature
)

// selectionQuery is the raw dashboard query string.
type selectionQuery struct {
	City      string `query:"city" validate:"max=128"`
	Start     string `query:"start"`
	End       string `query:"end"`
	Pollutant string `query:"pollutant" validate:"omitempty,oneof=pm25 pm10 no2 o3 so2 co"`
	Factor    string `query:"factor" validate:"omitempty,oneof=temperature humidity wind_speed"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("query")
	})
	return v
}

// selection is a validated query with defaults taken from the dataset.
type selection struct {
	City      string
	Start     dataset.Date
	End       dataset.Date
	Pollutant dataset.Column
	Factor    dataset.Column
}

func parseSelection(r *http.Request, ds dataset.Dataset) (selection, error) {
	q := r.URL.Query()
	raw := selectionQuery{
		City:      lastValue(q, "city"),
		Start:     lastValue(q, "start"),
		End:       lastValue(q, "end"),
		Pollutant: strings.ToLower(lastValue(q, "pollutant")),
		Factor:    strings.ToLower(lastValue(q, "factor")),
	}
	if err := validate.Struct(raw); err != nil {
		return selection{}, validationMessage(err)
	}

	sel := selection{
		City:      dataset.NormalizeCity(raw.City),
		Pollutant: dataset.Column(raw.Pollutant),
		Factor:    dataset.Column(raw.Factor),
	}
	if sel.City == "" {
		if cities := ds.Cities(); len(cities) > 0 {
			sel.City = cities[0]
		}
	}
	if sel.Pollutant == "" {
		sel.Pollutant = defaultPollutant
	}
	if sel.Factor == "" {
		sel.Factor = defaultFactor
	}

	minDate, maxDate, _ := ds.DateBounds()
	sel.Start, sel.End = minDate, maxDate
	var err error
	if raw.Start != "" {
		if sel.Start, err = dataset.ParseDate(raw.Start); err != nil {
			return selection{}, errors.New("invalid 'start' (expected YYYY-MM-DD)")
		}
	}
	if raw.End != "" {
		if sel.End, err = dataset.ParseDate(raw.End); err != nil {
			return selection{}, errors.New("invalid 'end' (expected YYYY-MM-DD)")
		}
	}
	return sel, nil
}

// lastValue returns the trimmed last value of key; a repeated parameter
// resolves to the one added latest.
func lastValue(q url.Values, key string) string {
	vs := q[key]
	if len(vs) == 0 {
		return ""
	}
	return strings.TrimSpace(vs[len(vs)-1])
}

func validationMessage(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "oneof":
		return fmt.Errorf("invalid '%s' (allowed: %s)", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "max":
		return fmt.Errorf("'%s' must be at most %s characters", fe.Field(), fe.Param())
	}
	return fmt.Errorf("invalid '%s'", fe.Field())
}

// Values encodes the selection back into a query string.
func (s selection) Values() url.Values {
	v := url.Values{}
	if s.City != "" {
		v.Set("city", s.City)
	}
	if !s.Start.IsZero() {
		v.Set("start", s.Start.String())
	}
	if !s.End.IsZero() {
		v.Set("end", s.End.String())
	}
	v.Set("pollutant", string(s.Pollutant))
	v.Set("factor", string(s.Factor))
	return v
}

func (s selection) filter(ds dataset.Dataset) dataset.Dataset {
	return dataset.Filter(ds, s.City, s.Start, s.End)
}
