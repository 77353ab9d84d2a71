package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// EnergyRecord is one country-year observation.
type EnergyRecord struct {
	Country string
	Year    int
	ISOCode string
	Values  [MetricCount]NullFloat
}

// Set stores a present value for m.
func (r *EnergyRecord) Set(m Metric, v float64) {
	r.Values[m] = Float(v)
}

// Get returns the value of m and whether it is present.
func (r *EnergyRecord) Get(m Metric) (float64, bool) {
	v := r.Values[m]
	return v.Float64, v.Valid
}

// Category is the static development classification of a country.
// The zero value is Unclassified, which never matches either real branch.
type Category uint8

const (
	Unclassified Category = iota
	Developed
	Developing
)

// Categories lists the classified categories in partition order.
var Categories = []Category{Developed, Developing}

var ErrInvalidCategory = errors.New("invalid category")

func (c Category) String() string {
	switch c {
	case Developed:
		return "Developed"
	case Developing:
		return "Developing"
	default:
		return "Unclassified"
	}
}

// ParseCategory accepts the two classified labels, case-insensitively.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "developed":
		return Developed, nil
	case "developing":
		return Developing, nil
	}
	return Unclassified, fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// CountryClassification maps a country to its category.
type CountryClassification struct {
	Country  string   `json:"country"`
	Category Category `json:"category"`
}

// NullFloat is a float that may be absent. Absent is distinct from zero.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Float returns a present NullFloat.
func Float(v float64) NullFloat {
	return NullFloat{Float64: v, Valid: true}
}

var ErrNonFinite = errors.New("non-finite value")

func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	if math.IsInf(n.Float64, 0) || math.IsNaN(n.Float64) {
		return nil, fmt.Errorf("%w: %v", ErrNonFinite, n.Float64)
	}
	return []byte(strconv.FormatFloat(n.Float64, 'f', -1, 64)), nil
}

func (n *NullFloat) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = NullFloat{}
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*n = Float(v)
	return nil
}

// --- engine outputs ---

type YearValue struct {
	Year  int       `json:"year"`
	Value NullFloat `json:"value"`
}

type YearValues struct {
	Year   int         `json:"year"`
	Values []NullFloat `json:"values"`
}

type CategoryYearValue struct {
	Year     int       `json:"year"`
	Category Category  `json:"category"`
	Value    NullFloat `json:"value"`
	Count    int       `json:"count"`
}

type Ranked struct {
	Country  string   `json:"country"`
	Category Category `json:"category"`
	Year     int      `json:"year"`
	Value    float64  `json:"value"`
}

type Growth struct {
	Country   string    `json:"country"`
	Category  Category  `json:"category"`
	FirstYear int       `json:"first_year"`
	LastYear  int       `json:"last_year"`
	First     NullFloat `json:"first"`
	Last      NullFloat `json:"last"`
	Delta     NullFloat `json:"delta"`
}
