package engine

import (
	"errors"
	"fmt"

	"energymix/internal/models"
)

var ErrUnknownCountry = errors.New("unknown country")

// UnknownCountryError is returned by strict lookups on a classification miss.
type UnknownCountryError struct {
	Country string
}

func (e *UnknownCountryError) Error() string {
	return fmt.Sprintf("no classification for %q", e.Country)
}

func (e *UnknownCountryError) Is(target error) bool { return target == ErrUnknownCountry }

// Classification is the country -> category lookup table.
type Classification struct {
	byCountry map[string]models.Category
}

func emptyClassification() *Classification {
	return &Classification{byCountry: map[string]models.Category{}}
}

// NewClassification builds the lookup map. Repeated countries with
// conflicting categories are rejected; Unclassified entries are ignored.
func NewClassification(rows []models.CountryClassification) (*Classification, error) {
	c := &Classification{byCountry: make(map[string]models.Category, len(rows))}
	for _, r := range rows {
		if r.Category == models.Unclassified {
			continue
		}
		if prev, ok := c.byCountry[r.Country]; ok && prev != r.Category {
			return nil, fmt.Errorf("country %q classified as both %s and %s", r.Country, prev, r.Category)
		}
		c.byCountry[r.Country] = r.Category
	}
	return c, nil
}

// Len is the number of classified countries.
func (c *Classification) Len() int { return len(c.byCountry) }

// Lookup returns the category of country, or Unclassified on a miss.
func (c *Classification) Lookup(country string) models.Category {
	return c.byCountry[country]
}

// LookupStrict is Lookup that reports a miss as an UnknownCountryError.
func (c *Classification) LookupStrict(country string) (models.Category, error) {
	cat, ok := c.byCountry[country]
	if !ok {
		return models.Unclassified, &UnknownCountryError{Country: country}
	}
	return cat, nil
}

// Classified pairs a row with its joined category.
type Classified struct {
	Row
	Category models.Category
}

// WithCategory attaches the category of each row's country. Misses are
// tagged Unclassified rather than dropped.
func WithCategory(v View, c *Classification) []Classified {
	out := make([]Classified, v.Len())
	for k := range out {
		r := v.Row(k)
		out[k] = Classified{Row: r, Category: c.Lookup(r.Country())}
	}
	return out
}
