// Package fundamentals supplies the slow-changing per-ticker attributes the
// scanner needs, currently paid-up capital (in Crores). Data comes from a
// YAML file maintained by hand; a missing entry is not an error, the scoring
// rules that need it simply don't apply.
package fundamentals

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Book is a read-only lookup of fundamental attributes.
type Book struct {
	capital map[string]float64
}

type fileFormat struct {
	PaidUpCapital map[string]float64 `yaml:"paid_up_capital"`
}

// Load reads the fundamentals file. A missing file yields an empty book so a
// scan can still run without the low-float bonus.
func Load(path string) (*Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Book{capital: map[string]float64{}}, nil
		}
		return nil, fmt.Errorf("read fundamentals: %w", err)
	}
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fundamentals: %w", err)
	}
	if f.PaidUpCapital == nil {
		f.PaidUpCapital = map[string]float64{}
	}
	return &Book{capital: f.PaidUpCapital}, nil
}

// Empty returns a book with no data.
func Empty() *Book {
	return &Book{capital: map[string]float64{}}
}

// PaidUpCapital returns the capital for a ticker, or nil when unknown.
func (b *Book) PaidUpCapital(ticker string) *float64 {
	if v, ok := b.capital[ticker]; ok {
		return &v
	}
	return nil
}

// Len reports how many tickers have data.
func (b *Book) Len() int { return len(b.capital) }
