// Package catalog indexes the fixed, read-only collection of case descriptors.
package catalog

import (
	_ "embed"

	"gopkg.in/yaml.v3"

	"noircase/internal/errors"
	"noircase/internal/models"
)

//go:embed cases.yaml
var embeddedCases []byte

var ErrUnknownCase = errors.NewSentinel("unknown case")

type Catalog struct {
	cases []models.Case
	byID  map[string]int
}

// New parses the embedded case files. The first case in the file is the
// default case.
func New() (*Catalog, error) {
	return Parse(embeddedCases)
}

// Parse builds a catalog from raw YAML. Split out from New for tests.
func Parse(raw []byte) (*Catalog, error) {
	var doc struct {
		Cases []models.Case `yaml:"cases"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "unmarshal case catalog")
	}
	if len(doc.Cases) == 0 {
		return nil, errors.New("case catalog is empty")
	}

	byID := make(map[string]int, len(doc.Cases))
	for i, c := range doc.Cases {
		if c.ID == "" {
			return nil, errors.New("case without id in catalog")
		}
		if _, exists := byID[c.ID]; exists {
			return nil, errors.New("duplicate case id in catalog")
		}
		byID[c.ID] = i
	}

	return &Catalog{cases: doc.Cases, byID: byID}, nil
}

// Get returns the case with the given ID or ErrUnknownCase.
func (c *Catalog) Get(id string) (models.Case, error) {
	i, ok := c.byID[id]
	if !ok {
		return models.Case{}, ErrUnknownCase
	}
	return c.cases[i], nil
}

// Default returns the case new sessions open with.
func (c *Catalog) Default() models.Case {
	return c.cases[0]
}

// All returns the cases in catalog order.
func (c *Catalog) All() []models.Case {
	out := make([]models.Case, len(c.cases))
	copy(out, c.cases)
	return out
}
