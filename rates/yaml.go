package rates

import (
	"fmt"
	"io"
	"os"

	"github.com/robinvdvleuten/moneybook/date"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// file is the YAML layout of a rates file:
//
//	rates:
//	  - date: 2008-01-01
//	    from: EUR
//	    to: USD
//	    rate: "1.4729"
type file struct {
	Rates []struct {
		Date string `yaml:"date"`
		From string `yaml:"from"`
		To   string `yaml:"to"`
		Rate string `yaml:"rate"`
	} `yaml:"rates"`
}

// LoadYAML reads a rates table from YAML.
func LoadYAML(r io.Reader) (*Table, error) {
	var f file
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode rates: %w", err)
	}

	t := NewTable()
	for i, row := range f.Rates {
		on, err := date.Parse(row.Date)
		if err != nil {
			return nil, fmt.Errorf("rates[%d]: %w", i, err)
		}
		rate, err := decimal.NewFromString(row.Rate)
		if err != nil {
			return nil, fmt.Errorf("rates[%d]: invalid rate %q: %w", i, row.Rate, err)
		}
		if row.From == "" || row.To == "" {
			return nil, fmt.Errorf("rates[%d]: missing currency", i)
		}
		t.Set(row.From, row.To, on, rate)
	}
	return t, nil
}

// LoadFile reads a rates table from a YAML file.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return LoadYAML(f)
}
