package domain

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// AliasTable maps a lowercase alias (chassis or factory code, nickname) to a
// canonical name. Tables are built once at startup and never mutated.
type AliasTable map[string]string

// DefaultModelAliases maps chassis codes to the model names used in the dataset.
var DefaultModelAliases = AliasTable{
	"e46":       "3 Series",
	"e90":       "3 Series",
	"e91":       "3 Series",
	"e92":       "3 Series",
	"f30":       "3 Series",
	"e39":       "5 Series",
	"e60":       "5 Series",
	"f10":       "5 Series",
	"e87":       "1 Series",
	"w203":      "C-Class",
	"w204":      "C-Class",
	"w211":      "E-Class",
	"w212":      "E-Class",
	"mk4 golf":  "Golf",
	"mk5 golf":  "Golf",
	"b6 passat": "Passat",
	"8p a3":     "A3",
	"b7 a4":     "A4",
}

// MakeAliases maps nicknames to canonical make names.
var MakeAliases = AliasTable{
	"chevy":  "Chevrolet",
	"merc":   "Mercedes-Benz",
	"benz":   "Mercedes-Benz",
	"vw":     "Volkswagen",
	"alfa":   "Alfa Romeo",
	"landie": "Land Rover",
}

// Normalize returns a copy with lowercased, trimmed keys. Blank keys or values are dropped.
func (t AliasTable) Normalize() AliasTable {
	out := make(AliasTable, len(t))
	for k, v := range t {
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		out[k] = v
	}
	return out
}

// Merge returns a new table with other's entries layered over t.
func (t AliasTable) Merge(other AliasTable) AliasTable {
	out := make(AliasTable, len(t)+len(other))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Keys returns the alias keys in sorted order.
func (t AliasTable) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LoadAliasFile reads a YAML mapping of alias to canonical model and merges it
// over DefaultModelAliases. An empty path returns the defaults.
func LoadAliasFile(path string) (AliasTable, error) {
	base := DefaultModelAliases.Normalize()
	if path == "" {
		return base, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read alias file: %w", err)
	}
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse alias file %s: %w", path, err)
	}
	return base.Merge(AliasTable(raw).Normalize()), nil
}
