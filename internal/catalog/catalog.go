// Package catalog provides the option lists behind the form dropdowns.
package catalog

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

const (
	SavingCategoriesFile = "seed_saving_categories.txt"
	ProductsFile         = "seed_products.txt"
)

var (
	DefaultSavingCategories = []string{"Tabungan Menikah", "Tabungan Rumah", "Tabungan Pendidikan", "Dana Darurat"}
	DefaultProducts         = []string{"Antam", "UBS", "Galeri 24"}
)

// Catalog is immutable after construction.
type Catalog struct {
	categories []string
	products   []string
}

func New(categories, products []string) *Catalog {
	return &Catalog{categories: dedupe(categories), products: dedupe(products)}
}

// NewFromDir reads the seed files in dir, falling back to the defaults for a
// file that is missing or empty.
func NewFromDir(dir string) *Catalog {
	cats := readLines(filepath.Join(dir, SavingCategoriesFile))
	if len(cats) == 0 {
		cats = DefaultSavingCategories
	}
	prods := readLines(filepath.Join(dir, ProductsFile))
	if len(prods) == 0 {
		prods = DefaultProducts
	}
	return New(cats, prods)
}

func (c *Catalog) SavingCategories() []string {
	return append([]string(nil), c.categories...)
}

func (c *Catalog) Products() []string {
	return append([]string(nil), c.products...)
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return dedupe(out)
}

// dedupe trims, drops blanks and repeats, and keeps first-seen order.
func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
