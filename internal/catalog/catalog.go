package catalog

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category groups catalog entries by how their label reads
type Category string

const (
	CategoryDate     Category = "date"
	CategoryTest     Category = "test"
	CategoryModule   Category = "module"
	CategoryPractice Category = "practice"
	CategoryOther    Category = "other"
)

// Filter narrows a catalog listing to one category
type Filter string

const (
	FilterAll      Filter = "all"
	FilterDate     Filter = "date"
	FilterTest     Filter = "test"
	FilterModule   Filter = "module"
	FilterPractice Filter = "practice"
)

// Filters lists the accepted filter values in display order
var Filters = []Filter{FilterAll, FilterDate, FilterTest, FilterModule, FilterPractice}

var datePrefix = regexp.MustCompile(`^\d{1,2}/\d{2}/\d{4}`)

// Entry is one answer set the server can grade against
type Entry struct {
	ID       int      `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Category Category `json:"category" yaml:"-"`
}

// Catalog is an immutable, id-ordered set of entries
type Catalog struct {
	entries []Entry
	byID    map[int]Entry
}

// Categorize derives the category of an entry from its label
func Categorize(name string) Category {
	lower := strings.ToLower(name)

	switch {
	case datePrefix.MatchString(name):
		return CategoryDate
	case strings.Contains(lower, "blok test"):
		return CategoryTest
	case strings.HasPrefix(name, "M") || strings.HasPrefix(name, "m"):
		return CategoryModule
	case strings.Contains(lower, "probniy"):
		return CategoryPractice
	default:
		return CategoryOther
	}
}

// ParseFilter converts a user-supplied filter name
func ParseFilter(s string) (Filter, error) {
	if s == "" {
		return FilterAll, nil
	}
	for _, f := range Filters {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported filter: %s (supported: all, date, test, module, practice)", s)
}

// New builds a catalog from raw entries, deriving categories and sorting by id
func New(entries []Entry) (*Catalog, error) {
	c := &Catalog{
		entries: make([]Entry, 0, len(entries)),
		byID:    make(map[int]Entry, len(entries)),
	}

	for _, e := range entries {
		if e.ID <= 0 {
			return nil, fmt.Errorf("catalog id must be positive, got %d", e.ID)
		}
		if _, dup := c.byID[e.ID]; dup {
			return nil, fmt.Errorf("duplicate catalog id %d", e.ID)
		}
		e.Category = Categorize(e.Name)
		c.entries = append(c.entries, e)
		c.byID[e.ID] = e
	}

	sort.Slice(c.entries, func(i, j int) bool {
		return c.entries[i].ID < c.entries[j].ID
	})

	return c, nil
}

// Load reads a YAML list of {id, name} pairs
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("catalog file %s has no entries", path)
	}

	return New(entries)
}

// Entries returns every entry sorted by ascending id
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Filter returns the entries matching f, sorted by ascending id
func (c *Catalog) Filter(f Filter) []Entry {
	if f == FilterAll || f == "" {
		return c.Entries()
	}

	var out []Entry
	for _, e := range c.entries {
		if string(e.Category) == string(f) {
			out = append(out, e)
		}
	}
	return out
}

// Lookup finds an entry by id
func (c *Catalog) Lookup(id int) (Entry, bool) {
	e, ok := c.byID[id]
	return e, ok
}

// Len reports the number of entries
func (c *Catalog) Len() int {
	return len(c.entries)
}
