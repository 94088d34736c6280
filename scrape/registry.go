package scrape

import (
	"fmt"
	"sort"
)

// All selects every registered site or every category of a site.
const All = "all"

var retailers = map[string]Retailer{
	"amazon":          Amazon{},
	"newegg":          Newegg{},
	"canadacomputers": CanadaComputers{},
	"memoryexpress":   MemoryExpress{},
}

// Sites lists the registered site names, sorted.
func Sites() []string {
	names := make([]string, 0, len(retailers))
	for name := range retailers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the Retailer registered under site.
func Lookup(site string) (Retailer, error) {
	r, ok := retailers[site]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSite, site)
	}
	return r, nil
}

// Categories lists the category names a site supports.
func Categories(site string) ([]string, error) {
	r, err := Lookup(site)
	if err != nil {
		return nil, err
	}
	return r.Categories(), nil
}

// New builds one Driver per site/category pair selected by site and
// category. Either may be All: All sites expands to every registered
// retailer, All categories to every category the retailer supports.
// cfg.CategoryURL is filled in per driver; its other fields apply to all.
func New(site, category string, cfg Config, opts ...DriverOption) ([]*Driver, error) {
	var selected []Retailer
	if site == All {
		for _, name := range Sites() {
			selected = append(selected, retailers[name])
		}
	} else {
		r, err := Lookup(site)
		if err != nil {
			return nil, err
		}
		selected = []Retailer{r}
	}

	var drivers []*Driver
	for _, r := range selected {
		categories := []string{category}
		if category == All {
			categories = r.Categories()
		}
		for _, cat := range categories {
			url, ok := r.CategoryURL(cat)
			if !ok {
				// With All sites a named category may exist on only
				// some of them; skip the others silently.
				if site == All {
					continue
				}
				return nil, fmt.Errorf("%w: %q for site %q", ErrUnknownCategory, cat, r.Site())
			}
			dcfg := cfg
			dcfg.CategoryURL = url
			dcfg.Category = cat
			drivers = append(drivers, NewDriver(r, dcfg, opts...))
		}
	}
	if len(drivers) == 0 {
		return nil, fmt.Errorf("%w: %q matched no site", ErrUnknownCategory, category)
	}
	return drivers, nil
}
