package catalog

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	pkgerrors "github.com/angelmondragon/shopdesk-backend/pkg/errors"
)

const (
	maxShopName      = 50
	maxCategoryName  = 40
	maxProductName   = 80
	maxParameterName = 40
	maxParameterVal  = 100
)

// Feed is a validated supplier price list.
type Feed struct {
	Shop       string
	Categories []FeedCategory
	Goods      []FeedGood
}

type FeedCategory struct {
	ID   uint64
	Name string
}

type FeedGood struct {
	ID         uint64
	CategoryID uint64
	Name       string
	Price      int64
	PriceRRC   int64
	Quantity   int64
	Parameters []FeedParameter
}

type FeedParameter struct {
	Name  string
	Value string
}

type rawFeed struct {
	Shop       string        `yaml:"shop"`
	Categories []rawCategory `yaml:"categories"`
	Goods      []rawGood     `yaml:"goods"`
}

type rawCategory struct {
	ID   feedNumber `yaml:"id"`
	Name string     `yaml:"name"`
}

type rawGood struct {
	ID         feedNumber            `yaml:"id"`
	Category   feedNumber            `yaml:"category"`
	Name       string                `yaml:"name"`
	Price      feedNumber            `yaml:"price"`
	PriceRRC   feedNumber            `yaml:"price_rrc"`
	Quantity   feedNumber            `yaml:"quantity"`
	Parameters map[string]feedScalar `yaml:"parameters"`
}

// feedNumber keeps the raw scalar so every bad number in a feed can be
// reported at once instead of aborting the decode on the first one.
type feedNumber struct {
	raw     string
	present bool
	scalar  bool
}

func (n *feedNumber) UnmarshalYAML(node *yaml.Node) error {
	n.present = true
	n.scalar = node.Kind == yaml.ScalarNode && node.Tag != "!!null"
	n.raw = node.Value
	return nil
}

// integer decodes the value as a decimal and requires a whole, non-negative number.
func (n feedNumber) integer() (int64, error) {
	if !n.present || !n.scalar || strings.TrimSpace(n.raw) == "" {
		return 0, fmt.Errorf("is required")
	}
	d, err := decimal.NewFromString(strings.TrimSpace(n.raw))
	if err != nil {
		return 0, fmt.Errorf("must be a number")
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("must not be negative")
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, fmt.Errorf("must be a whole number")
	}
	if d.GreaterThan(maxFeedNumber) {
		return 0, fmt.Errorf("is out of range")
	}
	return d.IntPart(), nil
}

var maxFeedNumber = decimal.NewFromInt(math.MaxInt64)

type feedScalar struct {
	value  string
	scalar bool
}

func (s *feedScalar) UnmarshalYAML(node *yaml.Node) error {
	s.scalar = node.Kind == yaml.ScalarNode
	s.value = node.Value
	return nil
}

type fieldError struct {
	field string
	msg   string
}

func (e fieldError) Error() string {
	return e.field + " " + e.msg
}

// ParseFeed decodes and validates a YAML price list. Every problem found is
// reported in the VALIDATION_ERROR details keyed by field path.
func ParseFeed(data []byte) (*Feed, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "feed is empty")
	}

	var raw rawFeed
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeMalformedPayload, err, "feed is not valid yaml").
			WithDetails(map[string]any{"error": err.Error()})
	}

	feed, err := raw.validate()
	if err != nil {
		return nil, validationError(err)
	}
	return feed, nil
}

func (raw rawFeed) validate() (*Feed, error) {
	var errs error
	add := func(field, msg string) {
		errs = multierr.Append(errs, fieldError{field: field, msg: msg})
	}

	feed := &Feed{Shop: strings.TrimSpace(raw.Shop)}
	switch {
	case feed.Shop == "":
		add("shop", "is required")
	case utf8.RuneCountInString(feed.Shop) > maxShopName:
		add("shop", fmt.Sprintf("must be at most %d characters", maxShopName))
	}

	if raw.Categories == nil {
		add("categories", "is required")
	}
	categoryIDs := map[uint64]struct{}{}
	categoryNames := map[string]uint64{}
	for i, c := range raw.Categories {
		prefix := fmt.Sprintf("categories[%d]", i)
		id, err := positiveID(c.ID)
		if err != nil {
			add(prefix+".id", err.Error())
		}
		name := strings.TrimSpace(c.Name)
		switch {
		case name == "":
			add(prefix+".name", "is required")
		case utf8.RuneCountInString(name) > maxCategoryName:
			add(prefix+".name", fmt.Sprintf("must be at most %d characters", maxCategoryName))
		}
		if id == 0 || name == "" {
			continue
		}
		if _, dup := categoryIDs[id]; dup {
			add(prefix+".id", fmt.Sprintf("duplicate category id %d", id))
			continue
		}
		if other, dup := categoryNames[name]; dup && other != id {
			add(prefix+".name", fmt.Sprintf("name already used by category %d", other))
			continue
		}
		categoryIDs[id] = struct{}{}
		categoryNames[name] = id
		feed.Categories = append(feed.Categories, FeedCategory{ID: id, Name: name})
	}

	for i, g := range raw.Goods {
		prefix := fmt.Sprintf("goods[%d]", i)
		good := FeedGood{Name: strings.TrimSpace(g.Name)}
		var err error

		if good.ID, err = positiveID(g.ID); err != nil {
			add(prefix+".id", err.Error())
		}
		if good.CategoryID, err = positiveID(g.Category); err != nil {
			add(prefix+".category", err.Error())
		} else if _, ok := categoryIDs[good.CategoryID]; !ok {
			add(prefix+".category", fmt.Sprintf("category %d is not listed in the feed", good.CategoryID))
		}
		switch {
		case good.Name == "":
			add(prefix+".name", "is required")
		case utf8.RuneCountInString(good.Name) > maxProductName:
			add(prefix+".name", fmt.Sprintf("must be at most %d characters", maxProductName))
		}
		if good.Price, err = g.Price.integer(); err != nil {
			add(prefix+".price", err.Error())
		}
		if good.PriceRRC, err = g.PriceRRC.integer(); err != nil {
			add(prefix+".price_rrc", err.Error())
		}
		if good.Quantity, err = g.Quantity.integer(); err != nil {
			add(prefix+".quantity", err.Error())
		}

		names := make([]string, 0, len(g.Parameters))
		for name := range g.Parameters {
			names = append(names, name)
		}
		sort.Strings(names)
		usedNames := map[string]string{}
		for _, name := range names {
			value := g.Parameters[name]
			field := fmt.Sprintf("%s.parameters.%s", prefix, name)
			trimmed := strings.TrimSpace(name)
			switch {
			case trimmed == "":
				add(field, "parameter name is required")
				continue
			case utf8.RuneCountInString(trimmed) > maxParameterName:
				add(field, fmt.Sprintf("parameter name must be at most %d characters", maxParameterName))
				continue
			case !value.scalar:
				add(field, "value must be a scalar")
				continue
			case utf8.RuneCountInString(value.value) > maxParameterVal:
				add(field, fmt.Sprintf("value must be at most %d characters", maxParameterVal))
				continue
			}
			if first, dup := usedNames[trimmed]; dup {
				add(field, fmt.Sprintf("duplicates parameter %q", first))
				continue
			}
			usedNames[trimmed] = name
			good.Parameters = append(good.Parameters, FeedParameter{Name: trimmed, Value: value.value})
		}

		feed.Goods = append(feed.Goods, good)
	}

	if errs != nil {
		return nil, errs
	}
	return feed, nil
}

func positiveID(n feedNumber) (uint64, error) {
	v, err := n.integer()
	if err != nil {
		return 0, err
	}
	if v == 0 {
		return 0, fmt.Errorf("must be positive")
	}
	return uint64(v), nil
}

func validationError(err error) error {
	details := map[string][]string{}
	for _, e := range multierr.Errors(err) {
		if fe, ok := e.(fieldError); ok {
			details[fe.field] = append(details[fe.field], fe.msg)
			continue
		}
		details["feed"] = append(details["feed"], e.Error())
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid catalog feed").WithDetails(details)
}

// ParameterNames returns the distinct parameter names used by the feed.
func (f *Feed) ParameterNames() []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, g := range f.Goods {
		for _, p := range g.Parameters {
			if _, ok := seen[p.Name]; ok {
				continue
			}
			seen[p.Name] = struct{}{}
			out = append(out, p.Name)
		}
	}
	sort.Strings(out)
	return out
}
