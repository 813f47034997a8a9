// Package selection holds the operator choices that drive augmentation of
// extracted records, and their validation.
package selection

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"pepco/internal"
	"pepco/internal/classify"
	"pepco/internal/pricing"
)

// NoMaterial is the placeholder of an unused composition row.
const NoMaterial = "—"

var ErrInvalidSelection = errors.New("invalid selection")

type Selections struct {
	Department    string                       `json:"department" validate:"required"`
	Product       string                       `json:"product" validate:"required"`
	WashingCode   string                       `json:"washingCode" validate:"required,washing_code"`
	Price         string                       `json:"price" validate:"omitempty,price"`
	Materials     []internal.MaterialSelection `json:"materials" validate:"max=5,dive"`
	ExtraOrderIDs []string                     `json:"extraOrderIds" validate:"dive,required"`
	Colour        string                       `json:"colour"`
}

// ValidMaterials drops placeholder rows and rows at 0%.
func (s Selections) ValidMaterials() []internal.MaterialSelection {
	out := make([]internal.MaterialSelection, 0, len(s.Materials))
	for _, m := range s.Materials {
		name := strings.TrimSpace(m.Material)
		if name == "" || name == NoMaterial || m.Percent <= 0 {
			continue
		}
		out = append(out, internal.MaterialSelection{Material: name, Percent: m.Percent})
	}
	return out
}

func (s Selections) CompositionTotal() int {
	total := 0
	for _, m := range s.ValidMaterials() {
		total += m.Percent
	}
	return total
}

// CottonFlag is "Y" when the composition is exactly 100% cotton.
func (s Selections) CottonFlag() string {
	valid := s.ValidMaterials()
	if len(valid) == 1 && strings.EqualFold(valid[0].Material, "cotton") && valid[0].Percent == 100 {
		return "Y"
	}
	return ""
}

// ParsedPrice returns the source-currency price, or ok=false when none was entered.
func (s Selections) ParsedPrice() (decimal.Decimal, bool, error) {
	if strings.TrimSpace(s.Price) == "" {
		return decimal.Decimal{}, false, nil
	}
	v, err := pricing.ParsePrice(s.Price)
	if err != nil {
		return decimal.Decimal{}, false, err
	}
	return v, true, nil
}

// ExtraOrderIDsJoined joins companion order ids with "+".
func (s Selections) ExtraOrderIDsJoined() string {
	ids := make([]string, 0, len(s.ExtraOrderIDs))
	for _, id := range s.ExtraOrderIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return strings.Join(ids, "+")
}

type Validator struct {
	v      *validator.Validate
	tables *classify.Tables
}

func NewValidator(tables *classify.Tables) *Validator {
	if tables == nil {
		tables = classify.Default()
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("washing_code", func(fl validator.FieldLevel) bool {
		_, ok := tables.WashingLabel(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("price", func(fl validator.FieldLevel) bool {
		_, err := pricing.ParsePrice(fl.Field().String())
		return err == nil
	})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		s := sl.Current().Interface().(Selections)
		if s.CompositionTotal() > 100 {
			sl.ReportError(s.Materials, "materials", "Materials", "composition_total", "")
		}
	}, Selections{})
	return &Validator{v: v, tables: tables}
}

func (v *Validator) Validate(s Selections) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, e.Namespace()+" "+friendlyMessage(e))
	}
	sort.Strings(msgs)
	return fmt.Errorf("%w: %s", ErrInvalidSelection, strings.Join(msgs, "; "))
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "washing_code":
		return "is not a known washing code"
	case "price":
		return "must be a non-negative number like 12.50 or 12,50"
	case "composition_total":
		return "exceeds 100%"
	case "max":
		return "must not exceed " + e.Param() + " rows"
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	default:
		return "is invalid"
	}
}

// DefaultDepartment picks the department matching the classification, or
// the first one offered.
func DefaultDepartment(tables *classify.Tables, itemClass string, departments []string) string {
	if len(departments) == 0 {
		return ""
	}
	if label := tables.DepartmentLabel(itemClass); label != "" {
		for _, d := range departments {
			if strings.EqualFold(strings.TrimSpace(d), label) {
				return d
			}
		}
	}
	return departments[0]
}

// DefaultProduct picks the product whose name equals the document item
// name, ignoring case, or the first one offered.
func DefaultProduct(itemName string, products []string) string {
	if len(products) == 0 {
		return ""
	}
	itemName = strings.TrimSpace(itemName)
	if itemName != "" {
		for _, p := range products {
			if strings.EqualFold(strings.TrimSpace(p), itemName) {
				return p
			}
		}
	}
	return products[0]
}

// ParseMaterial reads a "Name:Pct" flag value.
func ParseMaterial(raw string) (internal.MaterialSelection, error) {
	name, pct, ok := strings.Cut(raw, ":")
	if !ok {
		return internal.MaterialSelection{Material: strings.TrimSpace(raw), Percent: 100}, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(pct))
	if err != nil {
		return internal.MaterialSelection{}, fmt.Errorf("%w: material %q", ErrInvalidSelection, raw)
	}
	return internal.MaterialSelection{Material: strings.TrimSpace(name), Percent: n}, nil
}
