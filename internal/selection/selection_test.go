package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pepco/internal"
	"pepco/internal/classify"
)

func validSelections() Selections {
	return Selections{
		Department:  "Baby Boy",
		Product:     "T-shirt",
		WashingCode: "9",
		Price:       "12,99",
		Materials:   []internal.MaterialSelection{{Material: "Cotton", Percent: 100}},
	}
}

func TestValidateAccepts(t *testing.T) {
	v := NewValidator(nil)
	require.NoError(t, v.Validate(validSelections()))

	s := validSelections()
	s.Price = ""
	s.Materials = append(s.Materials, internal.MaterialSelection{Material: NoMaterial, Percent: 0})
	require.NoError(t, v.Validate(s))
}

func TestValidateRejects(t *testing.T) {
	v := NewValidator(classify.Default())
	tests := []struct {
		name   string
		mutate func(*Selections)
		field  string
	}{
		{"unknown washing code", func(s *Selections) { s.WashingCode = "42" }, "washingCode"},
		{"negative price", func(s *Selections) { s.Price = "-1" }, "price"},
		{"garbage price", func(s *Selections) { s.Price = "abc" }, "price"},
		{"percent over 100", func(s *Selections) { s.Materials[0].Percent = 101 }, "percent"},
		{"composition over 100", func(s *Selections) {
			s.Materials = []internal.MaterialSelection{{Material: "Cotton", Percent: 60}, {Material: "Elastane", Percent: 50}}
		}, "exceeds 100%"},
		{"missing product", func(s *Selections) { s.Product = "" }, "product"},
		{"blank extra order id", func(s *Selections) { s.ExtraOrderIDs = []string{""} }, "extraOrderIds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSelections()
			tt.mutate(&s)
			err := v.Validate(s)
			require.ErrorIs(t, err, ErrInvalidSelection)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestCottonFlag(t *testing.T) {
	s := validSelections()
	assert.Equal(t, "Y", s.CottonFlag())

	s.Materials = []internal.MaterialSelection{{Material: "cotton", Percent: 100}, {Material: NoMaterial, Percent: 0}}
	assert.Equal(t, "Y", s.CottonFlag())

	s.Materials = []internal.MaterialSelection{{Material: "Cotton", Percent: 95}, {Material: "Elastane", Percent: 5}}
	assert.Equal(t, "", s.CottonFlag())
	assert.Equal(t, 100, s.CompositionTotal())
}

func TestParsedPrice(t *testing.T) {
	s := validSelections()
	v, ok, err := s.ParsedPrice()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "12.99", v.String())

	s.Price = " "
	_, ok, err = s.ParsedPrice()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExtraOrderIDsJoined(t *testing.T) {
	s := Selections{ExtraOrderIDs: []string{"A1", " ", "B2"}}
	assert.Equal(t, "A1+B2", s.ExtraOrderIDsJoined())
}

func TestDefaults(t *testing.T) {
	tables := classify.Default()
	depts := []string{"Women", "baby boy", "Men"}
	assert.Equal(t, "baby boy", DefaultDepartment(tables, "Baby boys essentials", depts))
	assert.Equal(t, "Women", DefaultDepartment(tables, "Home", depts))
	assert.Equal(t, "", DefaultDepartment(tables, "Home", nil))

	products := []string{"Jacket", "T-Shirt"}
	assert.Equal(t, "T-Shirt", DefaultProduct(" t-shirt ", products))
	assert.Equal(t, "Jacket", DefaultProduct("Socks", products))
}

func TestParseMaterial(t *testing.T) {
	m, err := ParseMaterial("Cotton:95")
	require.NoError(t, err)
	assert.Equal(t, internal.MaterialSelection{Material: "Cotton", Percent: 95}, m)

	m, err = ParseMaterial("Cotton")
	require.NoError(t, err)
	assert.Equal(t, 100, m.Percent)

	_, err = ParseMaterial("Cotton:x")
	assert.ErrorIs(t, err, ErrInvalidSelection)
}
