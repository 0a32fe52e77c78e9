package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pharmacy_shop/internal/apperr"
	"github.com/Skotchmaster/pharmacy_shop/internal/models"
)

func product(id int, brand, generic, typ string, price float64) models.Product {
	return models.Product{ID: id, Brand: brand, Generic: generic, Type: typ, Price: price}
}

var products = []models.Product{
	product(1, "Aspirin", "Acetylsalicylic acid", "Pain Relief", 5.99),
	product(2, "Aspirin Forte", "Acetylsalicylic acid", "Pain Relief", 62),
	product(3, "Amoxil", "Amoxicillin", "Antibiotic", 50),
	product(4, "Lipitor", "Atorvastatin", "Cardiovascular", 100),
	product(5, "Humira", "Adalimumab", "Immunology", 100.01),
	product(6, "Bayer Low Dose", "ASPIRIN", "Cardiovascular", 49.99),
}

func ids(ps []models.Product) []int {
	out := make([]int, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestSearch(t *testing.T) {
	tests := []struct {
		term string
		want []int
	}{
		{term: "aspirin", want: []int{1, 2, 6}},
		{term: "  AMOX ", want: []int{3}},
		{term: "cardio", want: []int{4, 6}},
		{term: "", want: []int{1, 2, 3, 4, 5, 6}},
		{term: "nothing", want: []int{}},
	}
	for _, tc := range tests {
		t.Run(tc.term, func(t *testing.T) {
			assert.Equal(t, tc.want, ids(Search(products, tc.term)))
		})
	}
}

func TestFilterByCategory(t *testing.T) {
	assert.Equal(t, []int{4, 6}, ids(FilterByCategory(products, "Cardiovascular")))
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, ids(FilterByCategory(products, CategoryAll)))
	assert.Empty(t, FilterByCategory(products, "cardiovascular"), "category match is exact")
}

func TestFilterByPrice_Boundaries(t *testing.T) {
	assert.Equal(t, []int{1, 6}, ids(FilterByPrice(products, PriceUnder50)))
	assert.Equal(t, []int{2, 3, 4}, ids(FilterByPrice(products, Price50To100)))
	assert.Equal(t, []int{5}, ids(FilterByPrice(products, PriceOver100)))
	assert.Len(t, FilterByPrice(products, PriceAll), len(products))
}

func TestFilter_AllPredicatesAnded(t *testing.T) {
	f := Filter{Search: "aspirin", Category: CategoryAll, Price: PriceUnder50}
	got := f.Apply(products)

	assert.Equal(t, []int{1, 6}, ids(got))
	for _, p := range got {
		assert.True(t, Matches(p, "aspirin"))
		assert.Less(t, p.Price, 50.0)
	}

	f.Category = "Pain Relief"
	assert.Equal(t, []int{1}, ids(f.Apply(products)))
}

func TestFilter_DoesNotMutateSource(t *testing.T) {
	before := ids(products)
	_ = Filter{Search: "x", Price: PriceOver100}.Apply(products)
	assert.Equal(t, before, ids(products))
}

func TestParsePriceBucket(t *testing.T) {
	for in, want := range map[string]PriceBucket{
		"":         PriceAll,
		"all":      PriceAll,
		"UNDER50":  PriceUnder50,
		"50to100":  Price50To100,
		" over100": PriceOver100,
	} {
		got, err := ParsePriceBucket(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParsePriceBucket("cheap")
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCategories(t *testing.T) {
	assert.Equal(t,
		[]string{"all", "Pain Relief", "Antibiotic", "Cardiovascular", "Immunology"},
		Categories(products),
	)
	assert.Equal(t, []string{"all"}, Categories(nil))
}
