package engine

import (
	"real-estate-web/internal/core/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var catalog = []domain.Property{
	{ID: 1, Title: "Lakeside Villa", Location: "Minsk", Type: "House", Price: 250000, Bedrooms: 4, Featured: true},
	{ID: 2, Title: "City Flat", Location: "Lake District", Type: "Apartment", Price: 90000, Bedrooms: 2},
	{ID: 3, Title: "Green Plot", Location: "Brest", Type: "Plot", Price: 30000},
	{ID: 4, Title: "Plot by the LAKE", Location: "Grodno", Type: "Plot", Price: 45000, Featured: true},
	{ID: 5, Title: "Straße Haus", Location: "Berlin", Type: "House", Price: 310000, Bedrooms: 5},
}

func ids(items []domain.Property) []int64 {
	out := make([]int64, len(items))
	for i, p := range items {
		out[i] = p.ID
	}
	return out
}

func textAndType(text, typ string) domain.AdvancedSearchRequest {
	req := domain.MatchAll()
	for _, key := range []string{"title", "location", "type"} {
		req.Append(domain.Or, domain.SearchCriteria{Key: key, Operation: domain.OpContains, Value: text})
	}
	if typ != "" {
		req.Append(domain.And, domain.SearchCriteria{Key: "type", Operation: domain.OpEquals, Value: typ})
	}
	return req
}

func TestFilter_EmptyRequestMatchesAll(t *testing.T) {
	got, err := Filter(catalog, domain.MatchAll(), PropertyField)
	require.NoError(t, err)
	assert.Len(t, got, len(catalog))
}

func TestFilter_TextIsCaseInsensitive(t *testing.T) {
	got, err := Filter(catalog, textAndType("lake", ""), PropertyField)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 4}, ids(got))
}

func TestFilter_LeftFoldAppliesTypeToWholeTextGroup(t *testing.T) {
	got, err := Filter(catalog, textAndType("lake", "Plot"), PropertyField)
	require.NoError(t, err)
	assert.Equal(t, []int64{4}, ids(got))
}

func TestFilter_CaseFolding(t *testing.T) {
	req := domain.MatchAll()
	req.Append(domain.And, domain.SearchCriteria{Key: "title", Operation: domain.OpContains, Value: "STRASSE"})
	got, err := Filter(catalog, req, PropertyField)
	require.NoError(t, err)
	assert.Equal(t, []int64{5}, ids(got))
}

func TestFilter_EmptinessAndNumbers(t *testing.T) {
	items := []domain.WishlistItem{
		{ID: 1, PropertyID: 10, Email: "a@example.com"},
		{ID: 2, PropertyID: 11, Email: ""},
	}

	req := domain.MatchAll()
	req.Append(domain.And, domain.SearchCriteria{Key: "email", Operation: domain.OpIsEmpty})
	got, err := Filter(items, req, WishlistField)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)

	req = domain.MatchAll()
	req.Append(domain.And, domain.SearchCriteria{Key: "propertyId", Operation: domain.OpEquals, Value: float64(10)})
	got, err = Filter(items, req, WishlistField)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)
}

func TestFilter_RejectsMalformedRequest(t *testing.T) {
	req := domain.AdvancedSearchRequest{
		CriteriaList: []domain.SearchCriteria{{Key: "title", Operation: domain.OpContains, Value: "x"}},
		Operations:   []domain.LogicalOperator{domain.And},
	}
	_, err := Filter(catalog, req, PropertyField)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSortProperties(t *testing.T) {
	tests := []struct {
		spec domain.SortSpec
		want []int64
	}{
		{domain.SortSpec{Field: "price", Direction: domain.Asc}, []int64{3, 4, 2, 1, 5}},
		{domain.SortSpec{Field: "price", Direction: domain.Desc}, []int64{5, 1, 2, 4, 3}},
		{domain.SortSpec{Field: "bedrooms", Direction: domain.Desc}, []int64{5, 1, 2, 3, 4}},
		{domain.SortSpec{Field: "featured", Direction: domain.Desc}, []int64{1, 4, 2, 3, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.spec.Field+"-"+string(tt.spec.Direction), func(t *testing.T) {
			items := append([]domain.Property(nil), catalog...)
			SortProperties(items, tt.spec)
			assert.Equal(t, tt.want, ids(items))
		})
	}
}

func TestPaginate(t *testing.T) {
	items := make([]int, 20)
	for i := range items {
		items[i] = i + 1
	}

	page := Paginate(items, 3, 9)
	assert.Equal(t, []int{19, 20}, page.Data)
	assert.Equal(t, 20, page.TotalRecords)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 3, page.CurrentPage)

	beyond := Paginate(items, 7, 9)
	assert.Empty(t, beyond.Data)
	assert.NotNil(t, beyond.Data)
	assert.Equal(t, 3, beyond.TotalPages)

	empty := Paginate([]int{}, 0, 0)
	assert.Equal(t, 1, empty.CurrentPage)
	assert.Equal(t, 0, empty.TotalPages)
	assert.NotNil(t, empty.Data)
}
