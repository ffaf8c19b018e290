package memory

import "real-estate-web/internal/core/domain"

// SeedProperties - демонстрационный каталог dev-сервера.
func SeedProperties() []domain.Property {
	return []domain.Property{
		{ID: 1, Title: "Lakeside Villa", Slug: "lakeside-villa", Location: "Naroch", Type: "House", Price: 245000, Bedrooms: 4, Featured: true, Images: []string{"/img/lakeside-villa-1.jpg"}},
		{ID: 2, Title: "Modern City Apartment", Slug: "modern-city-apartment", Location: "Minsk, Nemiga", Type: "Apartment", Price: 98000, Bedrooms: 2, Featured: true},
		{ID: 3, Title: "Plot near the Lake", Slug: "plot-near-the-lake", Location: "Braslav", Type: "Plot", Price: 18000},
		{ID: 4, Title: "Family Cottage", Slug: "family-cottage", Location: "Zhdanovichi", Type: "House", Price: 172000, Bedrooms: 3},
		{ID: 5, Title: "Studio by the Park", Slug: "studio-by-the-park", Location: "Minsk, Uruchye", Type: "Apartment", Price: 54000, Bedrooms: 1},
		{ID: 6, Title: "Forest Plot", Slug: "forest-plot", Location: "Ratomka", Type: "Plot", Price: 26000, Featured: true},
		{ID: 7, Title: "Penthouse with Terrace", Slug: "penthouse-with-terrace", Location: "Minsk, Center", Type: "Apartment", Price: 310000, Bedrooms: 3, Featured: true},
		{ID: 8, Title: "Riverside Townhouse", Slug: "riverside-townhouse", Location: "Grodno", Type: "House", Price: 139000, Bedrooms: 3},
		{ID: 9, Title: "Lake View Plot", Slug: "lake-view-plot", Location: "Zaslavl", Type: "Plot", Price: 41000},
		{ID: 10, Title: "Loft in Old Town", Slug: "loft-in-old-town", Location: "Vitebsk", Type: "Apartment", Price: 76000, Bedrooms: 2},
		{ID: 11, Title: "Country Estate", Slug: "country-estate", Location: "Lake Svityaz", Type: "House", Price: 420000, Bedrooms: 6, Featured: true},
		{ID: 12, Title: "Garden Plot", Slug: "garden-plot", Location: "Brest", Type: "Plot", Price: 9500},
	}
}
