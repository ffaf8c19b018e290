package domain

// WishlistItem - запись избранного в том виде, в котором ее отдает wishlistSearch.
type WishlistItem struct {
	ID            int64
	PropertyID    int64
	PropertyTitle string
	Email         string
	Property      *Property // может отсутствовать
}
