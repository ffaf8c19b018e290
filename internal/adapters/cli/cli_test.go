package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"real-estate-web/internal/core/domain"
	"real-estate-web/internal/core/search"
	"real-estate-web/internal/core/wishlist"
	"strconv"
	"strings"
	"testing"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearch struct {
	calls []string
	snap  search.Snapshot
}

func (f *fakeSearch) SetQuery(text string)    { f.calls = append(f.calls, "SetQuery:"+text) }
func (f *fakeSearch) SubmitQuery(text string) { f.calls = append(f.calls, "SubmitQuery:"+text) }
func (f *fakeSearch) SetType(t string)        { f.calls = append(f.calls, "SetType:"+t) }
func (f *fakeSearch) SetSort(k domain.SortKey) {
	f.calls = append(f.calls, "SetSort:"+string(k))
}
func (f *fakeSearch) NextPage()              { f.calls = append(f.calls, "NextPage") }
func (f *fakeSearch) PrevPage()              { f.calls = append(f.calls, "PrevPage") }
func (f *fakeSearch) GoToPage(n int)         { f.calls = append(f.calls, "GoToPage:"+strconv.Itoa(n)) }
func (f *fakeSearch) Refresh()               { f.calls = append(f.calls, "Refresh") }
func (f *fakeSearch) State() search.Snapshot { return f.snap }
func (f *fakeSearch) Wait()                  {}

type fakeWishlist struct {
	entries   map[int64]bool
	toggleErr error
	loadErr   error
	loads     int
	loaded    bool
	toggled   []string
	subs      []func(wishlist.Change)
}

func (f *fakeWishlist) IsInWishlist(id int64) bool { return f.entries[id] }
func (f *fakeWishlist) Loading() bool              { return false }
func (f *fakeWishlist) Len() int                   { return len(f.entries) }
func (f *fakeWishlist) Load(ctx context.Context) error {
	f.loads++
	if f.loadErr != nil {
		return f.loadErr
	}
	f.loaded = true
	f.emit(wishlist.Change{Kind: wishlist.ChangeLoaded})
	return nil
}
func (f *fakeWishlist) EnsureLoaded(ctx context.Context) error {
	if f.loaded {
		return nil
	}
	return f.Load(ctx)
}
func (f *fakeWishlist) Toggle(ctx context.Context, id int64, title string) (bool, error) {
	f.toggled = append(f.toggled, title)
	if f.toggleErr != nil {
		return f.entries[id], f.toggleErr
	}
	f.entries[id] = !f.entries[id]
	f.emit(wishlist.Change{Kind: wishlist.ChangeToggled, PropertyID: id, Present: f.entries[id]})
	return f.entries[id], nil
}
func (f *fakeWishlist) Subscribe(fn func(wishlist.Change)) func() {
	f.subs = append(f.subs, fn)
	return func() {}
}
func (f *fakeWishlist) emit(ch wishlist.Change) {
	for _, fn := range f.subs {
		fn(ch)
	}
}

// fakeWishlistAPI - бэкенд для настоящего wishlist.Store.
type fakeWishlistAPI struct {
	items   []domain.WishlistItem
	removed []int64
}

func (f *fakeWishlistAPI) AddToWishlist(ctx context.Context, s *domain.Session, id int64, title string) error {
	return nil
}

func (f *fakeWishlistAPI) RemoveFromWishlist(ctx context.Context, s *domain.Session, id int64) error {
	f.removed = append(f.removed, id)
	return nil
}

func (f *fakeWishlistAPI) SearchWishlist(ctx context.Context, s *domain.Session, req domain.AdvancedSearchRequest, page, size int) (*domain.PaginatedResult[domain.WishlistItem], error) {
	return &domain.PaginatedResult[domain.WishlistItem]{Data: f.items, TotalRecords: len(f.items), TotalPages: 1, CurrentPage: page}, nil
}

type fakeSessions struct{ session *domain.Session }

func (f *fakeSessions) Current() *domain.Session { return f.session }

type fakeAuth struct {
	sessions  *fakeSessions
	requested string
	verified  [2]string
	verifyErr error
	signedOut bool
}

func (f *fakeAuth) RequestCode(ctx context.Context, mobile string) error {
	f.requested = mobile
	return nil
}

func (f *fakeAuth) VerifyCode(ctx context.Context, mobile, code string) (*domain.Session, error) {
	f.verified = [2]string{mobile, code}
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	f.sessions.session = &domain.Session{Token: "t", User: domain.User{Mobile: mobile, Name: "Anna"}}
	return f.sessions.session, nil
}

func (f *fakeAuth) SignOut(ctx context.Context) {
	f.signedOut = true
	f.sessions.session = nil
}

type fakeDetails struct{}

func (fakeDetails) Execute(ctx context.Context, slug string) (*domain.Property, error) {
	if slug != "lake-view-plot" {
		return nil, domain.ErrNotFound
	}
	return &domain.Property{ID: 3, Title: "Lake View Plot", Slug: slug, Type: "Plot", Price: 45000, Images: []string{"a.jpg"}}, nil
}

type fakeInquiries struct{ got domain.Inquiry }

func (f *fakeInquiries) Execute(ctx context.Context, inquiry domain.Inquiry) (*domain.InquiryReceipt, error) {
	f.got = inquiry
	return &domain.InquiryReceipt{ID: "inq-1", Status: "received"}, nil
}

type fakeBackend struct{ state gobreaker.State }

func (f fakeBackend) BreakerState() gobreaker.State { return f.state }

type fakeAccount struct{ calls int }

func (f *fakeAccount) Execute(ctx context.Context) error {
	f.calls++
	return nil
}

type harness struct {
	cli       *CLI
	out       *bytes.Buffer
	search    *fakeSearch
	deps      Deps
	wishlist  *fakeWishlist
	sessions  *fakeSessions
	auth      *fakeAuth
	inquiries *fakeInquiries
	account   *fakeAccount
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		out: &bytes.Buffer{},
		search: &fakeSearch{snap: search.Snapshot{
			State:  domain.SearchPageState{TypeFilter: domain.TypeAll, SortKey: domain.SortFeatured, Page: 1, PageSize: 9},
			Status: search.StatusLoaded,
			Items: []domain.Property{
				{ID: 3, Title: "Lake View Plot", Type: "Plot", Location: "Minsk region", Price: 45000},
				{ID: 1, Title: "Modern Family House", Type: "House", Location: "Minsk", Price: 125000, Bedrooms: 4, Featured: true},
			},
			TotalRecords: 2,
			TotalPages:   1,
		}},
		wishlist:  &fakeWishlist{entries: map[int64]bool{}},
		sessions:  &fakeSessions{},
		inquiries: &fakeInquiries{},
		account:   &fakeAccount{},
	}
	h.auth = &fakeAuth{sessions: h.sessions}
	h.deps = Deps{
		Search:    h.search,
		Wishlist:  h.wishlist,
		Auth:      h.auth,
		Sessions:  h.sessions,
		Details:   fakeDetails{},
		Inquiries: h.inquiries,
		Account:   h.account,
		Backend:   fakeBackend{state: gobreaker.StateOpen},
	}
	h.cli = NewCLI(context.Background(), h.deps, nil, h.out)
	return h
}

// withWishlist пересобирает CLI поверх другого хранилища избранного.
func (h *harness) withWishlist(w Wishlist) {
	h.deps.Wishlist = w
	h.cli = NewCLI(context.Background(), h.deps, nil, h.out)
}

func (h *harness) run(line string) error {
	return h.cli.ExecuteCommand(h.cli.ParseArgs(line))
}

func TestParseArgs(t *testing.T) {
	c := &CLI{}
	tests := []struct {
		in   string
		want []string
	}{
		{"search lake", []string{"search", "lake"}},
		{"  sort   price-high ", []string{"sort", "price-high"}},
		{`inquiry 3 "Is it free?" Anna`, []string{"inquiry", "3", "Is it free?", "Anna"}},
		{`search ""`, []string{"search", ""}},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, c.ParseArgs(tt.in))
		})
	}
}

func TestCLI_SearchCommands(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("search lake view"))
	require.NoError(t, h.run("/plot"))
	require.NoError(t, h.run("type apartment"))
	require.NoError(t, h.run("type all"))
	require.NoError(t, h.run("sort price-high"))
	require.NoError(t, h.run("next"))
	require.NoError(t, h.run("prev"))
	require.NoError(t, h.run("page 2"))
	require.NoError(t, h.run("refresh"))

	assert.Equal(t, []string{
		"SubmitQuery:lake view",
		"SubmitQuery:plot",
		"SetType:Apartment",
		"SetType:All",
		"SetSort:price-high",
		"NextPage",
		"PrevPage",
		"GoToPage:2",
		"Refresh",
	}, h.search.calls)
}

func TestCLI_InvalidArguments(t *testing.T) {
	h := newHarness(t)

	assert.ErrorIs(t, h.run("sort cheapest"), domain.ErrInvalidInput)
	assert.ErrorIs(t, h.run("page two"), domain.ErrInvalidInput)
	assert.ErrorIs(t, h.run("type"), domain.ErrInvalidInput)
	assert.ErrorIs(t, h.run("like abc"), domain.ErrInvalidInput)
	assert.Error(t, h.run("teleport"))
	assert.Empty(t, h.search.calls)
}

func TestCLI_RenderPage(t *testing.T) {
	h := newHarness(t)
	h.sessions.session = &domain.Session{User: domain.User{Email: "anna@example.com"}}
	h.wishlist.entries[3] = true

	require.NoError(t, h.run("show"))
	out := h.out.String()

	assert.Contains(t, out, "♥ #3 Lake View Plot")
	assert.Contains(t, out, "♡ #1 Modern Family House [featured]")
	assert.Contains(t, out, "$125,000")
	assert.Contains(t, out, "4 beds")
	assert.Contains(t, out, "Page 1/1 · 2 result(s) · type: All · sort: featured")
}

func TestCLI_RenderFailureKeepsItems(t *testing.T) {
	h := newHarness(t)
	h.search.snap.Status = search.StatusFailed
	h.search.snap.Err = domain.ErrBackend

	require.NoError(t, h.run("show"))
	out := h.out.String()
	assert.Contains(t, out, "unavailable")
	assert.Contains(t, out, "Showing previous results.")
	assert.Contains(t, out, "Lake View Plot")
}

func TestCLI_RenderEmptyPage(t *testing.T) {
	h := newHarness(t)
	h.search.snap.Items = nil
	h.search.snap.TotalPages = 0

	require.NoError(t, h.run("show"))
	assert.Contains(t, h.out.String(), "No properties match your search.")
	assert.Contains(t, h.out.String(), "Page 1/1")
}

func TestCLI_LikeTogglesPropertyFromCurrentPage(t *testing.T) {
	h := newHarness(t)
	h.sessions.session = &domain.Session{User: domain.User{Email: "anna@example.com"}}

	require.NoError(t, h.run("like 3"))
	assert.True(t, h.wishlist.entries[3])
	assert.Equal(t, []string{"Lake View Plot"}, h.wishlist.toggled)
	assert.Contains(t, h.out.String(), "added to wishlist")

	require.NoError(t, h.run("like 3"))
	assert.False(t, h.wishlist.entries[3])
	assert.Contains(t, h.out.String(), "removed from wishlist")

	assert.ErrorIs(t, h.run("like 42"), domain.ErrNotFound)
}

func TestCLI_WishlistCommand(t *testing.T) {
	h := newHarness(t)
	h.sessions.session = &domain.Session{User: domain.User{Email: "anna@example.com"}}
	h.wishlist.entries[3] = true

	require.NoError(t, h.run("wishlist"))
	require.NoError(t, h.run("wishlist"))
	assert.Equal(t, 1, h.wishlist.loads)
	assert.Contains(t, h.out.String(), "Wishlist: 1 property.")

	h.out.Reset()
	require.NoError(t, h.run("wishlist sync"))
	assert.Equal(t, 2, h.wishlist.loads)
	assert.Equal(t, 1, strings.Count(h.out.String(), "Page 1/1"))

	assert.ErrorIs(t, h.run("wishlist all"), domain.ErrInvalidInput)
}

func TestCLI_WishlistChangesRedrawShownPage(t *testing.T) {
	h := newHarness(t)
	h.sessions.session = &domain.Session{User: domain.User{Email: "anna@example.com"}}
	api := &fakeWishlistAPI{items: []domain.WishlistItem{{PropertyID: 3}}}
	store := wishlist.NewStore(api, h.sessions, nil)
	h.withWishlist(store)

	// до первого показа страницы загрузка ничего не печатает
	require.NoError(t, store.EnsureLoaded(context.Background()))
	assert.Empty(t, h.out.String())

	require.NoError(t, h.run("show"))
	assert.Contains(t, h.out.String(), heartOn+" #3 Lake View Plot")

	h.out.Reset()
	require.NoError(t, h.run("like 3"))
	assert.Equal(t, []int64{3}, api.removed)
	assert.Contains(t, h.out.String(), heartOff+" Lake View Plot removed from wishlist.")
	assert.Contains(t, h.out.String(), heartOff+" #3 Lake View Plot")
	assert.Equal(t, 1, strings.Count(h.out.String(), "Page 1/1"))

	// изменение вне команды перерисовывает страницу сразу
	h.out.Reset()
	require.NoError(t, store.Load(context.Background()))
	assert.Contains(t, h.out.String(), heartOn+" #3 Lake View Plot")

	h.out.Reset()
	store.Reset()
	assert.Contains(t, h.out.String(), "Wishlist cleared on this device.")
	assert.Contains(t, h.out.String(), heartOff+" #3 Lake View Plot")

	h.cli.Close()
	h.out.Reset()
	require.NoError(t, store.Load(context.Background()))
	assert.Empty(t, h.out.String())
}

func TestCLI_BusyWishlistMarksHearts(t *testing.T) {
	h := newHarness(t)
	h.sessions.session = &domain.Session{User: domain.User{Email: "anna@example.com"}}
	h.wishlist.entries[3] = true

	h.cli.OnWishlistChange(wishlist.Change{Kind: wishlist.ChangeBusy, Loading: true})
	assert.Equal(t, heartBusy, h.cli.heart(3))

	h.cli.OnWishlistChange(wishlist.Change{Kind: wishlist.ChangeBusy, Loading: false})
	assert.Equal(t, heartOn, h.cli.heart(3))
}

func TestCLI_LikeErrors(t *testing.T) {
	h := newHarness(t)

	h.wishlist.toggleErr = domain.ErrAuthRequired
	err := h.run("like 3")
	require.ErrorIs(t, err, domain.ErrAuthRequired)
	assert.Contains(t, FormatError(err), "Sign in first")

	h.wishlist.toggleErr = wishlist.ErrToggleInProgress
	require.NoError(t, h.run("like 3"))
	assert.Contains(t, h.out.String(), "still running")
}

func TestCLI_LoginFlow(t *testing.T) {
	h := newHarness(t)

	assert.ErrorIs(t, h.run("otp 1234"), domain.ErrInvalidInput)

	require.NoError(t, h.run("login +375291234567"))
	assert.Equal(t, "+375291234567", h.auth.requested)

	require.NoError(t, h.run("otp 1234"))
	assert.Equal(t, [2]string{"+375291234567", "1234"}, h.auth.verified)
	assert.Equal(t, 1, h.wishlist.loads)
	assert.Contains(t, h.out.String(), "Signed in as Anna.")
	assert.Equal(t, "estate (+375291234567) > ", h.cli.Prompt)

	require.NoError(t, h.run("logout"))
	assert.True(t, h.auth.signedOut)
	assert.Equal(t, "estate > ", h.cli.Prompt)
}

func TestCLI_OTPRejected(t *testing.T) {
	h := newHarness(t)
	h.auth.verifyErr = domain.ErrUnauthorized

	require.NoError(t, h.run("login +375291234567"))
	assert.ErrorIs(t, h.run("otp 0000"), domain.ErrUnauthorized)
	assert.Equal(t, 0, h.wishlist.loads)
	assert.Nil(t, h.sessions.session)
}

func TestCLI_Details(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("details lake-view-plot"))
	assert.Contains(t, h.out.String(), "slug: lake-view-plot")
	assert.Contains(t, h.out.String(), "image 1: a.jpg")

	assert.ErrorIs(t, h.run("details nowhere"), domain.ErrNotFound)
}

func TestCLI_Inquiry(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run(`inquiry 3 "Is the plot still available?" Anna anna@example.com`))
	assert.Equal(t, domain.Inquiry{
		PropertyID: 3,
		Message:    "Is the plot still available?",
		Name:       "Anna",
		Email:      "anna@example.com",
	}, h.inquiries.got)
	assert.Contains(t, h.out.String(), "Inquiry inq-1 received")

	require.NoError(t, h.run(`inquiry 0 "Call me back please" Anna +375291234567`))
	assert.Equal(t, "+375291234567", h.inquiries.got.Mobile)
	assert.Empty(t, h.inquiries.got.Email)
}

func TestCLI_DeleteAccountNeedsConfirmation(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("delete-account"))
	assert.Equal(t, 0, h.account.calls)

	require.NoError(t, h.run("delete-account --yes"))
	assert.Equal(t, 1, h.account.calls)
}

func TestCLI_Exit(t *testing.T) {
	h := newHarness(t)

	err := h.run("exit")
	assert.ErrorIs(t, err, ErrExit)
	assert.True(t, errors.Is(err, io.EOF))
}

func TestCLI_Help(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("help"))
	assert.Contains(t, h.out.String(), "  like\n")

	h.out.Reset()
	require.NoError(t, h.run("help sort"))
	assert.Contains(t, h.out.String(), "price-high")
}

func TestCLI_LiveSearchHint(t *testing.T) {
	h := newHarness(t)

	snap := h.search.snap
	snap.State.DebouncedQuery = "lake"
	snap.TotalRecords = 2

	// вне живого режима подсказок нет
	h.cli.OnSearchChange(snap)
	assert.Empty(t, h.out.String())

	h.cli.Listener().OnChange([]rune("/lake"), 5, 'e')
	assert.Equal(t, []string{"SetQuery:lake"}, h.search.calls)

	loading := snap
	loading.Status = search.StatusLoading
	h.cli.OnSearchChange(loading)
	assert.Empty(t, h.out.String())

	h.cli.OnSearchChange(snap)
	h.cli.OnSearchChange(snap)
	assert.Equal(t, 1, strings.Count(h.out.String(), `2 result(s) for "lake"`))

	// обычная строка в живой поиск не уходит
	h.cli.Listener().OnChange([]rune("sort"), 4, 't')
	assert.Len(t, h.search.calls, 1)
}

func TestFormatError(t *testing.T) {
	assert.Contains(t, FormatError(domain.ErrNotFound), "Not found")
	assert.Contains(t, FormatError(domain.ErrBackend), "unavailable")
	assert.Contains(t, FormatError(errors.New("boom")), "boom")
}

func TestCLI_Status(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("status"))
	assert.Equal(t, "Backend: open · search: loaded · wishlist: 0\n", h.out.String())
}
