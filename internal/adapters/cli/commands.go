package cli

import (
	"context"
	"errors"
	"fmt"
	"real-estate-web/internal/core/domain"
	"real-estate-web/internal/core/search"
	"real-estate-web/internal/core/wishlist"
	"strconv"
	"strings"
)

func (c *CLI) handleSearch(args []string) error {
	text := strings.TrimSpace(strings.Join(args, " "))
	c.Search.SubmitQuery(text)
	c.Search.Wait()
	c.render()
	return nil
}

func (c *CLI) handleType(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: usage: type <All|House|Apartment|Plot|...>", domain.ErrInvalidInput)
	}
	c.Search.SetType(normalizeType(strings.Join(args, " ")))
	c.Search.Wait()
	c.render()
	return nil
}

// normalizeType приводит ввод к виду "Apartment", как тип хранится в каталоге.
func normalizeType(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, domain.TypeAll) || s == "" {
		return domain.TypeAll
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

func (c *CLI) handleSort(args []string) error {
	if len(args) == 0 {
		keys := make([]string, 0, len(search.SortKeys()))
		for _, k := range search.SortKeys() {
			keys = append(keys, string(k))
		}
		return fmt.Errorf("%w: usage: sort <%s>", domain.ErrInvalidInput, strings.Join(keys, "|"))
	}
	key, err := search.ParseSortKey(args[0])
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	c.Search.SetSort(key)
	c.Search.Wait()
	c.render()
	return nil
}

func (c *CLI) handlePaging(move func()) error {
	move()
	c.Search.Wait()
	c.render()
	return nil
}

func (c *CLI) handlePage(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: usage: page <n>", domain.ErrInvalidInput)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("%w: page must be a number", domain.ErrInvalidInput)
	}
	return c.handlePaging(func() { c.Search.GoToPage(n) })
}

// handleLike переключает сердечко у объекта с текущей страницы.
func (c *CLI) handleLike(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: usage: like <property id>", domain.ErrInvalidInput)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("%w: property id must be a number", domain.ErrInvalidInput)
	}

	var title string
	found := false
	for _, p := range c.Search.State().Items {
		if p.ID == id {
			title, found = p.Title, true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: property %d is not on the current page", domain.ErrNotFound, id)
	}

	// текущее членство берется из хранилища, поэтому оно должно быть загружено
	if err := c.Wishlist.EnsureLoaded(ctx); err != nil {
		return err
	}
	// сообщение о результате печатает подписка на хранилище
	_, err = c.Wishlist.Toggle(ctx, id, title)
	if errors.Is(err, wishlist.ErrToggleInProgress) {
		c.printf("Another wishlist update is still running, try again.\n")
		return nil
	}
	return err
}

// handleWishlist: wishlist [sync]. Без аргумента загружает избранное один раз за сессию,
// sync перечитывает его с сервера.
func (c *CLI) handleWishlist(ctx context.Context, args []string) error {
	load := c.Wishlist.EnsureLoaded
	if len(args) > 0 {
		if args[0] != "sync" {
			return fmt.Errorf("%w: usage: wishlist [sync]", domain.ErrInvalidInput)
		}
		load = c.Wishlist.Load
	}
	if err := load(ctx); err != nil {
		return err
	}
	c.printf("Wishlist: %d propert%s.\n", c.Wishlist.Len(), plural(c.Wishlist.Len(), "y", "ies"))
	c.render()
	return nil
}

func (c *CLI) handleDetails(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: usage: details <slug>", domain.ErrInvalidInput)
	}
	p, err := c.Details.Execute(ctx, args[0])
	if err != nil {
		return err
	}
	c.renderDetails(*p)
	return nil
}

func (c *CLI) handleLogin(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: usage: login <mobile>", domain.ErrInvalidInput)
	}
	if err := c.Auth.RequestCode(ctx, args[0]); err != nil {
		return err
	}
	c.pendingMobile = args[0]
	c.printf("A one-time code was sent to %s. Enter it with: otp <code>\n", args[0])
	return nil
}

func (c *CLI) handleOTP(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: usage: otp <code>", domain.ErrInvalidInput)
	}
	if c.pendingMobile == "" {
		return fmt.Errorf("%w: request a code first with: login <mobile>", domain.ErrInvalidInput)
	}
	session, err := c.Auth.VerifyCode(ctx, c.pendingMobile, args[0])
	if err != nil {
		return err
	}
	c.pendingMobile = ""
	c.printf("Signed in as %s.\n", displayName(session))

	// избранное нужно сразу, иначе сердечки на карточках будут пустыми;
	// показанная страница перерисуется по уведомлению хранилища
	if err := c.Wishlist.EnsureLoaded(ctx); err != nil {
		c.printf("%s\n", FormatError(err))
	}
	return nil
}

func (c *CLI) handleLogout(ctx context.Context) error {
	if c.Sessions.Current() == nil {
		c.printf("You are not signed in.\n")
		return nil
	}
	c.Auth.SignOut(ctx)
	c.printf("Signed out.\n")
	return nil
}

func (c *CLI) handleWhoAmI() error {
	session := c.Sessions.Current()
	if session == nil {
		c.printf("Guest.\n")
		return nil
	}
	c.printf("%s (%s), wishlist: %d\n", displayName(session), session.Identity(), c.Wishlist.Len())
	return nil
}

func (c *CLI) handleStatus() error {
	state := "unknown"
	if c.Backend != nil {
		state = c.Backend.BreakerState().String()
	}
	snap := c.Search.State()
	c.printf("Backend: %s · search: %s · wishlist: %d\n", state, snap.Status, c.Wishlist.Len())
	return nil
}

// handleInquiry: inquiry <property id|0> "<message>" [name] [email|mobile]
func (c *CLI) handleInquiry(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: usage: inquiry <property id|0> \"<message>\" [name] [email|mobile]", domain.ErrInvalidInput)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("%w: property id must be a number", domain.ErrInvalidInput)
	}
	inquiry := domain.Inquiry{PropertyID: id, Message: args[1]}
	if len(args) > 2 {
		inquiry.Name = args[2]
	}
	if len(args) > 3 {
		if strings.Contains(args[3], "@") {
			inquiry.Email = args[3]
		} else {
			inquiry.Mobile = args[3]
		}
	}

	receipt, err := c.Inquiries.Execute(ctx, inquiry)
	if err != nil {
		return err
	}
	c.printf("Inquiry %s received (%s). We will contact you soon.\n", receipt.ID, receipt.Status)
	return nil
}

func (c *CLI) handleDeleteAccount(ctx context.Context, args []string) error {
	if len(args) != 1 || args[0] != "--yes" {
		c.printf("This permanently deletes your account and wishlist. Run: delete-account --yes\n")
		return nil
	}
	if err := c.Account.Execute(ctx); err != nil {
		return err
	}
	c.printf("Account deleted.\n")
	return nil
}

func (c *CLI) handleHelp(args []string) error {
	if len(args) == 0 {
		c.printHelp("")
		return nil
	}
	c.printHelp(args[0])
	return nil
}

func displayName(s *domain.Session) string {
	if s.User.Name != "" {
		return s.User.Name
	}
	return s.Identity()
}
