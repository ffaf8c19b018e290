// Package cli - терминальный интерфейс каталога: карточки объектов, поиск, фильтр типа,
// сортировка, пагинация и кнопки избранного.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"real-estate-web/internal/contextkeys"
	"real-estate-web/internal/core/domain"
	"real-estate-web/internal/core/port"
	"real-estate-web/internal/core/search"
	"real-estate-web/internal/core/wishlist"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/chzyer/readline"
	"github.com/sony/gobreaker/v2"
)

// ErrExit возвращается командой exit. Оборачивает io.EOF, чтобы главный цикл завершился.
var ErrExit = fmt.Errorf("exit requested: %w", io.EOF)

// SearchController - операции страницы поиска, которые нужны интерфейсу.
type SearchController interface {
	SetQuery(text string)
	SubmitQuery(text string)
	SetType(typeFilter string)
	SetSort(key domain.SortKey)
	NextPage()
	PrevPage()
	GoToPage(n int)
	Refresh()
	State() search.Snapshot
	Wait()
}

// Wishlist - общее хранилище избранного. Интерфейс узнает об изменениях через Subscribe.
type Wishlist interface {
	IsInWishlist(propertyID int64) bool
	Loading() bool
	Len() int
	Toggle(ctx context.Context, propertyID int64, propertyTitle string) (bool, error)
	Load(ctx context.Context) error
	EnsureLoaded(ctx context.Context) error
	Subscribe(fn func(wishlist.Change)) (unsubscribe func())
}

// BackendHealth - состояние предохранителя клиента бэкенда.
type BackendHealth interface {
	BreakerState() gobreaker.State
}

type Authenticator interface {
	RequestCode(ctx context.Context, mobile string) error
	VerifyCode(ctx context.Context, mobile, code string) (*domain.Session, error)
	SignOut(ctx context.Context)
}

type PropertyFinder interface {
	Execute(ctx context.Context, slug string) (*domain.Property, error)
}

type InquirySender interface {
	Execute(ctx context.Context, inquiry domain.Inquiry) (*domain.InquiryReceipt, error)
}

type AccountRemover interface {
	Execute(ctx context.Context) error
}

// Deps - зависимости интерфейса. Все поля, кроме Backend, обязательны.
type Deps struct {
	Search    SearchController
	Wishlist  Wishlist
	Auth      Authenticator
	Sessions  port.SessionProviderPort
	Details   PropertyFinder
	Inquiries InquirySender
	Account   AccountRemover
	Backend   BackendHealth
	Logger    port.LoggerPort
}

type CLI struct {
	Deps
	RL     *readline.Instance
	Prompt string

	ctx context.Context

	outMu sync.Mutex
	out   io.Writer

	pendingMobile string

	// живой поиск: строка, начинающаяся с '/', уходит в SetQuery на каждом нажатии
	live     atomic.Bool
	hintMu   sync.Mutex
	lastHint string

	// состояние избранного, полученное от подписки
	unsubscribe func()
	heartsBusy  atomic.Bool
	stale       atomic.Bool
	shown       atomic.Bool
	inCommand   atomic.Bool
}

// NewCLI - конструктор. rl может быть nil (скрипты и тесты), тогда вывод идет в out.
func NewCLI(ctx context.Context, deps Deps, rl *readline.Instance, out io.Writer) *CLI {
	if deps.Logger == nil {
		deps.Logger = contextkeys.NoopLogger()
	}
	deps.Logger = deps.Logger.WithFields(port.Fields{"component": "CLI"})
	if out == nil {
		if rl != nil {
			out = rl.Stdout()
		} else {
			out = os.Stdout
		}
	}
	c := &CLI{
		Deps: deps,
		RL:   rl,
		ctx:  ctx,
		out:  out,
	}
	c.heartsBusy.Store(deps.Wishlist.Loading())
	c.unsubscribe = deps.Wishlist.Subscribe(c.OnWishlistChange)
	c.UpdatePrompt()
	return c
}

// Close отписывает интерфейс от хранилища избранного.
func (c *CLI) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
}

// UpdatePrompt показывает в приглашении, кто вошел.
func (c *CLI) UpdatePrompt() {
	if session := c.Sessions.Current(); session != nil {
		c.Prompt = fmt.Sprintf("estate (%s) > ", session.Identity())
	} else {
		c.Prompt = "estate > "
	}
	if c.RL != nil {
		c.RL.SetPrompt(c.Prompt)
	}
}

// Run читает и выполняет одну команду.
func (c *CLI) Run() error {
	line, err := c.RL.Readline()
	if err != nil {
		return err
	}

	line = strings.TrimSpace(line)
	if len(line) == 0 {
		return nil
	}

	return c.ExecuteCommand(c.ParseArgs(line))
}

// ParseArgs делит строку на аргументы по пробелам. Текст в двойных кавычках - один аргумент.
func (c *CLI) ParseArgs(input string) []string {
	var args []string
	var current strings.Builder
	inQuotes := false
	quoted := false

	flush := func() {
		if current.Len() > 0 || quoted {
			args = append(args, current.String())
			current.Reset()
		}
		quoted = false
	}

	for _, char := range input {
		switch {
		case char == '"':
			inQuotes = !inQuotes
			quoted = true
		case (char == ' ' || char == '\t') && !inQuotes:
			flush()
		default:
			current.WriteRune(char)
		}
	}
	flush()

	return args
}

// ExecuteCommand выполняет разобранную команду.
func (c *CLI) ExecuteCommand(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no command provided")
	}
	c.live.Store(false)
	c.inCommand.Store(true)
	defer func() {
		c.inCommand.Store(false)
		// команда изменила избранное, но страницу не перерисовала
		if c.stale.Load() && c.shown.Load() {
			c.render()
		}
		c.markShown()
	}()

	ctx, traceID := contextkeys.EnsureTraceID(c.ctx)
	logger := c.Logger.WithFields(port.Fields{"command": args[0], "trace_id": traceID})
	ctx = contextkeys.ContextWithLogger(ctx, logger)
	logger.Debug("Executing command.", nil)

	// "/текст" - то же, что search, с текстом из живого поиска
	if strings.HasPrefix(args[0], "/") {
		text := strings.TrimPrefix(strings.Join(args, " "), "/")
		return c.handleSearch([]string{text})
	}

	switch strings.ToLower(args[0]) {
	case "search", "find":
		return c.handleSearch(args[1:])
	case "type":
		return c.handleType(args[1:])
	case "sort":
		return c.handleSort(args[1:])
	case "next":
		return c.handlePaging(c.Search.NextPage)
	case "prev":
		return c.handlePaging(c.Search.PrevPage)
	case "page":
		return c.handlePage(args[1:])
	case "refresh":
		return c.handlePaging(c.Search.Refresh)
	case "show", "ls":
		c.render()
		return nil
	case "like", "heart":
		return c.handleLike(ctx, args[1:])
	case "wishlist":
		return c.handleWishlist(ctx, args[1:])
	case "details":
		return c.handleDetails(ctx, args[1:])
	case "login":
		return c.handleLogin(ctx, args[1:])
	case "otp":
		return c.handleOTP(ctx, args[1:])
	case "logout":
		return c.handleLogout(ctx)
	case "whoami":
		return c.handleWhoAmI()
	case "status":
		return c.handleStatus()
	case "inquiry":
		return c.handleInquiry(ctx, args[1:])
	case "delete-account":
		return c.handleDeleteAccount(ctx, args[1:])
	case "help":
		return c.handleHelp(args[1:])
	case "exit", "quit":
		c.printf("Bye.\n")
		if c.RL != nil {
			if err := c.RL.Close(); err != nil {
				logger.Warn("Failed to close readline.", port.Fields{"error": err.Error()})
			}
		}
		return ErrExit
	default:
		return fmt.Errorf("unknown command: %s (try 'help')", args[0])
	}
}

// Listener возвращает обработчик нажатий для readline: поиск по мере ввода.
func (c *CLI) Listener() readline.Listener {
	return readline.FuncListener(func(line []rune, pos int, key rune) ([]rune, int, bool) {
		if len(line) == 0 || line[0] != '/' {
			return nil, 0, false
		}
		c.live.Store(true)
		c.Search.SetQuery(strings.TrimSpace(string(line[1:])))
		return nil, 0, false
	})
}

// OnSearchChange получает снимки контроллера. В режиме живого поиска печатает
// короткую подсказку, когда пришла страница для нового текста.
func (c *CLI) OnSearchChange(snap search.Snapshot) {
	if !c.live.Load() || snap.Status != search.StatusLoaded {
		return
	}
	c.hintMu.Lock()
	if snap.State.DebouncedQuery == c.lastHint {
		c.hintMu.Unlock()
		return
	}
	c.lastHint = snap.State.DebouncedQuery
	c.hintMu.Unlock()

	c.printf("\n  %d result(s) for %q, press Enter to show\n", snap.TotalRecords, snap.State.DebouncedQuery)
	if c.RL != nil {
		c.RL.Refresh()
	}
}

// OnWishlistChange - слушатель хранилища избранного.
// Сердечки на показанной странице перерисовываются после команды или сразу,
// если изменение пришло вне команды.
func (c *CLI) OnWishlistChange(ch wishlist.Change) {
	switch ch.Kind {
	case wishlist.ChangeBusy:
		c.heartsBusy.Store(ch.Loading)
		return
	case wishlist.ChangeToggled:
		title := c.titleOnPage(ch.PropertyID)
		if ch.Present {
			c.printf("%s %s added to wishlist.\n", heartOn, title)
		} else {
			c.printf("%s %s removed from wishlist.\n", heartOff, title)
		}
	case wishlist.ChangeReset:
		c.printf("Wishlist cleared on this device.\n")
	}

	c.stale.Store(true)
	if !c.inCommand.Load() && c.shown.Load() {
		c.render()
		if c.RL != nil {
			c.RL.Refresh()
		}
	}
}

func (c *CLI) titleOnPage(id int64) string {
	for _, p := range c.Search.State().Items {
		if p.ID == id {
			return p.Title
		}
	}
	return fmt.Sprintf("#%d", id)
}

// markShown запоминает текущий текст поиска как уже показанный.
func (c *CLI) markShown() {
	q := c.Search.State().State.DebouncedQuery
	c.hintMu.Lock()
	c.lastHint = q
	c.hintMu.Unlock()
	c.UpdatePrompt()
}

func (c *CLI) printf(format string, args ...any) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

// FormatError переводит ошибку операции в сообщение для пользователя.
func FormatError(err error) string {
	switch {
	case errors.Is(err, domain.ErrAuthRequired):
		return "Sign in first: login <mobile>, then otp <code>."
	case errors.Is(err, domain.ErrUnauthorized):
		return "Your session has expired, please sign in again."
	case errors.Is(err, domain.ErrNotFound):
		return "Not found."
	case errors.Is(err, domain.ErrInvalidInput):
		return "Invalid input: " + err.Error()
	case errors.Is(err, domain.ErrBackend):
		return "The service is unavailable, try again later (refresh)."
	}
	return "Error: " + err.Error()
}
