package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	auth_api_client "real-estate-web/internal/adapters/auth_client"
	backend_api_client "real-estate-web/internal/adapters/backend_client"
	"real-estate-web/internal/adapters/cli"
	"real-estate-web/internal/configs"
	"real-estate-web/internal/contextkeys"
	"real-estate-web/internal/core/port"
	"real-estate-web/internal/core/search"
	"real-estate-web/internal/core/session"
	"real-estate-web/internal/core/usecase"
	"real-estate-web/internal/core/wishlist"

	"github.com/chzyer/readline"
	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
)

// App - интерактивный клиент каталога.
type App struct {
	config *configs.Config

	rl         *readline.Instance
	ui         *cli.CLI
	controller *search.Controller
	wishlist   *wishlist.Store
	signIn     *usecase.SignInUseCase

	fluentClient *fluent.Fluent
	logger       port.LoggerPort
}

func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	// --- 1. ЛОГГЕРЫ ---
	baseLogger, fluentClient, err := newLogger(appConfig, "estate-cli", true)
	if err != nil {
		return nil, err
	}
	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})

	// --- 2. АДАПТЕРЫ ---
	backendClient := backend_api_client.NewClient(backend_api_client.Config{
		BaseURL:    appConfig.Backend.URL,
		Timeout:    appConfig.Backend.Timeout,
		Registerer: prometheus.NewRegistry(),
	})
	authClient := auth_api_client.NewClient(appConfig.Backend.AuthURL, appConfig.Backend.Timeout)
	appLogger.Info("Backend adapters initialized.", port.Fields{
		"backend_url": appConfig.Backend.URL, "auth_url": appConfig.Backend.AuthURL,
	})

	// --- 3. ЯДРО ---
	sessions := session.NewManager()
	store := wishlist.NewStore(backendClient, sessions, baseLogger)
	// выход пользователя очищает избранное
	sessions.OnSignOut(store.Reset)

	signIn := usecase.NewSignInUseCase(authClient, sessions)
	details := usecase.NewGetPropertyBySlugUseCase(backendClient)
	inquiries := usecase.NewSubmitInquiryUseCase(backendClient, sessions, validator.New(validator.WithRequiredStructEnabled()))
	deleteAccount := usecase.NewDeleteAccountUseCase(backendClient, sessions)

	// --- 4. ИНТЕРФЕЙС ---
	var ui *cli.CLI
	controller := search.NewController(backendClient, clockwork.NewRealClock(), baseLogger,
		search.WithPageSize(appConfig.Search.PageSize),
		search.WithDebounce(appConfig.Search.Debounce),
		search.WithOnChange(func(s search.Snapshot) {
			if ui != nil {
				ui.OnSearchChange(s)
			}
		}),
	)

	application := &App{
		config:       appConfig,
		controller:   controller,
		wishlist:     store,
		signIn:       signIn,
		fluentClient: fluentClient,
		logger:       appLogger,
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "estate > ",
		HistoryFile:     appConfig.CLI.HistoryFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		// поиск по мере ввода; ui создается ниже и до первого Readline
		Listener: readline.FuncListener(func(line []rune, pos int, key rune) ([]rune, int, bool) {
			if ui == nil {
				return nil, 0, false
			}
			return ui.Listener().OnChange(line, pos, key)
		}),
	})
	if err != nil {
		application.closeLogger()
		return nil, fmt.Errorf("failed to initialize readline: %w", err)
	}
	application.rl = rl

	ui = cli.NewCLI(contextkeys.ContextWithLogger(context.Background(), baseLogger), cli.Deps{
		Search:    controller,
		Wishlist:  store,
		Auth:      signIn,
		Sessions:  sessions,
		Details:   details,
		Inquiries: inquiries,
		Account:   deleteAccount,
		Backend:   backendClient,
		Logger:    baseLogger,
	}, rl, nil)
	application.ui = ui

	appLogger.Info("Application configured.", nil)
	return application, nil
}

// Run восстанавливает сессию, загружает первую страницу и обслуживает команды до exit.
func (a *App) Run() error {
	defer a.shutdown()

	ctx, _ := contextkeys.EnsureTraceID(contextkeys.ContextWithLogger(context.Background(), a.logger))

	if token := a.config.CLI.AuthToken; token != "" {
		if s, err := a.signIn.Restore(ctx, token); err == nil && s != nil {
			if err := a.wishlist.EnsureLoaded(ctx); err != nil {
				a.logger.Warn("Wishlist is not available yet", port.Fields{"error": err.Error()})
			}
		}
		a.ui.UpdatePrompt()
	}

	a.controller.Start()
	a.controller.Wait()
	if err := a.ui.ExecuteCommand([]string{"show"}); err != nil {
		return err
	}

	for {
		err := a.ui.Run()
		switch {
		case err == nil:
			continue
		case errors.Is(err, readline.ErrInterrupt):
			fmt.Fprintln(a.rl.Stdout(), "Use 'exit' or 'quit' to exit the program.")
		case errors.Is(err, io.EOF):
			return nil
		default:
			fmt.Fprintln(a.rl.Stdout(), cli.FormatError(err))
		}
	}
}

func (a *App) shutdown() {
	a.logger.Info("Shutdown sequence initiated...", nil)
	a.controller.Close()
	a.controller.Wait()
	a.ui.Close()
	if a.rl != nil {
		a.rl.Close()
	}
	a.logger.Info("Application shut down gracefully.", nil)
	a.closeLogger()
}

func (a *App) closeLogger() {
	if a.fluentClient != nil {
		if err := a.fluentClient.Close(); err != nil {
			// fluent уже может быть недоступен
			fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
		}
	}
}
