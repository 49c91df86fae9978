// Package telegram implementa el loop de comandos del bot: altas de usuarios,
// gestión de la watchlist y de tiendas seguidas.
package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jhoicas/spiritwatch/internal/application/access"
	"github.com/jhoicas/spiritwatch/internal/application/monitor"
	"github.com/jhoicas/spiritwatch/internal/domain/entity"
	"github.com/jhoicas/spiritwatch/internal/domain/repository"
	"github.com/jhoicas/spiritwatch/pkg/logger"
)

// CommandLoop consume updates del bot y atiende los comandos de gestión.
type CommandLoop struct {
	bot        *tgbotapi.BotAPI
	notifier   monitor.Notifier
	users      *access.UserService
	products   repository.ProductRepository
	watches    repository.WatchRepository
	userStores repository.UserStoreRepository
	stores     repository.StoreRepository
	catalog    monitor.CatalogAPI
	refStore   string
	log        *logger.Logger
}

// NewCommandLoop construye el loop de comandos.
func NewCommandLoop(
	bot *tgbotapi.BotAPI,
	notifier monitor.Notifier,
	users *access.UserService,
	products repository.ProductRepository,
	watches repository.WatchRepository,
	userStores repository.UserStoreRepository,
	stores repository.StoreRepository,
	catalog monitor.CatalogAPI,
	refStore string,
	log *logger.Logger,
) *CommandLoop {
	return &CommandLoop{
		bot:        bot,
		notifier:   notifier,
		users:      users,
		products:   products,
		watches:    watches,
		userStores: userStores,
		stores:     stores,
		catalog:    catalog,
		refStore:   refStore,
		log:        log,
	}
}

// Run consume updates por long-polling hasta que el ctx se cancele. Un error
// al atender un update se loguea y el loop sigue.
func (l *CommandLoop) Run(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := l.bot.GetUpdatesChan(cfg)
	l.log.Info().Msg("loop de comandos iniciado")

	for {
		select {
		case <-ctx.Done():
			l.bot.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			if err := l.handle(ctx, update.Message); err != nil {
				l.log.Error().Err(err).Str("command", update.Message.Command()).Msg("comando falló")
			}
		}
	}
}

func (l *CommandLoop) handle(ctx context.Context, msg *tgbotapi.Message) error {
	userID := fmt.Sprintf("%d", msg.Chat.ID)
	args := strings.Fields(msg.CommandArguments())

	if msg.Command() == "start" {
		return l.handleStart(ctx, userID, strings.TrimSpace(msg.From.FirstName+" "+msg.From.LastName))
	}

	decision, err := l.users.Check(ctx, userID)
	if err != nil {
		return err
	}
	if !decision.Allowed() {
		switch decision {
		case access.NoAccount:
			return l.reply(ctx, userID, "You are not registered yet. Send /start to begin your trial.")
		default:
			return l.reply(ctx, userID, "Your subscription has expired. Contact the administrator to renew.")
		}
	}

	switch msg.Command() {
	case "add":
		return l.handleAdd(ctx, userID, msg.From.UserName, args)
	case "remove":
		return l.handleRemove(ctx, userID, args)
	case "list":
		return l.handleList(ctx, userID)
	case "addstore":
		return l.handleAddStore(ctx, userID, args)
	case "removestore":
		return l.handleRemoveStore(ctx, userID, args)
	case "stores":
		return l.handleStores(ctx, userID)
	case "status":
		return l.handleStatus(ctx, userID, decision)
	case "extend":
		return l.handleExtend(ctx, userID, decision, args)
	case "setadmin":
		return l.handleSetAdmin(ctx, userID, decision, args)
	default:
		return l.reply(ctx, userID, "Unknown command. Available: /add /remove /list /addstore /removestore /stores /status")
	}
}

func (l *CommandLoop) handleStart(ctx context.Context, userID, fullName string) error {
	user, err := l.users.Register(ctx, userID, fullName)
	if err != nil {
		return err
	}
	if user.SubscriptionExpiry != nil {
		return l.reply(ctx, userID, fmt.Sprintf(
			"👋 Welcome! Your access is active until <b>%s</b>.\nUse /add &lt;product_id&gt; to start watching products.",
			user.SubscriptionExpiry.Format("2006-01-02")))
	}
	return l.reply(ctx, userID, "👋 Welcome back!")
}

func (l *CommandLoop) handleAdd(ctx context.Context, userID, userName string, args []string) error {
	if len(args) != 1 {
		return l.reply(ctx, userID, "Usage: /add <product_id>")
	}
	pid := args[0]

	// El alta valida el producto contra el proveedor y captura su nombre.
	product, err := l.catalog.FetchProduct(ctx, pid, l.refStore)
	if err != nil {
		return l.reply(ctx, userID, fmt.Sprintf("Product <code>%s</code> was not found at the supplier.", pid))
	}
	// El producto entra al conjunto observado: los sweeps de active/categoría y
	// el reporte diario recorren esta tabla, no la watchlist.
	if err := l.products.Upsert(ctx, product); err != nil {
		return err
	}
	added, err := l.watches.Add(ctx, &entity.Watch{
		UserID:      userID,
		UserName:    userName,
		ProductID:   pid,
		ProductName: product.Name,
	})
	if err != nil {
		return err
	}
	if !added {
		return l.reply(ctx, userID, fmt.Sprintf("<b>%s</b> is already on your watchlist.", product.Name))
	}
	return l.reply(ctx, userID, fmt.Sprintf("✅ Now watching <b>%s</b> (<code>%s</code>).", product.Name, pid))
}

func (l *CommandLoop) handleRemove(ctx context.Context, userID string, args []string) error {
	if len(args) != 1 {
		return l.reply(ctx, userID, "Usage: /remove <product_id>")
	}
	removed, err := l.watches.Remove(ctx, userID, args[0])
	if err != nil {
		return err
	}
	if !removed {
		return l.reply(ctx, userID, fmt.Sprintf("<code>%s</code> was not on your watchlist.", args[0]))
	}
	return l.reply(ctx, userID, fmt.Sprintf("🗑 Removed <code>%s</code> from your watchlist.", args[0]))
}

func (l *CommandLoop) handleList(ctx context.Context, userID string) error {
	watches, err := l.watches.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	if len(watches) == 0 {
		return l.reply(ctx, userID, "Your watchlist is empty. Use /add <product_id>.")
	}
	var b strings.Builder
	b.WriteString("📋 <b>Your watchlist:</b>\n")
	for _, w := range watches {
		fmt.Fprintf(&b, "• %s (<code>%s</code>)\n", w.ProductName, w.ProductID)
	}
	return l.reply(ctx, userID, b.String())
}

func (l *CommandLoop) handleAddStore(ctx context.Context, userID string, args []string) error {
	if len(args) != 1 {
		return l.reply(ctx, userID, "Usage: /addstore <store_id>")
	}
	storeID := args[0]
	store, err := l.stores.GetByID(ctx, storeID)
	if err != nil {
		return err
	}
	if store == nil {
		// La tabla local es un espejo; ante un id desconocido se consulta al
		// proveedor antes de rechazar.
		store, err = l.catalog.FetchStore(ctx, storeID)
		if err != nil {
			return l.reply(ctx, userID, fmt.Sprintf("Store <code>%s</code> was not found.", storeID))
		}
		if _, err := l.stores.UpsertBatch(ctx, []*entity.Store{store}); err != nil {
			return err
		}
	}
	added, err := l.userStores.Add(ctx, &entity.UserStore{
		UserID:  userID,
		StoreID: storeID,
		City:    store.City,
		Address: store.Address,
	})
	if err != nil {
		return err
	}
	if !added {
		return l.reply(ctx, userID, fmt.Sprintf("You are already tracking %s (%s).", store.City, store.Address))
	}
	return l.reply(ctx, userID, fmt.Sprintf("🏬 Now tracking stock at <b>%s</b> — %s.", store.City, store.Address))
}

func (l *CommandLoop) handleRemoveStore(ctx context.Context, userID string, args []string) error {
	if len(args) != 1 {
		return l.reply(ctx, userID, "Usage: /removestore <store_id>")
	}
	removed, err := l.userStores.Remove(ctx, userID, args[0])
	if err != nil {
		return err
	}
	if !removed {
		return l.reply(ctx, userID, fmt.Sprintf("Store <code>%s</code> was not tracked.", args[0]))
	}
	return l.reply(ctx, userID, fmt.Sprintf("🗑 Stopped tracking store <code>%s</code>.", args[0]))
}

func (l *CommandLoop) handleStores(ctx context.Context, userID string) error {
	tracked, err := l.userStores.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	if len(tracked) == 0 {
		return l.reply(ctx, userID, "You are not tracking any stores. Use /addstore <store_id>.")
	}
	var b strings.Builder
	b.WriteString("🏬 <b>Your tracked stores:</b>\n")
	for _, s := range tracked {
		fmt.Fprintf(&b, "• %s — %s (<code>%s</code>)\n", s.City, s.Address, s.StoreID)
	}
	return l.reply(ctx, userID, b.String())
}

func (l *CommandLoop) handleStatus(ctx context.Context, userID string, decision access.Decision) error {
	switch decision {
	case access.Admin:
		total, err := l.users.CountRegistered(ctx)
		if err != nil {
			return err
		}
		return l.reply(ctx, userID, fmt.Sprintf("🔑 You have administrator access (no expiry).\nRegistered users: <b>%d</b>", total))
	case access.Trial:
		return l.reply(ctx, userID, "🧪 You are on a trial period.")
	case access.Paid:
		return l.reply(ctx, userID, "💳 Your subscription is active.")
	default:
		return l.reply(ctx, userID, fmt.Sprintf("Access level: %s", decision))
	}
}

func (l *CommandLoop) handleExtend(ctx context.Context, userID string, decision access.Decision, args []string) error {
	if decision != access.Admin {
		return l.reply(ctx, userID, "This command is for administrators only.")
	}
	if len(args) != 1 {
		return l.reply(ctx, userID, "Usage: /extend <user_id>")
	}
	expiry, err := l.users.ExtendSubscription(ctx, args[0])
	if err != nil {
		return l.reply(ctx, userID, fmt.Sprintf("Could not extend: %v", err))
	}
	return l.reply(ctx, userID, fmt.Sprintf("✅ Subscription for <code>%s</code> now expires on %s.", args[0], expiry.Format("2006-01-02")))
}

func (l *CommandLoop) handleSetAdmin(ctx context.Context, userID string, decision access.Decision, args []string) error {
	if decision != access.Admin {
		return l.reply(ctx, userID, "This command is for administrators only.")
	}
	if len(args) != 1 {
		return l.reply(ctx, userID, "Usage: /setadmin <user_id>")
	}
	if err := l.users.SetAdmin(ctx, args[0], true); err != nil {
		return l.reply(ctx, userID, fmt.Sprintf("Could not set admin: %v", err))
	}
	return l.reply(ctx, userID, fmt.Sprintf("🔑 <code>%s</code> is now an administrator.", args[0]))
}

func (l *CommandLoop) reply(ctx context.Context, userID, text string) error {
	return l.notifier.SendText(ctx, userID, text)
}
