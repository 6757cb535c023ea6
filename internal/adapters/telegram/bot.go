package telegram

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/vbilous/signalbot/internal/core/domain"
	"github.com/vbilous/signalbot/internal/core/ports"
	"github.com/vbilous/signalbot/internal/core/services"
	"github.com/vbilous/signalbot/internal/infrastructure/metrics"
)

// Transport is what the bot loop needs from the Bot API client. Tests swap in
// a fake.
type Transport interface {
	ports.Messenger
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error)
	AnswerCallback(ctx context.Context, callbackID string) error
	EditMessageText(ctx context.Context, chatID, messageID int64, text string, keyboard [][]ports.Button) error
}

// Config carries the deployment knobs for the update loop.
type Config struct {
	AdminIDs    []int64
	SignalLimit int
	ContactURL  string
	PollTimeout time.Duration
	SignalDelay time.Duration
}

// Bot runs the long-poll loop and routes updates into the access service.
// Every expiry and quota decision happens inside the service; the bot only
// translates results into localized replies.
type Bot struct {
	tr     Transport
	svc    ports.AccessService
	loc    ports.Localizer
	images ports.ImageCatalog
	flood  ports.FloodLimiter
	cfg    Config
	admins map[int64]bool
	logger *slog.Logger
}

func New(tr Transport, svc ports.AccessService, loc ports.Localizer, images ports.ImageCatalog, flood ports.FloodLimiter, cfg Config, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PollTimeout == 0 {
		cfg.PollTimeout = 30 * time.Second
	}
	if cfg.SignalDelay == 0 {
		cfg.SignalDelay = 1500 * time.Millisecond
	}
	admins := make(map[int64]bool, len(cfg.AdminIDs))
	for _, id := range cfg.AdminIDs {
		admins[id] = true
	}
	return &Bot{
		tr:     tr,
		svc:    svc,
		loc:    loc,
		images: images,
		flood:  flood,
		cfg:    cfg,
		admins: admins,
		logger: logger,
	}
}

// Run polls for updates until the context is cancelled. Each update is
// handled in its own goroutine; per-user ordering is not required because all
// store mutations are atomic at the repository layer.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("bot update loop started")

	var offset int64
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		updates, err := b.tr.GetUpdates(ctx, offset, b.cfg.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.logger.Error("getUpdates failed", "error", err)
			time.Sleep(time.Second)
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			go b.HandleUpdate(ctx, u)
		}
	}
}

// HandleUpdate routes a single update. Exported for tests.
func (b *Bot) HandleUpdate(ctx context.Context, u Update) {
	var kind string
	switch {
	case u.Message != nil:
		kind = "message"
	case u.Callback != nil:
		kind = "callback"
	default:
		kind = "other"
	}
	metrics.UpdatesTotal.WithLabelValues(kind).Inc()
	timer := time.Now()
	defer func() {
		metrics.UpdateDuration.WithLabelValues(kind).Observe(time.Since(timer).Seconds())
	}()

	switch kind {
	case "message":
		b.handleMessage(ctx, u.Message)
	case "callback":
		b.handleCallback(ctx, u.Callback)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *Message) {
	if msg.From == nil {
		return
	}
	chatID := msg.Chat.ID
	userID := msg.From.ID

	allowed, err := b.flood.Allow(ctx, chatID)
	if err != nil {
		// Fail open: the domain quota still bounds usage.
		b.logger.Error("flood limiter failed", "chat_id", chatID, "error", err)
		allowed = true
	}
	if !allowed {
		metrics.FloodDrops.Inc()
		return
	}

	user, err := b.svc.Profile(ctx, userID)
	if err != nil {
		b.logger.Error("profile load failed", "error", err)
		b.send(ctx, chatID, b.loc.T(nil, "error_general", nil), nil)
		return
	}
	lang := user.Language
	text := strings.TrimSpace(msg.Text)

	// Users without a selected language are funneled to the picker for
	// everything except /start, which shows it itself.
	if lang == nil && text != "/start" {
		b.send(ctx, chatID, b.loc.T(nil, "please_choose_language", nil), languageKeyboard())
		return
	}

	switch {
	case text == "/start":
		b.handleStart(ctx, chatID, userID, lang)
	case strings.HasPrefix(text, "/generate_key"):
		b.handleGenerateKey(ctx, chatID, userID, lang, text)
	case text == "/give_signal":
		b.handleGiveSignal(ctx, chatID, userID, lang)
	case text == "/subscription_info":
		b.handleSubscription(ctx, chatID, userID, lang)
	default:
		b.handleText(ctx, chatID, userID, lang, user, text)
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *CallbackQuery) {
	chatID := cb.From.ID
	var messageID int64
	if cb.Message != nil {
		chatID = cb.Message.Chat.ID
		messageID = cb.Message.MessageID
	}
	userID := cb.From.ID

	defer func() {
		if err := b.tr.AnswerCallback(ctx, cb.ID); err != nil {
			b.logger.Error("answerCallbackQuery failed", "error", err)
		}
	}()

	if code, ok := setLangData[cb.Data]; ok {
		b.handleSetLanguage(ctx, chatID, userID, messageID, code)
		return
	}

	user, err := b.svc.Profile(ctx, userID)
	if err != nil {
		b.logger.Error("profile load failed", "error", err)
		b.send(ctx, chatID, b.loc.T(nil, "error_general", nil), nil)
		return
	}
	lang := user.Language
	if lang == nil {
		b.send(ctx, chatID, b.loc.T(nil, "please_choose_language", nil), languageKeyboard())
		return
	}

	switch cb.Data {
	case cbGiveSignal:
		b.handleGiveSignal(ctx, chatID, userID, lang)
	case cbSubscriptionInfo:
		b.handleSubscription(ctx, chatID, userID, lang)
	case cbChangeLanguage:
		if err := b.tr.EditMessageText(ctx, chatID, messageID, b.loc.T(lang, "change_lang_message", nil), languageKeyboard()); err != nil {
			b.logger.Error("editMessageText failed", "error", err)
		}
	}
}

func (b *Bot) handleStart(ctx context.Context, chatID, userID int64, lang *string) {
	if lang == nil {
		b.send(ctx, chatID, b.loc.T(nil, "start_welcome_initial_prompt", nil), languageKeyboard())
		return
	}

	sub, err := b.svc.SubscriptionInfo(ctx, userID)
	if err != nil {
		b.logger.Error("subscription lookup failed", "error", err)
		b.send(ctx, chatID, b.loc.T(lang, "error_general", nil), nil)
		return
	}

	if sub.HasKey {
		b.send(ctx, chatID, b.loc.T(lang, "start_has_key", nil), b.mainKeyboard(lang))
		b.send(ctx, chatID, b.loc.T(lang, "commands_info", nil), nil)
	} else {
		b.send(ctx, chatID, b.loc.T(lang, "start_welcome", nil), b.contactAdminKeyboard(lang))
	}
}

func (b *Bot) handleSetLanguage(ctx context.Context, chatID, userID, messageID int64, code string) {
	if err := b.svc.SetLanguage(ctx, userID, code); err != nil {
		b.logger.Error("set language failed", "error", err)
		b.send(ctx, chatID, b.loc.T(nil, "error_general", nil), nil)
		return
	}
	lang := &code

	if err := b.tr.EditMessageText(ctx, chatID, messageID, b.loc.T(lang, "language_set", nil), nil); err != nil {
		b.logger.Error("editMessageText failed", "error", err)
	}

	sub, err := b.svc.SubscriptionInfo(ctx, userID)
	if err != nil {
		b.logger.Error("subscription lookup failed", "error", err)
		b.send(ctx, chatID, b.loc.T(lang, "error_general", nil), b.mainKeyboard(lang))
		return
	}

	if sub.HasKey {
		b.send(ctx, chatID, b.loc.T(lang, "start_has_key", nil), b.mainKeyboard(lang))
		b.send(ctx, chatID, b.loc.T(lang, "commands_info", nil), nil)
	} else {
		b.send(ctx, chatID, b.loc.T(lang, "start_welcome", nil), b.contactAdminKeyboard(lang))
	}
}

func (b *Bot) handleGenerateKey(ctx context.Context, chatID, userID int64, lang *string, text string) {
	if !b.admins[userID] {
		b.send(ctx, chatID, b.loc.T(lang, "admin_no_permission", nil), nil)
		return
	}

	fields := strings.Fields(text)
	if len(fields) != 2 {
		b.send(ctx, chatID, b.loc.T(lang, "admin_generate_key_format", nil), nil)
		return
	}
	duration, ok := domain.ParseKeyDuration(fields[1])
	if !ok {
		b.send(ctx, chatID, b.loc.T(lang, "admin_generate_key_format", nil), nil)
		return
	}

	issued, err := b.svc.IssueKey(ctx, userID, duration)
	if err != nil {
		b.logger.Error("key issuance failed", "error", err)
		b.send(ctx, chatID, b.loc.T(lang, "error_general", nil), nil)
		return
	}

	expiry := b.loc.T(lang, "admin_key_generated_never", nil)
	if issued.ExpiresAt != nil {
		expiry = issued.ExpiresAt.UTC().Format("2006-01-02 15:04 MST")
	}
	b.send(ctx, chatID, b.loc.T(lang, "admin_key_generated", map[string]string{
		"key":       issued.Value,
		"expiresAt": expiry,
	}), nil)
}

func (b *Bot) handleGiveSignal(ctx context.Context, chatID, userID int64, lang *string) {
	result, err := b.svc.Authorize(ctx, userID)
	if err != nil {
		b.logger.Error("authorize failed", "error", err)
		b.send(ctx, chatID, b.loc.T(lang, "error_general", nil), nil)
		return
	}

	switch result {
	case domain.AccessNoKey:
		b.send(ctx, chatID, b.loc.T(lang, "no_active_key", nil), b.contactAdminKeyboard(lang))
		return
	case domain.AccessKeyExpired:
		b.send(ctx, chatID, b.loc.T(lang, "key_expired", nil), b.contactAdminKeyboard(lang))
		return
	case domain.AccessQuotaExceeded:
		b.send(ctx, chatID, b.loc.T(lang, "limit_exceeded", map[string]string{
			"limit": strconv.Itoa(b.cfg.SignalLimit),
		}), nil)
		return
	}

	b.send(ctx, chatID, b.loc.T(lang, "generating_signal", nil), nil)
	time.Sleep(b.cfg.SignalDelay)

	sig := services.GenerateSignal()
	caption := b.loc.T(lang, "signal_message_format", map[string]string{
		"steps": strconv.Itoa(sig.Steps),
		"level": b.loc.T(lang, "level_"+string(sig.Level), nil),
	})

	locale := "it"
	if lang != nil {
		locale = *lang
	}
	if path, ok := b.images.Lookup(locale, sig.Steps); ok {
		b.sendPhoto(ctx, chatID, path, caption)
	} else {
		b.send(ctx, chatID, caption, nil)
	}

	b.send(ctx, chatID, b.loc.T(lang, "start_has_key", nil), b.mainKeyboard(lang))
}

func (b *Bot) handleSubscription(ctx context.Context, chatID, userID int64, lang *string) {
	sub, err := b.svc.SubscriptionInfo(ctx, userID)
	if err != nil {
		b.logger.Error("subscription lookup failed", "error", err)
		b.send(ctx, chatID, b.loc.T(lang, "error_general", nil), nil)
		return
	}

	switch {
	case !sub.HasKey && sub.Expired:
		b.send(ctx, chatID, b.loc.T(lang, "key_expired", nil), b.contactAdminKeyboard(lang))
	case !sub.HasKey:
		b.send(ctx, chatID, b.loc.T(lang, "subscription_no_active", nil), b.contactAdminKeyboard(lang))
	case sub.ExpiresAt != nil:
		b.send(ctx, chatID, b.loc.T(lang, "subscription_active_expires", map[string]string{
			"expiryDate": sub.ExpiresAt.UTC().Format("2006-01-02 15:04 MST"),
		}), b.mainKeyboard(lang))
	default:
		b.send(ctx, chatID, b.loc.T(lang, "subscription_active_lifetime", nil), b.mainKeyboard(lang))
	}
}

// handleText processes free text. Bound users get the menu back (with the
// usual lazy expiry check); unbound users' text is a key submission attempt.
func (b *Bot) handleText(ctx context.Context, chatID, userID int64, lang *string, user *domain.User, text string) {
	if user.BoundKeyID != nil {
		sub, err := b.svc.SubscriptionInfo(ctx, userID)
		if err != nil {
			b.logger.Error("subscription lookup failed", "error", err)
			b.send(ctx, chatID, b.loc.T(lang, "error_general", nil), nil)
			return
		}
		if sub.HasKey {
			b.send(ctx, chatID, b.loc.T(lang, "start_has_key", nil), b.mainKeyboard(lang))
			b.send(ctx, chatID, b.loc.T(lang, "commands_info", nil), nil)
		} else {
			b.send(ctx, chatID, b.loc.T(lang, "key_expired", nil), b.contactAdminKeyboard(lang))
		}
		return
	}

	result, err := b.svc.Claim(ctx, userID, text)
	if err != nil {
		b.logger.Error("claim failed", "error", err)
		b.send(ctx, chatID, b.loc.T(lang, "error_general", nil), nil)
		return
	}

	switch result {
	case ports.ClaimActivated:
		b.send(ctx, chatID, b.loc.T(lang, "key_activated", nil), b.mainKeyboard(lang))
		b.send(ctx, chatID, b.loc.T(lang, "commands_info", nil), nil)
	case ports.ClaimNotActive:
		b.send(ctx, chatID, b.loc.T(lang, "key_invalid_not_active", nil), b.contactAdminKeyboard(lang))
	default:
		b.send(ctx, chatID, b.loc.T(lang, "invalid_key_or_used", nil), nil)
	}
}

func (b *Bot) send(ctx context.Context, chatID int64, text string, keyboard [][]ports.Button) {
	if err := b.tr.SendText(ctx, chatID, text, keyboard); err != nil {
		metrics.SendFailures.Inc()
		b.logger.Error("sendMessage failed", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) sendPhoto(ctx context.Context, chatID int64, path, caption string) {
	if err := b.tr.SendPhoto(ctx, chatID, path, caption); err != nil {
		metrics.SendFailures.Inc()
		b.logger.Error("sendPhoto failed", "chat_id", chatID, "error", err)
	}
}
