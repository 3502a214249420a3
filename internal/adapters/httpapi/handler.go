package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/slack-go/slack"

	"pepeeats/internal/adapters/slackapi"
	"pepeeats/internal/domain"
	"pepeeats/internal/usecase/order"
	"pepeeats/internal/usecase/reminder"
)

// Config drží tajemství potřebná pro ověření příchozích požadavků.
type Config struct {
	SigningSecret  string
	ClientID       string
	ClientSecret   string
	AdminSecretKey string
	BaseURL        string
}

// SlackGateway je podmnožina Slack klienta, kterou handler potřebuje.
type SlackGateway interface {
	SendText(ctx context.Context, userID, text string) error
	OpenOrderModal(ctx context.Context, triggerID string, dishes []string, orderDate time.Time) error
	LookupUserByEmail(ctx context.Context, email string) (string, error)
}

var _ SlackGateway = (*slackapi.Client)(nil)

// Handler obsluhuje joby, Slack callbacky a administrační API.
type Handler struct {
	cfg         Config
	reminderUC  *reminder.Service
	orderUC     *order.Service
	menu        reminder.MenuProvider
	subscribers domain.SubscriberRepo
	settings    domain.SettingsRepo
	slack       SlackGateway
	oauthClient *http.Client
	log         zerolog.Logger
}

// NewHandler vytváří obslužnou vrstvu HTTP.
func NewHandler(
	cfg Config,
	reminderUC *reminder.Service,
	orderUC *order.Service,
	menu reminder.MenuProvider,
	subscribers domain.SubscriberRepo,
	settings domain.SettingsRepo,
	slackClient SlackGateway,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		cfg:         cfg,
		reminderUC:  reminderUC,
		orderUC:     orderUC,
		menu:        menu,
		subscribers: subscribers,
		settings:    settings,
		slack:       slackClient,
		oauthClient: &http.Client{Timeout: 10 * time.Second},
		log:         log,
	}
}

// Routes sestavuje router se všemi cestami aplikace.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Post("/jobs/daily-reminder", h.handleDailyReminder)
	r.Post("/jobs/morning-reminder", h.handleMorningReminder)
	r.Post("/slack/interactive", h.handleInteractive)
	r.Get("/slack/oauth/callback", h.handleOAuthCallback)
	r.Put("/api/v1/settings", h.handleSaveSettings)

	return r
}

// handleDailyReminder spouští rozeslání večerní připomínky. Benigní
// no-op výsledky (víkend, svátek, nedostupný jídelníček) vrací 200,
// aby plánovač zbytečně neopakoval.
func (h *Handler) handleDailyReminder(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reminderUC.Run(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("api: běh připomínky selhal")
		writeError(w, http.StatusInternalServerError, "reminder run failed")
		return
	}
	writeJSON(w, map[string]any{
		"run_id":  summary.RunID,
		"outcome": summary.Outcome,
		"sent":    summary.Sent,
		"skipped": summary.Skipped,
	})
}

func (h *Handler) handleMorningReminder(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reminderUC.RunMorning(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("api: ranní připomínka selhala")
		writeError(w, http.StatusInternalServerError, "morning run failed")
		return
	}
	writeJSON(w, map[string]any{
		"run_id":  summary.RunID,
		"outcome": summary.Outcome,
		"sent":    summary.Sent,
	})
}

// handleInteractive přijímá interakce ze Slacku: kliknutí na tlačítka
// a odeslání modálu. Podpis požadavku se ověřuje vždy.
func (h *Handler) handleInteractive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	if err := h.verifySignature(r.Header, body); err != nil {
		h.log.Warn().Err(err).Msg("api: neplatný podpis Slack požadavku")
		writeError(w, http.StatusUnauthorized, "invalid signature")
		return
	}

	r.Body = io.NopCloser(bytes.NewReader(body))
	payload := r.FormValue("payload")
	if payload == "" {
		writeError(w, http.StatusBadRequest, "missing payload")
		return
	}

	var callback slack.InteractionCallback
	if err := json.Unmarshal([]byte(payload), &callback); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	switch callback.Type {
	case slack.InteractionTypeBlockActions:
		h.handleBlockActions(w, r, callback)
	case slack.InteractionTypeViewSubmission:
		h.handleViewSubmission(w, r, callback)
	default:
		w.WriteHeader(http.StatusOK)
	}
}

func (h *Handler) verifySignature(header http.Header, body []byte) error {
	verifier, err := slack.NewSecretsVerifier(header, h.cfg.SigningSecret)
	if err != nil {
		return err
	}
	if _, err := verifier.Write(body); err != nil {
		return err
	}
	return verifier.Ensure()
}

func (h *Handler) handleBlockActions(w http.ResponseWriter, r *http.Request, callback slack.InteractionCallback) {
	ctx := r.Context()
	userID := callback.User.ID

	for _, action := range callback.ActionCallback.BlockActions {
		switch action.ActionID {
		case slackapi.ActionOpenOrderModal:
			orderDate, err := time.Parse("2006-01-02", action.Value)
			if err != nil {
				h.log.Warn().Str("value", action.Value).Msg("api: neplatné datum v tlačítku")
				continue
			}
			dishes, err := h.menu.MenuFor(ctx, orderDate)
			if err != nil {
				h.log.Error().Err(err).Msg("api: jídelníček pro modál nedostupný")
				h.notifyQuietly(ctx, userID, "Jídelníček se nepodařilo načíst, zkus to prosím za chvíli. 🙁")
				continue
			}
			if err := h.slack.OpenOrderModal(ctx, callback.TriggerID, dishes, orderDate); err != nil {
				h.log.Error().Err(err).Str("user", userID).Msg("api: otevření modálu selhalo")
			}

		case slackapi.ActionSnooze:
			orderDate, err := time.Parse("2006-01-02", action.Value)
			if err != nil {
				continue
			}
			if err := h.subscribers.SetSnooze(ctx, userID, orderDate); err != nil {
				h.log.Error().Err(err).Str("user", userID).Msg("api: uložení snoozu selhalo")
				continue
			}
			h.notifyQuietly(ctx, userID, "Dobře, dnes už tě rušit nebudu. 😴")

		case slackapi.ActionUnsubscribe:
			if err := h.subscribers.Remove(ctx, userID); err != nil {
				h.log.Error().Err(err).Str("user", userID).Msg("api: odhlášení selhalo")
				continue
			}
			h.notifyQuietly(ctx, userID, "Odhlásil jsem tě z připomínek. Kdyby sis to rozmyslel/a, víš, kde mě najít. 👋")

		case slackapi.ActionRateOrder:
			date, rating, ok := parseRatingValue(action.Value)
			if !ok {
				h.log.Warn().Str("value", action.Value).Msg("api: neplatná hodnota hodnocení")
				continue
			}
			if err := h.orderUC.RateOrder(ctx, userID, "", date, rating); err != nil {
				if errors.Is(err, domain.ErrOrderNotFound) {
					h.notifyQuietly(ctx, userID, "K tomuhle dni žádnou tvou objednávku neeviduji. 🤔")
					continue
				}
				h.log.Error().Err(err).Str("user", userID).Msg("api: uložení hodnocení selhalo")
				continue
			}
			h.notifyQuietly(ctx, userID, "Díky za hodnocení! 🐸")
		}
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleViewSubmission(w http.ResponseWriter, r *http.Request, callback slack.InteractionCallback) {
	if callback.View.CallbackID != slackapi.CallbackOrderSubmission {
		w.WriteHeader(http.StatusOK)
		return
	}

	orderDate, err := time.Parse("2006-01-02", callback.View.PrivateMetadata)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order date")
		return
	}

	if callback.View.State == nil {
		writeError(w, http.StatusBadRequest, "missing view state")
		return
	}
	values := callback.View.State.Values
	meal := values[slackapi.BlockMealSelection][slackapi.ActionMealSelection].SelectedOption.Value
	if meal == "" {
		writeError(w, http.StatusBadRequest, "missing meal selection")
		return
	}
	beneficiary := values[slackapi.BlockBeneficiary][slackapi.ActionBeneficiary].SelectedUser

	if err := h.orderUC.PlaceOrder(r.Context(), callback.User.ID, beneficiary, meal, orderDate); err != nil {
		h.log.Error().Err(err).Str("user", callback.User.ID).Msg("api: uložení objednávky selhalo")
		writeError(w, http.StatusInternalServerError, "failed to place order")
		return
	}

	w.WriteHeader(http.StatusOK)
}

// handleOAuthCallback dokončuje přihlášení k odběru přes tlačítko
// "Add to Slack": vymění kód za token a založí odběratele.
func (h *Handler) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing code")
		return
	}

	resp, err := slack.GetOAuthV2ResponseContext(r.Context(), h.oauthClient,
		h.cfg.ClientID, h.cfg.ClientSecret, code, h.cfg.BaseURL+"/slack/oauth/callback")
	if err != nil {
		h.log.Error().Err(err).Msg("api: výměna OAuth kódu selhala")
		writeError(w, http.StatusBadGateway, "oauth exchange failed")
		return
	}

	userID := resp.AuthedUser.ID
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing authed user")
		return
	}
	if err := h.subscribers.Add(r.Context(), userID); err != nil {
		h.log.Error().Err(err).Str("user", userID).Msg("api: založení odběratele selhalo")
		writeError(w, http.StatusInternalServerError, "failed to subscribe")
		return
	}

	h.notifyQuietly(r.Context(), userID,
		"Vítej v PepeEats! 🎉 Každý pracovní den ti připomenu, aby sis objednal/a oběd.")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte("<html><body><h3>Hotovo! Můžeš zavřít tohle okno a vrátit se do Slacku. 🐸</h3></body></html>"))
}

type saveSettingsRequest struct {
	Email                 string `json:"email"`
	NotificationFrequency string `json:"notification_frequency"`
	IsTestUser            bool   `json:"is_test_user"`
}

// handleSaveSettings ukládá nastavení uživatele. Přístup chrání
// sdílený administrační klíč v hlavičce.
func (h *Handler) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-Admin-Secret") != h.cfg.AdminSecretKey || h.cfg.AdminSecretKey == "" {
		writeError(w, http.StatusUnauthorized, "invalid admin secret")
		return
	}

	defer r.Body.Close()
	var req saveSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	frequency := domain.NotificationFrequency(req.NotificationFrequency)
	switch frequency {
	case domain.FrequencyDaily, domain.FrequencyEvery2h, domain.FrequencyEvery4h:
	case "":
		frequency = domain.FrequencyDaily
	default:
		writeError(w, http.StatusBadRequest, "unknown notification_frequency")
		return
	}

	settings := domain.UserSettings{
		Email:      req.Email,
		Frequency:  frequency,
		IsTestUser: req.IsTestUser,
	}
	if err := h.settings.Save(r.Context(), settings); err != nil {
		h.log.Error().Err(err).Str("email", req.Email).Msg("api: uložení nastavení selhalo")
		writeError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}

	// Nastavení je klíčované e-mailem, připomínky Slack ID. Bez
	// uloženého propojení by se uložené nastavení nikdy nepoužilo.
	if userID, err := h.slack.LookupUserByEmail(r.Context(), req.Email); err != nil {
		h.log.Warn().Err(err).Str("email", req.Email).Msg("api: e-mail se nepodařilo přeložit na Slack ID")
	} else if err := h.subscribers.SetGoogleEmail(r.Context(), userID, req.Email); err != nil {
		h.log.Error().Err(err).Str("user", userID).Msg("api: propojení e-mailu s odběratelem selhalo")
		writeError(w, http.StatusInternalServerError, "failed to link email")
		return
	}

	writeJSON(w, map[string]string{"status": "ok"})
}

// notifyQuietly posílá DM a případnou chybu jen loguje.
func (h *Handler) notifyQuietly(ctx context.Context, userID, text string) {
	if err := h.slack.SendText(ctx, userID, text); err != nil {
		h.log.Warn().Err(err).Str("user", userID).Msg("api: zpráva uživateli selhala")
	}
}

// parseRatingValue čte hodnotu tlačítka hodnocení ve tvaru "datum|skóre".
func parseRatingValue(value string) (time.Time, int, bool) {
	parts := strings.SplitN(value, "|", 2)
	if len(parts) != 2 {
		return time.Time{}, 0, false
	}
	date, err := time.Parse("2006-01-02", parts[0])
	if err != nil {
		return time.Time{}, 0, false
	}
	rating, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, 0, false
	}
	return date, rating, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": msg})
}
