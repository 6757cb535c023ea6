// Package i18n holds the static phrase catalog for user-facing replies.
package i18n

import (
	"strings"
)

const fallbackLocale = "it"

// Catalog implements ports.Localizer over an in-memory phrase table.
// Lookups never fail: unknown locales fall back to Italian and unknown keys
// render a visible placeholder so a missing translation is caught in chat,
// not hidden.
type Catalog struct {
	phrases map[string]map[string]string
}

func NewCatalog() *Catalog {
	return &Catalog{phrases: phrases}
}

// Locales returns the selectable locale codes.
func (c *Catalog) Locales() []string {
	return []string{"it", "de", "fr"}
}

// Supported reports whether the code is a selectable locale.
func (c *Catalog) Supported(code string) bool {
	_, ok := c.phrases[code]
	return ok
}

func (c *Catalog) T(locale *string, key string, params map[string]string) string {
	var phrase string
	var ok bool
	if locale != nil {
		phrase, ok = c.phrases[*locale][key]
	}
	if !ok {
		phrase, ok = c.phrases[fallbackLocale][key]
	}
	if !ok {
		return "[missing: " + key + "]"
	}

	for name, value := range params {
		phrase = strings.ReplaceAll(phrase, "{{"+name+"}}", value)
	}
	return phrase
}

var phrases = map[string]map[string]string{
	"it": {
		"start_welcome_initial_prompt": "Ciao! Benvenuto. Per favore, scegli la tua lingua per continuare:",
		"start_welcome":                "Ciao! Sono il tuo bot per i suggerimenti di gioco. Per accedere ai segnali, inserisci la tua chiave di accesso unica.",
		"start_has_key":                "Puoi usare le seguenti opzioni:",
		"main_menu_button_signal":      "Dai Segnale",
		"main_menu_button_subscription": "Info Abbonamento",
		"main_menu_button_change_lang": "Cambia Lingua",
		"generating_signal":            "Generazione segnale in corso... Attendere prego.",
		"error_general":                "Si è verificato un errore. Riprova più tardi.",
		"no_active_key":                "Non hai una chiave di accesso attiva. Inseriscila.",
		"key_expired":                  "La tua chiave di accesso è scaduta. Inserisci una nuova chiave o contatta l'amministratore.",
		"limit_exceeded":               "Hai superato il limite di segnali giornalieri ({{limit}} al giorno). Riprova più tardi.",
		"contact_admin_button":         "Contatta l'Amministratore",
		"subscription_no_active":       "Attualmente non hai un abbonamento attivo. Attiva una chiave di accesso per ottenerne uno.",
		"subscription_active_expires":  "Il tuo abbonamento è attivo!\nScade il: {{expiryDate}}",
		"subscription_active_lifetime": "Nessuna scadenza (accesso a vita).",
		"invalid_key_or_used":          "Chiave non valida o già utilizzata. Inserisci una chiave unica valida.",
		"key_activated":                "Chiave attivata con successo! Ora puoi ricevere i segnali.",
		"admin_no_permission":          "Non hai il permesso di usare questo comando.",
		"admin_generate_key_format":    "Formato errato. Usa: /generate_key [2days|4days|week|month|forever]",
		"admin_key_generated":          "Nuova chiave generata: `{{key}}`\nScade: {{expiresAt}}",
		"admin_key_generated_never":    "Mai",
		"change_lang_message":          "Per favore, scegli la tua lingua:",
		"language_set":                 "Lingua impostata su italiano.",
		"commands_info":                "Puoi anche usare i comandi: /give_signal e /subscription_info direttamente dal menu di Telegram.",
		"key_invalid_not_active":       "Questa chiave non è più valida.",
		"please_choose_language":       "Per favore, scegli la tua lingua per continuare.",
		"signal_message_format":        "🟢 BET\n🔥 {{steps}} PASSAGGI DI CASSA AUTOMATICA\n✨ Livello: {{level}}",
		"level_easy":                   "Facile",
		"level_medium":                 "Medio",
		"level_hard":                   "Difficile",
		"level_extra_hard":             "Extra Difficile",
	},
	"de": {
		"start_welcome_initial_prompt": "Hallo! Willkommen. Bitte wählen Sie Ihre Sprache, um fortzufahren:",
		"start_welcome":                "Hallo! Ich bin dein Spielhinweis-Bot. Um Zugriff auf Signale zu erhalten, gib bitte deinen eindeutigen Zugangsschlüssel ein.",
		"start_has_key":                "Du kannst die folgenden Optionen verwenden:",
		"main_menu_button_signal":      "Signal geben",
		"main_menu_button_subscription": "Abonnement-Info",
		"main_menu_button_change_lang": "Sprache ändern",
		"generating_signal":            "Signal wird generiert... Bitte warten Sie einen Moment.",
		"error_general":                "Es ist ein Fehler aufgetreten. Bitte versuchen Sie es später erneut.",
		"no_active_key":                "Du hast keinen aktiven Zugangsschlüssel. Bitte gib ihn ein.",
		"key_expired":                  "Dein Zugangsschlüssel ist abgelaufen. Bitte gib einen neuen Schlüssel ein oder kontaktiere den Administrator.",
		"limit_exceeded":               "Du hast das tägliche Signallimit ({{limit}} pro Tag) überschritten. Bitte versuche es später erneut.",
		"contact_admin_button":         "Admin kontaktieren",
		"subscription_no_active":       "Du hast derzeit kein aktives Abonnement. Bitte aktiviere einen Zugangsschlüssel, um eines zu erhalten.",
		"subscription_active_expires":  "Dein Abonnement ist aktiv!\nEs läuft ab am: {{expiryDate}}",
		"subscription_active_lifetime": "Kein Ablaufdatum (lebenslanger Zugriff).",
		"invalid_key_or_used":          "Ungültiger Schlüssel oder bereits verwendet. Bitte gib einen gültigen, eindeutigen Schlüssel ein.",
		"key_activated":                "Schlüssel erfolgreich aktiviert! Du kannst jetzt Signale empfangen.",
		"admin_no_permission":          "Du hast keine Berechtigung, diesen Befehl zu verwenden.",
		"admin_generate_key_format":    "Falsches Format. Verwende: /generate_key [2days|4days|week|month|forever]",
		"admin_key_generated":          "Neuer Schlüssel generiert: `{{key}}`\nLäuft ab: {{expiresAt}}",
		"admin_key_generated_never":    "Nie",
		"change_lang_message":          "Bitte wählen Sie Ihre Sprache:",
		"language_set":                 "Sprache auf Deutsch geändert.",
		"commands_info":                "Du kannst auch die Befehle: /give_signal und /subscription_info direkt über das Telegram-Menü verwenden.",
		"key_invalid_not_active":       "Dieser Schlüssel ist nicht mehr gültig.",
		"please_choose_language":       "Bitte wählen Sie Ihre Sprache, um fortzufahren.",
		"signal_message_format":        "🟢 BET\n🔥 {{steps}} SCHRITTE AUTO CASH OUT\n✨ Level: {{level}}",
		"level_easy":                   "Leicht",
		"level_medium":                 "Mittel",
		"level_hard":                   "Schwer",
		"level_extra_hard":             "Extra Schwer",
	},
	"fr": {
		"start_welcome_initial_prompt": "Bonjour! Bienvenue. Veuillez choisir votre langue pour continuer :",
		"start_welcome":                "Bonjour! Je suis votre bot d'indices de jeu. Pour accéder aux signaux, veuillez entrer votre clé d'accès unique.",
		"start_has_key":                "Vous pouvez utiliser les options suivantes :",
		"main_menu_button_signal":      "Donner un Signal",
		"main_menu_button_subscription": "Infos Abonnement",
		"main_menu_button_change_lang": "Changer la Langue",
		"generating_signal":            "Génération du signal... Veuillez patienter.",
		"error_general":                "Une erreur est survenue. Veuillez réessayer plus tard.",
		"no_active_key":                "Vous n'avez pas de clé d'accès active. Veuillez l'entrer.",
		"key_expired":                  "Votre clé d'accès a expiré. Veuillez entrer une nouvelle clé ou contacter l'administrateur.",
		"limit_exceeded":               "Vous avez dépassé la limite de signaux quotidiens ({{limit}} par jour). Veuillez réessayer plus tard.",
		"contact_admin_button":         "Contacter l'Administrateur",
		"subscription_no_active":       "Vous n'avez actuellement pas d'abonnement actif. Veuillez activer une clé d'accès pour en obtenir un.",
		"subscription_active_expires":  "Votre abonnement est actif !\nExpire le : {{expiryDate}}",
		"subscription_active_lifetime": "Aucune expiration (accès à vie).",
		"invalid_key_or_used":          "Clé invalide ou déjà utilisée. Veuillez entrer une clé unique valide.",
		"key_activated":                "Clé activée avec succès ! Vous pouvez maintenant recevoir des signaux.",
		"admin_no_permission":          "Vous n'avez pas la permission d'utiliser cette commande.",
		"admin_generate_key_format":    "Format incorrect. Utilisez : /generate_key [2days|4days|week|month|forever]",
		"admin_key_generated":          "Nouvelle clé générée : `{{key}}`\nExpire : {{expiresAt}}",
		"admin_key_generated_never":    "Jamais",
		"change_lang_message":          "Veuillez choisir votre langue :",
		"language_set":                 "Langue définie sur le français.",
		"commands_info":                "Vous pouvez également utiliser les commandes : /give_signal et /subscription_info directement depuis le menu Telegram.",
		"key_invalid_not_active":       "Cette clé n'est plus valide.",
		"please_choose_language":       "Veuillez choisir votre langue pour continuer.",
		"signal_message_format":        "🟢 BET\n🔥 {{steps}} ÉTAPES AUTO CASH OUT\n✨ Niveau: {{level}}",
		"level_easy":                   "Facile",
		"level_medium":                 "Moyen",
		"level_hard":                   "Difficile",
		"level_extra_hard":             "Extra Difficile",
	},
}
