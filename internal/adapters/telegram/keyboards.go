package telegram

import (
	"github.com/vbilous/signalbot/internal/core/ports"
)

// Callback data values routed by the bot.
const (
	cbGiveSignal       = "give_signal"
	cbSubscriptionInfo = "subscription_info"
	cbChangeLanguage   = "change_language"
)

// setLangData maps language-picker callback data to locale codes.
var setLangData = map[string]string{
	"set_lang_it": "it",
	"set_lang_de": "de",
	"set_lang_fr": "fr",
}

func (b *Bot) mainKeyboard(lang *string) [][]ports.Button {
	return [][]ports.Button{
		{
			{Label: b.loc.T(lang, "main_menu_button_signal", nil), Data: cbGiveSignal},
			{Label: b.loc.T(lang, "main_menu_button_subscription", nil), Data: cbSubscriptionInfo},
		},
		{
			{Label: b.loc.T(lang, "main_menu_button_change_lang", nil), Data: cbChangeLanguage},
		},
	}
}

func (b *Bot) contactAdminKeyboard(lang *string) [][]ports.Button {
	return [][]ports.Button{
		{{Label: b.loc.T(lang, "contact_admin_button", nil), URL: b.cfg.ContactURL}},
	}
}

func languageKeyboard() [][]ports.Button {
	return [][]ports.Button{
		{
			{Label: "Italiano", Data: "set_lang_it"},
			{Label: "Deutsch", Data: "set_lang_de"},
			{Label: "Français", Data: "set_lang_fr"},
		},
	}
}
