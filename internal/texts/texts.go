// Package texts holds the user-facing notification templates in the bot's
// supported languages. Lookup goes through a language matcher, so any
// reasonable stored tag ("ru", "ru-RU", unknown junk) resolves to the best
// supported table with Turkmen as the fallback.
package texts

import (
	"fmt"

	"golang.org/x/text/language"
)

// Key identifies one notification template.
type Key string

const (
	KeyAutoPaused    Key = "auto_paused"
	KeyTrialExpired  Key = "trial_expired_removed"
	KeyPostDeleted   Key = "post_deleted"
	KeyBanned        Key = "banned"
	KeyUnbanned      Key = "unbanned"
	KeyStarsReceived Key = "stars_received" // takes the star amount
)

// supported order matters: index 0 is the fallback.
var supported = []language.Tag{
	language.MustParse("tk"),
	language.Russian,
}

var matcher = language.NewMatcher(supported)

var tables = []map[Key]string{
	{ // tk
		KeyAutoPaused:    "⚠️ Post kanala ugradylmady: bot kanalda admin däl ýa-da başga ýalňyşlyk boldy. Post pauza edildi.",
		KeyTrialExpired:  "⏳ Siziň free trial wagtyňyz gutardy — post awtomatiki pozuldy.",
		KeyPostDeleted:   "✅ Siziň postuňyz pozuldy.",
		KeyBanned:        "❌ Siz ban edildiňiz.",
		KeyUnbanned:      "✅ Siziň banyňyz aýryldy. Hoş geldiňiz!",
		KeyStarsReceived: "🔔 Hasabyňyza %v ⭐ geldi.",
	},
	{ // ru
		KeyAutoPaused:    "⚠️ Пост не отправлен в канал: бот не админ в канале или произошла другая ошибка. Пост поставлен на паузу.",
		KeyTrialExpired:  "⏳ Ваш пробный период закончился — пост удалён автоматически.",
		KeyPostDeleted:   "✅ Ваш пост удалён.",
		KeyBanned:        "❌ Вы забанены.",
		KeyUnbanned:      "✅ Бан снят. Добро пожаловать!",
		KeyStarsReceived: "🔔 На ваш счёт поступило %v ⭐.",
	},
}

// T returns the template for key in the closest supported language.
func T(lang string, key Key) string {
	_, idx := language.MatchStrings(matcher, lang)
	if s, ok := tables[idx][key]; ok {
		return s
	}
	return tables[0][key]
}

// Tf formats the template for key with args.
func Tf(lang string, key Key, args ...any) string {
	return fmt.Sprintf(T(lang, key), args...)
}
