// redact маскирует чувствительные значения перед записью в лог.
package redact

import "unicode/utf8"

// Token — токен проверки/капчи никогда не пишется в лог.
func Token() string { return "[REDACTED_TOKEN]" }

// Secret — серверный ключ сервиса проверки.
func Secret() string { return "[REDACTED_SECRET]" }

// Voter оставляет первые 4 символа идентификатора голосующего (device/session id),
// этого хватает для корреляции записей.
func Voter(id string) string {
	if utf8.RuneCountInString(id) <= 4 {
		return "***"
	}

	runes := []rune(id)
	return string(runes[:4]) + "***"
}
