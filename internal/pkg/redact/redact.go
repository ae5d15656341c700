// redact - маскирование персональных данных и секретов перед логированием.
package redact

import (
	"net/url"
	"sort"
	"strings"
)

// Secret - замена значения секрета в логах.
const Secret = "[REDACTED]"

// Ключи query/форм, значения которых не попадают в логи (без учёта регистра).
var sensitive = map[string]struct{}{
	"token":        {},
	"password":     {},
	"accesstoken":  {},
	"refreshtoken": {},
}

// Email оставляет первые две руны локальной части и домен: "an***@example.com".
// Короткая локальная часть и невалидный адрес маскируются целиком.
func Email(s string) string {
	local, domain, ok := strings.Cut(s, "@")
	if !ok || strings.Contains(domain, "@") {
		return "***"
	}

	r := []rune(local)
	if len(r) > 2 {
		return string(r[:2]) + "***@" + domain
	}

	return "***@" + domain
}

// IsSensitive - относится ли ключ к секретам.
func IsSensitive(key string) bool {
	_, ok := sensitive[strings.ToLower(key)]
	return ok
}

// Query кодирует v, заменяя значения секретных ключей на Secret.
// Ключи идут в отсортированном порядке, как у url.Values.Encode.
func Query(v url.Values) string {
	if len(v) == 0 {
		return ""
	}

	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		for _, val := range v[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			if IsSensitive(k) {
				val = Secret
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(val))
		}
	}

	return b.String()
}
