package logger

import (
	"log/slog"
	"strings"
)

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the user identifier under the key "user_id".
func UserID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("user_id", id)
}

// Component records the originating component under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Email records an obfuscated email address under the key "email".
// Only the first two characters of the local part are kept, so log output
// never contains a full address: "ab****@example.com".
func Email(email string) slog.Attr {
	return slog.String("email", ObfuscateEmail(email))
}

// ObfuscateEmail masks the local part of an email address, keeping the
// first two characters. Strings without exactly one "@" are fully masked.
func ObfuscateEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 || strings.Count(email, "@") != 1 {
		return strings.Repeat("*", len(email))
	}

	local, domain := email[:at], email[at+1:]
	keep := 2
	if keep > len(local) {
		keep = len(local)
	}
	return local[:keep] + strings.Repeat("*", len(local)-keep) + "@" + domain
}
