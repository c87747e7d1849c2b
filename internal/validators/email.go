package validators

import (
	"net"
	"net/mail"
	"strings"
)

// EmailCheck reports whether an address is acceptable for a new account.
type EmailCheck func(email string) bool

// NormalizeEmail lowercases and trims an address before it is stored or
// looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsEmailSyntaxValid accepts only bare addresses ("a@b.c"), not display
// forms like "Name <a@b.c>".
func IsEmailSyntaxValid(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	return at > 0 && strings.Contains(email[at+1:], ".")
}

func IsEmailDomainValid(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return false
	}

	domain := email[at+1:]

	if mx, err := net.LookupMX(domain); err == nil && len(mx) > 0 {
		return true
	}

	if ips, err := net.LookupIP(domain); err == nil && len(ips) > 0 {
		return true
	}

	return false
}

// IsEmailValid is the default EmailCheck: syntax first, then DNS.
func IsEmailValid(email string) bool {
	return IsEmailSyntaxValid(email) && IsEmailDomainValid(email)
}
