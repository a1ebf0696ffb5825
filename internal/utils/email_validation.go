package utils

import (
	"context"
	"net"
	"net/mail"
	"strings"
)

// isValidEmailSyntax does RFC-5322-*ish* syntax only (no DNS).
// mail.ParseAddress is surprisingly strict, but it accepts bare hostnames
// ("user@localhost"), so the dotted-domain rule is enforced separately.
func isValidEmailSyntax(e string) bool {
	addr, err := mail.ParseAddress(e)
	if err != nil {
		return false
	}
	// Reject display-name forms; the form submits a bare address.
	return addr.Address == e
}

// hasMX checks an MX record with the default resolver (pure Go, no CGO).
func hasMX(ctx context.Context, domain string) bool {
	mx, err := net.DefaultResolver.LookupMX(ctx, domain)
	return err == nil && len(mx) > 0
}

// ValidateEmail returns true if the string parses as a bare email address
// whose domain contains at least one dot, and, when checkMX is set, the
// domain publishes an MX record. Resolver errors with checkMX enabled are
// treated as "invalid" rather than returned: the submitter cannot fix them.
func ValidateEmail(ctx context.Context, email string, checkMX bool) bool {
	if !isValidEmailSyntax(email) {
		return false
	}

	parts := strings.SplitN(email, "@", 2)
	if len(parts) != 2 || !strings.Contains(parts[1], ".") {
		return false
	}

	if checkMX {
		return hasMX(ctx, parts[1])
	}
	return true
}
