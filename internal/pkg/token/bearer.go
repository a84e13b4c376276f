package token

import "strings"

// FromAuthorization extracts the credential from an Authorization header
// value. The scheme is matched case-insensitively; ok is false when the
// header is not a bearer header or carries no credential.
func FromAuthorization(header string) (raw string, ok bool) {
	scheme, rest, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	raw = strings.TrimSpace(rest)
	return raw, raw != ""
}
