package contextutils

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// IsValidFingerprint checks that a fingerprint is a reasonable opaque
// identifier: printable, no whitespace, bounded length.
func IsValidFingerprint(fingerprint string) bool {
	return validate.Var(fingerprint, "required,excludesall= \t\n\r,max=256,printascii") == nil
}

// IsValidIPAddress checks if a string is a valid IPv4 or IPv6 address
func IsValidIPAddress(ip string) bool {
	return validate.Var(ip, "ip") == nil
}
