// Package idnax contains IDNA extensions.
package idnax

import "golang.org/x/net/idna"

// ToASCII converts a domain name to its punycode representation using
// the lookup profile, i.e., the profile a client should use to resolve
// names typed by a user.
func ToASCII(domain string) (string, error) {
	return idna.Lookup.ToASCII(domain)
}
