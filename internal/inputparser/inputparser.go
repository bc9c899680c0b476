// Package inputparser parses the URL typed by the user.
package inputparser

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/lbprobe/lbprobe/internal/idnax"
)

// Config contains config for parsing the input. The zero value accepts
// http and https URLs and uses http for scheme-less input.
type Config struct {
	// AcceptedSchemes is the OPTIONAL list of accepted URL schemes.
	AcceptedSchemes []string

	// DefaultScheme is the OPTIONAL scheme to use when the input
	// does not contain any scheme (e.g., "example.com/index.html").
	DefaultScheme string
}

// DefaultAcceptedSchemes are the schemes accepted by the zero Config.
var DefaultAcceptedSchemes = []string{"http", "https"}

// ErrEmptyInput indicates that the input is empty.
var ErrEmptyInput = errors.New("inputparser: empty input")

// ErrEmptyHostname indicates that the URL.Hostname() is empty.
var ErrEmptyHostname = errors.New("inputparser: empty URL.Hostname()")

// ErrIDNAToASCII indicates that we cannot convert IDNA to ASCII.
var ErrIDNAToASCII = errors.New("inputparser: cannot convert IDNA to ASCII")

// ErrURLParse indicates that we could not parse the URL.
var ErrURLParse = errors.New("inputparser: cannot parse URL")

// ErrUnsupportedScheme indicates that we do not support the given URL.Scheme.
var ErrUnsupportedScheme = errors.New("inputparser: unsupported URL.Scheme")

// Parse parses the input using the given config and returns
// to the caller either the resulting URL or an error. A nil
// config is equivalent to the zero config.
func Parse(config *Config, input string) (*url.URL, error) {
	if config == nil {
		config = &Config{}
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyInput
	}

	// Users often type just the domain name.
	if !strings.Contains(input, "://") {
		input = config.defaultScheme() + "://" + input
	}

	URL, err := url.Parse(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrURLParse, err.Error())
	}
	if URL.Hostname() == "" {
		return nil, ErrEmptyHostname
	}
	if !config.isSchemeOK(URL.Scheme) {
		return nil, ErrUnsupportedScheme
	}
	return maybeConvertHostnameToASCII(URL)
}

// Hostname returns the hostname of URL without the port.
func Hostname(URL *url.URL) string {
	return URL.Hostname()
}

func (c *Config) defaultScheme() string {
	if c.DefaultScheme != "" {
		return c.DefaultScheme
	}
	return "http"
}

func (c *Config) isSchemeOK(scheme string) bool {
	accepted := c.AcceptedSchemes
	if len(accepted) <= 0 {
		accepted = DefaultAcceptedSchemes
	}
	for _, candidate := range accepted {
		if strings.EqualFold(scheme, candidate) {
			return true
		}
	}
	return false
}

// maybeConvertHostnameToASCII takes in input a URL and converts
// the URL.Host to become ASCII. This function MUTATES the input URL
// in place and returns either the mutated URL or an error.
func maybeConvertHostnameToASCII(URL *url.URL) (*url.URL, error) {
	hostname := URL.Hostname()

	// IP addresses do not need any conversion.
	if net.ParseIP(hostname) != nil {
		return URL, nil
	}

	asciiHostname, err := idnax.ToASCII(hostname)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrIDNAToASCII, err.Error())
	}

	if asciiHostname != hostname {
		if port := URL.Port(); port != "" {
			URL.Host = net.JoinHostPort(asciiHostname, port)
		} else {
			URL.Host = asciiHostname
		}
	}
	return URL, nil
}
