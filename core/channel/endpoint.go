package channel

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
)

// Endpoint derives the socket address from the page the relay was launched
// for: the page host with the panel port, over wss when the page is served
// over https.
func Endpoint(pageURL string, panelPort int) (string, error) {
	page, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid page url: %w", err)
	}
	if page.Hostname() == "" {
		return "", fmt.Errorf("invalid page url %q: missing host", pageURL)
	}

	scheme := "ws"
	if page.Scheme == "https" {
		scheme = "wss"
	}

	return (&url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(page.Hostname(), strconv.Itoa(panelPort)),
	}).String(), nil
}
