package web

import (
	"net"
	"net/url"
)

// AdvertisedURL rewrites a listener URL whose host is unspecified
// ("0.0.0.0", "::" or empty) to use hostIP, so it can be shown to a user.
// Anything that does not parse is returned unchanged.
func AdvertisedURL(listenURL, hostIP string) string {
	u, err := url.Parse(listenURL)
	if err != nil || u.Host == "" {
		return listenURL
	}
	host, port, err := net.SplitHostPort(u.Host)
	if err != nil {
		return listenURL
	}
	if host != "" {
		if ip := net.ParseIP(host); ip == nil || !ip.IsUnspecified() {
			return listenURL
		}
	}
	if hostIP == "" {
		hostIP = "127.0.0.1"
	}
	u.Host = net.JoinHostPort(hostIP, port)
	return u.String()
}
