package net

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// LinkScheme prefixes the share links a host hands out.
const LinkScheme = "liveboard"

// OutgoingIP finds the address other machines on the network can reach this
// host at. With no route out it falls back to the first non-loopback IPv4
// interface, then to loopback.
func OutgoingIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return firstIPv4().String()
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}

// ShareLink builds the link a peer pastes to join a hosted board.
func ShareLink(host string, port int, boardID string) string {
	u := url.URL{
		Scheme: LinkScheme,
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   "/" + boardID,
	}
	return u.String()
}

// ParseShareLink returns the relay address and board id in a share link. A
// bare host:port is accepted with an empty board id.
func ParseShareLink(link string) (addr, boardID string, err error) {
	u, err := url.Parse(link)
	if err != nil || u.Scheme != LinkScheme {
		if _, _, splitErr := net.SplitHostPort(link); splitErr == nil {
			return link, "", nil
		}
		return "", "", fmt.Errorf("invalid share link %q", link)
	}
	if u.Host == "" {
		return "", "", fmt.Errorf("invalid share link %q: missing host", link)
	}
	board, err := url.PathUnescape(strings.TrimLeft(u.Path, "/"))
	if err != nil {
		return "", "", fmt.Errorf("invalid share link %q: %w", link, err)
	}
	return u.Host, board, nil
}
