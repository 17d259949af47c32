package net

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
)

// ServiceType is the mDNS service a hosting relay advertises.
const ServiceType = "_liveboard._tcp"

const boardTXTPrefix = "board="

// Host is a relay found on the local network.
type Host struct {
	Name  string
	Addr  string
	Board string
}

// Advertise announces a relay listening on port that hosts boardID. Shut the
// returned server down to withdraw the announcement.
func Advertise(port int, boardID string) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}

	var ips []net.IP
	if ip := firstIPv4(); !ip.IsLoopback() {
		ips = []net.IP{ip}
	}
	service, err := mdns.NewMDNSService(host, ServiceType, "", "", port, ips,
		[]string{"LiveBoard", boardTXTPrefix + boardID})
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	return server, nil
}

// Browse looks for relays for up to timeout and returns the ones that answered.
// It stops early when ctx is cancelled.
func Browse(ctx context.Context, timeout time.Duration) ([]Host, error) {
	entries := make(chan *mdns.ServiceEntry, 16)
	errCh := make(chan error, 1)
	go func() {
		params := mdns.DefaultParams(ServiceType)
		params.Entries = entries
		params.Timeout = timeout
		params.DisableIPv6 = true
		errCh <- mdns.Query(params)
		close(entries)
	}()

	var hosts []Host
	seen := make(map[string]bool)
	for {
		select {
		case <-ctx.Done():
			go func() {
				for range entries {
				}
			}()
			return hosts, ctx.Err()
		case e, ok := <-entries:
			if !ok {
				if err := <-errCh; err != nil {
					return hosts, fmt.Errorf("mDNS query failed: %w", err)
				}
				return hosts, nil
			}
			h, ok := hostFromEntry(e)
			if !ok || seen[h.Addr] {
				continue
			}
			seen[h.Addr] = true
			hosts = append(hosts, h)
		}
	}
}

func hostFromEntry(e *mdns.ServiceEntry) (Host, bool) {
	if e == nil || e.AddrV4 == nil || e.Port == 0 {
		return Host{}, false
	}
	h := Host{
		Name: strings.TrimSuffix(e.Name, "."+ServiceType+".local."),
		Addr: net.JoinHostPort(e.AddrV4.String(), fmt.Sprint(e.Port)),
	}
	for _, field := range e.InfoFields {
		if strings.HasPrefix(field, boardTXTPrefix) {
			h.Board = strings.TrimPrefix(field, boardTXTPrefix)
		}
	}
	return h, true
}

func firstIPv4() net.IP {
	ifaces, _ := net.Interfaces()
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, _ := iface.Addrs()
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok && ipnet.IP.To4() != nil {
				return ipnet.IP.To4()
			}
		}
	}
	return net.IPv4(127, 0, 0, 1)
}
