// Package geoip resolves client IPs to a country and city using a MaxMind database.
package geoip

import (
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/oschwald/geoip2-golang"
)

// Resolver looks up IP locations. The zero value and a nil *Resolver resolve nothing.
type Resolver struct {
	mu     sync.RWMutex
	reader *geoip2.Reader
	logger *slog.Logger
}

// Open loads a City database from path. An empty path returns a disabled resolver.
func Open(path string, logger *slog.Logger) (*Resolver, error) {
	r := &Resolver{logger: logger.With("component", "geoip")}
	if path == "" {
		r.logger.Info("geoip disabled, no database configured")
		return r, nil
	}

	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip database: %w", err)
	}
	r.reader = reader

	meta := reader.Metadata()
	r.logger.Info("geoip database loaded", "type", meta.DatabaseType, "epoch", meta.BuildEpoch)
	return r, nil
}

// Enabled reports whether a database is loaded.
func (r *Resolver) Enabled() bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.reader != nil
}

// Lookup returns the ISO country code and English city name for ip.
// Private, loopback and unparseable addresses resolve to empty strings.
func (r *Resolver) Lookup(ipStr string) (country, city string) {
	if r == nil {
		return "", ""
	}

	ip := net.ParseIP(ipStr)
	if ip == nil || ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() {
		return "", ""
	}

	r.mu.RLock()
	reader := r.reader
	r.mu.RUnlock()
	if reader == nil {
		return "", ""
	}

	record, err := reader.City(ip)
	if err != nil {
		r.logger.Debug("geoip lookup failed", "error", err)
		return "", ""
	}

	country = record.Country.IsoCode
	if name, ok := record.City.Names["en"]; ok {
		city = name
	}
	return country, city
}

// Close releases the database.
func (r *Resolver) Close() error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reader == nil {
		return nil
	}
	err := r.reader.Close()
	r.reader = nil
	return err
}
