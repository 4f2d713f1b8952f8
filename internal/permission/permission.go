// Package permission tracks which named car-data permissions the user has
// granted. A missing permission only degrades the view; it is never fatal.
package permission

import (
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Permission is a fully qualified car-data permission name.
type Permission string

const (
	CarEnergy      Permission = "android.car.permission.CAR_ENERGY"
	CarSpeed       Permission = "android.car.permission.CAR_SPEED"
	CarMileage     Permission = "android.car.permission.CAR_MILEAGE"
	CarEnergyPorts Permission = "android.car.permission.CAR_ENERGY_PORTS"
)

// Required is the set the dashboard needs to render without gaps.
var Required = []Permission{CarEnergy, CarSpeed, CarMileage, CarEnergyPorts}

// ShortName strips the namespace: "CAR_MILEAGE".
func (p Permission) ShortName() string {
	s := string(p)
	if i := strings.LastIndex(s, "."); i >= 0 {
		return s[i+1:]
	}
	return s
}

// Parse accepts either the short ("CAR_SPEED") or the qualified form. The
// legacy "android.permission." namespace is mapped onto the car one.
func Parse(s string) (Permission, bool) {
	s = strings.TrimSpace(s)
	short := strings.ToUpper(s[strings.LastIndex(s, ".")+1:])
	for _, p := range Required {
		if p.ShortName() == short {
			return p, true
		}
	}
	return "", false
}

// ParseList parses a comma separated permission list, skipping unknown
// entries.
func ParseList(s string) []Permission {
	var out []Permission
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		if p, ok := Parse(part); ok {
			out = append(out, p)
		}
	}
	return out
}

// Store holds the granted set. Request stands in for the consent prompt on
// the phone: only permissions listed as grantable can become granted.
type Store struct {
	mu        sync.RWMutex
	granted   map[Permission]bool
	grantable map[Permission]bool
	logger    *logrus.Logger
}

// NewStore returns a Store with the given permissions already granted.
func NewStore(granted, grantable []Permission, logger *logrus.Logger) *Store {
	s := &Store{
		granted:   make(map[Permission]bool),
		grantable: make(map[Permission]bool),
		logger:    logger,
	}
	for _, p := range granted {
		s.granted[p] = true
	}
	for _, p := range grantable {
		s.grantable[p] = true
	}
	return s
}

// Granted reports whether p has been granted.
func (s *Store) Granted(p Permission) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.granted[p]
}

// Missing returns the subset of ps that is not granted, in order.
func (s *Store) Missing(ps ...Permission) []Permission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Permission
	for _, p := range ps {
		if !s.granted[p] {
			out = append(out, p)
		}
	}
	return out
}

// Request asks for ps and reports which ended up granted and which were
// rejected.
func (s *Store) Request(ps ...Permission) (granted, rejected []Permission) {
	s.mu.Lock()
	for _, p := range ps {
		if s.granted[p] || s.grantable[p] {
			s.granted[p] = true
			granted = append(granted, p)
		} else {
			rejected = append(rejected, p)
		}
	}
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"granted":  len(granted),
		"rejected": len(rejected),
	}).Info("Permission request completed")
	return granted, rejected
}
