package riot

import "strings"

// Routing regions used by account-v1 and match-v5.
const (
	RoutingAmericas = "americas"
	RoutingAsia     = "asia"
	RoutingEurope   = "europe"
	RoutingSEA      = "sea"
)

// platformRouting maps a platform id to the routing region that serves its
// match history.
var platformRouting = map[string]string{
	"BR1":  RoutingAmericas,
	"EUN1": RoutingEurope,
	"EUW1": RoutingEurope,
	"JP1":  RoutingAsia,
	"KR":   RoutingAsia,
	"LA1":  RoutingAmericas,
	"LA2":  RoutingAmericas,
	"NA1":  RoutingAmericas,
	"OC1":  RoutingSEA,
	"TR1":  RoutingEurope,
	"RU":   RoutingEurope,
}

// RoutingFor returns the routing region for a platform id such as "EUW1".
// Unknown platforms fall back to europe; ok reports whether the platform was known.
func RoutingFor(platform string) (routing string, ok bool) {
	r, ok := platformRouting[strings.ToUpper(strings.TrimSpace(platform))]
	if !ok {
		return RoutingEurope, false
	}
	return r, true
}

// IsRouting reports whether s names a routing region.
func IsRouting(s string) bool {
	switch s {
	case RoutingAmericas, RoutingAsia, RoutingEurope, RoutingSEA:
		return true
	}
	return false
}
