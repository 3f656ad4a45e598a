package util

import "time"

// EffectiveTime resolves the client-or-server clock question once per
// request. A parseable client timestamp is authoritative, server time is the
// fallback.
func EffectiveTime(clientTime *time.Time) time.Time {
	if clientTime != nil && !clientTime.IsZero() {
		return *clientTime
	}

	return time.Now()
}
