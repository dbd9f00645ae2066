package subscription

import (
	"fmt"
	"math"
	"time"
)

type Status string

const (
	StatusActive      Status = "active"
	StatusGracePeriod Status = "grace_period"
	StatusExpired     Status = "expired"
)

// Snapshot is the account-service view of the subscription at fetch time.
// The server-reported status is authoritative for the expired and
// grace_period states; EndDate only drives client-side day arithmetic.
type Snapshot struct {
	Status  Status
	EndDate *time.Time
	IsAdmin bool
}

type Decision struct {
	Status         Status
	DaysRemaining  int
	CanCreateNew   bool
	ExpiryAdvisory bool
	Banner         string
}

// Evaluate derives the access decision from a snapshot and an explicit
// evaluation instant. It is pure: no I/O, no caching, safe to call at
// every decision point.
func Evaluate(snap Snapshot, now time.Time) Decision {
	if snap.EndDate == nil {
		return Decision{Status: StatusExpired, Banner: bannerExpired}
	}
	days := daysUntil(*snap.EndDate, now)

	switch snap.Status {
	case StatusExpired:
		return Decision{Status: StatusExpired, DaysRemaining: days, Banner: bannerExpired}
	case StatusGracePeriod:
		return Decision{
			Status:        StatusGracePeriod,
			DaysRemaining: days,
			CanCreateNew:  true,
			Banner:        fmt.Sprintf(bannerGracePeriodFormat, absInt(days)),
		}
	}

	d := Decision{Status: StatusActive, DaysRemaining: days, CanCreateNew: true}
	if days > 0 && days <= 7 {
		d.ExpiryAdvisory = true
		d.Banner = fmt.Sprintf(bannerExpiresSoonFormat, days, pluralSuffix(days))
	}
	return d
}

// daysUntil rounds toward later so a partial day still counts as a full
// day remaining.
func daysUntil(endDate, now time.Time) int {
	return int(math.Ceil(endDate.Sub(now).Hours() / 24))
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func pluralSuffix(n int) string {
	if n > 1 {
		return "s"
	}
	return ""
}
