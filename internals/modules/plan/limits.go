package plan

type Tier string

const (
	Free       Tier = "FREE"
	Starter    Tier = "STARTER"
	Pro        Tier = "PRO"
	Enterprise Tier = "ENTERPRISE"
)

// Limits is a pure lookup result. MaxMonitors of -1 means unlimited.
type Limits struct {
	MaxMonitors     int32
	HistoryDays     int32
	WebhooksEnabled bool
	SMSEnabled      bool
}

var limitsByTier = map[Tier]Limits{
	Free: {
		MaxMonitors:     5,
		HistoryDays:     7,
		WebhooksEnabled: false,
		SMSEnabled:      false,
	},
	Starter: {
		MaxMonitors:     20,
		HistoryDays:     30,
		WebhooksEnabled: true,
		SMSEnabled:      false,
	},
	Pro: {
		MaxMonitors:     100,
		HistoryDays:     90,
		WebhooksEnabled: true,
		SMSEnabled:      true,
	},
	Enterprise: {
		MaxMonitors:     -1,
		HistoryDays:     365,
		WebhooksEnabled: true,
		SMSEnabled:      true,
	},
}

// LimitsFor falls back to the FREE tier for unknown values so a bad row
// never grants entitlements.
func LimitsFor(tier Tier) Limits {
	if l, ok := limitsByTier[tier]; ok {
		return l
	}
	return limitsByTier[Free]
}

func CanCreateMonitor(tier Tier, currentCount int32) bool {
	limit := LimitsFor(tier).MaxMonitors
	if limit == -1 {
		return true
	}
	return currentCount < limit
}

// AllTiers is used by the retention pruner to walk every retention window.
func AllTiers() []Tier {
	return []Tier{Free, Starter, Pro, Enterprise}
}
