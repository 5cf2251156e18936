// AngelaMos | 2026
// tier.go

package plan

// Tier is a subscription level. The set is closed: anything read from storage
// that is not one of the constants below is treated as Free for limits and
// customization.
type Tier string

const (
	Free     Tier = "free"
	Starter  Tier = "starter"
	Pro      Tier = "pro"
	Business Tier = "business"
)

const DefaultTier = Free

var monthlyLimits = map[Tier]int64{
	Free:     100,
	Starter:  2500,
	Pro:      10000,
	Business: 100000,
}

var pricing = map[Tier]string{
	Free:     "100 QRs/month",
	Starter:  "$5/month - 2,500 QRs",
	Pro:      "$15/month - 10,000 QRs + features",
	Business: "$50/month - 100,000 QRs + everything",
}

func (t Tier) Valid() bool {
	_, ok := monthlyLimits[t]
	return ok
}

// MonthlyLimit returns the number of artifacts the tier may issue per calendar
// month. Unknown tiers get the default tier's limit.
func (t Tier) MonthlyLimit() int64 {
	if limit, ok := monthlyLimits[t]; ok {
		return limit
	}
	return monthlyLimits[DefaultTier]
}

// CanCustomize reports whether colour substitution applies to renders.
func (t Tier) CanCustomize() bool {
	return t == Pro || t == Business
}

func (t Tier) String() string {
	return string(t)
}

func PricingTable() map[string]string {
	table := make(map[string]string, len(pricing))
	for tier, desc := range pricing {
		table[string(tier)] = desc
	}
	return table
}
