package loyalty

import (
	"fmt"
	"math"

	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/models"
)

// TierRule is one row of the tier table. RateBP is the earn rate in basis points of the bill.
type TierRule struct {
	Tier     models.Tier
	MinSpend float64
	RateBP   int64
}

// Policy holds every tunable number of the loyalty program. Rules are ordered from the
// lowest tier upwards; a tier's rank is its index.
type Policy struct {
	Tiers []TierRule
	// Multipliers are percentages applied on top of the tier rate.
	Multipliers map[models.Category]int64
	// RedeemCapPercent bounds a bill discount as a share of the bill amount.
	RedeemCapPercent int64
}

func DefaultPolicy() Policy {
	p, _ := NewPolicy(25000, 100000, 25)
	return p
}

// NewPolicy builds the standard three-tier program with the given thresholds.
func NewPolicy(goldThreshold, platinumThreshold float64, redeemCapPercent int64) (Policy, error) {
	p := Policy{
		Tiers: []TierRule{
			{Tier: models.TierMember, MinSpend: 0, RateBP: 200},
			{Tier: models.TierGold, MinSpend: goldThreshold, RateBP: 500},
			{Tier: models.TierPlatinum, MinSpend: platinumThreshold, RateBP: 1000},
		},
		Multipliers: map[models.Category]int64{
			models.CategoryHygiene:  100,
			models.CategoryGeneral:  130,
			models.CategoryCosmetic: 180,
		},
		RedeemCapPercent: redeemCapPercent,
	}
	return p, p.Validate()
}

func (p Policy) Validate() error {
	if len(p.Tiers) == 0 {
		return fmt.Errorf("policy has no tiers")
	}
	if p.Tiers[0].MinSpend != 0 {
		return fmt.Errorf("lowest tier %s must start at 0, got %.2f", p.Tiers[0].Tier, p.Tiers[0].MinSpend)
	}
	for i := 1; i < len(p.Tiers); i++ {
		prev, cur := p.Tiers[i-1], p.Tiers[i]
		if cur.MinSpend <= prev.MinSpend {
			return fmt.Errorf("tier %s threshold %.2f must exceed %s threshold %.2f", cur.Tier, cur.MinSpend, prev.Tier, prev.MinSpend)
		}
		if cur.RateBP < prev.RateBP {
			return fmt.Errorf("tier %s earns less than %s", cur.Tier, prev.Tier)
		}
	}
	if p.RedeemCapPercent < 0 || p.RedeemCapPercent > 100 {
		return fmt.Errorf("redeem cap must be within 0..100, got %d", p.RedeemCapPercent)
	}
	return nil
}

// TierForSpend returns the highest tier whose threshold is met.
func (p Policy) TierForSpend(spend float64) models.Tier {
	tier := p.Tiers[0].Tier
	for _, r := range p.Tiers {
		if spend >= r.MinSpend {
			tier = r.Tier
		}
	}
	return tier
}

// Rank orders tiers. Unknown tiers rank below every known one.
func (p Policy) Rank(t models.Tier) int {
	for i, r := range p.Tiers {
		if r.Tier == t {
			return i
		}
	}
	return -1
}

// Promote returns whichever of current and earned ranks higher. Tiers never go down.
func (p Policy) Promote(current, earned models.Tier) models.Tier {
	if p.Rank(earned) > p.Rank(current) {
		return earned
	}
	return current
}

func (p Policy) rateBP(t models.Tier) int64 {
	if i := p.Rank(t); i >= 0 {
		return p.Tiers[i].RateBP
	}
	return p.Tiers[0].RateBP
}

// BaseRate is the tier's earn rate as a fraction of the bill. Unknown tiers earn the lowest rate.
func (p Policy) BaseRate(t models.Tier) float64 {
	return float64(p.rateBP(t)) / 10000
}

// CategoryMultiplier reports the earn multiplier of a treatment category. REWARD and unknown
// categories have none.
func (p Policy) CategoryMultiplier(c models.Category) (float64, bool) {
	pct, ok := p.Multipliers[c]
	return float64(pct) / 100, ok
}

// PointsForEarn is floor(amount * BaseRate(tier) * CategoryMultiplier(category)), computed
// without binary rounding error when amount is a whole number.
func (p Policy) PointsForEarn(amount float64, t models.Tier, c models.Category) int64 {
	pct, ok := p.Multipliers[c]
	if !ok || amount <= 0 {
		return 0
	}
	return scaledFloor(amount, p.rateBP(t)*pct, 1_000_000)
}

// RedeemCap is the most points a bill of the given amount may be discounted by.
func (p Policy) RedeemCap(amount float64) int64 {
	if amount <= 0 {
		return 0
	}
	return scaledFloor(amount, p.RedeemCapPercent, 100)
}

// MaxTransactionAmount bounds a single bill or reward cost.
const MaxTransactionAmount = 1e12

// scaledFloor returns floor(amount * num / den), saturating at math.MaxInt64.
func scaledFloor(amount float64, num, den int64) int64 {
	if whole := math.Trunc(amount); whole == amount && whole < float64(math.MaxInt64/max(num, 1)) {
		return int64(whole) * num / den
	}
	scaled := math.Floor(amount * float64(num) / float64(den))
	if scaled >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(scaled)
}

// RedemptionKind tells the processor how to size a REDEEM.
type RedemptionKind string

const (
	// RedemptionCatalog spends exactly the amount given as the reward's point cost.
	RedemptionCatalog RedemptionKind = "CATALOG"
	// RedemptionBillDiscount spends up to RedeemCap of the bill, bounded by the balance.
	RedemptionBillDiscount RedemptionKind = "BILL_DISCOUNT"
)

// RedemptionKindFor maps a transaction category to its redemption kind.
func RedemptionKindFor(c models.Category) RedemptionKind {
	if c == models.CategoryReward {
		return RedemptionCatalog
	}
	return RedemptionBillDiscount
}

func knownCategory(c models.Category) bool {
	switch c {
	case models.CategoryHygiene, models.CategoryGeneral, models.CategoryCosmetic, models.CategoryReward:
		return true
	}
	return false
}
