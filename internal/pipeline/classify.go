package pipeline

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"cre_catalog/internal/domain"
)

// MandatePolicy holds the investment-mandate rules applied to consolidated
// property data. Zero values fall back to the defaults in NewClassifier.
type MandatePolicy struct {
	RequiredFields  []string
	MinPrice        float64
	MaxPrice        float64
	MaxDaysOnMarket int
	AllowedTypes    []string
	EnforceTypes    bool
	TypeMapping     map[string]string
}

// DefaultMandatePolicy targets commercial-scale residential and mixed-use
// assets. Type enforcement is off: unknown asset classes pass through until
// the mandate explicitly opts in.
func DefaultMandatePolicy() MandatePolicy {
	return MandatePolicy{
		RequiredFields:  []string{"address"},
		MinPrice:        100_000,
		MaxPrice:        50_000_000,
		MaxDaysOnMarket: 365,
		AllowedTypes:    []string{"MULTIFAMILY", "OFFICE", "RETAIL", "INDUSTRIAL", "MIXED-USE"},
		EnforceTypes:    false,
		TypeMapping: map[string]string{
			"SINGLE_FAMILY": "SINGLE_FAMILY",
			"MULTI_FAMILY":  "MULTIFAMILY",
			"APARTMENT":     "MULTIFAMILY",
			"CONDO":         "CONDO",
			"TOWNHOUSE":     "TOWNHOUSE",
			"LOT":           "LAND",
			"FARM":          "LAND",
		},
	}
}

// Verdict is the outcome of classifying one consolidated record.
type Verdict struct {
	Classification domain.Classification
	Reason         string
	Details        *domain.DiscardDetails
}

// Classifier applies a MandatePolicy to consolidated property data.
type Classifier struct {
	policy  MandatePolicy
	allowed map[string]struct{}
}

// NewClassifier builds a Classifier, filling unset policy fields from
// DefaultMandatePolicy.
func NewClassifier(p MandatePolicy) *Classifier {
	def := DefaultMandatePolicy()
	if len(p.RequiredFields) == 0 {
		p.RequiredFields = def.RequiredFields
	}
	if p.MinPrice <= 0 {
		p.MinPrice = def.MinPrice
	}
	if p.MaxPrice <= 0 {
		p.MaxPrice = def.MaxPrice
	}
	if p.MaxDaysOnMarket <= 0 {
		p.MaxDaysOnMarket = def.MaxDaysOnMarket
	}
	if len(p.AllowedTypes) == 0 {
		p.AllowedTypes = def.AllowedTypes
	}
	if p.TypeMapping == nil {
		p.TypeMapping = def.TypeMapping
	}
	allowed := make(map[string]struct{}, len(p.AllowedTypes))
	for _, t := range p.AllowedTypes {
		allowed[strings.ToUpper(t)] = struct{}{}
	}
	return &Classifier{policy: p, allowed: allowed}
}

// Classify runs the mandate rules in order: required fields, asset class
// (only when enforcement is on), price band, then days on market. The first
// discard rule that fires wins; stale listings are flagged, everything else
// is usable.
func (c *Classifier) Classify(data map[string]any) Verdict {
	var missing []string
	for _, rf := range c.policy.RequiredFields {
		if v, ok := data[rf]; !ok || !truthy(v) {
			missing = append(missing, rf)
		}
	}
	if len(missing) > 0 {
		return Verdict{
			Classification: domain.ClassDiscarded,
			Reason:         domain.ReasonMissingCriticalFields,
			Details: &domain.DiscardDetails{
				ReasonCategory: domain.CategoryIncompleteData,
				Explanation:    "Missing required fields: " + strings.Join(missing, ", "),
				MissingFields:  missing,
				DiscardedAt:    time.Now().UTC(),
			},
		}
	}

	if rawType := firstString(data, "property_type"); rawType != "" && c.policy.EnforceTypes {
		canonical := c.canonicalType(rawType)
		if _, ok := c.allowed[canonical]; !ok {
			return Verdict{
				Classification: domain.ClassDiscarded,
				Reason:         domain.ReasonOutsideMandate,
				Details: &domain.DiscardDetails{
					ReasonCategory: domain.CategoryAssetClassMismatch,
					Explanation:    fmt.Sprintf("Property type %s not in allowed types", canonical),
					DiscardedAt:    time.Now().UTC(),
				},
			}
		}
	}

	if price, ok := priceOf(data); ok && price > 0 {
		if price < c.policy.MinPrice || price > c.policy.MaxPrice {
			return Verdict{
				Classification: domain.ClassDiscarded,
				Reason:         domain.ReasonOutsideMandate,
				Details: &domain.DiscardDetails{
					ReasonCategory: domain.CategoryPriceOutOfRange,
					Explanation: fmt.Sprintf("Price $%.0f outside range ($%.0f - $%.0f)",
						price, c.policy.MinPrice, c.policy.MaxPrice),
					DiscardedAt: time.Now().UTC(),
				},
			}
		}
	}

	if dom, ok := domOf(data); ok && dom > c.policy.MaxDaysOnMarket {
		return Verdict{Classification: domain.ClassFlagged}
	}

	return Verdict{Classification: domain.ClassUsable}
}

// canonicalType uppercases a raw asset type and maps known synonyms onto
// mandate vocabulary. Unmapped types pass through uppercased.
func (c *Classifier) canonicalType(raw string) string {
	up := strings.ToUpper(strings.TrimSpace(raw))
	if mapped, ok := c.policy.TypeMapping[up]; ok {
		return mapped
	}
	return up
}

var currencyRe = regexp.MustCompile(`[^\d.]`)

// priceOf resolves the listing price. Display strings like "$1,250,000"
// are stripped to digits; a price that still fails to parse reads as
// absent, and the price rule is skipped.
func priceOf(data map[string]any) (float64, bool) {
	v, ok := firstRaw(data, "price")
	if !ok {
		return 0, false
	}
	if s, isStr := v.(string); isStr {
		f, err := strconv.ParseFloat(currencyRe.ReplaceAllString(s, ""), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return asFloat(v)
}

// domOf resolves days on market. Floats truncate; non-integer strings
// read as absent.
func domOf(data map[string]any) (int, bool) {
	v, ok := firstRaw(data, "days_on_market")
	if !ok {
		return 0, false
	}
	return asInt(v)
}
