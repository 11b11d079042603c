// pkg/quote/quote.engine.go

package quote

import (
	"math"
	"strings"
)

const (
	parcelDivisor     = 5000.0 // cm3 per kg
	freightAirDivisor = 6000.0
	freightDivisor    = 5000.0 // sea and road

	parcelFloor  = 9.0
	freightFloor = 25.0

	// MaxBillableWeightKg bounds what the engine will price. Heavier input,
	// including overflowed dimensions, gets no quote.
	MaxBillableWeightKg = 1_000_000.0

	parcelFuelRate   = 0.12
	parcelSecurity   = 3.0
	domesticDiscount = 0.85
)

// parcelRate is the base and per-kg price for one side of the same-country split.
type parcelRate struct {
	Base  float64
	PerKg float64
}

var (
	parcelDomestic      = parcelRate{Base: 8, PerKg: 2.8}
	parcelInternational = parcelRate{Base: 18, PerKg: 5.2}
)

type levelRate struct {
	Multiplier float64
	ETA        string
}

var parcelLevels = map[Level]levelRate{
	LevelStandard: {Multiplier: 1.0, ETA: "2–5 business days"},
	LevelExpress:  {Multiplier: 1.25, ETA: "24–72 hours"},
	LevelPriority: {Multiplier: 1.55, ETA: "12–48 hours"},
}

type modeRate struct {
	Base     float64
	PerKg    float64
	FuelRate float64
	Security float64
	Divisor  float64
	ETA      string
}

var freightModes = map[Mode]modeRate{
	ModeAir:  {Base: 150, PerKg: 2.2, FuelRate: 0.18, Security: 12, Divisor: freightAirDivisor, ETA: "2–7 days door-to-door"},
	ModeSea:  {Base: 90, PerKg: 1.0, FuelRate: 0.08, Security: 6, Divisor: freightDivisor, ETA: "12–35 days port-to-door"},
	ModeRoad: {Base: 120, PerKg: 1.4, FuelRate: 0.08, Security: 6, Divisor: freightDivisor, ETA: "2–10 days door-to-door"},
}

// Compute prices a request. The second result is false when there is not
// enough input yet to produce a quote (missing endpoint, payload that does not
// match the service type, or a billable weight that is zero or above
// MaxBillableWeightKg). It never panics.
func Compute(req Request) (Quote, bool) {
	from := strings.TrimSpace(req.Route.From)
	to := strings.TrimSpace(req.Route.To)
	if from == "" || to == "" {
		return Quote{}, false
	}
	same := SameCountry(from, to)

	switch req.ServiceType {
	case ServiceParcel:
		if req.Parcel == nil || req.Freight != nil {
			return Quote{}, false
		}
		return computeParcel(*req.Parcel, same)
	case ServiceFreight:
		if req.Freight == nil || req.Parcel != nil {
			return Quote{}, false
		}
		return computeFreight(*req.Freight, same)
	default:
		return Quote{}, false
	}
}

func computeParcel(p Parcel, same bool) (Quote, bool) {
	actual := nonNegative(p.WeightKg)
	volumetric := VolumetricWeight(p.LengthCm, p.WidthCm, p.HeightCm, parcelDivisor)
	billable := math.Max(actual, volumetric)
	if !priceable(billable) {
		return Quote{}, false
	}

	rate := parcelInternational
	if same {
		rate = parcelDomestic
	}
	level, ok := parcelLevels[p.Level]
	if !ok {
		level = parcelLevels[LevelStandard]
	}

	subtotal := (rate.Base + billable*rate.PerKg) * level.Multiplier
	fuel := subtotal * parcelFuelRate
	total := math.Max(parcelFloor, subtotal+fuel+parcelSecurity)

	return build(ServiceParcel, total, subtotal, fuel, parcelSecurity, actual, volumetric, billable, level.ETA, same), true
}

func computeFreight(f Freight, same bool) (Quote, bool) {
	mode, ok := freightModes[f.Mode]
	if !ok {
		mode = freightModes[ModeAir]
	}
	pallets := f.Pallets
	if pallets < 1 {
		pallets = 1
	}

	// every pallet is assumed to share the declared dimensions
	actual := nonNegative(f.WeightKgPerPallet) * float64(pallets)
	volumetric := VolumetricWeight(f.LengthCm, f.WidthCm, f.HeightCm, mode.Divisor) * float64(pallets)
	billable := math.Max(actual, volumetric)
	if !priceable(billable) {
		return Quote{}, false
	}

	factor := 1.0
	if same {
		factor = domesticDiscount
	}
	subtotal := (mode.Base + billable*mode.PerKg) * factor
	fuel := subtotal * mode.FuelRate
	total := math.Max(freightFloor, subtotal+fuel+mode.Security)

	return build(ServiceFreight, total, subtotal, fuel, mode.Security, actual, volumetric, billable, mode.ETA, same), true
}

func priceable(billable float64) bool {
	return billable > 0 && billable <= MaxBillableWeightKg
}

func build(st ServiceType, total, subtotal, fuel, security, actual, volumetric, billable float64, eta string, same bool) Quote {
	return Quote{
		ServiceType:        st,
		Currency:           Currency,
		TotalPrice:         round2(total),
		ETAText:            eta,
		BillableWeightKg:   round2(billable),
		ActualWeightKg:     round2(actual),
		VolumetricWeightKg: round2(volumetric),
		Subtotal:           round2(subtotal),
		FuelSurcharge:      round2(fuel),
		SecurityFee:        round2(security),
		SameCountry:        same,
	}
}

// VolumetricWeight returns l*w*h/divisor, or 0 when any dimension is missing.
func VolumetricWeight(l, w, h, divisor float64) float64 {
	l, w, h = nonNegative(l), nonNegative(w), nonNegative(h)
	if l == 0 || w == 0 || h == 0 || divisor <= 0 {
		return 0
	}
	return l * w * h / divisor
}

// SameCountry compares the last comma-delimited token of both endpoints,
// trimmed and case-insensitive. It is a text heuristic, not a geocoder, so two
// places with an empty trailing token ("Paris," and "Lyon,") also match.
func SameCountry(from, to string) bool {
	return strings.EqualFold(countryToken(from), countryToken(to))
}

func countryToken(place string) string {
	parts := strings.Split(place, ",")
	return strings.TrimSpace(parts[len(parts)-1])
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func round2(v float64) float64 {
	return roundHalfUp(v, 2)
}

// roundHalfUp rounds a non-negative value to the given number of places. The
// epsilon absorbs binary representation error (71.875 stored as 71.87499...).
func roundHalfUp(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Floor(v*p+0.5+1e-9) / p
}
