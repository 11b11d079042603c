// pkg/quote/quote.models.go

package quote

import "math"

// Currency is the only currency GlobalEdge quotes in.
const Currency = "EUR"

type ServiceType string

const (
	ServiceParcel  ServiceType = "parcel"
	ServiceFreight ServiceType = "freight"
)

// Level is the parcel service level (speed tier).
type Level string

const (
	LevelStandard Level = "standard"
	LevelExpress  Level = "express"
	LevelPriority Level = "priority"
)

// Mode is the freight transport mode.
type Mode string

const (
	ModeAir  Mode = "air"
	ModeSea  Mode = "sea"
	ModeRoad Mode = "road"
)

// Route holds the two free-text endpoints, e.g. "Brussels, Belgium".
type Route struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type Parcel struct {
	WeightKg float64 `json:"weightKg"`
	LengthCm float64 `json:"lengthCm"`
	WidthCm  float64 `json:"widthCm"`
	HeightCm float64 `json:"heightCm"`
	Level    Level   `json:"level"`
}

type Freight struct {
	Mode              Mode    `json:"mode"`
	Pallets           int     `json:"pallets"`
	WeightKgPerPallet float64 `json:"weightKgPerPallet"`
	LengthCm          float64 `json:"lengthCm"`
	WidthCm           float64 `json:"widthCm"`
	HeightCm          float64 `json:"heightCm"`
}

// Request is a fully typed quote request. Exactly one of Parcel or Freight
// must be set and it must match ServiceType.
type Request struct {
	ServiceType ServiceType `json:"serviceType"`
	Route       Route       `json:"route"`
	Parcel      *Parcel     `json:"parcel,omitempty"`
	Freight     *Freight    `json:"freight,omitempty"`
}

// Quote is the priced result. TotalPrice, the fee fields and the weights are
// rounded to 2 decimals.
type Quote struct {
	ServiceType        ServiceType `json:"serviceType"`
	Currency           string      `json:"currency"`
	TotalPrice         float64     `json:"totalPrice"`
	ETAText            string      `json:"etaText"`
	BillableWeightKg   float64     `json:"billableWeightKg"`
	ActualWeightKg     float64     `json:"actualWeightKg"`
	VolumetricWeightKg float64     `json:"volumetricWeightKg"`
	Subtotal           float64     `json:"subtotal"`
	FuelSurcharge      float64     `json:"fuelSurcharge"`
	SecurityFee        float64     `json:"securityFee"`
	SameCountry        bool        `json:"sameCountry"`
}

// TotalCents returns the total as an integer amount of cents. Totals that do
// not fit, or are not finite, report 0.
func (q Quote) TotalCents() int64 {
	cents := roundHalfUp(q.TotalPrice*100, 0)
	if math.IsNaN(cents) || cents <= 0 || cents >= math.MaxInt64 {
		return 0
	}
	return int64(cents)
}
