// pkg/quote/input.go

package quote

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a lenient float used on the wire. It accepts JSON numbers,
// numeric strings, empty strings, null and garbage; anything that is not a
// finite non-negative number decodes to 0 instead of failing.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*n = 0
			return nil
		}
		*n = ParseNumber(s)
		return nil
	}
	*n = ParseNumber(string(b))
	return nil
}

// UnmarshalParam lets gin bind query and form values into a Number.
func (n *Number) UnmarshalParam(param string) error {
	*n = ParseNumber(param)
	return nil
}

func (n *Number) UnmarshalText(text []byte) error {
	*n = ParseNumber(string(text))
	return nil
}

func (n Number) Float() float64 { return float64(n) }

// ParseNumber coerces user text into a Number. Both "2.5" and "2,5" parse.
func ParseNumber(s string) Number {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		v, err = strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
		if err != nil {
			return 0
		}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return Number(v)
}

// Input is the flat form the booking UI submits on every keystroke. Fields
// for the other service type are ignored.
type Input struct {
	ServiceType       string `json:"serviceType" form:"serviceType"`
	From              string `json:"from" form:"from"`
	To                string `json:"to" form:"to"`
	WeightKg          Number `json:"weightKg" form:"weightKg"`
	LengthCm          Number `json:"lengthCm" form:"lengthCm"`
	WidthCm           Number `json:"widthCm" form:"widthCm"`
	HeightCm          Number `json:"heightCm" form:"heightCm"`
	Level             string `json:"level,omitempty" form:"level"`
	Mode              string `json:"mode,omitempty" form:"mode"`
	Pallets           Number `json:"pallets,omitempty" form:"pallets"`
	WeightKgPerPallet Number `json:"weightKgPerPallet,omitempty" form:"weightKgPerPallet"`
}

// Request converts the form into a typed request. An unrecognised service
// type yields a request Compute will decline.
func (in Input) Request() Request {
	req := Request{
		ServiceType: ParseServiceType(in.ServiceType),
		Route:       Route{From: strings.TrimSpace(in.From), To: strings.TrimSpace(in.To)},
	}
	switch req.ServiceType {
	case ServiceParcel:
		req.Parcel = &Parcel{
			WeightKg: in.WeightKg.Float(),
			LengthCm: in.LengthCm.Float(),
			WidthCm:  in.WidthCm.Float(),
			HeightCm: in.HeightCm.Float(),
			Level:    ParseLevel(in.Level),
		}
	case ServiceFreight:
		req.Freight = &Freight{
			Mode:              ParseMode(in.Mode),
			Pallets:           palletCount(in.Pallets),
			WeightKgPerPallet: in.WeightKgPerPallet.Float(),
			LengthCm:          in.LengthCm.Float(),
			WidthCm:           in.WidthCm.Float(),
			HeightCm:          in.HeightCm.Float(),
		}
	}
	return req
}

// Compute is a shortcut for Compute(in.Request()).
func (in Input) Compute() (Quote, bool) {
	return Compute(in.Request())
}

// ParseServiceType accepts the canonical names plus the labels used on the
// booking pages ("express" selects the parcel flow).
func ParseServiceType(s string) ServiceType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "parcel", "express", "courier":
		return ServiceParcel
	case "freight", "cargo":
		return ServiceFreight
	default:
		return ""
	}
}

// ParseLevel falls back to standard for anything unrecognised.
func ParseLevel(s string) Level {
	switch l := Level(strings.ToLower(strings.TrimSpace(s))); l {
	case LevelExpress, LevelPriority:
		return l
	default:
		return LevelStandard
	}
}

// ParseMode falls back to air for anything unrecognised.
func ParseMode(s string) Mode {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeSea, ModeRoad:
		return m
	default:
		return ModeAir
	}
}

func palletCount(n Number) int {
	v := math.Trunc(n.Float())
	if v < 1 {
		return 1
	}
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(v)
}
