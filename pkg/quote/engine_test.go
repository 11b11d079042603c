package quote

import (
	"encoding/json"
	"math"
	"testing"
)

func parcelReq(from, to string, p Parcel) Request {
	return Request{ServiceType: ServiceParcel, Route: Route{From: from, To: to}, Parcel: &p}
}

func freightReq(from, to string, f Freight) Request {
	return Request{ServiceType: ServiceFreight, Route: Route{From: from, To: to}, Freight: &f}
}

func TestCompute_ExampleScenarios(t *testing.T) {
	tests := []struct {
		name         string
		req          Request
		wantOK       bool
		wantTotal    float64
		wantBillable float64
		wantETA      string
	}{
		{
			name: "international express parcel priced on volumetric weight",
			req: parcelReq("Brussels, Belgium", "London, United Kingdom", Parcel{
				WeightKg: 2.5, LengthCm: 40, WidthCm: 30, HeightCm: 25, Level: LevelExpress,
			}),
			wantOK:       true,
			wantTotal:    71.88,
			wantBillable: 6,
			wantETA:      "24–72 hours",
		},
		{
			// 20x15x10 is only 0.6 kg volumetric, so actual weight wins
			name: "international express parcel priced on actual weight",
			req: parcelReq("Brussels, Belgium", "London, United Kingdom", Parcel{
				WeightKg: 2.5, LengthCm: 20, WidthCm: 15, HeightCm: 10, Level: LevelExpress,
			}),
			wantOK:       true,
			wantTotal:    46.4,
			wantBillable: 2.5,
			wantETA:      "24–72 hours",
		},
		{
			name:         "domestic standard parcel without dimensions",
			req:          parcelReq("Lagos, Nigeria", "Abuja, Nigeria", Parcel{WeightKg: 0.2, Level: LevelStandard}),
			wantOK:       true,
			wantTotal:    12.59,
			wantBillable: 0.2,
			wantETA:      "2–5 business days",
		},
		{
			name: "air freight two pallets volumetric dominates",
			req: freightReq("Brussels, Belgium", "Lagos, Nigeria", Freight{
				Mode: ModeAir, Pallets: 2, WeightKgPerPallet: 100, LengthCm: 100, WidthCm: 100, HeightCm: 100,
			}),
			wantOK: true,
			// (150 + 333.33.. * 2.2) = 883.33.., fuel 159.00, security 12
			wantTotal:    1054.33,
			wantBillable: 333.33,
			wantETA:      "2–7 days door-to-door",
		},
		{
			name:   "missing destination",
			req:    parcelReq("Brussels, Belgium", "", Parcel{WeightKg: 3}),
			wantOK: false,
		},
		{
			name:   "zero weight and zero dimensions",
			req:    parcelReq("Brussels, Belgium", "Paris, France", Parcel{}),
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, ok := Compute(tt.req)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				if q != (Quote{}) {
					t.Errorf("expected zero quote when unavailable, got %+v", q)
				}
				return
			}
			if q.TotalPrice != tt.wantTotal {
				t.Errorf("total = %.2f, want %.2f", q.TotalPrice, tt.wantTotal)
			}
			if q.BillableWeightKg != tt.wantBillable {
				t.Errorf("billable = %.2f, want %.2f", q.BillableWeightKg, tt.wantBillable)
			}
			if q.ETAText != tt.wantETA {
				t.Errorf("eta = %q, want %q", q.ETAText, tt.wantETA)
			}
			if q.Currency != "EUR" {
				t.Errorf("currency = %s, want EUR", q.Currency)
			}
		})
	}
}

func TestCompute_ParcelBreakdown(t *testing.T) {
	q, ok := Compute(parcelReq("Brussels, Belgium", "London, United Kingdom", Parcel{
		WeightKg: 2.5, LengthCm: 40, WidthCm: 30, HeightCm: 25, Level: LevelExpress,
	}))
	if !ok {
		t.Fatal("expected a quote")
	}
	if q.Subtotal != 61.5 || q.FuelSurcharge != 7.38 || q.SecurityFee != 3 {
		t.Errorf("unexpected breakdown: %+v", q)
	}
	if q.ActualWeightKg != 2.5 || q.VolumetricWeightKg != 6 {
		t.Errorf("unexpected weights: actual %.2f volumetric %.2f", q.ActualWeightKg, q.VolumetricWeightKg)
	}
	if q.SameCountry {
		t.Error("Belgium -> United Kingdom must not be same country")
	}
}

func TestCompute_DomesticAirFreight(t *testing.T) {
	q, ok := Compute(freightReq("Antwerp, Belgium", "Liège, belgium ", Freight{
		Mode: ModeAir, Pallets: 2, WeightKgPerPallet: 100, LengthCm: 100, WidthCm: 100, HeightCm: 100,
	}))
	if !ok {
		t.Fatal("expected a quote")
	}
	// (150 + 733.33..) * 0.85 = 750.83.., fuel 135.15, security 12
	if q.TotalPrice != 897.98 {
		t.Errorf("total = %.2f, want 897.98", q.TotalPrice)
	}
	if !q.SameCountry {
		t.Error("expected same-country match to ignore case and whitespace")
	}
}

func TestCompute_FreightModes(t *testing.T) {
	tests := []struct {
		mode      Mode
		wantTotal float64
		wantETA   string
	}{
		// sea: (90 + 500*1.0) = 590, fuel 47.2, security 6
		{ModeSea, 643.2, "12–35 days port-to-door"},
		// road: (120 + 500*1.4) = 820, fuel 65.6, security 6
		{ModeRoad, 891.6, "2–10 days door-to-door"},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			q, ok := Compute(freightReq("Rotterdam, Netherlands", "Lagos, Nigeria", Freight{
				Mode: tt.mode, Pallets: 1, WeightKgPerPallet: 500,
			}))
			if !ok {
				t.Fatal("expected a quote")
			}
			if math.Abs(q.TotalPrice-tt.wantTotal) > 1e-9 {
				t.Errorf("total = %.2f, want %.2f", q.TotalPrice, tt.wantTotal)
			}
			if q.ETAText != tt.wantETA {
				t.Errorf("eta = %q, want %q", q.ETAText, tt.wantETA)
			}
		})
	}
}

func TestCompute_Floors(t *testing.T) {
	parcel, ok := Compute(parcelReq("Lagos, Nigeria", "Abuja, Nigeria", Parcel{WeightKg: 0.001}))
	if !ok {
		t.Fatal("expected parcel quote")
	}
	if parcel.TotalPrice < 9 {
		t.Errorf("parcel total %.2f below floor", parcel.TotalPrice)
	}

	freight, ok := Compute(freightReq("Lagos, Nigeria", "Abuja, Nigeria", Freight{Mode: ModeSea, Pallets: 1, WeightKgPerPallet: 0.001}))
	if !ok {
		t.Fatal("expected freight quote")
	}
	if freight.TotalPrice < 25 {
		t.Errorf("freight total %.2f below floor", freight.TotalPrice)
	}
}

func TestCompute_Monotonicity(t *testing.T) {
	levels := []Level{LevelStandard, LevelExpress, LevelPriority}
	for _, level := range levels {
		prev := 0.0
		for w := 0.1; w < 80; w += 0.7 {
			q, ok := Compute(parcelReq("Brussels, Belgium", "Madrid, Spain", Parcel{WeightKg: w, Level: level}))
			if !ok {
				t.Fatalf("no quote for weight %.2f", w)
			}
			if q.TotalPrice < prev {
				t.Fatalf("%s: total decreased from %.2f to %.2f at weight %.2f", level, prev, q.TotalPrice, w)
			}
			prev = q.TotalPrice
		}
	}

	prev := 0.0
	for w := 1.0; w < 2000; w += 37 {
		q, ok := Compute(freightReq("Brussels, Belgium", "Madrid, Spain", Freight{Mode: ModeRoad, Pallets: 3, WeightKgPerPallet: w}))
		if !ok {
			t.Fatalf("no freight quote for weight %.2f", w)
		}
		if q.TotalPrice < prev {
			t.Fatalf("freight total decreased from %.2f to %.2f", prev, q.TotalPrice)
		}
		prev = q.TotalPrice
	}
}

func TestCompute_SpeedOrdering(t *testing.T) {
	for _, w := range []float64{0.1, 1, 5, 25, 70} {
		var totals []float64
		for _, level := range []Level{LevelStandard, LevelExpress, LevelPriority} {
			q, ok := Compute(parcelReq("Paris, France", "Berlin, Germany", Parcel{WeightKg: w, Level: level}))
			if !ok {
				t.Fatalf("no quote for %s", level)
			}
			totals = append(totals, q.TotalPrice)
		}
		if !(totals[0] <= totals[1] && totals[1] <= totals[2]) {
			t.Errorf("weight %.1f: expected standard <= express <= priority, got %v", w, totals)
		}
	}
}

func TestCompute_SameCountryNeverCostsMore(t *testing.T) {
	for _, w := range []float64{0.5, 3, 12, 40} {
		domestic, _ := Compute(parcelReq("Lyon, France", "Paris, France", Parcel{WeightKg: w, Level: LevelExpress}))
		abroad, _ := Compute(parcelReq("Lyon, France", "Turin, Italy", Parcel{WeightKg: w, Level: LevelExpress}))
		if domestic.TotalPrice > abroad.TotalPrice {
			t.Errorf("parcel weight %.1f: domestic %.2f > international %.2f", w, domestic.TotalPrice, abroad.TotalPrice)
		}
	}
	for _, mode := range []Mode{ModeAir, ModeSea, ModeRoad} {
		f := Freight{Mode: mode, Pallets: 2, WeightKgPerPallet: 300}
		domestic, _ := Compute(freightReq("Lyon, France", "Paris, France", f))
		abroad, _ := Compute(freightReq("Lyon, France", "Turin, Italy", f))
		if domestic.TotalPrice > abroad.TotalPrice {
			t.Errorf("%s: domestic %.2f > international %.2f", mode, domestic.TotalPrice, abroad.TotalPrice)
		}
	}
}

func TestCompute_VolumetricDominance(t *testing.T) {
	q, ok := Compute(parcelReq("Paris, France", "Rome, Italy", Parcel{WeightKg: 1, LengthCm: 50, WidthCm: 40, HeightCm: 30}))
	if !ok {
		t.Fatal("expected a quote")
	}
	if q.BillableWeightKg != 12 {
		t.Errorf("billable = %.2f, want volumetric 12", q.BillableWeightKg)
	}

	// one missing dimension disables the volumetric figure entirely
	q, _ = Compute(parcelReq("Paris, France", "Rome, Italy", Parcel{WeightKg: 1, LengthCm: 50, WidthCm: 40}))
	if q.BillableWeightKg != 1 {
		t.Errorf("billable = %.2f, want actual 1", q.BillableWeightKg)
	}
}

func TestCompute_Incomplete(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"parcel missing from", parcelReq("", "Paris, France", Parcel{WeightKg: 2})},
		{"parcel blank to", parcelReq("Paris, France", "   ", Parcel{WeightKg: 2})},
		{"freight missing to", freightReq("Paris, France", "", Freight{Mode: ModeSea, Pallets: 1, WeightKgPerPallet: 100})},
		{"freight zero weight", freightReq("Paris, France", "Rome, Italy", Freight{Mode: ModeSea, Pallets: 4})},
		{"parcel payload missing", Request{ServiceType: ServiceParcel, Route: Route{From: "A, B", To: "C, D"}}},
		{"both payloads", Request{
			ServiceType: ServiceParcel, Route: Route{From: "A, B", To: "C, D"},
			Parcel: &Parcel{WeightKg: 1}, Freight: &Freight{Pallets: 1, WeightKgPerPallet: 1},
		}},
		{"unknown service", Request{ServiceType: "drone", Route: Route{From: "A, B", To: "C, D"}, Parcel: &Parcel{WeightKg: 1}}},
		{"negative weight", parcelReq("Paris, France", "Rome, Italy", Parcel{WeightKg: -4})},
		{"NaN weight", parcelReq("Paris, France", "Rome, Italy", Parcel{WeightKg: math.NaN()})},
		{"weight above ceiling", parcelReq("Paris, France", "Rome, Italy", Parcel{WeightKg: 1e308})},
		{"overflowing dimensions", parcelReq("Paris, France", "Rome, Italy", Parcel{LengthCm: 1e120, WidthCm: 1e120, HeightCm: 1e120})},
		{"overflowing pallets", freightReq("Paris, France", "Rome, Italy", Freight{Mode: ModeRoad, Pallets: math.MaxInt32, WeightKgPerPallet: 1e305})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := Compute(tt.req); ok {
				t.Errorf("expected no quote")
			}
		})
	}
}

func TestCompute_Idempotent(t *testing.T) {
	req := freightReq("Hamburg, Germany", "Accra, Ghana", Freight{Mode: ModeSea, Pallets: 3, WeightKgPerPallet: 120, LengthCm: 120, WidthCm: 80, HeightCm: 150})
	first, _ := Compute(req)
	for i := 0; i < 10; i++ {
		again, _ := Compute(req)
		if again != first {
			t.Fatalf("run %d returned %+v, want %+v", i, again, first)
		}
	}
}

func TestSameCountry(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{"Lagos, Nigeria", "Abuja, Nigeria", true},
		{"Lagos, Nigeria", "Abuja,nigeria", true},
		{"Brussels, Belgium", "London, United Kingdom", false},
		{"Paris", "Paris", true},
		{"Paris, France", "Paris", false},
		{"Paris,", "Lyon,", true},
	}
	for _, tt := range tests {
		if got := SameCountry(tt.from, tt.to); got != tt.want {
			t.Errorf("SameCountry(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestQuote_TotalCents(t *testing.T) {
	q := Quote{TotalPrice: 71.88}
	if got := q.TotalCents(); got != 7188 {
		t.Errorf("TotalCents = %d, want 7188", got)
	}
	q = Quote{TotalPrice: 12.59}
	if got := q.TotalCents(); got != 1259 {
		t.Errorf("TotalCents = %d, want 1259", got)
	}
	for _, total := range []float64{1e17, math.Inf(1), math.NaN(), -3} {
		if got := (Quote{TotalPrice: total}).TotalCents(); got != 0 {
			t.Errorf("TotalCents(%v) = %d, want 0", total, got)
		}
	}
}

func TestCompute_LargestPriceableWeight(t *testing.T) {
	q, ok := Compute(parcelReq("Paris, France", "Rome, Italy", Parcel{WeightKg: MaxBillableWeightKg}))
	if !ok {
		t.Fatal("expected a quote at the ceiling")
	}
	if math.IsInf(q.TotalPrice, 0) || q.TotalCents() <= 0 {
		t.Errorf("total %v does not fit in cents", q.TotalPrice)
	}
	if _, err := json.Marshal(q); err != nil {
		t.Errorf("quote does not encode: %v", err)
	}
}

func TestRoundHalfUp(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{1.005, 1.01},
		{2.675, 2.68},
		{12.5872, 12.59},
		{1054.3333, 1054.33},
		{0.004, 0},
	}
	for _, tt := range tests {
		if got := round2(tt.in); got != tt.want {
			t.Errorf("round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
