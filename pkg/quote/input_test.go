package quote

import (
	"encoding/json"
	"testing"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want Number
	}{
		{"2.5", 2.5},
		{" 2,5 ", 2.5},
		{"", 0},
		{"abc", 0},
		{"-3", 0},
		{"NaN", 0},
		{"Inf", 0},
		{"1e3", 1000},
	}
	for _, tt := range tests {
		if got := ParseNumber(tt.in); got != tt.want {
			t.Errorf("ParseNumber(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInput_UnmarshalLenient(t *testing.T) {
	body := `{
		"serviceType": "parcel",
		"from": "Brussels, Belgium",
		"to": "London, United Kingdom",
		"weightKg": "2,5",
		"lengthCm": 40,
		"widthCm": "30",
		"heightCm": 25,
		"level": "EXPRESS",
		"pallets": {"nested": true},
		"weightKgPerPallet": null
	}`
	var in Input
	if err := json.Unmarshal([]byte(body), &in); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if in.WeightKg != 2.5 || in.WidthCm != 30 || in.Pallets != 0 || in.WeightKgPerPallet != 0 {
		t.Fatalf("unexpected coercion: %+v", in)
	}

	q, ok := in.Compute()
	if !ok {
		t.Fatal("expected a quote")
	}
	if q.TotalPrice != 71.88 {
		t.Errorf("total = %.2f, want 71.88", q.TotalPrice)
	}
}

func TestInput_GarbageNeverFails(t *testing.T) {
	bodies := []string{
		`{"weightKg": true}`,
		`{"weightKg": [1,2]}`,
		`{"weightKg": "12kg"}`,
		`{"weightKg": -7}`,
	}
	for _, body := range bodies {
		var in Input
		if err := json.Unmarshal([]byte(body), &in); err != nil {
			t.Errorf("unmarshal %s: %v", body, err)
			continue
		}
		if in.WeightKg != 0 {
			t.Errorf("%s: weight = %v, want 0", body, in.WeightKg)
		}
	}
}

func TestInput_HugeNumbersHaveNoQuote(t *testing.T) {
	bodies := []string{
		`{"serviceType": "parcel", "from": "A, X", "to": "B, Y", "weightKg": "1e308"}`,
		`{"serviceType": "parcel", "from": "A, X", "to": "B, Y", "lengthCm": 1e120, "widthCm": 1e120, "heightCm": 1e120}`,
		`{"serviceType": "freight", "from": "A, X", "to": "B, Y", "pallets": 1e300, "weightKgPerPallet": 1e300}`,
	}
	for _, body := range bodies {
		var in Input
		if err := json.Unmarshal([]byte(body), &in); err != nil {
			t.Fatalf("unmarshal %s: %v", body, err)
		}
		if q, ok := in.Compute(); ok {
			t.Errorf("%s: got quote %+v, want none", body, q)
		}
	}
}

func TestInput_Request(t *testing.T) {
	tests := []struct {
		name        string
		in          Input
		wantService ServiceType
		wantLevel   Level
		wantMode    Mode
		wantPallets int
	}{
		{
			name:        "parcel defaults to standard",
			in:          Input{ServiceType: "Parcel", From: "A, X", To: "B, X", WeightKg: 1, Level: "turbo"},
			wantService: ServiceParcel,
			wantLevel:   LevelStandard,
		},
		{
			name:        "express label selects parcel",
			in:          Input{ServiceType: "express", From: "A, X", To: "B, X", WeightKg: 1, Level: "priority"},
			wantService: ServiceParcel,
			wantLevel:   LevelPriority,
		},
		{
			name:        "freight defaults to air and one pallet",
			in:          Input{ServiceType: "freight", From: "A, X", To: "B, Y", WeightKgPerPallet: 50},
			wantService: ServiceFreight,
			wantMode:    ModeAir,
			wantPallets: 1,
		},
		{
			name:        "fractional pallets truncate",
			in:          Input{ServiceType: "cargo", From: "A, X", To: "B, Y", Mode: "Sea", Pallets: 3.9, WeightKgPerPallet: 50},
			wantService: ServiceFreight,
			wantMode:    ModeSea,
			wantPallets: 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.in.Request()
			if req.ServiceType != tt.wantService {
				t.Fatalf("service = %q, want %q", req.ServiceType, tt.wantService)
			}
			switch tt.wantService {
			case ServiceParcel:
				if req.Parcel == nil || req.Freight != nil {
					t.Fatal("expected only a parcel payload")
				}
				if req.Parcel.Level != tt.wantLevel {
					t.Errorf("level = %q, want %q", req.Parcel.Level, tt.wantLevel)
				}
			case ServiceFreight:
				if req.Freight == nil || req.Parcel != nil {
					t.Fatal("expected only a freight payload")
				}
				if req.Freight.Mode != tt.wantMode {
					t.Errorf("mode = %q, want %q", req.Freight.Mode, tt.wantMode)
				}
				if req.Freight.Pallets != tt.wantPallets {
					t.Errorf("pallets = %d, want %d", req.Freight.Pallets, tt.wantPallets)
				}
			}
		})
	}
}

func TestInput_UnknownServiceHasNoQuote(t *testing.T) {
	in := Input{ServiceType: "teleport", From: "A, X", To: "B, Y", WeightKg: 10}
	if _, ok := in.Compute(); ok {
		t.Error("expected no quote for unknown service type")
	}
}
