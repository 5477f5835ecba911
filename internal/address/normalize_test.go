package address

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"already canonical", "123 MAIN STREET", "123 MAIN STREET"},
		{"suffix and case", "123 Main St", "123 MAIN STREET"},
		{"trailing period", "456 Oak Ave.", "456 OAK AVENUE"},
		{"leading zeros", "0100 Park Pl", "100 PARK PLACE"},
		{"directional and unit", "789 SW 1st Blvd, Apt 5", "789 SOUTHWEST 1ST BOULEVARD UNIT 5"},
		{"hash unit marker", "100 Main St #4B", "100 MAIN STREET 4B"},
		{"suite", "12 Elm Dr Suite 300", "12 ELM DRIVE UNIT 300"},
		{"ste", "12 Elm Dr Ste 300", "12 ELM DRIVE UNIT 300"},
		{"full address with commas", "123 Main St, Anytown, CA 90210", "123 MAIN STREET ANYTOWN CA 90210"},
		{"collapse whitespace", "  55   N  Oak   Ln ", "55 NORTH OAK LANE"},
		{"ordinal not expanded", "200 E 1st St", "200 EAST 1ST STREET"},
		{"zip plus four keeps hyphen", "9 Cedar Ct, Springfield, IL 62704-1001", "9 CEDAR COURT SPRINGFIELD IL 62704-1001"},
		{"pkwy and circle", "77 Lakeview Pkwy Cir", "77 LAKEVIEW PARKWAY CIRCLE"},
		{"zero alone survives", "0 Zero Way", "0 ZERO WAY"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.in); got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeEquivalentForms(t *testing.T) {
	pairs := []struct{ a, b string }{
		{"123 Main St", "123 MAIN STREET"},
		{"456 Oak Ave, Apt 2", "456 OAK AVENUE UNIT 2"},
		{"789 nw Pine rd", "789 NORTHWEST PINE ROAD"},
	}
	for _, p := range pairs {
		if Normalize(p.a) != Normalize(p.b) {
			t.Errorf("Normalize(%q) = %q, Normalize(%q) = %q; want equal",
				p.a, Normalize(p.a), p.b, Normalize(p.b))
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"123 Main St, Anytown, CA 90210",
		"789 SW 1st Blvd, Apt 5",
		"0100 Park Pl",
		"100 Main St #4B",
		"  55   N  Oak   Ln ",
		"9 Cedar Ct, Springfield, IL 62704-1001",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestExtractComponents(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want Components
	}{
		{"empty", "", Components{}},
		{"street only", "123 Main St", Components{Street: "123 Main St"}},
		{"street and city", "123 Main St, Anytown", Components{Street: "123 Main St", City: "Anytown"}},
		{
			"full",
			"123 Main St, Anytown, CA 90210",
			Components{Street: "123 Main St", City: "Anytown", State: "CA", Zip: "90210"},
		},
		{
			"state without zip",
			"123 Main St, Anytown, CA",
			Components{Street: "123 Main St", City: "Anytown", State: "CA"},
		},
		{
			"zip plus four",
			"9 Cedar Ct, Springfield, IL 62704-1001",
			Components{Street: "9 Cedar Ct", City: "Springfield", State: "IL", Zip: "62704-1001"},
		},
		{
			"extra parts ignored",
			"123 Main St, Anytown, CA 90210, USA",
			Components{Street: "123 Main St", City: "Anytown", State: "CA", Zip: "90210"},
		},
		{
			"third part not a state",
			"123 Main St, Anytown, California",
			Components{Street: "123 Main St", City: "Anytown"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractComponents(tc.in); got != tc.want {
				t.Fatalf("ExtractComponents(%q) = %+v, want %+v", tc.in, got, tc.want)
			}
		})
	}
}
