package ident

import "testing"

// 20-12345678-6 and 30-71234567-1 are checksum-valid; the check digits were
// derived from the mod-11 weights by hand.
const (
	validCUIT      = "20123456786"
	validCUITOther = "30712345671"
)

func TestValidCUIT(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "bare digits", input: "20123456786", want: true},
		{name: "hyphenated", input: "20-12345678-6", want: true},
		{name: "dotted", input: "20.12345678.6", want: true},
		{name: "spaced", input: "20 12345678 6", want: true},
		{name: "company prefix", input: "30-71234567-1", want: true},
		{name: "wrong check digit", input: "20-12345678-5", want: false},
		{name: "too short", input: "2012345678", want: false},
		{name: "too long", input: "201234567861", want: false},
		{name: "empty", input: "", want: false},
		{name: "letters", input: "20-ABCDEFGH-6", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidCUIT(tt.input); got != tt.want {
				t.Errorf("ValidCUIT(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeCUIT(t *testing.T) {
	got, ok := NormalizeCUIT("20-12345678-6")
	if !ok {
		t.Fatal("expected valid CUIT")
	}
	if got != validCUIT {
		t.Errorf("NormalizeCUIT = %q, want %q", got, validCUIT)
	}

	if _, ok := NormalizeCUIT("20-12345678-5"); ok {
		t.Error("expected checksum failure to reject")
	}
}

func TestExtractCUIT(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{
			name:   "embedded in transfer description",
			text:   "TRANSFERENCIA RECIBIDA DE 20-12345678-6 REF 00123",
			want:   validCUIT,
			wantOK: true,
		},
		{
			name:   "bare digits in text",
			text:   "ACREDITAMIENTO 20123456786 VARIOS",
			want:   validCUIT,
			wantOK: true,
		},
		{
			name:   "skips invalid candidate for a later valid one",
			text:   "REF 20-12345678-5 CUIT 30-71234567-1",
			want:   validCUITOther,
			wantOK: true,
		},
		{
			name:   "no candidate",
			text:   "PAGO PROVEEDORES VARIOS",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractCUIT(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("ExtractCUIT(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ExtractCUIT(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestDNIFromCUIT(t *testing.T) {
	if got := DNIFromCUIT(validCUIT); got != "12345678" {
		t.Errorf("DNIFromCUIT = %q, want 12345678", got)
	}
	if got := DNIFromCUIT("123"); got != "" {
		t.Errorf("expected empty DNI for malformed input, got %q", got)
	}
}

func TestSameParty(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{name: "identical CUITs", a: "20-12345678-6", b: "20123456786", want: true},
		{name: "different CUITs", a: validCUIT, b: validCUITOther, want: false},
		{name: "DNI inside CUIT", a: "12345678", b: "20-12345678-6", want: true},
		{name: "CUIT against its DNI", a: validCUIT, b: "12345678", want: true},
		{name: "DNI mismatch", a: "87654321", b: validCUIT, want: false},
		{name: "two equal DNIs", a: "12345678", b: "12.345.678", want: true},
		{name: "empty side", a: "", b: validCUIT, want: false},
		{name: "both empty", a: "", b: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameParty(tt.a, tt.b); got != tt.want {
				t.Errorf("SameParty(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSameName(t *testing.T) {
	if !SameName("Acme  Sociedad Anonima", "ACME SOCIEDAD ANONIMA") {
		t.Error("expected case and whitespace insensitive equality")
	}
	if SameName("Acme SA", "Acme SRL") {
		t.Error("expected different names to differ")
	}
	if SameName("", "") {
		t.Error("empty names never match")
	}
}
