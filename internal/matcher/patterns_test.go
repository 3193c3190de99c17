package matcher

import "testing"

func TestExtractInvoiceReference(t *testing.T) {
	tests := []struct {
		name string
		note string
		want string
		ok   bool
	}{
		{name: "factura with letter and nro", note: "ANULA FACTURA A Nº 0001-00000123", want: "00001-00000123", ok: true},
		{name: "fc abbreviation", note: "FC B 0003-456", want: "00003-00000456", ok: true},
		{name: "fac with dot", note: "FAC. 0001-00000123 por devolucion", want: "00001-00000123", ok: true},
		{name: "ref prefix", note: "REF: 0002-00000045", want: "00002-00000045", ok: true},
		{name: "cbte prefix", note: "CBTE 0001-123", want: "00001-00000123", ok: true},
		{name: "comp with nro", note: "COMP. Nº 0001-123", want: "00001-00000123", ok: true},
		{name: "bare branch-sequence", note: "devolucion mercaderia 0001-00000123", want: "00001-00000123", ok: true},
		{name: "lowercase", note: "factura a 0001-99", want: "00001-00000099", ok: true},
		{name: "no reference", note: "devolucion por mercaderia dañada", ok: false},
		{name: "empty note", note: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractInvoiceReference(tt.note)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("reference = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractInvoiceReferenceCascadeOrder(t *testing.T) {
	// The explicit FACTURA pattern must win over the bare pattern even when
	// a bare number appears earlier in the text.
	note := "NC 0002-00000007 ANULA FACTURA 0001-00000123"
	got, ok := ExtractInvoiceReference(note)
	if !ok {
		t.Fatal("expected a reference")
	}
	if got != "00001-00000123" {
		t.Errorf("reference = %q, want the FACTURA-prefixed number", got)
	}
}

func TestNormalizeInvoiceNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "1-123", want: "00001-00000123", ok: true},
		{in: "0001-00000123", want: "00001-00000123", ok: true},
		{in: " 3 - 456 ", want: "00003-00000456", ok: true},
		{in: "123", ok: false},
		{in: "a-123", ok: false},
		{in: "1-b", ok: false},
		{in: "", ok: false},
	}

	for _, tt := range tests {
		got, ok := NormalizeInvoiceNumber(tt.in)
		if ok != tt.ok {
			t.Errorf("NormalizeInvoiceNumber(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeInvoiceNumber(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
