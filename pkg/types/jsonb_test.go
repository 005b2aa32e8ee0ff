package types

import "testing"

func TestAddressRoundTripThroughDriver(t *testing.T) {
	in := Address{Street: "1 Main St", City: "Pune", State: "MH", ZipCode: "411001", Country: "IN"}
	value, err := in.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}

	var out Address
	if err := out.Scan([]byte(value.(string))); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if out != in {
		t.Fatalf("expected %+v, got %+v", in, out)
	}
}

func TestScanJSONHandlesNullAndBadTypes(t *testing.T) {
	addr := Address{City: "keep"}
	if err := addr.Scan(nil); err != nil {
		t.Fatalf("nil scan: %v", err)
	}
	if !addr.IsZero() {
		t.Fatalf("expected nil scan to reset address, got %+v", addr)
	}
	if err := ScanJSON(42, &addr); err == nil {
		t.Fatal("expected unsupported type error")
	}
}
