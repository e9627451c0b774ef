package validator

import "testing"

func TestMobile(t *testing.T) {
	cases := []struct {
		value string
		ok    bool
	}{
		{"", true},
		{"9876500000", true},
		{"+91 98765 00000", true},
		{"98x7650000", false},
		{"not a number", false},
		{"12345", false},
	}
	for _, tc := range cases {
		err := Mobile(tc.value)
		if tc.ok && err != nil {
			t.Errorf("Mobile(%q) unexpectedly rejected: %v", tc.value, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("Mobile(%q) unexpectedly accepted", tc.value)
		}
	}
}

func TestPincode(t *testing.T) {
	if err := Pincode("395002"); err != nil {
		t.Errorf("valid pincode rejected: %v", err)
	}
	if err := Pincode(""); err != nil {
		t.Errorf("empty pincode must pass: %v", err)
	}
	if err := Pincode("39500"); err == nil {
		t.Error("5-digit pincode accepted")
	}
	if err := Pincode("39500a"); err == nil {
		t.Error("non-numeric pincode accepted")
	}
}

func TestTaxID(t *testing.T) {
	if err := TaxID("24AAACC1206D1ZM"); err != nil {
		t.Errorf("valid GSTIN rejected: %v", err)
	}
	if err := TaxID("24aaacc1206d1zm"); err != nil {
		t.Errorf("case must be normalized before checking: %v", err)
	}
	if err := TaxID(""); err != nil {
		t.Errorf("empty tax id must pass: %v", err)
	}
	if err := TaxID("INVALID"); err == nil {
		t.Error("malformed GSTIN accepted")
	}
}

func TestCollect(t *testing.T) {
	errs := Collect(Mobile("bad"), Pincode("395002"), TaxID("INVALID"))
	if len(errs) != 2 {
		t.Fatalf("expected two field errors, got %d: %v", len(errs), errs)
	}
}
