package tier

import "testing"

func TestForCheckout(t *testing.T) {
	d, ok := ForCheckout("starter")
	if !ok {
		t.Fatal("starter should be purchasable")
	}
	if d.Amount != 2900 {
		t.Fatalf("starter display amount = %d, want 2900", d.Amount)
	}

	d, ok = ForCheckout("founding_pro")
	if !ok {
		t.Fatal("founding_pro should be purchasable")
	}
	if d.Amount != 4900 {
		t.Fatalf("founding_pro display amount = %d, want 4900", d.Amount)
	}

	if _, ok := ForCheckout("waitlist"); ok {
		t.Fatal("waitlist is not purchasable")
	}
	if _, ok := ForCheckout("gold"); ok {
		t.Fatal("unknown tier should not be purchasable")
	}
}

func TestValidForSubmit(t *testing.T) {
	for _, id := range []string{"waitlist", "starter", "founding_pro", "starter_PENDING", "founding_pro_PENDING"} {
		if !ValidForSubmit(id) {
			t.Fatalf("%s should be a valid submit tier", id)
		}
	}
	if ValidForSubmit("gold") {
		t.Fatal("gold should not be a valid submit tier")
	}
	if ValidForSubmit("") {
		t.Fatal("empty tier should not be valid")
	}
}
