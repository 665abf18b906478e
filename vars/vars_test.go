package vars

import "testing"

func TestFirstNonZero(t *testing.T) {
	if FirstNonZero("", "a", "b") != "a" {
		t.Fatal()
	}
	if FirstNonZero(0, 0) != 0 {
		t.Fatal()
	}
	if FirstNonZero(0, 3) != 3 {
		t.Fatal()
	}
}

func TestDerefOrZero(t *testing.T) {
	if DerefOrZero[int](nil) != 0 {
		t.Fatal()
	}
	if DerefOrZero(PtrTo(42)) != 42 {
		t.Fatal()
	}
}

func TestStrToBool(t *testing.T) {
	for _, str := range []string{"true", "T", "yes", "Y", "1"} {
		if !StrToBool(str) {
			t.Fatalf("expected true for %q", str)
		}
	}
	for _, str := range []string{"false", "no", "", "whatever"} {
		if StrToBool(str) {
			t.Fatalf("expected false for %q", str)
		}
	}
}
