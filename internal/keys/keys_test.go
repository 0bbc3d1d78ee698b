package keys

import "testing"

func TestIsInternal(t *testing.T) {
	internal := []string{"$req$user:1", "$sub$user:1", "$req$", "$sub$x"}
	for _, k := range internal {
		if !IsInternal(k) {
			t.Fatalf("IsInternal(%q) = false", k)
		}
	}

	external := []string{"user:1", "", "req$user", "$reqx", "x$req$", "$ req$"}
	for _, k := range external {
		if IsInternal(k) {
			t.Fatalf("IsInternal(%q) = true", k)
		}
	}
}
