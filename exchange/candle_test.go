package exchange

import (
	"encoding/json"
	"testing"
	"time"
)

func TestCandleMarshalsAsArray(t *testing.T) {
	c, err := NewCandleFromStrings(time.UnixMilli(1700000000000), "1.5", "2", "1", "1.75", "100.25")
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	b, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	if want := `[1700000000000,1.5,2,1,1.75,100.25]`; string(b) != want {
		t.Errorf("Expected %s but got %s.", want, b)
	}
}

func TestCandleRejectsBadPrices(t *testing.T) {
	if _, err := NewCandleFromStrings(time.Now(), "1", "x", "1", "1", "1"); err == nil {
		t.Errorf("A non-numeric high should fail.")
	}
}
