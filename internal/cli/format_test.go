package cli

import (
	"testing"

	"github.com/localharvest/localharvest/internal/listing"
)

func TestOfferLabel(t *testing.T) {
	tests := []struct {
		in   listing.OfferType
		want string
	}{
		{listing.OfferTrade, "Trade"},
		{listing.OfferSell, "Sell"},
		{listing.OfferTradeOrSell, "Trade or Sell"},
		{listing.OfferType("mystery"), "mystery"},
	}

	for _, tt := range tests {
		if got := offerLabel(tt.in); got != tt.want {
			t.Errorf("offerLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("abcdefgh-1234"); got != "abcdefgh" {
		t.Errorf("shortID = %q, want abcdefgh", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID = %q, want abc", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q, want short", got)
	}
	if got := truncate("a very long item name here", 10); got != "a very ..." {
		t.Errorf("truncate = %q, want %q", got, "a very ...")
	}
}
