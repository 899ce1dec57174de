package content

import (
	"strings"
	"testing"
)

func TestLoadEmbeddedCatalog(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() == 0 {
		t.Fatal("catalog is empty")
	}
	for _, key := range c.Keys() {
		if _, ok := c.Get(key); !ok {
			t.Errorf("Keys() lists %q but Get misses it", key)
		}
	}
}

func TestNewCatalogRejectsBadTemplates(t *testing.T) {
	cases := []struct {
		name string
		tpl  Template
	}{
		{"empty sample", Template{Sample: "", Details: okDetails()}},
		{"empty details", Template{Sample: "hi", Details: ""}},
		{"missing token", Template{Sample: "hi", Details: "no tokens at all"}},
		{"repeated token", Template{
			Sample:  "hi",
			Details: okDetails() + " again " + TokenPrice,
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCatalog(map[string]Template{"k": tc.tpl})
			if err == nil {
				t.Errorf("NewCatalog accepted %s", tc.name)
			}
		})
	}

	if _, err := NewCatalog(nil); err == nil {
		t.Error("NewCatalog accepted an empty catalog")
	}
}

func okDetails() string {
	return "At " + TokenLocation + " buy " + TokenCommodity + " for " +
		TokenDiscount + " off, " + TokenDuration + " days, price " + TokenPrice
}

func TestFormatReplacesEachTokenOnce(t *testing.T) {
	s := Subst{
		LocationName:    "Ceres Station",
		CommodityName:   "Raw Ore",
		DiscountPercent: 0.30,
		DurationDays:    60,
		Price:           2200,
	}
	got := Format(okDetails(), s)

	for _, want := range []string{"Ceres Station", "Raw Ore", "30%", "60", "⌬2200"} {
		if !strings.Contains(got, want) {
			t.Errorf("Format output missing %q: %s", want, got)
		}
	}
	for _, tok := range allTokens {
		if strings.Contains(got, tok) {
			t.Errorf("Format left token %s unreplaced: %s", tok, got)
		}
	}
}

func TestFormatDiscountRounding(t *testing.T) {
	got := Format(TokenDiscount, Subst{DiscountPercent: 0.499})
	if got != "50%" {
		t.Errorf("discount 0.499 rendered %q, want 50%%", got)
	}
	got = Format(TokenDiscount, Subst{DiscountPercent: 0.15})
	if got != "15%" {
		t.Errorf("discount 0.15 rendered %q, want 15%%", got)
	}
}
