package discovery_test

import (
	"testing"

	"marquee/internal/discovery"
)

func TestValidateTitleTaxonomy(t *testing.T) {
	cases := []struct {
		title  string
		reason discovery.RejectionReason
	}{
		{"X", discovery.ReasonTooShort},
		{"12345", discovery.ReasonOnlyNumbers},
		{"2026", discovery.ReasonYearOnly},
		{"IMAX", discovery.ReasonAllCapsShort},
		{"95%", discovery.ReasonRatingText},
		{"Audience Score", discovery.ReasonRatingText},
		{"Sign In", discovery.ReasonUIElement},
		{"Official Trailer", discovery.ReasonNavigation},
		{"Watch Now on Demand", discovery.ReasonStreaming},
		{"Untitled", discovery.ReasonPlaceholder},
		{"The Complete Series Box Set", discovery.ReasonCollection},
		{"Live at Wembley", discovery.ReasonConcert},
	}
	for _, tc := range cases {
		_, reason, ok := discovery.ValidateTitle(tc.title)
		if ok {
			t.Errorf("%q accepted, want rejection %s", tc.title, tc.reason)
			continue
		}
		if reason != tc.reason {
			t.Errorf("%q rejected as %s, want %s", tc.title, reason, tc.reason)
		}
	}
}

func TestValidateTitleAcceptsRealTitles(t *testing.T) {
	for _, title := range []string{
		"Dune: Part Three",
		"Up",
		"It",
		"M3GAN 2.0",
	} {
		if _, reason, ok := discovery.ValidateTitle(title); !ok {
			t.Errorf("%q rejected as %s, want accepted", title, reason)
		}
	}
}

func TestValidateTitleCleansScrapedArtifacts(t *testing.T) {
	cleaned, _, ok := discovery.ValidateTitle("**The  Long Walk**,")
	if !ok {
		t.Fatal("cleaned title should be accepted")
	}
	if cleaned != "The Long Walk" {
		t.Errorf("cleaned = %q", cleaned)
	}
}
