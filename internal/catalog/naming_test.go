package catalog

import (
	"context"
	"testing"
	"time"
)

func TestBaseName(t *testing.T) {
	cases := []struct {
		name         string
		displayName  string
		letterTypeID string
		want         string
	}{
		{"display name sanitized", "Experience Letter", "ab12cd34-0000", "Experience_Letter"},
		{"punctuation replaced", "Offer (2024)", "x", "Offer__2024_"},
		{"falls back to id stem", "", "ab12cd34-5678-90ef", "dochub_ab12cd34"},
		{"whitespace display name", "   ", "deadbeef-1234", "dochub_deadbeef"},
		{"id with no hex chars", "", "zzzz", "dochub_table"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := BaseName(c.displayName, c.letterTypeID, "dochub"); got != c.want {
				t.Errorf("BaseName = %q, want %q", got, c.want)
			}
		})
	}
}

func TestUniqueNameTimestamp(t *testing.T) {
	now := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)
	never := func(ctx context.Context, name string) (bool, error) { return false, nil }

	got, err := UniqueName(context.Background(), "Experience_Letter", now, never)
	if err != nil {
		t.Fatal(err)
	}
	want := "Experience_Letter_20240102_150405"
	if got != want {
		t.Errorf("UniqueName = %q, want %q", got, want)
	}
}

func TestUniqueNameSuffixesOnCollision(t *testing.T) {
	now := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)
	taken := map[string]bool{
		"t_20240102_150405":   true,
		"t_20240102_150405_1": true,
	}
	exists := func(ctx context.Context, name string) (bool, error) { return taken[name], nil }

	got, err := UniqueName(context.Background(), "t", now, exists)
	if err != nil {
		t.Fatal(err)
	}
	if got != "t_20240102_150405_2" {
		t.Errorf("UniqueName = %q, want t_20240102_150405_2", got)
	}
}

func TestUniqueNameSerializedCallsDistinct(t *testing.T) {
	// N serialized creations with the same display name and timestamp must
	// all resolve distinct names.
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	taken := map[string]bool{}
	exists := func(ctx context.Context, name string) (bool, error) { return taken[name], nil }

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		name, err := UniqueName(context.Background(), "Offer_Letter", now, exists)
		if err != nil {
			t.Fatal(err)
		}
		if seen[name] {
			t.Fatalf("duplicate name %q on call %d", name, i)
		}
		seen[name] = true
		taken[name] = true
	}
}

func TestUniqueNameUTC(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2024, 1, 2, 20, 34, 5, 0, loc) // 15:04:05 UTC
	never := func(ctx context.Context, name string) (bool, error) { return false, nil }

	got, err := UniqueName(context.Background(), "t", now, never)
	if err != nil {
		t.Fatal(err)
	}
	if got != "t_20240102_150405" {
		t.Errorf("UniqueName = %q, want UTC-stamped t_20240102_150405", got)
	}
}
