package store

import (
	"fmt"
	"testing"
)

func setTestConfigDir(t *testing.T) {
	t.Helper()
	root := t.TempDir()
	t.Setenv("HOME", root)
	t.Setenv("XDG_CONFIG_HOME", root)
}

func TestToken_RoundTrip(t *testing.T) {
	setTestConfigDir(t)

	token, err := LoadToken()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if token != "" {
		t.Fatalf("expected no token, got %q", token)
	}

	if err := SaveToken("tkn-abc"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	token, err = LoadToken()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if token != "tkn-abc" {
		t.Fatalf("unexpected token: %q", token)
	}

	if err := ClearToken(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	token, err = LoadToken()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if token != "" {
		t.Fatalf("expected token cleared, got %q", token)
	}
}

func TestSaveToken_RejectsBlank(t *testing.T) {
	setTestConfigDir(t)

	if err := SaveToken("  "); err == nil {
		t.Fatal("expected error for blank token")
	}
}

func TestClearToken_AbsentIsNotAnError(t *testing.T) {
	setTestConfigDir(t)

	if err := ClearToken(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestRememberSearch_MostRecentFirst(t *testing.T) {
	setTestConfigDir(t)

	if err := RememberSearch(RecentSearch{Origin: "Pune", Destination: "Mumbai"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if err := RememberSearch(RecentSearch{Origin: "Bengaluru", Destination: "Chennai", BusType: "AC"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	searches, err := LoadRecentSearches()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(searches) != 2 {
		t.Fatalf("expected 2 searches, got %d", len(searches))
	}
	if searches[0].Origin != "Bengaluru" || searches[0].BusType != "AC" {
		t.Fatalf("unexpected first entry: %+v", searches[0])
	}
	if searches[1].Origin != "Pune" {
		t.Fatalf("unexpected second entry: %+v", searches[1])
	}
}

func TestRememberSearch_DedupesIgnoringCase(t *testing.T) {
	setTestConfigDir(t)

	if err := RememberSearch(RecentSearch{Origin: "Pune", Destination: "Mumbai"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if err := RememberSearch(RecentSearch{Origin: "Bengaluru", Destination: "Chennai"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if err := RememberSearch(RecentSearch{Origin: "pune", Destination: "MUMBAI", BusType: "SLEEPER"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	searches, err := LoadRecentSearches()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(searches) != 2 {
		t.Fatalf("expected duplicate merged, got %d entries: %+v", len(searches), searches)
	}
	if searches[0].Origin != "pune" || searches[0].BusType != "SLEEPER" {
		t.Fatalf("unexpected first entry: %+v", searches[0])
	}
}

func TestRememberSearch_TrimsToCap(t *testing.T) {
	setTestConfigDir(t)

	for i := 0; i < maxRecentSearches+3; i++ {
		search := RecentSearch{
			Origin:      fmt.Sprintf("City%d", i),
			Destination: "Mumbai",
		}
		if err := RememberSearch(search); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
	}

	searches, err := LoadRecentSearches()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(searches) != maxRecentSearches {
		t.Fatalf("expected %d searches, got %d", maxRecentSearches, len(searches))
	}
	if searches[0].Origin != fmt.Sprintf("City%d", maxRecentSearches+2) {
		t.Fatalf("unexpected first entry: %+v", searches[0])
	}
}

func TestRememberSearch_RejectsMissingRoute(t *testing.T) {
	setTestConfigDir(t)

	if err := RememberSearch(RecentSearch{Destination: "Mumbai"}); err == nil {
		t.Fatal("expected error for missing origin")
	}
	if err := RememberSearch(RecentSearch{Origin: "Pune"}); err == nil {
		t.Fatal("expected error for missing destination")
	}
}
