package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const maxRecentSearches = 8

type tokenFile struct {
	Token string `json:"token"`
}

// RecentSearch is a remembered origin/destination pair used to prefill the
// search form.
type RecentSearch struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	BusType     string `json:"bus_type,omitempty"`
}

type searchHistory struct {
	Searches []RecentSearch `json:"searches"`
}

// LoadToken returns the persisted auth token, or "" when none is stored.
func LoadToken() (string, error) {
	path, err := configPath("token.json")
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	var file tokenFile
	if err := json.Unmarshal(data, &file); err != nil {
		return "", errors.New("invalid token file format")
	}
	return file.Token, nil
}

// SaveToken persists the auth token across sessions.
func SaveToken(token string) error {
	if strings.TrimSpace(token) == "" {
		return errors.New("token is required")
	}
	path, err := configPath("token.json")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(tokenFile{Token: token}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

// ClearToken removes the persisted auth token. Clearing an absent token is
// not an error.
func ClearToken() error {
	path, err := configPath("token.json")
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// LoadRecentSearches returns remembered searches, most recent first.
func LoadRecentSearches() ([]RecentSearch, error) {
	path, err := configPath("searches.json")
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var history searchHistory
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, errors.New("invalid search history format")
	}
	return history.Searches, nil
}

// RememberSearch moves the search to the front of the history, dropping
// duplicates and trimming to the cap.
func RememberSearch(search RecentSearch) error {
	if strings.TrimSpace(search.Origin) == "" || strings.TrimSpace(search.Destination) == "" {
		return errors.New("origin and destination are required")
	}

	history, _ := LoadRecentSearches()
	next := []RecentSearch{search}
	for _, existing := range history {
		if strings.EqualFold(existing.Origin, search.Origin) &&
			strings.EqualFold(existing.Destination, search.Destination) {
			continue
		}
		next = append(next, existing)
		if len(next) >= maxRecentSearches {
			break
		}
	}

	path, err := configPath("searches.json")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(searchHistory{Searches: next}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

func configPath(name string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "redbus-cli", name), nil
}
