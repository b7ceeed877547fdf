package model

import "strings"

// Bitbot is the normalized record derived from one "721" metadata envelope.
type Bitbot struct {
	Name       string              `json:"name"`
	IPFS       string              `json:"ipfs"`
	References []string            `json:"references"`
	Meta       BitbotMeta          `json:"meta"`
	Payloads   []map[string]string `json:"payloads,omitempty"`
}

// BitbotMeta holds the descriptive fields of a bitbot.
type BitbotMeta struct {
	Fruit  string `json:"fruit"`
	Moon   string `json:"moon"`
	UID    string `json:"uid"`
	Traits Traits `json:"traits"`
}

// Traits holds the fixed trait categories of a bitbot.
type Traits struct {
	Background string `json:"background"`
	Ears       string `json:"ears"`
	Eyes       string `json:"eyes"`
	Hat        string `json:"hat"`
	Mouth      string `json:"mouth"`
	Special    string `json:"special"`
}

// Set assigns value to the trait category matching name, ignoring case.
// It reports whether name is a known category.
func (t *Traits) Set(name, value string) bool {
	switch strings.ToLower(name) {
	case "background":
		t.Background = value
	case "ears":
		t.Ears = value
	case "eyes":
		t.Eyes = value
	case "hat":
		t.Hat = value
	case "mouth":
		t.Mouth = value
	case "special":
		t.Special = value
	default:
		return false
	}
	return true
}
