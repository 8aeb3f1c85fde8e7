// Package tactic loads coach-authored tactic JSON files and parses them into
// domain types. A file holds either a single tactic object or a list of
// tactic objects (a DB export); both carry "meta" and "frames" keys.
package tactic

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
)

// Tactic is one validated tactic document, still in raw JSON form per key.
type Tactic struct {
	Meta   json.RawMessage `json:"meta"`
	Frames json.RawMessage `json:"frames"`
}

// Loaded couples a parsed tactic with the content hash of the source file,
// used as an idempotency key by the storage layer.
type Loaded struct {
	Hash   string
	Source []byte
	Tactic Tactic
}

// Load reads a tactic file, hashes its contents, selects one tactic from it
// (by id when tacticID is non-empty, else by index) and checks the basic
// schema: a "meta" object and a "frames" list must both be present.
func Load(path, tacticID string, tacticIndex int) (*Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tactic file: %w", err)
	}

	t, err := Select(data, tacticID, tacticIndex)
	if err != nil {
		return nil, err
	}
	if err := ensureSchema(t); err != nil {
		return nil, err
	}

	return &Loaded{
		Hash:   fmt.Sprintf("%x", sha256.Sum256(data)),
		Source: data,
		Tactic: t,
	}, nil
}

// Select picks a single tactic from raw JSON that is either one tactic object
// or a list of them. With a list: a non-empty tacticID selects the first
// tactic whose meta.tactic_id matches; otherwise tacticIndex selects by
// position. Selection failures surface immediately, never retried.
func Select(data []byte, tacticID string, tacticIndex int) (Tactic, error) {
	trimmed := firstNonSpace(data)

	switch trimmed {
	case '{':
		var t Tactic
		if err := json.Unmarshal(data, &t); err != nil {
			return Tactic{}, fmt.Errorf("parse tactic object: %w", err)
		}
		return t, nil

	case '[':
		var list []Tactic
		if err := json.Unmarshal(data, &list); err != nil {
			return Tactic{}, fmt.Errorf("parse tactic list: %w", err)
		}
		if len(list) == 0 {
			return Tactic{}, fmt.Errorf("tactic JSON is an empty list")
		}

		if tacticID != "" {
			for _, t := range list {
				var meta struct {
					TacticID string `json:"tactic_id"`
				}
				if json.Unmarshal(t.Meta, &meta) == nil && meta.TacticID == tacticID {
					return t, nil
				}
			}
			return Tactic{}, fmt.Errorf("tactic_id %q not found in tactic list", tacticID)
		}

		if tacticIndex < 0 || tacticIndex >= len(list) {
			return Tactic{}, fmt.Errorf("tactic index %d out of range (len=%d)", tacticIndex, len(list))
		}
		return list[tacticIndex], nil
	}

	return Tactic{}, fmt.Errorf("tactic JSON must be an object (single tactic) or a list (tactic DB export)")
}

// ensureSchema verifies the two required top-level keys have the right shape.
func ensureSchema(t Tactic) error {
	if len(t.Meta) == 0 || firstNonSpace(t.Meta) != '{' {
		return fmt.Errorf("tactic missing 'meta' object")
	}
	if len(t.Frames) == 0 || firstNonSpace(t.Frames) != '[' {
		return fmt.Errorf("tactic missing 'frames' list")
	}
	return nil
}

func firstNonSpace(data []byte) byte {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b
	}
	return 0
}

// hashPrefixLen is how much of the content hash list/show commands display.
const hashPrefixLen = 12

// ShortHash returns the display prefix of a tactic content hash.
func ShortHash(hash string) string {
	if len(hash) <= hashPrefixLen {
		return hash
	}
	return hash[:hashPrefixLen]
}
