package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity. The version suffix allows
// the algorithm to change without colliding with stored IDs.
const (
	DomainEvent = "tilematch/event/v1"
	DomainBoard = "tilematch/board/v1"
	DomainLevel = "tilematch/level/v1"
)

// hashWithDomain computes SHA256(domain || 0x00 || data). The null byte keeps
// the domain/data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// EventID computes the content-addressed ID of an event. The ID is stable
// across replays of the same game: it covers the game, the logical sequence
// number and everything the event says, but no wall-clock time.
func EventID(gameID string, seq, move int64, pass int, typ EventType, payload Object) (string, error) {
	if payload == nil {
		payload = Object{}
	}
	obj := Object{
		"game_id": String(gameID),
		"seq":     Int(seq),
		"move":    Int(move),
		"pass":    Int(pass),
		"type":    String(typ),
		"payload": payload,
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("EventID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainEvent, canonical), nil
}

// BoardHash hashes a board snapshot: its layout rows (top row first) and the
// special pieces on it.
func BoardHash(rows []string, specials Array) (string, error) {
	if specials == nil {
		specials = Array{}
	}
	canonical, err := MarshalCanonical(Object{
		"rows":     Strings(rows),
		"specials": specials,
	})
	if err != nil {
		return "", fmt.Errorf("BoardHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainBoard, canonical), nil
}

// LevelHash hashes a level's canonical encoding.
func LevelHash(level Object) (string, error) {
	canonical, err := MarshalCanonical(level)
	if err != nil {
		return "", fmt.Errorf("LevelHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainLevel, canonical), nil
}

// MustEventID is like EventID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustEventID(gameID string, seq, move int64, pass int, typ EventType, payload Object) string {
	id, err := EventID(gameID, seq, move, pass, typ, payload)
	if err != nil {
		panic(err)
	}
	return id
}
