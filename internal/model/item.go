package model

import "time"

// Item is a uniquely coded unit of custody with exactly one current owner.
type Item struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatorID int64     `json:"creator_id"`
	OwnerID   int64     `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`

	// Joined fields (not always populated).
	OwnerHandle string `json:"owner_handle,omitempty"`
}

// Item codes are ItemCodeLetters uppercase ASCII letters followed by
// ItemCodeDigits ASCII digits, e.g. ABCDE12345.
const (
	ItemCodeLetters = 5
	ItemCodeDigits  = 5
	ItemCodeLength  = ItemCodeLetters + ItemCodeDigits
)

// ValidItemCode reports whether code has the item code format.
func ValidItemCode(code string) bool {
	if len(code) != ItemCodeLength {
		return false
	}
	for i := 0; i < ItemCodeLength; i++ {
		c := code[i]
		if i < ItemCodeLetters {
			if c < 'A' || c > 'Z' {
				return false
			}
		} else if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
