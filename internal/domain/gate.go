package domain

import (
	"regexp"
	"strings"
	"time"
)

var (
	nicPattern    = regexp.MustCompile(`^([0-9]{9}[vVxX]|[0-9]{12})$`)
	mobilePattern = regexp.MustCompile(`^07[0-9]{8}$`)
)

// ValidNIC reports whether s is a well-formed national ID: the legacy
// nine-digits-plus-letter form or the newer twelve-digit form.
func ValidNIC(s string) bool {
	return nicPattern.MatchString(s)
}

// ValidMobile reports whether s is a well-formed local mobile number
// (07 prefix followed by eight digits).
func ValidMobile(s string) bool {
	return mobilePattern.MatchString(s)
}

// Admit decides whether a player may enter the quiz. existing is the record
// found under either key, or nil when no record exists. On success it returns
// the admitted record (created or refreshed); Played is never mutated here.
//
// Both keys must co-refer: a record matched by only one of NIC/mobile means
// the other key belongs to someone else.
func Admit(existing *Player, nic, name, mobile string, now time.Time) (Player, error) {
	name = strings.TrimSpace(name)

	if existing == nil {
		return Player{
			NIC:       nic,
			Name:      name,
			Mobile:    mobile,
			Status:    StatusLost,
			CreatedAt: now,
			UpdatedAt: now,
		}, nil
	}

	if existing.NIC != nic || existing.Mobile != mobile {
		return Player{}, ErrIdentityConflict
	}
	if existing.Played {
		return Player{}, ErrAlreadyPlayed
	}

	admitted := *existing
	if name != "" && name != admitted.Name {
		admitted.Name = name
		admitted.UpdatedAt = now
	}
	return admitted, nil
}

// ApplyResult finalizes a player's attempt: sets the score, derives the
// WON/LOST status from threshold, and flips Played. A record that has
// already played fails with ErrAlreadyRecorded so retried deliveries
// cannot double-count.
func ApplyResult(p *Player, score, threshold int, now time.Time) error {
	if p == nil {
		return ErrPlayerNotFound
	}
	if p.Played {
		return ErrAlreadyRecorded
	}
	p.Score = score
	p.Status = StatusLost
	if score >= threshold {
		p.Status = StatusWon
	}
	p.Played = true
	p.UpdatedAt = now
	return nil
}
