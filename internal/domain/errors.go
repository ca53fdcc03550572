package domain

import "errors"

var (
	// ErrInvalidNIC is returned when an identity fails format validation.
	ErrInvalidNIC = errors.New("invalid NIC format")
	// ErrInvalidMobile is returned when a mobile number fails format validation.
	ErrInvalidMobile = errors.New("invalid mobile number")
	// ErrInvalidScore is returned when a reported score is out of range.
	ErrInvalidScore = errors.New("invalid score")
	// ErrIdentityConflict indicates the NIC or mobile already belongs to a different player.
	ErrIdentityConflict = errors.New("nic or mobile already registered to a different player")
	// ErrAlreadyPlayed blocks re-authentication after a finished attempt.
	ErrAlreadyPlayed = errors.New("already played")
	// ErrAlreadyRecorded blocks a second result submission for the same player.
	ErrAlreadyRecorded = errors.New("result already recorded")
	// ErrPlayerNotFound indicates a result was submitted for an unknown NIC.
	ErrPlayerNotFound = errors.New("player not found")
	// ErrInvalidState indicates a session operation outside its legal phase.
	ErrInvalidState = errors.New("invalid session state")
	// ErrNoSelection indicates a submission without a selected option.
	ErrNoSelection = errors.New("no option selected")
	// ErrEmptyBank indicates a session start against an empty question bank.
	ErrEmptyBank = errors.New("question bank is empty")
	// ErrBankNotFound indicates the question bank could not be loaded.
	ErrBankNotFound = errors.New("question bank not found")
)
