package services

import "errors"

// Shared sentinel errors mapped to HTTP statuses in the handlers package.
var (
	ErrNotFound         = errors.New("requested resource not found")
	ErrValidationFailed = errors.New("validation failed")

	// Authentication and authorization
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbiddenOperation = errors.New("operation not allowed for the current actor")

	// Business rules
	ErrPasswordTooShort          = errors.New("password must be at least 8 characters")
	ErrEventTitleRequired        = errors.New("event title is required")
	ErrEventInvalidCapacity      = errors.New("event max teams must be positive")
	ErrEventInvalidDeadline      = errors.New("event registration deadline must be in the future")
	ErrEventInvalidStatus        = errors.New("invalid event status provided")
	ErrInvalidStatusTransition   = errors.New("invalid event status transition")
	ErrRegistrationClosed        = errors.New("event registration is not open")
	ErrRegistrationDeadlinePast  = errors.New("event registration deadline has passed")
	ErrEventFull                 = errors.New("event has reached its team capacity")
	ErrTeamNameRequired          = errors.New("team name is required")
	ErrMemberNicknameRequired    = errors.New("member nickname is required")
	ErrGroupNameRequired         = errors.New("group name is required")
	ErrStageNameRequired         = errors.New("stage name is required")
	ErrRoundInvalidNumber        = errors.New("round number must be positive")
	ErrTeamEventMismatch         = errors.New("team does not belong to this event")
	ErrStageEventMismatch        = errors.New("stage does not belong to this event")
	ErrMatchTeamsIdentical       = errors.New("a match requires two distinct teams")
	ErrMatchInvalidStatus        = errors.New("invalid match status provided")
	ErrMatchNegativeScore        = errors.New("match scores must not be negative")
	ErrLogoUnsupportedFormat     = errors.New("logo must be a png or jpeg image")

	// Entity-specific not-found errors for richer handler mapping
	ErrUserNotFound   = errors.New("user not found")
	ErrEventNotFound  = errors.New("event not found")
	ErrTeamNotFound   = errors.New("team not found")
	ErrMemberNotFound = errors.New("member not found")
	ErrGroupNotFound  = errors.New("group not found")
	ErrStageNotFound  = errors.New("stage not found")
	ErrMatchNotFound  = errors.New("match not found")
	ErrRoundNotFound  = errors.New("match round not found")

	// Conflicts
	ErrUserEmailConflict      = errors.New("email address is already in use")
	ErrEventTitleConflict     = errors.New("event title already exists for this organizer")
	ErrTeamNameConflict       = errors.New("team name is already taken in this event")
	ErrMemberNicknameConflict = errors.New("nickname is already taken in this team")
	ErrGroupNameConflict      = errors.New("group name is already taken in this event")
	ErrGroupTeamConflict      = errors.New("team is already assigned to this group")
	ErrRoundNumberConflict    = errors.New("round number already exists for this match")
	ErrEventInUse             = errors.New("event still has teams, stages or matches")
	ErrTeamInUse              = errors.New("team still has members or matches")
	ErrStageInUse             = errors.New("stage still has matches")
)
