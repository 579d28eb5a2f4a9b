package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/mobaarena/esports-platform/repositories"
)

// generateAccessToken returns a random hex token used as the bearer
// credential for teams and members.
func generateAccessToken() string {
	bytes := make([]byte, 24)
	if _, err := rand.Read(bytes); err != nil {
		panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
	}
	return hex.EncodeToString(bytes)
}

var allowedLogoContentTypes = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
}

func logoObjectKey(kind string, id int, contentType string) (string, error) {
	ext, ok := allowedLogoContentTypes[contentType]
	if !ok {
		return "", ErrLogoUnsupportedFormat
	}
	return fmt.Sprintf("%s/%d/logo.%s", kind, id, ext), nil
}

// mapRepositoryError translates repository sentinels into service sentinels
// so handlers only ever match against the services package.
func mapRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, repositories.ErrUserEmailConflict):
		return ErrUserEmailConflict
	case errors.Is(err, repositories.ErrEventNotFound):
		return ErrEventNotFound
	case errors.Is(err, repositories.ErrEventTitleConflict):
		return ErrEventTitleConflict
	case errors.Is(err, repositories.ErrTeamNotFound):
		return ErrTeamNotFound
	case errors.Is(err, repositories.ErrTeamNameConflict):
		return ErrTeamNameConflict
	case errors.Is(err, repositories.ErrTeamEventInvalid):
		return ErrEventNotFound
	case errors.Is(err, repositories.ErrMemberNotFound):
		return ErrMemberNotFound
	case errors.Is(err, repositories.ErrMemberNicknameConflict):
		return ErrMemberNicknameConflict
	case errors.Is(err, repositories.ErrMemberTeamInvalid):
		return ErrTeamNotFound
	case errors.Is(err, repositories.ErrGroupNotFound):
		return ErrGroupNotFound
	case errors.Is(err, repositories.ErrGroupNameConflict):
		return ErrGroupNameConflict
	case errors.Is(err, repositories.ErrGroupEventInvalid):
		return ErrEventNotFound
	case errors.Is(err, repositories.ErrGroupTeamConflict):
		return ErrGroupTeamConflict
	case errors.Is(err, repositories.ErrGroupTeamNotFound):
		return ErrTeamNotFound
	case errors.Is(err, repositories.ErrStageNotFound):
		return ErrStageNotFound
	case errors.Is(err, repositories.ErrStageEventInvalid):
		return ErrEventNotFound
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrMatchStageInvalid):
		return ErrStageNotFound
	case errors.Is(err, repositories.ErrMatchGroupInvalid):
		return ErrGroupNotFound
	case errors.Is(err, repositories.ErrMatchTeamInvalid):
		return ErrTeamNotFound
	case errors.Is(err, repositories.ErrRoundNotFound):
		return ErrRoundNotFound
	case errors.Is(err, repositories.ErrRoundMatchInvalid):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrRoundNumberConflict):
		return ErrRoundNumberConflict
	case errors.Is(err, repositories.ErrEventInUse):
		return ErrEventInUse
	case errors.Is(err, repositories.ErrTeamInUse):
		return ErrTeamInUse
	case errors.Is(err, repositories.ErrStageInUse):
		return ErrStageInUse
	}
	return err
}
