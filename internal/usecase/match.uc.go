package usecase

import (
	"context"

	"go.uber.org/zap"

	"sportmatch-service/internal/domain"
	"sportmatch-service/pkg/xerrors"
)

// ProfileReader is the read side of the profile repository used by browsing
// and partner search.
type ProfileReader interface {
	GetByUserID(ctx context.Context, userID string) (*domain.UserProfile, error)
	SearchPartners(ctx context.Context, userID string, f domain.PartnerFilter) ([]domain.PartnerResult, error)
}

// SportDirectory lists the sports catalog shown in the search UI.
type SportDirectory interface {
	List(ctx context.Context) ([]domain.Sport, error)
}

type MatchUsecase struct {
	profiles ProfileReader
	sports   SportDirectory
	logger   *zap.Logger
}

func NewMatchUsecase(profiles ProfileReader, sports SportDirectory, logger *zap.Logger) *MatchUsecase {
	return &MatchUsecase{
		profiles: profiles,
		sports:   sports,
		logger:   logger,
	}
}

func (uc *MatchUsecase) Profile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	return uc.profiles.GetByUserID(ctx, userID)
}

func (uc *MatchUsecase) Sports(ctx context.Context) ([]domain.Sport, error) {
	return uc.sports.List(ctx)
}

// PublicProfile is another user's profile as shown to searchers. Incomplete
// profiles are indistinguishable from missing ones, and contact details stay
// hidden.
func (uc *MatchUsecase) PublicProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	profile, err := uc.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !profile.ProfileComplete {
		return nil, xerrors.ErrNotFound
	}

	profile.Phone = ""
	profile.BirthDate = nil
	return profile, nil
}

// Search runs a partner search for the given user. Filter enums are checked
// here so bad query values surface as field errors rather than empty result
// sets.
func (uc *MatchUsecase) Search(ctx context.Context, userID string, f domain.PartnerFilter) ([]domain.PartnerResult, xerrors.FieldErrors, error) {
	fields := xerrors.FieldErrors{}

	if f.MinSkill != "" && !f.MinSkill.Valid() {
		fields["min_skill"] = "Skill level must be beginner, intermediate or advanced"
	}
	if f.Gender != "" && !f.Gender.Valid() {
		fields["gender"] = "Gender must be male or female"
	}
	if f.Day != "" && !domain.ValidWeekday(f.Day) {
		fields["day"] = "Day must be a weekday name"
	}
	if !fields.Empty() {
		return nil, fields, nil
	}

	results, err := uc.profiles.SearchPartners(ctx, userID, f)
	if err != nil {
		return nil, nil, err
	}

	uc.logger.Debug("Partner search",
		zap.String("user_id", userID),
		zap.Int("results", len(results)))
	return results, nil, nil
}
