package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sportmatch-service/internal/domain"
	"sportmatch-service/pkg/cache"
	"sportmatch-service/pkg/xerrors"
)

const (
	minAge = 16
	maxAge = 80

	maxPhoneLen    = 20
	maxLocationLen = 255

	birthDateLayout = "2006-01-02"
	timeLayout      = "15:04"
)

// ProfileStore is the slice of the profile repository the setup flow needs.
type ProfileStore interface {
	ProfileStatus(ctx context.Context, userID string) (bool, int, error)
	CommitStep1(ctx context.Context, userID string, birthDate time.Time, phone string, gender domain.Gender, location string) error
	CommitStep2(ctx context.Context, userID string, prefs []domain.SportPreference) error
	CommitStep3(ctx context.Context, userID string, slots []domain.ScheduleSlot) error
	CommitStep4(ctx context.Context, userID string, bio string) error
}

// SportCatalog resolves sport ids against the catalog.
type SportCatalog interface {
	Exists(ctx context.Context, sportID int64) (bool, error)
}

// SetupUsecase drives the four-step profile completion flow. Steps advance
// forward only; validation failures never touch stored state; only step 4
// flips the completion flag.
type SetupUsecase struct {
	profiles ProfileStore
	sports   SportCatalog
	cache    *cache.Cache
	logger   *zap.Logger
}

func NewSetupUsecase(profiles ProfileStore, sports SportCatalog, cache *cache.Cache, logger *zap.Logger) *SetupUsecase {
	return &SetupUsecase{
		profiles: profiles,
		sports:   sports,
		cache:    cache,
		logger:   logger,
	}
}

func (uc *SetupUsecase) Status(ctx context.Context, userID string) (*domain.SetupStatus, error) {
	complete, step, err := uc.profiles.ProfileStatus(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &domain.SetupStatus{SetupStep: step, ProfileComplete: complete}, nil
}

// checkStage enforces forward-only ordering while the profile is incomplete.
// Completed profiles may re-submit any step to update its data; the flag and
// the step counter never regress.
func (uc *SetupUsecase) checkStage(ctx context.Context, userID string, step int) error {
	complete, current, err := uc.profiles.ProfileStatus(ctx, userID)
	if err != nil {
		return err
	}
	if complete {
		return nil
	}
	if current != step {
		return fmt.Errorf("%w: at step %d, submitted step %d", xerrors.ErrInvalidSetupStage, current, step)
	}
	return nil
}

func (uc *SetupUsecase) invalidateStatus(ctx context.Context, userID string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Delete(ctx, "profile_status", userID); err != nil {
		uc.logger.Warn("Failed to invalidate profile status cache",
			zap.String("user_id", userID),
			zap.Error(err))
	}
}

// SubmitStep1 validates and persists demographics.
func (uc *SetupUsecase) SubmitStep1(ctx context.Context, userID string, req *domain.Step1Request) (xerrors.FieldErrors, error) {
	if err := uc.checkStage(ctx, userID, domain.StepPersonal); err != nil {
		return nil, err
	}

	fields, birthDate := ValidateStep1(req, time.Now())
	if !fields.Empty() {
		return fields, nil
	}

	if err := uc.profiles.CommitStep1(ctx, userID, birthDate, req.Phone, domain.Gender(req.Gender), req.Location); err != nil {
		return nil, err
	}
	uc.invalidateStatus(ctx, userID)

	uc.logger.Info("Setup step 1 committed", zap.String("user_id", userID))
	return nil, nil
}

// ValidateStep1 checks the demographics payload against the reference time.
// Age must land between 16 and 80 inclusive.
func ValidateStep1(req *domain.Step1Request, now time.Time) (xerrors.FieldErrors, time.Time) {
	fields := xerrors.FieldErrors{}

	var birthDate time.Time
	if req.BirthDate == "" {
		fields["birth_date"] = "Birth date is required"
	} else {
		parsed, err := time.Parse(birthDateLayout, req.BirthDate)
		if err != nil {
			fields["birth_date"] = "Birth date must be in YYYY-MM-DD format"
		} else {
			// Compare whole dates so the bounds are inclusive regardless of
			// the time of day.
			today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
			youngest := today.AddDate(-minAge, 0, 0) // latest acceptable birth date
			oldest := today.AddDate(-maxAge, 0, 0)   // earliest acceptable birth date
			if parsed.After(youngest) || parsed.Before(oldest) {
				fields["birth_date"] = fmt.Sprintf("You must be between %d and %d years old", minAge, maxAge)
			} else {
				birthDate = parsed
			}
		}
	}

	if req.Phone == "" {
		fields["phone"] = "Phone is required"
	} else if len(req.Phone) > maxPhoneLen {
		fields["phone"] = fmt.Sprintf("Phone must not exceed %d characters", maxPhoneLen)
	}

	if !domain.Gender(req.Gender).Valid() {
		fields["gender"] = "Gender must be male or female"
	}

	if req.Location == "" {
		fields["location"] = "Location is required"
	} else if len(req.Location) > maxLocationLen {
		fields["location"] = fmt.Sprintf("Location must not exceed %d characters", maxLocationLen)
	}

	return fields, birthDate
}

// SubmitStep2 validates and persists sport preferences. Every sport id must
// exist in the catalog; a missing sport surfaces as a field error, not a
// system fault.
func (uc *SetupUsecase) SubmitStep2(ctx context.Context, userID string, req *domain.Step2Request) (xerrors.FieldErrors, error) {
	if err := uc.checkStage(ctx, userID, domain.StepSports); err != nil {
		return nil, err
	}

	fields := xerrors.FieldErrors{}
	if len(req.SportPreferences) == 0 {
		fields["sport_preferences"] = "Pick at least one sport"
		return fields, nil
	}

	prefs := make([]domain.SportPreference, 0, len(req.SportPreferences))
	for i, in := range req.SportPreferences {
		key := fmt.Sprintf("sport_preferences.%d", i)

		skill := domain.SkillLevel(in.SkillLevel)
		if !skill.Valid() {
			fields[key+".skill_level"] = "Skill level must be beginner, intermediate or advanced"
			continue
		}

		exists, err := uc.sports.Exists(ctx, in.SportID)
		if err != nil {
			return nil, err
		}
		if !exists {
			fields[key+".sport_id"] = "Selected sport does not exist"
			continue
		}

		prefs = append(prefs, domain.SportPreference{
			SportID:     in.SportID,
			SkillLevel:  skill,
			IsPreferred: in.IsPreferred,
			Position:    i,
		})
	}
	if !fields.Empty() {
		return fields, nil
	}

	if err := uc.profiles.CommitStep2(ctx, userID, prefs); err != nil {
		return nil, err
	}
	uc.invalidateStatus(ctx, userID)

	uc.logger.Info("Setup step 2 committed",
		zap.String("user_id", userID),
		zap.Int("sports", len(prefs)))
	return nil, nil
}

// SubmitStep3 validates and persists the weekly schedule. Rows missing any
// of day/start/end are dropped before validation and never produce an error.
func (uc *SetupUsecase) SubmitStep3(ctx context.Context, userID string, req *domain.Step3Request) (xerrors.FieldErrors, error) {
	if err := uc.checkStage(ctx, userID, domain.StepSchedule); err != nil {
		return nil, err
	}

	slots := NormalizeSchedule(req.Schedule)
	fields := ValidateSchedule(slots)
	if !fields.Empty() {
		return fields, nil
	}

	if err := uc.profiles.CommitStep3(ctx, userID, slots); err != nil {
		return nil, err
	}
	uc.invalidateStatus(ctx, userID)

	uc.logger.Info("Setup step 3 committed",
		zap.String("user_id", userID),
		zap.Int("slots", len(slots)))
	return nil, nil
}

// NormalizeSchedule filters out incomplete rows. This happens before
// validation, so a row missing a field is silently ignored.
func NormalizeSchedule(inputs []domain.ScheduleSlotInput) []domain.ScheduleSlot {
	slots := make([]domain.ScheduleSlot, 0, len(inputs))
	for _, in := range inputs {
		if in.Day == "" || in.StartTime == "" || in.EndTime == "" {
			continue
		}
		slots = append(slots, domain.ScheduleSlot{
			Day:       in.Day,
			StartTime: in.StartTime,
			EndTime:   in.EndTime,
		})
	}
	return slots
}

// ValidateSchedule checks normalized slots: valid weekday, HH:MM times, end
// strictly after start.
func ValidateSchedule(slots []domain.ScheduleSlot) xerrors.FieldErrors {
	fields := xerrors.FieldErrors{}

	for i, s := range slots {
		key := fmt.Sprintf("schedule.%d", i)

		if !domain.ValidWeekday(s.Day) {
			fields[key+".day"] = "Day must be a weekday name"
			continue
		}

		start, err := time.Parse(timeLayout, s.StartTime)
		if err != nil {
			fields[key+".start_time"] = "Start time must be HH:MM"
			continue
		}
		end, err := time.Parse(timeLayout, s.EndTime)
		if err != nil {
			fields[key+".end_time"] = "End time must be HH:MM"
			continue
		}

		if !end.After(start) {
			fields[key+".end_time"] = "End time must be after start time"
		}
	}

	return fields
}

// SubmitStep4 finalizes setup. The only path that marks a profile complete.
func (uc *SetupUsecase) SubmitStep4(ctx context.Context, userID string, req *domain.Step4Request) (xerrors.FieldErrors, error) {
	if err := uc.checkStage(ctx, userID, domain.StepFinish); err != nil {
		return nil, err
	}

	if !req.AcceptTerms {
		return xerrors.FieldErrors{"accept_terms": xerrors.ErrTermsRequired.Error()}, nil
	}

	if err := uc.profiles.CommitStep4(ctx, userID, req.Bio); err != nil {
		return nil, err
	}
	uc.invalidateStatus(ctx, userID)

	uc.logger.Info("Profile setup completed", zap.String("user_id", userID))
	return nil, nil
}
