package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sportmatch-service/internal/domain"
	"sportmatch-service/pkg/xerrors"
)

type ProfileRepository struct {
	db *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// ProfileStatus backs the auth middleware's completion check.
func (r *ProfileRepository) ProfileStatus(ctx context.Context, userID string) (bool, int, error) {
	const q = `
		SELECT profile_complete, setup_step
		FROM user_profiles
		WHERE user_id = $1
	`

	var complete bool
	var step int
	err := r.db.QueryRow(ctx, q, userID).Scan(&complete, &step)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, 0, xerrors.ErrNotFound
		}
		return false, 0, err
	}
	return complete, step, nil
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	const q = `
		SELECT user_id, birth_date, phone, gender, location, bio,
		       setup_step, profile_complete, created_at, updated_at
		FROM user_profiles
		WHERE user_id = $1
	`

	profile := &domain.UserProfile{}
	var birthDate *time.Time
	var phone, gender, location, bio *string

	err := r.db.QueryRow(ctx, q, userID).Scan(
		&profile.UserID,
		&birthDate,
		&phone,
		&gender,
		&location,
		&bio,
		&profile.SetupStep,
		&profile.ProfileComplete,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, err
	}

	profile.BirthDate = birthDate
	if phone != nil {
		profile.Phone = *phone
	}
	if gender != nil {
		profile.Gender = domain.Gender(*gender)
	}
	if location != nil {
		profile.Location = *location
	}
	if bio != nil {
		profile.Bio = *bio
	}

	prefs, err := r.ListSportPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile.SportPreferences = prefs

	schedule, err := r.ListSchedule(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile.WeeklySchedule = schedule

	return profile, nil
}

// CommitStep1 persists the demographics step. setup_step only ever moves
// forward; re-submissions after completion update the fields but cannot
// regress the step or the completion flag.
func (r *ProfileRepository) CommitStep1(ctx context.Context, userID string, birthDate time.Time, phone string, gender domain.Gender, location string) error {
	const q = `
		UPDATE user_profiles
		SET birth_date = $2,
		    phone = $3,
		    gender = $4,
		    location = $5,
		    setup_step = GREATEST(setup_step, 2),
		    updated_at = NOW()
		WHERE user_id = $1
	`

	tag, err := r.db.Exec(ctx, q, userID, birthDate, phone, string(gender), location)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// CommitStep2 replaces the user's sport preferences atomically.
func (r *ProfileRepository) CommitStep2(ctx context.Context, userID string, prefs []domain.SportPreference) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM sport_preferences WHERE user_id = $1`, userID); err != nil {
		return err
	}

	const qInsert = `
		INSERT INTO sport_preferences (user_id, sport_id, skill_level, is_preferred, position)
		VALUES ($1, $2, $3, $4, $5)
	`
	for i, p := range prefs {
		if _, err := tx.Exec(ctx, qInsert, userID, p.SportID, string(p.SkillLevel), p.IsPreferred, i); err != nil {
			return err
		}
	}

	const qStep = `
		UPDATE user_profiles
		SET setup_step = GREATEST(setup_step, 3), updated_at = NOW()
		WHERE user_id = $1
	`
	tag, err := tx.Exec(ctx, qStep, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return tx.Commit(ctx)
}

// CommitStep3 replaces the weekly schedule atomically. An empty slice is a
// valid schedule.
func (r *ProfileRepository) CommitStep3(ctx context.Context, userID string, slots []domain.ScheduleSlot) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM schedule_slots WHERE user_id = $1`, userID); err != nil {
		return err
	}

	const qInsert = `
		INSERT INTO schedule_slots (user_id, day, start_time, end_time)
		VALUES ($1, $2, $3, $4)
	`
	for _, s := range slots {
		if _, err := tx.Exec(ctx, qInsert, userID, s.Day, s.StartTime, s.EndTime); err != nil {
			return err
		}
	}

	const qStep = `
		UPDATE user_profiles
		SET setup_step = GREATEST(setup_step, 4), updated_at = NOW()
		WHERE user_id = $1
	`
	tag, err := tx.Exec(ctx, qStep, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return tx.Commit(ctx)
}

// CommitStep4 finalizes setup. This is the only statement in the codebase
// that sets profile_complete.
func (r *ProfileRepository) CommitStep4(ctx context.Context, userID string, bio string) error {
	const q = `
		UPDATE user_profiles
		SET bio = COALESCE(NULLIF($2, ''), bio),
		    profile_complete = TRUE,
		    setup_step = 4,
		    updated_at = NOW()
		WHERE user_id = $1
	`

	tag, err := r.db.Exec(ctx, q, userID, bio)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *ProfileRepository) ListSportPreferences(ctx context.Context, userID string) ([]domain.SportPreference, error) {
	const q = `
		SELECT sp.sport_id, s.name, sp.skill_level, sp.is_preferred, sp.position
		FROM sport_preferences sp
		JOIN sports s ON s.id = sp.sport_id
		WHERE sp.user_id = $1
		ORDER BY sp.position
	`

	rows, err := r.db.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prefs []domain.SportPreference
	for rows.Next() {
		var p domain.SportPreference
		var skill string
		if err := rows.Scan(&p.SportID, &p.SportName, &skill, &p.IsPreferred, &p.Position); err != nil {
			return nil, err
		}
		p.SkillLevel = domain.SkillLevel(skill)
		prefs = append(prefs, p)
	}
	return prefs, rows.Err()
}

func (r *ProfileRepository) ListSchedule(ctx context.Context, userID string) ([]domain.ScheduleSlot, error) {
	const q = `
		SELECT day, start_time, end_time
		FROM schedule_slots
		WHERE user_id = $1
		ORDER BY array_position(ARRAY['monday','tuesday','wednesday','thursday','friday','saturday','sunday'], day), start_time
	`

	rows, err := r.db.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []domain.ScheduleSlot
	for rows.Next() {
		var s domain.ScheduleSlot
		if err := rows.Scan(&s.Day, &s.StartTime, &s.EndTime); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

// SearchPartners returns complete profiles matching the filter, excluding the
// searching user.
func (r *ProfileRepository) SearchPartners(ctx context.Context, userID string, f domain.PartnerFilter) ([]domain.PartnerResult, error) {
	where := []string{
		"up.profile_complete = TRUE",
		"up.user_id <> $1",
	}
	args := []interface{}{userID}

	if f.SportID != 0 {
		args = append(args, f.SportID)
		where = append(where, fmt.Sprintf("sp.sport_id = $%d", len(args)))
	}
	if f.MinSkill != "" {
		args = append(args, string(f.MinSkill))
		where = append(where, fmt.Sprintf(
			"array_position(ARRAY['beginner','intermediate','advanced'], sp.skill_level) >= array_position(ARRAY['beginner','intermediate','advanced'], $%d)",
			len(args)))
	}
	if f.Gender != "" {
		args = append(args, string(f.Gender))
		where = append(where, fmt.Sprintf("up.gender = $%d", len(args)))
	}
	if f.Day != "" {
		args = append(args, f.Day)
		where = append(where, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM schedule_slots ss WHERE ss.user_id = up.user_id AND ss.day = $%d)",
			len(args)))
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	args = append(args, limit)
	limitPos := len(args)
	args = append(args, f.Offset)
	offsetPos := len(args)

	q := fmt.Sprintf(`
		SELECT up.user_id, up.location, up.gender, sp.sport_id, s.name, sp.skill_level
		FROM user_profiles up
		JOIN sport_preferences sp ON sp.user_id = up.user_id
		JOIN sports s ON s.id = sp.sport_id
		WHERE %s
		ORDER BY sp.is_preferred DESC, up.updated_at DESC
		LIMIT $%d OFFSET $%d
	`, strings.Join(where, " AND "), limitPos, offsetPos)

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.PartnerResult
	for rows.Next() {
		var res domain.PartnerResult
		var gender, skill string
		if err := rows.Scan(&res.UserID, &res.Location, &gender, &res.SportID, &res.SportName, &skill); err != nil {
			return nil, err
		}
		res.Gender = domain.Gender(gender)
		res.SkillLevel = domain.SkillLevel(skill)
		results = append(results, res)
	}
	return results, rows.Err()
}
