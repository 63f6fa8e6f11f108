package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/joovlink/joovlink/internal/apperror"
	"github.com/joovlink/joovlink/internal/model"
	"github.com/joovlink/joovlink/internal/repository"
)

// ProfileDB implements repository.ProfileRepository.
//
// The structured sections (experience, education, certification,
// skills, portfolio, languages) are documents: they are created and
// replaced whole, never queried by inner field. Storing them as JSON
// text columns keeps the schema flat without inventing six join tables
// nothing would ever join on.
type ProfileDB struct {
	conn *sql.DB
}

var _ repository.ProfileRepository = (*ProfileDB)(nil)

// Create inserts a profile. One profile per user: a second insert for
// the same user is a conflict.
func (p *ProfileDB) Create(ctx context.Context, profile *model.Profile) error {
	if profile.ID == "" {
		profile.ID = xid.New().String()
	}
	now := time.Now().UTC()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	docs, err := marshalProfileDocs(profile)
	if err != nil {
		return err
	}

	_, err = p.conn.ExecContext(ctx, `
		INSERT INTO profiles (
			id, user_id, full_name, born_place, born_date, short_profile,
			phone_number, experience, education, certification, skills,
			portfolio, languages, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		profile.ID, profile.UserID, profile.FullName, profile.BornPlace,
		profile.BornDate, profile.ShortProfile, profile.PhoneNumber,
		docs.experience, docs.education, docs.certification, docs.skills,
		docs.portfolio, docs.languages,
		profile.CreatedAt, profile.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("sqlite: inserting profile: %w",
				apperror.Conflict("Profile already exists for this user"))
		}
		return fmt.Errorf("sqlite: inserting profile: %w", err)
	}
	return nil
}

// GetByUserID returns the profile owned by userID.
func (p *ProfileDB) GetByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	var (
		profile model.Profile
		docs    profileDocs
	)

	err := p.conn.QueryRowContext(ctx, `
		SELECT id, user_id, full_name, born_place, born_date, short_profile,
		       phone_number, experience, education, certification, skills,
		       portfolio, languages, created_at, updated_at
		FROM profiles WHERE user_id = ?`,
		userID,
	).Scan(
		&profile.ID, &profile.UserID, &profile.FullName, &profile.BornPlace,
		&profile.BornDate, &profile.ShortProfile, &profile.PhoneNumber,
		&docs.experience, &docs.education, &docs.certification, &docs.skills,
		&docs.portfolio, &docs.languages,
		&profile.CreatedAt, &profile.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sqlite: querying profile: %w",
			&apperror.AppError{Err: apperror.ErrNotFound, Message: "Profile not found"})
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying profile: %w", err)
	}

	if err := unmarshalProfileDocs(&docs, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Update replaces the mutable fields of an existing profile.
func (p *ProfileDB) Update(ctx context.Context, profile *model.Profile) error {
	profile.UpdatedAt = time.Now().UTC()

	docs, err := marshalProfileDocs(profile)
	if err != nil {
		return err
	}

	res, err := p.conn.ExecContext(ctx, `
		UPDATE profiles SET
			full_name     = ?,
			born_place    = ?,
			born_date     = ?,
			short_profile = ?,
			phone_number  = ?,
			experience    = ?,
			education     = ?,
			certification = ?,
			skills        = ?,
			portfolio     = ?,
			languages     = ?,
			updated_at    = ?
		WHERE user_id = ?`,
		profile.FullName, profile.BornPlace, profile.BornDate,
		profile.ShortProfile, profile.PhoneNumber,
		docs.experience, docs.education, docs.certification, docs.skills,
		docs.portfolio, docs.languages,
		profile.UpdatedAt, profile.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("sqlite: updating profile: %w",
			&apperror.AppError{Err: apperror.ErrNotFound, Message: "Profile not found"})
	}
	return nil
}

// profileDocs holds the JSON-encoded section columns.
type profileDocs struct {
	experience    string
	education     string
	certification string
	skills        string
	portfolio     string
	languages     string
}

func marshalProfileDocs(profile *model.Profile) (*profileDocs, error) {
	var (
		docs profileDocs
		err  error
	)
	if docs.experience, err = marshalDoc(profile.WorkingExperience); err != nil {
		return nil, err
	}
	if docs.education, err = marshalDoc(profile.Education); err != nil {
		return nil, err
	}
	if docs.certification, err = marshalDoc(profile.Certification); err != nil {
		return nil, err
	}
	if docs.skills, err = marshalDoc(profile.Skills); err != nil {
		return nil, err
	}
	if docs.portfolio, err = marshalDoc(profile.Portfolio); err != nil {
		return nil, err
	}
	if docs.languages, err = marshalDoc(profile.Languages); err != nil {
		return nil, err
	}
	return &docs, nil
}

func unmarshalProfileDocs(docs *profileDocs, profile *model.Profile) error {
	pairs := []struct {
		raw  string
		dest any
	}{
		{docs.experience, &profile.WorkingExperience},
		{docs.education, &profile.Education},
		{docs.certification, &profile.Certification},
		{docs.skills, &profile.Skills},
		{docs.portfolio, &profile.Portfolio},
		{docs.languages, &profile.Languages},
	}
	for _, pair := range pairs {
		if pair.raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(pair.raw), pair.dest); err != nil {
			return fmt.Errorf("sqlite: decoding profile section: %w", err)
		}
	}
	return nil
}

func marshalDoc(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("sqlite: encoding profile section: %w", err)
	}
	return string(b), nil
}
