package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/joovlink/joovlink/internal/apperror"
	"github.com/joovlink/joovlink/internal/model"
	"github.com/joovlink/joovlink/internal/repository"
)

// phonePattern accepts Indonesian numbers in international form:
// +62 followed by 8 to 13 digits.
var phonePattern = regexp.MustCompile(`^\+62\d{8,13}$`)

// ProfileService handles CV-style user profiles.
type ProfileService struct {
	repo   repository.ProfileRepository
	logger *slog.Logger
}

// NewProfileService creates a ProfileService.
func NewProfileService(repo repository.ProfileRepository, logger *slog.Logger) *ProfileService {
	return &ProfileService{repo: repo, logger: logger}
}

// Create validates and stores the user's profile. Each user has at
// most one; a second create is a conflict.
func (s *ProfileService) Create(ctx context.Context, userID string, profile *model.Profile) (*model.Profile, error) {
	profile.UserID = userID
	if err := validateProfile(profile); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, profile); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, apperror.Conflict("Profile already exists for this user")
		}
		return nil, fmt.Errorf("service/profile: creating profile: %w", err)
	}

	s.logger.Info("profile created",
		slog.String("userID", userID),
		slog.String("profileID", profile.ID),
	)

	return profile, nil
}

// GetByUserID returns the profile owned by userID.
func (s *ProfileService) GetByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	if userID == "" {
		return nil, apperror.ValidationFailed("userId", "User ID is required")
	}
	profile, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/profile: fetching profile for %s: %w", userID, err)
	}
	return profile, nil
}

// Update replaces the user's profile content.
func (s *ProfileService) Update(ctx context.Context, userID string, profile *model.Profile) (*model.Profile, error) {
	profile.UserID = userID
	if err := validateProfile(profile); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("service/profile: updating profile for %s: %w", userID, err)
	}

	s.logger.Info("profile updated", slog.String("userID", userID))
	return profile, nil
}

func validateProfile(profile *model.Profile) error {
	profile.FullName = strings.TrimSpace(profile.FullName)
	profile.BornPlace = strings.TrimSpace(profile.BornPlace)
	profile.PhoneNumber = strings.TrimSpace(profile.PhoneNumber)

	if profile.FullName == "" {
		return apperror.ValidationFailed("fullName", "Full name is required")
	}
	if profile.BornPlace == "" {
		return apperror.ValidationFailed("bornPlace", "Born place is required")
	}
	if profile.BornDate.IsZero() {
		return apperror.ValidationFailed("bornDate", "Born date is required")
	}
	if !phonePattern.MatchString(profile.PhoneNumber) {
		return apperror.ValidationFailed("phoneNumber",
			fmt.Sprintf("%s is not a valid phone number", profile.PhoneNumber))
	}
	for _, lang := range profile.Languages {
		if lang.Level != "" && !model.ValidLanguageLevel(lang.Level) {
			return apperror.ValidationFailed("languages",
				"Language level must be one of Beginner, Intermediate, Advance, Native")
		}
	}
	return nil
}
