package profiles

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/career-profile/internal/common"
	"github.com/joseph-ayodele/career-profile/internal/entity"
	"github.com/joseph-ayodele/career-profile/internal/repository"
)

// Service handles profile business logic.
type Service struct {
	profileRepo repository.ProfileRepository
	builder     *Builder
	logger      *slog.Logger
}

// NewService creates a new profile service.
func NewService(profileRepo repository.ProfileRepository, builder *Builder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		profileRepo: profileRepo,
		builder:     builder,
		logger:      logger,
	}
}

// EnsureProfile returns the profile for fullName, creating it on first use.
func (s *Service) EnsureProfile(ctx context.Context, fullName, title string) (*entity.ProfessionalProfile, error) {
	name := strings.TrimSpace(fullName)
	if name == "" {
		return nil, status.Error(codes.InvalidArgument, "full name is required")
	}

	p, err := s.profileRepo.GetOrCreateByName(ctx, name, strings.TrimSpace(title))
	if err != nil {
		return nil, common.GRPCStatus(err).Err()
	}
	s.logger.Debug("profile ready", "profile_id", p.ID, "full_name", p.FullName)
	return p, nil
}

// Rebuild aggregates documents into the named profile.
func (s *Service) Rebuild(ctx context.Context, profileID uuid.UUID) (Summary, error) {
	sum, err := s.builder.Rebuild(ctx, profileID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return Summary{}, common.NotFoundError("profile " + profileID.String() + " not found")
		}
		return Summary{}, status.Errorf(codes.Internal, "rebuild profile: %v", err)
	}
	return sum, nil
}

// ListProfiles returns all profiles.
func (s *Service) ListProfiles(ctx context.Context) ([]*entity.ProfessionalProfile, error) {
	s.logger.Info("listing profiles")

	plist, err := s.profileRepo.List(ctx)
	if err != nil {
		// DB error already logged in repository layer
		return nil, status.Errorf(codes.Internal, "list profiles: %v", err)
	}

	s.logger.Info("profiles listed successfully", "count", len(plist))
	return plist, nil
}
