package db

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/technopolitica/loadouts/internal/domain"
	"golang.org/x/sync/errgroup"
)

var ErrUsernameImmutable = errors.New("username cannot be changed once set")
var ErrUsernameTaken = fmt.Errorf("username %w", ErrConflict)

//go:embed queries/profile-by-id.sql
var profileByIDQuery string

func (repo Repository) ProfileByID(ctx context.Context, userID string) (profile domain.Profile, err error) {
	dto, err := collectOne[ProfileDTO](repo.Query(ctx, profileByIDQuery, pgx.NamedArgs{"id": userID}))
	if err != nil {
		return
	}
	profile = profileFromDTO(dto)
	return
}

//go:embed queries/profile-by-handle.sql
var profileByHandleQuery string

func (repo Repository) ProfileByHandle(ctx context.Context, handle string) (profile domain.Profile, err error) {
	dto, err := collectOne[ProfileDTO](repo.Query(ctx, profileByHandleQuery, pgx.NamedArgs{"handle": domain.NormalizeUsername(handle)}))
	if err != nil {
		return
	}
	profile = profileFromDTO(dto)
	return
}

// PublicProfileByHandle only resolves profiles that finished onboarding.
func (repo Repository) PublicProfileByHandle(ctx context.Context, handle string) (profile domain.PublicProfile, err error) {
	dto, err := collectOne[ProfileDTO](repo.Query(ctx, profileByHandleQuery, pgx.NamedArgs{"handle": domain.NormalizeUsername(handle)}))
	if err != nil {
		return
	}
	profile, ok := publicProfileFromDTO(dto)
	if !ok {
		err = ErrNotFound
	}
	return
}

//go:embed queries/profiles-by-ids.sql
var profilesByIDsQuery string

// ProfilesByIDs loads every referenced profile in one query, keyed by id.
func (repo Repository) ProfilesByIDs(ctx context.Context, ids []string) (map[string]ProfileDTO, error) {
	profiles := make(map[string]ProfileDTO, len(ids))
	if len(ids) == 0 {
		return profiles, nil
	}
	dtos, err := collectAll[ProfileDTO](repo.Query(ctx, profilesByIDsQuery, pgx.NamedArgs{"ids": distinct(ids)}))
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	for _, dto := range dtos {
		profiles[dto.ID] = dto
	}
	return profiles, nil
}

//go:embed queries/handle-owner.sql
var handleOwnerQuery string

func (repo Repository) IsUsernameAvailable(ctx context.Context, handle string, excludedUserID string) (available bool, err error) {
	rows, err := repo.Query(ctx, handleOwnerQuery, pgx.NamedArgs{"handle": domain.NormalizeUsername(handle)})
	if err != nil {
		err = fmt.Errorf("failed to execute query: %w", err)
		return
	}
	owners, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		err = fmt.Errorf("failed to read handle owner: %w", err)
		return
	}
	available = len(owners) == 0 || (excludedUserID != "" && owners[0] == excludedUserID)
	return
}

//go:embed queries/upsert-profile.sql
var upsertProfileQuery string

// SetupProfile completes onboarding. A handle, once set, can never change.
func (repo Repository) SetupProfile(ctx context.Context, setup domain.ProfileSetup) (profile domain.Profile, err error) {
	handle := domain.NormalizeUsername(setup.Username)
	existing, err := repo.ProfileByID(ctx, setup.UserID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return
	}
	err = nil
	if existing.Handle != nil && *existing.Handle != handle {
		err = ErrUsernameImmutable
		return
	}

	available, err := repo.IsUsernameAvailable(ctx, handle, setup.UserID)
	if err != nil {
		return
	}
	if !available {
		err = ErrUsernameTaken
		return
	}

	dto, err := collectOne[ProfileDTO](repo.Query(ctx, upsertProfileQuery, pgx.NamedArgs{
		"id":           setup.UserID,
		"handle":       handle,
		"display_name": setup.DisplayName,
	}))
	if isUniqueViolation(err) {
		err = ErrUsernameTaken
	}
	if err != nil {
		return
	}
	profile = profileFromDTO(dto)

	repo.trackMilestoneQuietly(ctx, setup.UserID, domain.MilestoneSignupCompleted,
		domain.Record{}.With("source", "profile_setup"))
	return
}

//go:embed queries/update-profile.sql
var updateProfileQuery string

func (repo Repository) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (profile domain.Profile, err error) {
	interests := []string(update.Interests)
	if interests == nil {
		interests = []string{}
	}
	dto, err := collectOne[ProfileDTO](repo.Query(ctx, updateProfileQuery, pgx.NamedArgs{
		"id":           update.UserID,
		"display_name": update.DisplayName,
		"bio":          nullIfEmpty(update.Bio),
		"avatar_url":   nullIfEmpty(update.AvatarURL),
		"interests":    interests,
	}))
	if err != nil {
		return
	}
	profile = profileFromDTO(dto)
	return
}

// EnsureProfileFromMetadata completes a profile from the handle and display
// name chosen at signup, when the token still carries them and they are
// usable. It returns nil when the user has no profile yet.
func (repo Repository) EnsureProfileFromMetadata(ctx context.Context, auth domain.AuthInfo) (*domain.Profile, error) {
	existing, err := repo.ProfileByID(ctx, auth.UserID)
	var current *domain.Profile
	switch {
	case err == nil:
		current = &existing
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	if domain.IsProfileComplete(current) || auth.PendingHandle == "" || auth.PendingDisplayName == "" {
		return current, nil
	}
	validation := domain.ValidateUsername(auth.PendingHandle)
	if !validation.OK {
		return current, nil
	}
	if current != nil && current.Handle != nil && *current.Handle != validation.NormalizedUsername {
		return current, nil
	}
	available, err := repo.IsUsernameAvailable(ctx, validation.NormalizedUsername, auth.UserID)
	if err != nil || !available {
		return current, err
	}

	dto, err := collectOne[ProfileDTO](repo.Query(ctx, upsertProfileQuery, pgx.NamedArgs{
		"id":           auth.UserID,
		"handle":       validation.NormalizedUsername,
		"display_name": auth.PendingDisplayName,
	}))
	if isUniqueViolation(err) {
		return current, nil
	}
	if err != nil {
		return nil, err
	}
	profile := profileFromDTO(dto)
	return &profile, nil
}

//go:embed queries/count-followers.sql
var countFollowersQuery string

//go:embed queries/count-following.sql
var countFollowingQuery string

func (repo Repository) FollowStats(ctx context.Context, userID string) (stats domain.ProfileStats, err error) {
	args := pgx.NamedArgs{"user_id": userID}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return repo.QueryRow(gctx, countFollowersQuery, args).Scan(&stats.FollowersCount)
	})
	g.Go(func() error {
		return repo.QueryRow(gctx, countFollowingQuery, args).Scan(&stats.FollowingCount)
	})
	err = g.Wait()
	if err != nil {
		err = fmt.Errorf("failed to count follows: %w", err)
	}
	return
}

//go:embed queries/viewer-follows.sql
var viewerFollowsQuery string

// followedBy reports which of ids the viewer follows.
func (repo Repository) followedBy(ctx context.Context, viewerID string, ids []string) (map[string]bool, error) {
	followed := make(map[string]bool)
	if viewerID == "" || len(ids) == 0 {
		return followed, nil
	}
	rows, err := repo.Query(ctx, viewerFollowsQuery, pgx.NamedArgs{"viewer_id": viewerID, "ids": distinct(ids)})
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	followedIDs, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to read follows: %w", err)
	}
	for _, id := range followedIDs {
		followed[id] = true
	}
	return followed, nil
}

// ViewerFollowsTarget is false for anonymous viewers and for the target itself.
func (repo Repository) ViewerFollowsTarget(ctx context.Context, viewerID string, targetID string) (bool, error) {
	if viewerID == "" || viewerID == targetID {
		return false, nil
	}
	followed, err := repo.followedBy(ctx, viewerID, []string{targetID})
	if err != nil {
		return false, err
	}
	return followed[targetID], nil
}

func (repo Repository) ProfilePage(ctx context.Context, handle string, viewerID string) (page domain.ProfilePage, err error) {
	page.Profile, err = repo.PublicProfileByHandle(ctx, handle)
	if err != nil {
		return
	}
	page.IsOwnProfile = viewerID != "" && viewerID == page.Profile.ID

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		page.Stats, err = repo.FollowStats(gctx, page.Profile.ID)
		return
	})
	g.Go(func() (err error) {
		page.Loadouts, err = repo.LoadoutsByOwner(gctx, page.Profile.ID, page.IsOwnProfile)
		return
	})
	g.Go(func() (err error) {
		page.ViewerIsFollowing, err = repo.ViewerFollowsTarget(gctx, viewerID, page.Profile.ID)
		return
	})
	err = g.Wait()
	return
}

func distinct(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	return unique
}
