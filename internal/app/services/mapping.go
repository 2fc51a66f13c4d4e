package services

import (
	"context"

	"github.com/nexasuite/powerup/internal/app/models"
	"github.com/nexasuite/powerup/internal/app/models/dto"
)

func profileToResponse(ctx context.Context, profile *models.Profile, files fileStore) dto.ProfileResponse {
	resp := dto.ProfileResponse{
		ID:      profile.ID,
		Bio:     profile.Bio,
		Gender:  profile.Gender,
		Country: profile.Country,
		City:    profile.City,
		Height:  profile.Height,
		Weight:  profile.Weight,
	}
	if profile.User != nil {
		resp.Username = profile.User.Username
		resp.Email = profile.User.Email
	}
	if profile.AvatarFileID != nil {
		if file, err := files.GetByID(ctx, *profile.AvatarFileID); err == nil && file != nil {
			resp.AvatarURL = &file.FileURL
		}
	}
	return resp
}

func profilesToResponses(ctx context.Context, profiles []*models.Profile, files fileStore) []dto.ProfileResponse {
	responses := make([]dto.ProfileResponse, 0, len(profiles))
	for _, profile := range profiles {
		responses = append(responses, profileToResponse(ctx, profile, files))
	}
	return responses
}

func workoutTypeToResponse(wt *models.WorkoutType) dto.WorkoutTypeResponse {
	return dto.WorkoutTypeResponse{
		ID:                wt.ID,
		Name:              wt.Name,
		Description:       wt.Description,
		CaloriesPerMinute: wt.CaloriesPerMinute,
		PointsPerMinute:   wt.PointsPerMinute,
		ThumbnailURL:      wt.ThumbnailURL,
		AnimationURL:      wt.AnimationURL,
	}
}
