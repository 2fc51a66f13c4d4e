package seed

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// workoutTypeSeed is one row of the built-in workout type catalog
type workoutTypeSeed struct {
	name              string
	description       string
	caloriesPerMinute float64
	pointsPerMinute   float64
}

// defaultWorkoutTypes is the catalog every installation starts with.
// Rates are per minute of activity.
var defaultWorkoutTypes = []workoutTypeSeed{
	{"running", "Outdoor or treadmill running", 11, 2},
	{"walking", "Brisk walking", 4, 1},
	{"cycling", "Road or stationary cycling", 8, 1.5},
	{"hiking", "Trail hiking", 6, 1.5},
	{"bodyweight", "Bodyweight strength training", 7, 1.5},
	{"hiit", "High intensity interval training", 12, 2.5},
	{"yoga", "Yoga and stretching", 3, 1},
}

// CreateDefaultData seeds the workout type catalog. Existing rows are
// left untouched, so rate changes here never rewrite live data.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default workout types...")

	const insertSQL = `
		INSERT INTO workout_types (name, description, calories_per_minute, points_per_minute)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO NOTHING`

	for _, wt := range defaultWorkoutTypes {
		tag, err := dbPool.Exec(ctx, insertSQL, wt.name, wt.description, wt.caloriesPerMinute, wt.pointsPerMinute)
		if err != nil {
			lgr.Error().Err(err).Str("name", wt.name).Msg("Error seeding workout type")
			return err
		}
		if tag.RowsAffected() > 0 {
			lgr.Info().Str("name", wt.name).Msg("Workout type created")
		}
	}

	return nil
}
