// Package seed fills an empty database with a small demo catalogue and an
// admin account.  Each table group is only touched while it is empty, so
// running the seeder on every start is harmless.
package seed

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

// Options controls the admin account created on an empty users table.
type Options struct {
	AdminEmail    string
	AdminPassword string
	BcryptCost    int
	// Now anchors show start times; zero means time.Now.
	Now time.Time
}

// Run seeds users, cinemas with their screens, movies and shows.
func Run(ctx context.Context, db *sql.DB, opts Options, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	users := repository.NewUserRepo(db)
	cinemas := repository.NewCinemaRepo(db)
	screens := repository.NewScreenRepo(db)
	movies := repository.NewMovieRepo(db)
	shows := repository.NewShowRepo(db)

	if n, err := users.Count(ctx); err != nil {
		return fmt.Errorf("count users: %w", err)
	} else if n == 0 {
		u, err := users.Create(ctx, "admin", opts.AdminEmail, opts.AdminPassword, true, opts.BcryptCost)
		if err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		log.Info("Seeded admin user", zap.String("email", u.Email))
	}

	if n, err := cinemas.Count(ctx); err != nil {
		return fmt.Errorf("count cinemas: %w", err)
	} else if n == 0 {
		catalogue := []struct {
			cinema  model.Cinema
			screens []string
		}{
			{model.Cinema{Name: "PVR Downtown", Location: "Downtown"}, []string{"Screen 1", "Screen 2"}},
			{model.Cinema{Name: "INOX Mall", Location: "City Mall"}, []string{"Audi 1"}},
		}
		for _, entry := range catalogue {
			cin := entry.cinema
			if err := cinemas.Create(ctx, &cin); err != nil {
				return fmt.Errorf("seed cinema %q: %w", cin.Name, err)
			}
			for _, name := range entry.screens {
				s := model.Screen{CinemaID: cin.ID, Name: name}
				if err := screens.Create(ctx, &s); err != nil {
					return fmt.Errorf("seed screen %q: %w", name, err)
				}
			}
		}
		log.Info("Seeded cinemas", zap.Int("count", len(catalogue)))
	}

	if n, err := movies.Count(ctx); err != nil {
		return fmt.Errorf("count movies: %w", err)
	} else if n == 0 {
		for _, m := range []model.Movie{
			{Title: "Inception", Description: "A mind-bending thriller.", Duration: 148},
			{Title: "Interstellar", Description: "Space odyssey.", Duration: 169},
		} {
			if err := movies.Create(ctx, &m); err != nil {
				return fmt.Errorf("seed movie %q: %w", m.Title, err)
			}
		}
		log.Info("Seeded movies", zap.Int("count", 2))
	}

	n, err := shows.Count(ctx)
	if err != nil {
		return fmt.Errorf("count shows: %w", err)
	}
	if n > 0 {
		return nil
	}
	screenList, err := screens.List(ctx, nil)
	if err != nil {
		return fmt.Errorf("list screens: %w", err)
	}
	movieList, err := movies.List(ctx)
	if err != nil {
		return fmt.Errorf("list movies: %w", err)
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	base := now.UTC().Truncate(time.Hour)
	created := 0
	for i, sc := range screenList {
		for j, mv := range movieList {
			s := model.Show{
				MovieID:   mv.ID,
				ScreenID:  sc.ID,
				StartTime: base.Add(time.Duration(i*3+j*2) * time.Hour),
			}
			if err := shows.Create(ctx, &s); err != nil {
				return fmt.Errorf("seed show: %w", err)
			}
			created++
		}
	}
	log.Info("Seeded shows", zap.Int("count", created))
	return nil
}
