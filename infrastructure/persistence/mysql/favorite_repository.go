package mysql

import (
	"context"

	"tj-backend/application/ports"
	"tj-backend/domain/core/entities"
	"tj-backend/domain/core/valueobjects"
)

// FavoriteRepository stores favorites in the favorites table, keyed by
// (user_id, kind, target_id)
type FavoriteRepository struct {
	*store
}

var _ ports.FavoriteRepository = (*FavoriteRepository)(nil)

// Add keeps the original row when the favorite already exists
func (r *FavoriteRepository) Add(ctx context.Context, fav *entities.Favorite) error {
	return r.run("favorites.add", "favorite", func() error {
		_, err := r.db.ExecContext(ctx, `INSERT IGNORE INTO favorites (user_id, kind, target_id, created_at)
			VALUES (?, ?, ?, ?)`,
			fav.UserID, string(fav.Target.Kind()), fav.Target.RawID(), fav.CreatedAt)
		return err
	})
}

func (r *FavoriteRepository) Remove(ctx context.Context, userID valueobjects.UserID, target valueobjects.FavoriteTarget) error {
	return r.run("favorites.remove", "favorite", func() error {
		_, err := r.db.ExecContext(ctx, `DELETE FROM favorites WHERE user_id = ? AND kind = ? AND target_id = ?`,
			userID, string(target.Kind()), target.RawID())
		return err
	})
}

func (r *FavoriteRepository) ListByUser(ctx context.Context, userID valueobjects.UserID) ([]*entities.Favorite, error) {
	items := []*entities.Favorite{}
	err := r.run("favorites.list", "favorite", func() error {
		rows, err := r.db.QueryContext(ctx, `SELECT kind, target_id, created_at FROM favorites
			WHERE user_id = ? ORDER BY created_at DESC, kind ASC, target_id ASC`, userID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				kind string
				id   int64
				fav  = entities.Favorite{UserID: userID}
			)
			if err := rows.Scan(&kind, &id, &fav.CreatedAt); err != nil {
				return err
			}
			target, err := valueobjects.NewFavoriteTarget(valueobjects.TargetKind(kind), id)
			if err != nil {
				return err
			}
			fav.Target = target
			items = append(items, &fav)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}
