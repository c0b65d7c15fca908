package mysql

import (
	"context"
	"database/sql"
	"strings"

	"tj-backend/application/ports"
	"tj-backend/domain/core/entities"
	"tj-backend/domain/core/valueobjects"
	"tj-backend/pkg/errors"
)

const diaryColumns = `id, user_id, location_id, title, content, travel_date, tags, images, likes,
	public, created_at, updated_at`

// DiaryRepository stores diaries in the diaries table
type DiaryRepository struct {
	*store
}

var _ ports.DiaryRepository = (*DiaryRepository)(nil)

func nullTime(d *entities.Diary) sql.NullTime {
	return sql.NullTime{Time: d.TravelDate, Valid: !d.TravelDate.IsZero()}
}

func (r *DiaryRepository) Create(ctx context.Context, diary *entities.Diary) error {
	return r.run("diaries.create", "diary", func() error {
		res, err := r.db.ExecContext(ctx, `INSERT INTO diaries
			(user_id, location_id, title, content, travel_date, tags, images, likes, public, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			diary.UserID, diary.LocationID, diary.Title, diary.Content, nullTime(diary),
			jsonOf(diary.Tags), jsonOf(diary.Images), diary.Likes, diary.Public, diary.CreatedAt, diary.UpdatedAt)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		diary.ID = valueobjects.DiaryID(id)
		return nil
	})
}

// Update writes the editable columns; likes are untouched
func (r *DiaryRepository) Update(ctx context.Context, diary *entities.Diary) error {
	return r.run("diaries.update", "diary", func() error {
		res, err := r.db.ExecContext(ctx, `UPDATE diaries SET
			location_id = ?, title = ?, content = ?, travel_date = ?, tags = ?, images = ?, public = ?, updated_at = ?
			WHERE id = ?`,
			diary.LocationID, diary.Title, diary.Content, nullTime(diary), jsonOf(diary.Tags),
			jsonOf(diary.Images), diary.Public, diary.UpdatedAt, diary.ID)
		if err != nil {
			return err
		}
		return affected(res, "diary", diary.ID)
	})
}

func (r *DiaryRepository) GetByID(ctx context.Context, id valueobjects.DiaryID) (*entities.Diary, error) {
	var diary *entities.Diary
	err := r.run("diaries.get", "diary", func() error {
		var err error
		diary, err = scanDiary(r.db.QueryRowContext(ctx, `SELECT `+diaryColumns+` FROM diaries WHERE id = ?`, id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return diary, nil
}

func (r *DiaryRepository) Delete(ctx context.Context, id valueobjects.DiaryID) error {
	return r.run("diaries.delete", "diary", func() error {
		res, err := r.db.ExecContext(ctx, `DELETE FROM diaries WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return affected(res, "diary", id)
	})
}

func (r *DiaryRepository) List(ctx context.Context, filter ports.DiaryFilter) ([]*entities.Diary, int, error) {
	w := diaryWhere(filter)
	var (
		items []*entities.Diary
		total int
	)
	err := r.run("diaries.list", "diary", func() error {
		if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM diaries`+w.String(), w.args...).Scan(&total); err != nil {
			return err
		}
		clause, args := limit(filter.Page)
		var err error
		items, err = r.query(ctx, `SELECT `+diaryColumns+` FROM diaries`+w.String()+
			` ORDER BY travel_date DESC, id DESC`+clause,
			append(append([]interface{}{}, w.args...), args...)...)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func diaryWhere(f ports.DiaryFilter) *where {
	w := &where{}
	if f.PublicOnly {
		w.add("public = TRUE")
	}
	if !f.UserID.IsZero() {
		w.add("user_id = ?", f.UserID)
	}
	if !f.LocationID.IsZero() {
		w.add("location_id = ?", f.LocationID)
	}
	if tag := strings.ToLower(strings.TrimSpace(f.Tag)); tag != "" {
		w.add("JSON_CONTAINS(tags, JSON_QUOTE(?))", tag)
	}
	return w
}

func (r *DiaryRepository) Popular(ctx context.Context, n int) ([]*entities.Diary, error) {
	var items []*entities.Diary
	err := r.run("diaries.popular", "diary", func() error {
		clause, args := limit(ports.Page{Limit: n})
		var err error
		items, err = r.query(ctx, `SELECT `+diaryColumns+` FROM diaries WHERE public = TRUE
			ORDER BY likes DESC, id ASC`+clause, args...)
		return err
	})
	return items, err
}

func (r *DiaryRepository) IncrementLikes(ctx context.Context, id valueobjects.DiaryID) (int64, error) {
	var likes int64
	err := r.run("diaries.like", "diary", func() error {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		res, err := tx.ExecContext(ctx, `UPDATE diaries SET likes = likes + 1 WHERE id = ?`, id)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return errors.NewNotFoundErrorID("diary", id)
		}
		if err := tx.QueryRowContext(ctx, `SELECT likes FROM diaries WHERE id = ?`, id).Scan(&likes); err != nil {
			return err
		}
		return tx.Commit()
	})
	return likes, err
}

func (r *DiaryRepository) query(ctx context.Context, q string, args ...interface{}) ([]*entities.Diary, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*entities.Diary{}
	for rows.Next() {
		diary, err := scanDiary(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, diary)
	}
	return items, rows.Err()
}

func scanDiary(s scanner) (*entities.Diary, error) {
	var (
		diary      entities.Diary
		content    sql.NullString
		travelDate sql.NullTime
		tags       jsonColumn[[]string]
		images     jsonColumn[[]string]
	)
	err := s.Scan(&diary.ID, &diary.UserID, &diary.LocationID, &diary.Title, &content, &travelDate,
		&tags, &images, &diary.Likes, &diary.Public, &diary.CreatedAt, &diary.UpdatedAt)
	if err != nil {
		return nil, err
	}
	diary.Content = content.String
	if travelDate.Valid {
		diary.TravelDate = travelDate.Time.UTC()
	}
	diary.Tags = tags.V
	diary.Images = images.V
	return &diary, nil
}
