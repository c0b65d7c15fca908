package mysql

import (
	"context"
	"database/sql"
	"strings"

	"tj-backend/application/ports"
	"tj-backend/domain/core/entities"
	"tj-backend/domain/core/valueobjects"
)

const locationColumns = `id, name, description, country, city, category, latitude, longitude,
	tags, images, public, visit_count, rating_sum, rating_count, created_at, updated_at`

// LocationRepository stores locations in the locations table
type LocationRepository struct {
	*store
}

var _ ports.LocationRepository = (*LocationRepository)(nil)

func (r *LocationRepository) Create(ctx context.Context, loc *entities.Location) error {
	return r.run("locations.create", "location", func() error {
		res, err := r.db.ExecContext(ctx, `INSERT INTO locations
			(name, description, country, city, category, latitude, longitude, tags, images, public,
			 visit_count, rating_sum, rating_count, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			loc.Name, loc.Description, loc.Country, loc.City, loc.Category,
			loc.Coordinates.Latitude, loc.Coordinates.Longitude,
			jsonOf(loc.Tags), jsonOf(loc.Images), loc.Public,
			loc.VisitCount, loc.Rating.Sum, loc.Rating.Count, loc.CreatedAt, loc.UpdatedAt)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		loc.ID = valueobjects.LocationID(id)
		return nil
	})
}

// Update writes the editable columns; counters and created_at are untouched
func (r *LocationRepository) Update(ctx context.Context, loc *entities.Location) error {
	return r.run("locations.update", "location", func() error {
		res, err := r.db.ExecContext(ctx, `UPDATE locations SET
			name = ?, description = ?, country = ?, city = ?, category = ?, latitude = ?, longitude = ?,
			tags = ?, images = ?, public = ?, updated_at = ?
			WHERE id = ?`,
			loc.Name, loc.Description, loc.Country, loc.City, loc.Category,
			loc.Coordinates.Latitude, loc.Coordinates.Longitude,
			jsonOf(loc.Tags), jsonOf(loc.Images), loc.Public, loc.UpdatedAt, loc.ID)
		if err != nil {
			return err
		}
		return affected(res, "location", loc.ID)
	})
}

func (r *LocationRepository) GetByID(ctx context.Context, id valueobjects.LocationID) (*entities.Location, error) {
	var loc *entities.Location
	err := r.run("locations.get", "location", func() error {
		row := r.db.QueryRowContext(ctx, `SELECT `+locationColumns+` FROM locations WHERE id = ?`, id)
		var err error
		loc, err = scanLocation(row)
		return err
	})
	if err != nil {
		return nil, err
	}
	return loc, nil
}

func (r *LocationRepository) Delete(ctx context.Context, id valueobjects.LocationID) error {
	return r.run("locations.delete", "location", func() error {
		res, err := r.db.ExecContext(ctx, `DELETE FROM locations WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return affected(res, "location", id)
	})
}

func (r *LocationRepository) List(ctx context.Context, filter ports.LocationFilter) ([]*entities.Location, int, error) {
	w := locationWhere(filter)
	var (
		items []*entities.Location
		total int
	)
	err := r.run("locations.list", "location", func() error {
		if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM locations`+w.String(), w.args...).Scan(&total); err != nil {
			return err
		}
		clause, args := limit(filter.Page)
		var err error
		items, err = r.query(ctx, `SELECT `+locationColumns+` FROM locations`+w.String()+` ORDER BY id`+clause,
			append(append([]interface{}{}, w.args...), args...)...)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func locationWhere(f ports.LocationFilter) *where {
	w := &where{}
	if f.PublicOnly {
		w.add("public = TRUE")
	}
	if f.Country != "" {
		w.add("LOWER(country) = ?", strings.ToLower(f.Country))
	}
	if f.City != "" {
		w.add("LOWER(city) = ?", strings.ToLower(f.City))
	}
	if f.Category != "" {
		w.add("LOWER(category) = ?", strings.ToLower(f.Category))
	}
	if len(f.AnyTags) > 0 {
		w.add("JSON_OVERLAPS(tags, ?)", jsonOf(f.AnyTags))
	}
	if strings.TrimSpace(f.Text) != "" {
		pattern := likePattern(f.Text)
		w.add("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
	}
	return w
}

func (r *LocationRepository) ListAll(ctx context.Context) ([]*entities.Location, error) {
	var items []*entities.Location
	err := r.run("locations.list_all", "location", func() error {
		var err error
		items, err = r.query(ctx, `SELECT `+locationColumns+` FROM locations ORDER BY id`)
		return err
	})
	return items, err
}

func (r *LocationRepository) Popular(ctx context.Context, n int) ([]*entities.Location, error) {
	var items []*entities.Location
	err := r.run("locations.popular", "location", func() error {
		clause, args := limit(ports.Page{Limit: n})
		var err error
		items, err = r.query(ctx, `SELECT `+locationColumns+` FROM locations WHERE public = TRUE
			ORDER BY visit_count DESC, id ASC`+clause, args...)
		return err
	})
	return items, err
}

func (r *LocationRepository) UpdateRating(ctx context.Context, id valueobjects.LocationID, rating valueobjects.RatingAggregate) error {
	return r.run("locations.update_rating", "location", func() error {
		res, err := r.db.ExecContext(ctx, `UPDATE locations SET rating_sum = ?, rating_count = ? WHERE id = ?`,
			rating.Sum, rating.Count, id)
		if err != nil {
			return err
		}
		return affected(res, "location", id)
	})
}

func (r *LocationRepository) UpdateVisitCount(ctx context.Context, id valueobjects.LocationID, visits int64) error {
	return r.run("locations.update_visits", "location", func() error {
		res, err := r.db.ExecContext(ctx, `UPDATE locations SET visit_count = ? WHERE id = ?`, visits, id)
		if err != nil {
			return err
		}
		return affected(res, "location", id)
	})
}

func (r *LocationRepository) query(ctx context.Context, q string, args ...interface{}) ([]*entities.Location, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*entities.Location{}
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, loc)
	}
	return items, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanLocation(s scanner) (*entities.Location, error) {
	var (
		loc         entities.Location
		lat, lon    float64
		tags        jsonColumn[[]string]
		images      jsonColumn[[]string]
		ratingSum   float64
		ratingCount int64
		desc, cat   sql.NullString
		country     sql.NullString
	)
	err := s.Scan(&loc.ID, &loc.Name, &desc, &country, &loc.City, &cat, &lat, &lon,
		&tags, &images, &loc.Public, &loc.VisitCount, &ratingSum, &ratingCount, &loc.CreatedAt, &loc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	loc.Description = desc.String
	loc.Country = country.String
	loc.Category = cat.String
	loc.Coordinates = valueobjects.Coordinates{Latitude: lat, Longitude: lon}
	loc.Tags = tags.V
	loc.Images = images.V
	loc.Rating = valueobjects.RatingAggregate{Sum: ratingSum, Count: ratingCount}
	return &loc, nil
}
