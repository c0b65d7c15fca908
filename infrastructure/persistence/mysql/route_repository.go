package mysql

import (
	"context"
	"database/sql"

	"tj-backend/application/ports"
	"tj-backend/domain/core/entities"
	"tj-backend/domain/core/valueobjects"
)

const routeColumns = `id, user_id, name, description, start_location_id, end_location_id, stops,
	duration_ns, public, created_at, updated_at`

// RouteRepository stores routes in the routes table
type RouteRepository struct {
	*store
}

var _ ports.RouteRepository = (*RouteRepository)(nil)

func (r *RouteRepository) Create(ctx context.Context, route *entities.Route) error {
	return r.run("routes.create", "route", func() error {
		res, err := r.db.ExecContext(ctx, `INSERT INTO routes
			(user_id, name, description, start_location_id, end_location_id, stops, duration_ns, public, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			route.UserID, route.Name, route.Description, route.StartID, route.EndID,
			jsonOf(route.Stops), int64(route.Duration), route.Public, route.CreatedAt, route.UpdatedAt)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		route.ID = valueobjects.RouteID(id)
		return nil
	})
}

func (r *RouteRepository) Update(ctx context.Context, route *entities.Route) error {
	return r.run("routes.update", "route", func() error {
		res, err := r.db.ExecContext(ctx, `UPDATE routes SET
			name = ?, description = ?, start_location_id = ?, end_location_id = ?, stops = ?,
			duration_ns = ?, public = ?, updated_at = ?
			WHERE id = ?`,
			route.Name, route.Description, route.StartID, route.EndID, jsonOf(route.Stops),
			int64(route.Duration), route.Public, route.UpdatedAt, route.ID)
		if err != nil {
			return err
		}
		return affected(res, "route", route.ID)
	})
}

func (r *RouteRepository) GetByID(ctx context.Context, id valueobjects.RouteID) (*entities.Route, error) {
	var route *entities.Route
	err := r.run("routes.get", "route", func() error {
		var err error
		route, err = scanRoute(r.db.QueryRowContext(ctx, `SELECT `+routeColumns+` FROM routes WHERE id = ?`, id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return route, nil
}

func (r *RouteRepository) Delete(ctx context.Context, id valueobjects.RouteID) error {
	return r.run("routes.delete", "route", func() error {
		res, err := r.db.ExecContext(ctx, `DELETE FROM routes WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return affected(res, "route", id)
	})
}

func (r *RouteRepository) List(ctx context.Context, filter ports.RouteFilter) ([]*entities.Route, int, error) {
	w := routeWhere(filter)
	var (
		items []*entities.Route
		total int
	)
	err := r.run("routes.list", "route", func() error {
		if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM routes`+w.String(), w.args...).Scan(&total); err != nil {
			return err
		}
		clause, args := limit(filter.Page)
		var err error
		items, err = r.query(ctx, `SELECT `+routeColumns+` FROM routes`+w.String()+` ORDER BY id`+clause,
			append(append([]interface{}{}, w.args...), args...)...)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func routeWhere(f ports.RouteFilter) *where {
	w := &where{}
	if f.PublicOnly {
		w.add("public = TRUE")
	}
	if !f.UserID.IsZero() {
		w.add("user_id = ?", f.UserID)
	}
	if !f.StartID.IsZero() {
		w.add("start_location_id = ?", f.StartID)
	}
	if !f.EndID.IsZero() {
		w.add("end_location_id = ?", f.EndID)
	}
	if len(f.StartIDs) > 0 {
		args := make([]interface{}, len(f.StartIDs))
		for i, id := range f.StartIDs {
			args[i] = id
		}
		w.add("start_location_id IN ("+placeholders(len(args))+")", args...)
	}
	return w
}

func (r *RouteRepository) ListAll(ctx context.Context) ([]*entities.Route, error) {
	var items []*entities.Route
	err := r.run("routes.list_all", "route", func() error {
		var err error
		items, err = r.query(ctx, `SELECT `+routeColumns+` FROM routes ORDER BY id`)
		return err
	})
	return items, err
}

func (r *RouteRepository) Popular(ctx context.Context, n int) ([]*entities.Route, error) {
	var items []*entities.Route
	err := r.run("routes.popular", "route", func() error {
		clause, args := limit(ports.Page{Limit: n})
		var err error
		items, err = r.query(ctx, `SELECT `+routeColumns+` FROM routes WHERE public = TRUE
			ORDER BY created_at DESC, id DESC`+clause, args...)
		return err
	})
	return items, err
}

func (r *RouteRepository) query(ctx context.Context, q string, args ...interface{}) ([]*entities.Route, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*entities.Route{}
	for rows.Next() {
		route, err := scanRoute(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, route)
	}
	return items, rows.Err()
}

func scanRoute(s scanner) (*entities.Route, error) {
	var (
		route entities.Route
		desc  sql.NullString
		stops jsonColumn[[]valueobjects.LocationID]
	)
	err := s.Scan(&route.ID, &route.UserID, &route.Name, &desc, &route.StartID, &route.EndID, &stops,
		&route.Duration, &route.Public, &route.CreatedAt, &route.UpdatedAt)
	if err != nil {
		return nil, err
	}
	route.Description = desc.String
	route.Stops = stops.V
	return &route, nil
}
