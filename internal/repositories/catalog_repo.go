package repositories

import (
	"database/sql"
	"errors"
	"time"

	intconfig "backend/internal/config"
	intdb "backend/internal/db"
	"backend/internal/domain"
	"backend/internal/domain/models"
)

// CityRepo, BranchRepo, BusRepo and RouteRepo back the reference catalog.
// All lookups are plain reads; uniqueness is enforced both here
// (case-insensitive existence checks) and by the unique keys.

type CityRepo struct {
	DB *sql.DB
}

func (r CityRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r CityRepo) List() ([]models.City, error) {
	rows, err := r.db().Query(`SELECT id, name FROM cities ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.City{}
	for rows.Next() {
		var c models.City
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r CityRepo) GetByID(id int64) (models.City, error) {
	var c models.City
	err := r.db().QueryRow(`SELECT id, name FROM cities WHERE id=?`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.City{}, domain.NotFoundError{Resource: "city", ID: id}
		}
		return models.City{}, err
	}
	return c, nil
}

// NameTaken checks for another city with the same name, case-insensitively.
// excludeID skips the record being updated; pass 0 on create.
func (r CityRepo) NameTaken(name string, excludeID int64) (bool, error) {
	var n int
	err := r.db().QueryRow(
		`SELECT COUNT(*) FROM cities WHERE LOWER(name)=LOWER(?) AND id<>?`,
		name, excludeID,
	).Scan(&n)
	return n > 0, err
}

func (r CityRepo) Create(name string) (int64, error) {
	res, err := r.db().Exec(`INSERT INTO cities (name) VALUES (?)`, name)
	if err != nil {
		if intdb.IsDuplicate(err) {
			return 0, domain.ConflictError{Resource: "city", Msg: "name already exists"}
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (r CityRepo) UpdateName(id int64, name string) error {
	_, err := r.db().Exec(`UPDATE cities SET name=? WHERE id=?`, name, id)
	if intdb.IsDuplicate(err) {
		return domain.ConflictError{Resource: "city", Msg: "name already exists"}
	}
	return err
}

func (r CityRepo) Delete(id int64) error {
	res, err := r.db().Exec(`DELETE FROM cities WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "city", ID: id}
	}
	return nil
}

type BranchRepo struct {
	DB *sql.DB
}

func (r BranchRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r BranchRepo) List() ([]models.Branch, error) {
	rows, err := r.db().Query(`
		SELECT b.id, b.name, b.city_id, c.name
		FROM branches b
		JOIN cities c ON c.id = b.city_id
		ORDER BY b.id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Branch{}
	for rows.Next() {
		var b models.Branch
		if err := rows.Scan(&b.ID, &b.Name, &b.CityID, &b.CityName); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r BranchRepo) GetByID(id int64) (models.Branch, error) {
	var b models.Branch
	err := r.db().QueryRow(`
		SELECT b.id, b.name, b.city_id, c.name
		FROM branches b
		JOIN cities c ON c.id = b.city_id
		WHERE b.id=?`, id,
	).Scan(&b.ID, &b.Name, &b.CityID, &b.CityName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Branch{}, domain.NotFoundError{Resource: "branch", ID: id}
		}
		return models.Branch{}, err
	}
	return b, nil
}

func (r BranchRepo) Create(name string, cityID int64) (int64, error) {
	res, err := r.db().Exec(`INSERT INTO branches (name, city_id) VALUES (?, ?)`, name, cityID)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r BranchRepo) Update(id int64, name string, cityID int64) error {
	_, err := r.db().Exec(`UPDATE branches SET name=?, city_id=? WHERE id=?`, name, cityID, id)
	return err
}

func (r BranchRepo) Delete(id int64) error {
	res, err := r.db().Exec(`DELETE FROM branches WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "branch", ID: id}
	}
	return nil
}

type BusRepo struct {
	DB *sql.DB
}

func (r BusRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r BusRepo) List() ([]models.Bus, error) {
	rows, err := r.db().Query(
		`SELECT id, plate_number, capacity, branch_id FROM buses ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Bus{}
	for rows.Next() {
		var b models.Bus
		if err := rows.Scan(&b.ID, &b.PlateNumber, &b.Capacity, &b.BranchID); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r BusRepo) GetByID(id int64) (models.Bus, error) {
	var b models.Bus
	err := r.db().QueryRow(
		`SELECT id, plate_number, capacity, branch_id FROM buses WHERE id=?`, id,
	).Scan(&b.ID, &b.PlateNumber, &b.Capacity, &b.BranchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Bus{}, domain.NotFoundError{Resource: "bus", ID: id}
		}
		return models.Bus{}, err
	}
	return b, nil
}

func (r BusRepo) PlateTaken(plate string, excludeID int64) (bool, error) {
	var n int
	err := r.db().QueryRow(
		`SELECT COUNT(*) FROM buses WHERE LOWER(plate_number)=LOWER(?) AND id<>?`,
		plate, excludeID,
	).Scan(&n)
	return n > 0, err
}

func (r BusRepo) Create(plate string, capacity int, branchID int64) (int64, error) {
	res, err := r.db().Exec(
		`INSERT INTO buses (plate_number, capacity, branch_id) VALUES (?, ?, ?)`,
		plate, capacity, branchID,
	)
	if err != nil {
		if intdb.IsDuplicate(err) {
			return 0, domain.ConflictError{Resource: "bus", Msg: "plate number already exists"}
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (r BusRepo) Update(id int64, plate string, capacity int, branchID int64) error {
	_, err := r.db().Exec(
		`UPDATE buses SET plate_number=?, capacity=?, branch_id=? WHERE id=?`,
		plate, capacity, branchID, id,
	)
	if intdb.IsDuplicate(err) {
		return domain.ConflictError{Resource: "bus", Msg: "plate number already exists"}
	}
	return err
}

func (r BusRepo) Delete(id int64) error {
	res, err := r.db().Exec(`DELETE FROM buses WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "bus", ID: id}
	}
	return nil
}

type RouteRepo struct {
	DB *sql.DB
}

func (r RouteRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r RouteRepo) List() ([]models.Route, error) {
	rows, err := r.db().Query(`
		SELECT id, origin_branch_id, destination_branch_id, duration_seconds, distance_km
		FROM routes ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Route{}
	for rows.Next() {
		rt, err := scanRoute(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

func (r RouteRepo) GetByID(id int64) (models.Route, error) {
	row := r.db().QueryRow(`
		SELECT id, origin_branch_id, destination_branch_id, duration_seconds, distance_km
		FROM routes WHERE id=?`, id)
	rt, err := scanRoute(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Route{}, domain.NotFoundError{Resource: "route", ID: id}
		}
		return models.Route{}, err
	}
	return rt, nil
}

func (r RouteRepo) Create(rt models.Route) (int64, error) {
	res, err := r.db().Exec(`
		INSERT INTO routes (origin_branch_id, destination_branch_id, duration_seconds, distance_km)
		VALUES (?, ?, ?, ?)`,
		rt.OriginID, rt.DestinationID, int64(rt.Duration.Seconds()), rt.DistanceKM,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r RouteRepo) Update(rt models.Route) error {
	_, err := r.db().Exec(`
		UPDATE routes SET origin_branch_id=?, destination_branch_id=?, duration_seconds=?, distance_km=?
		WHERE id=?`,
		rt.OriginID, rt.DestinationID, int64(rt.Duration.Seconds()), rt.DistanceKM, rt.ID,
	)
	return err
}

func (r RouteRepo) Delete(id int64) error {
	res, err := r.db().Exec(`DELETE FROM routes WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "route", ID: id}
	}
	return nil
}

func scanRoute(scan func(dest ...any) error) (models.Route, error) {
	var (
		rt      models.Route
		seconds int64
	)
	if err := scan(&rt.ID, &rt.OriginID, &rt.DestinationID, &seconds, &rt.DistanceKM); err != nil {
		return models.Route{}, err
	}
	rt.Duration = time.Duration(seconds) * time.Second
	return rt, nil
}
