package db

import "database/sql"

// EnsureSchema creates all tables when missing. Statements are idempotent so
// startup against an existing database is a no-op.
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			username VARCHAR(150) NOT NULL,
			email VARCHAR(255) NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uniq_username (username)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS user_roles (
			user_id BIGINT NOT NULL,
			role VARCHAR(20) NOT NULL,
			PRIMARY KEY (user_id, role),
			CONSTRAINT fk_user_roles_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS cities (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			UNIQUE KEY uniq_city_name (name)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS branches (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			city_id BIGINT NOT NULL,
			CONSTRAINT fk_branches_city FOREIGN KEY (city_id) REFERENCES cities(id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS buses (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			plate_number VARCHAR(20) NOT NULL,
			capacity INT NOT NULL,
			branch_id BIGINT NOT NULL,
			UNIQUE KEY uniq_plate (plate_number),
			CONSTRAINT fk_buses_branch FOREIGN KEY (branch_id) REFERENCES branches(id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS routes (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			origin_branch_id BIGINT NOT NULL,
			destination_branch_id BIGINT NOT NULL,
			duration_seconds BIGINT NOT NULL,
			distance_km DOUBLE NOT NULL,
			CONSTRAINT fk_routes_origin FOREIGN KEY (origin_branch_id) REFERENCES branches(id) ON DELETE CASCADE,
			CONSTRAINT fk_routes_destination FOREIGN KEY (destination_branch_id) REFERENCES branches(id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS trips (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			route_id BIGINT NOT NULL,
			bus_id BIGINT NULL,
			organizer_id BIGINT NOT NULL,
			driver_id BIGINT NOT NULL,
			departure_time DATETIME NOT NULL,
			available_seats INT NOT NULL,
			CONSTRAINT fk_trips_route FOREIGN KEY (route_id) REFERENCES routes(id) ON DELETE CASCADE,
			CONSTRAINT fk_trips_bus FOREIGN KEY (bus_id) REFERENCES buses(id) ON DELETE SET NULL,
			KEY idx_trips_departure (departure_time)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS trip_crew (
			trip_id BIGINT NOT NULL,
			user_id BIGINT NOT NULL,
			PRIMARY KEY (trip_id, user_id),
			CONSTRAINT fk_trip_crew_trip FOREIGN KEY (trip_id) REFERENCES trips(id) ON DELETE CASCADE,
			CONSTRAINT fk_trip_crew_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS bookings (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			trip_id BIGINT NOT NULL,
			customer_id BIGINT NOT NULL,
			seat_number INT NOT NULL,
			booked_at DATETIME NOT NULL,
			UNIQUE KEY uniq_trip_seat (trip_id, seat_number),
			KEY idx_bookings_customer (customer_id),
			CONSTRAINT fk_bookings_trip FOREIGN KEY (trip_id) REFERENCES trips(id),
			CONSTRAINT fk_bookings_customer FOREIGN KEY (customer_id) REFERENCES users(id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
