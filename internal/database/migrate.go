package database

import (
	"context"
	"database/sql"
	"fmt"
)

// mysqlSchema creates the tables used by the service.  booking_seats
// expands every booked seat into its own row so the unique index on
// (show_id, seat_row, seat_col) rejects a second booking of the same
// seat at commit time, no matter how many requests race.
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name          VARCHAR(100)    NOT NULL,
		email         VARCHAR(255)    NOT NULL,
		password_hash VARCHAR(255)    NOT NULL,
		is_admin      TINYINT(1)      NOT NULL DEFAULT 0,
		created_at    DATETIME(6)     NOT NULL,
		updated_at    DATETIME(6)     NOT NULL,
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64)        NOT NULL,
		expires_at DATETIME(6)     NOT NULL,
		revoked_at DATETIME(6)     NULL,
		created_at DATETIME(6)     NOT NULL,
		UNIQUE KEY uq_refresh_tokens_hash (token_hash),
		KEY idx_refresh_tokens_user (user_id),
		CONSTRAINT fk_refresh_tokens_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS cinemas (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name       VARCHAR(150)    NOT NULL,
		location   VARCHAR(255)    NOT NULL,
		created_at DATETIME(6)     NOT NULL,
		updated_at DATETIME(6)     NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS screens (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		cinema_id  BIGINT UNSIGNED NOT NULL,
		name       VARCHAR(100)    NOT NULL,
		created_at DATETIME(6)     NOT NULL,
		updated_at DATETIME(6)     NOT NULL,
		UNIQUE KEY uq_screen_cinema_name (cinema_id, name),
		CONSTRAINT fk_screens_cinema FOREIGN KEY (cinema_id) REFERENCES cinemas (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS movies (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		title       VARCHAR(200)    NOT NULL,
		description TEXT            NOT NULL,
		duration    INT             NOT NULL,
		created_at  DATETIME(6)     NOT NULL,
		updated_at  DATETIME(6)     NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS shows (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		movie_id   BIGINT UNSIGNED NOT NULL,
		screen_id  BIGINT UNSIGNED NOT NULL,
		start_time DATETIME        NOT NULL,
		created_at DATETIME(6)     NOT NULL,
		updated_at DATETIME(6)     NOT NULL,
		UNIQUE KEY uq_show_screen_time (screen_id, start_time),
		KEY idx_shows_movie (movie_id),
		KEY idx_shows_start (start_time),
		CONSTRAINT fk_shows_movie FOREIGN KEY (movie_id) REFERENCES movies (id) ON DELETE CASCADE,
		CONSTRAINT fk_shows_screen FOREIGN KEY (screen_id) REFERENCES screens (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		show_id    BIGINT UNSIGNED NOT NULL,
		created_at DATETIME(6)     NOT NULL,
		KEY idx_bookings_user_created (user_id, created_at),
		KEY idx_bookings_show (show_id),
		CONSTRAINT fk_bookings_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE,
		CONSTRAINT fk_bookings_show FOREIGN KEY (show_id) REFERENCES shows (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS booking_seats (
		booking_id BIGINT UNSIGNED NOT NULL,
		show_id    BIGINT UNSIGNED NOT NULL,
		seat_row   SMALLINT        NOT NULL,
		seat_col   SMALLINT        NOT NULL,
		position   SMALLINT        NOT NULL,
		PRIMARY KEY (booking_id, position),
		UNIQUE KEY uq_booking_seats_show_seat (show_id, seat_row, seat_col),
		CONSTRAINT chk_booking_seats_row CHECK (seat_row >= 0 AND seat_row < 10),
		CONSTRAINT chk_booking_seats_col CHECK (seat_col >= 0 AND seat_col < 10),
		CONSTRAINT fk_booking_seats_booking FOREIGN KEY (booking_id) REFERENCES bookings (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		name          TEXT     NOT NULL,
		email         TEXT     NOT NULL UNIQUE,
		password_hash TEXT     NOT NULL,
		is_admin      INTEGER  NOT NULL DEFAULT 0,
		created_at    DATETIME NOT NULL,
		updated_at    DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id    INTEGER  NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		token_hash TEXT     NOT NULL UNIQUE,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user ON refresh_tokens (user_id)`,
	`CREATE TABLE IF NOT EXISTS cinemas (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT     NOT NULL,
		location   TEXT     NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS screens (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		cinema_id  INTEGER  NOT NULL REFERENCES cinemas (id) ON DELETE CASCADE,
		name       TEXT     NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE (cinema_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS movies (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		title       TEXT     NOT NULL,
		description TEXT     NOT NULL DEFAULT '',
		duration    INTEGER  NOT NULL,
		created_at  DATETIME NOT NULL,
		updated_at  DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS shows (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		movie_id   INTEGER  NOT NULL REFERENCES movies (id) ON DELETE CASCADE,
		screen_id  INTEGER  NOT NULL REFERENCES screens (id) ON DELETE CASCADE,
		start_time DATETIME NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE (screen_id, start_time)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_shows_movie ON shows (movie_id)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id    INTEGER  NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		show_id    INTEGER  NOT NULL REFERENCES shows (id) ON DELETE CASCADE,
		created_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_user_created ON bookings (user_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_show ON bookings (show_id)`,
	`CREATE TABLE IF NOT EXISTS booking_seats (
		booking_id INTEGER NOT NULL REFERENCES bookings (id) ON DELETE CASCADE,
		show_id    INTEGER NOT NULL,
		seat_row   INTEGER NOT NULL CHECK (seat_row >= 0 AND seat_row < 10),
		seat_col   INTEGER NOT NULL CHECK (seat_col >= 0 AND seat_col < 10),
		position   INTEGER NOT NULL,
		PRIMARY KEY (booking_id, position),
		UNIQUE (show_id, seat_row, seat_col)
	)`,
}

// Migrate applies the schema for the given driver.  Every statement is
// idempotent, so Migrate is safe to run on each start.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	var stmts []string
	switch driver {
	case DriverMySQL, "":
		stmts = mysqlSchema
	case DriverSQLite:
		stmts = sqliteSchema
	default:
		return fmt.Errorf("unsupported db driver %q", driver)
	}
	for i, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
