// Package sqlstore keeps contacts in a MySQL table. Create is a single statement; update and
// delete run in a transaction together with the select that returns the stored record.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"gitlab.com/dirk.krummacker/favorite-contacts/internal/model"
	"gitlab.com/dirk.krummacker/favorite-contacts/internal/store"
)

// errDuplicateEntry is the MySQL error number for a duplicate primary key.
const errDuplicateEntry = 1062

const columns = "id, name, email, phone, favorite, created_at, updated_at"

const selectAllQuery = "SELECT " + columns + " FROM contacts ORDER BY created_at, id"

const selectWhereIDQuery = "SELECT " + columns + " FROM contacts WHERE id = ?"

const insertQuery = `
	INSERT INTO contacts (id, name, email, phone, favorite, created_at, updated_at)
	VALUES (:id, :name, :email, :phone, :favorite, :created_at, :updated_at)
`

// row is a contact as stored in the contacts table.
type row struct {
	Id        string    `db:"id"`
	Name      string    `db:"name"`
	Email     *string   `db:"email"`
	Phone     *string   `db:"phone"`
	Favorite  bool      `db:"favorite"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r row) contact() model.Contact {
	return model.Contact{
		Id:        r.Id,
		Name:      r.Name,
		Email:     r.Email,
		Phone:     r.Phone,
		Favorite:  r.Favorite,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

// Store implements [store.Store] on MySQL.
type Store struct {
	db            *sqlx.DB
	insert        *sqlx.NamedStmt
	selectAll     *sqlx.Stmt
	selectWhereId *sqlx.Stmt
	now           func() time.Time
}

var _ store.Store = (*Store)(nil)
var _ store.Pinger = (*Store)(nil)

// Config returns the driver configuration for the contacts database. Found rows are reported
// instead of changed rows, so an update that writes identical values still counts as a match.
func Config(user, password, host, database string) *mysql.Config {
	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = password
	cfg.Net = "tcp"
	cfg.Addr = host
	cfg.DBName = database
	cfg.ParseTime = true
	cfg.ClientFoundRows = true
	cfg.Loc = time.UTC
	return cfg
}

// Open returns a database handle for the configuration.
func Open(cfg *mysql.Config) (*sql.DB, error) {
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("mysql connector: %w", err)
	}
	return sql.OpenDB(connector), nil
}

// New wraps the sql database and prepares all statements. The database can be a real database
// for production use or a mock database within unit tests.
func New(sqlDB *sql.DB) (*Store, error) {
	s := &Store{db: sqlx.NewDb(sqlDB, "mysql"), now: time.Now}
	var err error

	// Prepared statements offer a significant speed increase if executed many times.
	if s.insert, err = s.db.PrepareNamed(insertQuery); err != nil {
		return nil, unavailable("prepare insert", err)
	}
	if s.selectAll, err = s.db.Preparex(selectAllQuery); err != nil {
		return nil, unavailable("prepare select all", err)
	}
	if s.selectWhereId, err = s.db.Preparex(selectWhereIDQuery); err != nil {
		return nil, unavailable("prepare select by id", err)
	}
	return s, nil
}

// Close releases the prepared statements and the database.
func (s *Store) Close() error {
	return errors.Join(s.insert.Close(), s.selectAll.Close(), s.selectWhereId.Close(), s.db.Close())
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

func (s *Store) ListAll(ctx context.Context) ([]model.Contact, error) {
	var rows []row
	if err := s.selectAll.SelectContext(ctx, &rows); err != nil {
		return nil, unavailable("select contacts", err)
	}
	contacts := make([]model.Contact, 0, len(rows))
	for _, r := range rows {
		contacts = append(contacts, r.contact())
	}
	return contacts, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (model.Contact, bool, error) {
	var rows []row
	if err := s.selectWhereId.SelectContext(ctx, &rows, id); err != nil {
		return model.Contact{}, false, unavailable("select contact", err)
	}
	if len(rows) == 0 {
		return model.Contact{}, false, nil
	}
	return rows[0].contact(), true, nil
}

func (s *Store) Create(ctx context.Context, id string, fields model.ContactFields) (model.Contact, error) {
	now := s.timestamp()
	contact := model.Contact{Id: id, CreatedAt: now, UpdatedAt: now}
	fields.Apply(&contact)
	r := row{
		Id:        contact.Id,
		Name:      contact.Name,
		Email:     contact.Email,
		Phone:     contact.Phone,
		Favorite:  contact.Favorite,
		CreatedAt: contact.CreatedAt,
		UpdatedAt: contact.UpdatedAt,
	}
	if _, err := s.insert.ExecContext(ctx, r); err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == errDuplicateEntry {
			return model.Contact{}, store.ErrDuplicateID
		}
		return model.Contact{}, unavailable("insert contact", err)
	}
	return contact, nil
}

func (s *Store) Update(ctx context.Context, id string, fields model.ContactFields) (model.Contact, bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Contact{}, false, unavailable("begin update", err)
	}
	defer tx.Rollback()

	query, args := updateStatement(id, fields, s.timestamp())
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return model.Contact{}, false, unavailable("update contact", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return model.Contact{}, false, unavailable("update contact", err)
	}
	if rowsAffected == 0 {
		return model.Contact{}, false, nil
	}

	// Return the full contact after the update.
	var r row
	if err := tx.GetContext(ctx, &r, selectWhereIDQuery, id); err != nil {
		return model.Contact{}, false, unavailable("select updated contact", err)
	}
	if err := tx.Commit(); err != nil {
		return model.Contact{}, false, unavailable("commit update", err)
	}
	return r.contact(), true, nil
}

func (s *Store) SetFavorite(ctx context.Context, id string, favorite bool) (model.Contact, bool, error) {
	return s.Update(ctx, id, model.ContactFields{Favorite: &favorite})
}

func (s *Store) Delete(ctx context.Context, id string) (model.Contact, bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Contact{}, false, unavailable("begin delete", err)
	}
	defer tx.Rollback()

	var rows []row
	if err := tx.SelectContext(ctx, &rows, selectWhereIDQuery+" FOR UPDATE", id); err != nil {
		return model.Contact{}, false, unavailable("select contact", err)
	}
	if len(rows) == 0 {
		return model.Contact{}, false, nil
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM contacts WHERE id = ?", id); err != nil {
		return model.Contact{}, false, unavailable("delete contact", err)
	}
	if err := tx.Commit(); err != nil {
		return model.Contact{}, false, unavailable("commit delete", err)
	}
	return rows[0].contact(), true, nil
}

// updateStatement builds an UPDATE for the set fields. updated_at is always written.
func updateStatement(id string, fields model.ContactFields, now time.Time) (string, []any) {
	var sets []string
	var args []any
	if fields.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *fields.Name)
	}
	if fields.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *fields.Email)
	}
	if fields.Phone != nil {
		sets = append(sets, "phone = ?")
		args = append(args, *fields.Phone)
	}
	if fields.Favorite != nil {
		sets = append(sets, "favorite = ?")
		args = append(args, *fields.Favorite)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, now, id)
	return "UPDATE contacts SET " + strings.Join(sets, ", ") + " WHERE id = ?", args
}

// timestamp returns the current time at the microsecond precision of DATETIME(6).
func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", store.ErrUnavailable, op, err)
}
