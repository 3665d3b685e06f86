package mysql

import (
	"database/sql"
	"encoding/json"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/entoun8/alshami-store/pkg/identity/domain/model"
)

const duplicateEntryErrNo = 1062

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

var _ model.UserRepository = &UserRepository{}

type userRow struct {
	ID            string         `db:"id"`
	Email         string         `db:"email"`
	FullName      string         `db:"full_name"`
	Image         sql.NullString `db:"image"`
	Role          string         `db:"role"`
	Address       []byte         `db:"address"`
	PaymentMethod sql.NullString `db:"payment_method"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

func (r *UserRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (r *UserRepository) Create(user *model.UserProfile) error {
	row, err := toUserRow(user)
	if err != nil {
		return err
	}
	if _, err := r.db.NamedExec(`
		INSERT INTO user_profile (id, email, full_name, image, role, address, payment_method, created_at, updated_at)
		VALUES (:id, :email, :full_name, :image, :role, :address, :payment_method, :created_at, :updated_at)`,
		row); err != nil {
		var mysqlErr *mysqldriver.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == duplicateEntryErrNo {
			return model.ErrEmailTaken
		}
		return errors.Wrap(err, "insert user profile")
	}
	return nil
}

func (r *UserRepository) Update(user *model.UserProfile) error {
	row, err := toUserRow(user)
	if err != nil {
		return err
	}
	res, err := r.db.NamedExec(`
		UPDATE user_profile
		SET full_name = :full_name, image = :image, role = :role,
		    address = :address, payment_method = :payment_method, updated_at = :updated_at
		WHERE id = :id`,
		row)
	if err != nil {
		return errors.Wrap(err, "update user profile")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "update user profile rows affected")
	}
	if affected == 0 {
		if _, findErr := r.Find(user.ID); findErr != nil {
			return findErr
		}
	}
	return nil
}

func (r *UserRepository) Find(id uuid.UUID) (*model.UserProfile, error) {
	var row userRow
	err := r.db.Get(&row, `SELECT * FROM user_profile WHERE id = ?`, id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find user profile")
	}
	return fromUserRow(row)
}

func (r *UserRepository) FindByEmail(email string) (*model.UserProfile, error) {
	var row userRow
	err := r.db.Get(&row, `SELECT * FROM user_profile WHERE email = ?`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find user profile by email")
	}
	return fromUserRow(row)
}

func toUserRow(user *model.UserProfile) (userRow, error) {
	row := userRow{
		ID:        user.ID.String(),
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
	if user.Image != "" {
		row.Image = sql.NullString{String: user.Image, Valid: true}
	}
	if user.PaymentMethod != "" {
		row.PaymentMethod = sql.NullString{String: user.PaymentMethod, Valid: true}
	}
	if user.Address != nil {
		raw, err := json.Marshal(user.Address)
		if err != nil {
			return userRow{}, errors.Wrap(err, "marshal shipping address")
		}
		row.Address = raw
	}
	return row, nil
}

func fromUserRow(row userRow) (*model.UserProfile, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, errors.Wrap(err, "parse user id")
	}

	user := &model.UserProfile{
		ID:        id,
		Email:     row.Email,
		FullName:  row.FullName,
		Image:     row.Image.String,
		Role:      model.Role(row.Role),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if row.PaymentMethod.Valid {
		user.PaymentMethod = row.PaymentMethod.String
	}
	if len(row.Address) > 0 {
		var address model.ShippingAddress
		if err := json.Unmarshal(row.Address, &address); err != nil {
			return nil, errors.Wrap(err, "unmarshal shipping address")
		}
		user.Address = &address
	}
	return user, nil
}
