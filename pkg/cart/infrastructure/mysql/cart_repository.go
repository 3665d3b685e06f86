package mysql

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/entoun8/alshami-store/pkg/cart/domain/model"
)

type CartRepository struct {
	db *sqlx.DB
}

func NewCartRepository(db *sqlx.DB) *CartRepository {
	return &CartRepository{db: db}
}

var _ model.CartRepository = &CartRepository{}

type cartRow struct {
	ID            string         `db:"id"`
	UserID        sql.NullString `db:"user_id"`
	SessionCartID sql.NullString `db:"session_cart_id"`
	ItemsPrice    string         `db:"items_price"`
	ShippingPrice string         `db:"shipping_price"`
	TaxPrice      string         `db:"tax_price"`
	TotalPrice    string         `db:"total_price"`
	Version       int            `db:"version"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

type cartItemRow struct {
	CartID    string `db:"cart_id"`
	ProductID string `db:"product_id"`
	Name      string `db:"name"`
	Slug      string `db:"slug"`
	Image     string `db:"image"`
	Price     string `db:"price"`
	Qty       int    `db:"qty"`
	Position  int    `db:"position"`
}

func (r *CartRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (r *CartRepository) Create(cart *model.Cart) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "begin create cart")
	}
	defer tx.Rollback()

	if _, err := tx.NamedExec(`
		INSERT INTO cart (id, user_id, session_cart_id, items_price, shipping_price, tax_price, total_price, version, created_at, updated_at)
		VALUES (:id, :user_id, :session_cart_id, :items_price, :shipping_price, :tax_price, :total_price, :version, :created_at, :updated_at)`,
		toCartRow(cart)); err != nil {
		return errors.Wrap(err, "insert cart")
	}

	if err := insertItems(tx, cart); err != nil {
		return err
	}

	return errors.Wrap(tx.Commit(), "commit create cart")
}

// Update rewrites the cart row and its lines conditioned on the
// previously observed version; a concurrent writer surfaces as
// ErrOptimisticLock.
func (r *CartRepository) Update(cart *model.Cart) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "begin update cart")
	}
	defer tx.Rollback()

	res, err := tx.NamedExec(`
		UPDATE cart
		SET user_id = :user_id, session_cart_id = :session_cart_id,
		    items_price = :items_price, shipping_price = :shipping_price,
		    tax_price = :tax_price, total_price = :total_price,
		    version = :version, updated_at = :updated_at
		WHERE id = :id AND version = :version - 1`,
		toCartRow(cart))
	if err != nil {
		return errors.Wrap(err, "update cart")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "update cart rows affected")
	}
	if affected == 0 {
		var exists bool
		if err := tx.Get(&exists, `SELECT EXISTS(SELECT 1 FROM cart WHERE id = ?)`, cart.ID.String()); err != nil {
			return errors.Wrap(err, "check cart existence")
		}
		if !exists {
			return model.ErrCartNotFound
		}
		return model.ErrOptimisticLock
	}

	if _, err := tx.Exec(`DELETE FROM cart_item WHERE cart_id = ?`, cart.ID.String()); err != nil {
		return errors.Wrap(err, "clear cart items")
	}
	if err := insertItems(tx, cart); err != nil {
		return err
	}

	return errors.Wrap(tx.Commit(), "commit update cart")
}

func (r *CartRepository) Delete(id uuid.UUID) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "begin delete cart")
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM cart_item WHERE cart_id = ?`, id.String()); err != nil {
		return errors.Wrap(err, "delete cart items")
	}
	res, err := tx.Exec(`DELETE FROM cart WHERE id = ?`, id.String())
	if err != nil {
		return errors.Wrap(err, "delete cart")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "delete cart rows affected")
	}
	if affected == 0 {
		return model.ErrCartNotFound
	}

	return errors.Wrap(tx.Commit(), "commit delete cart")
}

func (r *CartRepository) Find(id uuid.UUID) (*model.Cart, error) {
	return r.findOne(`SELECT * FROM cart WHERE id = ?`, id.String())
}

func (r *CartRepository) FindByUser(userID uuid.UUID) (*model.Cart, error) {
	return r.findOne(`SELECT * FROM cart WHERE user_id = ?`, userID.String())
}

func (r *CartRepository) FindBySession(sessionCartID string) (*model.Cart, error) {
	return r.findOne(`SELECT * FROM cart WHERE session_cart_id = ?`, sessionCartID)
}

func (r *CartRepository) findOne(query string, arg interface{}) (*model.Cart, error) {
	var row cartRow
	err := r.db.Get(&row, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrCartNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find cart")
	}

	var itemRows []cartItemRow
	if err := r.db.Select(&itemRows, `SELECT * FROM cart_item WHERE cart_id = ? ORDER BY position`, row.ID); err != nil {
		return nil, errors.Wrap(err, "load cart items")
	}

	return fromCartRow(row, itemRows)
}

func insertItems(tx *sqlx.Tx, cart *model.Cart) error {
	for i, item := range cart.Items {
		if _, err := tx.NamedExec(`
			INSERT INTO cart_item (cart_id, product_id, name, slug, image, price, qty, position)
			VALUES (:cart_id, :product_id, :name, :slug, :image, :price, :qty, :position)`,
			cartItemRow{
				CartID:    cart.ID.String(),
				ProductID: item.ProductID.String(),
				Name:      item.Name,
				Slug:      item.Slug,
				Image:     item.Image,
				Price:     item.Price,
				Qty:       item.Qty,
				Position:  i,
			}); err != nil {
			return errors.Wrap(err, "insert cart item")
		}
	}
	return nil
}

func toCartRow(cart *model.Cart) cartRow {
	row := cartRow{
		ID:            cart.ID.String(),
		ItemsPrice:    cart.Totals.Items,
		ShippingPrice: cart.Totals.Shipping,
		TaxPrice:      cart.Totals.Tax,
		TotalPrice:    cart.Totals.Grand,
		Version:       cart.Version,
		CreatedAt:     cart.CreatedAt,
		UpdatedAt:     cart.UpdatedAt,
	}
	if cart.UserID != nil {
		row.UserID = sql.NullString{String: cart.UserID.String(), Valid: true}
	}
	if cart.SessionCartID != "" {
		row.SessionCartID = sql.NullString{String: cart.SessionCartID, Valid: true}
	}
	return row
}

func fromCartRow(row cartRow, itemRows []cartItemRow) (*model.Cart, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, errors.Wrap(err, "parse cart id")
	}

	cart := &model.Cart{
		ID: id,
		Totals: model.Totals{
			Items:    normalisePrice(row.ItemsPrice),
			Shipping: normalisePrice(row.ShippingPrice),
			Tax:      normalisePrice(row.TaxPrice),
			Grand:    normalisePrice(row.TotalPrice),
		},
		Version:   row.Version,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if row.UserID.Valid {
		userID, err := uuid.Parse(row.UserID.String)
		if err != nil {
			return nil, errors.Wrap(err, "parse cart user id")
		}
		cart.UserID = &userID
	}
	if row.SessionCartID.Valid {
		cart.SessionCartID = row.SessionCartID.String
	}

	for _, itemRow := range itemRows {
		productID, err := uuid.Parse(itemRow.ProductID)
		if err != nil {
			return nil, errors.Wrap(err, "parse cart item product id")
		}
		cart.Items = append(cart.Items, model.Item{
			ProductID: productID,
			Name:      itemRow.Name,
			Slug:      itemRow.Slug,
			Image:     itemRow.Image,
			Price:     normalisePrice(itemRow.Price),
			Qty:       itemRow.Qty,
		})
	}
	return cart, nil
}
