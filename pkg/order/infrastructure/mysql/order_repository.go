package mysql

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	identitymodel "github.com/entoun8/alshami-store/pkg/identity/domain/model"
	"github.com/entoun8/alshami-store/pkg/order/domain/model"
)

type OrderRepository struct {
	db *sqlx.DB
}

func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

var _ model.OrderRepository = &OrderRepository{}

type orderRow struct {
	ID              string         `db:"id"`
	UserID          string         `db:"user_id"`
	ShippingAddress []byte         `db:"shipping_address"`
	PaymentMethod   string         `db:"payment_method"`
	ItemsPrice      string         `db:"items_price"`
	ShippingPrice   string         `db:"shipping_price"`
	TaxPrice        string         `db:"tax_price"`
	TotalPrice      string         `db:"total_price"`
	IsPaid          bool           `db:"is_paid"`
	PaidAt          *time.Time     `db:"paid_at"`
	PaymentIntentID sql.NullString `db:"payment_intent_id"`
	CreatedAt       time.Time      `db:"created_at"`
}

type orderItemRow struct {
	OrderID   string `db:"order_id"`
	ProductID string `db:"product_id"`
	Name      string `db:"name"`
	Slug      string `db:"slug"`
	Image     string `db:"image"`
	Price     string `db:"price"`
	Qty       int    `db:"qty"`
}

type summaryRow struct {
	ID         string     `db:"id"`
	CreatedAt  time.Time  `db:"created_at"`
	IsPaid     bool       `db:"is_paid"`
	PaidAt     *time.Time `db:"paid_at"`
	TotalPrice string     `db:"total_price"`
	ItemCount  int        `db:"item_count"`
}

func (r *OrderRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

// CreateFromCart runs the whole conversion in one transaction: the
// order insert, one item row per line, a conditional stock decrement
// per line, and the cart teardown. Any line whose decrement would push
// stock negative aborts everything.
func (r *OrderRepository) CreateFromCart(order *model.Order, cartID uuid.UUID) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "begin create order")
	}
	defer tx.Rollback()

	row, err := toOrderRow(order)
	if err != nil {
		return err
	}
	if _, err := tx.NamedExec(`
		INSERT INTO orders (id, user_id, shipping_address, payment_method, items_price, shipping_price, tax_price, total_price, is_paid, paid_at, payment_intent_id, created_at)
		VALUES (:id, :user_id, :shipping_address, :payment_method, :items_price, :shipping_price, :tax_price, :total_price, :is_paid, :paid_at, :payment_intent_id, :created_at)`,
		row); err != nil {
		return errors.Wrap(err, "insert order")
	}

	for _, item := range order.Items {
		if _, err := tx.NamedExec(`
			INSERT INTO order_item (order_id, product_id, name, slug, image, price, qty)
			VALUES (:order_id, :product_id, :name, :slug, :image, :price, :qty)`,
			orderItemRow{
				OrderID:   item.OrderID.String(),
				ProductID: item.ProductID.String(),
				Name:      item.Name,
				Slug:      item.Slug,
				Image:     item.Image,
				Price:     item.Price,
				Qty:       item.Qty,
			}); err != nil {
			return errors.Wrap(err, "insert order item")
		}

		res, err := tx.Exec(`UPDATE product SET stock = stock - ? WHERE id = ? AND stock >= ?`,
			item.Qty, item.ProductID.String(), item.Qty)
		if err != nil {
			return errors.Wrap(err, "decrement stock")
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return errors.Wrap(err, "decrement stock rows affected")
		}
		if affected == 0 {
			return model.ErrInsufficientStock
		}
	}

	if _, err := tx.Exec(`DELETE FROM cart_item WHERE cart_id = ?`, cartID.String()); err != nil {
		return errors.Wrap(err, "delete cart items")
	}
	if _, err := tx.Exec(`DELETE FROM cart WHERE id = ?`, cartID.String()); err != nil {
		return errors.Wrap(err, "delete cart")
	}

	return errors.Wrap(tx.Commit(), "commit create order")
}

func (r *OrderRepository) Find(id uuid.UUID) (*model.Order, error) {
	var row orderRow
	err := r.db.Get(&row, `SELECT * FROM orders WHERE id = ?`, id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrOrderNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find order")
	}

	var itemRows []orderItemRow
	if err := r.db.Select(&itemRows, `SELECT * FROM order_item WHERE order_id = ?`, row.ID); err != nil {
		return nil, errors.Wrap(err, "load order items")
	}

	return fromOrderRow(row, itemRows)
}

func (r *OrderRepository) ListByUser(userID uuid.UUID) ([]model.Summary, error) {
	var rows []summaryRow
	if err := r.db.Select(&rows, `
		SELECT o.id, o.created_at, o.is_paid, o.paid_at, o.total_price,
		       COUNT(i.product_id) AS item_count
		FROM orders o
		LEFT JOIN order_item i ON i.order_id = o.id
		WHERE o.user_id = ?
		GROUP BY o.id, o.created_at, o.is_paid, o.paid_at, o.total_price
		ORDER BY o.created_at DESC`,
		userID.String()); err != nil {
		return nil, errors.Wrap(err, "list user orders")
	}

	summaries := make([]model.Summary, 0, len(rows))
	for _, row := range rows {
		id, err := uuid.Parse(row.ID)
		if err != nil {
			return nil, errors.Wrap(err, "parse order id")
		}
		summaries = append(summaries, model.Summary{
			ID:         id,
			CreatedAt:  row.CreatedAt,
			IsPaid:     row.IsPaid,
			PaidAt:     row.PaidAt,
			TotalPrice: normalisePrice(row.TotalPrice),
			ItemCount:  row.ItemCount,
		})
	}
	return summaries, nil
}

// MarkPaid is the idempotent paid transition: the conditional update
// succeeds at most once per order.
func (r *OrderRepository) MarkPaid(id uuid.UUID, paidAt time.Time) (bool, error) {
	res, err := r.db.Exec(`UPDATE orders SET is_paid = TRUE, paid_at = ? WHERE id = ? AND is_paid = FALSE`,
		paidAt, id.String())
	if err != nil {
		return false, errors.Wrap(err, "mark order paid")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "mark order paid rows affected")
	}
	return affected > 0, nil
}

func (r *OrderRepository) SetPaymentIntent(id uuid.UUID, intentID string) error {
	res, err := r.db.Exec(`UPDATE orders SET payment_intent_id = ? WHERE id = ?`, intentID, id.String())
	if err != nil {
		return errors.Wrap(err, "set payment intent")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "set payment intent rows affected")
	}
	if affected == 0 {
		if _, findErr := r.Find(id); findErr != nil {
			return findErr
		}
	}
	return nil
}

func toOrderRow(order *model.Order) (orderRow, error) {
	address, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return orderRow{}, errors.Wrap(err, "marshal shipping address")
	}

	row := orderRow{
		ID:              order.ID.String(),
		UserID:          order.UserID.String(),
		ShippingAddress: address,
		PaymentMethod:   order.PaymentMethod,
		ItemsPrice:      order.ItemsPrice,
		ShippingPrice:   order.ShippingPrice,
		TaxPrice:        order.TaxPrice,
		TotalPrice:      order.TotalPrice,
		IsPaid:          order.IsPaid,
		PaidAt:          order.PaidAt,
		CreatedAt:       order.CreatedAt,
	}
	if order.PaymentIntentID != "" {
		row.PaymentIntentID = sql.NullString{String: order.PaymentIntentID, Valid: true}
	}
	return row, nil
}

func fromOrderRow(row orderRow, itemRows []orderItemRow) (*model.Order, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, errors.Wrap(err, "parse order id")
	}
	userID, err := uuid.Parse(row.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "parse order user id")
	}

	var address identitymodel.ShippingAddress
	if err := json.Unmarshal(row.ShippingAddress, &address); err != nil {
		return nil, errors.Wrap(err, "unmarshal shipping address")
	}

	order := &model.Order{
		ID:              id,
		UserID:          userID,
		ShippingAddress: address,
		PaymentMethod:   row.PaymentMethod,
		ItemsPrice:      normalisePrice(row.ItemsPrice),
		ShippingPrice:   normalisePrice(row.ShippingPrice),
		TaxPrice:        normalisePrice(row.TaxPrice),
		TotalPrice:      normalisePrice(row.TotalPrice),
		IsPaid:          row.IsPaid,
		PaidAt:          row.PaidAt,
		PaymentIntentID: row.PaymentIntentID.String,
		CreatedAt:       row.CreatedAt,
	}

	for _, itemRow := range itemRows {
		productID, err := uuid.Parse(itemRow.ProductID)
		if err != nil {
			return nil, errors.Wrap(err, "parse order item product id")
		}
		order.Items = append(order.Items, model.Item{
			OrderID:   id,
			ProductID: productID,
			Name:      itemRow.Name,
			Slug:      itemRow.Slug,
			Image:     itemRow.Image,
			Price:     normalisePrice(itemRow.Price),
			Qty:       itemRow.Qty,
		})
	}
	return order, nil
}

func normalisePrice(raw string) string {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return raw
	}
	return d.StringFixed(2)
}
