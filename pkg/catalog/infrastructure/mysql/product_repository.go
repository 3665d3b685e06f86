package mysql

import (
	"database/sql"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/entoun8/alshami-store/pkg/catalog/domain/model"
)

const duplicateEntryErrNo = 1062

type ProductRepository struct {
	db *sqlx.DB
}

func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

var _ model.ProductRepository = &ProductRepository{}

type productRow struct {
	ID          string    `db:"id"`
	Slug        string    `db:"slug"`
	Name        string    `db:"name"`
	Category    string    `db:"category"`
	Brand       string    `db:"brand"`
	Description string    `db:"description"`
	Stock       int       `db:"stock"`
	Price       string    `db:"price"`
	Image       string    `db:"image"`
	Version     int       `db:"version"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r *ProductRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (r *ProductRepository) Create(product *model.Product) error {
	_, err := r.db.NamedExec(`
		INSERT INTO product (id, slug, name, category, brand, description, stock, price, image, version, created_at)
		VALUES (:id, :slug, :name, :category, :brand, :description, :stock, :price, :image, :version, :created_at)`,
		toProductRow(product))
	if err != nil {
		var mysqlErr *mysqldriver.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == duplicateEntryErrNo {
			return model.ErrSlugTaken
		}
		return errors.Wrap(err, "insert product")
	}
	return nil
}

func (r *ProductRepository) Update(product *model.Product) error {
	res, err := r.db.NamedExec(`
		UPDATE product
		SET slug = :slug, name = :name, category = :category, brand = :brand,
		    description = :description, stock = :stock, price = :price,
		    image = :image, version = :version
		WHERE id = :id AND version = :version - 1`,
		toProductRow(product))
	if err != nil {
		var mysqlErr *mysqldriver.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == duplicateEntryErrNo {
			return model.ErrSlugTaken
		}
		return errors.Wrap(err, "update product")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "update product rows affected")
	}
	if affected == 0 {
		if _, findErr := r.Find(product.ID); errors.Is(findErr, model.ErrProductNotFound) {
			return model.ErrProductNotFound
		}
		return model.ErrOptimisticLock
	}
	return nil
}

func (r *ProductRepository) Delete(id uuid.UUID) error {
	res, err := r.db.Exec(`DELETE FROM product WHERE id = ?`, id.String())
	if err != nil {
		return errors.Wrap(err, "delete product")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "delete product rows affected")
	}
	if affected == 0 {
		return model.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) Find(id uuid.UUID) (*model.Product, error) {
	var row productRow
	err := r.db.Get(&row, `SELECT * FROM product WHERE id = ?`, id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrProductNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find product")
	}
	return fromProductRow(row)
}

func (r *ProductRepository) FindBySlug(slug string) (*model.Product, error) {
	var row productRow
	err := r.db.Get(&row, `SELECT * FROM product WHERE slug = ?`, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrProductNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find product by slug")
	}
	return fromProductRow(row)
}

func (r *ProductRepository) List(category string) ([]model.Product, error) {
	query := `SELECT * FROM product ORDER BY created_at DESC`
	args := []interface{}{}
	if category != "" && category != "all" {
		query = `SELECT * FROM product WHERE category = ? ORDER BY created_at DESC`
		args = append(args, category)
	}

	var rows []productRow
	if err := r.db.Select(&rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "list products")
	}

	products := make([]model.Product, 0, len(rows))
	for _, row := range rows {
		product, err := fromProductRow(row)
		if err != nil {
			return nil, err
		}
		products = append(products, *product)
	}
	return products, nil
}

func (r *ProductRepository) Categories() ([]string, error) {
	var categories []string
	if err := r.db.Select(&categories, `SELECT DISTINCT category FROM product ORDER BY category`); err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	return categories, nil
}

func (r *ProductRepository) SlugExists(slug string) (bool, error) {
	var exists bool
	if err := r.db.Get(&exists, `SELECT EXISTS(SELECT 1 FROM product WHERE slug = ?)`, slug); err != nil {
		return false, errors.Wrap(err, "check slug")
	}
	return exists, nil
}

func toProductRow(product *model.Product) productRow {
	return productRow{
		ID:          product.ID.String(),
		Slug:        product.Slug,
		Name:        product.Name,
		Category:    product.Category,
		Brand:       product.Brand,
		Description: product.Description,
		Stock:       product.Stock,
		Price:       product.Price,
		Image:       product.Image,
		Version:     product.Version,
		CreatedAt:   product.CreatedAt,
	}
}

func fromProductRow(row productRow) (*model.Product, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, errors.Wrap(err, "parse product id")
	}
	price, err := model.ParsePrice(row.Price)
	if err != nil {
		return nil, errors.Wrap(err, "parse product price")
	}
	return &model.Product{
		ID:          id,
		Slug:        row.Slug,
		Name:        row.Name,
		Category:    row.Category,
		Brand:       row.Brand,
		Description: row.Description,
		Stock:       row.Stock,
		Price:       price,
		Image:       row.Image,
		Version:     row.Version,
		CreatedAt:   row.CreatedAt,
	}, nil
}
