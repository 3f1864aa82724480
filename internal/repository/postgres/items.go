package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/harvesthub/marketplace/internal/domain"
)

const orderItemColumns = `id, order_id, product_id, vendor_id, quantity, price, total,
	product_name, product_image, created_at`

// insertOrderItems writes all items of an order in one statement
func insertOrderItems(ctx context.Context, db sqlx.ExtContext, orderID uuid.UUID, items []domain.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `INSERT INTO order_items (` + orderItemColumns + `) VALUES `

	const cols = 10
	args := make([]interface{}, 0, len(items)*cols)
	now := time.Now()

	for i := range items {
		item := &items[i]
		if i > 0 {
			query += ", "
		}
		query += fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			i*cols+1, i*cols+2, i*cols+3, i*cols+4, i*cols+5, i*cols+6, i*cols+7, i*cols+8, i*cols+9, i*cols+10)

		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.OrderID = orderID
		item.CreatedAt = now

		args = append(args,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.VendorID,
			item.Quantity,
			item.Price,
			item.Total,
			item.ProductName,
			item.ProductImage,
			item.CreatedAt,
		)
	}

	_, err := db.ExecContext(ctx, query, args...)
	return err
}

// itemsByOrder loads the items of every given order keyed by order id
func itemsByOrder(ctx context.Context, db sqlx.ExtContext, orderIDs []uuid.UUID) (map[uuid.UUID][]domain.OrderItem, error) {
	out := make(map[uuid.UUID][]domain.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}

	strIDs := make([]string, len(orderIDs))
	for i, id := range orderIDs {
		strIDs[i] = id.String()
	}

	var items []domain.OrderItem
	err := sqlx.SelectContext(ctx, db, &items,
		`SELECT `+orderItemColumns+` FROM order_items WHERE order_id = ANY($1::uuid[]) ORDER BY created_at ASC, id ASC`,
		pq.Array(strIDs),
	)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		out[item.OrderID] = append(out[item.OrderID], item)
	}
	return out, nil
}
