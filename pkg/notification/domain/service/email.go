package service

import (
	"bytes"
	"html/template"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	identitymodel "github.com/entoun8/alshami-store/pkg/identity/domain/model"
	ordermodel "github.com/entoun8/alshami-store/pkg/order/domain/model"
)

type orderEmailItem struct {
	Name     string
	Qty      int
	Price    string
	Subtotal string
}

type orderEmailData struct {
	FullName      string
	OrderID       string
	OrderDate     string
	Items         []orderEmailItem
	Address       identitymodel.ShippingAddress
	ItemsPrice    string
	ShippingPrice string
	TaxPrice      string
	TotalPrice    string
	Year          int
}

// shortOrderID renders the display form of an order id: the first
// eight characters, uppercased.
func shortOrderID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}

func buildOrderEmail(order *ordermodel.Order, user *identitymodel.UserProfile) (subject, body string, err error) {
	items := make([]orderEmailItem, 0, len(order.Items))
	for _, item := range order.Items {
		price, err := decimal.NewFromString(item.Price)
		if err != nil {
			return "", "", errors.Wrapf(err, "parse price for product %s", item.ProductID)
		}
		subtotal := price.Mul(decimal.NewFromInt(int64(item.Qty)))
		items = append(items, orderEmailItem{
			Name:     item.Name,
			Qty:      item.Qty,
			Price:    price.StringFixed(2),
			Subtotal: subtotal.StringFixed(2),
		})
	}

	data := orderEmailData{
		FullName:      user.FullName,
		OrderID:       shortOrderID(order.ID.String()),
		OrderDate:     order.CreatedAt.Format("Jan 2, 2006, 3:04 PM"),
		Items:         items,
		Address:       order.ShippingAddress,
		ItemsPrice:    order.ItemsPrice,
		ShippingPrice: order.ShippingPrice,
		TaxPrice:      order.TaxPrice,
		TotalPrice:    order.TotalPrice,
		Year:          time.Now().Year(),
	}

	var buf bytes.Buffer
	if err := orderEmailTemplate.Execute(&buf, data); err != nil {
		return "", "", errors.Wrap(err, "render order email")
	}

	return "Order Confirmation - #" + data.OrderID, buf.String(), nil
}

var orderEmailTemplate = template.Must(template.New("orderConfirmation").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Order Confirmation</title>
</head>
<body style="margin: 0; padding: 0; font-family: Arial, sans-serif; background-color: #f5f5f5;">
  <table width="100%" cellpadding="0" cellspacing="0" style="background-color: #f5f5f5; padding: 40px 20px;">
    <tr>
      <td align="center">
        <table width="600" cellpadding="0" cellspacing="0" style="background-color: #ffffff; border-radius: 8px; overflow: hidden;">
          <tr>
            <td style="background-color: #2563eb; padding: 40px 30px; text-align: center;">
              <h1 style="margin: 0; color: #ffffff; font-size: 28px;">Thank you for your order!</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 40px 30px;">
              <p style="margin: 0 0 20px; font-size: 16px; color: #333;">Dear {{.FullName}},</p>
              <p style="margin: 0 0 30px; font-size: 16px; color: #666;">
                Your order has been confirmed and will be shipped to the address below.
                We'll notify you when your order has been dispatched.
              </p>
              <p style="margin: 0 0 8px; font-size: 14px; color: #333;"><strong>Order Number:</strong> #{{.OrderID}}</p>
              <p style="margin: 0 0 30px; font-size: 14px; color: #333;"><strong>Order Date:</strong> {{.OrderDate}}</p>
              <h2 style="margin: 0 0 20px; font-size: 20px; color: #333;">Order Items</h2>
              <table width="100%" cellpadding="0" cellspacing="0" style="border: 1px solid #eee; margin-bottom: 30px;">
                <thead>
                  <tr style="background-color: #f9fafb;">
                    <th style="padding: 12px; text-align: left; font-size: 14px; color: #666;">Product</th>
                    <th style="padding: 12px; text-align: center; font-size: 14px; color: #666;">Qty</th>
                    <th style="padding: 12px; text-align: right; font-size: 14px; color: #666;">Price</th>
                    <th style="padding: 12px; text-align: right; font-size: 14px; color: #666;">Total</th>
                  </tr>
                </thead>
                <tbody>
                  {{range .Items}}
                  <tr>
                    <td style="padding: 12px; border-bottom: 1px solid #eee;">{{.Name}}</td>
                    <td style="padding: 12px; border-bottom: 1px solid #eee; text-align: center;">{{.Qty}}</td>
                    <td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">${{.Price}}</td>
                    <td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right; font-weight: bold;">${{.Subtotal}}</td>
                  </tr>
                  {{end}}
                </tbody>
              </table>
              <h2 style="margin: 0 0 20px; font-size: 20px; color: #333;">Shipping Address</h2>
              <p style="margin: 0 0 30px; font-size: 14px; color: #666;">
                {{.Address.FullName}}<br/>
                {{.Address.StreetAddress}}<br/>
                {{.Address.City}}, {{.Address.PostalCode}}<br/>
                {{.Address.Country}}
              </p>
              <h2 style="margin: 0 0 20px; font-size: 20px; color: #333;">Order Summary</h2>
              <table width="100%" cellpadding="0" cellspacing="0" style="margin-bottom: 30px;">
                <tr>
                  <td style="padding: 8px 0; font-size: 14px; color: #666;">Subtotal:</td>
                  <td style="padding: 8px 0; font-size: 14px; color: #666; text-align: right;">${{.ItemsPrice}}</td>
                </tr>
                <tr>
                  <td style="padding: 8px 0; font-size: 14px; color: #666;">Shipping:</td>
                  <td style="padding: 8px 0; font-size: 14px; color: #666; text-align: right;">${{.ShippingPrice}}</td>
                </tr>
                <tr>
                  <td style="padding: 8px 0; font-size: 14px; color: #666;">Tax:</td>
                  <td style="padding: 8px 0; font-size: 14px; color: #666; text-align: right;">${{.TaxPrice}}</td>
                </tr>
                <tr style="border-top: 2px solid #333;">
                  <td style="padding: 12px 0 0; font-size: 18px; color: #333; font-weight: bold;">Total:</td>
                  <td style="padding: 12px 0 0; font-size: 18px; color: #2563eb; font-weight: bold; text-align: right;">${{.TotalPrice}}</td>
                </tr>
              </table>
              <p style="margin: 0; font-size: 14px; color: #666;">
                If you have any questions about your order, please don't hesitate to contact us.
              </p>
            </td>
          </tr>
          <tr>
            <td style="background-color: #f9fafb; padding: 30px; text-align: center; border-top: 1px solid #eee;">
              <p style="margin: 0 0 10px; font-size: 14px; color: #666;">Thank you for shopping with us!</p>
              <p style="margin: 0; font-size: 12px; color: #999;">&copy; {{.Year}} Alshami Store. All rights reserved.</p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`))
