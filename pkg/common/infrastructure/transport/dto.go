package transport

import (
	"time"

	cartmodel "github.com/entoun8/alshami-store/pkg/cart/domain/model"
	catalogmodel "github.com/entoun8/alshami-store/pkg/catalog/domain/model"
	identitymodel "github.com/entoun8/alshami-store/pkg/identity/domain/model"
	ordermodel "github.com/entoun8/alshami-store/pkg/order/domain/model"
)

type productView struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Brand       string `json:"brand"`
	Description string `json:"description"`
	Stock       int    `json:"stock"`
	Price       string `json:"price"`
	Image       string `json:"image"`
}

func toProductView(p *catalogmodel.Product) productView {
	return productView{
		ID:          p.ID.String(),
		Slug:        p.Slug,
		Name:        p.Name,
		Category:    p.Category,
		Brand:       p.Brand,
		Description: p.Description,
		Stock:       p.Stock,
		Price:       p.Price,
		Image:       p.Image,
	}
}

type cartItemView struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Image     string `json:"image"`
	Price     string `json:"price"`
	Qty       int    `json:"qty"`
}

type cartView struct {
	Items         []cartItemView `json:"items"`
	ItemsPrice    string         `json:"itemsPrice"`
	ShippingPrice string         `json:"shippingPrice"`
	TaxPrice      string         `json:"taxPrice"`
	TotalPrice    string         `json:"totalPrice"`
}

func toCartView(cart *cartmodel.Cart) cartView {
	view := cartView{
		Items:         []cartItemView{},
		ItemsPrice:    cart.Totals.Items,
		ShippingPrice: cart.Totals.Shipping,
		TaxPrice:      cart.Totals.Tax,
		TotalPrice:    cart.Totals.Grand,
	}
	for _, item := range cart.Items {
		view.Items = append(view.Items, cartItemView{
			ProductID: item.ProductID.String(),
			Name:      item.Name,
			Slug:      item.Slug,
			Image:     item.Image,
			Price:     item.Price,
			Qty:       item.Qty,
		})
	}
	return view
}

// emptyCartView is what an owner without a cart sees.
func emptyCartView() cartView {
	return cartView{
		Items:         []cartItemView{},
		ItemsPrice:    "0.00",
		ShippingPrice: "0.00",
		TaxPrice:      "0.00",
		TotalPrice:    "0.00",
	}
}

type orderItemView struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Image     string `json:"image"`
	Price     string `json:"price"`
	Qty       int    `json:"qty"`
}

type orderView struct {
	ID              string                         `json:"id"`
	ShippingAddress identitymodel.ShippingAddress  `json:"shippingAddress"`
	PaymentMethod   string                         `json:"paymentMethod"`
	Items           []orderItemView                `json:"items"`
	ItemsPrice      string                         `json:"itemsPrice"`
	ShippingPrice   string                         `json:"shippingPrice"`
	TaxPrice        string                         `json:"taxPrice"`
	TotalPrice      string                         `json:"totalPrice"`
	IsPaid          bool                           `json:"isPaid"`
	PaidAt          *time.Time                     `json:"paidAt,omitempty"`
	CreatedAt       time.Time                      `json:"createdAt"`
	ClientSecret    string                         `json:"clientSecret,omitempty"`
}

func toOrderView(order *ordermodel.Order) orderView {
	view := orderView{
		ID:              order.ID.String(),
		ShippingAddress: order.ShippingAddress,
		PaymentMethod:   order.PaymentMethod,
		Items:           []orderItemView{},
		ItemsPrice:      order.ItemsPrice,
		ShippingPrice:   order.ShippingPrice,
		TaxPrice:        order.TaxPrice,
		TotalPrice:      order.TotalPrice,
		IsPaid:          order.IsPaid,
		PaidAt:          order.PaidAt,
		CreatedAt:       order.CreatedAt,
	}
	for _, item := range order.Items {
		view.Items = append(view.Items, orderItemView{
			ProductID: item.ProductID.String(),
			Name:      item.Name,
			Slug:      item.Slug,
			Image:     item.Image,
			Price:     item.Price,
			Qty:       item.Qty,
		})
	}
	return view
}

type orderSummaryView struct {
	ID         string     `json:"id"`
	CreatedAt  time.Time  `json:"createdAt"`
	IsPaid     bool       `json:"isPaid"`
	PaidAt     *time.Time `json:"paidAt,omitempty"`
	TotalPrice string     `json:"totalPrice"`
	ItemCount  int        `json:"itemCount"`
}

func toOrderSummaryViews(summaries []ordermodel.Summary) []orderSummaryView {
	views := make([]orderSummaryView, 0, len(summaries))
	for _, s := range summaries {
		views = append(views, orderSummaryView{
			ID:         s.ID.String(),
			CreatedAt:  s.CreatedAt,
			IsPaid:     s.IsPaid,
			PaidAt:     s.PaidAt,
			TotalPrice: s.TotalPrice,
			ItemCount:  s.ItemCount,
		})
	}
	return views
}

type profileView struct {
	ID            string                         `json:"id"`
	Email         string                         `json:"email"`
	FullName      string                         `json:"fullName"`
	Image         string                         `json:"image,omitempty"`
	Role          string                         `json:"role"`
	Address       *identitymodel.ShippingAddress `json:"address,omitempty"`
	PaymentMethod string                         `json:"paymentMethod,omitempty"`
}

func toProfileView(profile *identitymodel.UserProfile) profileView {
	return profileView{
		ID:            profile.ID.String(),
		Email:         profile.Email,
		FullName:      profile.FullName,
		Image:         profile.Image,
		Role:          string(profile.Role),
		Address:       profile.Address,
		PaymentMethod: profile.PaymentMethod,
	}
}
