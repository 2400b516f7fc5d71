package catalog

import "github.com/angelmondragon/shopdesk-backend/pkg/db/models"

type CategoryDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

type ShopDTO struct {
	ID    uint64  `json:"id"`
	Name  string  `json:"name"`
	URL   *string `json:"url,omitempty"`
	State bool    `json:"state"`
}

type ProductDTO struct {
	ID       uint64       `json:"id"`
	Name     string       `json:"name"`
	Category *CategoryDTO `json:"category,omitempty"`
}

type ParameterDTO struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ListingDTO is a shop's priced offer of a product. Orders embed it for
// every basket line.
type ListingDTO struct {
	ID         uint64         `json:"id"`
	Product    ProductDTO     `json:"product"`
	Shop       *ShopDTO       `json:"shop,omitempty"`
	Quantity   int64          `json:"quantity"`
	Price      int64          `json:"price"`
	PriceRRC   int64          `json:"price_rrc"`
	Parameters []ParameterDTO `json:"parameters"`
}

type ImportResult struct {
	ShopID                uint64 `json:"shop_id"`
	Categories            int    `json:"categories"`
	Goods                 int    `json:"goods"`
	Parameters            int    `json:"parameters"`
	CategoryNameConflicts int    `json:"category_name_conflicts"`

	ParameterNames []string `json:"parameter_names"`
}

func ShopFromModel(shop models.Shop) ShopDTO {
	return ShopDTO{ID: shop.ID, Name: shop.Name, URL: shop.URL, State: shop.State}
}

// ListingFromModel expects Product.Category, Shop and Parameters.Parameter
// to be preloaded; missing associations are left empty.
func ListingFromModel(info models.ProductInfo) ListingDTO {
	dto := ListingDTO{
		ID:         info.ID,
		Product:    ProductDTO{ID: info.ProductID},
		Quantity:   info.Quantity,
		Price:      info.Price,
		PriceRRC:   info.PriceRRC,
		Parameters: make([]ParameterDTO, 0, len(info.Parameters)),
	}
	if info.Product != nil {
		dto.Product.Name = info.Product.Name
		if info.Product.Category != nil {
			dto.Product.Category = &CategoryDTO{ID: info.Product.Category.ID, Name: info.Product.Category.Name}
		}
	}
	if info.Shop != nil {
		shop := ShopFromModel(*info.Shop)
		dto.Shop = &shop
	}
	for _, param := range info.Parameters {
		name := ""
		if param.Parameter != nil {
			name = param.Parameter.Name
		}
		dto.Parameters = append(dto.Parameters, ParameterDTO{Name: name, Value: param.Value})
	}
	return dto
}
