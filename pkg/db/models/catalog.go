package models

// Category ids come from supplier feeds, so they are never generated.
type Category struct {
	ID   uint64 `gorm:"column:id;primaryKey;autoIncrement:false"`
	Name string `gorm:"column:name;size:40;not null;uniqueIndex"`
}

type Product struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Name       string    `gorm:"column:name;size:80;not null;uniqueIndex:idx_products_name_category"`
	CategoryID uint64    `gorm:"column:category_id;not null;uniqueIndex:idx_products_name_category"`
	Category   *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
}

// ProductInfo is one shop's priced listing of a product. Its id is taken
// verbatim from the supplier feed.
type ProductInfo struct {
	ID         uint64             `gorm:"column:id;primaryKey;autoIncrement:false"`
	ProductID  uint64             `gorm:"column:product_id;not null;uniqueIndex:idx_product_infos_product_shop"`
	ShopID     uint64             `gorm:"column:shop_id;not null;uniqueIndex:idx_product_infos_product_shop;index"`
	Quantity   int64              `gorm:"column:quantity;not null;check:chk_product_infos_quantity,quantity >= 0"`
	Price      int64              `gorm:"column:price;not null;check:chk_product_infos_price,price >= 0"`
	PriceRRC   int64              `gorm:"column:price_rrc;not null;check:chk_product_infos_price_rrc,price_rrc >= 0"`
	Product    *Product           `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Shop       *Shop              `gorm:"foreignKey:ShopID;constraint:OnDelete:CASCADE"`
	Parameters []ProductParameter `gorm:"foreignKey:ProductInfoID;constraint:OnDelete:CASCADE"`
}

type Parameter struct {
	ID   uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	Name string `gorm:"column:name;size:40;not null;uniqueIndex"`
}

type ProductParameter struct {
	ID            uint64     `gorm:"column:id;primaryKey;autoIncrement"`
	ProductInfoID uint64     `gorm:"column:product_info_id;not null;uniqueIndex:idx_product_parameters_info_parameter"`
	ParameterID   uint64     `gorm:"column:parameter_id;not null;uniqueIndex:idx_product_parameters_info_parameter"`
	Value         string     `gorm:"column:value;size:100;not null"`
	Parameter     *Parameter `gorm:"foreignKey:ParameterID;constraint:OnDelete:CASCADE"`
}
