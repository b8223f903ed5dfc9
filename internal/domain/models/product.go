package models

// Product представляет товар каталога (витрина у нас одного товара,
// но структура не мешает добавить другие)
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Ingredients []string  `json:"ingredients"`
	Benefits    []string  `json:"benefits"`
	Variants    []Variant `json:"variants"`
}

// Variant — вариант товара (объем банки), цена в центах
type Variant struct {
	ID          int64  `json:"id"`
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name,omitempty"` // заполняется через JOIN с таблицей products
	Size        string `json:"size"`                   // например, "4 oz"
	Price       int    `json:"price"`                  // цена за единицу в центах
}
