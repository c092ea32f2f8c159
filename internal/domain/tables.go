package domain

var Tables = []interface{}{
	// System
	&SysConfig{},
	// Accounts
	&User{},
	&Contact{},
	// Catalog
	&Shop{},
	&Category{},
	&Product{},
	// Trade
	&Basket{},
	&Order{},
}
