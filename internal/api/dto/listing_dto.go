package dto

// ==================== 发布载荷 ====================

// ListingPayload 公告创建端点期望的规范载荷
// 类目动态字段被摊平为具名字段，剩余键进入 ExtraDetails
type ListingPayload struct {
	UserID        int64  `json:"user_id"`
	Intent        string `json:"intent"`
	CategoryID    string `json:"category_id"`
	SubcategoryID string `json:"subcategory_id"`
	Condition     string `json:"condition,omitempty"`

	Title       string `json:"title"`
	Description string `json:"description"`

	Brand   string `json:"brand"`
	Model   string `json:"model"`
	Year    int    `json:"year"`
	Mileage int    `json:"mileage,omitempty"`
	Fuel    string `json:"fuel,omitempty"`
	Gearbox string `json:"gearbox,omitempty"`
	Seats   int    `json:"seats,omitempty"`

	ExtraDetails map[string]interface{} `json:"extra_details,omitempty"`

	Price      float64 `json:"price"`
	City       string  `json:"city"`
	PostalCode string  `json:"postal_code"`

	Phone                 string `json:"phone"`
	Email                 string `json:"email,omitempty"`
	Whatsapp              string `json:"whatsapp,omitempty"`
	ShowPhone             bool   `json:"show_phone"`
	ShowWhatsapp          bool   `json:"show_whatsapp"`
	ShowInternalMessaging bool   `json:"show_internal_messaging"`

	Photos []string `json:"photos"`
}

// ListingCreated 公告创建成功响应
type ListingCreated struct {
	ListingID int64  `json:"listing_id"`
	Title     string `json:"title"`
}
