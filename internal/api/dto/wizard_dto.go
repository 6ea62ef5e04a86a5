package dto

// ==================== 请求 DTO ====================

// OpenSessionRequest 打开向导会话
type OpenSessionRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
}

// UpdateDraftRequest 草稿字段补丁（指针字段：只更新出现的字段）
type UpdateDraftRequest struct {
	Intent        *string  `json:"intent,omitempty"`
	CategoryID    *string  `json:"category_id,omitempty"`
	SubcategoryID *string  `json:"subcategory_id,omitempty"`
	Condition     *string  `json:"condition,omitempty"`
	Title         *string  `json:"title,omitempty"`
	Description   *string  `json:"description,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	City          *string  `json:"city,omitempty"`
	PostalCode    *string  `json:"postal_code,omitempty"`

	Phone                 *string `json:"phone,omitempty"`
	Email                 *string `json:"email,omitempty"`
	Whatsapp              *string `json:"whatsapp,omitempty"`
	ShowPhone             *bool   `json:"show_phone,omitempty"`
	ShowWhatsapp          *bool   `json:"show_whatsapp,omitempty"`
	ShowInternalMessaging *bool   `json:"show_internal_messaging,omitempty"`

	SpecificDetails map[string]interface{} `json:"specific_details,omitempty"`
}

// ==================== 响应 DTO ====================

// FieldVO 动态字段视图对象
type FieldVO struct {
	ID          string   `json:"id"`
	Kind        string   `json:"kind"`
	Required    bool     `json:"required"`
	Min         float64  `json:"min,omitempty"`
	Max         float64  `json:"max,omitempty"`
	HasBounds   bool     `json:"has_bounds,omitempty"`
	Options     []string `json:"options,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
}

// StepStateVO 导航状态
type StepStateVO struct {
	Steps      []string `json:"steps"`
	Cursor     int      `json:"cursor"`
	Current    string   `json:"current"`
	CanAdvance bool     `json:"can_advance"`
}

// PhotoVO 照片视图对象（原始字节不外发）
type PhotoVO struct {
	Index  int    `json:"index"`
	URL    string `json:"url,omitempty"`
	Hosted bool   `json:"hosted"`
	Masked bool   `json:"masked"`
}

// ContactVO 联系方式视图对象
type ContactVO struct {
	Phone                 string `json:"phone"`
	Email                 string `json:"email"`
	Whatsapp              string `json:"whatsapp"`
	ShowPhone             bool   `json:"show_phone"`
	ShowWhatsapp          bool   `json:"show_whatsapp"`
	ShowInternalMessaging bool   `json:"show_internal_messaging"`
}

// DraftVO 草稿视图对象
type DraftVO struct {
	ID              int64                  `json:"id"`
	UserID          int64                  `json:"user_id"`
	Status          string                 `json:"status"`
	Intent          string                 `json:"intent"`
	CategoryID      string                 `json:"category_id"`
	SubcategoryID   string                 `json:"subcategory_id"`
	Condition       string                 `json:"condition,omitempty"`
	Title           string                 `json:"title"`
	Description     string                 `json:"description"`
	SpecificDetails map[string]interface{} `json:"specific_details"`
	Photos          []PhotoVO              `json:"photos"`
	Price           float64                `json:"price"`
	City            string                 `json:"city"`
	PostalCode      string                 `json:"postal_code"`
	Contact         ContactVO              `json:"contact"`
	Fields          []FieldVO              `json:"fields"`
	StepState       StepStateVO            `json:"step_state"`
	PublishError    string                 `json:"publish_error,omitempty"`
}

// ==================== 发布 ====================

const (
	PublishStatusPublished   = "published"
	PublishStatusQuotaDenied = "quota_denied"
)

// BoostOfferVO 发布成功后的置顶推销
type BoostOfferVO struct {
	ListingID int64   `json:"listing_id"`
	Label     string  `json:"label"`
	Price     float64 `json:"price"`
	Currency  string  `json:"currency"`
}

// PublishResultVO 发布结果
type PublishResultVO struct {
	Status       string        `json:"status"`
	Message      string        `json:"message,omitempty"`
	ListingID    int64         `json:"listing_id,omitempty"`
	ListingTitle string        `json:"listing_title,omitempty"`
	Boost        *BoostOfferVO `json:"boost,omitempty"`
}
