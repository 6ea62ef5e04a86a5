package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"annonce_auto_v1_202608/internal/api/dto"
	"annonce_auto_v1_202608/internal/model"
	"annonce_auto_v1_202608/internal/repository"
)

// ==================== 外部服务依赖 ====================

// QuotaPort 配额服务接口（实现见 quota_svc.go）
type QuotaPort interface {
	Check(ctx context.Context, userID int64) (*QuotaDecision, error)
}

// ListingPort 公告创建端点接口（实现见 listing_svc.go）
type ListingPort interface {
	CreateListing(ctx context.Context, payload *dto.ListingPayload) (*dto.ListingCreated, error)
}

// ==================== 回退默认值 ====================
// 未填写的品牌/车型在提交时回退到哨兵值，年份回退到当前年份。
// 这是有意保留的产品行为，不是待修的缺陷；测试依赖这些哨兵值

const unspecifiedValue = "Non renseigné"

// ==================== 服务实现 ====================

// PublishService 发布编排：配额前置检查 -> 组装载荷 -> 创建公告 -> 置顶推销
type PublishService struct {
	repo    repository.DraftRepository
	quota   QuotaPort
	listing ListingPort
	now     func() time.Time

	// 同一草稿禁止并发发布
	inflight sync.Map
}

func NewPublishService(repo repository.DraftRepository, quota QuotaPort, listing ListingPort) *PublishService {
	return &PublishService{
		repo:    repo,
		quota:   quota,
		listing: listing,
		now:     time.Now,
	}
}

// ==================== 发布 ====================

// Publish 发布草稿
// 配额拒绝按预期业务状态返回（消息原样透传，不发创建请求）；
// 创建失败时草稿原封不动，用户可以直接重试
func (s *PublishService) Publish(ctx context.Context, d *model.WizardDraft) (*dto.PublishResultVO, error) {
	if !d.Editable() {
		return nil, fmt.Errorf("cette annonce n'est plus modifiable")
	}

	if _, loaded := s.inflight.LoadOrStore(d.ID, struct{}{}); loaded {
		return nil, fmt.Errorf("publication déjà en cours")
	}
	defer s.inflight.Delete(d.ID)

	// 1. 配额前置检查
	decision, err := s.quota.Check(ctx, d.UserID)
	if err != nil {
		return nil, fmt.Errorf("vérification du quota impossible: %v", err)
	}
	if !decision.Allowed {
		return &dto.PublishResultVO{
			Status:  dto.PublishStatusQuotaDenied,
			Message: decision.Message,
		}, nil
	}

	// 2. 组装规范载荷
	payload := s.BuildPayload(d)

	// 3. 创建公告
	created, err := s.listing.CreateListing(ctx, payload)
	if err != nil {
		// 草稿保持不变，只记录失败信息供重试提示
		if uerr := s.repo.UpdateFields(ctx, d.ID, map[string]interface{}{
			"publish_error": err.Error(),
		}); uerr != nil {
			log.Printf("[Publish] 记录失败信息出错 draft=%d: %v", d.ID, uerr)
		}
		return nil, fmt.Errorf("la publication a échoué, vous pouvez réessayer: %v", err)
	}

	// 4. 会话收尾
	d.Status = model.DraftStatusPublished
	d.ListingID = created.ListingID
	d.ListingTitle = created.Title
	d.PublishError = ""
	if err := s.repo.Save(ctx, d); err != nil {
		log.Printf("[Publish] 发布成功但会话落库失败 draft=%d: %v", d.ID, err)
	}

	return &dto.PublishResultVO{
		Status:       dto.PublishStatusPublished,
		ListingID:    created.ListingID,
		ListingTitle: created.Title,
		Boost: &dto.BoostOfferVO{
			ListingID: created.ListingID,
			Label:     "Remonter votre annonce en tête de liste",
			Price:     2.99,
			Currency:  "EUR",
		},
	}, nil
}

// ==================== 载荷组装 ====================

// BuildPayload 把草稿摊平成公告创建端点的规范载荷
func (s *PublishService) BuildPayload(d *model.WizardDraft) *dto.ListingPayload {
	payload := &dto.ListingPayload{
		UserID:        d.UserID,
		Intent:        d.Intent,
		CategoryID:    d.CategoryID,
		SubcategoryID: d.SubcategoryID,
		Condition:     d.Condition,
		Title:         d.Title,
		Description:   d.Description,
		Brand:         unspecifiedValue,
		Model:         unspecifiedValue,
		Year:          s.now().Year(),
		Price:         d.Price,
		City:          d.City,
		PostalCode:    d.PostalCode,

		Phone:                 d.Contact.Phone,
		Email:                 d.Contact.Email,
		Whatsapp:              d.Contact.Whatsapp,
		ShowPhone:             d.Contact.ShowPhone,
		ShowWhatsapp:          d.Contact.ShowWhatsapp,
		ShowInternalMessaging: d.Contact.ShowInternalMessaging,

		Photos: s.normalizePhotos(d),
	}

	extra := make(map[string]interface{})
	for key, value := range d.SpecificDetails {
		switch key {
		case "marque":
			if v := asString(value); v != "" {
				payload.Brand = v
			}
		case "modele":
			if v := asString(value); v != "" {
				payload.Model = v
			}
		case "annee":
			if v := asInt(value); v != 0 {
				payload.Year = v
			}
		case "kilometrage":
			payload.Mileage = asInt(value)
		case "carburant":
			payload.Fuel = asString(value)
		case "boite-vitesse":
			payload.Gearbox = asString(value)
		case "places":
			payload.Seats = asInt(value)
		default:
			extra[key] = value
		}
	}
	if len(extra) > 0 {
		payload.ExtraDetails = extra
	}

	return payload
}

// normalizePhotos 照片统一转为引用列表
// 从未上传成功的原始照片降级为临时本地引用（可接受的降级路径，不推荐）
func (s *PublishService) normalizePhotos(d *model.WizardDraft) []string {
	locators := make([]string, 0, len(d.Photos))
	for i := range d.Photos {
		if d.Photos[i].Hosted() {
			locators = append(locators, d.Photos[i].URL)
			continue
		}
		if len(d.Photos[i].Data) > 0 {
			locators = append(locators, fmt.Sprintf("local://annonce/%d/photo/%d", d.ID, i))
		}
	}
	return locators
}

// ==================== 值转换 ====================

func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func asInt(v interface{}) int {
	switch tv := v.(type) {
	case int:
		return tv
	case int64:
		return int(tv)
	case float64:
		return int(tv)
	case string:
		n, _ := strconv.Atoi(tv)
		return n
	}
	return 0
}
