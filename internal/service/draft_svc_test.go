package service

import (
	"context"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"annonce_auto_v1_202608/internal/api/dto"
	"annonce_auto_v1_202608/internal/model"
	"annonce_auto_v1_202608/internal/repository"
)

// ==================== Mock 实现 ====================

type mockProfile struct {
	fetchContactFn func(ctx context.Context, userID int64) (*SavedContact, error)
}

func (m *mockProfile) FetchContact(ctx context.Context, userID int64) (*SavedContact, error) {
	if m.fetchContactFn != nil {
		return m.fetchContactFn(ctx, userID)
	}
	return &SavedContact{
		Phone:      "0612345678",
		Email:      "test@example.com",
		City:       "Lyon",
		PostalCode: "69001",
	}, nil
}

// ==================== 测试辅助函数 ====================

func setupServiceTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	if err := db.AutoMigrate(&model.WizardDraft{}); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}

	return db
}

func newTestDraftService(t *testing.T) (*DraftService, repository.DraftRepository) {
	repo := repository.NewDraftRepository(setupServiceTestDB(t))
	return NewDraftService(repo, &mockProfile{}), repo
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

// ==================== 净化测试 ====================

func TestSanitizeTitle(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Peugeot 208", "Peugeot 208"},
		{"Peugeot 208 <script>", "Peugeot 208 script"},
		{"Prix: 4500€!!", "Prix 4500"},
		{"Citroën C3 à vendre", "Citroën C3 à vendre"}, // 重音字母保留
		{strings.Repeat("a", 80), strings.Repeat("a", 50)},
	}
	for _, c := range cases {
		if got := SanitizeTitle(c.in); got != c.want {
			t.Errorf("SanitizeTitle(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSanitizeTitle_Idempotent(t *testing.T) {
	in := "Peugeot 208 <b>1.2</b> " + strings.Repeat("x", 60)
	once := SanitizeTitle(in)
	twice := SanitizeTitle(once)
	if once != twice {
		t.Errorf("净化不幂等: %q / %q", once, twice)
	}
}

func TestSanitizeDescription(t *testing.T) {
	// 描述允许有限标点
	in := "Très bon état, entretien régulier; prix: 4500€ (négociable) !"
	got := SanitizeDescription(in)
	if got != in {
		t.Errorf("合法描述被改动: %q", got)
	}

	// 非法字符剔除
	if got := SanitizeDescription("bon état <b>#@</b>"); got != "bon état b/b" {
		// < > # @ 被剔除，/ 保留
		t.Errorf("SanitizeDescription = %q", got)
	}

	// 截断到 300
	long := strings.Repeat("d", 400)
	if got := SanitizeDescription(long); len([]rune(got)) != 300 {
		t.Errorf("截断后长度 = %d, want 300", len([]rune(got)))
	}
}

// ==================== 归一化测试 ====================

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"0612345678", "+33612345678"},
		{"06 12 34 56 78", "+33612345678"},
		{"06.12.34.56.78", "+33612345678"},
		{"+33612345678", "+33612345678"}, // 已是国际格式
		{"0012345678", "0012345678"},     // 第二位 0，不符合本地模式
		{"+21612345678", "+21612345678"},
	}
	for _, c := range cases {
		if got := NormalizePhone(c.in); got != c.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

// ==================== 会话生命周期测试 ====================

func TestOpenSession_Prefill(t *testing.T) {
	svc, _ := newTestDraftService(t)

	draft, err := svc.OpenSession(context.Background(), 42)
	if err != nil {
		t.Fatalf("OpenSession 出错: %v", err)
	}
	if draft.ID == 0 {
		t.Error("草稿未持久化")
	}
	if draft.Status != model.DraftStatusEditing || draft.StepCursor != 1 {
		t.Errorf("初始状态 = %s cursor=%d", draft.Status, draft.StepCursor)
	}
	// 档案电话在预填时归一化
	if draft.Contact.Phone != "+33612345678" {
		t.Errorf("预填电话 = %q, want +33612345678", draft.Contact.Phone)
	}
	if draft.City != "Lyon" || draft.PostalCode != "69001" {
		t.Errorf("预填地址 = %q %q", draft.City, draft.PostalCode)
	}
}

func TestOpenSession_ProfileDown(t *testing.T) {
	repo := repository.NewDraftRepository(setupServiceTestDB(t))
	svc := NewDraftService(repo, &mockProfile{
		fetchContactFn: func(ctx context.Context, userID int64) (*SavedContact, error) {
			return nil, context.DeadlineExceeded
		},
	})

	// 档案服务不可用：会话照常打开，联系信息为空
	draft, err := svc.OpenSession(context.Background(), 42)
	if err != nil {
		t.Fatalf("档案故障不应阻塞开会话: %v", err)
	}
	if draft.Contact.Phone != "" {
		t.Errorf("预填电话 = %q, want 空", draft.Contact.Phone)
	}
}

func TestAbandon(t *testing.T) {
	svc, repo := newTestDraftService(t)
	draft, _ := svc.OpenSession(context.Background(), 42)

	if err := svc.Abandon(context.Background(), draft.ID); err != nil {
		t.Fatalf("Abandon 出错: %v", err)
	}

	got, _ := repo.GetByID(context.Background(), draft.ID)
	if got.Status != model.DraftStatusAbandoned {
		t.Errorf("状态 = %s, want abandoned", got.Status)
	}

	// 放弃后拒绝写入
	if err := svc.ApplyUpdate(context.Background(), got, &dto.UpdateDraftRequest{Title: strPtr("x")}); err == nil {
		t.Error("放弃后的草稿不应接受更新")
	}
}

// ==================== 字段写入测试 ====================

func TestApplyUpdate_Sanitizes(t *testing.T) {
	svc, _ := newTestDraftService(t)
	draft, _ := svc.OpenSession(context.Background(), 42)

	err := svc.ApplyUpdate(context.Background(), draft, &dto.UpdateDraftRequest{
		Title: strPtr("Peugeot 208 <script>alert</script>"),
		Phone: strPtr("06 12 34 56 78"),
	})
	if err != nil {
		t.Fatalf("ApplyUpdate 出错: %v", err)
	}
	if strings.ContainsAny(draft.Title, "<>/") {
		t.Errorf("标题未净化: %q", draft.Title)
	}
	if draft.Contact.Phone != "+33612345678" {
		t.Errorf("电话未归一化: %q", draft.Contact.Phone)
	}
}

func TestApplyUpdate_NegativePrice(t *testing.T) {
	svc, _ := newTestDraftService(t)
	draft, _ := svc.OpenSession(context.Background(), 42)

	if err := svc.ApplyUpdate(context.Background(), draft, &dto.UpdateDraftRequest{
		Price: floatPtr(-100),
	}); err == nil {
		t.Error("负价格应被拒绝")
	}
}

func TestApplyUpdate_IntentCascade(t *testing.T) {
	svc, _ := newTestDraftService(t)
	draft, _ := svc.OpenSession(context.Background(), 42)
	ctx := context.Background()

	// 建立完整的类目选择
	if err := svc.ApplyUpdate(ctx, draft, &dto.UpdateDraftRequest{
		Intent:        strPtr(model.IntentOffering),
		CategoryID:    strPtr("vehicule-motorise"),
		SubcategoryID: strPtr("voiture"),
		Condition:     strPtr(model.ConditionGood),
	}); err != nil {
		t.Fatalf("ApplyUpdate 出错: %v", err)
	}
	if err := svc.UpdateSpecificDetail(ctx, draft, "marque", "Peugeot"); err != nil {
		t.Fatalf("UpdateSpecificDetail 出错: %v", err)
	}

	// 意向变更：类目及派生选择全部失效
	if err := svc.ApplyUpdate(ctx, draft, &dto.UpdateDraftRequest{
		Intent: strPtr(model.IntentSeeking),
	}); err != nil {
		t.Fatalf("ApplyUpdate 出错: %v", err)
	}
	if draft.CategoryID != "" || draft.SubcategoryID != "" || draft.Condition != "" {
		t.Error("意向变更未级联清空类目")
	}
	if len(draft.SpecificDetails) != 0 {
		t.Errorf("动态字段残留: %v", draft.SpecificDetails)
	}
}

func TestApplyUpdate_IntentUnchanged(t *testing.T) {
	svc, _ := newTestDraftService(t)
	draft, _ := svc.OpenSession(context.Background(), 42)
	ctx := context.Background()

	svc.ApplyUpdate(ctx, draft, &dto.UpdateDraftRequest{
		Intent:     strPtr(model.IntentOffering),
		CategoryID: strPtr("vehicule-motorise"),
	})

	// 同值重写不触发级联
	svc.ApplyUpdate(ctx, draft, &dto.UpdateDraftRequest{
		Intent: strPtr(model.IntentOffering),
	})
	if draft.CategoryID != "vehicule-motorise" {
		t.Error("同值意向重写不应清空类目")
	}
}

func TestApplyUpdate_CategoryCascade(t *testing.T) {
	svc, _ := newTestDraftService(t)
	draft, _ := svc.OpenSession(context.Background(), 42)
	ctx := context.Background()

	svc.ApplyUpdate(ctx, draft, &dto.UpdateDraftRequest{
		Intent:        strPtr(model.IntentOffering),
		CategoryID:    strPtr("vehicule-motorise"),
		SubcategoryID: strPtr("voiture"),
		SpecificDetails: map[string]interface{}{
			"marque": "Peugeot",
		},
	})

	// 类目变更：二级类目与动态字段清空，旧 schema 绝不能校验新类目
	svc.ApplyUpdate(ctx, draft, &dto.UpdateDraftRequest{
		CategoryID: strPtr("pieces-detachees"),
	})
	if draft.SubcategoryID != "" {
		t.Errorf("二级类目残留: %q", draft.SubcategoryID)
	}
	if len(draft.SpecificDetails) != 0 {
		t.Errorf("动态字段残留: %v", draft.SpecificDetails)
	}
	if draft.Intent != model.IntentOffering {
		t.Error("意向被误清")
	}
}

func TestApplyUpdate_UnknownDetailTolerated(t *testing.T) {
	svc, repo := newTestDraftService(t)
	draft, _ := svc.OpenSession(context.Background(), 42)
	ctx := context.Background()

	if err := svc.UpdateSpecificDetail(ctx, draft, "cle-hors-schema", "valeur"); err != nil {
		t.Fatalf("schema 之外的键应被容忍: %v", err)
	}

	// 落库后还能读回来
	got, _ := repo.GetByID(ctx, draft.ID)
	if got.SpecificDetails["cle-hors-schema"] != "valeur" {
		t.Errorf("多余键未持久化: %v", got.SpecificDetails)
	}
}
