package main

import (
	"strconv"
	"strings"
	"time"

	"shop/internal/config"
	"shop/internal/domain/model"
	"shop/internal/handler"
	"shop/internal/infra/db"
	infraRepo "shop/internal/infra/repository"
	"shop/internal/metrics"
	"shop/internal/notification"
	"shop/internal/server"
	"shop/internal/usecase"
	auth "shop/internal/usecase/auth_usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type uuidCodeGenerator struct{}

// "CP-"+UUID先頭8桁。衝突はDBのユニーク制約で拾う
func (g *uuidCodeGenerator) NewCode() string {
	return "CP-" + strings.ToUpper(uuid.NewString()[:8])
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func newJWTIssuer(cfg config.Config) *jwtIssuer {
	//アクセストークン
	return &jwtIssuer{
		secret:    []byte(cfg.JWTSecret),
		accessTTL: 15 * time.Minute,
	}
}

func (i *jwtIssuer) Issue(userID int64, role model.Role, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(userID, 10),
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// 初期データ。空のテーブルにだけ入れる
func seedDefaults(gormDB *gorm.DB) error {
	var tierCount int64
	if err := gormDB.Model(&model.RankingTier{}).Count(&tierCount).Error; err != nil {
		return err
	}
	if tierCount == 0 {
		tiers := []model.RankingTier{
			{Name: "BRONZE", MinSpending: 0, MaxSpending: 99_999, DiscountPercent: 0, Benefits: "通常会員"},
			{Name: "SILVER", MinSpending: 100_000, MaxSpending: 499_999, DiscountPercent: 3, Benefits: "3%割引"},
			{Name: "GOLD", MinSpending: 500_000, MaxSpending: 1_999_999, DiscountPercent: 5, Benefits: "5%割引"},
			{Name: "PLATINUM", MinSpending: 2_000_000, MaxSpending: 1<<62 - 1, DiscountPercent: 10, Benefits: "10%割引・限定クーポン"},
		}
		if err := gormDB.Create(&tiers).Error; err != nil {
			return err
		}
	}

	var pmCount int64
	if err := gormDB.Model(&model.PaymentMethod{}).Count(&pmCount).Error; err != nil {
		return err
	}
	if pmCount == 0 {
		methods := []model.PaymentMethod{
			{Code: "CREDIT_CARD", Name: "クレジットカード", IsActive: true},
			{Code: "BANK_TRANSFER", Name: "銀行振込", IsActive: true},
			{Code: "COD", Name: "代金引換", IsActive: true},
		}
		if err := gormDB.Create(&methods).Error; err != nil {
			return err
		}
	}
	return nil
}

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("config load failed")
	}
	if cfg.GoEnv == "dev" {
		log.SetLevel(logrus.DebugLevel)
	}

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.WithError(err).Fatal("db connect failed")
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.PaymentMethod{},
		&model.Voucher{},
		&model.VoucherUsage{},
		&model.RankingTier{},
		&model.CustomerRanking{},
		&model.Order{},
		&model.OrderItem{},
		&model.OrderInfo{},
		&model.Notification{},
		&model.AuditLog{},
		&model.InventoryAdjustment{},
	); err != nil {
		log.WithError(err).Fatal("migrate failed")
	}
	if err := seedDefaults(gormDB); err != nil {
		log.WithError(err).Fatal("seed failed")
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	inventoryRepo := infraRepo.NewInventoryGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	tierRepo := infraRepo.NewRankingTierGormRepository(gormDB)
	customerRankingRepo := infraRepo.NewCustomerRankingGormRepository(gormDB)
	voucherRepo := infraRepo.NewVoucherGormRepository(gormDB)
	voucherUsageRepo := infraRepo.NewVoucherUsageGormRepository(gormDB)
	notificationRepo := infraRepo.NewNotificationGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//usecaseに渡す部品
	clock := &realClock{}
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()
	issuer := newJWTIssuer(cfg)
	sink := notification.NewStoreSink(notificationRepo)
	checkoutMetrics := metrics.NewCheckoutMetrics(prometheus.DefaultRegisterer)

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(userRepo, customerRankingRepo, tierRepo, hasher, clock)
	loginUC := auth.NewLoginUsecase(userRepo, verifier, issuer, clock)
	productUC := usecase.NewProductUsecase(productRepo, inventoryRepo, auditRepo)
	checkoutUC := usecase.NewCheckoutUsecase(txManager, sink, log, checkoutMetrics)
	orderUC := usecase.NewOrderUsecase(txManager)
	rankingUC := usecase.NewRankingUsecase(txManager, sink, log)
	adminOrderUC := usecase.NewAdminOrderUsecase(txManager, auditRepo, sink, log)
	adminVoucherUC := usecase.NewAdminVoucherUsecase(voucherRepo, voucherUsageRepo, &uuidCodeGenerator{})
	notificationUC := usecase.NewNotificationUsecase(notificationRepo)
	auditUC := usecase.NewAuditLogUsecase(auditRepo)

	//Handler生成
	handlers := server.Handlers{
		Auth:         handler.NewAuthHandler(registerUC, loginUC),
		Product:      handler.NewProductHandler(productUC),
		Order:        handler.NewOrderHandler(checkoutUC, orderUC),
		Ranking:      handler.NewRankingHandler(rankingUC),
		Notification: handler.NewNotificationHandler(notificationUC),
		AdminProduct: handler.NewAdminProductHandler(productUC),
		AdminOrder:   handler.NewAdminOrderHandler(adminOrderUC),
		AdminVoucher: handler.NewAdminVoucherHandler(adminVoucherUC),
		AdminAudit:   handler.NewAdminAuditHandler(auditUC),
	}

	//Server起動
	log.WithField("port", cfg.Port).Info("starting api server")
	if err := server.Start(cfg, handlers); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
