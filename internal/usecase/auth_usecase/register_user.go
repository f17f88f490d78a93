package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"shop/internal/domain/model"
	"shop/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// 会員登録の入力
type RegisterUserInput struct {
	Email    string
	Password string
}

// 会員登録の出力
type RegisterUserOutput struct {
	User model.User
}

var (
	// 入力が不正
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrPasswordTooShort   = errors.New("password too short")

	// 競合
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// 平文パスワードからハッシュへ。
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// bcryptハッシュ化
type BcryptPasswordHasher struct {
	cost int
}

func NewBcryptPasswordHasher(cost int) *BcryptPasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptPasswordHasher{cost: cost}
}

func (h *BcryptPasswordHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// RegisterUserUsecaseは会員登録の処理。
// 登録と同時に最下位ティアのランクレコードも作る。
type RegisterUserUsecase struct {
	userRepo    repository.UserRepository
	rankingRepo repository.CustomerRankingRepository
	tierRepo    repository.RankingTierRepository
	hasher      PasswordHasher
	clock       Clock
}

// DI
func NewRegisterUserUsecase(
	userRepo repository.UserRepository,
	rankingRepo repository.CustomerRankingRepository,
	tierRepo repository.RankingTierRepository,
	hasher PasswordHasher,
	clock Clock,
) *RegisterUserUsecase {
	return &RegisterUserUsecase{
		userRepo:    userRepo,
		rankingRepo: rankingRepo,
		tierRepo:    tierRepo,
		hasher:      hasher,
		clock:       clock,
	}
}

// 会員登録実行
func (u *RegisterUserUsecase) Execute(ctx context.Context, in RegisterUserInput) (RegisterUserOutput, error) {
	var out RegisterUserOutput

	// emailの形式チェック
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return out, ErrInvalidEmailFormat
	}

	// password の長さチェック（最小12文字）
	if len(in.Password) < 12 {
		return out, ErrPasswordTooShort
	}

	// email重複チェック
	existing, err := u.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return out, err
	}
	if existing != nil {
		return out, ErrEmailAlreadyExists
	}

	hash, err := u.hasher.Hash(in.Password)
	if err != nil {
		return out, err
	}

	now := u.clock.Now()
	user := model.User{
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.userRepo.Create(ctx, &user); err != nil {
		return out, err
	}

	// ランクは最下位ティアで開始
	tiers, err := u.tierRepo.ListOrdered(ctx)
	if err != nil {
		return out, err
	}
	if len(tiers) > 0 {
		if _, err := u.rankingRepo.Create(ctx, model.CustomerRanking{
			UserID:        user.ID,
			RankingTierID: tiers[0].ID,
		}); err != nil {
			return out, err
		}
	}

	out.User = user
	return out, nil
}
