package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"printshop/internal/domain/model"
	"printshop/internal/repository"
	"printshop/internal/usecase"
)

// handlerからusecaseに渡す入力
type LoginInput struct {
	Username string
	Password string
}

type JwtAccessToken struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"`
}

// handlerがJSONにして返す
type LoginOutput struct {
	User  model.User     `json:"user"`
	Token JwtAccessToken `json:"token"`
}

// usernameまたはパスワードが違う
var ErrInvalidCredentials = errors.New("invalid credentials")

// JWTを発行する約束
type AccessTokenIssuer interface {
	Issue(userID int64, role model.Role, now time.Time) (token string, expiresAt time.Time, err error)
}

// 入力パスワードと保存したハッシュを比べる約束
type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

type LoginUsecase struct {
	userRepo  repository.UserRepository
	verifier  PasswordVerifier
	issuer    AccessTokenIssuer
	clock     Clock
	validator RegisterValidator
}

func NewLoginUsecase(
	userRepo repository.UserRepository,
	verifier PasswordVerifier,
	issuer AccessTokenIssuer,
	clock Clock,
	validator RegisterValidator,
) *LoginUsecase {
	return &LoginUsecase{
		userRepo:  userRepo,
		verifier:  verifier,
		issuer:    issuer,
		clock:     clock,
		validator: validator,
	}
}

// ログイン処理を実行する
func (u *LoginUsecase) Execute(ctx context.Context, in LoginInput) (LoginOutput, error) {
	var out LoginOutput

	in.Username = strings.TrimSpace(in.Username)
	if fields := u.validator.ValidateLogin(in); len(fields) > 0 {
		return out, usecase.NewValidationError(fields)
	}

	//usernameでユーザー取得
	user, err := u.userRepo.FindByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return out, ErrInvalidCredentials
		}
		return out, err
	}

	//パスワード照合
	if ok := u.verifier.Verify(in.Password, user.PasswordHash); !ok {
		return out, ErrInvalidCredentials
	}

	//AccessToken発行
	now := u.clock.Now()
	accessToken, accessExp, err := u.issuer.Issue(user.ID, user.Role, now)
	if err != nil {
		return out, err
	}

	out.User = *user
	out.Token = JwtAccessToken{
		AccessToken: accessToken,
		ExpiresIn:   int(accessExp.Sub(now).Seconds()),
	}
	return out, nil
}

// GET /api/user
type GetMeUsecase struct {
	userRepo repository.UserRepository
}

func NewGetMeUsecase(userRepo repository.UserRepository) *GetMeUsecase {
	return &GetMeUsecase{userRepo: userRepo}
}

func (u *GetMeUsecase) Execute(ctx context.Context, userID int64) (model.User, error) {
	if userID <= 0 {
		return model.User{}, usecase.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	user, err := u.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return model.User{}, usecase.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err != nil {
		return model.User{}, usecase.NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return *user, nil
}
