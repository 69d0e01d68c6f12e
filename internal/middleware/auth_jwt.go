package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"printshop/internal/config"
	"printshop/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey   = "user_id"   // int64
	CtxUserRoleKey = "user_role" // model.Role
)

var errInvalidAccessToken = errors.New("invalid access token")

// アクセストークンから取り出す中身
type accessClaims struct {
	UserID int64
	Role   model.Role
}

// Authorization: Bearer <jwt> を検証し、user_idとroleをcontextに入れる。
// 失敗は理由に関わらず401。
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	secret := []byte(cfg.JWTSecret)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			claims, err := parseAccessToken(raw, secret)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			c.Set(CtxUserIDKey, claims.UserID)
			c.Set(CtxUserRoleKey, claims.Role)
			return next(c)
		}
	}
}

// contextのroleを読む（AuthJWTの後だけ）
func RoleFromContext(c echo.Context) (model.Role, bool) {
	role, ok := c.Get(CtxUserRoleKey).(model.Role)
	return role, ok
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// HS256だけ受ける。expはParseが見る。
func parseAccessToken(raw string, secret []byte) (accessClaims, error) {
	token, err := jwt.Parse(raw, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return accessClaims{}, errInvalidAccessToken
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return accessClaims{}, errInvalidAccessToken
	}

	userID, err := subjectID(mc["sub"])
	if err != nil || userID <= 0 {
		return accessClaims{}, errInvalidAccessToken
	}

	roleStr, _ := mc["role"].(string)
	role := model.Role(roleStr)
	if !role.Valid() {
		return accessClaims{}, errInvalidAccessToken
	}

	return accessClaims{UserID: userID, Role: role}, nil
}

// subは数値でも文字列でもよい
func subjectID(v interface{}) (int64, error) {
	switch t := v.(type) {
	case float64:
		return int64(t), nil
	case string:
		return strconv.ParseInt(t, 10, 64)
	default:
		return 0, errInvalidAccessToken
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
