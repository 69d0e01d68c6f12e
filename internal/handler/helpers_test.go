package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"printshop/internal/config"
	"printshop/internal/domain/model"
	"printshop/internal/handler"
	"printshop/internal/infra/db"
	"printshop/internal/infra/db/dbtest"
	infraRepo "printshop/internal/infra/repository"
	"printshop/internal/infra/token"
	"printshop/internal/logger"
	"printshop/internal/notify"
	"printshop/internal/repository"
	"printshop/internal/server"
	"printshop/internal/usecase"
	auth "printshop/internal/usecase/auth_usecase"
	"printshop/internal/validator"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

type testApp struct {
	e             *echo.Echo
	db            *gorm.DB
	users         repository.UserRepository
	notifications *notify.Pipeline
	issuer        *token.JWTIssuer
}

// SQLite上に本物の配線で組み立てる
func newTestApp(t *testing.T, imageGen usecase.ImageGenerator) *testApp {
	t.Helper()

	gdb := dbtest.Open(t)
	log := logger.NewNop()
	cfg := config.Config{JWTSecret: testSecret, AccessTokenTTL: time.Hour}

	userRepo := infraRepo.NewUserGormRepository(gdb)
	productRepo := infraRepo.NewProductGormRepository(gdb)
	orderRepo := infraRepo.NewOrderGormRepository(gdb)
	txm := infraRepo.NewTxManagerGorm(gdb)

	_, err := db.SeedProducts(context.Background(), productRepo, log)
	require.NoError(t, err)

	notifyHandler := notify.NewOrderNotificationHandler(log, notify.NewLogNotifier(log, "+237699651854"), orderRepo)
	notifications, err := notify.NewPipeline(log, nil, notify.PipelineConfig{QueueSize: 16, Workers: 1, Timeout: 5 * time.Second}, notifyHandler.Handle)
	require.NoError(t, err)
	t.Cleanup(func() { _ = notifications.Close() })

	issuer := token.NewJWTIssuer(testSecret, time.Hour)
	authValidator := validator.NewAuthValidator()
	orderValidator := validator.NewOrderValidator()

	e := server.New(cfg, log, userRepo, server.Handlers{
		Auth: handler.NewAuthHandler(
			auth.NewRegisterUserUsecase(userRepo, auth.NewBcryptPasswordHasher(4), authValidator),
			auth.NewLoginUsecase(userRepo, auth.NewBcryptPasswordVerifier(), issuer, token.RealClock{}, authValidator),
			auth.NewGetMeUsecase(userRepo),
			log,
		),
		Products: handler.NewProductHandler(usecase.NewProductUsecase(productRepo), log),
		Cart:     handler.NewCartHandler(usecase.NewCartUsecase(productRepo, orderValidator), log),
		Orders:   handler.NewOrderHandler(usecase.NewOrderUsecase(txm, orderValidator, userRepo, notifications, log), log),
		Images:   handler.NewImageHandler(usecase.NewImageUsecase(imageGen, log), log),
	})

	return &testApp{e: e, db: gdb, users: userRepo, notifications: notifications, issuer: issuer}
}

// ユーザーを作ってBearerトークンを返す
func (a *testApp) login(t *testing.T, username string) (int64, string) {
	t.Helper()

	u := &model.User{Username: username, PasswordHash: "x", Email: username + "@example.com", Location: "Douala", Role: model.RoleCustomer}
	require.NoError(t, a.users.Create(context.Background(), u))

	tok, _, err := a.issuer.Issue(u.ID, u.Role, time.Now())
	require.NoError(t, err)
	return u.ID, tok
}

func (a *testApp) do(t *testing.T, method, path string, body interface{}, bearer string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type fieldErrorJSON struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errorJSON struct {
	Error  string           `json:"error"`
	Fields []fieldErrorJSON `json:"fields"`
}

type orderItemJSON struct {
	ID                    int64  `json:"id"`
	OrderID               int64  `json:"orderId"`
	ProductID             int64  `json:"productId"`
	Quantity              int64  `json:"quantity"`
	Size                  string `json:"size"`
	Color                 string `json:"color"`
	PersonalizationMethod string `json:"personalizationMethod"`
}

type orderJSON struct {
	ID                       int64           `json:"id"`
	UserID                   int64           `json:"userId"`
	TotalAmount              int64           `json:"totalAmount"`
	Status                   string          `json:"status"`
	WhatsappNotificationSent bool            `json:"whatsappNotificationSent"`
	Items                    []orderItemJSON `json:"items"`
}

func tshirtLine(qty int64) map[string]interface{} {
	return map[string]interface{}{
		"productId":             1,
		"quantity":              qty,
		"size":                  "M",
		"color":                 "Black",
		"personalizationMethod": "Screen Printing",
	}
}
