package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mkamenev/storefront/internal/models"
	"github.com/mkamenev/storefront/internal/payment"
	"github.com/mkamenev/storefront/internal/repo"
	"github.com/mkamenev/storefront/internal/service"
	"github.com/mkamenev/storefront/internal/session"
)

type testEnv struct {
	echo   *echo.Echo
	repo   *repo.GormRepo
	carts  *service.CartService
	orders *service.OrderService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	))

	r := &repo.GormRepo{DB: db}
	return &testEnv{
		echo:   echo.New(),
		repo:   r,
		carts:  &service.CartService{Repo: r},
		orders: &service.OrderService{Repo: r},
	}
}

func (env *testEnv) seedProduct(t *testing.T, name, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		IsActive: true,
	}
	require.NoError(t, env.repo.DB.Create(p).Error)
	return p
}

// request builds an echo context carrying the anonymous cart session cookie,
// the way a returning browser would.
func (env *testEnv) request(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	req.AddCookie(&http.Cookie{Name: session.TokenCookie, Value: "sess-test"})

	rec := httptest.NewRecorder()
	return env.echo.NewContext(req, rec), rec
}

func (env *testEnv) sessionCart(t *testing.T) *models.Cart {
	t.Helper()
	token := "sess-test"
	cart, err := env.carts.GetOrCreate(context.Background(), models.CartIdentity{SessionToken: &token})
	require.NoError(t, err)
	return cart
}

func testContact() models.ContactInfo {
	return models.ContactInfo{
		FullName:   "John Doe",
		Email:      "johndoe@example.com",
		Phone:      "+1 234 567 8900",
		Address:    "123 Main Street",
		City:       "New York",
		State:      "NY",
		PostalCode: "10001",
		Country:    "United States",
	}
}

// stubGateway scripts the payment adapter so handler flows can run without a
// gateway account.
type stubGateway struct {
	session    *payment.Session
	createErr  error
	conf       *payment.Confirmation
	confirmErr error
	event      *payment.Event
	verifyErr  error

	lastCreate payment.CreateSessionInput
}

func (g *stubGateway) CreateSession(_ context.Context, in payment.CreateSessionInput) (*payment.Session, error) {
	g.lastCreate = in
	if g.createErr != nil {
		return nil, g.createErr
	}
	return g.session, nil
}

func (g *stubGateway) ConfirmSession(_ context.Context, _ string) (*payment.Confirmation, error) {
	if g.confirmErr != nil {
		return nil, g.confirmErr
	}
	return g.conf, nil
}

func (g *stubGateway) VerifyWebhook(_ []byte, _ string) (*payment.Event, error) {
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	return g.event, nil
}
