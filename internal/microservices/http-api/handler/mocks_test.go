package handler

import (
	"context"

	"animehub/internal/ingestion/anilist"
	"animehub/internal/microservices/http-api/models"
	"animehub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

// MockAuthService mocks the AuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, username, password, email string) (*models.User, error) {
	args := m.Called(ctx, username, password, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (*service.TokenPair, *models.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*service.TokenPair), args.Get(1).(*models.User), args.Error(2)
}

func (m *MockAuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (*service.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TokenPair), args.Error(1)
}

func (m *MockAuthService) ValidateToken(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Claims), args.Error(1)
}

func (m *MockAuthService) RevokeToken(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

// MockMembershipService mocks the MembershipService interface
type MockMembershipService struct {
	mock.Mock
}

func (m *MockMembershipService) Add(ctx context.Context, kind models.ListKind, item anilist.MediaData, opts service.AddOptions) (*models.ListEntry, error) {
	args := m.Called(ctx, kind, item, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ListEntry), args.Error(1)
}

func (m *MockMembershipService) Remove(ctx context.Context, kind models.ListKind, animeID int64) error {
	args := m.Called(ctx, kind, animeID)
	return args.Error(0)
}

func (m *MockMembershipService) List(ctx context.Context, kind models.ListKind) ([]models.ListEntry, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ListEntry), args.Error(1)
}

func (m *MockMembershipService) IsMember(ctx context.Context, kind models.ListKind, animeID int64) (bool, error) {
	args := m.Called(ctx, kind, animeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMembershipService) Membership(ctx context.Context, animeID int64) (map[models.ListKind]bool, error) {
	args := m.Called(ctx, animeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[models.ListKind]bool), args.Error(1)
}

func (m *MockMembershipService) UpdateRating(ctx context.Context, animeID int64, rating int, notes *string) error {
	args := m.Called(ctx, animeID, rating, notes)
	return args.Error(0)
}

func (m *MockMembershipService) Stats(ctx context.Context) (models.AnimeStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.AnimeStats), args.Error(1)
}

// MockCatalogService mocks the CatalogService interface
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) Trending(ctx context.Context, page, perPage int) (*anilist.TrendingPage, int, int, error) {
	args := m.Called(ctx, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Int(2), args.Error(3)
	}
	return args.Get(0).(*anilist.TrendingPage), args.Int(1), args.Int(2), args.Error(3)
}

func (m *MockCatalogService) Detail(ctx context.Context, id int64) (*anilist.MediaDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anilist.MediaDetail), args.Error(1)
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// fakeAuth stands in for AuthMiddleware: X-Test-User becomes the request identity
func fakeAuth(required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-Test-User")
		if userID == "" {
			if required {
				c.AbortWithStatusJSON(401, gin.H{"error": "missing authorization header"})
				return
			}
			c.Next()
			return
		}
		c.Set("userID", userID)
		c.Request = c.Request.WithContext(service.WithUserID(c.Request.Context(), userID))
		c.Next()
	}
}
