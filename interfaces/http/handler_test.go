package http_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"benchly/domain/dto"
	"benchly/domain/model"
	handler "benchly/interfaces/http"
	"benchly/interfaces/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type MockDiscoveryUseCase struct {
	mock.Mock
}

func (m *MockDiscoveryUseCase) Search(ctx context.Context, q model.Query) ([]model.EnrichedItem, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.EnrichedItem), args.Error(1)
}

type MockTextUseCase struct {
	mock.Mock
}

func (m *MockTextUseCase) Summarize(ctx context.Context, req dto.SummaryRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockTextUseCase) RelatedKeywords(ctx context.Context, req dto.RelatedKeywordsRequest) (*dto.RelatedKeywordsResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.RelatedKeywordsResponse), args.Error(1)
}

type MockProjectUseCase struct {
	mock.Mock
}

func (m *MockProjectUseCase) Save(ctx context.Context, userID int, req dto.SaveProjectRequest) (*model.Project, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectUseCase) List(ctx context.Context, userID int) ([]dto.ProjectSummary, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]dto.ProjectSummary), args.Error(1)
}

func (m *MockProjectUseCase) Get(ctx context.Context, userID, projectID int) (*dto.ProjectDetail, error) {
	args := m.Called(ctx, userID, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ProjectDetail), args.Error(1)
}

func (m *MockProjectUseCase) Delete(ctx context.Context, userID, projectID int) error {
	args := m.Called(ctx, userID, projectID)
	return args.Error(0)
}

type MockUserUsecase struct {
	mock.Mock
}

func (m *MockUserUsecase) Register(ctx context.Context, req model.ReqRegister) (dto.LoginResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(dto.LoginResponse), args.Error(1)
}

func (m *MockUserUsecase) Login(ctx context.Context, req model.ReqLogin) (dto.LoginResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(dto.LoginResponse), args.Error(1)
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func asUser(id int) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, id)
		c.Next()
	}
}

func TestDiscoveryHandler_Search(t *testing.T) {
	uc := new(MockDiscoveryUseCase)
	uc.On("Search", mock.Anything, mock.MatchedBy(func(q model.Query) bool {
		return q.Text == "camping" && q.MaxResults == 10 && q.MinViews == 1000
	})).Return([]model.EnrichedItem{{VideoID: "v1"}}, nil)

	r := gin.New()
	r.POST("/api/search", handler.NewDiscoveryHandler(uc).Search)

	w := serve(r, http.MethodPost, "/api/search", `{"query":"camping","maxResults":"10","minViews":1000}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"videoId":"v1"`)
	uc.AssertExpectations(t)
}

func TestDiscoveryHandler_EmptyResultIsEmptyList(t *testing.T) {
	uc := new(MockDiscoveryUseCase)
	uc.On("Search", mock.Anything, mock.Anything).Return([]model.EnrichedItem{}, nil)

	r := gin.New()
	r.POST("/api/search", handler.NewDiscoveryHandler(uc).Search)

	w := serve(r, http.MethodPost, "/api/search", `{"query":"nothing"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[]}`, w.Body.String())
}

func TestDiscoveryHandler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
		kind   string
	}{
		{"missing query", `{"maxResults":5}`, nil, http.StatusBadRequest, "invalid_query"},
		{"too many results", `{"query":"a","maxResults":51}`, nil, http.StatusBadRequest, "invalid_query"},
		{"garbage number", `{"query":"a","minViews":"lots"}`, nil, http.StatusBadRequest, "invalid_query"},
		{"upstream quota", `{"query":"a"}`, model.NewUpstreamError(403, "quotaExceeded", nil), http.StatusForbidden, "upstream"},
		{"timeout", `{"query":"a"}`, model.NewTimeoutError("search", context.DeadlineExceeded), http.StatusGatewayTimeout, "timeout"},
		{"unexpected", `{"query":"a"}`, errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := new(MockDiscoveryUseCase)
			if tt.err != nil {
				uc.On("Search", mock.Anything, mock.Anything).Return(nil, tt.err)
			}
			r := gin.New()
			r.POST("/api/search", handler.NewDiscoveryHandler(uc).Search)

			w := serve(r, http.MethodPost, "/api/search", tt.body)

			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), `"kind":"`+tt.kind+`"`)
			if tt.err == nil {
				uc.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestTextHandler(t *testing.T) {
	uc := new(MockTextUseCase)
	uc.On("Summarize", mock.Anything, dto.SummaryRequest{Transcript: "t", Prompt: "p", Model: "m"}).Return("<strong>ok</strong>", nil)
	uc.On("RelatedKeywords", mock.Anything, dto.RelatedKeywordsRequest{Query: "캠핑"}).
		Return(nil, model.NewUpstreamError(0, "keyword answer could not be read", nil))

	h := handler.NewTextHandler(uc)
	r := gin.New()
	r.POST("/api/get_summary", h.Summary)
	r.POST("/api/get_related_keywords", h.RelatedKeywords)

	w := serve(r, http.MethodPost, "/api/get_summary", `{"transcript":"t","prompt":"p","model":"m"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"summary_html":"<strong>ok</strong>"}`, w.Body.String())

	w = serve(r, http.MethodPost, "/api/get_related_keywords", `{"query":"캠핑"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestProjectHandler(t *testing.T) {
	uc := new(MockProjectUseCase)
	uc.On("Save", mock.Anything, 7, mock.Anything).Return(&model.Project{ID: 3, Name: "camping"}, nil)
	uc.On("List", mock.Anything, 7).Return([]dto.ProjectSummary{{ID: 3, Name: "camping"}}, nil)
	uc.On("Get", mock.Anything, 7, 3).Return(nil, model.NewForbiddenError("not allowed to access this project"))
	uc.On("Delete", mock.Anything, 7, 4).Return(model.NewNotFoundError("project not found"))

	h := handler.NewProjectHandler(uc)
	r := gin.New()
	api := r.Group("/api", asUser(7))
	api.POST("/project/save", h.Save)
	api.GET("/projects", h.List)
	api.GET("/project/get/:id", h.Get)
	api.DELETE("/project/delete/:id", h.Delete)

	w := serve(r, http.MethodPost, "/api/project/save", `{"projectName":"camping","searchParams":{},"searchResults":[]}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"project_id":3`)

	w = serve(r, http.MethodGet, "/api/projects", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"projectName":"camping"`)

	w = serve(r, http.MethodGet, "/api/project/get/3", "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(r, http.MethodDelete, "/api/project/delete/4", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(r, http.MethodGet, "/api/project/get/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserHandler(t *testing.T) {
	uc := new(MockUserUsecase)
	uc.On("Register", mock.Anything, model.ReqRegister{UserName: "camper", Email: "c@example.com", Password: "hunter22"}).
		Return(dto.LoginResponse{Success: true, Token: "tok", UserName: "camper"}, nil)
	uc.On("Login", mock.Anything, model.ReqLogin{Email: "c@example.com", Password: "bad"}).
		Return(dto.LoginResponse{}, &model.DiscoveryError{Kind: model.ErrKindInvalidQuery, Status: http.StatusUnauthorized, Message: "invalid email or password"})

	h := handler.NewUserHandler(uc)
	r := gin.New()
	r.POST("/api/register", h.Register)
	r.POST("/api/login", h.Login)

	w := serve(r, http.MethodPost, "/api/register", `{"username":"camper","email":"c@example.com","password":"hunter22"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"token":"tok"`)

	w = serve(r, http.MethodPost, "/api/register", `{"username":"camper","email":"not-an-email","password":"hunter22"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, http.MethodPost, "/api/login", `{"email":"c@example.com","password":"bad"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealthHandler(t *testing.T) {
	h := handler.NewHealthHandler(map[string]handler.Check{
		"cache": func(ctx context.Context) error { return nil },
		"db":    func(ctx context.Context) error { return errors.New("refused") },
	})
	r := gin.New()
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/healthz", "").Code)

	w := serve(r, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"checks":{"cache":"ok","db":"refused"}}`, w.Body.String())
}
