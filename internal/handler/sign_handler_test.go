package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"roversign-go/internal/client"
	"roversign-go/internal/model"
	"roversign-go/internal/service"
	"roversign-go/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSignStore struct {
	counts map[string]int // date -> 已签账号数
}

func (s *stubSignStore) GetByDate(_, _ string) (*model.SignRecord, error) { return nil, nil }
func (s *stubSignStore) GetToday(_ string) (*model.SignRecord, error)     { return nil, nil }
func (s *stubSignStore) MergeRecord(p *model.SignRecord) (*model.SignRecord, error) {
	return p, nil
}
func (s *stubSignStore) CountByDate(date string) (int, error) { return s.counts[date], nil }

type stubUserStore struct{}

func (stubUserStore) GetAllAutomatable() ([]model.WavesUser, error) { return nil, nil }
func (stubUserStore) GetByUserID(string) ([]model.WavesUser, error) { return nil, nil }
func (stubUserStore) CountSignEnabled() (int, error)                { return 2, nil }

type stubOptions struct{}

func (stubOptions) GetAll() (map[string]string, error) { return map[string]string{}, nil }
func (stubOptions) Set(string, string) error           { return nil }
func (stubOptions) LoadOptions() (*model.SignOptions, error) {
	return &model.SignOptions{ConcurrentNum: 1}, nil
}

type stubAPI struct{}

func (stubAPI) ApplyOptions(*model.SignOptions)             {}
func (stubAPI) LoginLog(_, _ string) client.TokenStatus     { return client.TokenValid }
func (stubAPI) RefreshData(_, _ string) client.TokenStatus  { return client.TokenValid }
func (stubAPI) SignInTaskList(_, _ string) (*model.SignCalendar, client.TokenStatus) {
	return &model.SignCalendar{}, client.TokenValid
}
func (stubAPI) SignIn(_, _ string) (int, client.TokenStatus) { return 200, client.TokenValid }
func (stubAPI) GetTask(_, _ string) (*model.TaskProcess, client.TokenStatus) {
	return &model.TaskProcess{}, client.TokenValid
}
func (stubAPI) GetFormList(_, _ string) ([]model.Post, client.TokenStatus) {
	return nil, client.TokenValid
}
func (stubAPI) PostDetail(_, _, _ string) client.TokenStatus { return client.TokenValid }
func (stubAPI) Like(_, _, _, _ string) client.TokenStatus    { return client.TokenValid }
func (stubAPI) BBSSignIn(_, _ string) client.TokenStatus     { return client.TokenValid }
func (stubAPI) Share(_, _ string) client.TokenStatus         { return client.TokenValid }
func (stubAPI) GetGold(_, _ string) (int, client.TokenStatus) {
	return 0, client.TokenValid
}

func newStatusRouter(store *stubSignStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	nop := zap.NewNop()

	api := stubAPI{}
	signSvc := service.NewSignService(api, store, nop)
	bbsSvc := service.NewBBSService(api, store, nop)
	autoSvc := service.NewAutoSignService(stubUserStore{}, store, stubOptions{}, api, signSvc, bbsSvc, nop)

	h := NewSignHandler(autoSvc, nil, store, stubUserStore{}, stubOptions{}, nil, nop)
	router := gin.New()
	h.RegisterRoutes(router.Group("/api"), AdminKeyMiddleware(""))
	return router
}

func TestStatusReportsTodayAndYesterday(t *testing.T) {
	store := &stubSignStore{counts: map[string]int{
		utils.TodayDate():     5,
		utils.YesterdayDate(): 7,
	}}
	router := newStatusRouter(store)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/sign/status", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Signed          int  `json:"signed"`
			SignedYesterday int  `json:"signed_yesterday"`
			SignEnabled     int  `json:"sign_enabled"`
			Running         bool `json:"running"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 5, resp.Data.Signed)
	assert.Equal(t, 7, resp.Data.SignedYesterday)
	assert.Equal(t, 2, resp.Data.SignEnabled)
	assert.False(t, resp.Data.Running)
}
