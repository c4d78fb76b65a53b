package service

import (
	"testing"

	"roversign-go/internal/client"
	"roversign-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSignInSkipsWhenAlreadySigned(t *testing.T) {
	api := &fakeAPI{
		signInTaskList: func(_, _ string) (*model.SignCalendar, client.TokenStatus) {
			return &model.SignCalendar{IsSigIn: true}, client.TokenValid
		},
	}
	store := newFakeSignStore()
	svc := NewSignService(api, store, zap.NewNop())

	outcome := svc.SignIn("100000001", "ck", false)

	assert.Equal(t, OutcomeSkipped, outcome.Kind)
	assert.Equal(t, 0, api.callCount("SignIn"), "已签到时不应再发起签到请求")

	rec, _ := store.GetToday("100000001")
	require.NotNil(t, rec)
	assert.True(t, rec.GameSignComplete(), "跳过时本地进度也应对齐")
}

func TestSignInForceBypassesCalendarCheck(t *testing.T) {
	api := &fakeAPI{}
	svc := NewSignService(api, newFakeSignStore(), zap.NewNop())

	outcome := svc.SignIn("100000001", "ck", true)

	assert.Equal(t, OutcomeSucceeded, outcome.Kind)
	assert.Equal(t, 0, api.callCount("SignInTaskList"))
	assert.Equal(t, 1, api.callCount("SignIn"))
}

func TestSignInAlreadySignedCode(t *testing.T) {
	api := &fakeAPI{
		signIn: func(_, _ string) (int, client.TokenStatus) {
			return 1511, client.TokenUnknown
		},
	}
	store := newFakeSignStore()
	svc := NewSignService(api, store, zap.NewNop())

	outcome := svc.SignIn("100000001", "ck", true)

	assert.Equal(t, OutcomeSkipped, outcome.Kind)
	rec, _ := store.GetToday("100000001")
	require.NotNil(t, rec)
	assert.True(t, rec.GameSignComplete())
}

func TestSignInFailure(t *testing.T) {
	api := &fakeAPI{
		signIn: func(_, _ string) (int, client.TokenStatus) {
			return 0, client.TokenError
		},
	}
	store := newFakeSignStore()
	svc := NewSignService(api, store, zap.NewNop())

	outcome := svc.SignIn("100000001", "ck", true)

	assert.Equal(t, OutcomeFailed, outcome.Kind)
	assert.True(t, outcome.Failed())
	rec, _ := store.GetToday("100000001")
	assert.Nil(t, rec, "失败时不应写入进度")
}

func TestGameSignMessage(t *testing.T) {
	assert.Equal(t, "今日已签到！请勿重复签到！", GameSignMessage(TaskOutcome{Kind: OutcomeSkipped}))
	assert.Equal(t, "签到成功！", GameSignMessage(TaskOutcome{Kind: OutcomeSucceeded}))
	assert.Equal(t, "签到失败！", GameSignMessage(TaskOutcome{Kind: OutcomeFailed}))
}
