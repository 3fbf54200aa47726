package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hostelportal/internal/apiclient"
	"hostelportal/internal/cache"
	"hostelportal/internal/model"
)

// MockSource is a mock implementation of Source.
type MockSource struct {
	mock.Mock
}

func (m *MockSource) Users(ctx context.Context, token string) ([]model.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockSource) Rooms(ctx context.Context, token string) ([]model.Room, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Room), args.Error(1)
}

func (m *MockSource) Feedback(ctx context.Context, token string) ([]model.Feedback, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Feedback), args.Error(1)
}

func (m *MockSource) Me(ctx context.Context, token string) (*model.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

var (
	testRooms = []model.Room{
		{ID: 1, Number: "A-101", Capacity: 2, Occupied: 2},
		{ID: 2, Number: "A-102", Capacity: 3, Occupied: 1},
		{ID: 3, Number: "B-201", Capacity: 1, Occupied: 2},
	}
	testFeedback = []model.Feedback{
		{ID: 1, StudentID: 7, Status: model.FeedbackOpen},
		{ID: 2, StudentID: 7, Status: model.FeedbackResolved},
		{ID: 3, StudentID: 8, Status: model.FeedbackOpen},
	}
)

func TestService_AdminSummary(t *testing.T) {
	src := new(MockSource)
	src.On("Users", mock.Anything, "tok").Return([]model.User{
		{ID: 1, Role: model.RoleAdmin},
		{ID: 2, Role: model.RoleWarden},
		{ID: 7, Role: model.RoleStudent},
		{ID: 8, Role: model.RoleStudent},
	}, nil)
	src.On("Rooms", mock.Anything, "tok").Return(testRooms, nil)
	src.On("Feedback", mock.Anything, "tok").Return(testFeedback, nil)
	svc := NewService(src, nil, time.Minute, nil)

	sum, err := svc.Summary(context.Background(), "tok", model.User{ID: 1, Role: model.RoleAdmin})

	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, sum.Role)
	assert.Equal(t, 4, sum.TotalUsers)
	assert.Equal(t, 2, sum.UsersByRole["student"])
	assert.Equal(t, 3, sum.Rooms)
	assert.Equal(t, 6, sum.Capacity)
	assert.Equal(t, 5, sum.Occupied)
	assert.Equal(t, 2, sum.Available)
	assert.Equal(t, 2, sum.OpenFeedback)
	assert.Equal(t, 1, sum.ResolvedFeedback)
	src.AssertExpectations(t)
}

func TestService_WardenSummarySkipsUsers(t *testing.T) {
	src := new(MockSource)
	src.On("Rooms", mock.Anything, "tok").Return(testRooms, nil)
	src.On("Feedback", mock.Anything, "tok").Return(testFeedback, nil)
	svc := NewService(src, nil, time.Minute, nil)

	sum, err := svc.Summary(context.Background(), "tok", model.User{ID: 2, Role: model.RoleWarden})

	require.NoError(t, err)
	assert.Equal(t, 0, sum.TotalUsers)
	assert.Equal(t, 3, sum.Rooms)
	src.AssertNotCalled(t, "Users", mock.Anything, mock.Anything)
}

func TestService_StudentSummary(t *testing.T) {
	roomID := uint(2)
	src := new(MockSource)
	src.On("Rooms", mock.Anything, "tok").Return(testRooms, nil)
	src.On("Feedback", mock.Anything, "tok").Return(testFeedback, nil)
	svc := NewService(src, nil, time.Minute, nil)

	sum, err := svc.Summary(context.Background(), "tok", model.User{ID: 7, Role: model.RoleStudent, RoomID: &roomID})

	require.NoError(t, err)
	require.NotNil(t, sum.MyRoom)
	assert.Equal(t, "A-102", sum.MyRoom.Number)
	assert.Equal(t, 1, sum.OpenFeedback)
	assert.Equal(t, 1, sum.ResolvedFeedback)
}

func TestService_StudentWithoutRoom(t *testing.T) {
	src := new(MockSource)
	src.On("Feedback", mock.Anything, "tok").Return([]model.Feedback{}, nil)
	svc := NewService(src, nil, time.Minute, nil)

	sum, err := svc.Summary(context.Background(), "tok", model.User{ID: 9, Role: model.RoleStudent})

	require.NoError(t, err)
	assert.Nil(t, sum.MyRoom)
	src.AssertNotCalled(t, "Rooms", mock.Anything, mock.Anything)
}

func TestService_UnknownRole(t *testing.T) {
	svc := NewService(new(MockSource), nil, time.Minute, nil)

	_, err := svc.Summary(context.Background(), "tok", model.User{ID: 1, Role: "janitor"})

	assert.ErrorIs(t, err, ErrUnsupportedRole)
}

func TestService_PropagatesUnauthorized(t *testing.T) {
	src := new(MockSource)
	src.On("Rooms", mock.Anything, "tok").Return(nil, &apiclient.RejectedError{Status: 401, Message: "expired"})
	src.On("Feedback", mock.Anything, "tok").Return(testFeedback, nil).Maybe()
	svc := NewService(src, nil, time.Minute, nil)

	_, err := svc.Summary(context.Background(), "tok", model.User{ID: 2, Role: model.RoleWarden})

	assert.ErrorIs(t, err, apiclient.ErrUnauthorized)
}

func TestService_CachesSummary(t *testing.T) {
	mr := miniredis.RunT(t)
	c := cache.New(redis.NewClient(&redis.Options{Addr: mr.Addr()}), nil)
	src := new(MockSource)
	src.On("Rooms", mock.Anything, "tok").Return(testRooms, nil).Once()
	src.On("Feedback", mock.Anything, "tok").Return(testFeedback, nil).Once()
	svc := NewService(src, c, time.Minute, nil)
	warden := model.User{ID: 2, Role: model.RoleWarden}
	src.On("Me", mock.Anything, "tok").Return(&warden, nil)

	first, err := svc.Summary(context.Background(), "tok", warden)
	require.NoError(t, err)
	second, err := svc.Summary(context.Background(), "tok", warden)
	require.NoError(t, err)

	assert.Equal(t, first.Occupied, second.Occupied)
	src.AssertNumberOfCalls(t, "Rooms", 1)

	svc.Forget(context.Background(), warden)
	src.On("Rooms", mock.Anything, "tok").Return(testRooms[:1], nil).Once()
	src.On("Feedback", mock.Anything, "tok").Return(testFeedback, nil).Once()
	third, err := svc.Summary(context.Background(), "tok", warden)
	require.NoError(t, err)
	assert.Equal(t, 1, third.Rooms)
}

func TestService_CachedSummaryChecksToken(t *testing.T) {
	mr := miniredis.RunT(t)
	c := cache.New(redis.NewClient(&redis.Options{Addr: mr.Addr()}), nil)
	src := new(MockSource)
	src.On("Rooms", mock.Anything, "tok").Return(testRooms, nil).Once()
	src.On("Feedback", mock.Anything, "tok").Return(testFeedback, nil).Once()
	src.On("Me", mock.Anything, "tok").Return(nil, &apiclient.RejectedError{Status: 401, Message: "revoked"})
	svc := NewService(src, c, time.Minute, nil)
	warden := model.User{ID: 2, Role: model.RoleWarden}

	_, err := svc.Summary(context.Background(), "tok", warden)
	require.NoError(t, err)
	src.AssertNotCalled(t, "Me", mock.Anything, mock.Anything)

	_, err = svc.Summary(context.Background(), "tok", warden)
	assert.ErrorIs(t, err, apiclient.ErrUnauthorized)
	assert.False(t, mr.Exists(svc.cacheKey(warden)), "revoked session's summary should be dropped")
}

func TestService_CachedSummaryServedWhenAPIUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	c := cache.New(redis.NewClient(&redis.Options{Addr: mr.Addr()}), nil)
	src := new(MockSource)
	src.On("Rooms", mock.Anything, "tok").Return(testRooms, nil).Once()
	src.On("Feedback", mock.Anything, "tok").Return(testFeedback, nil).Once()
	src.On("Me", mock.Anything, "tok").Return(nil, apiclient.ErrTransport)
	svc := NewService(src, c, time.Minute, nil)
	warden := model.User{ID: 2, Role: model.RoleWarden}

	first, err := svc.Summary(context.Background(), "tok", warden)
	require.NoError(t, err)
	second, err := svc.Summary(context.Background(), "tok", warden)
	require.NoError(t, err)
	assert.Equal(t, first.Rooms, second.Rooms)
}
