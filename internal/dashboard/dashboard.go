// Package dashboard builds the read-only statistics shown on each role's
// landing page. Numbers are plain sums over what the API returns.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"hostelportal/internal/apiclient"
	"hostelportal/internal/cache"
	"hostelportal/internal/model"
)

// ErrUnsupportedRole is returned for users whose role has no dashboard.
var ErrUnsupportedRole = errors.New("no dashboard for role")

// Source fetches the listings a summary is built from.
type Source interface {
	Users(ctx context.Context, token string) ([]model.User, error)
	Rooms(ctx context.Context, token string) ([]model.Room, error)
	Feedback(ctx context.Context, token string) ([]model.Feedback, error)
	Me(ctx context.Context, token string) (*model.User, error)
}

// Summary is the aggregate shown on a dashboard.
type Summary struct {
	Role             model.Role     `json:"role"`
	TotalUsers       int            `json:"total_users"`
	UsersByRole      map[string]int `json:"users_by_role,omitempty"`
	Rooms            int            `json:"rooms"`
	Capacity         int            `json:"capacity"`
	Occupied         int            `json:"occupied"`
	Available        int            `json:"available"`
	OpenFeedback     int            `json:"open_feedback"`
	ResolvedFeedback int            `json:"resolved_feedback"`
	MyRoom           *model.Room    `json:"my_room,omitempty"`
	GeneratedAt      time.Time      `json:"generated_at"`
}

type builder func(ctx context.Context, token string, user model.User) (*Summary, error)

// Service builds and caches summaries.
type Service struct {
	source   Source
	cache    *cache.Client
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time
	builders map[model.Role]builder
}

// NewService creates a dashboard service. cache may be nil.
func NewService(source Source, cache *cache.Client, ttl time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		source: source,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
	s.builders = map[model.Role]builder{
		model.RoleAdmin:   s.admin,
		model.RoleWarden:  s.warden,
		model.RoleStudent: s.student,
	}
	return s
}

func (s *Service) cacheKey(user model.User) string {
	return fmt.Sprintf("dashboard:%d:%s", user.ID, user.Role)
}

// Summary returns the dashboard numbers for user, served from cache when fresh.
func (s *Service) Summary(ctx context.Context, token string, user model.User) (*Summary, error) {
	build, ok := s.builders[user.Role]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedRole, user.Role)
	}

	var cached Summary
	if s.cache.GetJSON(ctx, s.cacheKey(user), &cached) {
		// A cache hit skips the listings, so confirm the token is still
		// accepted. An unreachable API keeps serving the cached numbers.
		if _, err := s.source.Me(ctx, token); err != nil {
			if errors.Is(err, apiclient.ErrUnauthorized) {
				s.Forget(ctx, user)
				return nil, err
			}
			s.logger.Debug("token check failed, serving cached summary", zap.Error(err))
		}
		return &cached, nil
	}

	summary, err := build(ctx, token, user)
	if err != nil {
		return nil, err
	}
	summary.Role = user.Role
	summary.GeneratedAt = s.now()

	s.cache.SetJSON(ctx, s.cacheKey(user), summary, s.ttl)
	return summary, nil
}

// Forget drops any cached summary for user.
func (s *Service) Forget(ctx context.Context, user model.User) {
	_ = s.cache.Delete(ctx, s.cacheKey(user))
}

func (s *Service) admin(ctx context.Context, token string, _ model.User) (*Summary, error) {
	var (
		users    []model.User
		rooms    []model.Room
		feedback []model.Feedback
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { users, err = s.source.Users(gctx, token); return })
	g.Go(func() (err error) { rooms, err = s.source.Rooms(gctx, token); return })
	g.Go(func() (err error) { feedback, err = s.source.Feedback(gctx, token); return })
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch admin dashboard: %w", err)
	}

	sum := &Summary{UsersByRole: make(map[string]int)}
	for _, u := range users {
		sum.TotalUsers++
		sum.UsersByRole[string(u.Role)]++
	}
	addRooms(sum, rooms)
	addFeedback(sum, feedback)
	return sum, nil
}

func (s *Service) warden(ctx context.Context, token string, _ model.User) (*Summary, error) {
	var (
		rooms    []model.Room
		feedback []model.Feedback
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { rooms, err = s.source.Rooms(gctx, token); return })
	g.Go(func() (err error) { feedback, err = s.source.Feedback(gctx, token); return })
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch warden dashboard: %w", err)
	}

	sum := &Summary{}
	addRooms(sum, rooms)
	addFeedback(sum, feedback)
	return sum, nil
}

func (s *Service) student(ctx context.Context, token string, user model.User) (*Summary, error) {
	var (
		rooms    []model.Room
		feedback []model.Feedback
	)
	g, gctx := errgroup.WithContext(ctx)
	if user.RoomID != nil {
		g.Go(func() (err error) { rooms, err = s.source.Rooms(gctx, token); return })
	}
	g.Go(func() (err error) { feedback, err = s.source.Feedback(gctx, token); return })
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch student dashboard: %w", err)
	}

	sum := &Summary{}
	for i := range rooms {
		if user.RoomID != nil && rooms[i].ID == *user.RoomID {
			room := rooms[i]
			sum.MyRoom = &room
			break
		}
	}
	var own []model.Feedback
	for _, f := range feedback {
		if f.StudentID == user.ID {
			own = append(own, f)
		}
	}
	addFeedback(sum, own)
	return sum, nil
}

func addRooms(sum *Summary, rooms []model.Room) {
	for _, r := range rooms {
		sum.Rooms++
		sum.Capacity += r.Capacity
		sum.Occupied += r.Occupied
		sum.Available += r.Available()
	}
}

func addFeedback(sum *Summary, items []model.Feedback) {
	for _, f := range items {
		switch f.Status {
		case model.FeedbackOpen:
			sum.OpenFeedback++
		case model.FeedbackResolved:
			sum.ResolvedFeedback++
		}
	}
}
