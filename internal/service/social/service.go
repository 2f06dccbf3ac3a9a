package social

import (
	"context"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"google.golang.org/grpc"

	"github.com/oggyb/wandermatch/internal/app"
	svcErr "github.com/oggyb/wandermatch/internal/errors"
	"github.com/oggyb/wandermatch/internal/logger"
	core "github.com/oggyb/wandermatch/internal/social"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Service implements the SocialService gRPC API on top of the social engine.
// Handlers validate the request, call the engine and map engine errors to
// gRPC status codes with svcErr.Map.
type Service struct {
	appCtx *app.AppContext
	engine *core.Engine
}

// NewSocialService creates the service with dependencies from AppContext.
func NewSocialService(appCtx *app.AppContext) *Service {
	return &Service{appCtx: appCtx, engine: appCtx.Engine}
}

// log returns the request-scoped logger set by the server interceptor.
func (s *Service) log(ctx context.Context) *slog.Logger {
	return logger.FromContext(ctx, s.appCtx.Logger)
}

func check(req any) error {
	if err := validate.Struct(req); err != nil {
		return svcErr.InvalidArgument(err.Error())
	}
	return nil
}

// Follow records follower -> followee. Repeating it is not an error.
func (s *Service) Follow(ctx context.Context, req *FollowRequest) (*FollowResponse, error) {
	s.log(ctx).Debug("Follow called", "follower", req.FollowerID, "followee", req.FolloweeID)
	if err := check(req); err != nil {
		return nil, err
	}
	res, err := s.engine.Follow(ctx, req.FollowerID, req.FolloweeID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &FollowResponse{Created: res.Created, UnixTimestamp: res.Edge.CreatedAt.UnixMilli()}, nil
}

func (s *Service) Unfollow(ctx context.Context, req *FollowRequest) (*Empty, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	if err := s.engine.Unfollow(ctx, req.FollowerID, req.FolloweeID); err != nil {
		return nil, svcErr.Map(err)
	}
	return &Empty{}, nil
}

func (s *Service) IsFollowing(ctx context.Context, req *FollowRequest) (*PredicateResponse, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	ok, err := s.engine.IsFollowing(ctx, req.FollowerID, req.FolloweeID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &PredicateResponse{Result: ok}, nil
}

func (s *Service) ListFollowers(ctx context.Context, req *UserRequest) (*UserIDsResponse, error) {
	return s.listIDs(ctx, req, s.engine.ListFollowers)
}

func (s *Service) ListFollowing(ctx context.Context, req *UserRequest) (*UserIDsResponse, error) {
	return s.listIDs(ctx, req, s.engine.ListFollowing)
}

// Like records liker -> liked and reports the match and romantic room when
// the like completed a mutual pair.
//
// Example:
//
//	svc.Like(ctx, &LikeRequest{LikerID: "biju", LikedID: "anu"})
func (s *Service) Like(ctx context.Context, req *LikeRequest) (*LikeResponse, error) {
	s.log(ctx).Debug("Like called", "liker", req.LikerID, "liked", req.LikedID)
	if err := check(req); err != nil {
		return nil, err
	}
	res, err := s.engine.Like(ctx, req.LikerID, req.LikedID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	resp := &LikeResponse{Created: res.Created}
	if res.Match != nil {
		resp.Matched = true
		resp.Match = &MatchView{UserID: req.LikedID, UnixTimestamp: res.Match.CreatedAt.UnixMilli()}
	}
	if res.Room != nil {
		rv := roomView(res.Room)
		resp.Room = &rv
	}
	return resp, nil
}

// Unlike removes the like and any match; the room stays romantic.
func (s *Service) Unlike(ctx context.Context, req *LikeRequest) (*Empty, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	if err := s.engine.Unlike(ctx, req.LikerID, req.LikedID); err != nil {
		return nil, svcErr.Map(err)
	}
	return &Empty{}, nil
}

func (s *Service) IsLiked(ctx context.Context, req *LikeRequest) (*PredicateResponse, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	ok, err := s.engine.IsLiked(ctx, req.LikerID, req.LikedID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &PredicateResponse{Result: ok}, nil
}

func (s *Service) ListLiked(ctx context.Context, req *UserRequest) (*UserIDsResponse, error) {
	return s.listIDs(ctx, req, s.engine.ListLiked)
}

func (s *Service) ListLikedBy(ctx context.Context, req *UserRequest) (*UserIDsResponse, error) {
	return s.listIDs(ctx, req, s.engine.ListLikedBy)
}

func (s *Service) CheckMutual(ctx context.Context, req *PairRequest) (*PredicateResponse, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	ok, err := s.engine.CheckMutual(ctx, req.UserID, req.OtherUserID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &PredicateResponse{Result: ok}, nil
}

func (s *Service) ListMatches(ctx context.Context, req *UserRequest) (*ListMatchesResponse, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	matches, err := s.engine.ListMatches(ctx, req.UserID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	resp := &ListMatchesResponse{Matches: make([]MatchView, 0, len(matches))}
	for _, m := range matches {
		resp.Matches = append(resp.Matches, MatchView{
			UserID:        m.OtherUserID,
			UnixTimestamp: m.Match.CreatedAt.UnixMilli(),
		})
	}
	return resp, nil
}

// GetUserStats returns follower, following and likes-received counts,
// served from the Redis snapshot when present.
func (s *Service) GetUserStats(ctx context.Context, req *UserRequest) (*StatsResponse, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	st, err := s.engine.UserStats(ctx, req.UserID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &StatsResponse{Followers: st.Followers, Following: st.Following, Likes: st.Likes}, nil
}

func (s *Service) SetOnlineStatus(ctx context.Context, req *SetOnlineStatusRequest) (*UserView, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	u, err := s.engine.SetOnlineStatus(ctx, req.UserID, req.Online)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return userView(u), nil
}

func (s *Service) GetOrCreateRoom(ctx context.Context, req *GetOrCreateRoomRequest) (*RoomResponse, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	room, created, err := s.engine.GetOrCreateRoom(ctx, req.UserID, req.OtherUserID, req.Romantic)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &RoomResponse{Room: roomView(room), Created: created}, nil
}

// ListRooms returns the user's rooms, most recent activity first, each
// with the other participant's profile.
func (s *Service) ListRooms(ctx context.Context, req *UserRequest) (*ListRoomsResponse, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	rooms, err := s.engine.ListRoomsForUser(ctx, req.UserID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	resp := &ListRoomsResponse{Rooms: make([]RoomView, 0, len(rooms))}
	for _, r := range rooms {
		resp.Rooms = append(resp.Rooms, roomListView(r))
	}
	return resp, nil
}

func (s *Service) SendMessage(ctx context.Context, req *SendMessageRequest) (*MessageView, error) {
	s.log(ctx).Debug("SendMessage called", "room", req.RoomID, "sender", req.SenderID)
	if err := check(req); err != nil {
		return nil, err
	}
	msg, err := s.engine.Append(ctx, req.RoomID, req.SenderID, req.Content)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	mv := messageView(msg)
	return &mv, nil
}

// ListMessages returns the room's messages oldest first. A due twenty-day
// milestone is delivered before the read. Limit 0 returns everything.
func (s *Service) ListMessages(ctx context.Context, req *ListMessagesRequest) (*ListMessagesResponse, error) {
	s.log(ctx).Debug("ListMessages called", "room", req.RoomID, "limit", req.Limit)
	if err := check(req); err != nil {
		return nil, err
	}
	msgs, next, err := s.engine.ListPage(ctx, req.RoomID, req.PaginationToken, req.Limit)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	resp := &ListMessagesResponse{Messages: make([]MessageView, 0, len(msgs)), NextPaginationToken: next}
	for i := range msgs {
		resp.Messages = append(resp.Messages, messageView(&msgs[i]))
	}
	return resp, nil
}

func (s *Service) DeleteMessage(ctx context.Context, req *DeleteMessageRequest) (*Empty, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	if err := s.engine.DeleteMessage(ctx, req.MessageID, req.RequesterID); err != nil {
		return nil, svcErr.Map(err)
	}
	return &Empty{}, nil
}

// CreatePost publishes a community post, optionally tagged with a place.
func (s *Service) CreatePost(ctx context.Context, req *CreatePostRequest) (*PostView, error) {
	s.log(ctx).Debug("CreatePost called", "author", req.AuthorID, "location", req.LocationTag)
	if err := check(req); err != nil {
		return nil, err
	}
	post, err := s.engine.CreatePost(ctx, req.AuthorID, req.Content, req.LocationTag, req.ImageURL)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	pv := postView(post)
	return &pv, nil
}

// ListPosts returns the community feed newest first, each post with its
// author's profile.
func (s *Service) ListPosts(ctx context.Context, req *ListPostsRequest) (*ListPostsResponse, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	posts, next, err := s.engine.ListPosts(ctx, req.LocationTag, req.PaginationToken, req.Limit)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return postsResponse(posts, next), nil
}

func (s *Service) ListUserPosts(ctx context.Context, req *ListUserPostsRequest) (*ListPostsResponse, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	posts, next, err := s.engine.ListUserPosts(ctx, req.UserID, req.PaginationToken, req.Limit)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return postsResponse(posts, next), nil
}

func postsResponse(posts []core.PostView, next *string) *ListPostsResponse {
	resp := &ListPostsResponse{Posts: make([]PostView, 0, len(posts)), NextPaginationToken: next}
	for _, p := range posts {
		resp.Posts = append(resp.Posts, postListView(p))
	}
	return resp
}

// SubscribeRoom streams messages appended to the room until the client
// goes away.
func (s *Service) SubscribeRoom(req *SubscribeRoomRequest, stream grpc.ServerStream) error {
	if err := check(req); err != nil {
		return err
	}
	ctx := stream.Context()
	msgs, stop, err := s.engine.Subscribe(ctx, req.RoomID, req.UserID)
	if err != nil {
		return svcErr.Map(err)
	}
	defer stop()
	s.log(ctx).Debug("room subscription opened", "room", req.RoomID, "user", req.UserID)

	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-msgs:
			if !ok {
				return nil
			}
			mv := messageView(&m)
			if err := stream.SendMsg(&mv); err != nil {
				return err
			}
		}
	}
}

func (s *Service) listIDs(
	ctx context.Context,
	req *UserRequest,
	list func(context.Context, string) ([]string, error),
) (*UserIDsResponse, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	ids, err := list(ctx, req.UserID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &UserIDsResponse{UserIDs: ids}, nil
}
