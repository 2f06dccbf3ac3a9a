package social

import (
	"context"

	"google.golang.org/grpc"

	"github.com/oggyb/wandermatch/internal/codec"
)

// Client is a typed SocialService client speaking the json codec.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp any](ctx context.Context, c *Client, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codec.Name)}, opts...)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Follow(ctx context.Context, in *FollowRequest, opts ...grpc.CallOption) (*FollowResponse, error) {
	return invoke[FollowResponse](ctx, c, "Follow", in, opts)
}

func (c *Client) Unfollow(ctx context.Context, in *FollowRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, "Unfollow", in, opts)
}

func (c *Client) IsFollowing(ctx context.Context, in *FollowRequest, opts ...grpc.CallOption) (*PredicateResponse, error) {
	return invoke[PredicateResponse](ctx, c, "IsFollowing", in, opts)
}

func (c *Client) ListFollowers(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*UserIDsResponse, error) {
	return invoke[UserIDsResponse](ctx, c, "ListFollowers", in, opts)
}

func (c *Client) ListFollowing(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*UserIDsResponse, error) {
	return invoke[UserIDsResponse](ctx, c, "ListFollowing", in, opts)
}

func (c *Client) Like(ctx context.Context, in *LikeRequest, opts ...grpc.CallOption) (*LikeResponse, error) {
	return invoke[LikeResponse](ctx, c, "Like", in, opts)
}

func (c *Client) Unlike(ctx context.Context, in *LikeRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, "Unlike", in, opts)
}

func (c *Client) IsLiked(ctx context.Context, in *LikeRequest, opts ...grpc.CallOption) (*PredicateResponse, error) {
	return invoke[PredicateResponse](ctx, c, "IsLiked", in, opts)
}

func (c *Client) ListLiked(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*UserIDsResponse, error) {
	return invoke[UserIDsResponse](ctx, c, "ListLiked", in, opts)
}

func (c *Client) ListLikedBy(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*UserIDsResponse, error) {
	return invoke[UserIDsResponse](ctx, c, "ListLikedBy", in, opts)
}

func (c *Client) CheckMutual(ctx context.Context, in *PairRequest, opts ...grpc.CallOption) (*PredicateResponse, error) {
	return invoke[PredicateResponse](ctx, c, "CheckMutual", in, opts)
}

func (c *Client) ListMatches(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*ListMatchesResponse, error) {
	return invoke[ListMatchesResponse](ctx, c, "ListMatches", in, opts)
}

func (c *Client) GetUserStats(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*StatsResponse, error) {
	return invoke[StatsResponse](ctx, c, "GetUserStats", in, opts)
}

func (c *Client) SetOnlineStatus(ctx context.Context, in *SetOnlineStatusRequest, opts ...grpc.CallOption) (*UserView, error) {
	return invoke[UserView](ctx, c, "SetOnlineStatus", in, opts)
}

func (c *Client) GetOrCreateRoom(ctx context.Context, in *GetOrCreateRoomRequest, opts ...grpc.CallOption) (*RoomResponse, error) {
	return invoke[RoomResponse](ctx, c, "GetOrCreateRoom", in, opts)
}

func (c *Client) ListRooms(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*ListRoomsResponse, error) {
	return invoke[ListRoomsResponse](ctx, c, "ListRooms", in, opts)
}

func (c *Client) SendMessage(ctx context.Context, in *SendMessageRequest, opts ...grpc.CallOption) (*MessageView, error) {
	return invoke[MessageView](ctx, c, "SendMessage", in, opts)
}

func (c *Client) ListMessages(ctx context.Context, in *ListMessagesRequest, opts ...grpc.CallOption) (*ListMessagesResponse, error) {
	return invoke[ListMessagesResponse](ctx, c, "ListMessages", in, opts)
}

func (c *Client) CreatePost(ctx context.Context, in *CreatePostRequest, opts ...grpc.CallOption) (*PostView, error) {
	return invoke[PostView](ctx, c, "CreatePost", in, opts)
}

func (c *Client) ListPosts(ctx context.Context, in *ListPostsRequest, opts ...grpc.CallOption) (*ListPostsResponse, error) {
	return invoke[ListPostsResponse](ctx, c, "ListPosts", in, opts)
}

func (c *Client) ListUserPosts(ctx context.Context, in *ListUserPostsRequest, opts ...grpc.CallOption) (*ListPostsResponse, error) {
	return invoke[ListPostsResponse](ctx, c, "ListUserPosts", in, opts)
}

func (c *Client) DeleteMessage(ctx context.Context, in *DeleteMessageRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, "DeleteMessage", in, opts)
}

// RoomStream receives messages of a SubscribeRoom call.
type RoomStream struct {
	stream grpc.ClientStream
}

// Recv blocks for the next message.
func (s *RoomStream) Recv() (*MessageView, error) {
	m := new(MessageView)
	if err := s.stream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// SubscribeRoom opens the message stream of a room. Cancel ctx to end it.
func (c *Client) SubscribeRoom(ctx context.Context, in *SubscribeRoomRequest, opts ...grpc.CallOption) (*RoomStream, error) {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codec.Name)}, opts...)
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], FullMethod("SubscribeRoom"), opts...)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &RoomStream{stream: stream}, nil
}
