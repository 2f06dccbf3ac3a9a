package social

import (
	"context"

	"google.golang.org/grpc"

	"github.com/oggyb/wandermatch/internal/app"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "wandermatch.social.v1.SocialService"

// FullMethod returns the /service/method path of a SocialService method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// SocialServer is the server API of SocialService.
type SocialServer interface {
	Follow(context.Context, *FollowRequest) (*FollowResponse, error)
	Unfollow(context.Context, *FollowRequest) (*Empty, error)
	IsFollowing(context.Context, *FollowRequest) (*PredicateResponse, error)
	ListFollowers(context.Context, *UserRequest) (*UserIDsResponse, error)
	ListFollowing(context.Context, *UserRequest) (*UserIDsResponse, error)
	Like(context.Context, *LikeRequest) (*LikeResponse, error)
	Unlike(context.Context, *LikeRequest) (*Empty, error)
	IsLiked(context.Context, *LikeRequest) (*PredicateResponse, error)
	ListLiked(context.Context, *UserRequest) (*UserIDsResponse, error)
	ListLikedBy(context.Context, *UserRequest) (*UserIDsResponse, error)
	CheckMutual(context.Context, *PairRequest) (*PredicateResponse, error)
	ListMatches(context.Context, *UserRequest) (*ListMatchesResponse, error)
	GetUserStats(context.Context, *UserRequest) (*StatsResponse, error)
	SetOnlineStatus(context.Context, *SetOnlineStatusRequest) (*UserView, error)
	GetOrCreateRoom(context.Context, *GetOrCreateRoomRequest) (*RoomResponse, error)
	ListRooms(context.Context, *UserRequest) (*ListRoomsResponse, error)
	SendMessage(context.Context, *SendMessageRequest) (*MessageView, error)
	ListMessages(context.Context, *ListMessagesRequest) (*ListMessagesResponse, error)
	DeleteMessage(context.Context, *DeleteMessageRequest) (*Empty, error)
	CreatePost(context.Context, *CreatePostRequest) (*PostView, error)
	ListPosts(context.Context, *ListPostsRequest) (*ListPostsResponse, error)
	ListUserPosts(context.Context, *ListUserPostsRequest) (*ListPostsResponse, error)
	SubscribeRoom(*SubscribeRoomRequest, grpc.ServerStream) error
}

// unary adapts a typed handler to a grpc.MethodDesc.
func unary[Req, Resp any](method string, call func(SocialServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(SocialServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(SocialServer), ctx, req.(*Req))
			})
		},
	}
}

// ServiceDesc describes SocialService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SocialServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Follow", SocialServer.Follow),
		unary("Unfollow", SocialServer.Unfollow),
		unary("IsFollowing", SocialServer.IsFollowing),
		unary("ListFollowers", SocialServer.ListFollowers),
		unary("ListFollowing", SocialServer.ListFollowing),
		unary("Like", SocialServer.Like),
		unary("Unlike", SocialServer.Unlike),
		unary("IsLiked", SocialServer.IsLiked),
		unary("ListLiked", SocialServer.ListLiked),
		unary("ListLikedBy", SocialServer.ListLikedBy),
		unary("CheckMutual", SocialServer.CheckMutual),
		unary("ListMatches", SocialServer.ListMatches),
		unary("GetUserStats", SocialServer.GetUserStats),
		unary("SetOnlineStatus", SocialServer.SetOnlineStatus),
		unary("GetOrCreateRoom", SocialServer.GetOrCreateRoom),
		unary("ListRooms", SocialServer.ListRooms),
		unary("SendMessage", SocialServer.SendMessage),
		unary("ListMessages", SocialServer.ListMessages),
		unary("DeleteMessage", SocialServer.DeleteMessage),
		unary("CreatePost", SocialServer.CreatePost),
		unary("ListPosts", SocialServer.ListPosts),
		unary("ListUserPosts", SocialServer.ListUserPosts),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "SubscribeRoom",
			ServerStreams: true,
			Handler: func(srv any, stream grpc.ServerStream) error {
				in := new(SubscribeRoomRequest)
				if err := stream.RecvMsg(in); err != nil {
					return err
				}
				return srv.(SocialServer).SubscribeRoom(in, stream)
			},
		},
	},
	// No protobuf file descriptor backs this service; reflection can list
	// it but not describe it.
	Metadata: "wandermatch/social/v1/social.json",
}

// RegisterSocialServer attaches srv to s.
func RegisterSocialServer(s grpc.ServiceRegistrar, srv SocialServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Registrar ties the Social service into the gRPC server
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the Social service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the Social service implementation to the gRPC server
func (r *Registrar) Register(s *grpc.Server) {
	RegisterSocialServer(s, NewSocialService(r.appCtx))
}
