package grpcserver

import (
	"context"

	"google.golang.org/grpc"

	"github.com/cheeseechops/CamdramAPI/internal/leaderboard"
)

const serviceName = "camdram.v1.Leaderboards"

const (
	methodListPeople    = "/" + serviceName + "/ListPeople"
	methodGetRole       = "/" + serviceName + "/GetRole"
	methodListSocieties = "/" + serviceName + "/ListSocieties"
	methodListVenues    = "/" + serviceName + "/ListVenues"
)

// LeaderboardsServer is the read-only ranking service.
type LeaderboardsServer interface {
	ListPeople(context.Context, *ListPeopleRequest) (*leaderboard.PeoplePage, error)
	GetRole(context.Context, *GetRoleRequest) (*GetRoleResponse, error)
	ListSocieties(context.Context, *BoardsRequest) (*ListSocietiesResponse, error)
	ListVenues(context.Context, *BoardsRequest) (*ListVenuesResponse, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*LeaderboardsServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListPeople", Handler: unary(methodListPeople, LeaderboardsServer.ListPeople)},
		{MethodName: "GetRole", Handler: unary(methodGetRole, LeaderboardsServer.GetRole)},
		{MethodName: "ListSocieties", Handler: unary(methodListSocieties, LeaderboardsServer.ListSocieties)},
		{MethodName: "ListVenues", Handler: unary(methodListVenues, LeaderboardsServer.ListVenues)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "camdram/v1/leaderboards",
}

func unary[Req, Resp any](fullMethod string, call func(LeaderboardsServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(LeaderboardsServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(LeaderboardsServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Register adds the service to s.
func Register(s grpc.ServiceRegistrar, srv LeaderboardsServer) {
	s.RegisterService(&ServiceDesc, srv)
}
