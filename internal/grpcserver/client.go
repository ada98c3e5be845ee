package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/cheeseechops/CamdramAPI/internal/leaderboard"
)

// Client calls a Leaderboards service.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Dial opens a plaintext connection to addr that uses the JSON codec.
func Dial(addr string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	base := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(Codec)),
	}
	return grpc.NewClient(addr, append(base, opts...)...)
}

func (c *Client) ListPeople(ctx context.Context, req *ListPeopleRequest) (*leaderboard.PeoplePage, error) {
	out := new(leaderboard.PeoplePage)
	if err := c.cc.Invoke(ctx, methodListPeople, req, out, grpc.ForceCodec(Codec)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetRole(ctx context.Context, req *GetRoleRequest) (*GetRoleResponse, error) {
	out := new(GetRoleResponse)
	if err := c.cc.Invoke(ctx, methodGetRole, req, out, grpc.ForceCodec(Codec)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListSocieties(ctx context.Context, req *BoardsRequest) (*ListSocietiesResponse, error) {
	out := new(ListSocietiesResponse)
	if err := c.cc.Invoke(ctx, methodListSocieties, req, out, grpc.ForceCodec(Codec)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListVenues(ctx context.Context, req *BoardsRequest) (*ListVenuesResponse, error) {
	out := new(ListVenuesResponse)
	if err := c.cc.Invoke(ctx, methodListVenues, req, out, grpc.ForceCodec(Codec)); err != nil {
		return nil, err
	}
	return out, nil
}
