// Package grpcserver exposes the leaderboards over gRPC.
package grpcserver

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/cheeseechops/CamdramAPI/internal/config"
	"github.com/cheeseechops/CamdramAPI/internal/consolidation"
	"github.com/cheeseechops/CamdramAPI/internal/leaderboard"
	"github.com/cheeseechops/CamdramAPI/internal/logging"
	"github.com/cheeseechops/CamdramAPI/internal/rankcache"
	"github.com/cheeseechops/CamdramAPI/internal/roles"
	"github.com/cheeseechops/CamdramAPI/pkg/models"
)

type Server struct {
	Cache  *rankcache.Service
	Limits config.Leaderboards
	Logger *slog.Logger
}

func NewServer(cache *rankcache.Service, limits config.Leaderboards, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Server{Cache: cache, Limits: limits, Logger: logger}
}

// NewGRPCServer returns a grpc.Server speaking the JSON codec with s
// registered and every call logged.
func NewGRPCServer(s *Server, opts ...grpc.ServerOption) *grpc.Server {
	base := []grpc.ServerOption{
		grpc.ForceServerCodec(Codec),
		grpc.ChainUnaryInterceptor(logCalls(s.Logger)),
	}
	gs := grpc.NewServer(append(base, opts...)...)
	Register(gs, s)
	return gs
}

func (s *Server) ListPeople(ctx context.Context, req *ListPeopleRequest) (*leaderboard.PeoplePage, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request required")
	}
	q := leaderboard.PeopleQuery{
		Search:  strings.TrimSpace(req.Search),
		SortCol: req.SortCol,
		SortDir: req.SortDir,
		Page:    req.Page,
		PerPage: req.PerPage,
		MaxPer:  s.Limits.MaxPageSize,
	}
	if q.PerPage == 0 {
		q.PerPage = s.Limits.DefaultPageSize
	}
	if req.ActiveOnly {
		q.Active = s.Cache.ActivePersonIDs(ctx, s.Limits.ActiveWindowMonths)
	}
	page := leaderboard.QueryPeople(s.Cache.PersonRankings(ctx), s.Cache.Popularity(ctx), q)
	return &page, nil
}

func (s *Server) GetRole(ctx context.Context, req *GetRoleRequest) (*GetRoleResponse, error) {
	if req == nil || strings.TrimSpace(req.Role) == "" {
		return nil, status.Error(codes.InvalidArgument, "role required")
	}
	if req.Limit < 0 {
		return nil, status.Error(codes.InvalidArgument, "limit must be >= 0")
	}

	_, byRole := s.Cache.RoleRankings(ctx)
	name, ok := s.findRole(byRole, req.Role)
	if !ok {
		return nil, status.Error(codes.NotFound, "role not found")
	}

	people := byRole[name]
	if req.ActiveOnly {
		active := s.Cache.ActivePersonIDs(ctx, s.Limits.ActiveWindowMonths)
		kept := make([]models.PersonCount, 0, len(people))
		for _, pc := range people {
			if active.Has(pc.PID) {
				kept = append(kept, pc)
			}
		}
		people = kept
	}
	total := len(people)
	if req.Limit > 0 && len(people) > req.Limit {
		people = people[:req.Limit]
	}

	cat := roles.Categorize(name)
	return &GetRoleResponse{
		Role:      name,
		Category:  cat,
		MainGroup: roles.MainGroup(cat),
		NumPeople: total,
		People:    people,
	}, nil
}

// findRole matches the requested title exactly, then through
// canonicalization and the consolidation mapping, then ignoring case.
func (s *Server) findRole(byRole map[string][]models.PersonCount, want string) (string, bool) {
	want = strings.TrimSpace(want)
	if _, ok := byRole[want]; ok {
		return want, true
	}
	if canonical, ok := roles.Canonicalize(want); ok {
		m, err := s.Cache.LoadConsolidationMapping()
		if err != nil {
			s.Logger.Warn("load consolidations failed", logging.Error(err))
		}
		resolved := consolidation.NewResolver(m).Resolve(canonical)
		if _, ok := byRole[resolved]; ok {
			return resolved, true
		}
	}
	folded := roles.Fold(want)
	best := ""
	for name := range byRole {
		if roles.Fold(name) == folded && (best == "" || name < best) {
			best = name
		}
	}
	return best, best != ""
}

func (s *Server) ListSocieties(ctx context.Context, req *BoardsRequest) (*ListSocietiesResponse, error) {
	limit, err := boardLimit(req)
	if err != nil {
		return nil, err
	}
	return &ListSocietiesResponse{Leaderboards: s.Cache.SocietyLeaderboards(ctx, limit)}, nil
}

func (s *Server) ListVenues(ctx context.Context, req *BoardsRequest) (*ListVenuesResponse, error) {
	limit, err := boardLimit(req)
	if err != nil {
		return nil, err
	}
	return &ListVenuesResponse{Leaderboards: s.Cache.VenueLeaderboards(ctx, limit)}, nil
}

func boardLimit(req *BoardsRequest) (int, error) {
	if req == nil {
		return 0, nil
	}
	if req.Limit < 0 {
		return 0, status.Error(codes.InvalidArgument, "limit must be >= 0")
	}
	return req.Limit, nil
}

func logCalls(logger *slog.Logger) grpc.UnaryServerInterceptor {
	log := logging.NewComponentLogger(logger, "grpc")
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		attrs := []any{
			logging.String("method", info.FullMethod),
			logging.String("code", status.Code(err).String()),
			logging.Duration("elapsed", time.Since(start)),
		}
		if err != nil && status.Code(err) != codes.NotFound && status.Code(err) != codes.InvalidArgument {
			log.Error("call failed", append(attrs, logging.Error(err))...)
		} else {
			log.Debug("call", attrs...)
		}
		return resp, err
	}
}
