package sync

import (
	"bufio"
	"errors"
	"io"
	"net"
	"sync"

	"github.com/cheeseechops/CamdramAPI/internal/logging"
)

// Server accepts newline-delimited JSON subscribers over plain TCP.
type Server struct {
	Addr string
	Hub  *Hub

	mu sync.Mutex
	ln net.Listener
}

func NewServer(addr string, hub *Hub) *Server {
	return &Server{Addr: addr, Hub: hub}
}

// Run listens on Addr and blocks until Close is called.
func (s *Server) Run() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts subscribers on ln. It returns nil once the listener is
// closed through Close.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	log := logging.NewComponentLogger(s.Hub.logger, "tcp-sync")
	log.Info("listening", logging.String("addr", ln.Addr().String()))

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Warn("accept failed", logging.Error(err))
			continue
		}

		s.Hub.Add(conn)
		s.Hub.welcomeTCP(conn)
		log.Debug("client connected", logging.String("remote", conn.RemoteAddr().String()))

		go func(c net.Conn) {
			defer func() {
				s.Hub.Remove(c)
				log.Debug("client disconnected", logging.String("remote", c.RemoteAddr().String()))
			}()
			// Subscribers never send anything meaningful; drain until EOF.
			_, _ = io.Copy(io.Discard, bufio.NewReader(c))
		}(conn)
	}
}

func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Close()
}
