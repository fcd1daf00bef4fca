package control

import (
	"errors"
	"net"
	"os"

	"github.com/sirupsen/logrus"

	"protov2.dev/core/relay"
	"protov2.dev/core/tlv"
)

var log = logrus.WithField("component", "control")

// Server answers control-surface requests against one Relay. One Server
// per relay domain, since backpressure policy (and therefore which
// BackpressurePolicy Subscribe applies) is decided per domain (spec.md
// §4.7).
type Server struct {
	relay  *relay.Relay
	domain tlv.RelayDomain
	ln     net.Listener
}

// Listen creates (removing any stale socket file first) a Unix-domain
// socket at path and returns a Server ready to Serve.
func Listen(path string, r *relay.Relay, domain tlv.RelayDomain) (*Server, error) {
	if err := os.RemoveAll(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	return &Server{relay: r, domain: domain, ln: ln}, nil
}

// Addr returns the listener's address (the socket path).
func (s *Server) Addr() string { return s.ln.Addr().String() }

// Close stops accepting new connections.
func (s *Server) Close() error { return s.ln.Close() }

// Serve accepts connections until the listener is closed, handling each on
// its own goroutine. It returns nil on a clean shutdown (Close called from
// elsewhere).
func (s *Server) Serve() error {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	for {
		var req Request
		if err := readFrame(conn, &req); err != nil {
			return
		}
		resp := s.dispatch(req)
		if err := writeFrame(conn, resp); err != nil {
			log.WithError(err).Warn("control: write response failed")
			return
		}
	}
}

func (s *Server) dispatch(req Request) Response {
	switch req.Op {
	case OpSubscribe:
		policy := relay.DefaultBackpressure(s.domain)
		if _, err := s.relay.Subscribe(req.ConsumerID, req.Topic, policy); err != nil {
			return errResponse(err)
		}
		return Response{OK: true}

	case OpUnsubscribe:
		if err := s.relay.Unsubscribe(req.ConsumerID, req.Topic); err != nil {
			return errResponse(err)
		}
		return Response{OK: true}

	case OpUnsubscribeAll:
		if err := s.relay.UnsubscribeAll(req.ConsumerID); err != nil {
			return errResponse(err)
		}
		return Response{OK: true}

	case OpListTopics:
		return Response{OK: true, Topics: s.relay.ListTopics()}

	case OpStats:
		stats := s.relay.Stats()
		return Response{OK: true, Stats: &stats}

	default:
		return Response{OK: false, Error: "control: unknown op"}
	}
}

func errResponse(err error) Response {
	return Response{OK: false, Error: err.Error()}
}
