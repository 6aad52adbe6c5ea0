// Package fakeapi is an in-memory stand-in for the FoodWaste Zero backend.
// It serves the user, product and history endpoints with the same contracts
// as the real API and is used by end-to-end tests and local development.
package fakeapi

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/foodwaste-zero/inventory"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

type Server struct {
	env         string
	mux         *http.ServeMux
	routes      []string
	secret      []byte
	tokenExpiry time.Duration
	bcryptCost  int
	nowTime     func() time.Time

	lock     sync.RWMutex
	users    map[string]*user // keyed by user ID
	emailIDs map[string]string
	products map[string][]inventory.Product
	history  map[string][]inventory.HistoryEntry

	callsLock sync.Mutex
	calls     map[string]int
	failures  map[string][]int // route -> queued forced status codes
}

// ServerOption defines a function type to modify the Server instance.
type ServerOption func(*Server)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServerOption {
	return func(s *Server) {
		s.nowTime = nowFunc
	}
}

// WithTokenExpiry sets the lifetime of issued access tokens.
func WithTokenExpiry(d time.Duration) ServerOption {
	return func(s *Server) {
		s.tokenExpiry = d
	}
}

// WithBcryptCost lowers the hashing cost; tests use bcrypt.MinCost.
func WithBcryptCost(cost int) ServerOption {
	return func(s *Server) {
		s.bcryptCost = cost
	}
}

// WithEnv enables DEV route and request logging.
func WithEnv(env string) ServerOption {
	return func(s *Server) {
		s.env = env
	}
}

func New(secret string, options ...ServerOption) *Server {
	s := &Server{
		mux:         http.NewServeMux(),
		secret:      []byte(secret),
		tokenExpiry: time.Hour,
		bcryptCost:  bcrypt.DefaultCost,
		nowTime:     time.Now,
		users:       make(map[string]*user),
		emailIDs:    make(map[string]string),
		products:    make(map[string][]inventory.Product),
		history:     make(map[string][]inventory.HistoryEntry),
		calls:       make(map[string]int),
		failures:    make(map[string][]int),
	}
	for _, opt := range options {
		opt(s)
	}

	s.initRoutes()
	s.logRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// Calls returns how many requests reached route, e.g. "GET /users/me".
func (s *Server) Calls(route string) int {
	s.callsLock.Lock()
	defer s.callsLock.Unlock()
	return s.calls[route]
}

// FailNext makes the next request to route answer with status instead of
// being handled. Calls queue up.
func (s *Server) FailNext(route string, status int) {
	s.callsLock.Lock()
	defer s.callsLock.Unlock()
	s.failures[route] = append(s.failures[route], status)
}

func (s *Server) recordCall(route string) (forcedStatus int) {
	s.callsLock.Lock()
	defer s.callsLock.Unlock()

	s.calls[route]++
	if queued := s.failures[route]; len(queued) > 0 {
		forcedStatus = queued[0]
		s.failures[route] = queued[1:]
	}
	return forcedStatus
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Info().Msgf("[%-19s] %s", displayMethod, path)
}
