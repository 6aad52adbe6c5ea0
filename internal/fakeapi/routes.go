package fakeapi

import (
	"net/http"
)

// Route path constants
const (
	RouteLogin    = "/users/login"
	RouteMe       = "/users/me"
	RouteProducts = "/products/"
	RouteHistory  = "/history"
)

func (s *Server) initRoutes() {
	s.RegisterRouteFunc(http.MethodPost+" "+RouteLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc(http.MethodGet+" "+RouteMe, ChainMiddleware(s.MeHandler(), s.APIMiddleware(s.RequireBearer)...))
	s.RegisterRouteFunc(http.MethodPut+" "+RouteMe, ChainMiddleware(s.UpdateMeHandler(), s.APIMiddleware(s.RequireBearer)...))
	s.RegisterRouteFunc(http.MethodGet+" "+RouteProducts, ChainMiddleware(s.ProductsHandler(), s.APIMiddleware(s.RequireBearer)...))
	s.RegisterRouteFunc(http.MethodGet+" "+RouteHistory, ChainMiddleware(s.HistoryHandler(), s.APIMiddleware(s.RequireBearer)...))
}
