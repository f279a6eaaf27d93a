package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"
)

// Server HTTP 服务，包装 http.Server 并负责优雅关闭
type Server struct {
	addr   string
	server *http.Server
}

// NewServer 创建服务，addr 形如 ":8080"
func NewServer(addr string, handler *Handler) *Server {
	return &Server{
		addr: addr,
		server: &http.Server{
			Handler:           handler.Routes(),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Start 阻塞运行，直到 Stop 被调用或监听失败
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("监听 %s 失败: %w", s.addr, err)
	}
	return s.Serve(ln)
}

// Serve 在已有的 listener 上提供服务
func (s *Server) Serve(ln net.Listener) error {
	log.Printf("🚀 API 服务启动，监听 %s", ln.Addr())
	if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("API 服务异常退出: %w", err)
	}
	return nil
}

// Stop 等待进行中的请求完成后关闭
func (s *Server) Stop(ctx context.Context) error {
	log.Println("👋 正在关闭 API 服务...")
	return s.server.Shutdown(ctx)
}
