package api

import (
	"encoding/json"
	"net/http"
	"slices"

	"github.com/gorilla/websocket"
	"github.com/tricarty/retrochat95/internal/server"
)

type HealthResponse struct {
	Status      string  `json:"status"`
	Version     string  `json:"version"`
	Uptime      float64 `json:"uptime"`
	OnlineUsers int     `json:"online_users"`
}

func (s *ChatApp) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("json encode: %v", err)
	}
}

func (s *ChatApp) health(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Ping(); err != nil {
		s.log.Println("health: db ping:", err)
		errResp := NewServiceUnavailableError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, HealthResponse{
		Status:      "OK",
		Version:     "BETA",
		Uptime:      s.stats.Uptime().Seconds(),
		OnlineUsers: s.cs.OnlineUsers(),
	})
}

func (s *ChatApp) serveWs(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				// if no origin header, allow the request
				return true
			}

			if slices.Contains(s.allowedOrigins, "*") {
				return true
			}

			return slices.Contains(s.allowedOrigins, origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Println("error upgrading connection:", err)
		return
	}

	client := server.NewClient(conn, s.cs, s.log)
	if err := s.cs.RegisterClient(client); err != nil {
		s.log.Println("register client:", err)
		conn.Close()
		return
	}

	go client.Write()
	go client.Read()
}
