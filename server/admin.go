package server

import (
	"encoding/json"
	"net/http"

	"foosball/logger"
)

// HandleLinkConfig 读取与更新转发链路的弱网参数（热更新）
// GET /admin/link  返回当前配置
// POST /admin/link 以 JSON 载荷更新部分字段
func (h *Hub) HandleLinkConfig(w http.ResponseWriter, r *http.Request) {
	type cfg struct {
		DelayMinMs *int     `json:"delayMinMs,omitempty"`
		DelayMaxMs *int     `json:"delayMaxMs,omitempty"`
		DropProb   *float64 `json:"dropProb,omitempty"`
	}

	switch r.Method {
	case http.MethodGet:
		var cur LinkConditions
		if !h.Query(func(_ *SessionManager, l *LinkSimulator) { cur = l.Conditions() }) {
			http.Error(w, "hub stopped", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, cur)
		return
	case http.MethodPost:
		var body cfg
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		var (
			next   LinkConditions
			setErr error
		)
		ok := h.Query(func(_ *SessionManager, l *LinkSimulator) {
			next = l.Conditions()
			if body.DelayMinMs != nil {
				next.DelayMinMs = *body.DelayMinMs
			}
			if body.DelayMaxMs != nil {
				next.DelayMaxMs = *body.DelayMaxMs
			}
			if body.DropProb != nil {
				next.DropProb = *body.DropProb
			}
			setErr = l.SetConditions(next)
		})
		if !ok {
			http.Error(w, "hub stopped", http.StatusServiceUnavailable)
			return
		}
		if setErr != nil {
			http.Error(w, setErr.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]any{"ok": true, "link": next})
		logger.Log.Infof("link updated: delay=[%d,%d] drop=%.2f", next.DelayMinMs, next.DelayMaxMs, next.DropProb)
		return
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
}

// HandleRooms 输出所有房间的快照
// GET /admin/rooms
func (h *Hub) HandleRooms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var rooms []RoomSnapshot
	if !h.Query(func(s *SessionManager, _ *LinkSimulator) { rooms = s.Snapshot() }) {
		http.Error(w, "hub stopped", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, map[string]any{"rooms": rooms})
}

// HandleMetrics 输出 broker 运行指标
// GET /metrics
func (h *Hub) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	active := -1
	h.Query(func(s *SessionManager, _ *LinkSimulator) { active = s.Rooms().Len() })
	payload := map[string]any{
		"activeRooms": active,
		"metrics":     h.metrics.Snapshot(),
	}
	writeJSON(w, payload)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
