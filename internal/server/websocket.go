package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-formchat/internal/logger"
	"github.com/goliatone/go-formchat/pkg/conversation"
	"github.com/goliatone/go-formchat/pkg/speech"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxInboundSize = 8192
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Inbound frame types.
const (
	frameTranscript = "transcript"
	frameSend       = "send"
	frameReset      = "reset"
)

// inboundFrame carries live dictation. A transcript frame holds the full
// transcript so far; send flushes it without waiting for the quiet period.
type inboundFrame struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// handleWebsocket streams conversation snapshots. The current snapshot is sent
// on connect, then one message per transition. Inbound frames feed a speech
// trigger that sends the transcript as a refinement once it stops changing.
func (s *Server) handleWebsocket(c *gin.Context) {
	ctrl, ok := s.lookup(c)
	if !ok {
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()
	defer s.metrics.TrackWebsocket()()

	snapshots, cancel := ctrl.Subscribe()
	defer cancel()

	log := s.logger.With().Str("conversation", c.Param("id")).Logger()
	log.Debug().Msg("websocket client connected")

	ctx, stop := context.WithCancel(logger.WithContext(context.Background(), log))
	defer stop()
	trigger := speech.NewTrigger(func(text string) {
		dictate(ctx, &log, ctrl, text)
	}, speech.WithQuietPeriod(s.quietPeriod))
	defer trigger.Stop()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(maxInboundSize)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var frame inboundFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				log.Debug().Err(err).Msg("websocket frame ignored")
				continue
			}
			switch frame.Type {
			case frameTranscript:
				trigger.Update(frame.Text)
			case frameSend:
				if frame.Text != "" {
					trigger.Update(frame.Text)
				}
				trigger.Flush()
			case frameReset:
				trigger.Reset()
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(ctrl.Snapshot()); err != nil {
		log.Debug().Err(err).Msg("websocket initial write failed")
		return
	}

	for {
		select {
		case snap, ok := <-snapshots:
			if !ok {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(snap); err != nil {
				log.Debug().Err(err).Msg("websocket write failed")
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			log.Debug().Msg("websocket client disconnected")
			return
		}
	}
}

// dictate sends a settled transcript as a refinement. Transcripts arriving
// before a draft exists or while a call is in flight are dropped.
func dictate(ctx context.Context, log *zerolog.Logger, ctrl *conversation.Controller, text string) {
	if ctrl.State() != conversation.StateDrafted {
		log.Debug().Str("state", string(ctrl.State())).Msg("dictation dropped")
		return
	}
	if _, err := ctrl.SendMessage(ctx, text); err != nil {
		log.Warn().Err(err).Msg("dictated message failed")
	}
}
