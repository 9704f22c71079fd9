package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/goliatone/go-formchat/pkg/conversation"
	"github.com/goliatone/go-formchat/pkg/model"
	"github.com/goliatone/go-formchat/pkg/render"
	"github.com/goliatone/go-formchat/pkg/validation"
)

type createRequest struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

type messageRequest struct {
	Text string `json:"text"`
}

type conversationResponse struct {
	ID       string                `json:"id"`
	Snapshot conversation.Snapshot `json:"snapshot"`
}

type errorResponse struct {
	Error  string            `json:"error"`
	Kind   model.ErrorKind   `json:"kind,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (s *Server) handleSuggestions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"suggestions": conversation.Suggestions()})
}

func (s *Server) handleNewConversation(c *gin.Context) {
	id, ctrl, err := s.openConversation()
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.logger.Info().Str("conversation", id).Msg("conversation opened")
	c.JSON(http.StatusCreated, conversationResponse{ID: id, Snapshot: ctrl.Snapshot()})
}

func (s *Server) handleSnapshot(c *gin.Context) {
	ctrl, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, conversationResponse{ID: c.Param("id"), Snapshot: ctrl.Snapshot()})
}

func (s *Server) handleCreate(c *gin.Context) {
	ctrl, ok := s.lookup(c)
	if !ok {
		return
	}
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	snap, err := ctrl.CreatePrompt(s.requestContext(c), req.Name, req.Message)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, conversationResponse{ID: c.Param("id"), Snapshot: snap})
}

func (s *Server) handleMessage(c *gin.Context) {
	ctrl, ok := s.lookup(c)
	if !ok {
		return
	}
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	snap, err := ctrl.SendMessage(s.requestContext(c), req.Text)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, conversationResponse{ID: c.Param("id"), Snapshot: snap})
}

func (s *Server) handlePublish(c *gin.Context) {
	ctrl, ok := s.lookup(c)
	if !ok {
		return
	}
	fields, err := ctrl.Publish(s.requestContext(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":       c.Param("id"),
		"fields":   fields,
		"snapshot": ctrl.Snapshot(),
	})
}

// handlePreview renders the current draft as HTML without a submit target.
func (s *Server) handlePreview(c *gin.Context) {
	ctrl, ok := s.lookup(c)
	if !ok {
		return
	}
	snap := ctrl.Snapshot()
	form := render.Form{ID: snap.Draft.ID, Name: snap.Draft.Name, Fields: snap.Draft.Fields}
	out, err := s.renderer.Render(s.requestContext(c), form, render.RenderOptions{Theme: s.theme})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, s.renderer.ContentType(), out)
}

func (s *Server) lookup(c *gin.Context) (*conversation.Controller, bool) {
	id := strings.TrimSpace(c.Param("id"))
	ctrl, ok := s.conversation(id)
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse{Error: "conversation not found"})
		return nil, false
	}
	return ctrl, true
}

func (s *Server) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	body := errorResponse{Error: err.Error()}

	var kinded model.KindError
	if errors.As(err, &kinded) {
		body.Kind = kinded.Kind()
	}
	var vErr *validation.Error
	if errors.As(err, &vErr) && len(vErr.Fields) > 0 {
		body.Fields = vErr.Fields
	}
	if status >= http.StatusInternalServerError {
		s.logger.Warn().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	c.JSON(status, body)
}

// statusFor maps controller and collaborator errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, validation.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, conversation.ErrBusy),
		errors.Is(err, conversation.ErrInvalidTransition),
		errors.Is(err, conversation.ErrNoDraft),
		errors.Is(err, conversation.ErrPublished):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	var kinded model.KindError
	if errors.As(err, &kinded) {
		switch kinded.Kind() {
		case model.KindTransport, model.KindParse:
			return http.StatusBadGateway
		case model.KindValidation:
			return http.StatusUnprocessableEntity
		}
	}
	return http.StatusInternalServerError
}
