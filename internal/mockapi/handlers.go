package mockapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/goliatone/go-formchat/pkg/client"
	"github.com/goliatone/go-formchat/pkg/model"
	"github.com/goliatone/go-formchat/pkg/schema"
)

type fieldsEnvelope struct {
	Fields model.Schema `json:"fields"`
}

type refineEnvelope struct {
	Response string `json:"response"`
}

type ack struct {
	Message string `json:"message"`
}

func (s *Server) createForm(c *gin.Context) {
	user, _ := currentUser(c)
	var req client.CreateFormRequest
	if !bindJSON(c, &req) {
		return
	}

	fields := Generate(req.FormName, req.Message)
	draft, err := schema.Serialize(fields)
	if err != nil {
		s.fail(c, err)
		return
	}
	llm, err := json.Marshal(fieldsEnvelope{Fields: fields})
	if err != nil {
		s.fail(c, err)
		return
	}

	form, err := s.store.CreateForm(c.Request.Context(), user.ID, s.newPublicID(), strings.TrimSpace(req.FormName), draft)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.logger.Info().Str("form", form.PublicID).Int("fields", len(fields)).Msg("draft generated")
	c.JSON(http.StatusOK, client.CreateFormResponse{
		FormPublicID: client.ID(form.PublicID),
		FormName:     form.Title,
		LLMResponse:  string(llm),
	})
}

// refineForm answers with the doubly encoded formJson the real service
// emits: a JSON string holding {"response": "<JSON text of {fields}>"}.
func (s *Server) refineForm(c *gin.Context) {
	form, ok := s.ownedForm(c)
	if !ok {
		return
	}
	var req client.RefineRequest
	if !bindJSON(c, &req) {
		return
	}

	current, err := schema.DecodeFinalJSON(form.DraftJSON)
	if err != nil {
		current = model.Schema{}
	}
	next := Refine(current, req.Message)
	draft, err := schema.Serialize(next)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.store.UpdateDraft(c.Request.Context(), form.ID, draft); err != nil {
		s.fail(c, err)
		return
	}

	inner, err := json.Marshal(fieldsEnvelope{Fields: next})
	if err != nil {
		s.fail(c, err)
		return
	}
	outer, err := json.Marshal(refineEnvelope{Response: string(inner)})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, client.RefineResponse{FormJSON: string(outer)})
}

func (s *Server) publishFinal(c *gin.Context) {
	form, ok := s.ownedForm(c)
	if !ok {
		return
	}
	var req client.FinalJSON
	if !bindJSON(c, &req) {
		return
	}
	if _, err := schema.DecodeFinalJSON(req.FinalJSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.Publish(c.Request.Context(), form.ID, req.FinalJSON); err != nil {
		s.fail(c, err)
		return
	}
	s.logger.Info().Str("form", form.PublicID).Msg("form published")
	c.JSON(http.StatusOK, ack{Message: "Form published"})
}

func (s *Server) loadFinal(c *gin.Context) {
	form, ok := s.publishedForm(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, client.FinalJSON{FinalJSON: form.FinalJSON})
}

func (s *Server) submitForm(c *gin.Context) {
	form, ok := s.publishedForm(c)
	if !ok {
		return
	}
	var req client.SubmitRequest
	if !bindJSON(c, &req) {
		return
	}
	if _, err := schema.DecodeSubmittedData(req.FormData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.AddSubmission(c.Request.Context(), form.ID, req.Email, req.FormData); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ack{Message: "Submission received"})
}

func (s *Server) listSubmissions(c *gin.Context) {
	form, ok := s.ownedForm(c)
	if !ok {
		return
	}
	rows, err := s.store.Submissions(c.Request.Context(), form.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]client.Submission, 0, len(rows))
	for _, row := range rows {
		out = append(out, client.Submission{
			ID:            client.ID(formatID(row.ID)),
			Email:         row.Email,
			SubmittedData: row.SubmittedData,
			SubmittedAt:   client.Timestamp{Time: row.SubmittedAt},
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) listForms(c *gin.Context) {
	user, _ := currentUser(c)
	forms, err := s.store.FormsByOwner(c.Request.Context(), user.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]client.FormSummary, 0, len(forms))
	for _, form := range forms {
		out = append(out, client.FormSummary{
			ID:        client.ID(formatID(form.ID)),
			Title:     form.Title,
			PublicID:  client.ID(form.PublicID),
			CreatedAt: client.Timestamp{Time: form.CreatedAt},
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) login(c *gin.Context) {
	var req client.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := s.store.UserByEmail(c.Request.Context(), strings.TrimSpace(req.Email))
	if err != nil || !checkPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": ErrBadCredential.Error()})
		return
	}
	s.issueToken(c, user)
}

func (s *Server) register(c *gin.Context) {
	var req client.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	user, err := s.store.CreateUser(c.Request.Context(), strings.TrimSpace(req.Name), strings.TrimSpace(req.Email), hash)
	if errors.Is(err, ErrEmailTaken) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	s.issueToken(c, user)
}

func (s *Server) issueToken(c *gin.Context, user User) {
	token := newToken()
	if err := s.store.SaveToken(c.Request.Context(), token, user.ID); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, client.AuthResponse{
		Token: token,
		User:  client.AuthUser{Name: user.Name, Email: user.Email},
	})
}

// ownedForm loads the path form and checks it belongs to the caller.
func (s *Server) ownedForm(c *gin.Context) (Form, bool) {
	form, err := s.store.FormByPublicID(c.Request.Context(), c.Param("formId"))
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "form not found"})
		return Form{}, false
	}
	if err != nil {
		s.fail(c, err)
		return Form{}, false
	}
	user, _ := currentUser(c)
	if form.OwnerID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "form belongs to another user"})
		return Form{}, false
	}
	return form, true
}

func (s *Server) publishedForm(c *gin.Context) (Form, bool) {
	form, err := s.store.FormByPublicID(c.Request.Context(), c.Param("formId"))
	if err != nil && !errors.Is(err, ErrNotFound) {
		s.fail(c, err)
		return Form{}, false
	}
	if errors.Is(err, ErrNotFound) || form.FinalJSON == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": ErrNotPublished.Error()})
		return Form{}, false
	}
	return form, true
}

func (s *Server) fail(c *gin.Context, err error) {
	s.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("mock request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func bindJSON(c *gin.Context, out any) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	return true
}
