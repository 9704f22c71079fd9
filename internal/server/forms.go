package server

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/goliatone/go-formchat/pkg/model"
	"github.com/goliatone/go-formchat/pkg/render"
	"github.com/goliatone/go-formchat/pkg/validation"
	"github.com/goliatone/go-formchat/pkg/widgets"
)

// submitterEmailField is the optional input carrying an explicit submitter
// address. When absent the value bound to the "email" field is used.
const submitterEmailField = "_submitter_email"

var thanksPage = template.Must(template.New("thanks").Parse(
	`<!doctype html><html><head><meta charset="utf-8"><title>{{.}}</title></head>` +
		`<body><main class="formchat-thanks"><h1>Thank you</h1><p>Your response to {{.}} was recorded.</p></main></body></html>`,
))

type submitRequest struct {
	Email  string         `json:"email"`
	Values map[string]any `json:"values"`
}

func (s *Server) handleFillPage(c *gin.Context) {
	ctx := s.requestContext(c)
	formID := c.Param("publicId")
	fields, err := s.submissions.Load(ctx, formID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.renderFill(c, http.StatusOK, formID, fields, render.RenderOptions{})
}

// handleFillSubmit accepts either an HTML form post or a JSON body. The
// published schema is reloaded so validation always runs against the stored
// structure, never a client-supplied one.
func (s *Server) handleFillSubmit(c *gin.Context) {
	ctx := s.requestContext(c)
	formID := c.Param("publicId")
	fields, err := s.submissions.Load(ctx, formID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	if c.ContentType() == gin.MIMEJSON {
		var req submitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
		if err := s.submissions.Submit(ctx, formID, req.Email, fields, req.Values); err != nil {
			s.writeSubmitError(c, fields, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"status": "submitted"})
		return
	}

	if err := c.Request.ParseForm(); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid form body"})
		return
	}
	values := formValues(fields, c.Request.PostForm)
	email := strings.TrimSpace(c.Request.PostForm.Get(submitterEmailField))

	err = s.submissions.Submit(ctx, formID, email, fields, values)
	var vErr *validation.Error
	switch {
	case err == nil:
		c.Status(http.StatusOK)
		c.Header("Content-Type", "text/html; charset=utf-8")
		if execErr := thanksPage.Execute(c.Writer, formID); execErr != nil {
			s.logger.Warn().Err(execErr).Msg("render thank-you page")
		}
	case errors.As(err, &vErr):
		opts := render.RenderOptions{Values: values}
		render.MapError(fields, err).Apply(&opts)
		s.renderFill(c, http.StatusUnprocessableEntity, formID, fields, opts)
	default:
		s.writeError(c, err)
	}
}

func (s *Server) handleSubmissions(c *gin.Context) {
	list, err := s.submissions.List(s.requestContext(c), c.Param("publicId"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submissions": list})
}

func (s *Server) renderFill(c *gin.Context, status int, formID string, fields model.Schema, opts render.RenderOptions) {
	opts.Action = "/forms/" + url.PathEscape(formID)
	opts.Theme = s.theme
	opts.Hidden = render.MergeHiddenFields(opts.Hidden, render.FormID(formID))

	form := render.Form{ID: formID, Name: formID, Fields: fields}
	out, err := s.renderer.Render(s.requestContext(c), form, opts)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.Data(status, s.renderer.ContentType(), out)
}

func (s *Server) writeSubmitError(c *gin.Context, fields model.Schema, err error) {
	var vErr *validation.Error
	if !errors.As(err, &vErr) {
		s.writeError(c, err)
		return
	}
	mapping := render.MapError(fields, err)
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"error":         vErr.Error(),
		"kind":          model.KindValidation,
		"missingLabels": vErr.MissingLabels,
		"fields":        mapping.Fields,
	})
}

// formValues binds posted inputs to derived ids. Multi-choice fields keep
// every checked value; everything else takes the first.
func formValues(fields model.Schema, posted url.Values) map[string]any {
	values := make(map[string]any, len(fields))
	for _, spec := range widgets.ResolveAll(fields) {
		raw, ok := posted[spec.Name]
		if !ok {
			continue
		}
		if spec.Widget == widgets.WidgetCheckboxGroup {
			selected := make([]any, 0, len(raw))
			for _, v := range raw {
				selected = append(selected, v)
			}
			values[spec.Name] = selected
			continue
		}
		if len(raw) > 0 {
			values[spec.Name] = raw[0]
		}
	}
	return values
}
