package web

import (
	"bytes"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/thiagokokada/storygraph/internal/buildinfo"
	"github.com/thiagokokada/storygraph/internal/detail"
	"github.com/thiagokokada/storygraph/internal/interact"
	"github.com/thiagokokada/storygraph/internal/story"
)

type branchJSON struct {
	Name    string           `json:"name"`
	Parent  string           `json:"parent,omitempty"`
	From    story.CommitID   `json:"from,omitempty"`
	Commits []story.CommitID `json:"commits"`
}

type commitJSON struct {
	ID        story.CommitID   `json:"id"`
	Branch    string           `json:"branch"`
	Subject   string           `json:"subject"`
	Tag       string           `json:"tag,omitempty"`
	Body      string           `json:"body,omitempty"`
	Hash      string           `json:"hash"`
	Parents   []story.CommitID `json:"parents"`
	Merge     bool             `json:"merge"`
	Expanded  bool             `json:"expanded"`
	HasDetail bool             `json:"hasDetail"`
}

type graphJSON struct {
	Session    string       `json:"session"`
	Story      string       `json:"story"`
	Generation uint64       `json:"generation"`
	Branches   []branchJSON `json:"branches"`
	Commits    []commitJSON `json:"commits"`
}

type toggleJSON struct {
	ID         story.CommitID `json:"id"`
	Expanded   bool           `json:"expanded"`
	Generation uint64         `json:"generation"`
}

type detailJSON struct {
	ID      story.CommitID `json:"id"`
	Subject string         `json:"subject"`
	Kind    string         `json:"kind"`
	File    string         `json:"file,omitempty"`
	HTML    string         `json:"html"`
}

type errorJSON struct {
	Error string `json:"error"`
}

type pageData struct {
	Title     string
	Container string
	Version   string
	Session   string
	SVG       template.HTML
}

func (s *Server) routes(page *template.Template) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.logRequests)
	router.SetHTMLTemplate(page)

	router.GET("/", s.handleIndex)
	router.GET("/graph.svg", s.handleSVG)
	router.GET("/ws", s.handleWebSocket)
	api := router.Group("/api")
	{
		api.GET("/graph", s.handleGraph)
		api.POST("/collapse", s.handleCollapse)
		api.POST("/commits/:id/toggle", s.handleToggle)
		api.GET("/commits/:id/detail", s.handleDetail)
	}
	return router
}

func (s *Server) logRequests(c *gin.Context) {
	c.Next()
	s.log.Debug("http request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", c.Writer.Status()),
	)
}

func (s *Server) handleIndex(c *gin.Context) {
	s.mu.Lock()
	data := pageData{
		Title:     s.sess.Script.Name() + " - " + buildinfo.Name,
		Container: s.sess.Script.Container,
		Version:   buildinfo.Version(),
		Session:   s.sess.ID.String(),
		SVG:       inlineSVG(s.engine.Bytes()),
	}
	s.mu.Unlock()
	c.HTML(http.StatusOK, "index.html.tmpl", data)
}

func (s *Server) handleSVG(c *gin.Context) {
	s.mu.Lock()
	body := s.engine.Bytes()
	s.mu.Unlock()
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/svg+xml", body)
}

func (s *Server) handleGraph(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.sess.Graph
	out := graphJSON{
		Session:    s.sess.ID.String(),
		Story:      s.sess.Script.Name(),
		Generation: g.Generation(),
	}
	for _, b := range g.Branches() {
		bj := branchJSON{Name: b.Name(), From: b.From(), Commits: b.Commits()}
		if p := b.Parent(); p != nil {
			bj.Parent = p.Name()
		}
		out.Branches = append(out.Branches, bj)
	}
	for _, cm := range g.Commits() {
		out.Commits = append(out.Commits, commitJSON{
			ID:        cm.ID(),
			Branch:    cm.BranchName(),
			Subject:   cm.Subject(),
			Tag:       cm.Tag(),
			Body:      cm.Body(),
			Hash:      cm.Hash(),
			Parents:   cm.Parents(),
			Merge:     cm.IsMerge(),
			Expanded:  cm.ShowDetail(),
			HasDetail: cm.HasDetail(),
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleToggle(c *gin.Context) {
	id, ok := commitParam(c)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	expanded, err := s.sess.Controller.Toggle(id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toggleJSON{ID: id, Expanded: expanded, Generation: s.sess.Graph.Generation()})
}

func (s *Server) handleCollapse(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.sess.Controller.CollapseAll(); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"generation": s.sess.Graph.Generation()})
}

func (s *Server) handleDetail(c *gin.Context) {
	id, ok := commitParam(c)
	if !ok {
		return
	}
	s.mu.Lock()
	cm, err := s.sess.Graph.Commit(id)
	files := s.sess.Script.Files
	s.mu.Unlock()
	if err != nil {
		abortWithError(c, err)
		return
	}
	payload := cm.Detail()
	if payload == "" {
		payload = cm.Body()
	}
	content, err := detail.Resolve(payload, files)
	if err != nil {
		abortWithError(c, err)
		return
	}
	html, err := content.HTML(detail.Style(s.dark))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, detailJSON{
		ID:      id,
		Subject: cm.Subject(),
		Kind:    content.Kind.String(),
		File:    content.Name,
		HTML:    html,
	})
}

func (s *Server) handleWebSocket(c *gin.Context) {
	s.mu.Lock()
	hello := Event{Type: "hello", Session: s.sess.ID.String(), Generation: s.sess.Graph.Generation()}
	s.mu.Unlock()
	s.hub.serve(c.Writer, c.Request, hello)
}

// inlineSVG drops the XML prolog so the document can sit inside HTML.
func inlineSVG(doc []byte) template.HTML {
	if i := bytes.Index(doc, []byte("<svg")); i > 0 {
		doc = doc[i:]
	}
	return template.HTML(doc)
}

func commitParam(c *gin.Context) (story.CommitID, bool) {
	n, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorJSON{Error: "invalid commit id"})
		return 0, false
	}
	return story.CommitID(n), true
}

func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, story.ErrInvalidReference):
		status = http.StatusNotFound
	case errors.Is(err, interact.ErrReentrant):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		slog.Error("request failed", slog.String("path", c.Request.URL.Path), slog.Any("error", err))
	}
	c.AbortWithStatusJSON(status, errorJSON{Error: err.Error()})
}
