package server

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/san-kum/navtrace/internal/export"
	"github.com/san-kum/navtrace/internal/plotly"
	"github.com/san-kum/navtrace/internal/session"
	"github.com/san-kum/navtrace/internal/storage"
)

const defaultUploadName = "upload.json"

func (s *Server) HandleIndex(c echo.Context) error {
	var buf bytes.Buffer
	if err := indexPage.Execute(&buf, struct{ CDN, Version string }{s.opts.PlotlyCDN, s.opts.Version}); err != nil {
		return NewInternalError("render index", err)
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

func (s *Server) HandleViewerJS(c echo.Context) error {
	data, err := webFiles.ReadFile("web/viewer.js")
	if err != nil {
		return NewInternalError("viewer script missing", err)
	}
	return c.Blob(http.StatusOK, "application/javascript", data)
}

func (s *Server) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"version":  s.opts.Version,
		"sessions": len(s.mgr.List()),
	})
}

// HandleUpload accepts a multipart "file" field or a raw JSON body.
func (s *Server) HandleUpload(c echo.Context) error {
	name, raw, err := readUpload(c)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return NewValidationError("file")
	}

	sess, current, err := s.mgr.Load(c.Request().Context(), name, raw)
	if err != nil {
		return err
	}
	c.Logger().Infof("loaded %s as %s (%d steps, %d agents, current=%t)",
		name, sess.ID[:8], sess.Trace.Steps(), sess.Trace.NumAgents(), current)

	if s.opts.Persist && s.store != nil {
		storedID, err := s.store.Save(name, raw, sess.Trace)
		if err != nil {
			c.Logger().Warnf("persist %s: %v", name, err)
		} else {
			s.mgr.SetStoredID(sess.ID, storedID)
		}
	}

	return c.JSON(http.StatusCreated, s.mgr.Info(sess))
}

func readUpload(c echo.Context) (string, []byte, error) {
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return "", nil, NewBadRequestError("cannot open upload", err)
		}
		defer f.Close()
		raw, err := io.ReadAll(f)
		if err != nil {
			return "", nil, NewBadRequestError("cannot read upload", err)
		}
		return fh.Filename, raw, nil
	} else if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		return "", nil, NewBadRequestError("invalid multipart body", err)
	}

	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return "", nil, NewBadRequestError("cannot read body", err)
	}
	name := c.QueryParam("name")
	if name == "" {
		name = defaultUploadName
	}
	return name, raw, nil
}

func (s *Server) HandleList(c echo.Context) error {
	return c.JSON(http.StatusOK, s.mgr.List())
}

func (s *Server) HandleGet(c echo.Context) error {
	sess, err := s.mgr.Get(c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.mgr.Info(sess))
}

func (s *Server) HandleCurrentFigure(c echo.Context) error {
	sess, err := s.mgr.Current()
	if err != nil {
		return err
	}
	return s.writeFigure(c, sess)
}

func (s *Server) HandleFigure(c echo.Context) error {
	sess, err := s.mgr.Get(c.Param("id"))
	if err != nil {
		return err
	}
	return s.writeFigure(c, sess)
}

func (s *Server) writeFigure(c echo.Context, sess *session.Session) error {
	c.Response().Header().Set("X-Trace-Id", sess.ID)
	if c.QueryParam("format") == "msgpack" {
		data, err := plotly.MarshalMsgpack(sess.Figure)
		if err != nil {
			return NewInternalError("failed to encode msgpack", err)
		}
		return c.Blob(http.StatusOK, "application/msgpack", data)
	}
	return c.JSON(http.StatusOK, sess.Figure)
}

func (s *Server) HandleFrameSVG(c echo.Context) error {
	sess, err := s.mgr.Get(c.Param("id"))
	if err != nil {
		return err
	}
	step, err := strconv.Atoi(c.Param("step"))
	if err != nil {
		return NewValidationError("step")
	}
	if step < 0 || step >= len(sess.Scenes) {
		return NewNotFoundError("frame", c.Param("step"))
	}

	w, h := s.opts.SVGWidth, s.opts.SVGHeight
	if v, err := strconv.Atoi(c.QueryParam("width")); err == nil && v > 0 {
		w = v
	}
	if v, err := strconv.Atoi(c.QueryParam("height")); err == nil && v > 0 {
		h = v
	}
	svg := export.SceneToSVG(sess.Scenes[step], w, h, sess.Bounds)
	return c.Blob(http.StatusOK, "image/svg+xml", []byte(svg))
}

func (s *Server) HandleSelect(c echo.Context) error {
	id := c.Param("id")
	if err := s.mgr.Select(id); err != nil {
		return err
	}
	sess, err := s.mgr.Get(id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.mgr.Info(sess))
}

func (s *Server) HandleDelete(c echo.Context) error {
	if err := s.mgr.Delete(c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleLibraryList lists stored traces, filtered by the kind, name,
// min_steps, min_agents and limit query parameters.
func (s *Server) HandleLibraryList(c echo.Context) error {
	f := storage.Filter{
		Kind: c.QueryParam("kind"),
		Name: c.QueryParam("name"),
	}
	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"min_steps", &f.MinSteps},
		{"min_agents", &f.MinAgents},
		{"limit", &f.Limit},
	} {
		v := c.QueryParam(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return NewValidationError(p.name)
		}
		*p.dst = n
	}

	list, err := s.store.Find(f)
	if err != nil {
		return NewInternalError("failed to list library", err)
	}
	return c.JSON(http.StatusOK, list)
}

// HandleLibraryLoad opens a stored trace as a new session.
func (s *Server) HandleLibraryLoad(c echo.Context) error {
	id := c.Param("id")
	meta, err := s.store.Load(id)
	if err != nil {
		return err
	}
	tr, err := s.store.LoadTrace(id)
	if err != nil {
		return err
	}
	sess, _, err := s.mgr.Add(c.Request().Context(), meta.Name, tr)
	if err != nil {
		return err
	}
	s.mgr.SetStoredID(sess.ID, id)
	return c.JSON(http.StatusCreated, s.mgr.Info(sess))
}

func (s *Server) HandleLibraryDelete(c echo.Context) error {
	if err := s.store.Delete(c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
