// Package api provides the HTTP control API for a running engine
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/gin-gonic/gin"

	"go-arp/debug"
	"go-arp/midi"
	"go-arp/sequencer"
)

// requestTimeout bounds how long a handler waits for the engine goroutine.
const requestTimeout = 2 * time.Second

// Server exposes engine state and controls over REST.
type Server struct {
	eng    *sequencer.Engine
	router *gin.Engine
}

// NewServer builds the router. The engine must be running for any route
// other than the static lists to answer.
func NewServer(eng *sequencer.Engine) *Server {
	s := &Server{eng: eng, router: gin.New()}
	s.router.Use(gin.Recovery(), logMiddleware(), corsMiddleware())

	s.router.GET("/health", healthCheck)

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/state", s.getState)
		v1.GET("/styles", listStyles)
		v1.GET("/scales", listScales)
		v1.GET("/selects", listSelects)

		v1.POST("/notes", s.addNote)
		v1.DELETE("/notes/:pitch", s.removeNote)
		v1.DELETE("/notes", s.releaseAll)

		v1.PUT("/arp", s.updateArp)
		v1.PUT("/euclid", s.updateEuclid)
		v1.POST("/euclid/randomize", s.randomizePitches)

		v1.PUT("/track", s.setTrack)
		v1.POST("/randomize", s.randomize)
		v1.POST("/undo", s.undo)

		v1.GET("/phrase", s.getPhrase)
		v1.POST("/phrase/:action", s.phraseAction)
	}
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	debug.Log("api", "listening on %s", addr)

	select {
	case err := <-errc:
		return fault.Wrap(err, fmsg.With("serve "+addr))
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fault.Wrap(err, fmsg.With("shutdown api"))
		}
		if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fault.Wrap(err, fmsg.With("serve "+addr))
		}
		return nil
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func logMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		debug.Log("api", "%s %s %d %v", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// do runs fn on the engine goroutine and answers with the resulting state.
func (s *Server) do(c *gin.Context, fn func()) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	var st sequencer.EngineState
	err := s.eng.Do(ctx, func() {
		fn()
		st = s.eng.State()
	})
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "engine not responding"})
		return
	}
	c.JSON(http.StatusOK, st)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "go-arp",
	})
}

func listStyles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"styles": sequencer.StyleNames()})
}

func listScales(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"scales": sequencer.ScaleNames()})
}

func listSelects(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"selects": sequencer.SelectNames()})
}

func (s *Server) getState(c *gin.Context) {
	s.do(c, func() {})
}

type noteRequest struct {
	Pitch    *int `json:"pitch" binding:"required,min=0,max=127"`
	Velocity int  `json:"velocity" binding:"min=0,max=127"`
}

func (s *Server) addNote(c *gin.Context) {
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Velocity == 0 {
		req.Velocity = 100
	}
	s.do(c, func() {
		s.eng.HandleNote(midi.NoteEvent{Note: uint8(*req.Pitch), Velocity: uint8(req.Velocity)})
	})
}

func (s *Server) removeNote(c *gin.Context) {
	pitch, err := strconv.Atoi(c.Param("pitch"))
	if err != nil || pitch < 0 || pitch > 127 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pitch must be 0-127"})
		return
	}
	s.do(c, func() {
		s.eng.HandleNote(midi.NoteEvent{Note: uint8(pitch)})
	})
}

func (s *Server) releaseAll(c *gin.Context) {
	s.do(c, func() { s.eng.Arp.ReleaseAll() })
}

type arpRequest struct {
	Style       *string `json:"style"`
	Speed       *int    `json:"speed" binding:"omitempty,min=1,max=32"`
	Octaves     *int    `json:"octaves" binding:"omitempty,min=0,max=4"`
	Times       *int    `json:"times" binding:"omitempty,min=1,max=8"`
	Retrigger   *string `json:"retrigger"`
	RetrigSpeed *int    `json:"retrigSpeed" binding:"omitempty,min=1"`
	Velocity    *int    `json:"velocity" binding:"omitempty,min=0,max=127"`
}

func (s *Server) updateArp(c *gin.Context) {
	var req arpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	var (
		style  sequencer.Style
		retrig sequencer.Retrigger
		ok     bool
	)
	if req.Style != nil {
		if style, ok = sequencer.ParseStyle(*req.Style); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown style " + *req.Style})
			return
		}
	}
	if req.Retrigger != nil {
		if retrig, ok = sequencer.ParseRetrigger(*req.Retrigger); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown retrigger " + *req.Retrigger})
			return
		}
	}

	s.do(c, func() {
		a := s.eng.Arp
		if req.Style != nil {
			a.SetStyle(style)
		}
		if req.Speed != nil {
			a.SetSpeed(*req.Speed)
		}
		if req.Octaves != nil {
			a.SetOctaves(*req.Octaves)
		}
		if req.Times != nil {
			a.SetTimes(*req.Times)
		}
		if req.Retrigger != nil || req.RetrigSpeed != nil {
			st := a.State()
			r, _ := sequencer.ParseRetrigger(st.Retrigger)
			every := st.RetrigSpeed
			if req.Retrigger != nil {
				r = retrig
			}
			if req.RetrigSpeed != nil {
				every = *req.RetrigSpeed
			}
			a.SetRetrigger(r, every)
		}
		if req.Velocity != nil {
			a.SetVelocity(*req.Velocity)
		}
	})
}

type euclidRequest struct {
	Pulses      *int  `json:"pulses" binding:"omitempty,min=0"`
	Steps       *int  `json:"steps" binding:"omitempty,min=1,max=64"`
	Rotation    *int  `json:"rotation"`
	Scale       *int  `json:"scale"`
	Octaves     *int  `json:"octaves" binding:"omitempty,min=0,max=4"`
	PitchLength *int  `json:"pitchLength" binding:"omitempty,min=1,max=16"`
	NoteLength  *int  `json:"noteLength" binding:"omitempty,min=0"`
	BasePitch   *int  `json:"basePitch" binding:"omitempty,min=0,max=127"`
	Muted       *bool `json:"muted"`
}

func (s *Server) updateEuclid(c *gin.Context) {
	var req euclidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s.do(c, func() {
		p := s.eng.Pitch
		if req.Pulses != nil || req.Steps != nil || req.Rotation != nil {
			e := p.Euclid
			if req.Pulses != nil {
				e.Pulses = *req.Pulses
			}
			if req.Steps != nil {
				e.Steps = *req.Steps
			}
			if req.Rotation != nil {
				e.Rotation = *req.Rotation
			}
			p.Euclid.Set(e.Pulses, e.Steps, e.Rotation)
		}
		if req.Scale != nil {
			p.SetScale(*req.Scale)
		}
		if req.Octaves != nil {
			p.SetOctaves(*req.Octaves)
		}
		if req.PitchLength != nil {
			p.SetPitchLength(*req.PitchLength)
		}
		if req.NoteLength != nil {
			p.SetNoteLength(*req.NoteLength)
		}
		if req.BasePitch != nil {
			p.SetBasePitch(*req.BasePitch)
		}
		if req.Muted != nil {
			p.SetMuted(*req.Muted)
		}
	})
}

func (s *Server) randomizePitches(c *gin.Context) {
	s.do(c, func() { s.eng.Pitch.Randomize() })
}

type trackRequest struct {
	Track *int `json:"track" binding:"required,min=0,max=15"`
}

func (s *Server) setTrack(c *gin.Context) {
	var req trackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s.do(c, func() { s.eng.Random.SetTrack(*req.Track) })
}

type randomizeRequest struct {
	Amount int    `json:"amount" binding:"min=-127,max=127"`
	Select string `json:"select"`
}

func (s *Server) randomize(c *gin.Context) {
	var req randomizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Select == "" {
		req.Select = "ALL"
	}
	sel, ok := sequencer.ParseSelect(req.Select)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown select " + req.Select})
		return
	}
	s.do(c, func() { s.eng.Random.Randomize(req.Amount, sel) })
}

func (s *Server) undo(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	var undone bool
	var st sequencer.EngineState
	if err := s.eng.Do(ctx, func() {
		undone = s.eng.Random.Undo()
		st = s.eng.State()
	}); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "engine not responding"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"undone": undone, "state": st})
}

func (s *Server) getPhrase(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	var ph sequencer.PhraseState
	if err := s.eng.Do(ctx, func() { ph = s.eng.Phrase.State() }); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "engine not responding"})
		return
	}
	c.JSON(http.StatusOK, ph)
}

func (s *Server) phraseAction(c *gin.Context) {
	var fn func()
	switch c.Param("action") {
	case "arm":
		fn = func() { s.eng.Phrase.Arm(s.eng.Counter()) }
	case "play":
		fn = func() { s.eng.Phrase.Play(s.eng.Counter()) }
	case "stop":
		fn = func() { s.eng.Phrase.Stop() }
	case "clear":
		fn = func() { s.eng.Phrase.Clear() }
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown phrase action " + c.Param("action")})
		return
	}
	s.do(c, fn)
}
