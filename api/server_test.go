package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"go-arp/clock"
	"go-arp/sequencer"
)

type nullOut struct {
	mu     sync.Mutex
	params int
}

func (*nullOut) NoteOn(channel, note, velocity uint8) {}
func (*nullOut) NoteOff(channel, note uint8)          {}
func (o *nullOut) SetTrackParam(track, param, value uint8) {
	o.mu.Lock()
	o.params++
	o.mu.Unlock()
}

func newTestServer(t *testing.T) (*Server, chan clock.Tick) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	eng := sequencer.NewEngine(&nullOut{}, sequencer.Options{UndoDepth: 1, Seed: 7})
	ticks := make(chan clock.Tick)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		eng.Run(ctx, ticks)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return NewServer(eng), ticks
}

func doRequest(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeState(t *testing.T, w *httptest.ResponseRecorder) sequencer.EngineState {
	t.Helper()
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var st sequencer.EngineState
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatal(err)
	}
	return st
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	w := doRequest(t, s, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}

func TestNotesBuildBuffer(t *testing.T) {
	s, _ := newTestServer(t)
	for _, p := range []int{67, 60, 64} {
		doRequest(t, s, http.MethodPost, "/api/v1/notes", gin.H{"pitch": p, "velocity": 90})
	}
	st := decodeState(t, doRequest(t, s, http.MethodPut, "/api/v1/arp", gin.H{"style": "updown"}))
	if !slices.Equal(st.Arp.Buffer, []int{60, 64, 67, 64}) {
		t.Errorf("buffer = %v", st.Arp.Buffer)
	}

	st = decodeState(t, doRequest(t, s, http.MethodDelete, "/api/v1/notes/64", nil))
	if !slices.Equal(st.Arp.Buffer, []int{60, 67}) {
		t.Errorf("buffer after release = %v", st.Arp.Buffer)
	}

	st = decodeState(t, doRequest(t, s, http.MethodDelete, "/api/v1/notes", nil))
	if st.Arp.Playing || len(st.Arp.Held) != 0 {
		t.Errorf("release all left %+v", st.Arp)
	}
}

func TestNoteValidation(t *testing.T) {
	s, _ := newTestServer(t)
	tests := []struct {
		method, path string
		body         any
	}{
		{http.MethodPost, "/api/v1/notes", gin.H{"pitch": 200}},
		{http.MethodPost, "/api/v1/notes", gin.H{"velocity": 10}},
		{http.MethodDelete, "/api/v1/notes/abc", nil},
		{http.MethodPut, "/api/v1/arp", gin.H{"style": "sideways"}},
		{http.MethodPut, "/api/v1/arp", gin.H{"speed": 99}},
		{http.MethodPost, "/api/v1/randomize", gin.H{"amount": 10, "select": "nothing"}},
		{http.MethodPut, "/api/v1/track", gin.H{"track": 16}},
	}
	for _, tt := range tests {
		if w := doRequest(t, s, tt.method, tt.path, tt.body); w.Code != http.StatusBadRequest {
			t.Errorf("%s %s %v: status = %d, want 400", tt.method, tt.path, tt.body, w.Code)
		}
	}
}

func TestArpSettings(t *testing.T) {
	s, _ := newTestServer(t)
	st := decodeState(t, doRequest(t, s, http.MethodPut, "/api/v1/arp", gin.H{
		"speed": 2, "octaves": 1, "times": 2, "retrigger": "beat", "retrigSpeed": 8,
	}))
	a := st.Arp
	if a.Speed != 2 || a.Octaves != 1 || a.Times != 2 || a.Retrigger != "BEAT" || a.RetrigSpeed != 8 {
		t.Errorf("arp = %+v", a)
	}
}

func TestEuclidSettings(t *testing.T) {
	s, _ := newTestServer(t)
	st := decodeState(t, doRequest(t, s, http.MethodPut, "/api/v1/euclid", gin.H{
		"pulses": 5, "steps": 8, "pitchLength": 6, "noteLength": 0, "muted": true,
	}))
	p := st.Pitch
	if p.Pulses != 5 || p.Steps != 8 || len(p.Pitches) != 6 || p.NoteLength != 0 || !p.Muted {
		t.Errorf("pitch = %+v", p)
	}
	hits := 0
	for _, h := range p.Pattern {
		if h {
			hits++
		}
	}
	if hits != 5 {
		t.Errorf("pattern %v has %d hits", p.Pattern, hits)
	}
}

func TestRandomizeAndUndo(t *testing.T) {
	s, _ := newTestServer(t)
	before := decodeState(t, doRequest(t, s, http.MethodPut, "/api/v1/track", gin.H{"track": 2}))
	if before.Track != 2 {
		t.Fatalf("track = %d", before.Track)
	}

	st := decodeState(t, doRequest(t, s, http.MethodPost, "/api/v1/randomize", gin.H{"amount": 127, "select": "all"}))
	if st.Params == before.Params || st.Undo != 1 {
		t.Fatalf("randomize had no effect: %+v", st)
	}

	w := doRequest(t, s, http.MethodPost, "/api/v1/undo", nil)
	var res struct {
		Undone bool                  `json:"undone"`
		State  sequencer.EngineState `json:"state"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if !res.Undone || res.State.Params != before.Params {
		t.Errorf("undo = %v, params %v, want %v", res.Undone, res.State.Params, before.Params)
	}

	w = doRequest(t, s, http.MethodPost, "/api/v1/undo", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.Undone {
		t.Error("second undo succeeded")
	}
}

func TestPhraseRoutes(t *testing.T) {
	s, ticks := newTestServer(t)
	doRequest(t, s, http.MethodPost, "/api/v1/notes", gin.H{"pitch": 62})
	decodeState(t, doRequest(t, s, http.MethodPost, "/api/v1/phrase/arm", nil))
	for i := 0; i < 3; i++ {
		ticks <- clock.Tick{}
	}

	w := doRequest(t, s, http.MethodGet, "/api/v1/phrase", nil)
	var ph sequencer.PhraseState
	if err := json.Unmarshal(w.Body.Bytes(), &ph); err != nil {
		t.Fatal(err)
	}
	if ph.Mode != "REC" || !slices.Equal(ph.Pitches[:3], []int{62, 62, 62}) || ph.Pitches[3] != -1 {
		t.Errorf("phrase = %+v", ph)
	}

	if w := doRequest(t, s, http.MethodPost, "/api/v1/phrase/rewind", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown action status = %d", w.Code)
	}
}

func TestLists(t *testing.T) {
	s, _ := newTestServer(t)
	w := doRequest(t, s, http.MethodGet, "/api/v1/styles", nil)
	var res struct {
		Styles []string `json:"styles"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if len(res.Styles) != int(sequencer.NumStyles) {
		t.Errorf("styles = %v", res.Styles)
	}
}
