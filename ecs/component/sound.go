package component

import (
	"sync"

	"github.com/gopxl/beep"
	"github.com/milk9111/scenecore/ref"
)

const soundRecordVersion = 1

// AudioLock guards playback state shared with the audio mixer, which reads it
// from its own goroutine. The audio package replaces it with the speaker lock.
var AudioLock sync.Locker = &sync.Mutex{}

// Sound holds a clip's playback state. Every read or write of that state goes
// through the accessors below, which hold AudioLock.
type Sound struct {
	Base
	Clip     string
	Volume   float64
	Loop     bool
	Autoplay bool

	lock   sync.Locker
	ctrl   *beep.Ctrl
	stream beep.StreamSeeker
}

var _ Component = (*Sound)(nil)

// Playback is a snapshot of a sound's mixer-facing state.
type Playback struct {
	Playing  bool
	Position int
	Length   int
}

func NewSound(table *ref.Table, clip string) *Sound {
	s := &Sound{Clip: clip, Volume: 1, ctrl: &beep.Ctrl{Paused: true}}
	s.init(table, KindSound, s, s.cleanup)
	return s
}

// SetLocker overrides AudioLock for this sound.
func (s *Sound) SetLocker(l sync.Locker) {
	s.lock = l
}

func (s *Sound) locker() sync.Locker {
	if s.lock != nil {
		return s.lock
	}
	return AudioLock
}

// SetStream attaches decoded audio. The sound keeps its paused state.
func (s *Sound) SetStream(stream beep.StreamSeeker) {
	l := s.locker()
	l.Lock()
	defer l.Unlock()
	s.stream = stream
	if stream == nil {
		s.ctrl.Streamer = nil
		return
	}
	if s.Loop {
		s.ctrl.Streamer = beep.Loop(-1, stream)
	} else {
		s.ctrl.Streamer = &held{stream: stream, ctrl: s.ctrl}
	}
}

// held keeps a finished one-shot clip in the mix. At the end of the clip it
// pads with silence and pauses instead of reporting drained, which would make
// the mixer drop it for good.
type held struct {
	stream beep.StreamSeeker
	ctrl   *beep.Ctrl
}

func (h *held) Stream(samples [][2]float64) (int, bool) {
	n, _ := h.stream.Stream(samples)
	if n < len(samples) {
		clear(samples[n:])
		h.ctrl.Paused = true
	}
	return len(samples), true
}

func (h *held) Err() error {
	return h.stream.Err()
}

// Streamer is what gets added to the mixer.
func (s *Sound) Streamer() beep.Streamer {
	return s.ctrl
}

func (s *Sound) Playback() Playback {
	l := s.locker()
	l.Lock()
	defer l.Unlock()
	p := Playback{Playing: !s.ctrl.Paused}
	if s.stream != nil {
		p.Position = s.stream.Position()
		p.Length = s.stream.Len()
	}
	return p
}

// SetPlaying resumes or pauses playback. Playing a one-shot clip that has
// finished starts it over.
func (s *Sound) SetPlaying(playing bool) {
	l := s.locker()
	l.Lock()
	defer l.Unlock()
	if playing && !s.Loop && s.stream != nil && s.stream.Position() >= s.stream.Len() {
		_ = s.stream.Seek(0)
	}
	s.ctrl.Paused = !playing
}

func (s *Sound) Play() {
	s.SetPlaying(true)
}

func (s *Sound) Pause() {
	s.SetPlaying(false)
}

// Seek moves the playhead. It returns false without a stream or for an
// out-of-range position.
func (s *Sound) Seek(pos int) bool {
	l := s.locker()
	l.Lock()
	defer l.Unlock()
	if s.stream == nil || pos < 0 || pos > s.stream.Len() {
		return false
	}
	return s.stream.Seek(pos) == nil
}

// Invoke handles the playback verbs scripts send through the entity.
func (s *Sound) Invoke(owner Owner, name string, args ...any) bool {
	switch name {
	case "play":
		s.Play()
	case "pause", "stop":
		s.Pause()
		if name == "stop" {
			s.Seek(0)
		}
	default:
		return false
	}
	return true
}

func (s *Sound) Copy() Component {
	dup := NewSound(s.handle.Table(), s.Clip)
	dup.active = s.active
	dup.Volume = s.Volume
	dup.Loop = s.Loop
	dup.Autoplay = s.Autoplay
	dup.lock = s.lock
	return dup
}

type soundFields struct {
	Clip     string  `yaml:"clip"`
	Volume   float64 `yaml:"volume"`
	Loop     bool    `yaml:"loop"`
	Autoplay bool    `yaml:"autoplay"`
}

func (s *Sound) Serialize() *Record {
	return newRecord(KindSound, soundRecordVersion, s.active, soundFields{
		Clip:     s.Clip,
		Volume:   s.Volume,
		Loop:     s.Loop,
		Autoplay: s.Autoplay,
	})
}

func decodeSound(rec *Record, env Env) (Component, error) {
	var f soundFields
	if err := rec.Decode(&f); err != nil {
		return nil, err
	}
	s := NewSound(env.Table, f.Clip)
	s.active = rec.Active
	if _, ok := rec.Fields["volume"]; ok {
		s.Volume = f.Volume
	}
	s.Loop = f.Loop
	s.Autoplay = f.Autoplay
	return s, nil
}

func (s *Sound) cleanup() {
	s.SetPlaying(false)
	s.SetStream(nil)
}
