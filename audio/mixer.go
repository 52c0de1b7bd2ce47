// Package audio mixes sound components through the beep speaker.
package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
	"github.com/milk9111/scenecore/ecs"
	"github.com/milk9111/scenecore/ecs/component"
	"github.com/milk9111/scenecore/logging"
	"go.uber.org/zap"
)

const DefaultSampleRate = beep.SampleRate(44100)

// SpeakerLock is the lock the speaker holds while it pulls samples.
var SpeakerLock sync.Locker = speakerLock{}

type speakerLock struct{}

func (speakerLock) Lock()   { speaker.Lock() }
func (speakerLock) Unlock() { speaker.Unlock() }

// ClipFunc resolves a clip name to decoded audio.
type ClipFunc func(name string) (beep.StreamSeeker, error)

// Mixer feeds every attached sound component into one beep mixer.
type Mixer struct {
	mu          sync.Mutex
	rate        beep.SampleRate
	mixer       *beep.Mixer
	load        ClipFunc
	sounds      map[*component.Sound]struct{}
	initialized bool

	// Master scales the whole mix linearly once the device is open.
	Master float64
}

var _ ecs.System = (*Mixer)(nil)

func NewMixer(rate beep.SampleRate, load ClipFunc) *Mixer {
	return &Mixer{
		rate:   rate,
		mixer:  &beep.Mixer{},
		load:   load,
		sounds: map[*component.Sound]struct{}{},
		Master: 1,
	}
}

// Init opens the audio device and routes component playback state through
// the speaker lock. Without a device the mixer still tracks sounds.
func (m *Mixer) Init(buffer time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}
	if err := speaker.Init(m.rate, m.rate.N(buffer)); err != nil {
		return err
	}
	component.AudioLock = SpeakerLock
	speaker.Play(gain(m.mixer, m.Master))
	m.initialized = true
	return nil
}

// Attach decodes s's clip and adds it to the mix. Sounds marked autoplay
// start immediately.
func (m *Mixer) Attach(s *component.Sound) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sounds[s]; ok {
		return nil
	}
	stream, err := m.load(s.Clip)
	if err != nil {
		return err
	}
	s.SetStream(stream)

	component.AudioLock.Lock()
	m.mixer.Add(gain(s.Streamer(), s.Volume))
	component.AudioLock.Unlock()

	m.sounds[s] = struct{}{}
	if s.Autoplay {
		s.Play()
	}
	return nil
}

// gain applies a linear volume in [0, 1].
func gain(s beep.Streamer, v float64) *effects.Volume {
	return &effects.Volume{
		Streamer: s,
		Base:     2,
		Volume:   math.Log2(math.Max(v, 1e-6)),
		Silent:   v <= 0,
	}
}

// Len reports how many sounds are attached.
func (m *Mixer) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sounds)
}

// Update attaches sound components new to the world and forgets destroyed
// ones. The beep mixer drops a destroyed sound once its stream is cleared.
func (m *Mixer) Update(w *ecs.World, dt float64) {
	for _, e := range w.Entities() {
		for _, c := range e.ComponentsOf(component.KindSound) {
			s := c.(*component.Sound)
			if !s.Active() || s.Handle().Cleaned() {
				continue
			}
			if err := m.Attach(s); err != nil {
				logging.Logger().Warn("sound attach failed",
					zap.String("entity", e.ID().String()),
					zap.String("clip", s.Clip),
					zap.Error(err))
				// Stop retrying every frame.
				s.SetActive(false)
			}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for s := range m.sounds {
		if s.Handle().Cleaned() {
			delete(m.sounds, s)
		}
	}
}

// Stream pulls mixed samples directly. It is how headless runs and tests
// drive the mix without a device.
func (m *Mixer) Stream(samples [][2]float64) (int, bool) {
	component.AudioLock.Lock()
	defer component.AudioLock.Unlock()
	return m.mixer.Stream(samples)
}

// Close stops every sound and releases the device.
func (m *Mixer) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for s := range m.sounds {
		s.Pause()
	}
	component.AudioLock.Lock()
	m.mixer.Clear()
	component.AudioLock.Unlock()
	m.sounds = map[*component.Sound]struct{}{}

	if m.initialized {
		speaker.Close()
		m.initialized = false
	}
}
