package audio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
	"github.com/milk9111/scenecore/assets"
	"github.com/milk9111/scenecore/ecs"
	"github.com/milk9111/scenecore/ecs/component"
	"github.com/milk9111/scenecore/ref"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loudest(samples [][2]float64) float64 {
	peak := 0.0
	for _, s := range samples {
		if s[0] > peak {
			peak = s[0]
		}
		if -s[0] > peak {
			peak = -s[0]
		}
	}
	return peak
}

func TestToneClip(t *testing.T) {
	l := ClipLoader{Rate: DefaultSampleRate}
	s, err := l.Load("tone:440")
	require.NoError(t, err)
	assert.Equal(t, DefaultSampleRate.N(toneLength), s.Len())

	_, err = l.Load("tone:abc")
	assert.ErrorIs(t, err, ErrUnsupportedClip)
	_, err = l.Load("song.mp3")
	assert.ErrorIs(t, err, ErrUnsupportedClip)
	_, err = l.Load("missing.wav")
	assert.ErrorIs(t, err, ErrClipNotFound)
}

func TestWavClipFromDisk(t *testing.T) {
	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, "beep.wav"))
	require.NoError(t, err)
	format := beep.Format{SampleRate: 22050, NumChannels: 1, Precision: 2}
	require.NoError(t, wav.Encode(f, NewOscillator(220, 100*time.Millisecond, WaveSquare, format.SampleRate), format))
	require.NoError(t, f.Close())

	l := ClipLoader{Dir: dir, Rate: DefaultSampleRate}
	s, err := l.Load("beep.wav")
	require.NoError(t, err)
	assert.InDelta(t, DefaultSampleRate.N(100*time.Millisecond), s.Len(), 64, "resampled to the mixer rate")
}

func TestEmbeddedClip(t *testing.T) {
	l := ClipLoader{FS: assets.FS(), Rate: DefaultSampleRate}
	s, err := l.Load("blip.wav")
	require.NoError(t, err)
	assert.Greater(t, s.Len(), 0)
}

func TestMixerPlayback(t *testing.T) {
	loader := ClipLoader{Rate: DefaultSampleRate}
	m := NewMixer(DefaultSampleRate, loader.Load)
	defer m.Close()

	snd := component.NewSound(nil, "tone:440")
	require.NoError(t, m.Attach(snd))
	require.NoError(t, m.Attach(snd), "attaching twice is a no-op")
	assert.Equal(t, 1, m.Len())

	buf := make([][2]float64, 512)
	m.Stream(buf)
	assert.Zero(t, loudest(buf), "sounds start paused")

	snd.Play()
	m.Stream(buf)
	assert.Greater(t, loudest(buf), 0.0)
	assert.Equal(t, 512, snd.Playback().Position)

	snd.Pause()
	m.Stream(buf)
	assert.Zero(t, loudest(buf))

	require.True(t, snd.Seek(0))
	assert.Equal(t, 0, snd.Playback().Position)
}

func TestMixerReplaysFinishedClip(t *testing.T) {
	loader := ClipLoader{Rate: DefaultSampleRate}
	m := NewMixer(DefaultSampleRate, loader.Load)
	defer m.Close()

	snd := component.NewSound(nil, "tone:440")
	require.NoError(t, m.Attach(snd))
	snd.Play()

	buf := make([][2]float64, 1024)
	for i := 0; snd.Playback().Playing; i++ {
		require.Less(t, i, 100, "clip never finished")
		m.Stream(buf)
	}
	p := snd.Playback()
	assert.Equal(t, p.Length, p.Position)
	m.Stream(buf)
	assert.Zero(t, loudest(buf))

	require.True(t, snd.Invoke(nil, "stop"))
	require.True(t, snd.Invoke(nil, "play"))
	m.Stream(buf)
	assert.Greater(t, loudest(buf), 0.0, "the mixer still holds the sound")
	assert.Equal(t, 1024, snd.Playback().Position)
}

func TestMixerSystem(t *testing.T) {
	table := ref.NewTable()
	engine := &ecs.Engine{Table: table}
	w := ecs.NewWorld(engine)

	loader := ClipLoader{Rate: DefaultSampleRate}
	m := NewMixer(DefaultSampleRate, loader.Load)
	defer m.Close()
	w.AddSystem(m)

	e := w.Spawn("speaker")
	good := component.NewSound(table, "tone:330")
	good.Autoplay = true
	bad := component.NewSound(table, "nope.wav")
	e.AddComponent(good)
	e.AddComponent(bad)

	w.Update(0)
	assert.Equal(t, 1, m.Len())
	assert.True(t, good.Playback().Playing)
	assert.False(t, bad.Active(), "failed clips are disabled")

	w.Remove(e)
	w.Update(0)
	assert.Equal(t, 0, m.Len())
}
