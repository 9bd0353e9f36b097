package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate = beep.SampleRate(48000)

	cueDuration  = 90 * time.Millisecond
	cueAmplitude = 0.3
)

// SoundManager plays the process spawn/exit cues
// All methods are safe to call when audio failed to initialize; they do nothing
type SoundManager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	volume      *effects.Volume
	initialized bool
}

// NewSoundManager creates a sound manager; volume is in the range [0, 1]
func NewSoundManager(volume float64) *SoundManager {
	mixer := &beep.Mixer{}
	sm := &SoundManager{
		mixer: mixer,
		volume: &effects.Volume{
			Streamer: mixer,
			Base:     2,
		},
	}
	sm.SetVolume(volume)
	return sm
}

// Initialize opens the speaker and starts the mixer
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}

	speaker.Play(sm.volume)
	sm.initialized = true
	return nil
}

// SetVolume maps [0, 1] onto the exponential volume effect; 0 silences
func (sm *SoundManager) SetVolume(v float64) {
	speaker.Lock()
	defer speaker.Unlock()

	if v <= 0 {
		sm.volume.Silent = true
		return
	}
	if v > 1 {
		v = 1
	}
	sm.volume.Silent = false
	// Base 2: -3 is 1/8 amplitude, 0 is unity
	sm.volume.Volume = (v - 1) * 3
}

// PlaySpawn plays a rising chirp for newly tracked processes
func (sm *SoundManager) PlaySpawn() {
	sm.play(NewSweepGenerator(sampleRate, 440, 880, cueDuration, cueAmplitude))
}

// PlayExit plays a falling chirp for processes that went away
func (sm *SoundManager) PlayExit() {
	sm.play(NewSweepGenerator(sampleRate, 660, 220, cueDuration, cueAmplitude))
}

func (sm *SoundManager) play(s beep.Streamer) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}

	speaker.Lock()
	sm.mixer.Add(s)
	speaker.Unlock()
}

// Cleanup stops all sounds and closes the speaker
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}

	speaker.Clear()
	speaker.Close()
	sm.initialized = false
}
