// Package audio implements MIDI playback for the playmidi script builtin.
// MIDI files are rendered by the go-meltysynth software synthesizer and fed
// to Ebitengine's audio pipeline as a PCM stream.
package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/sinshu/go-meltysynth/meltysynth"
)

// SampleRate is the sample rate used for MIDI synthesis.
const SampleRate = 44100

var (
	// ErrNoSoundFont is returned when no SoundFont file is configured.
	ErrNoSoundFont = errors.New("SoundFont file is required for MIDI playback")

	// ErrSoundFontNotFound is returned when the SoundFont file cannot be read.
	ErrSoundFontNotFound = errors.New("SoundFont file not found")

	// ErrMIDIFileNotFound is returned when the MIDI file cannot be found.
	ErrMIDIFileNotFound = errors.New("MIDI file not found")

	// ErrMIDIInvalidFormat is returned when the MIDI file cannot be parsed.
	ErrMIDIInvalidFormat = errors.New("invalid MIDI file format")
)

// MIDIStream adapts a meltysynth sequencer to io.Reader for Ebitengine.
// Read renders float32 samples and converts them to interleaved 16-bit
// stereo. A stopped stream reads as silence.
type MIDIStream struct {
	sequencer *meltysynth.MidiFileSequencer
	stopped   bool
	mu        sync.Mutex
}

// Read implements io.Reader.
func (s *MIDIStream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || s.sequencer == nil {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}

	// 16-bit stereo: 4 bytes per sample frame.
	samples := len(p) / 4
	if samples == 0 {
		return 0, nil
	}

	left := make([]float32, samples)
	right := make([]float32, samples)
	s.sequencer.Render(left, right)

	for i := 0; i < samples; i++ {
		l := int16(clamp(left[i], -1, 1) * 32767)
		r := int16(clamp(right[i], -1, 1) * 32767)
		binary.LittleEndian.PutUint16(p[i*4:], uint16(l))
		binary.LittleEndian.PutUint16(p[i*4+2:], uint16(r))
	}

	return len(p), nil
}

// Stop makes all further reads return silence.
func (s *MIDIStream) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Player plays MIDI files through a shared synthesizer. It implements the
// vm.AudioPlayer surface consumed by the playmidi and stopmidi builtins.
type Player struct {
	synth    *meltysynth.Synthesizer
	audioCtx *audio.Context
	player   *audio.Player
	stream   *MIDIStream

	baseDir string
	playing bool
	muted   bool

	mu sync.Mutex
}

// NewPlayer loads the SoundFont and prepares the synthesizer. baseDir is the
// directory MIDI file names resolve against, normally the scene directory.
// audioCtx may be nil, in which case a context is created.
func NewPlayer(soundFontPath, baseDir string, audioCtx *audio.Context) (*Player, error) {
	if soundFontPath == "" {
		return nil, ErrNoSoundFont
	}

	sf2Data, err := os.ReadFile(soundFontPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSoundFontNotFound, soundFontPath)
		}
		return nil, fmt.Errorf("failed to read SoundFont file: %w", err)
	}

	soundFont, err := meltysynth.NewSoundFont(bytes.NewReader(sf2Data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse SoundFont: %w", err)
	}

	settings := meltysynth.NewSynthesizerSettings(SampleRate)
	synth, err := meltysynth.NewSynthesizer(soundFont, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create synthesizer: %w", err)
	}

	if audioCtx == nil {
		audioCtx = audio.NewContext(SampleRate)
	}

	return &Player{
		synth:    synth,
		audioCtx: audioCtx,
		baseDir:  baseDir,
	}, nil
}

// PlayMIDI starts playback of the named MIDI file, stopping any current
// playback first.
func (p *Player) PlayMIDI(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	path, err := findFileInsensitive(p.baseDir, name)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrMIDIFileNotFound, name)
	}

	midiData, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrMIDIFileNotFound, name)
	}

	midi, err := meltysynth.NewMidiFile(bytes.NewReader(midiData))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMIDIInvalidFormat, err)
	}

	sequencer := meltysynth.NewMidiFileSequencer(p.synth)
	sequencer.Play(midi, false)

	p.stream = &MIDIStream{sequencer: sequencer}
	player, err := p.audioCtx.NewPlayer(p.stream)
	if err != nil {
		return fmt.Errorf("failed to create audio player: %w", err)
	}
	p.player = player

	if p.muted {
		p.player.SetVolume(0)
	}
	p.player.Play()
	p.playing = true

	return nil
}

// StopMIDI stops the current playback, if any.
func (p *Player) StopMIDI() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Player) stopLocked() {
	if p.stream != nil {
		p.stream.Stop()
	}
	if p.player != nil {
		p.player.Close()
		p.player = nil
	}
	p.stream = nil
	p.playing = false
}

// IsPlaying reports whether a MIDI file is currently playing.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// SetMuted silences output without stopping playback.
func (p *Player) SetMuted(muted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.muted = muted
	if p.player != nil {
		if muted {
			p.player.SetVolume(0)
		} else {
			p.player.SetVolume(1)
		}
	}
}
