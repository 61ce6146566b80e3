// Command synthdemo drives a small polyphonic GraphVoice instrument
// offline: it scripts a handful of Note-On/Note-Off events through a
// VoicePool, ticks a Manager holding one Control-Change Parameter per
// cc_map entry (its MIDI input is silent, so each Parameter stays at its
// default and is only logged), and prints per-block RMS so the wiring
// can be eyeballed without any audio device (spec.md's device I/O Non-goal
// stays out of scope; this is a synthesis demonstration, not a player).
package main

import (
	"fmt"
	"math"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"zikichombo.org/sound/freq"

	synth "github.com/arborsound/synth"
)

// nullMidiInput never has data pending; it exists only so Manager has a
// MidiInput to own. No Control-Change messages reach the Manager, so its
// Parameters never leave their defaults.
type nullMidiInput struct{}

func (nullMidiInput) Read(blocking bool) ([]byte, error) { return nil, nil }

func buildVoice(rate freq.T) *synth.GraphVoice {
	osc := synth.NewPhasor(rate, 220, synth.SineWave)
	env := synth.NewADEnvelope(rate, 0.01, 0.08, 0.2, 0.6, synth.RoleAmplitude)

	mu := synth.NewMultiplier(rate, complex(1, 0), true)
	if err := mu.Add(osc); err != nil {
		log.Fatal("wiring oscillator", "error", err)
	}
	if err := mu.Add(env); err != nil {
		log.Fatal("wiring envelope", "error", err)
	}

	gv, err := synth.NewGraphVoice(mu)
	if err != nil {
		log.Fatal("building voice graph", "error", err)
	}
	return gv
}

// ccBytes encodes a Control-Change message (status 0xB0, running channel 0).
// main does not call it; the demo's MIDI input stays silent.
func ccBytes(index, value int) []byte {
	return []byte{0xB0, byte(index), byte(value)}
}

func rms(buf *synth.Buffer) float64 {
	var sum float64
	n := buf.Len()
	for i := 0; i < n; i++ {
		v := real(buf.At(i))
		sum += v * v
	}
	if n == 0 {
		return 0
	}
	return math.Sqrt(sum / float64(n))
}

func main() {
	var (
		configPath = pflag.StringP("config", "c", "", "YAML config file (sample_rate, block_size, voices, update_hz, cc_map)")
		sampleRate = pflag.IntP("sample-rate", "r", 0, "override sample rate in Hz")
		blockSize  = pflag.IntP("block-size", "b", 0, "override block size in samples")
		voiceCount = pflag.IntP("voices", "v", 0, "override voice pool size")
		blocks     = pflag.IntP("blocks", "n", 20, "number of blocks to render")
		help       = pflag.BoolP("help", "h", false, "display this help text")
	)
	pflag.Parse()
	if *help {
		fmt.Fprintln(os.Stderr, "synthdemo renders a scripted GraphVoice performance and prints per-block RMS.")
		pflag.PrintDefaults()
		return
	}

	logger := log.New(os.Stderr)
	synth.SetLogger(logger)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Fatal("loading config", "error", err)
	}
	if *sampleRate > 0 {
		cfg.SampleRate = *sampleRate
	}
	if *blockSize > 0 {
		cfg.BlockSize = *blockSize
	}
	if *voiceCount > 0 {
		cfg.Voices = *voiceCount
	}

	rate := freq.T(cfg.SampleRate) * freq.Hertz

	voices := make([]*synth.GraphVoice, cfg.Voices)
	for i := range voices {
		voices[i] = buildVoice(rate)
	}
	pool := synth.NewVoicePool(voices)

	input := nullMidiInput{}
	mgr := synth.NewManager(input, freq.T(cfg.UpdateHz)*freq.Hertz)
	for _, cc := range cfg.CCMap {
		name := cc.Name
		mgr.OnCC(cc.Index, cc.Lo, cc.Hi, cc.Def, 20, 0, 0, func(v float64) {
			logger.Debug("cc update", "name", name, "value", v)
		})
	}

	pool.NoteOn(60, 100)
	pool.NoteOn(64, 90)

	for i := 0; i < *blocks; i++ {
		if i == *blocks/2 {
			pool.NoteOff(60, 0)
			pool.NoteOn(67, 100)
		}
		if err := mgr.Update(false); err != nil {
			logger.Error("manager update", "error", err)
		}
		buf, err := pool.Sample(cfg.BlockSize)
		if err != nil {
			logger.Error("sampling voice pool", "error", err)
			break
		}
		fmt.Printf("block %2d: rms=%.4f\n", i, rms(buf))
	}
}
