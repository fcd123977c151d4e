// seqplay is an interactive terminal monitor for a Project: it drives
// the tick/frame loop in real time and sonifies the currently selected
// track's CV output as an audible 1V/octave tone through PortAudio so a
// CV/gate patch can be previewed without external hardware. It does not
// display track state while running; color is used only for the final
// exit and error messages.
package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	sequencer "github.com/onoma2/stepseq"

	"atomicgo.dev/keyboard"
	"atomicgo.dev/keyboard/keys"
	"github.com/fatih/color"
	"github.com/gordonklaus/portaudio"
)

var (
	white  = color.New(color.FgWhite).SprintfFunc()
	cyan   = color.New(color.FgCyan).SprintfFunc()
	green  = color.New(color.FgGreen).SprintfFunc()
	yellow = color.New(color.FgYellow).SprintfFunc()
)

const (
	escape     = "\x1b["
	hideCursor = escape + "?25l"
	showCursor = escape + "?25h"

	outputHz = 44100
)

// Monitor drives the project, the tone generator and the terminal UI,
// mirroring AudioPlayer's Initialize/Run/setupAudioStream/
// setupSignalHandlers/setupKeyboardHandlers/Stop lifecycle.
type Monitor struct {
	project *sequencer.Project
	clock   *sequencer.Clock
	renderer *sequencer.FrameRenderer

	stream *portaudio.Stream

	selectedChannel int

	lastFrame atomic.Value // sequencer.Frame

	phase float64

	uiWriter io.Writer

	ctx            context.Context
	cancelFn       context.CancelFunc
	wg             sync.WaitGroup
	keyboardDoneCh chan struct{}
}

// NewMonitor wires a fresh Project to a Clock and FrameRenderer and
// returns a Monitor ready to Run.
func NewMonitor() *Monitor {
	p := sequencer.NewProject()
	p.Playing = true

	clock := sequencer.NewClock(p)
	renderer := sequencer.NewFrameRenderer(clock)

	ctx, cancel := context.WithCancel(context.Background())

	m := &Monitor{
		project:        p,
		clock:          clock,
		renderer:       renderer,
		uiWriter:       os.Stdout,
		ctx:            ctx,
		cancelFn:       cancel,
		keyboardDoneCh: make(chan struct{}),
	}
	renderer.OnFrame = m.storeFrame
	m.lastFrame.Store(sequencer.Frame{})
	return m
}

func (m *Monitor) storeFrame(f sequencer.Frame) {
	m.lastFrame.Store(f)
}

// Run starts the clock, the audio stream, the keyboard/signal
// listeners, hides the terminal cursor, and blocks until the context is
// cancelled.
func (m *Monitor) Run() error {
	if err := portaudio.Initialize(); err != nil {
		return err
	}
	defer portaudio.Terminate()

	if err := m.setupAudioStream(); err != nil {
		return err
	}
	defer m.stream.Close()
	defer m.stream.Stop()

	m.setupSignalHandlers()
	m.setupKeyboardHandlers()

	go m.clock.Run(m.ctx)

	fmt.Fprint(m.uiWriter, hideCursor)
	defer fmt.Fprint(m.uiWriter, showCursor)

	<-m.ctx.Done()

	select {
	case <-m.keyboardDoneCh:
	default:
	}
	m.wg.Wait()
	return nil
}

func (m *Monitor) setupAudioStream() error {
	stream, err := portaudio.OpenDefaultStream(0, 1, outputHz, 0, m.streamCallback)
	if err != nil {
		return err
	}
	m.stream = stream
	return stream.Start()
}

// streamCallback sonifies the selected track's CV as a 1V/octave sine
// tone, gated by that track's gate output, mirroring the shape of
// AudioPlayer.streamCallback without touching the project's own
// tick/frame state (audio callback and tick/frame run on separate
// goroutines; the frame value is handed off via atomic.Value).
func (m *Monitor) streamCallback(out []int16) {
	f := m.lastFrame.Load().(sequencer.Frame)
	ch := m.selectedChannel
	v := float64(f.Cvs[ch])
	note := 60 + v*12
	freq := 440 * math.Pow(2, (note-69)/12)

	var amp float64
	if f.Gates[ch] {
		amp = 0.3
	}

	step := 2 * math.Pi * freq / outputHz
	for i := range out {
		out[i] = int16(amp * 32767 * math.Sin(m.phase))
		m.phase += step
		if m.phase > 2*math.Pi {
			m.phase -= 2 * math.Pi
		}
	}
}

func (m *Monitor) setupSignalHandlers() {
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, syscall.SIGINT)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		select {
		case <-m.ctx.Done():
		case <-sigch:
			m.cancelFn()
		}
	}()
}

func (m *Monitor) setupKeyboardHandlers() {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		keyboard.Listen(func(key keys.Key) (stop bool, err error) {
			if key.Code == keys.CtrlC || key.Code == keys.Escape {
				m.cancelFn()
				return true, nil
			}
			m.handleKeyPress(key)
			return false, nil
		})
		close(m.keyboardDoneCh)
	}()
}

func (m *Monitor) handleKeyPress(key keys.Key) {
	switch key.Code {
	case keys.Left:
		if m.selectedChannel > 0 {
			m.selectedChannel--
		}
	case keys.Right:
		if m.selectedChannel < sequencer.ConfigTrackCount-1 {
			m.selectedChannel++
		}
	case keys.Space:
		m.project.Playing = !m.project.Playing
	}
}

func main() {
	m := NewMonitor()
	if err := m.Run(); err != nil {
		fmt.Fprintln(os.Stderr, white("seqplay: %v", err))
		os.Exit(1)
	}
	fmt.Println(cyan("stopped"), green("track"), yellow(fmt.Sprintf("%d", m.selectedChannel+1)))
}
